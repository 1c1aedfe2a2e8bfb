package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("chat:\n  endpoint: ws://file/chat\n  inbound_prefix: /stream\n"), 0o644))
	t.Setenv("LCTEST_CHAT_ENDPOINT", "ws://env/chat")

	v, err := Load(Source{Dir: dir, Name: "config", EnvPrefix: "LCTEST"})
	require.NoError(t, err)

	assert.Equal(t, "ws://env/chat", v.GetString("chat.endpoint"))
	assert.Equal(t, "/stream", v.GetString("chat.inbound_prefix"))
}

func TestLoad_MissingSearchedFile(t *testing.T) {
	v, err := Load(Source{Dir: t.TempDir(), Name: "nope"})
	require.NoError(t, err)
	assert.NotNil(t, v)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(Source{File: filepath.Join(t.TempDir(), "absent.yaml")})
	assert.Error(t, err)
}
