package log

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel(" DEBUG "))
	assert.Equal(t, zerolog.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zerolog.Disabled, parseLevel("off"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("bogus"))
}

func TestNew_ServiceField(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: "info", ServiceName: "livechat"}, &buf)
	logger.Info().Msg("hello")

	assert.Contains(t, buf.String(), `"service":"livechat"`)
	assert.Contains(t, buf.String(), `"message":"hello"`)
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "livechat.log")
	w, err := Open(Config{File: path})
	require.NoError(t, err)

	logger := New(Config{Level: "info"}, w)
	logger.Info().Msg("to file")
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}

func TestOpen_DefaultsToStderr(t *testing.T) {
	w, err := Open(Config{})
	require.NoError(t, err)
	nc, ok := w.(nopCloser)
	require.True(t, ok)
	assert.Same(t, os.Stderr, nc.Writer)
	assert.NoError(t, w.Close())
}

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), New(Config{Level: "debug"}, &buf))

	l := Component(ctx, "channel")
	l.Debug().Msg("x")
	assert.Contains(t, buf.String(), `"component":"channel"`)
}

func TestTransport_RequestID(t *testing.T) {
	var seen string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(headerRequestID)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	client := &http.Client{Transport: Transport(nil, New(Config{Level: "debug"}, &buf))}

	resp, err := client.Get(srv.URL + "/api/v1/rooms/2")
	require.NoError(t, err)
	resp.Body.Close()

	assert.NotEmpty(t, seen)
	assert.Contains(t, buf.String(), seen)
	assert.Contains(t, buf.String(), `"status":204`)

	req, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	req.Header.Set(headerRequestID, "fixed-id")
	resp, err = client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "fixed-id", seen)
}
