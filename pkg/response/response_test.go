package response

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	var out struct {
		OwnerID string `json:"owner_id"`
	}
	err := Decode(strings.NewReader(`{"success":true,"data":{"owner_id":"2"}}`), &out)
	require.NoError(t, err)
	assert.Equal(t, "2", out.OwnerID)
}

func TestDecode_ErrorEnvelope(t *testing.T) {
	var out struct{}
	err := Decode(strings.NewReader(`{"success":false,"error":{"code":"NOT_FOUND","message":"room not found"}}`), &out)

	var info *ErrorInfo
	require.True(t, errors.As(err, &info))
	assert.Equal(t, "NOT_FOUND", info.Code)
	assert.Equal(t, "NOT_FOUND: room not found", err.Error())
}

func TestDecode_Invalid(t *testing.T) {
	var out struct{}
	assert.Error(t, Decode(strings.NewReader(`{`), &out))
	assert.Error(t, Decode(strings.NewReader(`{"success":true}`), &out))
	assert.Error(t, Decode(strings.NewReader(`{"success":false}`), &out))
}
