package proto

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	cause := NewBadRequestError(fmt.Errorf("id is required"))
	require.Error(t, cause)

	re := ToResponseError(cause)
	require.Error(t, re, "must be an error")
	require.Equal(t, re, cause, "must be the same cause")
	require.Equal(t, ErrStatusBadRequest, re.Code, "code is correct")

	res := NewRequest("device.set", "banana").NotOk(re)
	require.Equal(t, ErrStatusBadRequest, res.Error.Code, "code is correct")
	require.Equal(t, "id is required", res.Error.Message, "message is correct")
	require.Nil(t, res.Result, "no result")
	_, err := json.Marshal(&res)
	require.NoError(t, err, "can json encode")
}

func TestParseMessage(t *testing.T) {
	req := NewRequest("devices.list", map[string]any{"direction": "playback"})
	data, err := json.Marshal(req)
	require.NoError(t, err)

	m, err := ParseMessage(data)
	require.NoError(t, err)
	parsed, ok := m.(*Request)
	require.True(t, ok)
	require.Equal(t, req.ID, parsed.ID)
	require.Equal(t, "devices.list", parsed.Method)

	resp := req.Ok(map[string]any{"devices": []any{}})
	data, err = json.Marshal(resp)
	require.NoError(t, err)
	m, err = ParseMessage(data)
	require.NoError(t, err)
	presp, ok := m.(*Response)
	require.True(t, ok)
	require.Equal(t, req.ID, presp.Response)
	require.True(t, presp.Ok())

	_, err = ParseMessage([]byte(`{"version":"1"}`))
	require.Error(t, err)
}
