package jsonrpc

import (
	"encoding/json"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wagiedev/mcp-test-go/internal/errors"
)

func TestDecode_Response(t *testing.T) {
	msg, err := Decode(`{"jsonrpc":"2.0","id":4,"result":{"message":"hi"}}`)
	require.NoError(t, err)

	require.Equal(t, KindResponse, msg.Kind())

	id, ok := msg.NumericID()
	require.True(t, ok)
	require.Equal(t, int64(4), id)
	require.JSONEq(t, `{"message":"hi"}`, string(msg.Result))
	require.Nil(t, msg.Error)
}

func TestDecode_ErrorResponse(t *testing.T) {
	msg, err := Decode(`{"jsonrpc":"2.0","id":9,"error":{"code":-32601,"message":"Unknown method: x","data":[1,2]}}`)
	require.NoError(t, err)

	require.Equal(t, KindResponse, msg.Kind())
	require.NotNil(t, msg.Error)
	require.Equal(t, int(ErrorCodeMethodNotFound), msg.Error.Code)
	require.Equal(t, "Unknown method: x", msg.Error.Message)
	require.JSONEq(t, `[1,2]`, string(msg.Error.Data))
}

func TestDecode_Notification(t *testing.T) {
	msg, err := Decode(`{"jsonrpc":"2.0","method":"notifications/tools/list_changed"}`)
	require.NoError(t, err)

	require.Equal(t, KindNotification, msg.Kind())

	_, ok := msg.NumericID()
	require.False(t, ok)
}

func TestDecode_ServerRequest(t *testing.T) {
	msg, err := Decode(`{"jsonrpc":"2.0","id":1,"method":"roots/list"}`)
	require.NoError(t, err)

	require.Equal(t, KindRequest, msg.Kind())
}

func TestDecode_NonNumericIDs(t *testing.T) {
	for _, line := range []string{
		`{"jsonrpc":"2.0","id":null,"result":{}}`,
		`{"jsonrpc":"2.0","id":"abc","result":{}}`,
		`{"jsonrpc":"2.0","id":1.5,"result":{}}`,
		`{"jsonrpc":"2.0","id":"1","result":{}}`,
		`{"jsonrpc":"2.0","id":true,"result":{}}`,
		`{"jsonrpc":"2.0","id":1e30,"result":{}}`,
	} {
		msg, err := Decode(line)
		require.NoError(t, err)
		require.Equal(t, KindResponse, msg.Kind(), line)

		_, ok := msg.NumericID()
		require.False(t, ok, line)
	}
}

func TestDecode_IntegralFloatIDs(t *testing.T) {
	for line, want := range map[string]int64{
		`{"jsonrpc":"2.0","id":7,"result":{}}`:     7,
		`{"jsonrpc":"2.0","id":1.0,"result":{}}`:   1,
		`{"jsonrpc":"2.0","id":1e0,"result":{}}`:   1,
		`{"jsonrpc":"2.0","id":2.5e1,"result":{}}`: 25,
		`{"jsonrpc":"2.0","id":-3.0,"result":{}}`:  -3,
	} {
		msg, err := Decode(line)
		require.NoError(t, err)

		id, ok := msg.NumericID()
		require.True(t, ok, line)
		require.Equal(t, want, id, line)
	}
}

func TestDecode_Malformed(t *testing.T) {
	for _, line := range []string{
		"Server starting on stdio...",
		`{"jsonrpc":"2.0","id":1,`,
		"",
		`[1,2,3]`,
	} {
		msg, err := Decode(line)
		require.Nil(t, msg)

		decodeErr, ok := stderrors.AsType[*errors.DecodeError](err)
		require.True(t, ok, line)
		require.Equal(t, line, decodeErr.Line)
	}
}

func TestNewRequest_Encode(t *testing.T) {
	req, err := NewRequest(1, "echo", map[string]any{"message": "hi"})
	require.NoError(t, err)
	require.False(t, req.IsNotification())

	data, err := Encode(req)
	require.NoError(t, err)
	require.Equal(t, byte('\n'), data[len(data)-1])
	require.JSONEq(t, `{"jsonrpc":"2.0","id":1,"method":"echo","params":{"message":"hi"}}`, string(data))
}

func TestNewRequest_OmitsAbsentParams(t *testing.T) {
	var nilMap map[string]any

	for _, params := range []any{nil, nilMap, json.RawMessage(nil)} {
		req, err := NewRequest(2, "tools/list", params)
		require.NoError(t, err)

		data, err := Encode(req)
		require.NoError(t, err)
		require.JSONEq(t, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`, string(data))
	}
}

func TestNewNotification_Encode(t *testing.T) {
	req, err := NewNotification("notifications/initialized", nil)
	require.NoError(t, err)
	require.True(t, req.IsNotification())

	data, err := Encode(req)
	require.NoError(t, err)
	require.JSONEq(t, `{"jsonrpc":"2.0","method":"notifications/initialized"}`, string(data))
}

func TestNewRequest_UnmarshalableParams(t *testing.T) {
	_, err := NewRequest(1, "x", map[string]any{"ch": make(chan int)})
	require.Error(t, err)
	require.Contains(t, err.Error(), "marshal params")
}

func TestEncode_SingleLine(t *testing.T) {
	req, err := NewRequest(3, "tools/call", map[string]any{
		"name":      "echo",
		"arguments": map[string]any{"message": "line 1\nline 2"},
	})
	require.NoError(t, err)

	data, err := Encode(req)
	require.NoError(t, err)

	newlines := 0

	for _, b := range data {
		if b == '\n' {
			newlines++
		}
	}

	require.Equal(t, 1, newlines)
}
