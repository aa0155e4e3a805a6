package jsonrpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/wagiedev/mcp-test-go/internal/errors"
)

// Version is the JSON-RPC version marker written on every outgoing message.
const Version = "2.0"

// ErrorCode is a JSON-RPC 2.0 error code.
type ErrorCode int

const (
	// ErrorCodeParseError indicates invalid JSON was received by the server.
	ErrorCodeParseError ErrorCode = -32700
	// ErrorCodeInvalidRequest indicates the JSON sent is not a valid Request object.
	ErrorCodeInvalidRequest ErrorCode = -32600
	// ErrorCodeMethodNotFound indicates the method does not exist / is not available.
	ErrorCodeMethodNotFound ErrorCode = -32601
	// ErrorCodeInvalidParams indicates invalid method parameters.
	ErrorCodeInvalidParams ErrorCode = -32602
	// ErrorCodeInternalError indicates an internal JSON-RPC error.
	ErrorCodeInternalError ErrorCode = -32603
)

// Error is the error object carried by an error response.
type Error = errors.RPCError

// Kind classifies an incoming message.
type Kind int

const (
	// KindResponse is a message with an id and no method.
	KindResponse Kind = iota
	// KindNotification is a message without an id.
	KindNotification
	// KindRequest is a server-initiated request (id and method).
	KindRequest
)

func (k Kind) String() string {
	switch k {
	case KindResponse:
		return "response"
	case KindNotification:
		return "notification"
	case KindRequest:
		return "request"
	default:
		return "unknown"
	}
}

// Request is an outgoing request or, when ID is nil, a notification.
//
// Wire format:
//
//	{"jsonrpc":"2.0","id":1,"method":"tools/list","params":{...}}
type Request struct {
	JSONRPCVersion string          `json:"jsonrpc"`
	ID             *int64          `json:"id,omitempty"`
	Method         string          `json:"method"`
	Params         json.RawMessage `json:"params,omitempty"`
}

// Message is the generic shape of any line received from the server.
//
// Wire format for a response:
//
//	{"jsonrpc":"2.0","id":1,"result":{...}}
//	{"jsonrpc":"2.0","id":1,"error":{"code":-32601,"message":"Unknown method: x"}}
type Message struct {
	JSONRPCVersion string          `json:"jsonrpc"`
	ID             json.RawMessage `json:"id,omitempty"`
	Method         string          `json:"method,omitempty"`
	Params         json.RawMessage `json:"params,omitempty"`
	Result         json.RawMessage `json:"result,omitempty"`
	Error          *Error          `json:"error,omitempty"`
}

// HasID reports whether the message carried an id field.
func (m *Message) HasID() bool {
	return len(m.ID) > 0
}

// Kind classifies the message by the presence of id and method.
func (m *Message) Kind() Kind {
	switch {
	case !m.HasID():
		return KindNotification
	case m.Method != "":
		return KindRequest
	default:
		return KindResponse
	}
}

// NumericID returns the id as an integer. It returns false for a missing id,
// a null id, a string id, or a number with a fractional part.
func (m *Message) NumericID() (int64, bool) {
	if !m.HasID() || bytes.Equal(m.ID, []byte("null")) {
		return 0, false
	}

	raw := bytes.TrimSpace(m.ID)
	if len(raw) == 0 || raw[0] == '"' {
		return 0, false
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}

	if id, err := n.Int64(); err == nil {
		return id, true
	}

	// 1.0 and 1e0 name the same id as 1.
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}

	return int64(f), true
}

// Decode parses one line received from the server.
//
// A line that is not a JSON object yields a *errors.DecodeError; callers drop
// such lines without surfacing them.
func Decode(line string) (*Message, error) {
	var msg Message

	if err := json.Unmarshal([]byte(line), &msg); err != nil {
		return nil, &errors.DecodeError{Line: line, Err: err}
	}

	return &msg, nil
}

// NewRequest builds a request with the given id.
func NewRequest(id int64, method string, params any) (*Request, error) {
	raw, err := marshalParams(params)
	if err != nil {
		return nil, err
	}

	return &Request{
		JSONRPCVersion: Version,
		ID:             &id,
		Method:         method,
		Params:         raw,
	}, nil
}

// NewNotification builds a request without an id.
func NewNotification(method string, params any) (*Request, error) {
	raw, err := marshalParams(params)
	if err != nil {
		return nil, err
	}

	return &Request{
		JSONRPCVersion: Version,
		Method:         method,
		Params:         raw,
	}, nil
}

// IsNotification reports whether the request carries no id.
func (r *Request) IsNotification() bool {
	return r.ID == nil
}

// Encode serialises v as a single line of JSON terminated by a newline.
func Encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}

	return append(data, '\n'), nil
}

// marshalParams returns nil for absent params so the field is omitted on the wire.
func marshalParams(params any) (json.RawMessage, error) {
	if params == nil {
		return nil, nil
	}

	if raw, ok := params.(json.RawMessage); ok {
		if len(raw) == 0 {
			return nil, nil
		}

		return raw, nil
	}

	data, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal params: %w", err)
	}

	if bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	return data, nil
}
