package message

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdkerrors "github.com/wagiedev/mcp-test-go/internal/errors"
)

func TestParseInitializeResult(t *testing.T) {
	raw := json.RawMessage(`{
		"protocolVersion": "2024-11-05",
		"capabilities": {"tools": {"listChanged": true}, "resources": {}},
		"serverInfo": {"name": "echo-server", "version": "1.0.0"},
		"instructions": "be nice"
	}`)

	result, err := ParseInitializeResult(raw)
	require.NoError(t, err)

	assert.Equal(t, "2024-11-05", result.ProtocolVersion)
	assert.Equal(t, "echo-server", result.ServerInfo.Name)
	assert.Equal(t, "1.0.0", result.ServerInfo.Version)
	assert.Equal(t, "be nice", result.Instructions)
	assert.True(t, result.Capabilities.HasTools())
	assert.True(t, result.Capabilities.HasResources(), "empty object still advertises the capability")
	assert.False(t, result.Capabilities.HasPrompts())
	assert.Equal(t, true, result.Capabilities.Tools["listChanged"])
}

func TestParseInitializeResult_MissingProtocolVersion(t *testing.T) {
	_, err := ParseInitializeResult(json.RawMessage(`{"capabilities": {}, "serverInfo": {"name": "x"}}`))

	parseErr, ok := errors.AsType[*sdkerrors.MessageParseError](err)
	require.True(t, ok)
	assert.Equal(t, "initialize result", parseErr.Message)
}

func TestParseTools(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantErr    bool
		wantNames  []string
		wantParams map[string][]string
	}{
		{
			name: "two tools",
			raw: `{"tools": [
				{"name": "echo", "description": "Echo", "inputSchema": {"type": "object", "properties": {"message": {"type": "string"}}, "required": ["message"]}},
				{"name": "add", "inputSchema": {"type": "object", "properties": {"b": {"type": "number"}, "a": {"type": "number"}}}}
			]}`,
			wantNames:  []string{"echo", "add"},
			wantParams: map[string][]string{"echo": {"message"}, "add": {"a", "b"}},
		},
		{
			name:      "no tools field",
			raw:       `{}`,
			wantNames: []string{},
		},
		{
			name:    "tool without name",
			raw:     `{"tools": [{"description": "anonymous", "inputSchema": {"type": "object"}}]}`,
			wantErr: true,
		},
		{
			name:    "tools is not an array",
			raw:     `{"tools": "echo"}`,
			wantErr: true,
		},
		{
			name:    "null result",
			raw:     `null`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tools, err := ParseTools(json.RawMessage(tt.raw))

			if tt.wantErr {
				_, ok := errors.AsType[*sdkerrors.MessageParseError](err)
				require.True(t, ok, "expected MessageParseError, got %v", err)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, tools)

			names := make([]string, 0, len(tools))
			for _, tool := range tools {
				names = append(names, tool.Name)
				if want, ok := tt.wantParams[tool.Name]; ok {
					assert.Equal(t, want, tool.InputSchema.ParamNames())
				}
			}

			assert.Equal(t, tt.wantNames, names)
		})
	}
}

func TestParseToolResult(t *testing.T) {
	raw := json.RawMessage(`{
		"content": [
			{"type": "text", "text": "first"},
			{"type": "image", "data": "aGk=", "mimeType": "image/png"},
			{"type": "audio", "data": "AAA=", "mimeType": "audio/wav"},
			{"type": "resource_link", "uri": "file:///a.txt", "name": "a.txt"},
			{"type": "resource", "resource": {"uri": "greeting://hello", "mimeType": "text/plain", "text": "hi"}},
			{"type": "text", "text": "second"}
		],
		"structuredContent": {"sum": 3}
	}`)

	result, err := ParseToolResult(raw)
	require.NoError(t, err)

	require.Len(t, result.Content, 6)
	assert.Equal(t, OutcomeSuccess, result.Outcome())
	assert.Equal(t, []string{"first", "second"}, result.Texts())
	assert.Equal(t, "first\nsecond", result.Text())
	assert.JSONEq(t, `{"sum": 3}`, string(result.StructuredContent))

	image, ok := result.Content[1].(*ImageContent)
	require.True(t, ok)
	assert.Equal(t, "image/png", image.MIMEType)

	_, ok = result.Content[2].(*AudioContent)
	assert.True(t, ok)

	link, ok := result.Content[3].(*ResourceLink)
	require.True(t, ok)
	assert.Equal(t, "file:///a.txt", link.URI)

	embedded, ok := result.Content[4].(*EmbeddedResource)
	require.True(t, ok)
	assert.Equal(t, "hi", embedded.Resource.Text)
	assert.Equal(t, ContentTypeResource, embedded.ContentType())
}

func TestParseToolResult_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "unknown content type", raw: `{"content": [{"type": "video", "url": "x"}]}`},
		{name: "missing content type", raw: `{"content": [{"text": "no type"}]}`},
		{name: "resource without uri", raw: `{"content": [{"type": "resource", "resource": {"text": "x"}}]}`},
		{name: "resource link without uri", raw: `{"content": [{"type": "resource_link", "name": "x"}]}`},
		{name: "content not an array", raw: `{"content": "text"}`},
		{name: "empty result", raw: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseToolResult(json.RawMessage(tt.raw))

			parseErr, ok := errors.AsType[*sdkerrors.MessageParseError](err)
			require.True(t, ok, "expected MessageParseError, got %v", err)
			assert.Equal(t, "tools/call result", parseErr.Message)
			assert.Equal(t, tt.raw, string(parseErr.Data))
		})
	}
}

func TestParseToolResult_IsError(t *testing.T) {
	result, err := ParseToolResult(json.RawMessage(`{"content": [{"type": "text", "text": "boom"}], "isError": true}`))
	require.NoError(t, err)

	assert.True(t, result.IsError)
	assert.Equal(t, OutcomeError, result.Outcome())
	assert.Equal(t, "error", result.Outcome().String())
}

func TestParseToolResult_NoContent(t *testing.T) {
	result, err := ParseToolResult(json.RawMessage(`{}`))
	require.NoError(t, err)

	assert.NotNil(t, result.Content)
	assert.Empty(t, result.Texts())
	assert.Equal(t, "success", result.Outcome().String())
}

func TestParseResources(t *testing.T) {
	resources, err := ParseResources(json.RawMessage(`{"resources": [{"uri": "greeting://hello", "name": "greeting", "mimeType": "text/plain"}]}`))
	require.NoError(t, err)
	require.Len(t, resources, 1)
	assert.Equal(t, "greeting://hello", resources[0].URI)
	assert.Equal(t, "text/plain", resources[0].MIMEType)

	_, err = ParseResources(json.RawMessage(`{"resources": [{"name": "no uri"}]}`))
	assert.ErrorContains(t, err, "resources[0]: missing uri")
}

func TestParseResourceContents(t *testing.T) {
	contents, err := ParseResourceContents(json.RawMessage(`{"contents": [
		{"uri": "greeting://hello", "mimeType": "text/plain", "text": "Hello"},
		{"uri": "file:///logo.png", "mimeType": "image/png", "blob": "iVBO"}
	]}`))
	require.NoError(t, err)
	require.Len(t, contents, 2)
	assert.Equal(t, "Hello", contents[0].Text)
	assert.Equal(t, "iVBO", contents[1].Blob)

	_, err = ParseResourceContents(json.RawMessage(`{"contents": [{"text": "orphan"}]}`))
	assert.Error(t, err)
}

func TestParsePrompts(t *testing.T) {
	prompts, err := ParsePrompts(json.RawMessage(`{"prompts": [{"name": "greet", "arguments": [{"name": "name", "required": true}]}]}`))
	require.NoError(t, err)
	require.Len(t, prompts, 1)
	assert.Equal(t, "greet", prompts[0].Name)
	require.Len(t, prompts[0].Arguments, 1)
	assert.True(t, prompts[0].Arguments[0].Required)

	_, err = ParsePrompts(json.RawMessage(`{"prompts": [{"description": "nameless"}]}`))
	assert.Error(t, err)
}

func TestParsePromptResult(t *testing.T) {
	result, err := ParsePromptResult(json.RawMessage(`{
		"description": "Greeting",
		"messages": [{"role": "user", "content": {"type": "text", "text": "Say hello to Ada"}}]
	}`))
	require.NoError(t, err)

	assert.Equal(t, "Greeting", result.Description)
	require.Len(t, result.Messages, 1)
	assert.Equal(t, "user", result.Messages[0].Role)

	text, ok := result.Messages[0].Content.(*TextContent)
	require.True(t, ok)
	assert.Equal(t, "Say hello to Ada", text.Text)

	_, err = ParsePromptResult(json.RawMessage(`{"messages": [{"role": "user", "content": {"type": "hologram"}}]}`))
	assert.ErrorContains(t, err, `unknown type "hologram"`)
}

func TestPromptMessage_MarshalRoundTrip(t *testing.T) {
	msg := PromptMessage{Role: "assistant", Content: &TextContent{Type: ContentTypeText, Text: "hi"}}

	data, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.JSONEq(t, `{"role":"assistant","content":{"type":"text","text":"hi"}}`, string(data))

	var decoded PromptMessage
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, msg, decoded)
}
