package message

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"
)

// Implementation identifies a client or server by name and version.
type Implementation struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Title   string `json:"title,omitempty"`
}

// ServerInfo identifies the server in the initialize result.
type ServerInfo = Implementation

// ServerCapabilities lists the optional features a server supports.
// A nil field means the capability was not advertised.
type ServerCapabilities struct {
	Tools        map[string]any `json:"tools,omitempty"`
	Resources    map[string]any `json:"resources,omitempty"`
	Prompts      map[string]any `json:"prompts,omitempty"`
	Logging      map[string]any `json:"logging,omitempty"`
	Completions  map[string]any `json:"completions,omitempty"`
	Experimental map[string]any `json:"experimental,omitempty"`
}

// HasTools reports whether the server advertised the tools capability.
func (c ServerCapabilities) HasTools() bool { return c.Tools != nil }

// HasResources reports whether the server advertised the resources capability.
func (c ServerCapabilities) HasResources() bool { return c.Resources != nil }

// HasPrompts reports whether the server advertised the prompts capability.
func (c ServerCapabilities) HasPrompts() bool { return c.Prompts != nil }

// InitializeResult is the server's answer to initialize.
type InitializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ServerCapabilities `json:"capabilities"`
	ServerInfo      ServerInfo         `json:"serverInfo"`
	Instructions    string             `json:"instructions,omitempty"`
}

// ToolInputSchema is the JSON Schema describing a tool's arguments.
// Property schemas are kept raw.
type ToolInputSchema struct {
	Type       string                     `json:"type"`
	Properties map[string]json.RawMessage `json:"properties,omitempty"`
	Required   []string                   `json:"required,omitempty"`
}

// ParamNames returns the declared property names in sorted order.
func (s ToolInputSchema) ParamNames() []string {
	return slices.Sorted(maps.Keys(s.Properties))
}

// Tool describes a tool exposed by the server.
type Tool struct {
	Name        string          `json:"name"`
	Title       string          `json:"title,omitempty"`
	Description string          `json:"description,omitempty"`
	InputSchema ToolInputSchema `json:"inputSchema"`
}

// Outcome classifies a tool result.
type Outcome int

const (
	// OutcomeSuccess means the tool ran and did not flag an error.
	OutcomeSuccess Outcome = iota
	// OutcomeError means the tool reported isError: true.
	OutcomeError
)

func (o Outcome) String() string {
	if o == OutcomeError {
		return "error"
	}

	return "success"
}

// ToolResult is the result of tools/call.
//
// A tool-level failure (IsError) is a successful protocol exchange; it is
// never returned as a Go error.
type ToolResult struct {
	Content           []Content       `json:"content"`
	IsError           bool            `json:"isError,omitempty"`
	StructuredContent json.RawMessage `json:"structuredContent,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler for ToolResult.
func (r *ToolResult) UnmarshalJSON(data []byte) error {
	type Alias ToolResult

	aux := &struct {
		Content json.RawMessage `json:"content"`
		*Alias
	}{
		Alias: (*Alias)(r),
	}

	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}

	content, err := unmarshalContentList(aux.Content)
	if err != nil {
		return err
	}

	r.Content = content

	return nil
}

// Outcome reports whether the tool succeeded.
func (r *ToolResult) Outcome() Outcome {
	if r.IsError {
		return OutcomeError
	}

	return OutcomeSuccess
}

// Texts returns the text of every text content block, in order.
func (r *ToolResult) Texts() []string {
	var texts []string

	for _, c := range r.Content {
		if text, ok := c.(*TextContent); ok {
			texts = append(texts, text.Text)
		}
	}

	return texts
}

// Text returns all text content joined by newlines.
func (r *ToolResult) Text() string {
	return strings.Join(r.Texts(), "\n")
}

// Resource describes a resource exposed by the server.
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MIMEType    string `json:"mimeType,omitempty"`
}

// ResourceContent is one item of a resources/read result. Exactly one of
// Text or Blob is normally set.
type ResourceContent struct {
	URI      string `json:"uri"`
	MIMEType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
	Blob     string `json:"blob,omitempty"`
}

// PromptArgument describes one argument a prompt accepts.
type PromptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// Prompt describes a prompt template exposed by the server.
type Prompt struct {
	Name        string           `json:"name"`
	Title       string           `json:"title,omitempty"`
	Description string           `json:"description,omitempty"`
	Arguments   []PromptArgument `json:"arguments,omitempty"`
}

// PromptMessage is one message of a rendered prompt.
type PromptMessage struct {
	Role    string  `json:"role"`
	Content Content `json:"content"`
}

// UnmarshalJSON implements json.Unmarshaler for PromptMessage.
func (m *PromptMessage) UnmarshalJSON(data []byte) error {
	var aux struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	content, err := UnmarshalContent(aux.Content)
	if err != nil {
		return err
	}

	m.Role = aux.Role
	m.Content = content

	return nil
}

// PromptResult is the result of prompts/get.
type PromptResult struct {
	Description string          `json:"description,omitempty"`
	Messages    []PromptMessage `json:"messages"`
}
