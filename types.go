package mcptest

import "github.com/wagiedev/mcp-test-go/internal/message"

// Re-export payload types from internal package

// Content is a content block in a tool result or prompt message.
type Content = message.Content

// TextContent contains plain text.
type TextContent = message.TextContent

// ImageContent contains base64-encoded image data.
type ImageContent = message.ImageContent

// AudioContent contains base64-encoded audio data.
type AudioContent = message.AudioContent

// ResourceLink points at a resource the client may read separately.
type ResourceLink = message.ResourceLink

// EmbeddedResource carries resource contents inline.
type EmbeddedResource = message.EmbeddedResource

// Tool describes a tool exposed by the server.
type Tool = message.Tool

// ToolInputSchema is the JSON Schema of a tool's arguments.
type ToolInputSchema = message.ToolInputSchema

// ToolResult is the result of a tool call.
type ToolResult = message.ToolResult

// Outcome classifies a tool result as success or error.
type Outcome = message.Outcome

// Tool outcomes.
const (
	OutcomeSuccess = message.OutcomeSuccess
	OutcomeError   = message.OutcomeError
)

// Resource describes a resource exposed by the server.
type Resource = message.Resource

// ResourceContent is one item of a resource read.
type ResourceContent = message.ResourceContent

// Prompt describes a prompt template.
type Prompt = message.Prompt

// PromptArgument describes one prompt argument.
type PromptArgument = message.PromptArgument

// PromptMessage is one message of a rendered prompt.
type PromptMessage = message.PromptMessage

// PromptResult is a rendered prompt.
type PromptResult = message.PromptResult

// ServerCapabilities lists the features the server advertised.
type ServerCapabilities = message.ServerCapabilities

// ServerInfo identifies the server.
type ServerInfo = message.ServerInfo

// InitializeResult is the server's answer to the handshake.
type InitializeResult = message.InitializeResult
