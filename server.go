package mcptest

import (
	"context"
	"encoding/json"

	"github.com/wagiedev/mcp-test-go/internal/client"
)

// TestServer drives one MCP server process under test.
//
// Create it with New and call Start, or use CreateTestServer, WithTestServer
// or StartForTest. All methods are safe for concurrent use.
type TestServer struct {
	impl *client.Client
}

// New creates a TestServer. The server is not spawned until Start.
func New(opts ...Option) *TestServer {
	return &TestServer{impl: client.New(applyOptions(opts))}
}

// CreateTestServer creates a TestServer and starts it in one call.
func CreateTestServer(ctx context.Context, opts ...Option) (*TestServer, error) {
	s := New(opts...)

	if _, err := s.Start(ctx); err != nil {
		_ = s.Close()

		return nil, err
	}

	return s, nil
}

// Start spawns the server and performs the initialize handshake: an
// initialize request followed by the notifications/initialized
// notification. The context bounds the spawn and the handshake only.
func (s *TestServer) Start(ctx context.Context) (*InitializeResult, error) {
	return s.impl.Start(ctx)
}

// InitializeResult returns the server's initialize result, or nil before Start.
func (s *TestServer) InitializeResult() *InitializeResult {
	return s.impl.InitializeResult()
}

// Capabilities returns the capabilities the server advertised, or the
// zero value before Start.
func (s *TestServer) Capabilities() ServerCapabilities {
	if result := s.impl.InitializeResult(); result != nil {
		return result.Capabilities
	}

	return ServerCapabilities{}
}

// ServerInfo returns the server's name and version, or the zero value
// before Start.
func (s *TestServer) ServerInfo() ServerInfo {
	if result := s.impl.InitializeResult(); result != nil {
		return result.ServerInfo
	}

	return ServerInfo{}
}

// ListTools returns the server's tools.
func (s *TestServer) ListTools(ctx context.Context) ([]Tool, error) {
	return s.impl.ListTools(ctx)
}

// CallTool invokes a tool by name. A nil args map is sent as {}.
func (s *TestServer) CallTool(ctx context.Context, name string, args map[string]any) (*ToolResult, error) {
	return s.impl.CallTool(ctx, name, args)
}

// ListResources returns the server's resources.
func (s *TestServer) ListResources(ctx context.Context) ([]Resource, error) {
	return s.impl.ListResources(ctx)
}

// ReadResource reads a resource by URI.
func (s *TestServer) ReadResource(ctx context.Context, uri string) ([]ResourceContent, error) {
	return s.impl.ReadResource(ctx, uri)
}

// ListPrompts returns the server's prompts.
func (s *TestServer) ListPrompts(ctx context.Context) ([]Prompt, error) {
	return s.impl.ListPrompts(ctx)
}

// GetPrompt renders a prompt. A nil args map is sent as {}.
func (s *TestServer) GetPrompt(ctx context.Context, name string, args map[string]string) (*PromptResult, error) {
	return s.impl.GetPrompt(ctx, name, args)
}

// Request sends any request and returns its raw result, for methods the
// named operations do not cover.
func (s *TestServer) Request(ctx context.Context, method string, params any) (json.RawMessage, error) {
	return s.impl.Request(ctx, method, params)
}

// Notify sends any notification.
func (s *TestServer) Notify(ctx context.Context, method string, params any) error {
	return s.impl.Notify(ctx, method, params)
}

// Ping sends an MCP ping.
func (s *TestServer) Ping(ctx context.Context) error {
	return s.impl.Ping(ctx)
}

// Stderr returns everything the server wrote to stderr, as received chunks.
func (s *TestServer) Stderr() []string {
	return s.impl.Stderr()
}

// Done returns a channel closed once the server process has stopped,
// or nil before Start.
func (s *TestServer) Done() <-chan struct{} {
	return s.impl.Done()
}

// SessionID returns the unique id of this session.
func (s *TestServer) SessionID() string {
	return s.impl.SessionID()
}

// Close stops the server. Pending requests fail with ErrSessionClosed and
// later named operations with ErrNotInitialized. It's safe to call Close
// multiple times.
func (s *TestServer) Close() error {
	return s.impl.Close()
}
