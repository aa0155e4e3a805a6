package client

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/wagiedev/mcp-test-go/internal/config"
	"github.com/wagiedev/mcp-test-go/internal/errors"
	"github.com/wagiedev/mcp-test-go/internal/message"
	"github.com/wagiedev/mcp-test-go/internal/rpc"
	"github.com/wagiedev/mcp-test-go/internal/subprocess"
)

// MCP method names used by the session.
const (
	MethodInitialize    = "initialize"
	MethodInitialized   = "notifications/initialized"
	MethodPing          = "ping"
	MethodToolsList     = "tools/list"
	MethodToolsCall     = "tools/call"
	MethodResourcesList = "resources/list"
	MethodResourcesRead = "resources/read"
	MethodPromptsList   = "prompts/list"
	MethodPromptsGet    = "prompts/get"
)

// Client is a protocol session with one MCP server process.
type Client struct {
	log       *slog.Logger
	options   *config.Options
	sessionID string

	mu          sync.Mutex // Protects the fields below
	supervisor  *subprocess.Supervisor
	rpc         *rpc.Correlator
	started     bool
	initialized bool
	closed      bool
	initResult  *message.InitializeResult
}

// New creates a session for options. The server is not spawned until Start.
func New(options *config.Options) *Client {
	if options == nil {
		options = &config.Options{}
	}

	log := options.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	sessionID := ulid.Make().String()

	return &Client{
		log:       log.With("component", "client", "session_id", sessionID),
		options:   options,
		sessionID: sessionID,
	}
}

// SessionID returns the unique id of this session. It appears on every log line.
func (c *Client) SessionID() string {
	return c.sessionID
}

// Start spawns the server and performs the initialize handshake.
//
// Zero-valued options are filled from the MCPTEST_* environment and the
// built-in defaults. If the handshake fails the process is stopped.
func (c *Client) Start(ctx context.Context) (*message.InitializeResult, error) {
	c.mu.Lock()

	switch {
	case c.closed:
		c.mu.Unlock()

		return nil, errors.ErrSessionClosed
	case c.started:
		c.mu.Unlock()

		return nil, errors.ErrAlreadyStarted
	}

	env, envErr := config.LoadEnvDefaults()
	if envErr != nil {
		c.log.Warn("Ignoring malformed environment defaults", "error", envErr)
	}

	c.options.ApplyDefaults(env)

	if err := c.options.Validate(); err != nil {
		c.mu.Unlock()

		return nil, err
	}

	c.started = true
	c.supervisor = subprocess.NewSupervisor(c.log, c.options)
	c.rpc = rpc.NewCorrelator(c.log, c.supervisor, c.options.Timeout)

	supervisor, correlator := c.supervisor, c.rpc
	c.mu.Unlock()

	if err := supervisor.Start(ctx); err != nil {
		return nil, err
	}

	result, err := c.handshake(ctx, correlator)
	if err != nil {
		c.log.Error("Initialize handshake failed", "error", err)

		if closeErr := supervisor.Close(); closeErr != nil {
			c.log.Warn("Failed to stop server after handshake failure", "error", closeErr)
		}

		return nil, fmt.Errorf("initialize handshake: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, errors.ErrSessionClosed
	}

	c.initialized = true
	c.initResult = result

	c.log.Info("MCP session initialized",
		"server", result.ServerInfo.Name,
		"server_version", result.ServerInfo.Version,
		"protocol_version", result.ProtocolVersion,
	)

	return result, nil
}

func (c *Client) handshake(ctx context.Context, correlator *rpc.Correlator) (*message.InitializeResult, error) {
	params := map[string]any{
		"protocolVersion": c.options.ProtocolVersion,
		"capabilities":    map[string]any{},
		"clientInfo":      c.options.ClientInfo,
	}

	raw, err := correlator.Send(ctx, MethodInitialize, params)
	if err != nil {
		return nil, err
	}

	result, err := message.ParseInitializeResult(raw)
	if err != nil {
		return nil, err
	}

	if err := correlator.Notify(ctx, MethodInitialized, nil); err != nil {
		return nil, err
	}

	return result, nil
}

// ready returns the correlator if the handshake has completed.
func (c *Client) ready() (*rpc.Correlator, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.initialized {
		return nil, errors.ErrNotInitialized
	}

	return c.rpc, nil
}

// InitializeResult returns the server's initialize result, or nil before Start.
func (c *Client) InitializeResult() *message.InitializeResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.initResult
}

// Request sends an arbitrary request and returns the raw result.
func (c *Client) Request(ctx context.Context, method string, params any) (json.RawMessage, error) {
	correlator, err := c.ready()
	if err != nil {
		return nil, err
	}

	return correlator.Send(ctx, method, params)
}

// Notify sends an arbitrary notification.
func (c *Client) Notify(ctx context.Context, method string, params any) error {
	correlator, err := c.ready()
	if err != nil {
		return err
	}

	return correlator.Notify(ctx, method, params)
}

// Ping checks the server is responsive.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Request(ctx, MethodPing, nil)

	return err
}

// ListTools returns the server's tools.
func (c *Client) ListTools(ctx context.Context) ([]message.Tool, error) {
	raw, err := c.Request(ctx, MethodToolsList, nil)
	if err != nil {
		return nil, err
	}

	return message.ParseTools(raw)
}

// CallTool invokes a tool. A nil args map is sent as {}.
//
// A tool that reports isError is a successful call: the error is in the
// returned result, not in err.
func (c *Client) CallTool(ctx context.Context, name string, args map[string]any) (*message.ToolResult, error) {
	if args == nil {
		args = map[string]any{}
	}

	raw, err := c.Request(ctx, MethodToolsCall, map[string]any{
		"name":      name,
		"arguments": args,
	})
	if err != nil {
		return nil, err
	}

	return message.ParseToolResult(raw)
}

// ListResources returns the server's resources.
func (c *Client) ListResources(ctx context.Context) ([]message.Resource, error) {
	raw, err := c.Request(ctx, MethodResourcesList, nil)
	if err != nil {
		return nil, err
	}

	return message.ParseResources(raw)
}

// ReadResource reads a resource by URI.
func (c *Client) ReadResource(ctx context.Context, uri string) ([]message.ResourceContent, error) {
	raw, err := c.Request(ctx, MethodResourcesRead, map[string]any{"uri": uri})
	if err != nil {
		return nil, err
	}

	return message.ParseResourceContents(raw)
}

// ListPrompts returns the server's prompts.
func (c *Client) ListPrompts(ctx context.Context) ([]message.Prompt, error) {
	raw, err := c.Request(ctx, MethodPromptsList, nil)
	if err != nil {
		return nil, err
	}

	return message.ParsePrompts(raw)
}

// GetPrompt renders a prompt. A nil args map is sent as {}.
func (c *Client) GetPrompt(ctx context.Context, name string, args map[string]string) (*message.PromptResult, error) {
	if args == nil {
		args = map[string]string{}
	}

	raw, err := c.Request(ctx, MethodPromptsGet, map[string]any{
		"name":      name,
		"arguments": args,
	})
	if err != nil {
		return nil, err
	}

	return message.ParsePromptResult(raw)
}

// Stderr returns the server's stderr output received so far.
func (c *Client) Stderr() []string {
	c.mu.Lock()
	supervisor := c.supervisor
	c.mu.Unlock()

	if supervisor == nil {
		return nil
	}

	return supervisor.Stderr()
}

// Done returns a channel closed once the server process has stopped,
// or nil before Start.
func (c *Client) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.supervisor == nil {
		return nil
	}

	return c.supervisor.Done()
}

// Close stops the server and rejects outstanding requests with
// errors.ErrSessionClosed. Named operations fail with
// errors.ErrNotInitialized afterwards. It's safe to call Close multiple
// times or before Start.
func (c *Client) Close() error {
	c.mu.Lock()

	if c.closed {
		c.mu.Unlock()

		return nil
	}

	c.closed = true
	c.initialized = false
	supervisor := c.supervisor
	c.mu.Unlock()

	if supervisor == nil {
		return nil
	}

	c.log.Info("Closing MCP session")

	if err := supervisor.Close(); err != nil {
		return fmt.Errorf("close server: %w", err)
	}

	c.log.Info("MCP session closed")

	return nil
}
