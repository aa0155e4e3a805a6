package echoserver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// Name is the server name reported in initialize.
	Name = "echo-server"
	// Version is the server version reported in initialize.
	Version = "1.0.0"

	// GreetingURI is the URI of the greeting resource.
	GreetingURI = "greeting://hello"
	// GreetingText is the text of the greeting resource.
	GreetingText = "Hello from mcp-test!"
)

// New creates the example server with its tools, resource and prompt registered.
func New(log *slog.Logger) *mcp.Server {
	log = log.With("component", "echoserver")

	server := mcp.NewServer(&mcp.Implementation{Name: Name, Version: Version}, nil)

	server.AddTool(&mcp.Tool{
		Name:        "echo",
		Description: "Returns the input message back",
		InputSchema: objectSchema(map[string]param{
			"message": {Type: "string", Description: "Message to echo"},
		}),
	}, func(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := parseArguments(req)
		if err != nil {
			return errorResult(err.Error()), nil
		}

		message, ok := args["message"].(string)
		if !ok {
			return errorResult("message must be a string"), nil
		}

		log.Debug("Echo", "message", message)

		return textResult(message), nil
	})

	server.AddTool(&mcp.Tool{
		Name:        "add",
		Description: "Adds two numbers",
		InputSchema: objectSchema(map[string]param{
			"a": {Type: "number", Description: "First number"},
			"b": {Type: "number", Description: "Second number"},
		}),
	}, func(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := parseArguments(req)
		if err != nil {
			return errorResult(err.Error()), nil
		}

		a, aOK := args["a"].(float64)
		b, bOK := args["b"].(float64)

		if !aOK || !bOK {
			return errorResult("a and b must be numbers"), nil
		}

		log.Debug("Add", "a", a, "b", b)

		return textResult(strconv.FormatFloat(a+b, 'f', -1, 64)), nil
	})

	server.AddTool(&mcp.Tool{
		Name:        "fail",
		Description: "Always reports a tool error with the given message",
		InputSchema: objectSchema(map[string]param{
			"message": {Type: "string", Description: "Error message"},
		}),
	}, func(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := parseArguments(req)
		if err != nil {
			return errorResult(err.Error()), nil
		}

		message, _ := args["message"].(string)
		if message == "" {
			message = "failed as requested"
		}

		return errorResult(message), nil
	})

	server.AddResource(&mcp.Resource{
		URI:         GreetingURI,
		Name:        "greeting",
		Description: "A friendly greeting",
		MIMEType:    "text/plain",
	}, func(_ context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{URI: req.Params.URI, MIMEType: "text/plain", Text: GreetingText},
			},
		}, nil
	})

	server.AddPrompt(&mcp.Prompt{
		Name:        "greet",
		Description: "Asks the model to greet someone",
		Arguments: []*mcp.PromptArgument{
			{Name: "name", Description: "Who to greet", Required: true},
		},
	}, func(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
		name := req.Params.Arguments["name"]
		if name == "" {
			return nil, fmt.Errorf("missing required argument: name")
		}

		return &mcp.GetPromptResult{
			Description: "Greeting for " + name,
			Messages: []*mcp.PromptMessage{
				{Role: "user", Content: &mcp.TextContent{Text: "Say hello to " + name}},
			},
		}, nil
	})

	return server
}

// Run serves the example server over in and out until the client
// disconnects or ctx is cancelled.
func Run(ctx context.Context, log *slog.Logger, in io.ReadCloser, out io.WriteCloser) error {
	return New(log).Run(ctx, &mcp.IOTransport{Reader: in, Writer: out})
}
