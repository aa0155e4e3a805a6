package message

import (
	"encoding/json"
	"fmt"

	"github.com/wagiedev/mcp-test-go/internal/errors"
)

// ParseInitializeResult parses the result of initialize.
func ParseInitializeResult(raw json.RawMessage) (*InitializeResult, error) {
	var result InitializeResult
	if err := decode(raw, "initialize result", &result); err != nil {
		return nil, err
	}

	if result.ProtocolVersion == "" {
		return nil, parseError(raw, "initialize result", fmt.Errorf("missing protocolVersion"))
	}

	return &result, nil
}

// ParseTools parses the result of tools/list.
func ParseTools(raw json.RawMessage) ([]Tool, error) {
	var result struct {
		Tools []Tool `json:"tools"`
	}
	if err := decode(raw, "tools/list result", &result); err != nil {
		return nil, err
	}

	for i, tool := range result.Tools {
		if tool.Name == "" {
			return nil, parseError(raw, "tools/list result", fmt.Errorf("tools[%d]: missing name", i))
		}
	}

	return nonNil(result.Tools), nil
}

// ParseToolResult parses the result of tools/call.
func ParseToolResult(raw json.RawMessage) (*ToolResult, error) {
	var result ToolResult
	if err := decode(raw, "tools/call result", &result); err != nil {
		return nil, err
	}

	result.Content = nonNil(result.Content)

	return &result, nil
}

// ParseResources parses the result of resources/list.
func ParseResources(raw json.RawMessage) ([]Resource, error) {
	var result struct {
		Resources []Resource `json:"resources"`
	}
	if err := decode(raw, "resources/list result", &result); err != nil {
		return nil, err
	}

	for i, resource := range result.Resources {
		if resource.URI == "" {
			return nil, parseError(raw, "resources/list result", fmt.Errorf("resources[%d]: missing uri", i))
		}
	}

	return nonNil(result.Resources), nil
}

// ParseResourceContents parses the result of resources/read.
func ParseResourceContents(raw json.RawMessage) ([]ResourceContent, error) {
	var result struct {
		Contents []ResourceContent `json:"contents"`
	}
	if err := decode(raw, "resources/read result", &result); err != nil {
		return nil, err
	}

	for i, content := range result.Contents {
		if content.URI == "" {
			return nil, parseError(raw, "resources/read result", fmt.Errorf("contents[%d]: missing uri", i))
		}
	}

	return nonNil(result.Contents), nil
}

// ParsePrompts parses the result of prompts/list.
func ParsePrompts(raw json.RawMessage) ([]Prompt, error) {
	var result struct {
		Prompts []Prompt `json:"prompts"`
	}
	if err := decode(raw, "prompts/list result", &result); err != nil {
		return nil, err
	}

	for i, prompt := range result.Prompts {
		if prompt.Name == "" {
			return nil, parseError(raw, "prompts/list result", fmt.Errorf("prompts[%d]: missing name", i))
		}
	}

	return nonNil(result.Prompts), nil
}

// ParsePromptResult parses the result of prompts/get.
func ParsePromptResult(raw json.RawMessage) (*PromptResult, error) {
	var result PromptResult
	if err := decode(raw, "prompts/get result", &result); err != nil {
		return nil, err
	}

	result.Messages = nonNil(result.Messages)

	return &result, nil
}

func decode(raw json.RawMessage, what string, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return parseError(raw, what, fmt.Errorf("empty result"))
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return parseError(raw, what, err)
	}

	return nil
}

func parseError(raw json.RawMessage, what string, err error) error {
	return &errors.MessageParseError{
		Message: what,
		Err:     err,
		Data:    raw,
	}
}

// nonNil turns an absent list into an empty one.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}

	return items
}
