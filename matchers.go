package mcptest

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// MatchResult is the outcome of a matcher.
//
// When Pass is false, Message explains the failure. When Pass is true,
// Message is phrased for the negated assertion ("expected not to ...").
type MatchResult struct {
	Pass    bool
	Message string
}

// ContainsTool reports whether tools contains a tool called name.
func ContainsTool(tools []Tool, name string) MatchResult {
	if slices.ContainsFunc(tools, func(t Tool) bool { return t.Name == name }) {
		return MatchResult{Pass: true, Message: fmt.Sprintf("Expected tools not to contain %q", name)}
	}

	return MatchResult{
		Message: fmt.Sprintf("Expected tools to contain %q, found: [%s]", name, toolNames(tools)),
	}
}

// HasToolWithParams reports whether the tool called name declares every
// parameter in params in its input schema.
func HasToolWithParams(tools []Tool, name string, params ...string) MatchResult {
	idx := slices.IndexFunc(tools, func(t Tool) bool { return t.Name == name })
	if idx < 0 {
		return MatchResult{
			Message: fmt.Sprintf("Tool %q not found. Available: [%s]", name, toolNames(tools)),
		}
	}

	have := tools[idx].InputSchema.ParamNames()

	var missing []string

	for _, p := range params {
		if !slices.Contains(have, p) {
			missing = append(missing, p)
		}
	}

	if len(missing) == 0 {
		return MatchResult{
			Pass:    true,
			Message: fmt.Sprintf("Expected tool %q not to have params [%s]", name, strings.Join(params, ", ")),
		}
	}

	return MatchResult{
		Message: fmt.Sprintf("Tool %q missing params: [%s]. Has: [%s]",
			name, strings.Join(missing, ", "), strings.Join(have, ", ")),
	}
}

// IsToolSuccess reports whether the tool result is not an error.
func IsToolSuccess(result *ToolResult) MatchResult {
	if result == nil {
		return MatchResult{Message: "Expected success, got a nil tool result"}
	}

	if !result.IsError {
		return MatchResult{Pass: true, Message: "Expected tool result to be an error"}
	}

	content, err := json.Marshal(result.Content)
	if err != nil {
		content = []byte(strings.Join(result.Texts(), ", "))
	}

	return MatchResult{Message: "Expected success, got error: " + string(content)}
}

// IsToolError reports whether the tool result is an error.
func IsToolError(result *ToolResult) MatchResult {
	if result == nil {
		return MatchResult{Message: "Expected tool result to be an error, got a nil tool result"}
	}

	if result.IsError {
		return MatchResult{Pass: true, Message: "Expected tool result not to be an error"}
	}

	return MatchResult{Message: "Expected tool result to be an error, but it succeeded"}
}

// HasTextContent reports whether any text block of the result contains
// text. An empty text matches any result with at least one text block.
func HasTextContent(result *ToolResult, text string) MatchResult {
	var texts []string
	if result != nil {
		texts = result.Texts()
	}

	if text == "" {
		if len(texts) > 0 {
			return MatchResult{Pass: true, Message: "Expected result not to have text content"}
		}

		return MatchResult{Message: "Expected result to have text content, but found none"}
	}

	if slices.ContainsFunc(texts, func(t string) bool { return strings.Contains(t, text) }) {
		return MatchResult{Pass: true, Message: fmt.Sprintf("Expected result not to contain %q", text)}
	}

	return MatchResult{
		Message: fmt.Sprintf("Expected result to contain %q, got: [%s]", text, strings.Join(texts, ", ")),
	}
}

func toolNames(tools []Tool) string {
	names := make([]string, 0, len(tools))
	for _, t := range tools {
		names = append(names, t.Name)
	}

	return strings.Join(names, ", ")
}
