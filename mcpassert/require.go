package mcpassert

import (
	"github.com/stretchr/testify/require"

	mcptest "github.com/wagiedev/mcp-test-go"
)

// RequireContainsTool is like ContainsTool but stops the test on failure.
func RequireContainsTool(t require.TestingT, tools []mcptest.Tool, name string, msgAndArgs ...any) {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}

	if !ContainsTool(t, tools, name, msgAndArgs...) {
		t.FailNow()
	}
}

// RequireHasToolWithParams is like HasToolWithParams but stops the test on failure.
func RequireHasToolWithParams(t require.TestingT, tools []mcptest.Tool, name string, params ...string) {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}

	if !HasToolWithParams(t, tools, name, params...) {
		t.FailNow()
	}
}

// RequireToolSuccess is like IsToolSuccess but stops the test on failure.
func RequireToolSuccess(t require.TestingT, result *mcptest.ToolResult, msgAndArgs ...any) {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}

	if !IsToolSuccess(t, result, msgAndArgs...) {
		t.FailNow()
	}
}

// RequireToolError is like IsToolError but stops the test on failure.
func RequireToolError(t require.TestingT, result *mcptest.ToolResult, msgAndArgs ...any) {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}

	if !IsToolError(t, result, msgAndArgs...) {
		t.FailNow()
	}
}

// RequireTextContent is like HasTextContent but stops the test on failure.
func RequireTextContent(t require.TestingT, result *mcptest.ToolResult, text string, msgAndArgs ...any) {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}

	if !HasTextContent(t, result, text, msgAndArgs...) {
		t.FailNow()
	}
}
