// Package mcpassert provides testify-style assertions over mcptest results.
//
// Each function reports a failure through t.Errorf and returns whether the
// assertion held, like the functions of testify's assert package. The
// Require variants stop the test with t.FailNow instead.
//
//	tools, err := server.ListTools(ctx)
//	require.NoError(t, err)
//	mcpassert.ContainsTool(t, tools, "echo")
//	mcpassert.HasToolWithParams(t, tools, "add", "a", "b")
package mcpassert

import (
	"github.com/stretchr/testify/assert"

	mcptest "github.com/wagiedev/mcp-test-go"
)

type tHelper interface {
	Helper()
}

// ContainsTool asserts that tools contains a tool called name.
func ContainsTool(t assert.TestingT, tools []mcptest.Tool, name string, msgAndArgs ...any) bool {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}

	return check(t, mcptest.ContainsTool(tools, name), msgAndArgs...)
}

// HasToolWithParams asserts that the tool called name declares every param.
func HasToolWithParams(t assert.TestingT, tools []mcptest.Tool, name string, params ...string) bool {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}

	return check(t, mcptest.HasToolWithParams(tools, name, params...))
}

// IsToolSuccess asserts that the tool result is not an error.
func IsToolSuccess(t assert.TestingT, result *mcptest.ToolResult, msgAndArgs ...any) bool {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}

	return check(t, mcptest.IsToolSuccess(result), msgAndArgs...)
}

// IsToolError asserts that the tool result is an error.
func IsToolError(t assert.TestingT, result *mcptest.ToolResult, msgAndArgs ...any) bool {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}

	return check(t, mcptest.IsToolError(result), msgAndArgs...)
}

// HasTextContent asserts that a text block of the result contains text.
// An empty text asserts that there is at least one text block.
func HasTextContent(t assert.TestingT, result *mcptest.ToolResult, text string, msgAndArgs ...any) bool {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}

	return check(t, mcptest.HasTextContent(result, text), msgAndArgs...)
}

func check(t assert.TestingT, result mcptest.MatchResult, msgAndArgs ...any) bool {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}

	if result.Pass {
		return true
	}

	return assert.Fail(t, result.Message, msgAndArgs...)
}
