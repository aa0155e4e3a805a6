//go:build integration

package integration

import (
	"encoding/json"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCLI_ProbeEchoServer(t *testing.T) {
	out, err := exec.CommandContext(t.Context(), cliBinary, "probe", "-o", "json", "--", echoBinary).Output()
	require.NoError(t, err)

	var report struct {
		Server struct {
			Name string `json:"name"`
		} `json:"server"`
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(out, &report))

	assert.Equal(t, "echo-server", report.Server.Name)
	assert.Len(t, report.Tools, 3)
}

func TestCLI_CallExitCodes(t *testing.T) {
	out, err := exec.CommandContext(t.Context(), cliBinary, "call", "echo",
		"--args", `{"message":"from the shell"}`, "--", echoBinary).Output()
	require.NoError(t, err)
	assert.Contains(t, string(out), "from the shell")

	err = exec.CommandContext(t.Context(), cliBinary, "call", "fail",
		"--args", `{"message":"x"}`, "--", echoBinary).Run()

	exitErr, ok := errors.AsType[*exec.ExitError](err)
	require.True(t, ok, "expected exit error, got %v", err)
	assert.Equal(t, 1, exitErr.ExitCode())
}

func TestCLI_Version(t *testing.T) {
	out, err := exec.CommandContext(t.Context(), cliBinary, "version").Output()
	require.NoError(t, err)
	assert.Equal(t, "mcptest version dev\n", string(out))
}
