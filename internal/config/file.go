package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/wagiedev/mcp-test-go/internal/errors"
)

// ServerFile is an on-disk description of a server to test.
//
// Example (YAML):
//
//	command: node
//	args: [examples/echo-server.mjs]
//	env:
//	  LOG_LEVEL: debug
//	timeout: 5s
type ServerFile struct {
	Command string            `yaml:"command" toml:"command"`
	Args    []string          `yaml:"args" toml:"args"`
	Env     map[string]string `yaml:"env" toml:"env"`
	Cwd     string            `yaml:"cwd" toml:"cwd"`
	Timeout string            `yaml:"timeout" toml:"timeout"`
}

// LoadServerFile reads a server description from a .yaml, .yml or .toml file.
func LoadServerFile(path string) (*ServerFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read server file: %w", err)
	}

	var sf ServerFile

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &sf); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &sf); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return nil, &errors.ConfigError{Field: "server file", Reason: fmt.Sprintf("has unsupported extension %q", ext)}
	}

	return &sf, nil
}

// Apply copies the file's settings into o. Fields already set on o win,
// except Args and Env which are taken from the file when o has none.
func (sf *ServerFile) Apply(o *Options) error {
	if o.Command == "" {
		o.Command = sf.Command
	}

	if len(o.Args) == 0 {
		o.Args = sf.Args
	}

	if len(o.Env) == 0 && len(sf.Env) > 0 {
		o.Env = sf.Env
	}

	if o.Cwd == "" {
		o.Cwd = sf.Cwd
	}

	if o.Timeout == 0 && sf.Timeout != "" {
		timeout, err := time.ParseDuration(sf.Timeout)
		if err != nil {
			return &errors.ConfigError{Field: "timeout", Reason: fmt.Sprintf("%q is not a duration", sf.Timeout)}
		}

		o.Timeout = timeout
	}

	return nil
}
