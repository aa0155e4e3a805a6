// Package testpeer implements a scriptable JSON-RPC peer used by the
// harness's own tests.
//
// Tests re-execute their own binary as the peer: a TestHelperProcess
// function calls Main when IsHelperProcess reports true, and Command returns
// the command line that starts it. Behaviour is selected per request by
// method name, plus a few process-wide switches in Config.
package testpeer

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"
	"time"
)

const (
	// EnvWantHelper marks a re-executed test binary as the peer process.
	EnvWantHelper = "GO_WANT_HELPER_PROCESS"
	// EnvConfig carries the JSON-encoded Config.
	EnvConfig = "MCPTEST_PEER_CONFIG"
)

// exit is swapped out by tests of this package.
var exit = os.Exit

// Config switches process-wide peer behaviour.
type Config struct {
	// ReverseBatch buffers this many echo responses and writes them in reverse order.
	ReverseBatch int `json:"reverse_batch,omitempty"`
	// ExitOnStart makes the peer exit with ExitCode before reading any input.
	ExitOnStart bool `json:"exit_on_start,omitempty"`
	// ExitCode is used with ExitOnStart.
	ExitCode int `json:"exit_code,omitempty"`
	// Banner is written to stdout before serving, as a noisy server would.
	Banner string `json:"banner,omitempty"`
	// Stderr is written to stderr before serving.
	Stderr string `json:"stderr,omitempty"`
}

type message struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *wireError      `json:"error,omitempty"`
}

type wireError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// IsHelperProcess reports whether the current process was started by Command.
func IsHelperProcess() bool {
	return os.Getenv(EnvWantHelper) == "1"
}

// Command returns the executable, arguments and environment that start the
// current test binary as a peer with cfg.
func Command(cfg Config) (string, []string, map[string]string) {
	data, err := json.Marshal(cfg)
	if err != nil {
		panic(fmt.Sprintf("testpeer: marshal config: %v", err))
	}

	return os.Args[0],
		[]string{"-test.run=^TestHelperProcess$", "--"},
		map[string]string{
			EnvWantHelper: "1",
			EnvConfig:     string(data),
		}
}

// Main runs the peer on the process's stdio and exits.
func Main() {
	var cfg Config

	if raw := os.Getenv(EnvConfig); raw != "" {
		if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
			fmt.Fprintf(os.Stderr, "testpeer: bad config: %v\n", err)
			exit(2)
		}
	}

	if err := Serve(os.Stdin, os.Stdout, os.Stderr, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "testpeer: %v\n", err)
		exit(1)
	}

	exit(0)
}

// peer holds per-connection state.
type peer struct {
	cfg    Config
	out    io.Writer
	errOut io.Writer

	mu       sync.Mutex // Serialises writes to out
	reversed []message

	wg sync.WaitGroup
}

// Serve answers requests from in until it reaches EOF.
//
// Methods:
//   - initialize: returns a fixed server identity.
//   - echo: returns params as the result.
//   - sleep {"ms": N}: responds after N milliseconds without blocking other requests.
//   - never: never responds.
//   - fail: returns error -32000 with params as data.
//   - noise: writes a non-JSON line, a notification and a stray response before the result.
//   - split: writes the response in three separate chunks.
//   - stderr {"text": T}: writes T to stderr, then responds.
//   - exit {"code": N}: responds, then exits with N.
//   - crash {"code": N}: writes to stderr and exits with N without responding.
//
// Any other method returns error -32601 "Unknown method: <name>".
func Serve(in io.Reader, out, errOut io.Writer, cfg Config) error {
	p := &peer{cfg: cfg, out: out, errOut: errOut}

	if cfg.Stderr != "" {
		fmt.Fprint(errOut, cfg.Stderr)
	}

	if cfg.ExitOnStart {
		exit(cfg.ExitCode)

		return nil
	}

	if cfg.Banner != "" {
		p.writeRaw(cfg.Banner + "\n")
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		var msg message
		if err := json.Unmarshal(scanner.Bytes(), &msg); err != nil {
			fmt.Fprintf(errOut, "testpeer: invalid JSON: %v\n", err)

			continue
		}

		// Notifications need no answer.
		if len(msg.ID) == 0 {
			continue
		}

		p.handle(msg)
	}

	p.wg.Wait()

	return scanner.Err()
}

func (p *peer) handle(req message) {
	switch req.Method {
	case "initialize":
		var params struct {
			ProtocolVersion string `json:"protocolVersion"`
		}
		_ = json.Unmarshal(req.Params, &params)

		if params.ProtocolVersion == "" {
			params.ProtocolVersion = "2024-11-05"
		}

		p.result(req, map[string]any{
			"protocolVersion": params.ProtocolVersion,
			"capabilities":    map[string]any{"tools": map[string]any{}},
			"serverInfo":      map[string]any{"name": "test-peer", "version": "1.0.0"},
		})

	case "echo":
		params := req.Params
		if len(params) == 0 {
			params = json.RawMessage(`{}`)
		}

		if p.cfg.ReverseBatch > 0 {
			p.bufferReversed(message{JSONRPC: "2.0", ID: req.ID, Result: params})

			return
		}

		p.write(message{JSONRPC: "2.0", ID: req.ID, Result: params})

	case "sleep":
		var params struct {
			MS int `json:"ms"`
		}
		_ = json.Unmarshal(req.Params, &params)

		p.wg.Go(func() {
			time.Sleep(time.Duration(params.MS) * time.Millisecond)
			p.result(req, map[string]any{"slept": params.MS})
		})

	case "never":

	case "fail":
		p.write(message{JSONRPC: "2.0", ID: req.ID, Error: &wireError{
			Code:    -32000,
			Message: "requested failure",
			Data:    req.Params,
		}})

	case "noise":
		p.writeRaw("this line is not json\n")
		p.writeRaw(`{"jsonrpc":"2.0","method":"notifications/message","params":{"level":"info","data":"working"}}` + "\n")
		p.writeRaw(`{"jsonrpc":"2.0","id":99999,"result":{"stray":true}}` + "\n")
		p.result(req, map[string]any{"quiet": true})

	case "split":
		data, _ := json.Marshal(message{JSONRPC: "2.0", ID: req.ID, Result: json.RawMessage(`{"split":true}`)})
		data = append(data, '\n')
		third := len(data) / 3

		for _, part := range [][]byte{data[:third], data[third : 2*third], data[2*third:]} {
			p.writeRaw(string(part))
			time.Sleep(5 * time.Millisecond)
		}

	case "stderr":
		var params struct {
			Text string `json:"text"`
		}
		_ = json.Unmarshal(req.Params, &params)

		fmt.Fprint(p.errOut, params.Text)
		p.result(req, map[string]any{})

	case "exit":
		var params struct {
			Code int `json:"code"`
		}
		_ = json.Unmarshal(req.Params, &params)

		p.result(req, map[string]any{})
		exit(params.Code)

	case "crash":
		var params struct {
			Code int `json:"code"`
		}
		_ = json.Unmarshal(req.Params, &params)

		if params.Code == 0 {
			params.Code = 3
		}

		fmt.Fprintln(p.errOut, "fatal: crash requested")
		exit(params.Code)

	default:
		p.write(message{JSONRPC: "2.0", ID: req.ID, Error: &wireError{
			Code:    -32601,
			Message: "Unknown method: " + req.Method,
		}})
	}
}

func (p *peer) result(req message, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		data = []byte(`null`)
	}

	p.write(message{JSONRPC: "2.0", ID: req.ID, Result: data})
}

func (p *peer) bufferReversed(resp message) {
	p.mu.Lock()
	p.reversed = append(p.reversed, resp)

	if len(p.reversed) < p.cfg.ReverseBatch {
		p.mu.Unlock()

		return
	}

	batch := p.reversed
	p.reversed = nil
	p.mu.Unlock()

	slices.Reverse(batch)

	for _, m := range batch {
		p.write(m)
	}
}

func (p *peer) write(m message) {
	data, err := json.Marshal(m)
	if err != nil {
		return
	}

	p.writeRaw(string(data) + "\n")
}

func (p *peer) writeRaw(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, _ = io.WriteString(p.out, s)
}
