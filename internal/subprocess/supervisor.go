package subprocess

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"os"
	"os/exec"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wagiedev/mcp-test-go/internal/config"
	"github.com/wagiedev/mcp-test-go/internal/errors"
	"github.com/wagiedev/mcp-test-go/internal/jsonrpc"
	"github.com/wagiedev/mcp-test-go/internal/pending"
)

const (
	// readChunkSize is the size of a single read from stdout or stderr.
	readChunkSize = 64 * 1024
	// maxStderrBufferSize is the maximum number of stderr bytes retained.
	// Stderr reading continues indefinitely (the callback receives all lines),
	// but the buffer stops growing after this limit.
	maxStderrBufferSize = 10 * 1024 * 1024 // 10MB
	// maxStderrInError is how much of the stderr tail a ProcessError carries.
	maxStderrInError = 4 * 1024
)

// State is the lifecycle state of a Supervisor.
type State int

const (
	// StateNotStarted is the initial state.
	StateNotStarted State = iota
	// StateRunning means the process was spawned and has not stopped.
	StateRunning
	// StateStopped is terminal: the process exited, failed to spawn, or was closed.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not_started"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Supervisor owns a spawned MCP server process and its pending requests.
type Supervisor struct {
	log     *slog.Logger
	options *config.Options
	pending *pending.Table

	// framer is only touched by the stdout reader goroutine.
	framer jsonrpc.Framer

	mu          sync.Mutex // Protects the fields below
	state       State
	cmd         *exec.Cmd
	stdin       io.WriteCloser
	stdout      io.ReadCloser
	stderr      io.ReadCloser
	closing     bool // Whether Close() has been called (intentional shutdown)
	stdinClosed bool
	exitErr     error

	writeMu sync.Mutex // Serialises stdin writes

	stderrMu     sync.Mutex
	stderrChunks []string
	stderrBytes  int

	readers  errgroup.Group
	done     chan struct{}
	doneOnce sync.Once
}

// NewSupervisor creates a supervisor for the configured command.
// The process is not spawned until Start is called.
func NewSupervisor(log *slog.Logger, options *config.Options) *Supervisor {
	log = log.With("component", "supervisor")

	return &Supervisor{
		log:     log,
		options: options,
		pending: pending.NewTable(log),
		done:    make(chan struct{}),
	}
}

// Pending returns the table of in-flight requests owned by this supervisor.
func (s *Supervisor) Pending() *pending.Table {
	return s.pending
}

// Start spawns the server process and begins reading its output.
//
// The context bounds only the spawn itself; the process outlives it and is
// stopped by Close. Returns a *errors.StartError when the process cannot be
// spawned, in which case the supervisor moves straight to StateStopped.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateNotStarted {
		return errors.ErrAlreadyStarted
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.options.Validate(); err != nil {
		return err
	}

	s.log.Info("Starting MCP server process", "command", s.options.Command, "args", s.options.Args)

	//nolint:gosec // G204: launching the configured server is the point of the harness
	cmd := exec.Command(s.options.Command, s.options.Args...)
	cmd.Dir = s.options.Cwd
	cmd.Env = buildEnvironment(s.options.Env)

	fail := func(stage string, err error) error {
		startErr := &errors.StartError{Command: s.options.Command, Err: fmt.Errorf("%s: %w", stage, err)}

		s.log.Error("Failed to start MCP server process", "stage", stage, "error", err)
		s.state = StateStopped
		s.exitErr = startErr
		s.pending.Close(startErr)
		s.closeDone()

		return startErr
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fail("stdin pipe", err)
	}

	// Output pipes are plain files rather than StdoutPipe so that Wait
	// returns when the server exits, even if a child it spawned keeps the
	// write ends open.
	stdout, stdoutW, err := os.Pipe()
	if err != nil {
		_ = stdin.Close()

		return fail("stdout pipe", err)
	}

	stderr, stderrW, err := os.Pipe()
	if err != nil {
		_ = stdin.Close()
		closeAll(stdout, stdoutW)

		return fail("stderr pipe", err)
	}

	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	if err := cmd.Start(); err != nil {
		closeAll(stdout, stdoutW, stderr, stderrW)

		return fail("start process", err)
	}

	// The child holds its own copies of the write ends.
	closeAll(stdoutW, stderrW)

	s.cmd = cmd
	s.stdin = stdin
	s.stdout = stdout
	s.stderr = stderr
	s.state = StateRunning

	s.readers.Go(s.readStdout)
	s.readers.Go(s.readStderr)

	go s.waitForExit()

	s.log.Info("MCP server process started", "pid", cmd.Process.Pid)

	return nil
}

// Write sends one message to the server's stdin, appending a newline if
// data does not already end with one.
//
// Write is safe for concurrent use. It fails with errors.ErrNotStarted
// before Start and errors.ErrNotRunning once the process has stopped. If ctx
// is cancelled during a blocked write, stdin is closed to unblock it and
// later writes return errors.ErrStdinClosed.
func (s *Supervisor) Write(ctx context.Context, data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	stdin, err := s.writable()
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	// Copy rather than append so the caller's backing array is never mutated.
	if len(data) == 0 || data[len(data)-1] != '\n' {
		line := make([]byte, len(data)+1)
		copy(line, data)
		line[len(data)] = '\n'
		data = line
	}

	s.log.Debug("Sending message to server", "data_len", len(data))

	done := make(chan error, 1)

	go func() {
		_, err := stdin.Write(data)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			s.log.Error("Failed to write message to server", "error", err)

			if _, stateErr := s.writable(); stateErr != nil {
				return fmt.Errorf("%w: %w", stateErr, err)
			}

			return fmt.Errorf("write to stdin: %w", err)
		}

		return nil

	case <-ctx.Done():
		s.log.Debug("Context cancelled during write, closing stdin")
		s.closeStdin()

		select {
		case <-done:
		case <-time.After(time.Second):
			s.log.Warn("Write goroutine did not exit after stdin close, potential leak")
		}

		return ctx.Err()
	}
}

// writable returns stdin if the process is running and stdin is open.
func (s *Supervisor) writable() (io.Writer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.state == StateNotStarted:
		return nil, errors.ErrNotStarted
	case s.state == StateStopped || s.closing:
		return nil, errors.ErrNotRunning
	case s.stdinClosed || s.stdin == nil:
		return nil, errors.ErrStdinClosed
	}

	return s.stdin, nil
}

// State returns the current lifecycle state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// PID returns the process id, or 0 if the process was never spawned.
func (s *Supervisor) PID() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cmd == nil || s.cmd.Process == nil {
		return 0
	}

	return s.cmd.Process.Pid
}

// Done returns a channel closed once the supervisor has reached StateStopped
// and all pending requests have been rejected.
func (s *Supervisor) Done() <-chan struct{} {
	return s.done
}

// Err returns the reason the supervisor stopped, or nil while it is running.
func (s *Supervisor) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.exitErr
}

// Stderr returns the stderr output received so far as an ordered list of chunks.
func (s *Supervisor) Stderr() []string {
	s.stderrMu.Lock()
	defer s.stderrMu.Unlock()

	return slices.Clone(s.stderrChunks)
}

// CloseStdin closes the server's stdin, signalling end of input. Many
// servers exit on their own when stdin closes.
func (s *Supervisor) CloseStdin() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdin == nil || s.stdinClosed {
		return nil
	}

	s.stdinClosed = true

	return s.stdin.Close()
}

// Close rejects all pending requests with errors.ErrSessionClosed and kills
// the process. It's safe to call Close multiple times or before Start.
func (s *Supervisor) Close() error {
	s.mu.Lock()

	if s.closing || (s.state == StateStopped && s.cmd == nil) {
		s.mu.Unlock()

		return nil
	}

	s.closing = true

	if s.state == StateNotStarted {
		s.state = StateStopped
		s.exitErr = errors.ErrSessionClosed
		s.mu.Unlock()

		s.pending.Close(errors.ErrSessionClosed)
		s.closeDone()

		return nil
	}

	cmd := s.cmd
	stdin := s.stdin
	alreadyStopped := s.state == StateStopped
	s.stdinClosed = true
	s.mu.Unlock()

	if n := s.pending.Close(errors.ErrSessionClosed); n > 0 {
		s.log.Debug("Rejected pending requests on close", "count", n)
	}

	_ = stdin.Close()

	var killErr error

	if !alreadyStopped {
		s.log.Debug("Killing MCP server process", "pid", cmd.Process.Pid)

		if err := cmd.Process.Kill(); err != nil && !stderrors.Is(err, os.ErrProcessDone) {
			killErr = fmt.Errorf("kill server process (pid %d): %w", cmd.Process.Pid, err)
		}
	}

	// Output still held open by a grandchild must not keep the readers alive.
	s.closeOutput()

	select {
	case <-s.done:
	case <-time.After(s.options.ShutdownGrace):
		s.log.Warn("Server process did not stop within grace period", "grace", s.options.ShutdownGrace)
	}

	return killErr
}

// readStdout feeds stdout chunks through the framer and routes each line.
func (s *Supervisor) readStdout() error {
	defer s.log.Debug("Stdout reader stopped")

	buf := make([]byte, readChunkSize)

	for {
		n, err := s.stdout.Read(buf)
		if n > 0 {
			for _, line := range s.framer.Feed(buf[:n]) {
				s.handleLine(line)
			}
		}

		if err != nil {
			if rest := s.framer.Flush(); strings.TrimSpace(rest) != "" {
				s.handleLine(rest)
			}

			if stderrors.Is(err, io.EOF) || stderrors.Is(err, os.ErrClosed) {
				return nil
			}

			return fmt.Errorf("read stdout: %w", err)
		}
	}
}

// handleLine decodes one stdout line and settles the matching request.
func (s *Supervisor) handleLine(line string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return
	}

	msg, err := jsonrpc.Decode(trimmed)
	if err != nil {
		s.log.Debug("Dropping non-JSON line from server", "line", trimmed)
		s.diagnose(err)

		return
	}

	switch msg.Kind() {
	case jsonrpc.KindNotification:
		s.log.Debug("Dropping notification from server", "method", msg.Method)

		return
	case jsonrpc.KindRequest:
		s.log.Debug("Dropping request from server", "method", msg.Method)

		return
	}

	id, ok := msg.NumericID()
	if !ok {
		s.log.Warn("Dropping response with non-numeric id", "id", string(msg.ID))
		s.diagnose(&errors.UnmatchedResponseError{ID: -1})

		return
	}

	var settled bool

	if msg.Error != nil {
		settled = s.pending.Reject(id, msg.Error)
	} else {
		result := msg.Result
		if len(result) == 0 {
			result = json.RawMessage("null")
		}

		settled = s.pending.Resolve(id, result)
	}

	if !settled {
		s.log.Warn("No pending request for response", "id", id)
		s.diagnose(&errors.UnmatchedResponseError{ID: id})

		return
	}

	s.log.Debug("Received response from server", "id", id, "error", msg.Error != nil)
}

// readStderr buffers stderr chunks and forwards complete lines to the callback.
func (s *Supervisor) readStderr() error {
	defer s.log.Debug("Stderr reader stopped")

	var lines jsonrpc.Framer

	buf := make([]byte, readChunkSize)

	for {
		n, err := s.stderr.Read(buf)
		if n > 0 {
			chunk := string(buf[:n])

			s.stderrMu.Lock()
			if s.stderrBytes < maxStderrBufferSize {
				s.stderrChunks = append(s.stderrChunks, chunk)
				s.stderrBytes += len(chunk)
			}
			s.stderrMu.Unlock()

			if s.options.Stderr != nil {
				for _, line := range lines.Feed(buf[:n]) {
					s.options.Stderr(line)
				}
			}
		}

		if err != nil {
			if rest := lines.Flush(); rest != "" && s.options.Stderr != nil {
				s.options.Stderr(rest)
			}

			if !stderrors.Is(err, io.EOF) && !stderrors.Is(err, os.ErrClosed) {
				s.log.Debug("Stderr read error", "error", err)
			}

			// Stderr failures never stop the session.
			return nil
		}
	}
}

// waitForExit waits for the process, lets the readers drain what it wrote,
// then rejects everything still pending with the exit cause.
func (s *Supervisor) waitForExit() {
	waitErr := s.cmd.Wait()
	readErr := s.drainReaders()

	s.mu.Lock()
	closing := s.closing
	s.state = StateStopped
	s.mu.Unlock()

	var cause error

	if closing {
		cause = errors.ErrSessionClosed

		s.log.Debug("MCP server process terminated during shutdown")
	} else {
		exitCode := s.cmd.ProcessState.ExitCode()

		procErr := &errors.ProcessError{
			ExitCode: exitCode,
			Stderr:   s.stderrTail(),
		}

		if _, isExit := stderrors.AsType[*exec.ExitError](waitErr); waitErr != nil && (!isExit || exitCode < 0) {
			procErr.Err = waitErr
		} else if readErr != nil {
			procErr.Err = readErr
		}

		cause = procErr

		s.log.Info("MCP server process exited", "exit_code", exitCode, "error", procErr.Err)
	}

	s.mu.Lock()
	s.exitErr = cause
	s.mu.Unlock()

	if n := s.pending.Close(cause); n > 0 {
		s.log.Warn("Rejected pending requests after process exit", "count", n, "cause", cause)
	}

	s.closeDone()
}

// drainReaders waits for both readers to reach end of file. If the output
// pipes are still open after the grace period, for example because a
// grandchild inherited them, the read ends are closed to stop the readers.
func (s *Supervisor) drainReaders() error {
	done := make(chan error, 1)

	go func() {
		done <- s.readers.Wait()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(s.options.ShutdownGrace):
		s.log.Warn("Server output still open after exit, closing it", "grace", s.options.ShutdownGrace)
		s.closeOutput()

		return <-done
	}
}

// closeOutput closes the read ends of stdout and stderr, unblocking the readers.
func (s *Supervisor) closeOutput() {
	s.mu.Lock()
	stdout, stderr := s.stdout, s.stderr
	s.mu.Unlock()

	closeAll(stdout, stderr)
}

func closeAll(closers ...io.Closer) {
	for _, c := range closers {
		if c != nil {
			_ = c.Close()
		}
	}
}

// closeStdin closes stdin after a cancelled write.
func (s *Supervisor) closeStdin() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdin != nil && !s.stdinClosed {
		_ = s.stdin.Close()
		s.stdinClosed = true
	}
}

func (s *Supervisor) closeDone() {
	s.doneOnce.Do(func() {
		close(s.done)
	})
}

func (s *Supervisor) diagnose(err error) {
	if s.options.Diagnostics != nil {
		s.options.Diagnostics(err)
	}
}

// stderrTail returns up to maxStderrInError trailing bytes of stderr.
func (s *Supervisor) stderrTail() string {
	s.stderrMu.Lock()
	defer s.stderrMu.Unlock()

	text := strings.Join(s.stderrChunks, "")
	if len(text) > maxStderrInError {
		text = text[len(text)-maxStderrInError:]
	}

	return strings.TrimSpace(text)
}

// buildEnvironment returns the current environment with overrides applied.
// Later entries win, so overrides are appended in a stable order.
func buildEnvironment(overrides map[string]string) []string {
	env := os.Environ()

	for _, key := range slices.Sorted(maps.Keys(overrides)) {
		env = append(env, key+"="+overrides[key])
	}

	return env
}
