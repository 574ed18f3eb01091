// Package runcode provides a tool that executes short scripts in a freshly
// spawned interpreter subprocess. The script body is delivered on the
// process's standard input (never interpolated into the command line), and
// the run is bounded by a wall-clock timeout and a combined output cap.
// Every execution outcome (success, non-zero exit, timeout, spawn failure)
// is reported as a structured JSON result rather than a handler error, so
// the orchestrator always receives a well-formed response object.
//
// No sandboxing is provided beyond the timeout and the output cap: the
// subprocess inherits the caller's environment and privileges.
package runcode

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/M1ngY/sorano-ai-chat-tools-peter/pkg/tools/toolbox"
)

const (
	// DefaultInterpreter is the interpreter binary used when none is configured.
	DefaultInterpreter = "python3"
	// DefaultTimeout is the wall-clock limit applied to each execution.
	DefaultTimeout = 10 * time.Second
	// DefaultMaxOutputBytes caps combined stdout+stderr per execution (10 MiB).
	DefaultMaxOutputBytes = 10 << 20

	// stderrFallback is substituted for an empty stderr on non-zero exits only;
	// successful runs return stderr exactly as captured, empty included.
	stderrFallback = "no error output captured"

	exitErrorMessage = "script exited with error"
)

// waitDelay bounds how long Wait keeps draining output pipes after the
// process has been killed, so an inherited pipe held by a grandchild cannot
// hang the call.
const waitDelay = 5 * time.Second

// Config holds the interpreter settings for a Runner. The zero value selects
// python3, a 10 second timeout, and a 10 MiB output cap.
type Config struct {
	// Interpreter is the binary to spawn. It must execute the program text it
	// reads on standard input (python3 and sh both do).
	Interpreter string
	// Args are extra arguments passed to the interpreter.
	Args []string
	// Timeout is the wall-clock limit per execution.
	Timeout time.Duration
	// MaxOutputBytes caps combined stdout+stderr; exceeding it aborts the run.
	MaxOutputBytes int64
}

func (c Config) withDefaults() Config {
	if c.Interpreter == "" {
		c.Interpreter = DefaultInterpreter
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxOutputBytes <= 0 {
		c.MaxOutputBytes = DefaultMaxOutputBytes
	}
	return c
}

// Runner executes scripts in interpreter subprocesses. Each call spawns a
// fresh process; nothing is shared or reused across calls, so concurrent
// executions cannot observe each other's output.
type Runner struct {
	cfg Config
}

// New creates a Runner with the given configuration.
func New(cfg Config) *Runner {
	return &Runner{cfg: cfg.withDefaults()}
}

// Result is the structured outcome of one execution. Output fields are
// pointers so that absent and empty are distinguishable in the JSON the
// orchestrator receives: a timeout or spawn failure carries only Error,
// while a completed run always carries ExitCode.
type Result struct {
	Stdout   *string `json:"stdout,omitempty"`
	Stderr   *string `json:"stderr,omitempty"`
	ExitCode *int    `json:"exit_code,omitempty"`
	Error    *string `json:"error,omitempty"`
}

func errorResult(msg string) Result {
	return Result{Error: &msg}
}

// Tools returns a ToolBox containing the run_code tool.
func (r *Runner) Tools() *toolbox.ToolBox {
	tb := toolbox.New()
	tb.Register(r.runTool())

	return tb
}

type runInput struct {
	Code string `json:"code"`
}

func (r *Runner) runTool() toolbox.Tool {
	return toolbox.Tool{
		Name: "run_code",
		Description: fmt.Sprintf(
			"Execute a script with the %s interpreter and return its output. "+
				"The script runs in a fresh subprocess with a %g second time limit; "+
				"stdout, stderr, and the exit code are returned as JSON.",
			r.cfg.Interpreter, r.cfg.Timeout.Seconds()),
		InputSchema: json.RawMessage(`{"type":"object","properties":{"code":{"type":"string","description":"The script to execute"}},"required":["code"]}`),
		Handler:     r.handleRun,
	}
}

func (r *Runner) handleRun(ctx context.Context, input json.RawMessage) (string, error) {
	var in runInput
	if err := json.Unmarshal(input, &in); err != nil {
		return "", fmt.Errorf("run_code: invalid input: %w", err)
	}

	if in.Code == "" {
		return "", fmt.Errorf("run_code: code is required")
	}

	result := r.Run(ctx, in.Code)

	data, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("run_code: marshal result: %w", err)
	}

	return string(data), nil
}

// Run executes script in a fresh interpreter subprocess and blocks until the
// process exits, the timeout elapses, or the output cap is exceeded. It never
// returns an error; every failure path is folded into the Result.
func (r *Runner) Run(ctx context.Context, script string) Result {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.cfg.Interpreter, r.cfg.Args...) //nolint:gosec // interpreter is operator configuration
	cmd.Stdin = strings.NewReader(script)
	cmd.WaitDelay = waitDelay

	budget := &outputBudget{remaining: r.cfg.MaxOutputBytes, abort: cancel}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = budget.writer(&stdout)
	cmd.Stderr = budget.writer(&stderr)

	if err := cmd.Start(); err != nil {
		return errorResult(err.Error())
	}

	err := cmd.Wait()

	if budget.overflowed() {
		return errorResult(fmt.Sprintf("output exceeded limit (%d bytes)", r.cfg.MaxOutputBytes))
	}

	switch ctx.Err() {
	case context.DeadlineExceeded:
		return errorResult(fmt.Sprintf("execution timed out (limit: %g seconds)", r.cfg.Timeout.Seconds()))
	case context.Canceled:
		return errorResult("execution canceled")
	}

	stdoutText := stdout.String()
	stderrText := stderr.String()

	if err == nil {
		zero := 0
		return Result{Stdout: &stdoutText, Stderr: &stderrText, ExitCode: &zero}
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if stderrText == "" {
			stderrText = stderrFallback
		}
		code := exitErr.ExitCode()
		msg := exitErrorMessage
		return Result{Stdout: &stdoutText, Stderr: &stderrText, ExitCode: &code, Error: &msg}
	}

	if msg := err.Error(); msg != "" {
		return errorResult(msg)
	}
	return errorResult("script execution failed")
}

// outputBudget enforces the combined stdout+stderr cap. Both stream writers
// share one budget; the first write that would exceed it marks the budget
// overflowed and aborts the subprocess.
type outputBudget struct {
	mu        sync.Mutex
	remaining int64
	exceeded  bool
	abort     context.CancelFunc
}

func (b *outputBudget) writer(dst *bytes.Buffer) *budgetWriter {
	return &budgetWriter{budget: b, dst: dst}
}

func (b *outputBudget) overflowed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.exceeded
}

type budgetWriter struct {
	budget *outputBudget
	dst    *bytes.Buffer
}

// Write consumes budget for p and copies it to the destination buffer. Once
// the budget is exceeded further output is discarded; the write itself still
// reports success so the exec copier keeps draining the pipe until the
// aborted process exits.
func (w *budgetWriter) Write(p []byte) (int, error) {
	b := w.budget

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.exceeded {
		return len(p), nil
	}

	if int64(len(p)) > b.remaining {
		b.exceeded = true
		b.abort()
		return len(p), nil
	}

	b.remaining -= int64(len(p))
	w.dst.Write(p)

	return len(p), nil
}
