// Package solver builds the solver command line and runs the solver process
// inside a working directory.
package solver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/specialistvlad/nastranwrap/internal/ctxlog"
)

const (
	StdoutFile = "solver.stdout"
	StderrFile = "solver.stderr"
)

// interpreters take a script as their first argument. The script is placed
// before the deck on the command line.
var interpreters = map[string]bool{
	"python":  true,
	"python3": true,
	"sh":      true,
	"bash":    true,
}

// Command describes how to invoke the solver.
type Command struct {
	Executable string
	Args       []string
	// Env is added to the environment of the current process.
	Env     map[string]string
	Timeout time.Duration
}

// Argv returns the full command line for running deck with results written to
// dir.
func (c Command) Argv(deck, dir string) []string {
	argv := []string{c.Executable}
	args := c.Args
	if interpreters[filepath.Base(c.Executable)] && len(args) > 0 {
		argv = append(argv, args[0])
		args = args[1:]
	}
	argv = append(argv, deck)
	argv = append(argv, args...)
	return append(argv, "batch=no", "out="+dir, "dbs="+dir)
}

// ExitError reports a solver process that exited with a non-zero status.
type ExitError struct {
	Argv   []string
	Code   int
	Stderr string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	msg := fmt.Sprintf("solver %q exited with code %d", e.Argv[0], e.Code)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + lastLine(s)
	}
	return msg
}

func lastLine(s string) string {
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// Run executes c for deck inside dir and blocks until the process exits.
// Standard output and standard error are written to StdoutFile and
// StderrFile in dir. When ctx is cancelled or the timeout expires the
// process is killed, together with its process group where the platform
// has one.
func (c Command) Run(ctx context.Context, deck, dir string) error {
	if c.Executable == "" {
		return errors.New("solver command is empty")
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	logger := ctxlog.FromContext(ctx)

	argv := c.Argv(deck, dir)
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), c.envList()...)
	startOwnGroup(cmd)

	stdout, err := os.Create(filepath.Join(dir, StdoutFile))
	if err != nil {
		return fmt.Errorf("creating solver stdout: %w", err)
	}
	defer stdout.Close()
	stderrFile, err := os.Create(filepath.Join(dir, StderrFile))
	if err != nil {
		return fmt.Errorf("creating solver stderr: %w", err)
	}
	defer stderrFile.Close()
	var stderr bytes.Buffer
	cmd.Stdout = stdout
	cmd.Stderr = io.MultiWriter(stderrFile, &stderr)

	logger.Debug("Starting solver.", "argv", argv, "dir", dir)
	start := time.Now()
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start solver: %w", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	select {
	case <-ctx.Done():
		killGroup(cmd)
		<-done
		logger.Warn("Solver killed.", "reason", ctx.Err(), "elapsed", time.Since(start))
		return fmt.Errorf("solver cancelled: %w", ctx.Err())
	case err = <-done:
	}
	logger.Debug("Solver finished.", "elapsed", time.Since(start))

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{Argv: argv, Code: exitErr.ExitCode(), Stderr: stderr.String()}
		}
		return fmt.Errorf("failed to run solver: %w", err)
	}
	return nil
}

func (c Command) envList() []string {
	keys := make([]string, 0, len(c.Env))
	for k := range c.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+c.Env[k])
	}
	return out
}
