// Package warmup runs the user-defined warm-up command for an environment.
package warmup

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// HostPlaceholder is replaced with the resolved cluster URL in command templates
const HostPlaceholder = "{{__HOST__}}"

// DefaultErrorLog is where the child's standard error is appended
var DefaultErrorLog = filepath.Join(os.TempDir(), "error-output.txt")

// Render substitutes every host placeholder in template with host
func Render(template, host string) string {
	return strings.ReplaceAll(template, HostPlaceholder, host)
}

// Runner spawns a warm-up command through the system shell
type Runner struct {
	Dir      string    // working directory of the child
	Stdout   io.Writer // receives the child's output, line by line
	ErrorLog string    // file the child's stderr is appended to
}

// NewRunner creates a runner with the default error log
func NewRunner(dir string, stdout io.Writer) *Runner {
	return &Runner{
		Dir:      dir,
		Stdout:   stdout,
		ErrorLog: DefaultErrorLog,
	}
}

// Run executes command and blocks until it exits. Output is copied to
// r.Stdout as each line arrives; stdout is drained before waiting so a full
// pipe cannot deadlock the child.
func (r *Runner) Run(ctx context.Context, command string) error {
	errLog, err := os.OpenFile(r.ErrorLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open error log %s: %w", r.ErrorLog, err)
	}
	defer errLog.Close()

	cmd := shellCommand(ctx, command)
	cmd.Dir = r.Dir
	cmd.Stderr = errLog

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to attach to command output: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start command: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		_, _ = fmt.Fprintln(r.Stdout, scanner.Text())
	}
	scanErr := scanner.Err()
	if scanErr != nil {
		// keep draining so the child is never blocked on a full pipe
		_, _ = io.Copy(io.Discard, stdout)
	}

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("warm-up command exited with status %d (see %s)", exitErr.ExitCode(), r.ErrorLog)
		}
		return fmt.Errorf("warm-up command failed: %w", err)
	}

	if scanErr != nil {
		return fmt.Errorf("failed to read command output: %w", scanErr)
	}

	return nil
}

func shellCommand(ctx context.Context, command string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, "cmd", "/C", command)
	}
	return exec.CommandContext(ctx, "sh", "-c", command)
}
