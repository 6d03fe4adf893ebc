// Package process runs external command line tools and exposes their combined output as a
// live stream of lines.
package process

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/google/shlex"
	"go.uber.org/zap"
)

const maxLineSize = 1024 * 1024

// Launcher starts external commands. The argument string is split into arguments the way a
// POSIX shell would (quotes group words) but no shell is involved.
type Launcher interface {
	Execute(ctx context.Context, command, args string, mute bool) *Stream
}

// ExecutionError is returned when a command cannot be started or exits with a non-zero code.
type ExecutionError struct {
	Command string
	Args    string
	Stderr  string
	Err     error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("executing '%s %s': %s: %s", e.Command, e.Args, e.Err, e.Stderr)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

type Runner struct {
	writer OutputWriter
}

// NewRunner returns a Runner echoing output to w. A nil w selects ConsoleWriter.
func NewRunner(w OutputWriter) *Runner {
	if w == nil {
		w = ConsoleWriter{}
	}

	return &Runner{writer: w}
}

// Execute starts command and streams its stdout and stderr lines, interleaved in arrival
// order. Unless mute is set every line is also echoed to the runner's OutputWriter.
// Cancelling ctx, or closing the stream, kills the process without reporting a failure.
func (r *Runner) Execute(ctx context.Context, command, args string, mute bool) *Stream {
	return Produce(ctx, func(ctx context.Context, emit func(string)) error {
		return r.run(ctx, command, args, mute, emit)
	})
}

func (r *Runner) run(ctx context.Context, command, args string, mute bool, emit func(string)) error {
	argv, err := shlex.Split(args)
	if err != nil {
		return &ExecutionError{Command: command, Args: args, Err: fmt.Errorf("splitting arguments: %w", err)}
	}

	zap.S().Debugf("Executing '%s' with %d arguments", command, len(argv))

	cmd := exec.CommandContext(ctx, command, argv...)
	killProcessGroupOnCancel(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &ExecutionError{Command: command, Args: args, Err: fmt.Errorf("opening stdout: %w", err)}
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return &ExecutionError{Command: command, Args: args, Err: fmt.Errorf("opening stderr: %w", err)}
	}

	if err = cmd.Start(); err != nil {
		return &ExecutionError{Command: command, Args: args, Err: err}
	}

	var (
		wg        sync.WaitGroup
		errOutput strings.Builder
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		scanLines(stdout, func(line string) {
			emit(line)
			if !mute {
				r.writer.Write(line)
			}
		})
	}()
	go func() {
		defer wg.Done()
		scanLines(stderr, func(line string) {
			emit(line)
			errOutput.WriteString(line)
			errOutput.WriteString("\n")
			if !mute {
				r.writer.WriteError(line)
			}
		})
	}()

	// Descendants of a killed process can keep the pipes open long after it is gone.
	scanned := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = stdout.Close()
			_ = stderr.Close()
		case <-scanned:
		}
	}()

	// Both pipes have to be fully read before Wait closes them.
	wg.Wait()
	close(scanned)

	if err = cmd.Wait(); err != nil {
		return &ExecutionError{
			Command: command,
			Args:    args,
			Stderr:  strings.TrimSpace(errOutput.String()),
			Err:     err,
		}
	}

	return nil
}

func scanLines(r io.Reader, fn func(string)) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		fn(scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		if errors.Is(err, os.ErrClosed) {
			return
		}
		zap.S().Warnf("Reading process output failed: %s", err)
		// Keep the pipe flowing so the process cannot block on a full buffer.
		_, _ = io.Copy(io.Discard, r)
	}
}

// ExecuteToEnd runs command to completion and returns its output lines joined by newlines.
// Unlike a live stream, a command stopped by ctx is reported as ctx's error.
func ExecuteToEnd(ctx context.Context, l Launcher, command, args string, mute bool) (string, error) {
	stream := l.Execute(ctx, command, args, mute)

	var lines []string
	for line := range stream.Lines() {
		lines = append(lines, line)
	}

	if err := stream.Err(); err != nil {
		return "", err
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	return strings.Join(lines, "\n"), nil
}
