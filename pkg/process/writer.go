package process

import (
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
)

// OutputWriter receives process output lines for live visibility.
type OutputWriter interface {
	Write(line string)
	WriteError(line string)
}

// ConsoleWriter writes lines to the standard output and error streams.
type ConsoleWriter struct{}

func (ConsoleWriter) Write(line string) {
	fmt.Fprintln(os.Stdout, line)
}

func (ConsoleWriter) WriteError(line string) {
	fmt.Fprintln(os.Stderr, line)
}

// LogWriter forwards lines to the global zap logger.
type LogWriter struct{}

func (LogWriter) Write(line string) {
	zap.S().Info(line)
}

func (LogWriter) WriteError(line string) {
	zap.S().Warn(line)
}

// StreamWriter writes both kinds of lines to a single io.Writer, prefixing error lines.
type StreamWriter struct {
	mu  sync.Mutex
	Out io.Writer
}

func (w *StreamWriter) Write(line string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintln(w.Out, line)
}

func (w *StreamWriter) WriteError(line string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fmt.Fprintf(w.Out, "ERROR: %s\n", line)
}
