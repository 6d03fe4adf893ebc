// Package processtest provides a scripted process.Launcher for tests.
package processtest

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/chartpilot/chartpilot/pkg/process"
)

// Call is a recorded invocation.
type Call struct {
	Command string
	Args    string
	Mute    bool
}

// Line returns the invocation as a single command line.
func (c Call) Line() string {
	return strings.TrimSpace(c.Command + " " + c.Args)
}

// Response scripts the output of a matching invocation.
type Response struct {
	Lines []string
	Err   error
	// Hold keeps the stream open after Lines until it is cancelled, like a long-running
	// process such as a port-forward.
	Hold bool
	// Action runs before any line is emitted; a non-nil result replaces Err.
	Action func(c Call) error
}

type rule struct {
	prefix    string
	responses []Response
	served    int
}

// Launcher answers invocations from scripted responses. Rules are matched against the
// command line by longest prefix; a rule's responses are served in order and the last one
// repeats. Unmatched invocations succeed with no output.
type Launcher struct {
	mu      sync.Mutex
	rules   []*rule
	calls   []Call
	running map[int]bool
}

func New() *Launcher {
	return &Launcher{running: map[int]bool{}}
}

// On registers responses for command lines starting with prefix.
func (l *Launcher) On(prefix string, responses ...Response) *Launcher {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.rules = append(l.rules, &rule{prefix: prefix, responses: responses})
	sort.SliceStable(l.rules, func(i, j int) bool {
		return len(l.rules[i].prefix) > len(l.rules[j].prefix)
	})

	return l
}

func (l *Launcher) Execute(ctx context.Context, command, args string, mute bool) *process.Stream {
	call := Call{Command: command, Args: args, Mute: mute}

	l.mu.Lock()
	index := len(l.calls)
	l.calls = append(l.calls, call)
	response := l.match(call.Line())
	if response.Hold {
		l.running[index] = true
	}
	l.mu.Unlock()

	return process.Produce(ctx, func(ctx context.Context, emit func(string)) error {
		if response.Action != nil {
			if err := response.Action(call); err != nil {
				l.mu.Lock()
				delete(l.running, index)
				l.mu.Unlock()
				return err
			}
		}

		for _, line := range response.Lines {
			emit(line)
		}

		if response.Hold {
			<-ctx.Done()

			l.mu.Lock()
			delete(l.running, index)
			l.mu.Unlock()
		}

		return response.Err
	})
}

func (l *Launcher) match(line string) Response {
	for _, r := range l.rules {
		if !strings.HasPrefix(line, r.prefix) || len(r.responses) == 0 {
			continue
		}

		i := r.served
		if i >= len(r.responses) {
			i = len(r.responses) - 1
		}
		r.served++

		return r.responses[i]
	}

	return Response{}
}

// Calls returns every recorded invocation in order.
func (l *Launcher) Calls() []Call {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]Call(nil), l.calls...)
}

// CallsWithPrefix returns the recorded invocations whose command line starts with prefix.
func (l *Launcher) CallsWithPrefix(prefix string) []Call {
	var matched []Call
	for _, c := range l.Calls() {
		if strings.HasPrefix(c.Line(), prefix) {
			matched = append(matched, c)
		}
	}

	return matched
}

// Running returns the held invocations that have not been cancelled yet.
func (l *Launcher) Running() []Call {
	l.mu.Lock()
	defer l.mu.Unlock()

	var running []Call
	for i, c := range l.calls {
		if l.running[i] {
			running = append(running, c)
		}
	}

	return running
}
