package process

import (
	"context"
	"sync"
)

// Stream is the live output of a single producer, usually an external process. It has a
// single consumer: read Lines until it is closed, then call Err.
type Stream struct {
	lines  chan string
	done   chan struct{}
	cancel context.CancelFunc
	err    error
}

// Produce runs fn on its own goroutine and exposes every line it emits through the returned
// Stream. Emitting never blocks: lines are queued until the consumer pulls them. When ctx is
// cancelled, or Close is called, fn's error is discarded.
func Produce(ctx context.Context, fn func(ctx context.Context, emit func(line string)) error) *Stream {
	ctx, cancel := context.WithCancel(ctx)

	s := &Stream{
		lines:  make(chan string),
		done:   make(chan struct{}),
		cancel: cancel,
	}

	q := newLineQueue()

	go func() {
		err := fn(ctx, q.push)
		if ctx.Err() != nil {
			err = nil
		}
		q.close(err)
	}()

	go s.forward(ctx, q)

	return s
}

func (s *Stream) forward(ctx context.Context, q *lineQueue) {
	defer close(s.done)
	defer s.cancel()

	delivering := true
	for {
		line, ok := q.pop()
		if !ok {
			break
		}

		if !delivering {
			continue
		}

		select {
		case s.lines <- line:
		case <-ctx.Done():
			delivering = false
		}
	}

	s.err = q.err
	close(s.lines)
}

// Lines delivers the produced lines in arrival order. The channel is closed once the
// producer has finished.
func (s *Stream) Lines() <-chan string {
	return s.lines
}

// Err blocks until the producer has finished and returns its failure, if any. Lines must
// have been drained (or Close called) beforehand.
func (s *Stream) Err() error {
	<-s.done
	return s.err
}

// Close cancels the producer and waits for it to stop. Lines not yet consumed are dropped.
func (s *Stream) Close() {
	s.cancel()
	<-s.done
}

// Next blocks for the next line. It returns false once the stream has ended.
func (s *Stream) Next() (string, bool) {
	line, ok := <-s.lines
	return line, ok
}

// Drain discards the remaining lines and returns the producer's failure.
func (s *Stream) Drain() error {
	for range s.lines {
	}
	return s.Err()
}

// lineQueue is an unbounded FIFO between the producer and the forwarding goroutine.
type lineQueue struct {
	mu     sync.Mutex
	items  []string
	closed bool
	err    error
	ready  chan struct{}
}

func newLineQueue() *lineQueue {
	return &lineQueue{ready: make(chan struct{}, 1)}
}

func (q *lineQueue) push(line string) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.items = append(q.items, line)
	q.mu.Unlock()

	q.signal()
}

func (q *lineQueue) close(err error) {
	q.mu.Lock()
	q.closed = true
	q.err = err
	q.mu.Unlock()

	q.signal()
}

func (q *lineQueue) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}

func (q *lineQueue) pop() (string, bool) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			line := q.items[0]
			q.items[0] = ""
			q.items = q.items[1:]
			q.mu.Unlock()
			return line, true
		}
		if q.closed {
			q.mu.Unlock()
			return "", false
		}
		q.mu.Unlock()

		<-q.ready
	}
}
