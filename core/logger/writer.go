package logger

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

var errWriterClosed = errors.New("logger: writer closed")

// lineSink receives fully rendered log lines.
type lineSink interface {
	WriteLine(line []byte) error
}

// queued is either a log line or, when ack is set, a sync marker.
type queued struct {
	line []byte
	ack  chan error
}

// lineWriter serialises log lines onto its sinks from a single goroutine.
// Lines are buffered and flushed whenever the queue runs dry.
type lineWriter struct {
	queue chan queued
	done  chan struct{}
	out   *bufio.Writer

	gate   sync.RWMutex
	closed bool
	stop   sync.Once

	errMu sync.Mutex
	err   error
}

func newLineWriter(sinks []io.Writer, bufSize int) *lineWriter {
	live := make([]io.Writer, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			live = append(live, s)
		}
	}
	if bufSize <= 0 {
		bufSize = 64 << 10
	}
	w := &lineWriter{
		queue: make(chan queued, 256),
		done:  make(chan struct{}),
		out:   bufio.NewWriterSize(io.MultiWriter(live...), bufSize),
	}
	go w.run()
	return w
}

func (w *lineWriter) run() {
	defer close(w.done)
	for q := range w.queue {
		if q.ack != nil {
			q.ack <- w.flush()
			continue
		}
		if _, err := w.out.Write(q.line); err != nil {
			w.fail(err)
			continue
		}
		if len(w.queue) == 0 {
			w.fail(w.out.Flush())
		}
	}
	w.fail(w.out.Flush())
}

func (w *lineWriter) enqueue(q queued) error {
	w.gate.RLock()
	defer w.gate.RUnlock()
	if w.closed {
		return errWriterClosed
	}
	// blocks while the queue is full; lines are never dropped
	w.queue <- q
	return nil
}

// WriteLine copies line and queues it for the sinks.
func (w *lineWriter) WriteLine(line []byte) error {
	if err := w.Err(); err != nil {
		return err
	}
	if len(line) == 0 {
		return nil
	}
	return w.enqueue(queued{line: append([]byte(nil), line...)})
}

// Sync blocks until every line queued before the call reached the sinks.
func (w *lineWriter) Sync() error {
	ack := make(chan error, 1)
	if err := w.enqueue(queued{ack: ack}); err != nil {
		return err
	}
	return <-ack
}

// Close drains the queue and returns the first write error seen.
func (w *lineWriter) Close() error {
	w.stop.Do(func() {
		w.gate.Lock()
		w.closed = true
		close(w.queue)
		w.gate.Unlock()
	})
	<-w.done
	return w.Err()
}

// Err reports the first write error.
func (w *lineWriter) Err() error {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	return w.err
}

func (w *lineWriter) flush() error {
	err := w.out.Flush()
	w.fail(err)
	return err
}

func (w *lineWriter) fail(err error) {
	if err == nil {
		return
	}
	w.errMu.Lock()
	if w.err == nil {
		w.err = err
	}
	w.errMu.Unlock()
}
