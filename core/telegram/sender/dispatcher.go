// Package sender runs outbound Telegram calls on a small worker pool so
// update handlers return without waiting on the network.
package sender

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m3rciful/quizbot/core/logger"
	"github.com/m3rciful/quizbot/core/telegram/netutil"
)

var (
	// ErrQueueClosed is returned when enqueue is attempted after dispatcher stop.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull indicates the queue is saturated and the job was not accepted.
	ErrQueueFull = errors.New("telegram sender: queue full")
)

// Options controls the behaviour of the outbound dispatcher.
// MaxRetries of zero means a failed send is logged and dropped.
type Options struct {
	QueueSize    int
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxDuration bounds the time spent on a single job including retries.
	MaxDuration time.Duration
}

func (o Options) withDefaults() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	o.MaxRetries = max(o.MaxRetries, 0)
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 2 * time.Second
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = 12 * time.Second
	}
	return o
}

type job struct {
	ctx      context.Context
	action   string
	endpoint string
	run      func() error
}

// Dispatcher is a bounded queue drained by a fixed set of workers.
type Dispatcher struct {
	opts Options
	jobs chan job
	wg   sync.WaitGroup

	mu     sync.RWMutex
	closed bool

	failed atomic.Uint64
}

// NewDispatcher starts the workers. Zero options fall back to defaults.
func NewDispatcher(opts Options) *Dispatcher {
	opts = opts.withDefaults()
	d := &Dispatcher{opts: opts, jobs: make(chan job, opts.QueueSize)}
	for range opts.Workers {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for j := range d.jobs {
				d.deliver(j)
			}
		}()
	}
	return d
}

// Enqueue schedules run without blocking. With retries enabled run may be
// called more than once.
func (d *Dispatcher) Enqueue(ctx context.Context, action, endpoint string, run func() error) error {
	if run == nil {
		return errors.New("telegram sender: nil run function")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrQueueClosed
	}
	select {
	case d.jobs <- job{ctx: ctx, action: action, endpoint: endpoint, run: run}:
		return nil
	default:
		return ErrQueueFull
	}
}

// ErrorCount returns the number of jobs that failed for good.
func (d *Dispatcher) ErrorCount() uint64 {
	return d.failed.Load()
}

// Close stops intake and waits for queued jobs. It is safe to call twice.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.jobs)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) deliver(j job) {
	start := time.Now()
	attempts, err := d.runWithRetry(j)

	attrs := []slog.Attr{slog.String("handler", j.action)}
	if j.endpoint != "" {
		attrs = append(attrs, slog.String("endpoint", j.endpoint))
	}
	if attempts > 1 {
		attrs = append(attrs, slog.Int("attempts", attempts))
	}
	attrs = append(attrs, slog.Duration("duration", time.Since(start)))

	if err == nil {
		logger.Debug(j.ctx, "tg.sender", "send.success", attrs...)
		return
	}
	d.failed.Add(1)
	logger.Error(j.ctx, "tg.sender", "send.fail", append(attrs,
		slog.String("err", redactToken(err)),
		slog.String("err_code", classifyError(err)),
	)...)
}

// runWithRetry calls j.run until it succeeds, fails permanently, runs out of
// attempts or exceeds MaxDuration. Backoff grows linearly.
func (d *Dispatcher) runWithRetry(j job) (int, error) {
	budget, cancel := context.WithTimeout(context.WithoutCancel(j.ctx), d.opts.MaxDuration)
	defer cancel()

	limit := d.opts.MaxRetries + 1
	for attempt := 1; ; attempt++ {
		err := j.run()
		if err == nil || attempt == limit || !netutil.ShouldRetry(err) {
			return attempt, err
		}
		wait := time.NewTimer(d.opts.RetryBackoff * time.Duration(attempt))
		select {
		case <-budget.Done():
			wait.Stop()
			return attempt, errors.Join(err, budget.Err())
		case <-wait.C:
		}
	}
}
