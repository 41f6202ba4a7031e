package sender

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m3rciful/yeabuddy/core/logger"
	"github.com/m3rciful/yeabuddy/core/telegram/netutil"

	tele "gopkg.in/telebot.v4"
)

var (
	// ErrQueueClosed is returned when enqueue is attempted after dispatcher stop.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull indicates the queue is saturated and the job was not accepted.
	ErrQueueFull = errors.New("telegram sender: queue full")
)

const component = "tg.sender"

// Options controls the behaviour of the outbound dispatcher.
type Options struct {
	// QueueSize is the buffer of each worker lane.
	QueueSize  int
	Workers    int
	MaxRetries int
	// RetryBackoff grows linearly with the attempt number.
	RetryBackoff time.Duration
	// MaxDuration bounds the time spent retrying a single job.
	MaxDuration time.Duration
}

func (o Options) withDefaults() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = 64
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

func (j job) attrs(extra ...slog.Attr) []slog.Attr {
	attrs := []slog.Attr{slog.String("action", j.action)}
	if j.endpoint != "" {
		attrs = append(attrs, slog.String("endpoint", j.endpoint))
	}
	return append(attrs, extra...)
}

// Dispatcher runs outbound Telegram calls on worker lanes with retries.
// Jobs for the same chat always land on the same lane, so replies to one
// user are delivered in the order they were enqueued.
type Dispatcher struct {
	opts   Options
	lanes  []chan job
	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
	failed atomic.Uint64
}

// NewDispatcher starts the worker lanes. Zero options get defaults.
func NewDispatcher(opts Options) *Dispatcher {
	opts = opts.withDefaults()
	d := &Dispatcher{opts: opts, lanes: make([]chan job, opts.Workers)}
	d.wg.Add(len(d.lanes))
	for i := range d.lanes {
		d.lanes[i] = make(chan job, opts.QueueSize)
		go d.work(d.lanes[i])
	}
	return d
}

// Enqueue schedules run on the lane of the chat carried by ctx. run may be
// called more than once when a transient error is retried.
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
	case d.lane(logger.ChatIDFrom(ctx)) <- job{ctx: ctx, action: action, endpoint: endpoint, run: run}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (d *Dispatcher) lane(chatID int64) chan job {
	n := int64(len(d.lanes))
	return d.lanes[((chatID%n)+n)%n]
}

// ErrorCount returns the number of jobs that finally failed.
func (d *Dispatcher) ErrorCount() uint64 {
	return d.failed.Load()
}

// Close stops accepting jobs and waits for queued ones to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, lane := range d.lanes {
		close(lane)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) work(lane <-chan job) {
	defer d.wg.Done()
	for j := range lane {
		if err := d.deliver(j); err != nil {
			d.failed.Add(1)
		}
	}
}

// deliver runs the job until it succeeds, fails permanently, runs out of
// retries or exceeds MaxDuration. The caller's cancellation is ignored: a
// reply already queued is still sent after the update handler returned.
func (d *Dispatcher) deliver(j job) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(j.ctx), d.opts.MaxDuration)
	defer cancel()
	start := time.Now()

	for attempt := 1; ; attempt++ {
		err := j.run()
		if err == nil {
			logger.Debug(j.ctx, component, "send.success", j.attrs(
				slog.Int("attempts", attempt),
				slog.Duration("elapsed", time.Since(start)),
			)...)
			return nil
		}
		if !netutil.ShouldRetry(err) || attempt > d.opts.MaxRetries {
			return d.fail(j, err, attempt, start)
		}
		delay := retryDelay(err, d.opts.RetryBackoff, attempt)
		logger.Debug(j.ctx, component, "send.retry", j.attrs(
			slog.Int("attempts", attempt),
			slog.Duration("backoff", delay),
			slog.String("err", sanitizeErrorMessage(err)),
		)...)
		select {
		case <-ctx.Done():
			return d.fail(j, errors.Join(err, ctx.Err()), attempt, start)
		case <-time.After(delay):
		}
	}
}

func (d *Dispatcher) fail(j job, err error, attempts int, start time.Time) error {
	logger.Error(j.ctx, component, "send.fail", j.attrs(
		slog.String("err", sanitizeErrorMessage(err)),
		slog.String("err_kind", classifyError(err)),
		slog.Int("attempts", attempts),
		slog.Duration("elapsed", time.Since(start)),
	)...)
	return err
}

// retryDelay honours Telegram's retry_after on flood errors.
func retryDelay(err error, backoff time.Duration, attempt int) time.Duration {
	var flood tele.FloodError
	if errors.As(err, &flood) && flood.RetryAfter > 0 {
		return time.Duration(flood.RetryAfter) * time.Second
	}
	return backoff * time.Duration(attempt)
}
