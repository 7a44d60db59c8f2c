// Package dispatch serializes outbound HTTP calls behind a rate-governed
// single-consumer queue. Exactly one request is in flight at a time: the
// three rate-limit windows are counted globally across every source and
// endpoint, so parallel dispatch would make limit accounting incorrect.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"disclosure-sync/internal/observability"
)

// ErrQueueCleared is delivered to every pending request when the queue is
// cleared for shutdown or testing.
var ErrQueueCleared = errors.New("dispatch: queue cleared")

// ErrWaitBudgetExhausted is delivered when the rate-limit wait loop runs out
// of attempts without a window freeing up.
var ErrWaitBudgetExhausted = errors.New("dispatch: rate-limit wait budget exhausted")

// Default configuration values.
const (
	DefaultQueueSize         = 256
	DefaultPerMinute         = 10
	DefaultPerHour           = 300
	DefaultPerDay            = 2000
	DefaultInterRequestDelay = 500 * time.Millisecond
	DefaultRequestTimeout    = 30 * time.Second
	DefaultMaxWait           = 2 * time.Minute
	DefaultMaxWaitAttempts   = 6
	DefaultMaxRetries        = 3
	DefaultRetryDelay        = 1 * time.Second
)

// Limits are the per-window request ceilings. Zero means unlimited for that
// window.
type Limits struct {
	PerMinute int
	PerHour   int
	PerDay    int
}

type result struct {
	resp *http.Response
	err  error
}

type pending struct {
	req  *http.Request
	done chan result // buffered, never blocks the drain loop
}

// Dispatcher is the rate-limited request queue. All state is owned by the
// struct and the single drain goroutine; no package-level mutable state.
type Dispatcher struct {
	client       *http.Client
	clock        Clock
	windows      []*window
	queue        chan *pending
	interDelay   time.Duration
	maxWait      time.Duration
	waitAttempts int
	maxRetries   int
	retryDelay   time.Duration
	logger       *log.Logger
}

// Options contains configuration for creating a Dispatcher.
type Options struct {
	Limits            Limits
	Client            *http.Client
	Clock             Clock
	QueueSize         int
	InterRequestDelay time.Duration
	MaxWait           time.Duration // cap on a single rate-limit sleep
	MaxWaitAttempts   int
	MaxRetries        int // transparent retries for 429 and network errors
	RetryDelay        time.Duration
	Logger            *log.Logger
}

// New creates a new Dispatcher. Call Start before enqueuing.
func New(opts Options) *Dispatcher {
	limits := opts.Limits
	if limits.PerMinute == 0 && limits.PerHour == 0 && limits.PerDay == 0 {
		limits = Limits{PerMinute: DefaultPerMinute, PerHour: DefaultPerHour, PerDay: DefaultPerDay}
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: DefaultRequestTimeout}
	}

	clock := opts.Clock
	if clock == nil {
		clock = SystemClock()
	}

	queueSize := opts.QueueSize
	if queueSize == 0 {
		queueSize = DefaultQueueSize
	}

	interDelay := opts.InterRequestDelay
	if interDelay == 0 {
		interDelay = DefaultInterRequestDelay
	}

	maxWait := opts.MaxWait
	if maxWait == 0 {
		maxWait = DefaultMaxWait
	}

	waitAttempts := opts.MaxWaitAttempts
	if waitAttempts == 0 {
		waitAttempts = DefaultMaxWaitAttempts
	}

	maxRetries := opts.MaxRetries
	if maxRetries == 0 {
		maxRetries = DefaultMaxRetries
	}

	retryDelay := opts.RetryDelay
	if retryDelay == 0 {
		retryDelay = DefaultRetryDelay
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Dispatcher{
		client: client,
		clock:  clock,
		windows: []*window{
			newWindow("minute", time.Minute, limits.PerMinute),
			newWindow("hour", time.Hour, limits.PerHour),
			newWindow("day", 24*time.Hour, limits.PerDay),
		},
		queue:        make(chan *pending, queueSize),
		interDelay:   interDelay,
		maxWait:      maxWait,
		waitAttempts: waitAttempts,
		maxRetries:   maxRetries,
		retryDelay:   retryDelay,
		logger:       logger,
	}
}

// Start launches the drain loop. It exits when ctx is cancelled, rejecting
// whatever is still queued.
func (d *Dispatcher) Start(ctx context.Context) {
	go d.drain(ctx)
}

// Enqueue submits a request and blocks until its response is delivered, the
// queue is cleared, or ctx is done. A failure of one request never halts the
// queue.
func (d *Dispatcher) Enqueue(ctx context.Context, req *http.Request) (*http.Response, error) {
	p := &pending{req: req, done: make(chan result, 1)}

	select {
	case d.queue <- p:
		observability.SetQueueDepth(len(d.queue))
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-p.done:
		return res.resp, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Do satisfies fmp.Doer.
func (d *Dispatcher) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	return d.Enqueue(ctx, req)
}

// ClearQueue rejects all pending requests with ErrQueueCleared and returns
// how many were rejected. An in-flight request is never interrupted; the
// drain loop keeps running and the dispatcher stays usable.
func (d *Dispatcher) ClearQueue() int {
	n := 0
	for {
		select {
		case p := <-d.queue:
			p.done <- result{err: ErrQueueCleared}
			n++
		default:
			observability.SetQueueDepth(0)
			return n
		}
	}
}

// drain is the single consumer. It pulls one request at a time, waits for
// window capacity, dispatches, then applies the inter-request delay.
func (d *Dispatcher) drain(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			d.rejectAll(ctx.Err())
			return
		case p := <-d.queue:
			observability.SetQueueDepth(len(d.queue))
			p.done <- d.dispatch(ctx, p.req)

			if err := d.clock.Sleep(ctx, d.interDelay); err != nil {
				d.rejectAll(err)
				return
			}
		}
	}
}

// dispatch performs one request with transparent retries for 429 and network
// failures. Window counters are consumed once per attempt, before the call.
func (d *Dispatcher) dispatch(ctx context.Context, req *http.Request) result {
	delay := d.retryDelay
	var lastErr error

	for attempt := 0; attempt <= d.maxRetries; attempt++ {
		if attempt > 0 {
			observability.RecordDispatchRetry()
			if err := d.clock.Sleep(ctx, delay); err != nil {
				return result{err: err}
			}
			delay *= 2
			if delay > d.maxWait {
				delay = d.maxWait
			}
		}

		if err := d.waitForCapacity(ctx); err != nil {
			return result{err: err}
		}

		now := d.clock.Now()
		for _, w := range d.windows {
			w.take(now)
		}

		resp, err := d.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			resp.Body.Close()
			lastErr = errors.New("rate limited (429)")
			continue
		}

		observability.RecordDispatch(resp.StatusCode)
		return result{resp: resp}
	}

	observability.RecordDispatchFailure()
	return result{err: fmt.Errorf("max retries exceeded: %w", lastErr)}
}

// waitForCapacity sleeps until every window has room, as a bounded iterative
// loop. Each sleep targets the furthest reset among saturated windows and is
// capped at maxWait so a broken clock can never block forever.
func (d *Dispatcher) waitForCapacity(ctx context.Context) error {
	for attempt := 0; attempt < d.waitAttempts; attempt++ {
		now := d.clock.Now()

		var wait time.Duration
		saturated := ""
		for _, w := range d.windows {
			if w.saturated(now) {
				saturated = w.scope
				if until := w.untilReset(now); until > wait {
					wait = until
				}
			}
		}

		if saturated == "" {
			return nil
		}

		if wait > d.maxWait {
			wait = d.maxWait
		}

		d.logger.Printf("rate limit reached (%s window), waiting %v", saturated, wait)
		observability.RecordRateLimitWait(saturated)

		if err := d.clock.Sleep(ctx, wait); err != nil {
			return err
		}
	}

	return ErrWaitBudgetExhausted
}

// rejectAll delivers err to everything still queued.
func (d *Dispatcher) rejectAll(err error) {
	for {
		select {
		case p := <-d.queue:
			p.done <- result{err: err}
		default:
			return
		}
	}
}
