package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Raisondetr3/store-sales-proxy/pkg/dto"
)

const (
	DefaultWakeInterval    = 5 * time.Second
	DefaultWakeMaxAttempts = 12
)

var ErrBackendUnavailable = errors.New("backend did not wake up")

type State int

const (
	StateIdle State = iota
	StateLoading
	StateWaking
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateWaking:
		return "waking"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Call is one request to the proxy. It may run twice when the backend had to
// be woken up.
type Call func(ctx context.Context) (*Response, error)

// ProbeFunc reports whether the proxy's /health says the backend is up.
type ProbeFunc func(ctx context.Context) bool

// SleepFunc waits d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Waker runs calls against a backend that may be suspended. A 503 carrying
// isBackendWaking moves it to Waking: it then polls Probe every Interval, at
// most MaxAttempts times, and replays the call once as soon as a probe
// succeeds.
type Waker struct {
	interval      time.Duration
	maxAttempts   int
	probe         ProbeFunc
	sleep         SleepFunc
	onStateChange func(from, to State)

	mu    sync.Mutex
	state State
}

type WakerOption func(*Waker)

func WithInterval(d time.Duration) WakerOption {
	return func(w *Waker) {
		if d > 0 {
			w.interval = d
		}
	}
}

func WithMaxAttempts(n int) WakerOption {
	return func(w *Waker) {
		if n > 0 {
			w.maxAttempts = n
		}
	}
}

func WithSleep(sleep SleepFunc) WakerOption {
	return func(w *Waker) {
		w.sleep = sleep
	}
}

func WithStateHook(fn func(from, to State)) WakerOption {
	return func(w *Waker) {
		w.onStateChange = fn
	}
}

func NewWaker(probe ProbeFunc, opts ...WakerOption) *Waker {
	w := &Waker{
		interval:    DefaultWakeInterval,
		maxAttempts: DefaultWakeMaxAttempts,
		probe:       probe,
		sleep:       sleepContext,
		state:       StateIdle,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Waker) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Waker) Do(ctx context.Context, call Call) (*Response, error) {
	w.setState(StateLoading)

	resp, err := call(ctx)
	if err != nil || !IsBackendWaking(resp) {
		w.setState(StateIdle)
		return resp, err
	}

	w.setState(StateWaking)
	slog.InfoContext(ctx, "Backend is waking up, polling health",
		slog.Duration("interval", w.interval),
		slog.Int("max_attempts", w.maxAttempts),
	)

	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		if err := w.sleep(ctx, w.interval); err != nil {
			w.setState(StateIdle)
			return nil, err
		}

		if !w.probe(ctx) {
			slog.DebugContext(ctx, "Backend still asleep", slog.Int("attempt", attempt))
			continue
		}

		slog.InfoContext(ctx, "Backend woke up, retrying request", slog.Int("attempt", attempt))
		resp, err = call(ctx)
		w.setState(StateIdle)
		return resp, err
	}

	w.setState(StateFailed)
	slog.WarnContext(ctx, "Backend did not wake up", slog.Int("attempts", w.maxAttempts))
	return nil, fmt.Errorf("%w after %d health checks", ErrBackendUnavailable, w.maxAttempts)
}

func (w *Waker) setState(to State) {
	w.mu.Lock()
	from := w.state
	w.state = to
	hook := w.onStateChange
	w.mu.Unlock()

	if hook != nil && from != to {
		hook(from, to)
	}
}

// IsBackendWaking reports a 503 whose body carries isBackendWaking: true.
// A bare 503 is an ordinary failure.
func IsBackendWaking(resp *Response) bool {
	if resp == nil || resp.StatusCode != http.StatusServiceUnavailable {
		return false
	}
	var body dto.ErrorResponse
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return false
	}
	return body.IsBackendWaking
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
