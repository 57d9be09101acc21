// Package health decides whether the remote store backend can take traffic.
//
// The backend runs on a host that suspends idle instances, so the first
// request after a quiet period can take close to a minute. Gate answers
// "can I talk to the backend right now?" with one bounded probe of its
// /health endpoint and remembers a positive answer for a short TTL so that
// bursts of proxied requests do not each pay for a probe.
package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/Raisondetr3/store-sales-proxy/internal/metrics"
	"github.com/Raisondetr3/store-sales-proxy/pkg/logger"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultCacheTTL = 30 * time.Second
	DefaultTimeout  = 60 * time.Second
)

// Reason classifies a Result.
type Reason string

const (
	ReasonOK            Reason = "ok"
	ReasonCached        Reason = "cached"
	ReasonStatus        Reason = "status"
	ReasonTimeout       Reason = "timeout"
	ReasonNetwork       Reason = "network"
	ReasonMisconfigured Reason = "misconfigured"
)

const (
	MsgHealthy       = "Backend is healthy"
	MsgHealthyCached = "Backend is healthy (cached)"
	MsgNotConfigured = "Backend API URL not configured"
	MsgTimeout       = "Health check timed out - backend may be starting up"
)

type Result struct {
	Healthy      bool
	Message      string
	ResponseTime time.Duration
	Reason       Reason
}

// Timed reports whether ResponseTime carries a measurement. Misconfiguration
// is answered without any timing.
func (r Result) Timed() bool {
	return r.Reason != ReasonMisconfigured
}

// Prober performs the raw GET {base}/health.
type Prober interface {
	Probe(ctx context.Context) (statusCode int, err error)
}

// Status is the gate's cached view of the backend.
type Status struct {
	Healthy       bool
	LastCheckedAt time.Time
}

type Gate struct {
	prober     Prober
	configured bool
	backendURL string
	ttl        time.Duration
	timeout    time.Duration
	now        func() time.Time
	metrics    *metrics.Metrics

	mu     sync.Mutex
	status Status
	gen    uint64

	flight singleflight.Group
}

type Option func(*Gate)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) {
		g.now = now
	}
}

func WithCacheTTL(ttl time.Duration) Option {
	return func(g *Gate) {
		g.ttl = ttl
	}
}

// WithDefaultTimeout sets the probe bound used when CheckHealth gets a
// non-positive timeout.
func WithDefaultTimeout(timeout time.Duration) Option {
	return func(g *Gate) {
		g.timeout = timeout
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gate) {
		g.metrics = m
	}
}

// WithBackendURL is only used for logging.
func WithBackendURL(u string) Option {
	return func(g *Gate) {
		g.backendURL = u
	}
}

// NewGate builds a gate around prober. A nil prober means no backend URL is
// configured and every check reports misconfiguration.
func NewGate(prober Prober, opts ...Option) *Gate {
	g := &Gate{
		prober:     prober,
		configured: prober != nil,
		ttl:        DefaultCacheTTL,
		timeout:    DefaultTimeout,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// CheckHealth reports whether the backend is reachable. It never fails: every
// problem is folded into an unhealthy Result. timeout <= 0 selects the
// gate's default. The caller never waits longer than its timeout, even when
// it joins a probe started by someone else.
func (g *Gate) CheckHealth(ctx context.Context, timeout time.Duration) Result {
	if !g.configured {
		res := Result{Healthy: false, Message: MsgNotConfigured, Reason: ReasonMisconfigured}
		g.record(ctx, res)
		return res
	}

	if timeout <= 0 {
		timeout = g.timeout
	}

	res, gen, ok := g.cached()
	if ok {
		g.record(ctx, res)
		return res
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	// Joined callers share the leader's outcome and its single log line.
	ch := g.flight.DoChan(fmt.Sprintf("probe-%d", gen), func() (interface{}, error) {
		flightCtx := context.WithoutCancel(ctx)
		// Another flight may have finished between our cache read and now.
		res, _, ok := g.cached()
		if !ok {
			res = g.probe(flightCtx, timeout, gen)
		}
		g.record(flightCtx, res)
		return res, nil
	})

	select {
	case r := <-ch:
		return r.Val.(Result)
	case <-timer.C:
		slog.DebugContext(ctx, "Health check abandoned by caller", slog.Duration("timeout", timeout))
		return Result{Healthy: false, Message: MsgTimeout, ResponseTime: timeout, Reason: ReasonTimeout}
	case <-ctx.Done():
		slog.DebugContext(ctx, "Health check abandoned by caller", slog.String("error", ctx.Err().Error()))
		return Result{
			Healthy: false,
			Message: fmt.Sprintf("Health check failed: %v", ctx.Err()),
			Reason:  ReasonNetwork,
		}
	}
}

// ResetCache forgets the last positive answer; the next check probes. A probe
// already in flight still answers its callers but no longer updates the cache.
func (g *Gate) ResetCache() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.status = Status{}
	g.gen++
}

// Status returns a copy of the cached view.
func (g *Gate) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

func (g *Gate) cached() (Result, uint64, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status.Healthy && g.now().Sub(g.status.LastCheckedAt) < g.ttl {
		return Result{Healthy: true, Message: MsgHealthyCached, ResponseTime: 0, Reason: ReasonCached}, g.gen, true
	}
	return Result{}, g.gen, false
}

func (g *Gate) probe(ctx context.Context, timeout time.Duration, gen uint64) Result {
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := g.now()
	code, err := g.prober.Probe(probeCtx)
	elapsed := g.now().Sub(start)

	g.mu.Lock()
	defer g.mu.Unlock()

	current := g.gen == gen

	switch {
	case err != nil:
		if current {
			g.status.Healthy = false
		}
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(probeCtx.Err(), context.DeadlineExceeded) {
			return Result{Healthy: false, Message: MsgTimeout, ResponseTime: elapsed, Reason: ReasonTimeout}
		}
		return Result{
			Healthy:      false,
			Message:      fmt.Sprintf("Health check failed: %v", err),
			ResponseTime: elapsed,
			Reason:       ReasonNetwork,
		}
	case code >= http.StatusOK && code < http.StatusMultipleChoices:
		if current {
			g.status.Healthy = true
			g.status.LastCheckedAt = g.now()
		}
		return Result{Healthy: true, Message: MsgHealthy, ResponseTime: elapsed, Reason: ReasonOK}
	default:
		if current {
			g.status.Healthy = false
		}
		return Result{
			Healthy:      false,
			Message:      fmt.Sprintf("Backend returned status %d", code),
			ResponseTime: elapsed,
			Reason:       ReasonStatus,
		}
	}
}

func (g *Gate) record(ctx context.Context, res Result) {
	g.metrics.RecordHealthCheck(string(res.Reason), res.Healthy)
	logger.LogHealthCheck(ctx, g.backendURL, res.Healthy, string(res.Reason), res.Message, res.ResponseTime)
}
