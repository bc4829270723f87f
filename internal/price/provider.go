// Package price looks up current market prices for symbols.
package price

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/north212wangbo/portfolio-gains/internal/apperrors"
	"github.com/north212wangbo/portfolio-gains/internal/metrics"
)

// Provider returns the current price of one symbol.
// Errors for a symbol without a usable quote wrap apperrors.ErrPriceUnavailable.
type Provider interface {
	Quote(ctx context.Context, symbol string) (float64, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context, symbol string) (float64, error)

// Quote calls f.
func (f ProviderFunc) Quote(ctx context.Context, symbol string) (float64, error) {
	return f(ctx, symbol)
}

// GuardConfig bounds calls to a provider.
type GuardConfig struct {
	RatePerSecond float64
	Burst         int
	Timeout       time.Duration // per lookup
}

// Guard wraps a provider with a token bucket, a per-call timeout, a circuit breaker and
// lookup metrics.
type Guard struct {
	name    string
	next    Provider
	timeout time.Duration
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	metrics *metrics.Metrics
}

// NewGuard creates a guarded provider. m may be nil.
func NewGuard(name string, next Provider, cfg GuardConfig, m *metrics.Metrics) *Guard {
	st := gobreaker.Settings{
		Name:     name,
		Interval: 60 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// Missing quotes do not count as endpoint failures.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, apperrors.ErrPriceUnavailable)
		},
	}

	return &Guard{
		name:    name,
		next:    next,
		timeout: cfg.Timeout,
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		breaker: gobreaker.NewCircuitBreaker(st),
		metrics: m,
	}
}

// Quote implements Provider.
func (g *Guard) Quote(ctx context.Context, symbol string) (float64, error) {
	start := time.Now()

	if err := g.limiter.Wait(ctx); err != nil {
		g.observe(metrics.OutcomeRejected, start)
		return 0, fmt.Errorf("rate limit wait for %s: %w", symbol, err)
	}

	v, err := g.breaker.Execute(func() (any, error) {
		callCtx := ctx
		if g.timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(ctx, g.timeout)
			defer cancel()
		}
		return g.next.Quote(callCtx, symbol)
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		g.observe(metrics.OutcomeRejected, start)
		return 0, fmt.Errorf("%w: %s: %v", apperrors.ErrProviderUnavailable, g.name, err)
	case errors.Is(err, apperrors.ErrPriceUnavailable):
		g.observe(metrics.OutcomeUnavailable, start)
		return 0, err
	case err != nil:
		g.observe(metrics.OutcomeError, start)
		return 0, err
	}

	g.observe(metrics.OutcomeOK, start)
	return v.(float64), nil
}

// State returns the breaker state name.
func (g *Guard) State() string {
	return g.breaker.State().String()
}

func (g *Guard) observe(outcome string, start time.Time) {
	if g.metrics == nil {
		return
	}
	g.metrics.PriceLookups.WithLabelValues(g.name, outcome).Inc()
	g.metrics.PriceLatency.WithLabelValues(g.name).Observe(time.Since(start).Seconds())
}
