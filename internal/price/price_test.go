package price

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/north212wangbo/portfolio-gains/internal/apperrors"
	"github.com/north212wangbo/portfolio-gains/internal/metrics"
)

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPProvider_Quote(t *testing.T) {
	t.Run("reads close field", func(t *testing.T) {
		var gotSymbol, gotKey string
		srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			gotSymbol = r.URL.Query().Get("symbol")
			gotKey = r.URL.Query().Get("apikey")
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"symbol":"BRK.B","close":412.5}`))
		})

		p := NewHTTPProvider(srv.Client(), srv.URL+"/price?symbol={symbol}", "$.close", "k3y")
		v, err := p.Quote(context.Background(), "BRK.B")

		require.NoError(t, err)
		assert.Equal(t, 412.5, v)
		assert.Equal(t, "BRK.B", gotSymbol)
		assert.Equal(t, "k3y", gotKey)
	})

	t.Run("accepts numeric string and nested path", func(t *testing.T) {
		srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"data":{"quotes":[{"last":"17.25"}]}}`))
		})

		p := NewHTTPProvider(srv.Client(), srv.URL+"/q/{symbol}", "$.data.quotes[0].last", "")
		v, err := p.Quote(context.Background(), "XYZ")

		require.NoError(t, err)
		assert.Equal(t, 17.25, v)
	})

	t.Run("missing, zero and non-numeric fields are unavailable", func(t *testing.T) {
		for _, body := range []string{`{"open":1}`, `{"close":0}`, `{"close":"n/a"}`, `{"close":null}`, `{"close":-3}`} {
			srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(body))
			})
			p := NewHTTPProvider(srv.Client(), srv.URL+"/{symbol}", "$.close", "")

			_, err := p.Quote(context.Background(), "AAPL")
			assert.ErrorIs(t, err, apperrors.ErrPriceUnavailable, "body %s", body)
		}
	})

	t.Run("non-2xx status is an error", func(t *testing.T) {
		srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		p := NewHTTPProvider(srv.Client(), srv.URL+"/{symbol}", "$.close", "")

		_, err := p.Quote(context.Background(), "AAPL")
		require.Error(t, err)
		assert.NotErrorIs(t, err, apperrors.ErrPriceUnavailable)
		assert.Contains(t, err.Error(), "502")
	})

	t.Run("invalid json is an error", func(t *testing.T) {
		srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		})
		p := NewHTTPProvider(srv.Client(), srv.URL+"/{symbol}", "$.close", "")

		_, err := p.Quote(context.Background(), "AAPL")
		assert.Error(t, err)
	})
}

func TestExtractPrice_FirstOfList(t *testing.T) {
	doc := map[string]any{"series": []any{1.5, 2.5}}

	v, err := ExtractPrice(doc, "$.series[-1:]", "X")
	require.NoError(t, err)
	assert.Equal(t, 2.5, v)
}

func TestGuard(t *testing.T) {
	cfg := GuardConfig{RatePerSecond: 1000, Burst: 10, Timeout: time.Second}

	t.Run("records outcomes", func(t *testing.T) {
		m := metrics.New()
		g := NewGuard("test", ProviderFunc(func(_ context.Context, symbol string) (float64, error) {
			if symbol == "GONE" {
				return 0, apperrors.ErrPriceUnavailable
			}
			return 10, nil
		}), cfg, m)

		v, err := g.Quote(context.Background(), "AAPL")
		require.NoError(t, err)
		assert.Equal(t, 10.0, v)

		_, err = g.Quote(context.Background(), "GONE")
		assert.ErrorIs(t, err, apperrors.ErrPriceUnavailable)

		assert.Equal(t, 1.0, promtest.ToFloat64(m.PriceLookups.WithLabelValues("test", metrics.OutcomeOK)))
		assert.Equal(t, 1.0, promtest.ToFloat64(m.PriceLookups.WithLabelValues("test", metrics.OutcomeUnavailable)))
	})

	t.Run("unavailable quotes do not open the breaker", func(t *testing.T) {
		g := NewGuard("test", ProviderFunc(func(context.Context, string) (float64, error) {
			return 0, apperrors.ErrPriceUnavailable
		}), cfg, nil)

		for i := 0; i < 10; i++ {
			_, _ = g.Quote(context.Background(), "X")
		}
		assert.Equal(t, "closed", g.State())
	})

	t.Run("opens after consecutive failures", func(t *testing.T) {
		var calls atomic.Int32
		g := NewGuard("test", ProviderFunc(func(context.Context, string) (float64, error) {
			calls.Add(1)
			return 0, errors.New("connection refused")
		}), cfg, nil)

		for i := 0; i < 5; i++ {
			_, err := g.Quote(context.Background(), "X")
			assert.Error(t, err)
		}
		assert.Equal(t, "open", g.State())

		_, err := g.Quote(context.Background(), "X")
		assert.ErrorIs(t, err, apperrors.ErrProviderUnavailable)
		assert.Equal(t, int32(5), calls.Load())
	})

	t.Run("applies timeout", func(t *testing.T) {
		g := NewGuard("test", ProviderFunc(func(ctx context.Context, _ string) (float64, error) {
			<-ctx.Done()
			return 0, ctx.Err()
		}), GuardConfig{RatePerSecond: 1000, Burst: 1, Timeout: 20 * time.Millisecond}, nil)

		_, err := g.Quote(context.Background(), "SLOW")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("cancelled context fails rate wait", func(t *testing.T) {
		g := NewGuard("test", ProviderFunc(func(context.Context, string) (float64, error) {
			return 1, nil
		}), cfg, nil)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := g.Quote(ctx, "X")
		assert.Error(t, err)
	})
}
