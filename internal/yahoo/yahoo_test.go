package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/north212wangbo/portfolio-gains/internal/apperrors"
)

const chartBody = `{
  "chart": {
    "result": [{
      "meta": {"currency": "USD", "symbol": "AAPL", "exchangeName": "NMS"},
      "timestamp": [1704205800, 1704292200, 1704378600],
      "indicators": {"quote": [{
        "open":  [187.1, 184.2, 182.1],
        "close": [185.6, 184.25, null],
        "high":  [188.4, 185.9, 183.0],
        "low":   [183.9, 183.4, 180.9]
      }]}
    }],
    "error": null
  }
}`

func newClient(t *testing.T, status int, body string) (*FinanceClient, *string) {
	t.Helper()
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path + "?" + r.URL.RawQuery
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewFinanceClient(srv.Client(), srv.URL+"/v8/finance/chart/"), &path
}

func TestFinanceClient_Quote(t *testing.T) {
	c, path := newClient(t, http.StatusOK, chartBody)

	v, err := c.Quote(context.Background(), "AAPL")

	require.NoError(t, err)
	assert.Equal(t, 184.25, v, "null close of an open day must be skipped")
	assert.Equal(t, "/v8/finance/chart/AAPL?interval=1d&range=5d", *path)
}

func TestFinanceClient_QuoteErrors(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		c, _ := newClient(t, http.StatusNotFound,
			`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`)

		_, err := c.Quote(context.Background(), "NOPE")
		assert.ErrorIs(t, err, apperrors.ErrPriceUnavailable)
		assert.Contains(t, err.Error(), "delisted")
	})

	t.Run("no closes", func(t *testing.T) {
		c, _ := newClient(t, http.StatusOK,
			`{"chart":{"result":[{"meta":{},"timestamp":[1],"indicators":{"quote":[{"close":[null]}]}}]}}`)

		_, err := c.Quote(context.Background(), "X")
		assert.ErrorIs(t, err, apperrors.ErrPriceUnavailable)
	})

	t.Run("non-json error page", func(t *testing.T) {
		c, _ := newClient(t, http.StatusTooManyRequests, "Too Many Requests")

		_, err := c.Quote(context.Background(), "X")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "429")
	})
}

func TestParseChart(t *testing.T) {
	c := NewFinanceClient(nil, "")

	t.Run("mismatched lengths", func(t *testing.T) {
		resp := Response{Chart: Chart{Result: []Result{{Timestamp: []int64{1, 2}}}}}
		resp.Chart.Result[0].Indicators.Quote = []Quote{{Close: []float64{1}}}

		_, err := c.ParseChart(resp)
		assert.Error(t, err)
	})

	t.Run("empty result", func(t *testing.T) {
		_, err := c.ParseChart(Response{})
		assert.Error(t, err)
	})

	t.Run("short open array is tolerated", func(t *testing.T) {
		resp := Response{Chart: Chart{Result: []Result{{Timestamp: []int64{1, 2}}}}}
		resp.Chart.Result[0].Indicators.Quote = []Quote{{Close: []float64{1, 2}, Open: []float64{1}}}

		chart, err := c.ParseChart(resp)
		require.NoError(t, err)
		require.Len(t, chart.Indicators, 2)
		assert.Equal(t, 0.0, chart.Indicators[1].PriceOpen)

		latest, ok := chart.LatestClose()
		assert.True(t, ok)
		assert.Equal(t, 2.0, latest.PriceClose)
	})
}
