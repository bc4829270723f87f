package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/north212wangbo/portfolio-gains/internal/apperrors"
)

// DefaultBaseURL is the Yahoo Finance chart endpoint.
const DefaultBaseURL = "https://query1.finance.yahoo.com/v8/finance/chart/"

// FinanceClient provides methods for fetching financial data from Yahoo Finance API.
type FinanceClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewFinanceClient creates a new Yahoo Finance client. A nil httpClient uses http.DefaultClient
// settings; an empty baseURL uses DefaultBaseURL.
func NewFinanceClient(httpClient *http.Client, baseURL string) *FinanceClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &FinanceClient{
		httpClient: httpClient,
		baseURL:    baseURL,
	}
}

// Quote returns the most recent close of the last five trading days.
// It lets the client serve as a price provider.
func (c *FinanceClient) Quote(ctx context.Context, symbol string) (float64, error) {
	resp, err := c.QueryFiveDaySymbol(ctx, symbol)
	if err != nil {
		return 0, err
	}
	chart, err := c.ParseChart(resp)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", apperrors.ErrPriceUnavailable, symbol, err)
	}
	ind, ok := chart.LatestClose()
	if !ok {
		return 0, fmt.Errorf("%w: %s: no close in the last 5 days", apperrors.ErrPriceUnavailable, symbol)
	}
	return ind.PriceClose, nil
}

// ParseChart converts a raw Yahoo Finance API response into a structured price chart.
//
// The method performs validation to ensure:
//   - a result is present
//   - timestamp and close data are present
//   - the close array matches the timestamps
func (c *FinanceClient) ParseChart(yahooResult Response) (PriceChart, error) {
	if len(yahooResult.Chart.Result) == 0 {
		return PriceChart{}, fmt.Errorf("no results returned")
	}
	result := yahooResult.Chart.Result[0]

	if len(result.Timestamp) == 0 {
		return PriceChart{}, fmt.Errorf("no price data returned")
	}
	if len(result.Indicators.Quote) == 0 || len(result.Indicators.Quote[0].Close) == 0 {
		return PriceChart{}, fmt.Errorf("no close prices returned")
	}

	quote := result.Indicators.Quote[0]
	if len(quote.Close) != len(result.Timestamp) {
		return PriceChart{}, fmt.Errorf("mismatched data lengths")
	}

	indicators := make([]Indicators, len(result.Timestamp))
	for i, v := range result.Timestamp {
		indicators[i].Date = time.Unix(v, 0).UTC()
		indicators[i].PriceClose = valueAt(quote.Close, i)
		indicators[i].PriceOpen = valueAt(quote.Open, i)
		indicators[i].PriceHigh = valueAt(quote.High, i)
		indicators[i].PriceLow = valueAt(quote.Low, i)
	}

	return PriceChart{
		Symbol:       result.Meta.Symbol,
		Currency:     result.Meta.Currency,
		ExchangeName: result.Meta.ExchangeName,
		Indicators:   indicators,
	}, nil
}

// LatestClose returns the newest indicator with a positive close.
// Yahoo reports null for days that have not closed yet; those decode as 0.
func (c PriceChart) LatestClose() (Indicators, bool) {
	for i := len(c.Indicators) - 1; i >= 0; i-- {
		if c.Indicators[i].PriceClose > 0 {
			return c.Indicators[i], true
		}
	}
	return Indicators{}, false
}

// QueryFiveDaySymbol fetches the last 5 days of daily price data for a symbol.
func (c *FinanceClient) QueryFiveDaySymbol(ctx context.Context, symbol string) (Response, error) {
	endpoint := c.baseURL + url.PathEscape(symbol) + "?interval=1d&range=5d"
	result, err := c.queryYahoo(ctx, endpoint)
	if err != nil {
		return Response{}, err
	}
	if len(result.Chart.Result) == 0 {
		return Response{}, fmt.Errorf("%w: no results returned for symbol %s", apperrors.ErrPriceUnavailable, symbol)
	}

	return result, nil
}

// queryYahoo executes a request against the chart API, decodes the body and surfaces
// API-level errors. A browser User-Agent is required to avoid being blocked.
func (c *FinanceClient) queryYahoo(ctx context.Context, endpoint string) (Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Response{}, err
	}

	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, err
	}

	var response Response
	if err := json.Unmarshal(data, &response); err != nil {
		if resp.StatusCode != http.StatusOK {
			return Response{}, fmt.Errorf("yahoo returned status %d", resp.StatusCode)
		}
		return Response{}, err
	}

	if response.Chart.Error != nil {
		return response, fmt.Errorf("%w: yahoo error: %s", apperrors.ErrPriceUnavailable, response.Chart.Error.Description)
	}

	return response, nil
}

func valueAt(values []float64, i int) float64 {
	if i < len(values) {
		return values[i]
	}
	return 0
}
