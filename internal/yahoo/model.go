package yahoo

import "time"

// Response represents the raw JSON response structure from Yahoo Finance API.
//
// The structure includes:
//   - Chart.Result: Array of result objects (typically contains one element)
//   - Chart.Result[].Meta: Symbol metadata
//   - Chart.Result[].Timestamp: Unix timestamps for each data point
//   - Chart.Result[].Indicators: Price data arrays
//   - Chart.Error: Optional error from Yahoo API
type Response struct {
	Chart Chart `json:"chart"`
}

// Chart is the top-level chart payload.
type Chart struct {
	Result []Result `json:"result"`
	Error  *Error   `json:"error"`
}

// Result holds the series of one symbol.
type Result struct {
	Meta       Meta    `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []Quote `json:"quote"`
	} `json:"indicators"`
}

// Meta is symbol metadata.
type Meta struct {
	Currency     string `json:"currency"`
	Symbol       string `json:"symbol"`
	ExchangeName string `json:"exchangeName"`
}

// Quote holds the OHLC arrays, aligned with Result.Timestamp.
type Quote struct {
	Open  []float64 `json:"open"`
	Close []float64 `json:"close"`
	High  []float64 `json:"high"`
	Low   []float64 `json:"low"`
}

// Error is the API error object, e.g. {"code":"Not Found","description":"No data found"}.
type Error struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// PriceChart is the parsed form of a Response.
type PriceChart struct {
	Currency     string       `json:"currency"`
	Symbol       string       `json:"symbol"`
	ExchangeName string       `json:"exchangeName"`
	Indicators   []Indicators `json:"indicators"`
}

// Indicators represents a single day's price data.
type Indicators struct {
	Date       time.Time
	PriceOpen  float64
	PriceClose float64
	PriceHigh  float64
	PriceLow   float64
}
