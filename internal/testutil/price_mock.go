package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/north212wangbo/portfolio-gains/internal/apperrors"
)

// MockPriceProvider is a price.Provider serving fixed prices from memory.
// Symbols without a price fail with apperrors.ErrPriceUnavailable.
type MockPriceProvider struct {
	mu     sync.Mutex
	prices map[string]float64
	errs   map[string]error
	calls  map[string]int
}

// NewMockPriceProvider creates a mock with the given prices.
func NewMockPriceProvider(prices map[string]float64) *MockPriceProvider {
	m := &MockPriceProvider{
		prices: make(map[string]float64),
		errs:   make(map[string]error),
		calls:  make(map[string]int),
	}
	for s, p := range prices {
		m.prices[s] = p
	}
	return m
}

// WithPrice sets the price of a symbol.
func (m *MockPriceProvider) WithPrice(symbol string, p float64) *MockPriceProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prices[symbol] = p
	return m
}

// WithError makes lookups of symbol fail with err.
func (m *MockPriceProvider) WithError(symbol string, err error) *MockPriceProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[symbol] = err
	return m
}

// Quote implements price.Provider.
func (m *MockPriceProvider) Quote(ctx context.Context, symbol string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[symbol]++

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err, ok := m.errs[symbol]; ok {
		return 0, err
	}
	p, ok := m.prices[symbol]
	if !ok {
		return 0, fmt.Errorf("%w: %s", apperrors.ErrPriceUnavailable, symbol)
	}
	return p, nil
}

// Calls returns how many times symbol was looked up.
func (m *MockPriceProvider) Calls(symbol string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[symbol]
}
