package price

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"

	"github.com/north212wangbo/portfolio-gains/internal/apperrors"
)

// SymbolPlaceholder is replaced by the escaped symbol in a URL template.
const SymbolPlaceholder = "{symbol}"

// HTTPProvider fetches a JSON document per symbol and reads the price from it with a
// jsonpath expression, e.g. "$.close" for {"symbol":"AAPL","close":189.3}.
type HTTPProvider struct {
	client      *http.Client
	urlTemplate string
	fieldPath   string
	apiKey      string
}

// NewHTTPProvider creates a provider. apiKey, when set, is sent as the apikey query parameter.
func NewHTTPProvider(client *http.Client, urlTemplate, fieldPath, apiKey string) *HTTPProvider {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPProvider{
		client:      client,
		urlTemplate: urlTemplate,
		fieldPath:   fieldPath,
		apiKey:      apiKey,
	}
}

// Quote implements Provider.
func (p *HTTPProvider) Quote(ctx context.Context, symbol string) (float64, error) {
	endpoint, err := p.endpoint(symbol)
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build price request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("price request for %s failed: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return 0, fmt.Errorf("price request for %s returned status %d", symbol, resp.StatusCode)
	}

	var doc any
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return 0, fmt.Errorf("failed to decode price response for %s: %w", symbol, err)
	}

	return ExtractPrice(doc, p.fieldPath, symbol)
}

func (p *HTTPProvider) endpoint(symbol string) (string, error) {
	raw := strings.ReplaceAll(p.urlTemplate, SymbolPlaceholder, url.QueryEscape(symbol))
	if p.apiKey == "" {
		return raw, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid price url: %w", err)
	}
	q := u.Query()
	q.Set("apikey", p.apiKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ExtractPrice reads a positive number at path in a decoded JSON document.
// Numbers and numeric strings are accepted.
func ExtractPrice(doc any, path, symbol string) (float64, error) {
	val, err := jsonpath.Get(path, doc)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %s: %v", apperrors.ErrPriceUnavailable, symbol, path, err)
	}
	// filters and slices yield a list; keep the first match
	if list, ok := val.([]any); ok {
		if len(list) == 0 {
			return 0, fmt.Errorf("%w: %s: no match for %s", apperrors.ErrPriceUnavailable, symbol, path)
		}
		val = list[0]
	}

	var price float64
	switch v := val.(type) {
	case float64:
		price = v
	case string:
		price, err = strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %q is not a number", apperrors.ErrPriceUnavailable, symbol, v)
		}
	default:
		return 0, fmt.Errorf("%w: %s: unexpected %T at %s", apperrors.ErrPriceUnavailable, symbol, val, path)
	}

	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("%w: %s: got %v", apperrors.ErrPriceUnavailable, symbol, price)
	}
	return price, nil
}
