// Package ingest turns raw delimited text into ordered transactions and back.
//
// Two row layouts are recognized, resolved once per row:
//
//   - native: exactly three fields "symbol,shares,price", rows already oldest-first;
//   - broker: seven or more fields "date,action,symbol,_,_,quantity,price,...", starting
//     with an MM/DD/YYYY date and delivered newest-first. The action text decides the sign
//     of the quantity.
//
// Rows that cannot be read are skipped; malformed rows never abort a batch.
package ingest

import (
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/north212wangbo/portfolio-gains/internal/model"
)

// Layout identifies the shape of a single input row.
type Layout int

const (
	LayoutUnknown Layout = iota
	LayoutNative
	LayoutBroker
)

func (l Layout) String() string {
	switch l {
	case LayoutNative:
		return "native"
	case LayoutBroker:
		return "broker"
	default:
		return "unknown"
	}
}

const (
	nativeFieldCount    = 3
	brokerMinFieldCount = 7

	brokerActionField   = 1
	brokerSymbolField   = 2
	brokerQuantityField = 5
	brokerPriceField    = 6
)

// soldKeywords mark a broker action as a sale.
var soldKeywords = []string{"SOLD", "SELL"}

// brokerDate is the MM/DD/YYYY run date every broker trade row starts with. Disclaimer and
// footer lines of a statement do not.
var brokerDate = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}`)

// reservedSymbolChars cannot appear in a symbol: the native layout is written unquoted.
const reservedSymbolChars = `,"`

// DetectLayout resolves the layout of a row from its field count.
func DetectLayout(fields []string) Layout {
	switch {
	case len(fields) == nativeFieldCount:
		return LayoutNative
	case len(fields) >= brokerMinFieldCount:
		return LayoutBroker
	default:
		return LayoutUnknown
	}
}

// Result is the outcome of a normalization pass.
type Result struct {
	Transactions []model.Transaction
	Rows         int // non-blank rows seen
	Skipped      int // rows that were not recognized or failed validation
}

// Parse normalizes text into transactions ordered oldest-first.
// It returns an empty, non-nil slice when nothing is recognized.
func Parse(text string) []model.Transaction {
	return Normalize(text).Transactions
}

// ParseReader reads the whole payload from r and normalizes it.
func ParseReader(r io.Reader) (Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read import payload: %w", err)
	}
	return Normalize(string(data)), nil
}

// Normalize is Parse with row accounting.
//
// Native rows keep their order. Broker rows are reversed as a group so the oldest comes
// first, and are placed after the native rows when an input mixes both layouts.
// Seq is assigned 1..n in output order.
func Normalize(text string) Result {
	var (
		res    Result
		native []model.Transaction
		broker []model.Transaction
	)

	for _, row := range splitRows(text) {
		row = strings.TrimSpace(row)
		if row == "" {
			continue
		}
		res.Rows++

		fields := SplitFields(row)
		layout := DetectLayout(fields)

		var (
			tx model.Transaction
			ok bool
		)
		switch layout {
		case LayoutNative:
			tx, ok = parseNative(fields)
		case LayoutBroker:
			tx, ok = parseBroker(fields)
		}
		if !ok {
			res.Skipped++
			continue
		}

		if layout == LayoutBroker {
			broker = append(broker, tx)
		} else {
			native = append(native, tx)
		}
	}

	out := make([]model.Transaction, 0, len(native)+len(broker))
	out = append(out, native...)
	for i := len(broker) - 1; i >= 0; i-- {
		out = append(out, broker[i])
	}
	for i := range out {
		out[i].Seq = int64(i + 1)
	}
	res.Transactions = out
	return res
}

func parseNative(fields []string) (model.Transaction, bool) {
	return build(fields[0], fields[1], fields[2], nil)
}

func parseBroker(fields []string) (model.Transaction, bool) {
	if !brokerDate.MatchString(fields[0]) {
		return model.Transaction{}, false
	}
	action := strings.ToUpper(fields[brokerActionField])
	sold := false
	for _, kw := range soldKeywords {
		if strings.Contains(action, kw) {
			sold = true
			break
		}
	}
	return build(fields[brokerSymbolField], fields[brokerQuantityField], fields[brokerPriceField], &sold)
}

// build validates the raw values of a row. When sold is nil the sign of shares is taken
// as written, otherwise it is forced by *sold.
func build(rawSymbol, rawShares, rawPrice string, sold *bool) (model.Transaction, bool) {
	symbol := NormalizeSymbol(rawSymbol)
	if !ValidSymbol(symbol) {
		return model.Transaction{}, false
	}
	shares, err := ParseNumber(rawShares)
	if err != nil || shares == 0 {
		return model.Transaction{}, false
	}
	price, err := ParseNumber(rawPrice)
	if err != nil || price < 0 {
		return model.Transaction{}, false
	}

	if sold != nil {
		if *sold {
			shares = -abs(shares)
		} else {
			shares = abs(shares)
		}
	}

	return model.Transaction{
		Symbol:        symbol,
		Shares:        shares,
		PurchasePrice: price,
	}, true
}

// NormalizeSymbol trims and uppercases a ticker.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ValidSymbol reports whether a normalized symbol can be stored and exported.
func ValidSymbol(symbol string) bool {
	return symbol != "" && !strings.ContainsAny(symbol, reservedSymbolChars)
}

// ParseNumber parses a numeric field, tolerating a leading "-$" or "$" and "," thousands
// separators. A sign after the stripped prefix is rejected, so "--5" and "-$-5" fail.
func ParseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	dollar := strings.HasPrefix(s, "$")
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	if (neg || dollar) && (s[0] == '-' || s[0] == '+') {
		return 0, strconv.ErrSyntax
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, strconv.ErrRange
	}
	if neg {
		v = -v
	}
	return v, nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
