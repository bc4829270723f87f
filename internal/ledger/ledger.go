// Package ledger replays the transactions of one symbol through a FIFO lot queue.
//
// Sales consume the oldest lots first. A sale for more shares than are held is rejected as a
// whole: it changes neither the lots nor any accumulator, and its Seq is recorded in Rejected.
package ledger

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/north212wangbo/portfolio-gains/internal/model"
)

var (
	// ErrOutOfOrder is returned when a transaction's Seq is lower than its predecessor's.
	ErrOutOfOrder = errors.New("transactions out of order")
	// ErrSymbolMismatch is returned when a transaction belongs to another symbol.
	ErrSymbolMismatch = errors.New("transaction symbol does not match ledger")
)

// Lot is an open purchase with shares still held.
type Lot struct {
	Shares    decimal.Decimal
	UnitPrice decimal.Decimal
	Seq       int64
}

// Cost returns shares times unit price.
func (l Lot) Cost() decimal.Decimal {
	return l.Shares.Mul(l.UnitPrice)
}

// Ledger is the result of replaying a symbol's transactions.
type Ledger struct {
	Symbol string
	Lots   []Lot

	RealizedGain decimal.Decimal
	RealizedCost decimal.Decimal
	SoldShares   decimal.Decimal
	SoldValue    decimal.Decimal
	// TrueCost is net cash put in: buys add price*shares, accepted sales subtract proceeds.
	TrueCost decimal.Decimal

	Rejected []int64
}

// Build replays txs, which must all carry symbol and be in non-decreasing Seq order.
// It does not modify txs and returns the same ledger for the same input.
func Build(symbol string, txs []model.Transaction) (*Ledger, error) {
	l := &Ledger{Symbol: symbol}

	// head indexes the oldest open lot; consumed lots stay behind it until the end.
	head := 0
	prevSeq := int64(0)

	for i, tx := range txs {
		if tx.Symbol != symbol {
			return nil, fmt.Errorf("%w: %q in ledger %q (seq %d)", ErrSymbolMismatch, tx.Symbol, symbol, tx.Seq)
		}
		if i > 0 && tx.Seq < prevSeq {
			return nil, fmt.Errorf("%w: seq %d after %d", ErrOutOfOrder, tx.Seq, prevSeq)
		}
		prevSeq = tx.Seq

		shares := decimal.NewFromFloat(tx.Shares)
		price := decimal.NewFromFloat(tx.PurchasePrice)

		if tx.IsBuy() {
			l.Lots = append(l.Lots, Lot{Shares: shares, UnitPrice: price, Seq: tx.Seq})
			l.TrueCost = l.TrueCost.Add(shares.Mul(price))
			continue
		}
		if !tx.IsSell() {
			continue
		}

		qty := shares.Neg()
		available := decimal.Zero
		for _, lot := range l.Lots[head:] {
			available = available.Add(lot.Shares)
		}
		if available.LessThan(qty) {
			l.Rejected = append(l.Rejected, tx.Seq)
			continue
		}

		remaining := qty
		for remaining.IsPositive() && head < len(l.Lots) {
			lot := &l.Lots[head]
			take := decimal.Min(lot.Shares, remaining)

			l.RealizedGain = l.RealizedGain.Add(price.Sub(lot.UnitPrice).Mul(take))
			l.RealizedCost = l.RealizedCost.Add(lot.UnitPrice.Mul(take))

			lot.Shares = lot.Shares.Sub(take)
			remaining = remaining.Sub(take)
			if lot.Shares.IsZero() {
				head++
			}
		}

		l.SoldShares = l.SoldShares.Add(qty)
		l.SoldValue = l.SoldValue.Add(qty.Mul(price))
		l.TrueCost = l.TrueCost.Sub(qty.Mul(price))
	}

	l.Lots = l.Lots[head:]
	return l, nil
}

// RemainingShares is the sum of open lot shares.
func (l *Ledger) RemainingShares() decimal.Decimal {
	total := decimal.Zero
	for _, lot := range l.Lots {
		total = total.Add(lot.Shares)
	}
	return total
}

// OpenCost is the cost of the open lots at their purchase prices.
func (l *Ledger) OpenCost() decimal.Decimal {
	total := decimal.Zero
	for _, lot := range l.Lots {
		total = total.Add(lot.Cost())
	}
	return total
}

// GroupBySymbol splits txs per symbol, keeping input order within each group.
// The returned symbols are sorted.
func GroupBySymbol(txs []model.Transaction) ([]string, map[string][]model.Transaction) {
	bySymbol := make(map[string][]model.Transaction)
	for _, tx := range txs {
		bySymbol[tx.Symbol] = append(bySymbol[tx.Symbol], tx)
	}

	symbols := make([]string, 0, len(bySymbol))
	for s := range bySymbol {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols, bySymbol
}
