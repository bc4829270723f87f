// Package report turns ledgers and live prices into gain rows and portfolio totals.
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/north212wangbo/portfolio-gains/internal/ledger"
	"github.com/north212wangbo/portfolio-gains/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Build prices a ledger at currentPrice.
func Build(l *ledger.Ledger, currentPrice float64) model.SymbolReport {
	price := decimal.NewFromFloat(currentPrice)
	remaining := l.RemainingShares()
	paperCost := l.OpenCost()
	marketValue := price.Mul(remaining)

	paperGain := decimal.Zero
	for _, lot := range l.Lots {
		paperGain = paperGain.Add(price.Sub(lot.UnitPrice).Mul(lot.Shares))
	}

	r := model.SymbolReport{
		Symbol:          l.Symbol,
		CurrentPrice:    currentPrice,
		RemainingShares: remaining.InexactFloat64(),
		MarketValue:     marketValue.InexactFloat64(),
		RealizedGain:    l.RealizedGain.InexactFloat64(),
		RealizedCost:    l.RealizedCost.InexactFloat64(),
		RealizedPct:     pct(l.RealizedGain, l.RealizedCost),
		PaperGain:       paperGain.InexactFloat64(),
		PaperCost:       paperCost.InexactFloat64(),
		PaperPct:        pct(paperGain, paperCost),
		TotalGain:       marketValue.Sub(l.TrueCost).InexactFloat64(),
		TrueCost:        l.TrueCost.InexactFloat64(),
		SoldShares:      l.SoldShares.InexactFloat64(),
		SoldValue:       l.SoldValue.InexactFloat64(),
		RejectedSales:   len(l.Rejected),
	}
	if remaining.IsPositive() {
		basis := l.TrueCost.Div(remaining).InexactFloat64()
		r.CostBasis = &basis
	}
	return r
}

// pct returns gain/cost*100, or 0 when cost is zero.
func pct(gain, cost decimal.Decimal) float64 {
	if cost.IsZero() {
		return 0
	}
	return gain.Div(cost).Mul(hundred).InexactFloat64()
}

// Failed returns the error row for a symbol whose price or ledger could not be computed.
func Failed(symbol string, err error) model.SymbolReport {
	return model.SymbolReport{Symbol: symbol, Error: err.Error()}
}

// Aggregate sums the money fields of every row without an error.
func Aggregate(rows []model.SymbolReport) model.PortfolioTotals {
	var realized, realizedCost, paper, paperCost, total, market, trueCost decimal.Decimal
	for _, r := range rows {
		if r.Failed() {
			continue
		}
		realized = realized.Add(decimal.NewFromFloat(r.RealizedGain))
		realizedCost = realizedCost.Add(decimal.NewFromFloat(r.RealizedCost))
		paper = paper.Add(decimal.NewFromFloat(r.PaperGain))
		paperCost = paperCost.Add(decimal.NewFromFloat(r.PaperCost))
		total = total.Add(decimal.NewFromFloat(r.TotalGain))
		market = market.Add(decimal.NewFromFloat(r.MarketValue))
		trueCost = trueCost.Add(decimal.NewFromFloat(r.TrueCost))
	}
	return model.PortfolioTotals{
		RealizedGain: realized.InexactFloat64(),
		RealizedCost: realizedCost.InexactFloat64(),
		PaperGain:    paper.InexactFloat64(),
		PaperCost:    paperCost.InexactFloat64(),
		TotalGain:    total.InexactFloat64(),
		MarketValue:  market.InexactFloat64(),
		TrueCost:     trueCost.InexactFloat64(),
	}
}

// Assemble sorts rows by symbol and folds the totals once.
func Assemble(rows []model.SymbolReport, now time.Time) model.PortfolioReport {
	sorted := make([]model.SymbolReport, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Symbol < sorted[j].Symbol })

	return model.PortfolioReport{
		GeneratedAt: now,
		Symbols:     sorted,
		Totals:      Aggregate(sorted),
	}
}
