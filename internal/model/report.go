package model

import "time"

// SymbolReport holds the gain figures of a single symbol priced at CurrentPrice.
// When Error is set the lookup for that symbol failed and only Symbol is meaningful.
type SymbolReport struct {
	Symbol          string   `json:"symbol"`
	CurrentPrice    float64  `json:"currentPrice"`
	RemainingShares float64  `json:"remainingShares"`
	MarketValue     float64  `json:"marketValue"`
	RealizedGain    float64  `json:"realizedGain"`
	RealizedCost    float64  `json:"realizedCost"`
	RealizedPct     float64  `json:"realizedPct"`
	PaperGain       float64  `json:"paperGain"`
	PaperCost       float64  `json:"paperCost"`
	PaperPct        float64  `json:"paperPct"`
	TotalGain       float64  `json:"totalGain"`
	TrueCost        float64  `json:"trueCost"`
	CostBasis       *float64 `json:"costBasis,omitempty"` // per share, nil when nothing is held
	SoldShares      float64  `json:"soldShares"`
	SoldValue       float64  `json:"soldValue"`
	RejectedSales   int      `json:"rejectedSales,omitempty"`
	Error           string   `json:"error,omitempty"`
}

// Failed reports whether this row is an error entry.
func (r SymbolReport) Failed() bool { return r.Error != "" }

// PortfolioTotals sums the money fields of every successful SymbolReport.
// Percentages are per symbol only and never aggregated.
type PortfolioTotals struct {
	RealizedGain float64 `json:"realizedGain"`
	RealizedCost float64 `json:"realizedCost"`
	PaperGain    float64 `json:"paperGain"`
	PaperCost    float64 `json:"paperCost"`
	TotalGain    float64 `json:"totalGain"`
	MarketValue  float64 `json:"marketValue"`
	TrueCost     float64 `json:"trueCost"`
}

// PortfolioReport is the complete output of one calculation run.
type PortfolioReport struct {
	GeneratedAt time.Time       `json:"generatedAt"`
	Symbols     []SymbolReport  `json:"symbols"`
	Totals      PortfolioTotals `json:"totals"`
}

// ErrorCount returns the number of symbols whose lookup failed.
func (r PortfolioReport) ErrorCount() int {
	n := 0
	for _, s := range r.Symbols {
		if s.Failed() {
			n++
		}
	}
	return n
}

// ReportSnapshot is the persisted summary of a scheduled report run.
type ReportSnapshot struct {
	ID      string          `json:"id"`
	TakenAt time.Time       `json:"takenAt"`
	Symbols int             `json:"symbols"`
	Errors  int             `json:"errors"`
	Totals  PortfolioTotals `json:"totals"`
}
