package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/north212wangbo/portfolio-gains/internal/ledger"
	"github.com/north212wangbo/portfolio-gains/internal/metrics"
	"github.com/north212wangbo/portfolio-gains/internal/model"
	"github.com/north212wangbo/portfolio-gains/internal/price"
	"github.com/north212wangbo/portfolio-gains/internal/report"
	"github.com/north212wangbo/portfolio-gains/internal/repository"
)

// ReportService builds the gain report: one ledger and one price lookup per symbol,
// run concurrently, joined before the totals are folded.
type ReportService struct {
	transactionRepo *repository.TransactionRepository
	provider        price.Provider
	maxConcurrency  int
	metrics         *metrics.Metrics
	log             zerolog.Logger
	now             func() time.Time
}

// NewReportService creates a new ReportService. maxConcurrency bounds in-flight price lookups.
func NewReportService(
	transactionRepo *repository.TransactionRepository,
	provider price.Provider,
	maxConcurrency int,
	m *metrics.Metrics,
	log zerolog.Logger,
) *ReportService {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &ReportService{
		transactionRepo: transactionRepo,
		provider:        provider,
		maxConcurrency:  maxConcurrency,
		metrics:         m,
		log:             log.With().Str("component", "report").Logger(),
		now:             time.Now,
	}
}

// GenerateReport loads every stored transaction and reports on it at current prices.
func (s *ReportService) GenerateReport(ctx context.Context) (model.PortfolioReport, error) {
	txs, err := s.transactionRepo.List(ctx)
	if err != nil {
		return model.PortfolioReport{}, fmt.Errorf("failed to load transactions: %w", err)
	}
	return s.Calculate(ctx, txs), nil
}

// Calculate reports on txs, which must be in Seq order. A symbol whose ledger or price
// lookup fails becomes an error row and is left out of the totals; it never fails the run.
func (s *ReportService) Calculate(ctx context.Context, txs []model.Transaction) model.PortfolioReport {
	start := time.Now()
	symbols, bySymbol := ledger.GroupBySymbol(txs)

	// one slot per symbol; each goroutine writes only its own
	rows := make([]model.SymbolReport, len(symbols))

	var g errgroup.Group
	g.SetLimit(s.maxConcurrency)
	for i, symbol := range symbols {
		g.Go(func() error {
			rows[i] = s.symbolReport(ctx, symbol, bySymbol[symbol])
			return nil
		})
	}
	_ = g.Wait()

	rep := report.Assemble(rows, s.now().UTC())

	if s.metrics != nil {
		s.metrics.ReportDuration.Observe(time.Since(start).Seconds())
		s.metrics.ReportErrors.Add(float64(rep.ErrorCount()))
	}
	s.log.Debug().
		Int("symbols", len(rows)).
		Int("errors", rep.ErrorCount()).
		Dur("took", time.Since(start)).
		Msg("report calculated")
	return rep
}

func (s *ReportService) symbolReport(ctx context.Context, symbol string, txs []model.Transaction) model.SymbolReport {
	l, err := ledger.Build(symbol, txs)
	if err != nil {
		s.log.Error().Err(err).Str("symbol", symbol).Msg("ledger rejected transaction order")
		return report.Failed(symbol, err)
	}

	if len(l.Rejected) > 0 {
		if s.metrics != nil {
			s.metrics.RejectedSales.Add(float64(len(l.Rejected)))
		}
		s.log.Debug().
			Str("symbol", symbol).
			Ints64("seq", l.Rejected).
			Msg("sales exceeding held shares were ignored")
	}

	current, err := s.provider.Quote(ctx, symbol)
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", symbol).Msg("price lookup failed")
		return report.Failed(symbol, err)
	}

	return report.Build(l, current)
}
