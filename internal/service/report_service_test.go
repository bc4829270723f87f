package service_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/north212wangbo/portfolio-gains/internal/apperrors"
	"github.com/north212wangbo/portfolio-gains/internal/metrics"
	"github.com/north212wangbo/portfolio-gains/internal/model"
	"github.com/north212wangbo/portfolio-gains/internal/price"
	"github.com/north212wangbo/portfolio-gains/internal/service"
	"github.com/north212wangbo/portfolio-gains/internal/testutil"
)

// TestReportService_GenerateReport tests the full pipeline from stored transactions.
//
// WHY: this is the path the API and the scheduler use; it must group interleaved symbols,
// apply FIFO per symbol and fold totals from successful symbols only.
func TestReportService_GenerateReport(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()

	// interleaved symbols in Seq order
	testutil.NewTransaction("AAPL").WithSeq(1).WithShares(10).WithPrice(5).Build(t, db)
	testutil.NewTransaction("MSFT").WithSeq(2).WithShares(2).WithPrice(100).Build(t, db)
	testutil.NewTransaction("AAPL").WithSeq(3).WithShares(10).WithPrice(7).Build(t, db)
	testutil.NewTransaction("DEAD").WithSeq(4).WithShares(1).WithPrice(1).Build(t, db)
	testutil.NewTransaction("AAPL").WithSeq(5).WithShares(-15).WithPrice(10).Build(t, db)
	testutil.NewTransaction("MSFT").WithSeq(6).WithShares(-8).WithPrice(120).Build(t, db)

	provider := testutil.NewMockPriceProvider(map[string]float64{"AAPL": 12, "MSFT": 90})
	svc := testutil.NewTestReportService(t, db, provider)

	rep, err := svc.GenerateReport(ctx)
	require.NoError(t, err)

	require.Len(t, rep.Symbols, 3)
	aapl, dead, msft := rep.Symbols[0], rep.Symbols[1], rep.Symbols[2]

	assert.Equal(t, "AAPL", aapl.Symbol)
	assert.Equal(t, 65.0, aapl.RealizedGain)
	assert.Equal(t, 5.0, aapl.RemainingShares)
	assert.Equal(t, 25.0, aapl.PaperGain)
	assert.Equal(t, 90.0, aapl.TotalGain)

	assert.Equal(t, "DEAD", dead.Symbol)
	assert.True(t, dead.Failed())
	assert.Contains(t, dead.Error, apperrors.ErrPriceUnavailable.Error())

	assert.Equal(t, "MSFT", msft.Symbol)
	assert.Equal(t, 1, msft.RejectedSales, "oversell of 8 against 2 held is rejected")
	assert.Equal(t, 2.0, msft.RemainingShares)
	assert.Equal(t, 0.0, msft.RealizedGain)
	assert.Equal(t, -20.0, msft.PaperGain)

	assert.Equal(t, 1, rep.ErrorCount())
	assert.Equal(t, 65.0, rep.Totals.RealizedGain)
	assert.Equal(t, 5.0, rep.Totals.PaperGain)
	assert.Equal(t, 240.0, rep.Totals.MarketValue)
	assert.Equal(t, 70.0, rep.Totals.TotalGain)
	assert.False(t, rep.GeneratedAt.IsZero())

	for _, s := range []string{"AAPL", "MSFT", "DEAD"} {
		assert.Equal(t, 1, provider.Calls(s), "Expected one lookup for %s", s)
	}
}

func TestReportService_EmptyStore(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestReportService(t, db, testutil.NewMockPriceProvider(nil))

	rep, err := svc.GenerateReport(context.Background())

	require.NoError(t, err)
	assert.Empty(t, rep.Symbols)
	assert.Equal(t, model.PortfolioTotals{}, rep.Totals)
}

func TestReportService_OutOfOrderBecomesErrorRow(t *testing.T) {
	svc := service.NewReportService(nil, testutil.NewMockPriceProvider(map[string]float64{"A": 1, "B": 1}), 2, nil, testutil.TestLogger())

	rep := svc.Calculate(context.Background(), []model.Transaction{
		{Seq: 2, Symbol: "A", Shares: 1, PurchasePrice: 1},
		{Seq: 1, Symbol: "A", Shares: 1, PurchasePrice: 1},
		{Seq: 3, Symbol: "B", Shares: 1, PurchasePrice: 1},
	})

	require.Len(t, rep.Symbols, 2)
	assert.True(t, rep.Symbols[0].Failed())
	assert.False(t, rep.Symbols[1].Failed())
	assert.Equal(t, 1.0, rep.Totals.MarketValue)
}

func TestReportService_BoundsConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	provider := price.ProviderFunc(func(ctx context.Context, symbol string) (float64, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
		if symbol == "ERR" {
			return 0, errors.New("boom")
		}
		return 1, nil
	})

	var txs []model.Transaction
	for i, s := range []string{"A", "B", "C", "D", "E", "F", "ERR", "G"} {
		txs = append(txs, model.Transaction{Seq: int64(i + 1), Symbol: s, Shares: 1, PurchasePrice: 1})
	}

	svc := service.NewReportService(nil, provider, 2, metrics.New(), testutil.TestLogger())
	rep := svc.Calculate(context.Background(), txs)

	assert.Len(t, rep.Symbols, 8, "every symbol is joined exactly once")
	assert.Equal(t, 1, rep.ErrorCount())
	assert.Equal(t, 7.0, rep.Totals.MarketValue)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestSnapshotService(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	testutil.CreateTransactions(t, db, "AAPL", [2]float64{10, 5})
	svc := testutil.NewTestSnapshotService(t, db, testutil.NewMockPriceProvider(map[string]float64{"AAPL": 6}))

	_, err := svc.GetLatestSnapshot(ctx)
	assert.ErrorIs(t, err, apperrors.ErrSnapshotNotFound)

	snap, err := svc.TakeSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Symbols)
	assert.Equal(t, 0, snap.Errors)
	assert.Equal(t, 10.0, snap.Totals.PaperGain)
	assert.Equal(t, 60.0, snap.Totals.MarketValue)

	list, err := svc.GetSnapshots(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, snap.ID, list[0].ID)

	assert.Equal(t, 1, testutil.CountRows(t, db, "report_snapshot"))
}
