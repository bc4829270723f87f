package service_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/north212wangbo/portfolio-gains/internal/api/request"
	"github.com/north212wangbo/portfolio-gains/internal/apperrors"
	"github.com/north212wangbo/portfolio-gains/internal/testutil"
)

// TestTransactionService_CreateTransaction tests manual entry.
//
// WHY: manual entries go through the same store as imports, so their symbol must be
// normalized identically and their Seq must follow everything already stored.
func TestTransactionService_CreateTransaction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestTransactionService(t, db)
	ctx := context.Background()
	testutil.CreateTransactions(t, db, "AAPL", [2]float64{10, 5})

	tx, err := svc.CreateTransaction(ctx, request.CreateTransactionRequest{
		Symbol:        "  aapl ",
		Shares:        testutil.Float(-3),
		PurchasePrice: testutil.Float(8),
	})

	require.NoError(t, err)
	assert.Equal(t, "AAPL", tx.Symbol)
	assert.Equal(t, int64(2), tx.Seq)
	assert.Equal(t, -3.0, tx.Shares)
	assert.NotEmpty(t, tx.ID)
}

func TestTransactionService_ImportTransactions(t *testing.T) {
	t.Run("appends broker statement oldest first", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTransactionService(t, db)
		ctx := context.Background()
		testutil.CreateTransactions(t, db, "MSFT", [2]float64{1, 300})

		statement := strings.Join([]string{
			"Run Date,Action,Symbol,Description,Type,Quantity,Price ($),Commission ($),Amount ($)",
			`03/05/2024,"YOU SOLD APPLE INC",AAPL,"APPLE INC",Cash,-5,190,,950`,
			`01/02/2024,"YOU BOUGHT APPLE INC",AAPL,"APPLE INC",Cash,10,"1,000.00",,-10000`,
		}, "\r\n")

		res, err := svc.ImportTransactions(ctx, strings.NewReader(statement))

		require.NoError(t, err)
		assert.Equal(t, 3, res.Rows)
		assert.Equal(t, 2, res.Imported)
		assert.Equal(t, 1, res.Skipped)
		require.Len(t, res.Transactions, 2)
		assert.Equal(t, int64(2), res.Transactions[0].Seq)
		assert.Equal(t, 10.0, res.Transactions[0].Shares)
		assert.Equal(t, int64(3), res.Transactions[1].Seq)
		assert.Equal(t, -5.0, res.Transactions[1].Shares)

		all, err := svc.GetTransactions(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("nothing recognized stores nothing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTransactionService(t, db)

		res, err := svc.ImportTransactions(context.Background(), strings.NewReader("hello\nworld\n"))

		assert.ErrorIs(t, err, apperrors.ErrEmptyImport)
		assert.Equal(t, 2, res.Skipped)
		assert.Equal(t, 0, testutil.CountRows(t, db, "transactions"))
	})
}

func TestTransactionService_ExportImportRoundTrip(t *testing.T) {
	src := testutil.SetupTestDB(t)
	ctx := context.Background()
	testutil.CreateTransactions(t, src, "AAPL", [2]float64{10, 5.25}, [2]float64{-4, 7})
	testutil.NewTransaction("BRK.B").WithSeq(3).WithShares(0.125).WithPrice(412.07).Build(t, src)

	var buf bytes.Buffer
	require.NoError(t, testutil.NewTestTransactionService(t, src).ExportTransactions(ctx, &buf))
	assert.Equal(t, "AAPL,10,5.25\nAAPL,-4,7\nBRK.B,0.125,412.07\n", buf.String())

	dst := testutil.SetupTestDB(t)
	dstSvc := testutil.NewTestTransactionService(t, dst)
	_, err := dstSvc.ImportTransactions(ctx, &buf)
	require.NoError(t, err)

	want, err := testutil.NewTestTransactionService(t, src).GetTransactions(ctx)
	require.NoError(t, err)
	got, err := dstSvc.GetTransactions(ctx)
	require.NoError(t, err)

	require.Len(t, got, len(want))
	for i := range want {
		assert.Equal(t, want[i].Symbol, got[i].Symbol)
		assert.Equal(t, want[i].Shares, got[i].Shares)
		assert.Equal(t, want[i].PurchasePrice, got[i].PurchasePrice)
		assert.Equal(t, want[i].Seq, got[i].Seq)
	}
}

func TestTransactionService_ExportRoundTripSkipsUnstorableSymbol(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestTransactionService(t, db)
	ctx := context.Background()

	statement := strings.Join([]string{
		`01/03/2024,YOU BOUGHT,"BRK,B",x,x,10,5`,
		`01/02/2024,YOU BOUGHT,brk.b,x,x,2,400`,
	}, "\n")
	res, err := svc.ImportTransactions(ctx, strings.NewReader(statement))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 1, res.Skipped)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportTransactions(ctx, &buf))
	assert.Equal(t, "BRK.B,2,400\n", buf.String())

	dstSvc := testutil.NewTestTransactionService(t, testutil.SetupTestDB(t))
	_, err = dstSvc.ImportTransactions(ctx, &buf)
	require.NoError(t, err)

	got, err := dstSvc.GetTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "BRK.B", got[0].Symbol)
	assert.Equal(t, 2.0, got[0].Shares)
}

func TestTransactionService_ImportLargePayload(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestTransactionService(t, db)

	payload := strings.Repeat("AAPL,1,150.25\n", 1000)
	res, err := svc.ImportTransactions(context.Background(), strings.NewReader(payload))

	require.NoError(t, err)
	assert.Equal(t, 1000, res.Imported)
	assert.Equal(t, 0, res.Skipped)
	assert.Equal(t, 1000, testutil.CountRows(t, db, "transactions"))
}

func TestTransactionService_ReplaceAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestTransactionService(t, db)
	ctx := context.Background()
	testutil.CreateTransactions(t, db, "OLD", [2]float64{1, 1})

	stored, err := svc.ReplaceTransactions(ctx, request.ReplaceTransactionsRequest{
		Transactions: []request.CreateTransactionRequest{
			{Symbol: "x", Shares: testutil.Float(2), PurchasePrice: testutil.Float(3)},
			{Symbol: "y", Shares: testutil.Float(1), PurchasePrice: testutil.Float(4)},
		},
	})
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, "X", stored[0].Symbol)

	require.NoError(t, svc.DeleteTransaction(ctx, stored[0].ID))
	assert.ErrorIs(t, svc.DeleteTransaction(ctx, stored[0].ID), apperrors.ErrTransactionNotFound)

	left, err := svc.GetTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "Y", left[0].Symbol)
}
