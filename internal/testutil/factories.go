package testutil

import (
	"database/sql"
	"testing"

	"github.com/north212wangbo/portfolio-gains/internal/model"
)

// TransactionBuilder provides a fluent interface for creating test transactions.
//
// Example usage:
//
//	// Buy of 10 shares at 5
//	tx := testutil.NewTransaction("AAPL").Build(t, db)
//
//	// Sale stored after the buy
//	sale := testutil.NewTransaction("AAPL").
//	    WithSeq(2).
//	    WithShares(-4).
//	    WithPrice(7.5).
//	    Build(t, db)
type TransactionBuilder struct {
	ID            string
	Seq           int64
	Symbol        string
	Shares        float64
	PurchasePrice float64
}

// NewTransaction creates a TransactionBuilder with sensible defaults: a buy of 10 @ 5 with Seq 1.
func NewTransaction(symbol string) *TransactionBuilder {
	return &TransactionBuilder{
		ID:            MakeID(),
		Seq:           1,
		Symbol:        symbol,
		Shares:        10,
		PurchasePrice: 5,
	}
}

// WithID sets a custom ID.
func (b *TransactionBuilder) WithID(id string) *TransactionBuilder {
	b.ID = id
	return b
}

// WithSeq sets the sequence number.
func (b *TransactionBuilder) WithSeq(seq int64) *TransactionBuilder {
	b.Seq = seq
	return b
}

// WithShares sets the signed share count.
func (b *TransactionBuilder) WithShares(shares float64) *TransactionBuilder {
	b.Shares = shares
	return b
}

// WithPrice sets the per-share price.
func (b *TransactionBuilder) WithPrice(price float64) *TransactionBuilder {
	b.PurchasePrice = price
	return b
}

// Sell makes the transaction a sale of its current quantity.
func (b *TransactionBuilder) Sell() *TransactionBuilder {
	if b.Shares > 0 {
		b.Shares = -b.Shares
	}
	return b
}

// Model returns the transaction without storing it.
func (b *TransactionBuilder) Model() model.Transaction {
	return model.Transaction{
		ID:            b.ID,
		Seq:           b.Seq,
		Symbol:        b.Symbol,
		Shares:        b.Shares,
		PurchasePrice: b.PurchasePrice,
	}
}

// Build inserts the transaction into the database and returns it.
func (b *TransactionBuilder) Build(t *testing.T, db *sql.DB) model.Transaction {
	t.Helper()

	query := `
		INSERT INTO transactions (id, seq, symbol, shares, purchase_price)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := db.Exec(query, b.ID, b.Seq, b.Symbol, b.Shares, b.PurchasePrice)
	if err != nil {
		t.Fatalf("Failed to create test transaction: %v", err)
	}

	return b.Model()
}

// CreateTransactions stores rows of (shares, price) for symbol with Seq 1..n.
func CreateTransactions(t *testing.T, db *sql.DB, symbol string, rows ...[2]float64) []model.Transaction {
	t.Helper()

	txs := make([]model.Transaction, len(rows))
	for i, r := range rows {
		txs[i] = NewTransaction(symbol).
			WithSeq(int64(i + 1)).
			WithShares(r[0]).
			WithPrice(r[1]).
			Build(t, db)
	}
	return txs
}
