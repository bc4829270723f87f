package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/north212wangbo/portfolio-gains/internal/apperrors"
	"github.com/north212wangbo/portfolio-gains/internal/model"
)

// TransactionRepository provides data access methods for the transactions table.
// Stored order is chronological order: rows are always read back by seq.
type TransactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new TransactionRepository with the provided database connection.
func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// List returns every stored transaction in seq order.
// Returns an empty slice if the store is empty.
func (r *TransactionRepository) List(ctx context.Context) ([]model.Transaction, error) {
	query := `
		SELECT id, seq, symbol, shares, purchase_price
		FROM transactions
		ORDER BY seq ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions table: %w", err)
	}
	defer rows.Close()

	txs := []model.Transaction{}
	for rows.Next() {
		var t model.Transaction
		if err := rows.Scan(&t.ID, &t.Seq, &t.Symbol, &t.Shares, &t.PurchasePrice); err != nil {
			return nil, fmt.Errorf("failed to scan transactions table results: %w", err)
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transactions table: %w", err)
	}

	return txs, nil
}

// Count returns the number of stored transactions.
func (r *TransactionRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return n, nil
}

// Append stores txs after the existing ones. Seq continues from the current maximum and IDs
// are generated where missing. The stored rows, with their assigned ID and Seq, are returned.
func (r *TransactionRepository) Append(ctx context.Context, txs []model.Transaction) ([]model.Transaction, error) {
	var out []model.Transaction
	err := r.inTx(ctx, func(q querier) error {
		var maxSeq int64
		if err := q.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM transactions`).Scan(&maxSeq); err != nil {
			return fmt.Errorf("failed to read max seq: %w", err)
		}

		var err error
		out, err = insertAll(ctx, q, txs, maxSeq)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReplaceAll overwrites the whole collection with txs, reassigning Seq 1..n in slice order.
func (r *TransactionRepository) ReplaceAll(ctx context.Context, txs []model.Transaction) ([]model.Transaction, error) {
	var out []model.Transaction
	err := r.inTx(ctx, func(q querier) error {
		if _, err := q.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
			return fmt.Errorf("failed to clear transactions table: %w", err)
		}

		var err error
		out, err = insertAll(ctx, q, txs, 0)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a single transaction. Seq of the remaining rows is left untouched.
func (r *TransactionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return apperrors.ErrTransactionNotFound
	}

	return nil
}

// inTx runs fn in a new transaction that is committed when fn succeeds.
func (r *TransactionRepository) inTx(ctx context.Context, fn func(q querier) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertAll(ctx context.Context, q querier, txs []model.Transaction, afterSeq int64) ([]model.Transaction, error) {
	query := `
		INSERT INTO transactions (id, seq, symbol, shares, purchase_price)
		VALUES (?, ?, ?, ?, ?)
	`

	out := make([]model.Transaction, len(txs))
	for i, t := range txs {
		if t.ID == "" {
			t.ID = uuid.New().String()
		}
		t.Seq = afterSeq + int64(i) + 1

		if _, err := q.ExecContext(ctx, query, t.ID, t.Seq, t.Symbol, t.Shares, t.PurchasePrice); err != nil {
			return nil, fmt.Errorf("failed to insert transaction: %w", err)
		}
		out[i] = t
	}
	return out, nil
}
