package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/north212wangbo/portfolio-gains/internal/apperrors"
	"github.com/north212wangbo/portfolio-gains/internal/model"
)

// storedTimeLayout is fixed width so taken_at sorts as text.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z"

// SnapshotRepository provides data access methods for the report_snapshot table,
// the stored history of scheduled report totals.
type SnapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new repository instance.
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Insert stores a snapshot, generating its ID when empty.
func (r *SnapshotRepository) Insert(ctx context.Context, s model.ReportSnapshot) (model.ReportSnapshot, error) {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	s.TakenAt = s.TakenAt.UTC()

	query := `
		INSERT INTO report_snapshot (id, taken_at, symbols, errors, realized_gain, realized_cost,
		                             paper_gain, paper_cost, total_gain, market_value, true_cost)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.TakenAt.Format(storedTimeLayout),
		s.Symbols,
		s.Errors,
		s.Totals.RealizedGain,
		s.Totals.RealizedCost,
		s.Totals.PaperGain,
		s.Totals.PaperCost,
		s.Totals.TotalGain,
		s.Totals.MarketValue,
		s.Totals.TrueCost,
	)
	if err != nil {
		return model.ReportSnapshot{}, fmt.Errorf("failed to insert report_snapshot: %w", err)
	}

	return s, nil
}

// List returns up to limit snapshots, newest first. A limit <= 0 returns all of them.
func (r *SnapshotRepository) List(ctx context.Context, limit int) ([]model.ReportSnapshot, error) {
	query := `
		SELECT id, taken_at, symbols, errors, realized_gain, realized_cost,
		       paper_gain, paper_cost, total_gain, market_value, true_cost
		FROM report_snapshot
		ORDER BY taken_at DESC
	`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query report_snapshot: %w", err)
	}
	defer rows.Close()

	snapshots := []model.ReportSnapshot{}
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return snapshots, nil
}

// Latest returns the most recent snapshot or apperrors.ErrSnapshotNotFound.
func (r *SnapshotRepository) Latest(ctx context.Context) (model.ReportSnapshot, error) {
	snapshots, err := r.List(ctx, 1)
	if err != nil {
		return model.ReportSnapshot{}, err
	}
	if len(snapshots) == 0 {
		return model.ReportSnapshot{}, apperrors.ErrSnapshotNotFound
	}
	return snapshots[0], nil
}

func scanSnapshot(rows *sql.Rows) (model.ReportSnapshot, error) {
	var (
		s          model.ReportSnapshot
		takenAtStr string
	)
	err := rows.Scan(
		&s.ID,
		&takenAtStr,
		&s.Symbols,
		&s.Errors,
		&s.Totals.RealizedGain,
		&s.Totals.RealizedCost,
		&s.Totals.PaperGain,
		&s.Totals.PaperCost,
		&s.Totals.TotalGain,
		&s.Totals.MarketValue,
		&s.Totals.TrueCost,
	)
	if err != nil {
		return model.ReportSnapshot{}, fmt.Errorf("failed to scan row: %w", err)
	}

	s.TakenAt, err = ParseTime(takenAtStr)
	if err != nil {
		return model.ReportSnapshot{}, fmt.Errorf("failed to parse taken_at: %w", err)
	}
	return s, nil
}
