package testutil

import (
	"database/sql"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/north212wangbo/portfolio-gains/internal/metrics"
	"github.com/north212wangbo/portfolio-gains/internal/price"
	"github.com/north212wangbo/portfolio-gains/internal/repository"
	"github.com/north212wangbo/portfolio-gains/internal/service"
)

// TestLogger returns a logger that discards everything.
func TestLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func NewTestTransactionService(t *testing.T, db *sql.DB) *service.TransactionService {
	t.Helper()

	return service.NewTransactionService(
		repository.NewTransactionRepository(db),
		metrics.New(),
		TestLogger(),
	)
}

func NewTestReportService(t *testing.T, db *sql.DB, provider price.Provider) *service.ReportService {
	t.Helper()

	return service.NewReportService(
		repository.NewTransactionRepository(db),
		provider,
		4,
		metrics.New(),
		TestLogger(),
	)
}

func NewTestSnapshotService(t *testing.T, db *sql.DB, provider price.Provider) *service.SnapshotService {
	t.Helper()

	return service.NewSnapshotService(
		NewTestReportService(t, db, provider),
		repository.NewSnapshotRepository(db),
		TestLogger(),
	)
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()
	return service.NewSystemService(db)
}

// MakeID generates a new UUID string for testing.
func MakeID() string {
	return uuid.New().String()
}

// Float returns a pointer to v, for optional request fields.
func Float(v float64) *float64 {
	return &v
}
