package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/north212wangbo/portfolio-gains/internal/model"
	"github.com/north212wangbo/portfolio-gains/internal/repository"
)

// SnapshotService stores the totals of report runs so their history can be listed
// without recomputing past prices.
type SnapshotService struct {
	reportService *ReportService
	snapshotRepo  *repository.SnapshotRepository
	log           zerolog.Logger
}

// NewSnapshotService creates a new SnapshotService with the provided dependencies.
func NewSnapshotService(
	reportService *ReportService,
	snapshotRepo *repository.SnapshotRepository,
	log zerolog.Logger,
) *SnapshotService {
	return &SnapshotService{
		reportService: reportService,
		snapshotRepo:  snapshotRepo,
		log:           log.With().Str("component", "snapshot").Logger(),
	}
}

// TakeSnapshot generates a live report and stores its totals.
func (s *SnapshotService) TakeSnapshot(ctx context.Context) (model.ReportSnapshot, error) {
	rep, err := s.reportService.GenerateReport(ctx)
	if err != nil {
		return model.ReportSnapshot{}, err
	}

	snap, err := s.snapshotRepo.Insert(ctx, model.ReportSnapshot{
		TakenAt: rep.GeneratedAt,
		Symbols: len(rep.Symbols),
		Errors:  rep.ErrorCount(),
		Totals:  rep.Totals,
	})
	if err != nil {
		return model.ReportSnapshot{}, fmt.Errorf("failed to store snapshot: %w", err)
	}

	s.log.Info().
		Str("id", snap.ID).
		Int("symbols", snap.Symbols).
		Int("errors", snap.Errors).
		Float64("totalGain", snap.Totals.TotalGain).
		Msg("report snapshot stored")
	return snap, nil
}

// GetSnapshots returns up to limit stored snapshots, newest first.
func (s *SnapshotService) GetSnapshots(ctx context.Context, limit int) ([]model.ReportSnapshot, error) {
	return s.snapshotRepo.List(ctx, limit)
}

// GetLatestSnapshot returns the newest snapshot or apperrors.ErrSnapshotNotFound.
func (s *SnapshotService) GetLatestSnapshot(ctx context.Context) (model.ReportSnapshot, error) {
	return s.snapshotRepo.Latest(ctx)
}
