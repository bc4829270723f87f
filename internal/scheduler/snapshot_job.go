package scheduler

import (
	"context"
	"time"

	"github.com/north212wangbo/portfolio-gains/internal/model"
)

// Snapshotter stores the totals of a freshly generated report.
type Snapshotter interface {
	TakeSnapshot(ctx context.Context) (model.ReportSnapshot, error)
}

// SnapshotJob takes a report snapshot on every run.
type SnapshotJob struct {
	snapshots Snapshotter
	timeout   time.Duration
}

// NewSnapshotJob creates a SnapshotJob. A run is abandoned after timeout.
func NewSnapshotJob(snapshots Snapshotter, timeout time.Duration) *SnapshotJob {
	return &SnapshotJob{snapshots: snapshots, timeout: timeout}
}

// Name returns the job name
func (j *SnapshotJob) Name() string {
	return "report_snapshot"
}

// Run executes the job
func (j *SnapshotJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	_, err := j.snapshots.TakeSnapshot(ctx)
	return err
}
