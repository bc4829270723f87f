package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/north212wangbo/portfolio-gains/internal/model"
	"github.com/north212wangbo/portfolio-gains/internal/testutil"
)

type countingJob struct {
	runs int
	err  error
}

func (j *countingJob) Run() error {
	j.runs++
	return j.err
}

func (j *countingJob) Name() string { return "counting" }

func TestScheduler_AddJob(t *testing.T) {
	s := New(testutil.TestLogger())

	assert.NoError(t, s.AddJob("@hourly", &countingJob{}))
	assert.NoError(t, s.AddJob("30 21 * * MON-FRI", &countingJob{}))
	assert.Error(t, s.AddJob("not a schedule", &countingJob{}))
	assert.Error(t, s.AddJob("0 0 * * * *", &countingJob{}), "seconds field is not accepted")
}

func TestScheduler_RunNow(t *testing.T) {
	s := New(testutil.TestLogger())

	job := &countingJob{}
	require.NoError(t, s.RunNow(job))
	assert.Equal(t, 1, job.runs)

	failing := &countingJob{err: errors.New("boom")}
	assert.EqualError(t, s.RunNow(failing), "boom")
}

func TestScheduler_StartStop(t *testing.T) {
	s := New(testutil.TestLogger())
	require.NoError(t, s.AddJob("@every 1h", &countingJob{}))

	s.Start()
	s.Stop()
}

type fakeSnapshotter struct {
	deadline bool
	err      error
}

func (f *fakeSnapshotter) TakeSnapshot(ctx context.Context) (model.ReportSnapshot, error) {
	_, f.deadline = ctx.Deadline()
	return model.ReportSnapshot{}, f.err
}

func TestSnapshotJob(t *testing.T) {
	t.Run("runs with a deadline", func(t *testing.T) {
		snap := &fakeSnapshotter{}
		job := NewSnapshotJob(snap, time.Minute)

		require.NoError(t, job.Run())
		assert.True(t, snap.deadline)
		assert.Equal(t, "report_snapshot", job.Name())
	})

	t.Run("propagates failures", func(t *testing.T) {
		job := NewSnapshotJob(&fakeSnapshotter{err: errors.New("store down")}, time.Minute)
		assert.EqualError(t, job.Run(), "store down")
	})

	t.Run("end to end against the store", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		testutil.CreateTransactions(t, db, "AAPL", [2]float64{2, 5})
		svc := testutil.NewTestSnapshotService(t, db, testutil.NewMockPriceProvider(map[string]float64{"AAPL": 6}))

		require.NoError(t, New(testutil.TestLogger()).RunNow(NewSnapshotJob(svc, time.Minute)))
		assert.Equal(t, 1, testutil.CountRows(t, db, "report_snapshot"))
	})
}
