package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/PavithraSukumar6/kbn-dss-backend/internal/data/repos/testutil"
	types "github.com/PavithraSukumar6/kbn-dss-backend/internal/domain"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/dbctx"
)

const (
	testMaxAttempts  = 5
	testRetryDelay   = 30 * time.Second
	testStaleRunning = 30 * time.Minute
)

func bg() dbctx.Context { return dbctx.Context{Ctx: context.Background()} }

// drainQueue claims and settles every runnable job so a test starts from an
// empty queue. The database is shared across the test binary.
func drainQueue(t *testing.T, repo JobRunRepo) {
	t.Helper()
	for {
		job, err := repo.ClaimNextRunnable(bg(), testMaxAttempts, 0, testStaleRunning)
		if err != nil {
			t.Fatalf("drain claim: %v", err)
		}
		if job == nil {
			return
		}
		if err := repo.UpdateFields(bg(), job.ID, map[string]interface{}{
			"status":    types.JobStatusSucceeded,
			"locked_at": nil,
		}); err != nil {
			t.Fatalf("drain settle: %v", err)
		}
	}
}

func seedJob(t *testing.T, repo JobRunRepo, mutate func(*types.JobRun)) *types.JobRun {
	t.Helper()
	now := time.Now()
	job := &types.JobRun{
		JobType:    types.JobTypeDocumentProcess,
		EntityType: "Document",
		EntityID:   now.UnixNano(),
		Status:     types.JobStatusQueued,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if mutate != nil {
		mutate(job)
	}
	if _, err := repo.Create(bg(), []*types.JobRun{job}); err != nil {
		t.Fatalf("create job: %v", err)
	}
	return job
}

func TestClaimNextRunnable_OldestQueuedFirst(t *testing.T) {
	repo := NewJobRunRepo(testutil.DB(t), testutil.Logger(t))
	drainQueue(t, repo)

	older := seedJob(t, repo, func(j *types.JobRun) { j.CreatedAt = time.Now().Add(-2 * time.Minute) })
	seedJob(t, repo, nil)

	claimed, err := repo.ClaimNextRunnable(bg(), testMaxAttempts, testRetryDelay, testStaleRunning)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claimed == nil || claimed.ID != older.ID {
		t.Fatalf("expected the older job, got %+v", claimed)
	}

	reloaded, err := repo.GetByID(bg(), claimed.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Status != types.JobStatusRunning || reloaded.Attempts != 1 || reloaded.LockedAt == nil {
		t.Fatalf("expected a locked running job with one attempt, got %+v", reloaded)
	}
}

func TestClaimNextRunnable_FailedJobsRespectRetryDelayAndAttempts(t *testing.T) {
	repo := NewJobRunRepo(testutil.DB(t), testutil.Logger(t))
	drainQueue(t, repo)

	recent := time.Now()
	old := time.Now().Add(-time.Hour)

	// Failed moments ago: still inside the retry delay.
	seedJob(t, repo, func(j *types.JobRun) {
		j.Status = types.JobStatusFailed
		j.Attempts = 1
		j.LastErrorAt = &recent
	})
	// Out of attempts: never claimable again.
	seedJob(t, repo, func(j *types.JobRun) {
		j.Status = types.JobStatusFailed
		j.Attempts = testMaxAttempts
		j.LastErrorAt = &old
	})

	if claimed, err := repo.ClaimNextRunnable(bg(), testMaxAttempts, testRetryDelay, testStaleRunning); err != nil || claimed != nil {
		t.Fatalf("expected nothing claimable, got %+v err=%v", claimed, err)
	}

	retryable := seedJob(t, repo, func(j *types.JobRun) {
		j.Status = types.JobStatusFailed
		j.Attempts = 2
		j.LastErrorAt = &old
	})
	claimed, err := repo.ClaimNextRunnable(bg(), testMaxAttempts, testRetryDelay, testStaleRunning)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claimed == nil || claimed.ID != retryable.ID {
		t.Fatalf("expected the retryable job, got %+v", claimed)
	}
}

func TestClaimNextRunnable_ReclaimsStaleRunningJobs(t *testing.T) {
	repo := NewJobRunRepo(testutil.DB(t), testutil.Logger(t))
	drainQueue(t, repo)

	fresh := time.Now()
	stale := time.Now().Add(-time.Hour)

	seedJob(t, repo, func(j *types.JobRun) {
		j.Status = types.JobStatusRunning
		j.LockedAt = &fresh
	})
	abandoned := seedJob(t, repo, func(j *types.JobRun) {
		j.Status = types.JobStatusRunning
		j.LockedAt = &stale
	})

	claimed, err := repo.ClaimNextRunnable(bg(), testMaxAttempts, testRetryDelay, testStaleRunning)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claimed == nil || claimed.ID != abandoned.ID {
		t.Fatalf("expected the abandoned job, got %+v", claimed)
	}

	// The freshly locked job stays with its worker.
	if next, err := repo.ClaimNextRunnable(bg(), testMaxAttempts, testRetryDelay, testStaleRunning); err != nil || next != nil {
		t.Fatalf("expected the live lock to hold, got %+v err=%v", next, err)
	}

	// Settle the reclaimed job so later tests start clean.
	if err := repo.UpdateFields(bg(), abandoned.ID, map[string]interface{}{
		"status":    types.JobStatusSucceeded,
		"locked_at": nil,
	}); err != nil {
		t.Fatalf("settle: %v", err)
	}
}

func TestHasRunnableForEntity(t *testing.T) {
	repo := NewJobRunRepo(testutil.DB(t), testutil.Logger(t))
	job := seedJob(t, repo, nil)

	ok, err := repo.HasRunnableForEntity(bg(), "Document", job.EntityID, types.JobTypeDocumentProcess)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !ok {
		t.Fatalf("expected a runnable job for the entity")
	}

	if err := repo.UpdateFields(bg(), job.ID, map[string]interface{}{
		"status": types.JobStatusSucceeded,
	}); err != nil {
		t.Fatalf("settle: %v", err)
	}
	ok, err = repo.HasRunnableForEntity(bg(), "Document", job.EntityID, types.JobTypeDocumentProcess)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if ok {
		t.Fatalf("a settled job must not count as runnable")
	}
}
