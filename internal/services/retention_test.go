package services

import (
	"context"
	"testing"
	"time"

	"github.com/PavithraSukumar6/kbn-dss-backend/internal/data/repos/testutil"
	types "github.com/PavithraSukumar6/kbn-dss-backend/internal/domain"
)

func newRetention(t *testing.T, env *testEnv) RetentionService {
	t.Helper()
	return NewRetentionService(env.db, testutil.Logger(t), env.docs, env.versions,
		env.retentions, env.audit, env.settings)
}

func (env *testEnv) addRetentionPolicy(t *testing.T, documentType string, years int, action string) {
	t.Helper()
	admin := testActor(types.RoleAdmin)
	svc := newRetention(t, env)
	policy, err := svc.UpsertPolicy(context.Background(), admin, documentType, years, action)
	if err != nil {
		t.Fatalf("upsert retention policy: %v", err)
	}
	t.Cleanup(func() {
		_ = env.retentions.Delete(bg(), policy.ID)
	})
}

func TestSweep_ArchivesOverdueDocuments(t *testing.T) {
	env := newTestEnv(t)
	svc := newRetention(t, env)
	env.addRetentionPolicy(t, types.CategoryReport, 2, types.RetentionActionArchive)

	overdue := env.createDoc(t, func(d *types.Document) {
		d.Category = types.CategoryReport
		d.UploadDate = time.Now().AddDate(-3, 0, 0)
	})
	fresh := env.createDoc(t, func(d *types.Document) {
		d.Category = types.CategoryReport
	})

	report, err := svc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if report.Archived < 1 {
		t.Fatalf("expected at least one archived document, got %+v", report)
	}

	if got := env.reloadDoc(t, overdue.ID); got.Status != types.StatusArchived {
		t.Fatalf("expected Archived, got %q", got.Status)
	}
	if got := env.reloadDoc(t, fresh.ID); got.Status != types.StatusPublished {
		t.Fatalf("a fresh document must be untouched, got %q", got.Status)
	}
	if n := len(env.auditEntries(t, overdue.ID, "RETENTION_TRANSITION")); n != 1 {
		t.Fatalf("expected one RETENTION_TRANSITION entry, got %d", n)
	}

	// A second sweep must not touch the already-archived document.
	if _, err := svc.Sweep(context.Background()); err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if n := len(env.auditEntries(t, overdue.ID, "RETENTION_TRANSITION")); n != 1 {
		t.Fatalf("archived documents must leave the sweep's scope, got %d entries", n)
	}
}

func TestSweep_MarksForDeletion(t *testing.T) {
	env := newTestEnv(t)
	svc := newRetention(t, env)
	env.addRetentionPolicy(t, types.CategoryOther, 1, types.RetentionActionDelete)

	overdue := env.createDoc(t, func(d *types.Document) {
		d.Category = types.CategoryOther
		d.UploadDate = time.Now().AddDate(-2, 0, 0)
	})

	report, err := svc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if report.MarkedDeletion < 1 {
		t.Fatalf("expected a deletion marking, got %+v", report)
	}
	if got := env.reloadDoc(t, overdue.ID); got.Status != types.StatusPendingDeletion {
		t.Fatalf("expected Pending_Deletion, got %q", got.Status)
	}
}

func TestSweep_LegalHoldDefersDeletionMarking(t *testing.T) {
	env := newTestEnv(t)
	svc := newRetention(t, env)
	env.addRetentionPolicy(t, types.CategoryHR, 1, types.RetentionActionDelete)
	env.addRetentionPolicy(t, types.CategoryReport, 1, types.RetentionActionArchive)

	deletable := env.createDoc(t, func(d *types.Document) {
		d.Category = types.CategoryHR
		d.UploadDate = time.Now().AddDate(-2, 0, 0)
	})
	archivable := env.createDoc(t, func(d *types.Document) {
		d.Category = types.CategoryReport
		d.UploadDate = time.Now().AddDate(-2, 0, 0)
	})

	if err := env.settings.SetLegalHold(bg(), true, "test"); err != nil {
		t.Fatalf("set legal hold: %v", err)
	}
	t.Cleanup(func() {
		_ = env.settings.SetLegalHold(bg(), false, "test")
	})

	report, err := svc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if report.SkippedHold < 1 {
		t.Fatalf("expected a hold skip, got %+v", report)
	}

	if got := env.reloadDoc(t, deletable.ID); got.Status != types.StatusPublished {
		t.Fatalf("deletion marking must defer under hold, got %q", got.Status)
	}
	// Archiving is reversible and keeps running under hold.
	if got := env.reloadDoc(t, archivable.ID); got.Status != types.StatusArchived {
		t.Fatalf("archiving must continue under hold, got %q", got.Status)
	}
	if n := len(env.auditEntries(t, deletable.ID, "RETENTION_SKIPPED")); n != 1 {
		t.Fatalf("expected one RETENTION_SKIPPED entry, got %d", n)
	}
}

func TestSweep_PrunesOldVersions(t *testing.T) {
	env := newTestEnv(t)
	svc := newRetention(t, env)

	doc := env.createDoc(t, nil)
	if _, err := env.versions.Create(bg(), []*types.DocumentVersion{{
		DocumentID: doc.ID,
		Filename:   doc.Filename,
		Reason:     "rescan",
		CreatedAt:  time.Now().AddDate(-3, 0, 0),
	}}); err != nil {
		t.Fatalf("seed old version: %v", err)
	}

	if err := env.settings.Set(bg(), types.SettingVersionRetainYears, "2", "test"); err != nil {
		t.Fatalf("set retain years: %v", err)
	}
	t.Cleanup(func() {
		_ = env.settings.Set(bg(), types.SettingVersionRetainYears, "", "test")
	})

	report, err := svc.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if report.VersionsPruned < 1 {
		t.Fatalf("expected pruned versions, got %+v", report)
	}
	versions, err := env.versions.ListByDocumentID(bg(), doc.ID)
	if err != nil {
		t.Fatalf("list versions: %v", err)
	}
	if len(versions) != 0 {
		t.Fatalf("expected the old snapshot to be gone, got %d", len(versions))
	}
}
