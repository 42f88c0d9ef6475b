package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/PavithraSukumar6/kbn-dss-backend/internal/data/repos/testutil"
	types "github.com/PavithraSukumar6/kbn-dss-backend/internal/domain"
	apperrors "github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/errors"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/platform/blob"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/platform/split"
)

func newIngest(t *testing.T, env *testEnv) (IngestService, blob.Store) {
	t.Helper()
	log := testutil.Logger(t)
	store, err := blob.NewLocal(log, t.TempDir())
	if err != nil {
		t.Fatalf("local store: %v", err)
	}
	svc := NewIngestService(env.db, log, env.docs, env.jobs, env.containers,
		env.batches, env.audit, store, split.New())
	return svc, store
}

func TestIngest_CreatesStubAndEnqueuesJob(t *testing.T) {
	env := newTestEnv(t)
	svc, store := newIngest(t, env)
	actor := testActor(types.RoleOperator)
	container := env.createContainer(t, "Finance-"+shortID(), "")

	data := []byte("plain scan bytes " + shortID())
	stubs, err := svc.Ingest(context.Background(), actor, IngestInput{
		Filename:    "statement.txt",
		Data:        data,
		ContainerID: container.ID,
		Tags:        "q1,finance",
	})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if len(stubs) != 1 {
		t.Fatalf("expected one stub for a single-page file, got %d", len(stubs))
	}

	doc := stubs[0]
	if doc.ID == 0 || doc.UID == "" {
		t.Fatalf("expected a persisted stub with identifiers, got %+v", doc)
	}
	if doc.Status != types.StatusIntake || doc.OCRStatus != types.OCRStatusProcessing {
		t.Fatalf("unexpected initial state: status=%q ocr=%q", doc.Status, doc.OCRStatus)
	}
	if doc.Fingerprint != Fingerprint(data) {
		t.Fatalf("fingerprint mismatch")
	}
	if doc.UploaderID != actor.ID || doc.OwnerID != actor.ID {
		t.Fatalf("uploader must own the stub, got uploader=%q owner=%q", doc.UploaderID, doc.OwnerID)
	}

	if len(doc.Metadata) > 0 {
		t.Fatalf("a plain upload must not carry bookkeeping metadata, got %s", doc.Metadata)
	}
	if doc.StorageKey == "" {
		t.Fatalf("expected the stub to record its blob location")
	}
	rc, err := store.Download(context.Background(), doc.StorageKey)
	if err != nil {
		t.Fatalf("stored artifact missing: %v", err)
	}
	stored, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(stored) != string(data) {
		t.Fatalf("stored bytes differ from the upload")
	}

	runnable, err := env.jobs.HasRunnableForEntity(bg(), "Document", doc.ID, types.JobTypeDocumentProcess)
	if err != nil {
		t.Fatalf("check job queue: %v", err)
	}
	if !runnable {
		t.Fatalf("expected a queued pipeline job per stub")
	}
	if n := len(env.auditEntries(t, doc.ID, "INGEST")); n != 1 {
		t.Fatalf("expected one INGEST entry, got %d", n)
	}
}

func TestIngest_RejectsDuplicateFingerprint(t *testing.T) {
	env := newTestEnv(t)
	svc, _ := newIngest(t, env)
	actor := testActor(types.RoleOperator)
	container := env.createContainer(t, "Finance-"+shortID(), "")

	data := []byte("duplicate payload " + shortID())
	first, err := svc.Ingest(context.Background(), actor, IngestInput{
		Filename:    "original.txt",
		Data:        data,
		ContainerID: container.ID,
	})
	if err != nil {
		t.Fatalf("first ingest: %v", err)
	}

	_, err = svc.Ingest(context.Background(), actor, IngestInput{
		Filename:    "copy.txt",
		Data:        data,
		ContainerID: container.ID,
	})
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("expected a conflict, got %v", err)
	}
	var dup *DuplicateError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateError, got %T", err)
	}
	if dup.Existing.ID != first[0].ID {
		t.Fatalf("expected the original identity, got %d want %d", dup.Existing.ID, first[0].ID)
	}
}

func TestIngest_DuplicateAllowedAfterOriginalDeleted(t *testing.T) {
	env := newTestEnv(t)
	svc, _ := newIngest(t, env)
	actor := testActor(types.RoleOperator)
	container := env.createContainer(t, "Finance-"+shortID(), "")

	data := []byte("reupload payload " + shortID())
	first, err := svc.Ingest(context.Background(), actor, IngestInput{
		Filename: "original.txt", Data: data, ContainerID: container.ID,
	})
	if err != nil {
		t.Fatalf("first ingest: %v", err)
	}
	if err := env.docs.UpdateFields(bg(), first[0].ID, map[string]interface{}{
		"status": types.StatusSoftDeleted,
	}); err != nil {
		t.Fatalf("soft delete original: %v", err)
	}

	if _, err := svc.Ingest(context.Background(), actor, IngestInput{
		Filename: "again.txt", Data: data, ContainerID: container.ID,
	}); err != nil {
		t.Fatalf("a deleted original must not block re-ingestion: %v", err)
	}
}

func TestIngest_ManualCategoryPinsAtFullConfidence(t *testing.T) {
	env := newTestEnv(t)
	svc, _ := newIngest(t, env)
	actor := testActor(types.RoleOperator)
	container := env.createContainer(t, "Legal-"+shortID(), "")

	stubs, err := svc.Ingest(context.Background(), actor, IngestInput{
		Filename:    "nda.txt",
		Data:        []byte("pin payload " + shortID()),
		ContainerID: container.ID,
		Category:    types.CategoryContract,
	})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	doc := stubs[0]
	if doc.Category != types.CategoryContract || doc.Confidence != 100 {
		t.Fatalf("expected pinned Contract at 100, got %q at %v", doc.Category, doc.Confidence)
	}
	var meta map[string]string
	if err := json.Unmarshal(doc.Metadata, &meta); err != nil {
		t.Fatalf("decode metadata: %v", err)
	}
	if meta["manual_category"] != types.CategoryContract {
		t.Fatalf("expected manual_category marker, got %v", meta)
	}
}

func TestIngest_IncrementsBatchPageCount(t *testing.T) {
	env := newTestEnv(t)
	svc, _ := newIngest(t, env)
	actor := testActor(types.RoleOperator)
	container := env.createContainer(t, "Ops-"+shortID(), "")

	batches, err := env.batches.Create(bg(), []*types.Batch{{
		ContainerID:       container.ID,
		Status:            types.BatchQCPending,
		ExpectedPageCount: 10,
		StartTime:         time.Now(),
	}})
	if err != nil {
		t.Fatalf("create batch: %v", err)
	}
	batchID := batches[0].ID

	if _, err := svc.Ingest(context.Background(), actor, IngestInput{
		Filename:    "page.txt",
		Data:        []byte("batch payload " + shortID()),
		ContainerID: container.ID,
		BatchID:     &batchID,
	}); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	batch, err := env.batches.GetByID(bg(), batchID)
	if err != nil {
		t.Fatalf("reload batch: %v", err)
	}
	if batch.TotalPagesScanned != 1 {
		t.Fatalf("expected one scanned page, got %d", batch.TotalPagesScanned)
	}
}

func TestIngest_RejectsUnknownContainer(t *testing.T) {
	env := newTestEnv(t)
	svc, _ := newIngest(t, env)
	actor := testActor(types.RoleOperator)

	_, err := svc.Ingest(context.Background(), actor, IngestInput{
		Filename:    "orphan.txt",
		Data:        []byte("orphan payload " + shortID()),
		ContainerID: "CONT-MISSING-" + shortID(),
	})
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
