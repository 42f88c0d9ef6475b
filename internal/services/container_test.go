package services

import (
	"context"
	"errors"
	"testing"

	"github.com/PavithraSukumar6/kbn-dss-backend/internal/data/repos"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/data/repos/testutil"
	types "github.com/PavithraSukumar6/kbn-dss-backend/internal/domain"
	apperrors "github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/errors"
)

func newContainers(t *testing.T, env *testEnv) ContainerService {
	t.Helper()
	log := testutil.Logger(t)
	return NewContainerService(env.db, log, env.containers,
		repos.NewTransferLogRepo(env.db, log), env.batches, env.audit)
}

func TestContainer_CreateAssignsIDAndBarcode(t *testing.T) {
	env := newTestEnv(t)
	svc := newContainers(t, env)
	actor := testActor(types.RoleManager)

	c, err := svc.Create(context.Background(), actor, ContainerInput{
		Name:              "Archive Box " + shortID(),
		Subsidiary:        "KBN Holding",
		Department:        "Finance-" + shortID(),
		SourceLocation:    "Warehouse A",
		PhysicalPageCount: 120,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.ID == "" || c.Barcode == "" {
		t.Fatalf("expected generated id and barcode, got %+v", c)
	}

	if _, err := svc.Create(context.Background(), actor, ContainerInput{}); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("expected name validation, got %v", err)
	}
	if _, err := svc.Create(context.Background(), actor, ContainerInput{
		Name:     "Orphan",
		ParentID: "CONT-MISSING-" + shortID(),
	}); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected parent existence check, got %v", err)
	}
}

func TestContainer_TransferWritesLog(t *testing.T) {
	env := newTestEnv(t)
	svc := newContainers(t, env)
	actor := testActor(types.RoleManager)

	c, err := svc.Create(context.Background(), actor, ContainerInput{
		Name:           "Box " + shortID(),
		SourceLocation: "Warehouse A",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	moved, err := svc.Transfer(context.Background(), actor, c.ID, "Scanning Room 2")
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if moved.SourceLocation != "Scanning Room 2" {
		t.Fatalf("expected updated location, got %q", moved.SourceLocation)
	}

	log, err := svc.TransferLog(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("transfer log: %v", err)
	}
	if len(log) != 1 {
		t.Fatalf("expected one log entry, got %d", len(log))
	}
	if log[0].PreviousLocation != "Warehouse A" || log[0].NewLocation != "Scanning Room 2" {
		t.Fatalf("unexpected log entry: %+v", log[0])
	}
}

func TestContainer_BatchLifecycle(t *testing.T) {
	env := newTestEnv(t)
	svc := newContainers(t, env)
	actor := testActor(types.RoleOperator)

	c, err := svc.Create(context.Background(), actor, ContainerInput{
		Name:              "Box " + shortID(),
		PhysicalPageCount: 2,
	})
	if err != nil {
		t.Fatalf("create container: %v", err)
	}

	batch, err := svc.CreateBatch(context.Background(), actor, c.ID)
	if err != nil {
		t.Fatalf("create batch: %v", err)
	}
	if batch.ExpectedPageCount != 2 || batch.Status != types.BatchQCPending {
		t.Fatalf("unexpected batch: %+v", batch)
	}

	completeness, err := svc.Completeness(context.Background(), batch.ID)
	if err != nil {
		t.Fatalf("completeness: %v", err)
	}
	if completeness.Complete {
		t.Fatalf("no pages scanned yet, expected incomplete")
	}

	if err := env.batches.IncrementScanned(bg(), batch.ID, 2); err != nil {
		t.Fatalf("increment scanned: %v", err)
	}
	completeness, err = svc.Completeness(context.Background(), batch.ID)
	if err != nil {
		t.Fatalf("completeness: %v", err)
	}
	if !completeness.Complete {
		t.Fatalf("expected complete at %d/%d", completeness.TotalPagesScanned, completeness.ExpectedPageCount)
	}

	if _, err := svc.ReviewBatch(context.Background(), actor, batch.ID, "Maybe", ""); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("expected verdict validation, got %v", err)
	}
	reviewed, err := svc.ReviewBatch(context.Background(), actor, batch.ID, types.BatchQCArchived, "all pages present")
	if err != nil {
		t.Fatalf("review batch: %v", err)
	}
	if reviewed.QCStatus != types.BatchQCArchived || reviewed.QCBy != actor.ID || reviewed.EndTime == nil {
		t.Fatalf("unexpected reviewed batch: %+v", reviewed)
	}
}
