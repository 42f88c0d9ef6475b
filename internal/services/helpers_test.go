package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/PavithraSukumar6/kbn-dss-backend/internal/data/repos"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/data/repos/testutil"
	types "github.com/PavithraSukumar6/kbn-dss-backend/internal/domain"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/dbctx"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/logger"
)

// testEnv wires the real repos and the base services against the shared
// in-memory database. Tests keep their rows apart with unique ids.
type testEnv struct {
	db  *gorm.DB
	log *logger.Logger

	docs       repos.DocumentRepo
	versions   repos.DocumentVersionRepo
	jobs       repos.JobRunRepo
	containers repos.ContainerRepo
	batches    repos.BatchRepo
	users      repos.UserRepo
	auditRepo  repos.AuditRepo
	accessPols repos.AccessPolicyRepo
	approvals  repos.ApprovalPolicyRepo
	retentions repos.RetentionPolicyRepo
	requests   repos.AccessRequestRepo

	audit    AuditService
	settings SettingsService
	access   AccessService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gdb := testutil.DB(t)
	log := testutil.Logger(t)

	env := &testEnv{
		db:         gdb,
		log:        log,
		docs:       repos.NewDocumentRepo(gdb, log),
		versions:   repos.NewDocumentVersionRepo(gdb, log),
		jobs:       repos.NewJobRunRepo(gdb, log),
		containers: repos.NewContainerRepo(gdb, log),
		batches:    repos.NewBatchRepo(gdb, log),
		users:      repos.NewUserRepo(gdb, log),
		auditRepo:  repos.NewAuditRepo(gdb, log),
		accessPols: repos.NewAccessPolicyRepo(gdb, log),
		approvals:  repos.NewApprovalPolicyRepo(gdb, log),
		retentions: repos.NewRetentionPolicyRepo(gdb, log),
		requests:   repos.NewAccessRequestRepo(gdb, log),
	}
	env.audit = NewAuditService(gdb, log, env.auditRepo)
	env.settings = NewSettingsService(gdb, log, repos.NewSettingRepo(gdb, log), env.audit, nil)
	env.access = NewAccessService(gdb, log, env.accessPols, env.requests, env.containers)
	return env
}

func bg() dbctx.Context { return dbctx.Context{Ctx: context.Background()} }

func shortID() string {
	return strings.ToUpper(uuid.NewString()[:8])
}

func (env *testEnv) createContainer(t *testing.T, department, level string) *types.Container {
	t.Helper()
	c := &types.Container{
		ID:                   types.NewContainerID(),
		Name:                 "Box " + shortID(),
		Subsidiary:           "KBN Holding",
		Department:           department,
		ConfidentialityLevel: level,
		Barcode:              types.NewBarcode(),
		CreatedAt:            time.Now(),
	}
	if _, err := env.containers.Create(bg(), []*types.Container{c}); err != nil {
		t.Fatalf("create container: %v", err)
	}
	return c
}

func (env *testEnv) createDoc(t *testing.T, mutate func(*types.Document)) *types.Document {
	t.Helper()
	now := time.Now()
	doc := &types.Document{
		UID:            types.NewDocumentUID(),
		Filename:       "scan_" + shortID() + ".pdf",
		PageCount:      1,
		OCRStatus:      types.OCRStatusCompleted,
		Status:         types.StatusPublished,
		ApprovalStatus: types.ApprovalApproved,
		Confidence:     80,
		UploadDate:     now,
	}
	if mutate != nil {
		mutate(doc)
	}
	if _, err := env.docs.Create(bg(), []*types.Document{doc}); err != nil {
		t.Fatalf("create document: %v", err)
	}
	return doc
}

func (env *testEnv) auditEntries(t *testing.T, entityID int64, action string) []*types.AuditLogEntry {
	t.Helper()
	entries, err := env.auditRepo.List(bg(), repos.AuditFilter{
		EntityType: "Document",
		EntityID:   entityID,
		Action:     action,
	})
	if err != nil {
		t.Fatalf("list audit entries: %v", err)
	}
	return entries
}

func (env *testEnv) reloadDoc(t *testing.T, id int64) *types.Document {
	t.Helper()
	doc, err := env.docs.GetByID(bg(), id)
	if err != nil {
		t.Fatalf("reload document %d: %v", id, err)
	}
	if doc == nil {
		t.Fatalf("document %d disappeared", id)
	}
	return doc
}
