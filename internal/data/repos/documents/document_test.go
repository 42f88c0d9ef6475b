package documents

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/PavithraSukumar6/kbn-dss-backend/internal/data/repos/testutil"
	types "github.com/PavithraSukumar6/kbn-dss-backend/internal/domain"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/dbctx"
)

func bg() dbctx.Context { return dbctx.Context{Ctx: context.Background()} }

func shortID() string {
	return strings.ToUpper(uuid.NewString()[:8])
}

func seedDoc(t *testing.T, repo DocumentRepo, mutate func(*types.Document)) *types.Document {
	t.Helper()
	doc := &types.Document{
		UID:            types.NewDocumentUID(),
		Filename:       "scan_" + shortID() + ".pdf",
		PageCount:      1,
		OCRStatus:      types.OCRStatusCompleted,
		Status:         types.StatusPublished,
		ApprovalStatus: types.ApprovalApproved,
		UploadDate:     time.Now(),
	}
	if mutate != nil {
		mutate(doc)
	}
	if _, err := repo.Create(bg(), []*types.Document{doc}); err != nil {
		t.Fatalf("create document: %v", err)
	}
	return doc
}

func TestFindByFingerprint_ReturnsEarliestLiveMatch(t *testing.T) {
	repo := NewDocumentRepo(testutil.DB(t), testutil.Logger(t))
	fingerprint := "fp-" + shortID()

	first := seedDoc(t, repo, func(d *types.Document) { d.Fingerprint = fingerprint })
	second := seedDoc(t, repo, func(d *types.Document) { d.Fingerprint = fingerprint })

	got, err := repo.FindByFingerprint(bg(), fingerprint)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got == nil || got.ID != first.ID {
		t.Fatalf("expected the earliest row, got %+v", got)
	}

	if err := repo.UpdateFields(bg(), first.ID, map[string]interface{}{
		"status": types.StatusSoftDeleted,
	}); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	got, err = repo.FindByFingerprint(bg(), fingerprint)
	if err != nil {
		t.Fatalf("find after delete: %v", err)
	}
	if got == nil || got.ID != second.ID {
		t.Fatalf("deleted rows must not count as duplicates, got %+v", got)
	}
}

func TestList_ExcludesDeletedByDefault(t *testing.T) {
	repo := NewDocumentRepo(testutil.DB(t), testutil.Logger(t))
	container := "CONT-" + shortID()

	live := seedDoc(t, repo, func(d *types.Document) { d.ContainerID = container })
	deleted := seedDoc(t, repo, func(d *types.Document) {
		d.ContainerID = container
		d.Status = types.StatusSoftDeleted
	})

	docs, err := repo.List(bg(), DocumentFilter{ContainerID: container})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != live.ID {
		t.Fatalf("expected only the live row, got %d rows", len(docs))
	}

	docs, err = repo.List(bg(), DocumentFilter{ContainerID: container, IncludeDeleted: true})
	if err != nil {
		t.Fatalf("list with deleted: %v", err)
	}
	seen := map[int64]bool{}
	for _, d := range docs {
		seen[d.ID] = true
	}
	if !seen[live.ID] || !seen[deleted.ID] {
		t.Fatalf("expected both rows with IncludeDeleted, got %v", seen)
	}
}

func TestList_SubstringSearchCoversFilenameAndContent(t *testing.T) {
	repo := NewDocumentRepo(testutil.DB(t), testutil.Logger(t))
	needle := "needle" + shortID()

	byName := seedDoc(t, repo, func(d *types.Document) { d.Filename = needle + ".pdf" })
	byContent := seedDoc(t, repo, func(d *types.Document) { d.Content = "body with " + needle + " inside" })
	seedDoc(t, repo, nil)

	docs, err := repo.List(bg(), DocumentFilter{Search: needle})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected two matches, got %d", len(docs))
	}
	seen := map[int64]bool{}
	for _, d := range docs {
		seen[d.ID] = true
	}
	if !seen[byName.ID] || !seen[byContent.ID] {
		t.Fatalf("expected matches by filename and content, got %v", seen)
	}
}

func TestListForRetention_SkipsTerminalStates(t *testing.T) {
	repo := NewDocumentRepo(testutil.DB(t), testutil.Logger(t))
	category := "Cat-" + shortID()
	old := time.Now().AddDate(-3, 0, 0)

	active := seedDoc(t, repo, func(d *types.Document) {
		d.Category = category
		d.UploadDate = old
	})
	seedDoc(t, repo, func(d *types.Document) {
		d.Category = category
		d.UploadDate = old
		d.Status = types.StatusArchived
	})
	seedDoc(t, repo, func(d *types.Document) {
		d.Category = category
		d.UploadDate = old
		d.Status = types.StatusPendingDeletion
	})
	seedDoc(t, repo, func(d *types.Document) {
		d.Category = category // recent upload, not overdue
	})

	docs, err := repo.ListForRetention(bg(), category, time.Now().AddDate(-1, 0, 0))
	if err != nil {
		t.Fatalf("list for retention: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != active.ID {
		t.Fatalf("expected only the live overdue row, got %d rows", len(docs))
	}
}

func TestCountGroupedBy_RejectsUnknownColumns(t *testing.T) {
	repo := NewDocumentRepo(testutil.DB(t), testutil.Logger(t))

	if _, err := repo.CountGroupedBy(bg(), "filename; DROP TABLE documents"); err == nil {
		t.Fatalf("expected unsupported column error")
	}
	if _, err := repo.CountGroupedBy(bg(), "category"); err != nil {
		t.Fatalf("category grouping: %v", err)
	}
}
