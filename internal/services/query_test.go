package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/PavithraSukumar6/kbn-dss-backend/internal/data/repos"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/data/repos/testutil"
	types "github.com/PavithraSukumar6/kbn-dss-backend/internal/domain"
	apperrors "github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/errors"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/search"
)

type queryFixture struct {
	*testEnv
	svc       QueryService
	favorites repos.FavoriteRepo
	index     search.Index
}

func newQuery(t *testing.T) *queryFixture {
	t.Helper()
	env := newTestEnv(t)
	log := testutil.Logger(t)
	favorites := repos.NewFavoriteRepo(env.db, log)
	index := search.NewMemory()
	svc := NewQueryService(env.db, log, env.docs, env.containers, favorites,
		env.access, index, env.audit)
	return &queryFixture{testEnv: env, svc: svc, favorites: favorites, index: index}
}

func TestQuery_FavoritesOnlyNeverDropsTheFilter(t *testing.T) {
	fx := newQuery(t)
	admin := testActor(types.RoleAdmin)
	starred := fx.createDoc(t, nil)
	fx.createDoc(t, nil)

	// No favorites yet: the page must be empty, not unfiltered.
	res, err := fx.svc.List(context.Background(), admin, ListQuery{FavoritesOnly: true})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(res.Documents) != 0 || res.Total != 0 {
		t.Fatalf("expected an empty page without favorites, got %d/%d", len(res.Documents), res.Total)
	}

	if err := fx.favorites.Add(bg(), admin.ID, starred.ID); err != nil {
		t.Fatalf("add favorite: %v", err)
	}
	res, err = fx.svc.List(context.Background(), admin, ListQuery{FavoritesOnly: true})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(res.Documents) != 1 || res.Documents[0].ID != starred.ID {
		t.Fatalf("expected only the starred document, got %d rows", len(res.Documents))
	}
}

func TestQuery_IncludeDeletedIsAdminOnly(t *testing.T) {
	fx := newQuery(t)
	admin := testActor(types.RoleAdmin)
	container := fx.createContainer(t, "Finance-"+shortID(), "")
	deleted := fx.createDoc(t, func(d *types.Document) {
		d.ContainerID = container.ID
		d.Status = types.StatusSoftDeleted
	})

	res, err := fx.svc.List(context.Background(), admin, ListQuery{
		ContainerID:    container.ID,
		IncludeDeleted: true,
	})
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if len(res.Documents) != 1 || res.Documents[0].ID != deleted.ID {
		t.Fatalf("admin must see the deleted row, got %d rows", len(res.Documents))
	}

	role := "Clerk-" + shortID()
	fx.grantLevels(t, role, "", "Public,Internal,Confidential,Restricted")
	clerk := &types.User{ID: "user-" + shortID(), Role: role, ScopeKind: types.ScopeHolding}
	res, err = fx.svc.List(context.Background(), clerk, ListQuery{
		ContainerID:    container.ID,
		IncludeDeleted: true,
	})
	if err != nil {
		t.Fatalf("clerk list: %v", err)
	}
	if len(res.Documents) != 0 {
		t.Fatalf("non-admins must never see deleted rows, got %d", len(res.Documents))
	}
}

func TestQuery_SearchPreservesIndexRank(t *testing.T) {
	fx := newQuery(t)
	admin := testActor(types.RoleAdmin)
	token := "zq" + strings.ToLower(shortID())

	weak := fx.createDoc(t, nil)
	strong := fx.createDoc(t, nil)
	if err := fx.index.IndexDocument(bg(), weak.ID, token); err != nil {
		t.Fatalf("index: %v", err)
	}
	if err := fx.index.IndexDocument(bg(), strong.ID, token+" "+token+" "+token); err != nil {
		t.Fatalf("index: %v", err)
	}

	docs, err := fx.svc.Search(context.Background(), admin, token, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected both matches, got %d", len(docs))
	}
	if docs[0].ID != strong.ID || docs[1].ID != weak.ID {
		t.Fatalf("expected rank order [%d %d], got [%d %d]", strong.ID, weak.ID, docs[0].ID, docs[1].ID)
	}
}

func TestQuery_SearchAuditsInvisibleResults(t *testing.T) {
	fx := newQuery(t)
	token := "zq" + strings.ToLower(shortID())
	role := "Clerk-" + shortID()
	dept := "Finance-" + shortID()
	fx.grantLevels(t, role, dept, "Public,Internal")
	clerk := &types.User{ID: "user-" + shortID(), Role: role, ScopeKind: types.ScopeDepartment, ScopeValue: dept}

	foreign := fx.createContainer(t, "HR-"+shortID(), "")
	hidden := fx.createDoc(t, func(d *types.Document) { d.ContainerID = foreign.ID })
	if err := fx.index.IndexDocument(bg(), hidden.ID, token); err != nil {
		t.Fatalf("index: %v", err)
	}

	docs, err := fx.svc.Search(context.Background(), clerk, token, 10)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("expected the out-of-scope hit to be filtered, got %d", len(docs))
	}

	entries, err := fx.auditRepo.List(bg(), repos.AuditFilter{
		EntityType:  "Search",
		Action:      "SEARCH_NO_RESULTS",
		PerformedBy: clerk.ID,
	})
	if err != nil {
		t.Fatalf("list audit: %v", err)
	}
	if len(entries) != 1 || entries[0].Scope != types.AuditScopeSecurity {
		t.Fatalf("expected one security-scoped probe record, got %v", entries)
	}
}

func TestQuery_GetAuditsRestrictedViews(t *testing.T) {
	fx := newQuery(t)
	admin := testActor(types.RoleAdmin)

	internal := fx.createDoc(t, nil)
	confidential := fx.createDoc(t, func(d *types.Document) {
		d.ConfidentialityLevel = types.ConfidentialityConfidential
	})

	if _, err := fx.svc.Get(context.Background(), admin, internal.ID); err != nil {
		t.Fatalf("get internal: %v", err)
	}
	if n := len(fx.auditEntries(t, internal.ID, "VIEW_RESTRICTED")); n != 0 {
		t.Fatalf("internal reads must not leave a trail, got %d", n)
	}

	if _, err := fx.svc.Get(context.Background(), admin, confidential.ID); err != nil {
		t.Fatalf("get confidential: %v", err)
	}
	entries := fx.auditEntries(t, confidential.ID, "VIEW_RESTRICTED")
	if len(entries) != 1 || entries[0].Scope != types.AuditScopeSecurity {
		t.Fatalf("expected one security-scoped view record, got %v", entries)
	}
}

func TestQuery_GetDeniesInvisibleDocuments(t *testing.T) {
	fx := newQuery(t)
	role := "Clerk-" + shortID()
	clerk := &types.User{ID: "user-" + shortID(), Role: role, ScopeKind: types.ScopeHolding}
	doc := fx.createDoc(t, func(d *types.Document) {
		d.ConfidentialityLevel = types.ConfidentialityRestricted
	})

	if _, err := fx.svc.Get(context.Background(), clerk, doc.ID); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("expected permission denied, got %v", err)
	}
}

func TestQuery_ExportCSV(t *testing.T) {
	fx := newQuery(t)
	admin := testActor(types.RoleAdmin)
	container := fx.createContainer(t, "Finance-"+shortID(), "")
	fx.createDoc(t, func(d *types.Document) { d.ContainerID = container.ID })
	fx.createDoc(t, func(d *types.Document) { d.ContainerID = container.ID })

	var buf bytes.Buffer
	n, err := fx.svc.ExportCSV(context.Background(), admin, ListQuery{ContainerID: container.ID}, &buf)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected two rows, got %d", n)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus two rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "id,uid,filename") {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if strings.Contains(buf.String(), "OCR_SKIPPED") {
		t.Fatalf("content must not leak into the export")
	}
}
