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

func newLibrary(t *testing.T, env *testEnv) LibraryService {
	t.Helper()
	log := testutil.Logger(t)
	return NewLibraryService(env.db, log,
		repos.NewFavoriteRepo(env.db, log),
		repos.NewSavedSearchRepo(env.db, log),
		repos.NewTaxonomyRepo(env.db, log),
		env.docs, env.audit)
}

func TestLibrary_ToggleFavoriteRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	lib := newLibrary(t, env)
	actor := testActor(types.RoleAdmin)
	doc := env.createDoc(t, nil)

	on, err := lib.ToggleFavorite(context.Background(), actor, doc.ID)
	if err != nil {
		t.Fatalf("toggle on: %v", err)
	}
	if !on {
		t.Fatalf("first toggle must favorite")
	}
	ids, err := lib.FavoriteIDs(context.Background(), actor)
	if err != nil {
		t.Fatalf("favorite ids: %v", err)
	}
	if len(ids) != 1 || ids[0] != doc.ID {
		t.Fatalf("expected [%d], got %v", doc.ID, ids)
	}

	on, err = lib.ToggleFavorite(context.Background(), actor, doc.ID)
	if err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	if on {
		t.Fatalf("second toggle must unfavorite")
	}
	ids, err = lib.FavoriteIDs(context.Background(), actor)
	if err != nil {
		t.Fatalf("favorite ids: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected no favorites, got %v", ids)
	}

	if _, err := lib.ToggleFavorite(context.Background(), actor, -42); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found for a missing document, got %v", err)
	}
}

func TestLibrary_SavedSearchVisibilityAndOwnership(t *testing.T) {
	env := newTestEnv(t)
	lib := newLibrary(t, env)
	owner := testActor(types.RoleOperator)
	other := testActor(types.RoleOperator)

	private, err := lib.CreateSavedSearch(context.Background(), owner, "my invoices", "category=Invoice", false)
	if err != nil {
		t.Fatalf("create private: %v", err)
	}
	shared, err := lib.CreateSavedSearch(context.Background(), other, "team contracts", "category=Contract", true)
	if err != nil {
		t.Fatalf("create public: %v", err)
	}
	if _, err := lib.CreateSavedSearch(context.Background(), owner, "", "x=y", false); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for empty name, got %v", err)
	}

	visible, err := lib.ListSavedSearches(context.Background(), owner)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var sawPrivate, sawShared bool
	for _, ss := range visible {
		if ss.ID == private.ID {
			sawPrivate = true
		}
		if ss.ID == shared.ID {
			sawShared = true
		}
	}
	if !sawPrivate || !sawShared {
		t.Fatalf("owner must see own private and others' public searches, got private=%v shared=%v", sawPrivate, sawShared)
	}

	// Deleting someone else's search is a silent no-op, never a takeover.
	if err := lib.DeleteSavedSearch(context.Background(), other, private.ID); err != nil {
		t.Fatalf("foreign delete: %v", err)
	}
	visible, err = lib.ListSavedSearches(context.Background(), owner)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	sawPrivate = false
	for _, ss := range visible {
		if ss.ID == private.ID {
			sawPrivate = true
		}
	}
	if !sawPrivate {
		t.Fatalf("foreign delete must not remove the search")
	}

	if err := lib.DeleteSavedSearch(context.Background(), owner, private.ID); err != nil {
		t.Fatalf("own delete: %v", err)
	}
}

func TestLibrary_TaxonomyIsAdminGated(t *testing.T) {
	env := newTestEnv(t)
	lib := newLibrary(t, env)
	admin := testActor(types.RoleAdmin)
	clerk := testActor(types.RoleOperator)
	value := "Permit-" + shortID()

	if _, err := lib.AddTaxonomyItem(context.Background(), clerk, types.TaxonomyDocumentType, value); !errors.Is(err, apperrors.ErrPermissionDenied) {
		t.Fatalf("expected permission denied for non-admin, got %v", err)
	}
	if _, err := lib.AddTaxonomyItem(context.Background(), admin, "Flavor", value); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for unknown kind, got %v", err)
	}

	item, err := lib.AddTaxonomyItem(context.Background(), admin, types.TaxonomyDocumentType, value)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if item.Status != types.TaxonomyActive {
		t.Fatalf("new items must start Active, got %q", item.Status)
	}

	opts, err := lib.FilterOptions(context.Background())
	if err != nil {
		t.Fatalf("filter options: %v", err)
	}
	if !containsString(opts.Categories, value) {
		t.Fatalf("active item missing from filter options: %v", opts.Categories)
	}

	if err := lib.SetTaxonomyStatus(context.Background(), admin, item.ID, "Retired"); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("expected invalid argument for unknown status, got %v", err)
	}
	if err := lib.SetTaxonomyStatus(context.Background(), admin, item.ID, types.TaxonomyDeprecated); err != nil {
		t.Fatalf("deprecate: %v", err)
	}
	opts, err = lib.FilterOptions(context.Background())
	if err != nil {
		t.Fatalf("filter options: %v", err)
	}
	if containsString(opts.Categories, value) {
		t.Fatalf("deprecated item must drop out of filter options")
	}
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
