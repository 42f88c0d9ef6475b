package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/PavithraSukumar6/kbn-dss-backend/internal/data/repos"
	types "github.com/PavithraSukumar6/kbn-dss-backend/internal/domain"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/dbctx"
	apperrors "github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/errors"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/logger"
)

// FilterOptions lists the controlled vocabularies the UI can filter by.
type FilterOptions struct {
	Categories            []string `json:"categories"`
	Departments           []string `json:"departments"`
	Statuses              []string `json:"statuses"`
	ConfidentialityLevels []string `json:"confidentiality_levels"`
}

// LibraryService covers per-user conveniences (favorites, saved searches)
// and the admin-managed taxonomy.
type LibraryService interface {
	ToggleFavorite(ctx context.Context, actor *types.User, documentID int64) (favorited bool, err error)
	FavoriteIDs(ctx context.Context, actor *types.User) ([]int64, error)

	CreateSavedSearch(ctx context.Context, actor *types.User, name, queryParams string, isPublic bool) (*types.SavedSearch, error)
	ListSavedSearches(ctx context.Context, actor *types.User) ([]*types.SavedSearch, error)
	DeleteSavedSearch(ctx context.Context, actor *types.User, id int64) error

	ListTaxonomy(ctx context.Context, kind string) ([]*types.TaxonomyItem, error)
	AddTaxonomyItem(ctx context.Context, actor *types.User, kind, value string) (*types.TaxonomyItem, error)
	SetTaxonomyStatus(ctx context.Context, actor *types.User, id int64, status string) error
	FilterOptions(ctx context.Context) (*FilterOptions, error)
}

type libraryService struct {
	db        *gorm.DB
	log       *logger.Logger
	favorites repos.FavoriteRepo
	searches  repos.SavedSearchRepo
	taxonomy  repos.TaxonomyRepo
	documents repos.DocumentRepo
	audit     AuditService
}

func NewLibraryService(
	db *gorm.DB,
	baseLog *logger.Logger,
	favorites repos.FavoriteRepo,
	searches repos.SavedSearchRepo,
	taxonomy repos.TaxonomyRepo,
	documents repos.DocumentRepo,
	audit AuditService,
) LibraryService {
	return &libraryService{
		db:        db,
		log:       baseLog.With("service", "LibraryService"),
		favorites: favorites,
		searches:  searches,
		taxonomy:  taxonomy,
		documents: documents,
		audit:     audit,
	}
}

func (s *libraryService) ToggleFavorite(ctx context.Context, actor *types.User, documentID int64) (bool, error) {
	dbc := dbctx.Context{Ctx: ctx}
	doc, err := s.documents.GetByID(dbc, documentID)
	if err != nil {
		return false, err
	}
	if doc == nil {
		return false, fmt.Errorf("document %d: %w", documentID, apperrors.ErrNotFound)
	}

	ids, err := s.favorites.ListDocumentIDs(dbc, actor.ID)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == documentID {
			if err := s.favorites.Remove(dbc, actor.ID, documentID); err != nil {
				return false, err
			}
			return false, nil
		}
	}
	if err := s.favorites.Add(dbc, actor.ID, documentID); err != nil {
		return false, err
	}
	return true, nil
}

func (s *libraryService) FavoriteIDs(ctx context.Context, actor *types.User) ([]int64, error) {
	return s.favorites.ListDocumentIDs(dbctx.Context{Ctx: ctx}, actor.ID)
}

func (s *libraryService) CreateSavedSearch(ctx context.Context, actor *types.User, name, queryParams string, isPublic bool) (*types.SavedSearch, error) {
	if name == "" {
		return nil, fmt.Errorf("saved search name required: %w", apperrors.ErrInvalidArgument)
	}
	ss := &types.SavedSearch{
		UserID:      actor.ID,
		Name:        name,
		QueryParams: queryParams,
		IsPublic:    isPublic,
		CreatedAt:   time.Now(),
	}
	if _, err := s.searches.Create(dbctx.Context{Ctx: ctx}, []*types.SavedSearch{ss}); err != nil {
		return nil, fmt.Errorf("create saved search: %w", err)
	}
	return ss, nil
}

func (s *libraryService) ListSavedSearches(ctx context.Context, actor *types.User) ([]*types.SavedSearch, error) {
	return s.searches.ListVisibleTo(dbctx.Context{Ctx: ctx}, actor.ID)
}

func (s *libraryService) DeleteSavedSearch(ctx context.Context, actor *types.User, id int64) error {
	return s.searches.Delete(dbctx.Context{Ctx: ctx}, id, actor.ID)
}

func (s *libraryService) ListTaxonomy(ctx context.Context, kind string) ([]*types.TaxonomyItem, error) {
	return s.taxonomy.List(dbctx.Context{Ctx: ctx}, kind)
}

func (s *libraryService) AddTaxonomyItem(ctx context.Context, actor *types.User, kind, value string) (*types.TaxonomyItem, error) {
	dbc := dbctx.Context{Ctx: ctx}
	if actor.Role != types.RoleAdmin {
		return nil, fmt.Errorf("taxonomy changes require admin: %w", apperrors.ErrPermissionDenied)
	}
	if kind != types.TaxonomyDocumentType && kind != types.TaxonomyDepartment {
		return nil, fmt.Errorf("unknown taxonomy kind %q: %w", kind, apperrors.ErrInvalidArgument)
	}
	if value == "" {
		return nil, fmt.Errorf("taxonomy value required: %w", apperrors.ErrInvalidArgument)
	}
	item := &types.TaxonomyItem{Kind: kind, Value: value, Status: types.TaxonomyActive, CreatedAt: time.Now()}
	if _, err := s.taxonomy.Create(dbc, []*types.TaxonomyItem{item}); err != nil {
		return nil, fmt.Errorf("create taxonomy item: %w", err)
	}
	s.audit.Record(dbc, AuditEvent{
		EntityType:  "Taxonomy",
		Action:      "TAXONOMY_ADDED",
		Details:     fmt.Sprintf("%s: %s", kind, value),
		PerformedBy: actor.ID,
	})
	return item, nil
}

func (s *libraryService) SetTaxonomyStatus(ctx context.Context, actor *types.User, id int64, status string) error {
	dbc := dbctx.Context{Ctx: ctx}
	if actor.Role != types.RoleAdmin {
		return fmt.Errorf("taxonomy changes require admin: %w", apperrors.ErrPermissionDenied)
	}
	if status != types.TaxonomyActive && status != types.TaxonomyDeprecated {
		return fmt.Errorf("status must be %s or %s: %w", types.TaxonomyActive, types.TaxonomyDeprecated, apperrors.ErrInvalidArgument)
	}
	if err := s.taxonomy.SetStatus(dbc, id, status); err != nil {
		return err
	}
	s.audit.Record(dbc, AuditEvent{
		EntityType:  "Taxonomy",
		EntityID:    id,
		Action:      "TAXONOMY_STATUS",
		After:       status,
		PerformedBy: actor.ID,
	})
	return nil
}

// FilterOptions merges active taxonomy values with the fixed status and
// confidentiality vocabularies.
func (s *libraryService) FilterOptions(ctx context.Context) (*FilterOptions, error) {
	dbc := dbctx.Context{Ctx: ctx}
	opts := &FilterOptions{
		Statuses:              types.DocumentStatuses,
		ConfidentialityLevels: types.ConfidentialityLevels,
	}
	items, err := s.taxonomy.List(dbc, "")
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if it.Status != types.TaxonomyActive {
			continue
		}
		switch it.Kind {
		case types.TaxonomyDocumentType:
			opts.Categories = append(opts.Categories, it.Value)
		case types.TaxonomyDepartment:
			opts.Departments = append(opts.Departments, it.Value)
		}
	}
	return opts, nil
}
