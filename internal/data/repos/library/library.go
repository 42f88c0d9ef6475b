package library

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/PavithraSukumar6/kbn-dss-backend/internal/domain"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/dbctx"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/logger"
)

type FavoriteRepo interface {
	Add(dbc dbctx.Context, userID string, documentID int64) error
	Remove(dbc dbctx.Context, userID string, documentID int64) error
	ListDocumentIDs(dbc dbctx.Context, userID string) ([]int64, error)
}

type favoriteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFavoriteRepo(db *gorm.DB, baseLog *logger.Logger) FavoriteRepo {
	return &favoriteRepo{db: db, log: baseLog.With("repo", "FavoriteRepo")}
}

func (r *favoriteRepo) Add(dbc dbctx.Context, userID string, documentID int64) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	fav := &types.Favorite{UserID: userID, DocumentID: documentID, CreatedAt: time.Now()}
	return transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(fav).Error
}

func (r *favoriteRepo) Remove(dbc dbctx.Context, userID string, documentID int64) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Where("user_id = ? AND document_id = ?", userID, documentID).
		Delete(&types.Favorite{}).Error
}

func (r *favoriteRepo) ListDocumentIDs(dbc dbctx.Context, userID string) ([]int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var ids []int64
	err := transaction.WithContext(dbc.Ctx).
		Model(&types.Favorite{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Pluck("document_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

type SavedSearchRepo interface {
	Create(dbc dbctx.Context, searches []*types.SavedSearch) ([]*types.SavedSearch, error)
	ListVisibleTo(dbc dbctx.Context, userID string) ([]*types.SavedSearch, error)
	Delete(dbc dbctx.Context, id int64, userID string) error
}

type savedSearchRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSavedSearchRepo(db *gorm.DB, baseLog *logger.Logger) SavedSearchRepo {
	return &savedSearchRepo{db: db, log: baseLog.With("repo", "SavedSearchRepo")}
}

func (r *savedSearchRepo) Create(dbc dbctx.Context, searches []*types.SavedSearch) ([]*types.SavedSearch, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(searches) == 0 {
		return []*types.SavedSearch{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&searches).Error; err != nil {
		return nil, err
	}
	return searches, nil
}

// ListVisibleTo returns the user's own searches plus all public ones.
func (r *savedSearchRepo) ListVisibleTo(dbc dbctx.Context, userID string) ([]*types.SavedSearch, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.SavedSearch
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ? OR is_public = ?", userID, true).
		Order("created_at DESC, id DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a search only when owned by the caller.
func (r *savedSearchRepo) Delete(dbc dbctx.Context, id int64, userID string) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&types.SavedSearch{}).Error
}

type TaxonomyRepo interface {
	Create(dbc dbctx.Context, items []*types.TaxonomyItem) ([]*types.TaxonomyItem, error)
	List(dbc dbctx.Context, kind string) ([]*types.TaxonomyItem, error)
	SetStatus(dbc dbctx.Context, id int64, status string) error
}

type taxonomyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaxonomyRepo(db *gorm.DB, baseLog *logger.Logger) TaxonomyRepo {
	return &taxonomyRepo{db: db, log: baseLog.With("repo", "TaxonomyRepo")}
}

func (r *taxonomyRepo) Create(dbc dbctx.Context, items []*types.TaxonomyItem) ([]*types.TaxonomyItem, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(items) == 0 {
		return []*types.TaxonomyItem{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *taxonomyRepo) List(dbc dbctx.Context, kind string) ([]*types.TaxonomyItem, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).Model(&types.TaxonomyItem{})
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	var out []*types.TaxonomyItem
	if err := q.Order("kind ASC, value ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *taxonomyRepo) SetStatus(dbc dbctx.Context, id int64, status string) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.TaxonomyItem{}).
		Where("id = ?", id).
		Update("status", status).Error
}
