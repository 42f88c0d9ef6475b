package documents

import (
	"time"

	"gorm.io/gorm"

	types "github.com/PavithraSukumar6/kbn-dss-backend/internal/domain"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/dbctx"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/logger"
)

type DocumentVersionRepo interface {
	Create(dbc dbctx.Context, versions []*types.DocumentVersion) ([]*types.DocumentVersion, error)
	ListByDocumentID(dbc dbctx.Context, documentID int64) ([]*types.DocumentVersion, error)
	GetByID(dbc dbctx.Context, id int64) (*types.DocumentVersion, error)
	DeleteByDocumentID(dbc dbctx.Context, documentID int64) error
	DeleteOlderThan(dbc dbctx.Context, cutoff time.Time) (int64, error)
}

type documentVersionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDocumentVersionRepo(db *gorm.DB, baseLog *logger.Logger) DocumentVersionRepo {
	return &documentVersionRepo{db: db, log: baseLog.With("repo", "DocumentVersionRepo")}
}

func (r *documentVersionRepo) Create(dbc dbctx.Context, versions []*types.DocumentVersion) ([]*types.DocumentVersion, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(versions) == 0 {
		return []*types.DocumentVersion{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&versions).Error; err != nil {
		return nil, err
	}
	return versions, nil
}

func (r *documentVersionRepo) ListByDocumentID(dbc dbctx.Context, documentID int64) ([]*types.DocumentVersion, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.DocumentVersion
	if err := transaction.WithContext(dbc.Ctx).
		Where("document_id = ?", documentID).
		Order("created_at DESC, id DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *documentVersionRepo) GetByID(dbc dbctx.Context, id int64) (*types.DocumentVersion, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var v types.DocumentVersion
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&v).Error
	if err != nil {
		return nil, err
	}
	if v.ID == 0 {
		return nil, nil
	}
	return &v, nil
}

func (r *documentVersionRepo) DeleteByDocumentID(dbc dbctx.Context, documentID int64) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Where("document_id = ?", documentID).
		Delete(&types.DocumentVersion{}).Error
}

// DeleteOlderThan prunes snapshots past the version retention horizon and
// returns how many were removed.
func (r *documentVersionRepo) DeleteOlderThan(dbc dbctx.Context, cutoff time.Time) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Where("created_at < ?", cutoff).
		Delete(&types.DocumentVersion{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
