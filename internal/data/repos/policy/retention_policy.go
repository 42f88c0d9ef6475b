package policy

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/PavithraSukumar6/kbn-dss-backend/internal/domain"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/dbctx"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/logger"
)

type RetentionPolicyRepo interface {
	Upsert(dbc dbctx.Context, policy *types.RetentionPolicy) (*types.RetentionPolicy, error)
	List(dbc dbctx.Context) ([]*types.RetentionPolicy, error)
	GetByDocumentType(dbc dbctx.Context, documentType string) (*types.RetentionPolicy, error)
	Delete(dbc dbctx.Context, id int64) error
}

type retentionPolicyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRetentionPolicyRepo(db *gorm.DB, baseLog *logger.Logger) RetentionPolicyRepo {
	return &retentionPolicyRepo{db: db, log: baseLog.With("repo", "RetentionPolicyRepo")}
}

// Upsert inserts or replaces the single policy row for a document type.
func (r *retentionPolicyRepo) Upsert(dbc dbctx.Context, policy *types.RetentionPolicy) (*types.RetentionPolicy, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	policy.UpdatedAt = time.Now()
	err := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "document_type"}},
			DoUpdates: clause.AssignmentColumns([]string{"retention_years", "action", "updated_at"}),
		}).
		Create(policy).Error
	if err != nil {
		return nil, err
	}
	return policy, nil
}

func (r *retentionPolicyRepo) List(dbc dbctx.Context) ([]*types.RetentionPolicy, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.RetentionPolicy
	if err := transaction.WithContext(dbc.Ctx).
		Order("document_type ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *retentionPolicyRepo) GetByDocumentType(dbc dbctx.Context, documentType string) (*types.RetentionPolicy, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var p types.RetentionPolicy
	err := transaction.WithContext(dbc.Ctx).
		Where("document_type = ?", documentType).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *retentionPolicyRepo) Delete(dbc dbctx.Context, id int64) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Delete(&types.RetentionPolicy{}).Error
}
