package policy

import (
	"gorm.io/gorm"

	types "github.com/PavithraSukumar6/kbn-dss-backend/internal/domain"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/dbctx"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/logger"
)

type AccessPolicyRepo interface {
	Create(dbc dbctx.Context, policies []*types.AccessPolicy) ([]*types.AccessPolicy, error)
	List(dbc dbctx.Context) ([]*types.AccessPolicy, error)
	ListByRole(dbc dbctx.Context, role string) ([]*types.AccessPolicy, error)
	UpdateFields(dbc dbctx.Context, id int64, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id int64) error
}

type accessPolicyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAccessPolicyRepo(db *gorm.DB, baseLog *logger.Logger) AccessPolicyRepo {
	return &accessPolicyRepo{db: db, log: baseLog.With("repo", "AccessPolicyRepo")}
}

func (r *accessPolicyRepo) Create(dbc dbctx.Context, policies []*types.AccessPolicy) ([]*types.AccessPolicy, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(policies) == 0 {
		return []*types.AccessPolicy{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&policies).Error; err != nil {
		return nil, err
	}
	return policies, nil
}

func (r *accessPolicyRepo) List(dbc dbctx.Context) ([]*types.AccessPolicy, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.AccessPolicy
	if err := transaction.WithContext(dbc.Ctx).
		Order("role ASC, department ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListByRole returns all rows for a role, department-scoped and global alike.
// The evaluator picks the most specific match.
func (r *accessPolicyRepo) ListByRole(dbc dbctx.Context, role string) ([]*types.AccessPolicy, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.AccessPolicy
	if err := transaction.WithContext(dbc.Ctx).
		Where("role = ?", role).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *accessPolicyRepo) UpdateFields(dbc dbctx.Context, id int64, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == 0 || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.AccessPolicy{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *accessPolicyRepo) Delete(dbc dbctx.Context, id int64) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Delete(&types.AccessPolicy{}).Error
}
