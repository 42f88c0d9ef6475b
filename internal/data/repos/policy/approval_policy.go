package policy

import (
	"gorm.io/gorm"

	types "github.com/PavithraSukumar6/kbn-dss-backend/internal/domain"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/dbctx"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/logger"
)

type ApprovalPolicyRepo interface {
	Create(dbc dbctx.Context, policies []*types.ApprovalPolicy) ([]*types.ApprovalPolicy, error)
	List(dbc dbctx.Context) ([]*types.ApprovalPolicy, error)
	ListActive(dbc dbctx.Context) ([]*types.ApprovalPolicy, error)
	UpdateFields(dbc dbctx.Context, id int64, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id int64) error
}

type approvalPolicyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewApprovalPolicyRepo(db *gorm.DB, baseLog *logger.Logger) ApprovalPolicyRepo {
	return &approvalPolicyRepo{db: db, log: baseLog.With("repo", "ApprovalPolicyRepo")}
}

func (r *approvalPolicyRepo) Create(dbc dbctx.Context, policies []*types.ApprovalPolicy) ([]*types.ApprovalPolicy, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(policies) == 0 {
		return []*types.ApprovalPolicy{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&policies).Error; err != nil {
		return nil, err
	}
	return policies, nil
}

func (r *approvalPolicyRepo) List(dbc dbctx.Context) ([]*types.ApprovalPolicy, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ApprovalPolicy
	if err := transaction.WithContext(dbc.Ctx).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *approvalPolicyRepo) ListActive(dbc dbctx.Context) ([]*types.ApprovalPolicy, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.ApprovalPolicy
	if err := transaction.WithContext(dbc.Ctx).
		Where("is_active = ?", true).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *approvalPolicyRepo) UpdateFields(dbc dbctx.Context, id int64, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == 0 || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.ApprovalPolicy{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *approvalPolicyRepo) Delete(dbc dbctx.Context, id int64) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Delete(&types.ApprovalPolicy{}).Error
}
