package policy

import (
	"errors"
	"time"

	"gorm.io/gorm"

	types "github.com/PavithraSukumar6/kbn-dss-backend/internal/domain"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/dbctx"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/logger"
)

type AccessRequestRepo interface {
	Create(dbc dbctx.Context, requests []*types.AccessRequest) ([]*types.AccessRequest, error)
	GetByID(dbc dbctx.Context, id int64) (*types.AccessRequest, error)
	ListByStatus(dbc dbctx.Context, status string) ([]*types.AccessRequest, error)
	ListByUser(dbc dbctx.Context, userID string) ([]*types.AccessRequest, error)
	FindGrant(dbc dbctx.Context, userID string, documentID int64, at time.Time) (*types.AccessRequest, error)
	HasPending(dbc dbctx.Context, userID string, documentID int64) (bool, error)
	UpdateFields(dbc dbctx.Context, id int64, updates map[string]interface{}) error
}

type accessRequestRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAccessRequestRepo(db *gorm.DB, baseLog *logger.Logger) AccessRequestRepo {
	return &accessRequestRepo{db: db, log: baseLog.With("repo", "AccessRequestRepo")}
}

func (r *accessRequestRepo) Create(dbc dbctx.Context, requests []*types.AccessRequest) ([]*types.AccessRequest, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(requests) == 0 {
		return []*types.AccessRequest{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *accessRequestRepo) GetByID(dbc dbctx.Context, id int64) (*types.AccessRequest, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var req types.AccessRequest
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *accessRequestRepo) ListByStatus(dbc dbctx.Context, status string) ([]*types.AccessRequest, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).Model(&types.AccessRequest{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []*types.AccessRequest
	if err := q.Order("created_at DESC, id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *accessRequestRepo) ListByUser(dbc dbctx.Context, userID string) ([]*types.AccessRequest, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.AccessRequest
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// FindGrant returns an approved, unexpired request for the (user, document)
// pair, or nil.
func (r *accessRequestRepo) FindGrant(dbc dbctx.Context, userID string, documentID int64, at time.Time) (*types.AccessRequest, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var req types.AccessRequest
	err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ? AND document_id = ? AND status = ?", userID, documentID, types.AccessRequestApproved).
		Where("expires_at IS NULL OR expires_at > ?", at).
		Order("id DESC").
		First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *accessRequestRepo) HasPending(dbc dbctx.Context, userID string, documentID int64) (bool, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	err := transaction.WithContext(dbc.Ctx).
		Model(&types.AccessRequest{}).
		Where("user_id = ? AND document_id = ? AND status = ?", userID, documentID, types.AccessRequestPending).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *accessRequestRepo) UpdateFields(dbc dbctx.Context, id int64, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == 0 || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.AccessRequest{}).
		Where("id = ?", id).
		Updates(updates).Error
}
