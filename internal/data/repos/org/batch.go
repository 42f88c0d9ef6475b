package org

import (
	"errors"

	"gorm.io/gorm"

	types "github.com/PavithraSukumar6/kbn-dss-backend/internal/domain"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/dbctx"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/logger"
)

type BatchRepo interface {
	Create(dbc dbctx.Context, batches []*types.Batch) ([]*types.Batch, error)
	GetByID(dbc dbctx.Context, id int64) (*types.Batch, error)
	List(dbc dbctx.Context, containerID string, qcStatus string) ([]*types.Batch, error)
	UpdateFields(dbc dbctx.Context, id int64, updates map[string]interface{}) error
	IncrementScanned(dbc dbctx.Context, id int64, pages int) error
}

type batchRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBatchRepo(db *gorm.DB, baseLog *logger.Logger) BatchRepo {
	return &batchRepo{db: db, log: baseLog.With("repo", "BatchRepo")}
}

func (r *batchRepo) Create(dbc dbctx.Context, batches []*types.Batch) ([]*types.Batch, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(batches) == 0 {
		return []*types.Batch{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

func (r *batchRepo) GetByID(dbc dbctx.Context, id int64) (*types.Batch, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var b types.Batch
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *batchRepo) List(dbc dbctx.Context, containerID string, qcStatus string) ([]*types.Batch, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).Model(&types.Batch{})
	if containerID != "" {
		q = q.Where("container_id = ?", containerID)
	}
	if qcStatus != "" {
		q = q.Where("qc_status = ?", qcStatus)
	}
	var out []*types.Batch
	if err := q.Order("start_time DESC, id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *batchRepo) UpdateFields(dbc dbctx.Context, id int64, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == 0 || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Batch{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *batchRepo) IncrementScanned(dbc dbctx.Context, id int64, pages int) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == 0 || pages == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Batch{}).
		Where("id = ?", id).
		Update("total_pages_scanned", gorm.Expr("total_pages_scanned + ?", pages)).Error
}
