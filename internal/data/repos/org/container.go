package org

import (
	"errors"
	"time"

	"gorm.io/gorm"

	types "github.com/PavithraSukumar6/kbn-dss-backend/internal/domain"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/dbctx"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/logger"
)

type ContainerRepo interface {
	Create(dbc dbctx.Context, containers []*types.Container) ([]*types.Container, error)
	GetByID(dbc dbctx.Context, id string) (*types.Container, error)
	GetByIDs(dbc dbctx.Context, ids []string) ([]*types.Container, error)
	GetByBarcode(dbc dbctx.Context, barcode string) (*types.Container, error)
	List(dbc dbctx.Context) ([]*types.Container, error)
	ListChildren(dbc dbctx.Context, parentID string) ([]*types.Container, error)
	UpdateFields(dbc dbctx.Context, id string, updates map[string]interface{}) error
	Delete(dbc dbctx.Context, id string) error
}

type containerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewContainerRepo(db *gorm.DB, baseLog *logger.Logger) ContainerRepo {
	return &containerRepo{db: db, log: baseLog.With("repo", "ContainerRepo")}
}

func (r *containerRepo) Create(dbc dbctx.Context, containers []*types.Container) ([]*types.Container, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(containers) == 0 {
		return []*types.Container{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&containers).Error; err != nil {
		return nil, err
	}
	return containers, nil
}

func (r *containerRepo) GetByID(dbc dbctx.Context, id string) (*types.Container, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == "" {
		return nil, nil
	}
	var c types.Container
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *containerRepo) GetByIDs(dbc dbctx.Context, ids []string) ([]*types.Container, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Container
	if len(ids) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *containerRepo) GetByBarcode(dbc dbctx.Context, barcode string) (*types.Container, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var c types.Container
	err := transaction.WithContext(dbc.Ctx).
		Where("barcode = ?", barcode).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *containerRepo) List(dbc dbctx.Context) ([]*types.Container, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Container
	if err := transaction.WithContext(dbc.Ctx).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *containerRepo) ListChildren(dbc dbctx.Context, parentID string) ([]*types.Container, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Container
	if err := transaction.WithContext(dbc.Ctx).
		Where("parent_id = ?", parentID).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *containerRepo) UpdateFields(dbc dbctx.Context, id string, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == "" || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Container{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *containerRepo) Delete(dbc dbctx.Context, id string) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Delete(&types.Container{}).Error
}

type TransferLogRepo interface {
	Create(dbc dbctx.Context, entries []*types.TransferLogEntry) ([]*types.TransferLogEntry, error)
	ListByContainerID(dbc dbctx.Context, containerID string) ([]*types.TransferLogEntry, error)
}

type transferLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTransferLogRepo(db *gorm.DB, baseLog *logger.Logger) TransferLogRepo {
	return &transferLogRepo{db: db, log: baseLog.With("repo", "TransferLogRepo")}
}

func (r *transferLogRepo) Create(dbc dbctx.Context, entries []*types.TransferLogEntry) ([]*types.TransferLogEntry, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(entries) == 0 {
		return []*types.TransferLogEntry{}, nil
	}
	now := time.Now()
	for _, e := range entries {
		if e.CreatedAt.IsZero() {
			e.CreatedAt = now
		}
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *transferLogRepo) ListByContainerID(dbc dbctx.Context, containerID string) ([]*types.TransferLogEntry, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.TransferLogEntry
	if err := transaction.WithContext(dbc.Ctx).
		Where("container_id = ?", containerID).
		Order("created_at DESC, id DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
