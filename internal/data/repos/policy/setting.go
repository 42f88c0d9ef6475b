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

type SettingRepo interface {
	Get(dbc dbctx.Context, key string) (*types.Setting, error)
	All(dbc dbctx.Context) ([]*types.Setting, error)
	Upsert(dbc dbctx.Context, key, value, updatedBy string) (*types.Setting, error)
}

type settingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSettingRepo(db *gorm.DB, baseLog *logger.Logger) SettingRepo {
	return &settingRepo{db: db, log: baseLog.With("repo", "SettingRepo")}
}

func (r *settingRepo) Get(dbc dbctx.Context, key string) (*types.Setting, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var s types.Setting
	err := transaction.WithContext(dbc.Ctx).
		Where("key = ?", key).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *settingRepo) All(dbc dbctx.Context) ([]*types.Setting, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Setting
	if err := transaction.WithContext(dbc.Ctx).
		Order("key ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *settingRepo) Upsert(dbc dbctx.Context, key, value, updatedBy string) (*types.Setting, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	s := &types.Setting{
		Key:       key,
		Value:     value,
		UpdatedBy: updatedBy,
		UpdatedAt: time.Now(),
	}
	err := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_by", "updated_at"}),
		}).
		Create(s).Error
	if err != nil {
		return nil, err
	}
	return s, nil
}
