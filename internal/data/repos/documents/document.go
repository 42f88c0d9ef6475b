package documents

import (
	"errors"
	"time"

	"gorm.io/gorm"

	types "github.com/PavithraSukumar6/kbn-dss-backend/internal/domain"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/dbctx"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/logger"
)

// DocumentFilter narrows List queries. Zero values are ignored. Scopes lets
// callers attach access-control predicates without the repo knowing about
// roles.
type DocumentFilter struct {
	Category       string
	Status         string
	ApprovalStatus string
	OCRStatus      string
	ContainerID    string
	BatchID        *int64
	UploaderID     string
	Search         string
	IncludeDeleted bool
	Limit          int
	Offset         int
	Scopes         []func(*gorm.DB) *gorm.DB
}

type DocumentRepo interface {
	Create(dbc dbctx.Context, docs []*types.Document) ([]*types.Document, error)
	GetByID(dbc dbctx.Context, id int64) (*types.Document, error)
	GetByIDs(dbc dbctx.Context, ids []int64) ([]*types.Document, error)
	GetByUID(dbc dbctx.Context, uid string) (*types.Document, error)
	FindByFingerprint(dbc dbctx.Context, fingerprint string) (*types.Document, error)
	List(dbc dbctx.Context, f DocumentFilter) ([]*types.Document, error)
	Count(dbc dbctx.Context, f DocumentFilter) (int64, error)
	UpdateFields(dbc dbctx.Context, id int64, updates map[string]interface{}) error
	Save(dbc dbctx.Context, doc *types.Document) error
	FullDeleteByID(dbc dbctx.Context, id int64) error
	ListForRetention(dbc dbctx.Context, category string, cutoff time.Time) ([]*types.Document, error)
	CountGroupedBy(dbc dbctx.Context, column string) (map[string]int64, error)
	AverageConfidence(dbc dbctx.Context) (float64, error)
}

type documentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDocumentRepo(db *gorm.DB, baseLog *logger.Logger) DocumentRepo {
	return &documentRepo{db: db, log: baseLog.With("repo", "DocumentRepo")}
}

func (r *documentRepo) Create(dbc dbctx.Context, docs []*types.Document) ([]*types.Document, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(docs) == 0 {
		return []*types.Document{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *documentRepo) GetByID(dbc dbctx.Context, id int64) (*types.Document, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var doc types.Document
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepo) GetByIDs(dbc dbctx.Context, ids []int64) ([]*types.Document, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Document
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

func (r *documentRepo) GetByUID(dbc dbctx.Context, uid string) (*types.Document, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var doc types.Document
	err := transaction.WithContext(dbc.Ctx).
		Where("uid = ?", uid).
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// FindByFingerprint returns the earliest non-deleted document carrying the
// fingerprint, or nil.
func (r *documentRepo) FindByFingerprint(dbc dbctx.Context, fingerprint string) (*types.Document, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if fingerprint == "" {
		return nil, nil
	}
	var doc types.Document
	err := transaction.WithContext(dbc.Ctx).
		Where("fingerprint = ?", fingerprint).
		Where("status NOT IN ?", []string{types.StatusSoftDeleted, types.StatusPendingDeletion}).
		Order("id ASC").
		First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func applyFilter(q *gorm.DB, f DocumentFilter) *gorm.DB {
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ApprovalStatus != "" {
		q = q.Where("approval_status = ?", f.ApprovalStatus)
	}
	if f.OCRStatus != "" {
		q = q.Where("ocr_status = ?", f.OCRStatus)
	}
	if f.ContainerID != "" {
		q = q.Where("container_id = ?", f.ContainerID)
	}
	if f.BatchID != nil {
		q = q.Where("batch_id = ?", *f.BatchID)
	}
	if f.UploaderID != "" {
		q = q.Where("uploader_id = ?", f.UploaderID)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		q = q.Where("filename LIKE ? OR content LIKE ? OR uid LIKE ?", like, like, like)
	}
	if !f.IncludeDeleted {
		q = q.Where("status NOT IN ?", []string{types.StatusSoftDeleted, types.StatusPendingDeletion})
	}
	for _, scope := range f.Scopes {
		q = scope(q)
	}
	return q
}

func (r *documentRepo) List(dbc dbctx.Context, f DocumentFilter) ([]*types.Document, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := applyFilter(transaction.WithContext(dbc.Ctx).Model(&types.Document{}), f).
		Order("upload_date DESC, id DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	var out []*types.Document
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *documentRepo) Count(dbc dbctx.Context, f DocumentFilter) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	q := applyFilter(transaction.WithContext(dbc.Ctx).Model(&types.Document{}), f)
	if err := q.Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *documentRepo) UpdateFields(dbc dbctx.Context, id int64, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == 0 {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Document{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *documentRepo) Save(dbc dbctx.Context, doc *types.Document) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).Save(doc).Error
}

func (r *documentRepo) FullDeleteByID(dbc dbctx.Context, id int64) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Delete(&types.Document{}).Error
}

// ListForRetention returns documents of a category uploaded before the cutoff
// that the sweep may still act on.
func (r *documentRepo) ListForRetention(dbc dbctx.Context, category string, cutoff time.Time) ([]*types.Document, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Document
	err := transaction.WithContext(dbc.Ctx).
		Where("category = ?", category).
		Where("upload_date < ?", cutoff).
		Where("status NOT IN ?", []string{types.StatusArchived, types.StatusSoftDeleted, types.StatusPendingDeletion}).
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

type groupCount struct {
	Key   string
	Count int64
}

// CountGroupedBy counts non-deleted documents grouped by one column. Only
// columns the analytics surface exposes are accepted.
func (r *documentRepo) CountGroupedBy(dbc dbctx.Context, column string) (map[string]int64, error) {
	switch column {
	case "category", "status", "ocr_status", "approval_status", "container_id":
	default:
		return nil, errors.New("unsupported group column: " + column)
	}
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []groupCount
	err := transaction.WithContext(dbc.Ctx).
		Model(&types.Document{}).
		Select(column+" AS key, COUNT(*) AS count").
		Where("status NOT IN ?", []string{types.StatusSoftDeleted, types.StatusPendingDeletion}).
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Count
	}
	return out, nil
}

func (r *documentRepo) AverageConfidence(dbc dbctx.Context) (float64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var avg *float64
	err := transaction.WithContext(dbc.Ctx).
		Model(&types.Document{}).
		Select("AVG(confidence)").
		Where("ocr_status IN ?", []string{types.OCRStatusCompleted, types.OCRStatusCompletedNoOCR}).
		Where("status NOT IN ?", []string{types.StatusSoftDeleted, types.StatusPendingDeletion}).
		Scan(&avg).Error
	if err != nil {
		return 0, err
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}
