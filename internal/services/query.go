package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/PavithraSukumar6/kbn-dss-backend/internal/data/repos"
	types "github.com/PavithraSukumar6/kbn-dss-backend/internal/domain"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/dbctx"
	apperrors "github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/errors"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/logger"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/search"
)

// ListQuery carries the listing parameters after HTTP binding.
type ListQuery struct {
	Category       string
	Status         string
	ApprovalStatus string
	OCRStatus      string
	ContainerID    string
	BatchID        *int64
	UploaderID     string
	Search         string
	FavoritesOnly  bool
	IncludeDeleted bool
	Limit          int
	Offset         int
}

// ListResult pairs a page of documents with the unpaged visible total.
type ListResult struct {
	Documents []*types.Document `json:"documents"`
	Total     int64             `json:"total"`
}

// QueryService is the read side: every document it returns has already
// passed the caller's visibility evaluation.
type QueryService interface {
	List(ctx context.Context, actor *types.User, q ListQuery) (*ListResult, error)
	Get(ctx context.Context, actor *types.User, id int64) (*types.Document, error)
	GetByUID(ctx context.Context, actor *types.User, uid string) (*types.Document, error)
	Search(ctx context.Context, actor *types.User, query string, limit int) ([]*types.Document, error)
	ExportCSV(ctx context.Context, actor *types.User, q ListQuery, w io.Writer) (int, error)
}

type queryService struct {
	db         *gorm.DB
	log        *logger.Logger
	documents  repos.DocumentRepo
	containers repos.ContainerRepo
	favorites  repos.FavoriteRepo
	access     AccessService
	index      search.Index
	audit      AuditService
}

func NewQueryService(
	db *gorm.DB,
	baseLog *logger.Logger,
	documents repos.DocumentRepo,
	containers repos.ContainerRepo,
	favorites repos.FavoriteRepo,
	access AccessService,
	index search.Index,
	audit AuditService,
) QueryService {
	return &queryService{
		db:         db,
		log:        baseLog.With("service", "QueryService"),
		documents:  documents,
		containers: containers,
		favorites:  favorites,
		access:     access,
		index:      index,
		audit:      audit,
	}
}

func (s *queryService) buildFilter(dbc dbctx.Context, actor *types.User, q ListQuery) (repos.DocumentFilter, error) {
	scopes, err := s.access.ListScopes(dbc, actor)
	if err != nil {
		return repos.DocumentFilter{}, fmt.Errorf("compile visibility scopes: %w", err)
	}
	filter := repos.DocumentFilter{
		Category:       q.Category,
		Status:         q.Status,
		ApprovalStatus: q.ApprovalStatus,
		OCRStatus:      q.OCRStatus,
		ContainerID:    q.ContainerID,
		BatchID:        q.BatchID,
		UploaderID:     q.UploaderID,
		Search:         q.Search,
		IncludeDeleted: q.IncludeDeleted && actor.Role == types.RoleAdmin,
		Limit:          q.Limit,
		Offset:         q.Offset,
		Scopes:         scopes,
	}

	if q.FavoritesOnly {
		ids, err := s.favorites.ListDocumentIDs(dbc, actor.ID)
		if err != nil {
			return repos.DocumentFilter{}, err
		}
		if len(ids) == 0 {
			// force an empty page rather than dropping the filter
			ids = []int64{-1}
		}
		filter.Scopes = append(filter.Scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("documents.id IN ?", ids)
		})
	}
	return filter, nil
}

func (s *queryService) List(ctx context.Context, actor *types.User, q ListQuery) (*ListResult, error) {
	dbc := dbctx.Context{Ctx: ctx}
	filter, err := s.buildFilter(dbc, actor, q)
	if err != nil {
		return nil, err
	}
	docs, err := s.documents.List(dbc, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.documents.Count(dbc, filter)
	if err != nil {
		return nil, err
	}
	return &ListResult{Documents: docs, Total: total}, nil
}

func (s *queryService) Get(ctx context.Context, actor *types.User, id int64) (*types.Document, error) {
	dbc := dbctx.Context{Ctx: ctx}
	doc, err := s.documents.GetByID(dbc, id)
	if err != nil {
		return nil, err
	}
	return s.checkAndAudit(dbc, actor, doc, strconv.FormatInt(id, 10))
}

func (s *queryService) GetByUID(ctx context.Context, actor *types.User, uid string) (*types.Document, error) {
	dbc := dbctx.Context{Ctx: ctx}
	doc, err := s.documents.GetByUID(dbc, uid)
	if err != nil {
		return nil, err
	}
	return s.checkAndAudit(dbc, actor, doc, uid)
}

// checkAndAudit runs the visibility evaluation; reads above Internal leave a
// VIEW_RESTRICTED trail.
func (s *queryService) checkAndAudit(dbc dbctx.Context, actor *types.User, doc *types.Document, ref string) (*types.Document, error) {
	if doc == nil {
		return nil, fmt.Errorf("document %s: %w", ref, apperrors.ErrNotFound)
	}
	ok, err := s.access.Visible(dbc, actor, doc)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("document %s: %w", ref, apperrors.ErrPermissionDenied)
	}

	var container *types.Container
	if doc.ContainerID != "" {
		container, _ = s.containers.GetByID(dbc, doc.ContainerID)
	}
	level := types.EffectiveConfidentiality(doc, container)
	if types.ConfidentialityRank(level) > types.ConfidentialityRank(types.ConfidentialityInternal) {
		s.audit.Record(dbc, AuditEvent{
			EntityType:  "Document",
			EntityID:    doc.ID,
			Action:      "VIEW_RESTRICTED",
			Details:     level,
			Scope:       types.AuditScopeSecurity,
			PerformedBy: actor.ID,
		})
	}
	return doc, nil
}

// Search intersects the full-text index with the caller's visible set. Empty
// results against a non-empty query are themselves recorded: a user probing
// for documents they cannot see is a governance signal.
func (s *queryService) Search(ctx context.Context, actor *types.User, query string, limit int) ([]*types.Document, error) {
	dbc := dbctx.Context{Ctx: ctx}
	if query == "" {
		return nil, fmt.Errorf("search query required: %w", apperrors.ErrInvalidArgument)
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	ids, err := s.index.Search(dbc, query, limit*4)
	if err != nil {
		return nil, fmt.Errorf("full-text search: %w", err)
	}

	var docs []*types.Document
	if len(ids) > 0 {
		scopes, err := s.access.ListScopes(dbc, actor)
		if err != nil {
			return nil, err
		}
		scopes = append(scopes, func(db *gorm.DB) *gorm.DB {
			return db.Where("documents.id IN ?", ids)
		})
		all, err := s.documents.List(dbc, repos.DocumentFilter{Scopes: scopes, Limit: len(ids)})
		if err != nil {
			return nil, err
		}
		byID := make(map[int64]*types.Document, len(all))
		for _, d := range all {
			byID[d.ID] = d
		}
		// preserve index rank order
		for _, id := range ids {
			if d, ok := byID[id]; ok {
				docs = append(docs, d)
				if len(docs) >= limit {
					break
				}
			}
		}
	}

	if len(docs) == 0 {
		s.audit.Record(dbc, AuditEvent{
			EntityType:  "Search",
			Action:      "SEARCH_NO_RESULTS",
			Details:     query,
			Scope:       types.AuditScopeSecurity,
			PerformedBy: actor.ID,
		})
	}
	return docs, nil
}

// ExportCSV streams the caller's visible listing as CSV rows and returns the
// row count. Content is deliberately excluded from the export.
func (s *queryService) ExportCSV(ctx context.Context, actor *types.User, q ListQuery, w io.Writer) (int, error) {
	dbc := dbctx.Context{Ctx: ctx}
	q.Limit = 0
	q.Offset = 0
	filter, err := s.buildFilter(dbc, actor, q)
	if err != nil {
		return 0, err
	}
	docs, err := s.documents.List(dbc, filter)
	if err != nil {
		return 0, err
	}

	cw := csv.NewWriter(w)
	header := []string{
		"id", "uid", "filename", "category", "status", "approval_status",
		"ocr_status", "confidence", "container_id", "uploader_id", "upload_date",
	}
	if err := cw.Write(header); err != nil {
		return 0, err
	}
	for _, d := range docs {
		row := []string{
			strconv.FormatInt(d.ID, 10),
			d.UID,
			d.Filename,
			d.Category,
			d.Status,
			d.ApprovalStatus,
			d.OCRStatus,
			strconv.FormatFloat(d.Confidence, 'f', 1, 64),
			d.ContainerID,
			d.UploaderID,
			d.UploadDate.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return 0, err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, err
	}

	s.audit.Record(dbc, AuditEvent{
		EntityType:  "Document",
		Action:      "EXPORT",
		Details:     fmt.Sprintf("%d rows", len(docs)),
		PerformedBy: actor.ID,
	})
	return len(docs), nil
}
