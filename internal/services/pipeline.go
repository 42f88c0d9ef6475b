package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/PavithraSukumar6/kbn-dss-backend/internal/data/repos"
	types "github.com/PavithraSukumar6/kbn-dss-backend/internal/domain"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/dbctx"
	apperrors "github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/errors"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/logger"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/platform/blob"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/platform/ocr"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/search"
)

const minUsableTextLen = 10

// PipelineService runs one document through OCR, classification, extraction,
// validation, routing and the post-extraction decision. Per-document failures
// are contained: they land on the document as Failed, never on the caller.
type PipelineService interface {
	Process(ctx context.Context, documentID int64) error
}

type pipelineService struct {
	db           *gorm.DB
	log          *logger.Logger
	docRepo      repos.DocumentRepo
	approvals    repos.ApprovalPolicyRepo
	containers   repos.ContainerRepo
	audit        AuditService
	settings     SettingsService
	classifier   ClassifierService
	router       RouterService
	engine       ocr.Engine
	store        blob.Store
	index        search.Index

	// Bounds concurrent OCR calls across the worker pool.
	sem *semaphore.Weighted

	// Per-document locks so concurrent rescans of one id serialize instead of
	// racing last-writer-wins. Entries are refcounted and evicted once the
	// last run for a document releases.
	mu    sync.Mutex
	locks map[int64]*docLock
}

type docLock struct {
	sync.Mutex
	refs int
}

func NewPipelineService(
	db *gorm.DB,
	baseLog *logger.Logger,
	docRepo repos.DocumentRepo,
	approvals repos.ApprovalPolicyRepo,
	containers repos.ContainerRepo,
	audit AuditService,
	settings SettingsService,
	classifier ClassifierService,
	router RouterService,
	engine ocr.Engine,
	store blob.Store,
	index search.Index,
	maxConcurrentOCR int,
) PipelineService {
	if maxConcurrentOCR <= 0 {
		maxConcurrentOCR = 4
	}
	return &pipelineService{
		db:         db,
		log:        baseLog.With("service", "PipelineService"),
		docRepo:    docRepo,
		approvals:  approvals,
		containers: containers,
		audit:      audit,
		settings:   settings,
		classifier: classifier,
		router:     router,
		engine:     engine,
		store:      store,
		index:      index,
		sem:        semaphore.NewWeighted(int64(maxConcurrentOCR)),
		locks:      make(map[int64]*docLock),
	}
}

func (s *pipelineService) acquire(documentID int64) *docLock {
	s.mu.Lock()
	l, ok := s.locks[documentID]
	if !ok {
		l = &docLock{}
		s.locks[documentID] = l
	}
	l.refs++
	s.mu.Unlock()
	l.Lock()
	return l
}

func (s *pipelineService) release(documentID int64, l *docLock) {
	l.Unlock()
	s.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(s.locks, documentID)
	}
	s.mu.Unlock()
}

func (s *pipelineService) Process(ctx context.Context, documentID int64) error {
	lock := s.acquire(documentID)
	defer s.release(documentID, lock)

	dbc := dbctx.Context{Ctx: ctx}
	doc, err := s.docRepo.GetByID(dbc, documentID)
	if err != nil {
		return fmt.Errorf("load document %d: %w", documentID, err)
	}
	if doc == nil {
		return fmt.Errorf("document %d: %w", documentID, apperrors.ErrNotFound)
	}

	if err := s.run(ctx, doc); err != nil {
		// Contained: the failure becomes document state.
		s.log.Warn("pipeline failed", "document_id", doc.ID, "error", err)
		_ = s.docRepo.UpdateFields(dbc, doc.ID, map[string]interface{}{
			"ocr_status": types.OCRStatusFailed,
			"content":    err.Error(),
			"confidence": 0,
		})
		s.audit.Record(dbc, AuditEvent{
			EntityType:  "Document",
			EntityID:    doc.ID,
			Action:      "PROCESS_FAILED",
			Details:     err.Error(),
			PerformedBy: "System",
		})
	}
	return nil
}

type docMeta map[string]string

func decodeMeta(raw datatypes.JSON) docMeta {
	meta := docMeta{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &meta)
	}
	return meta
}

func (s *pipelineService) run(ctx context.Context, doc *types.Document) error {
	dbc := dbctx.Context{Ctx: ctx}
	meta := decodeMeta(doc.Metadata)
	manualCategory := meta["manual_category"]

	text, ocrConfidence, pageCount, ocrErr := s.extractText(ctx, doc.StorageKey)
	if ocrErr != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrProcessingFailed, ocrErr)
	}

	var (
		category   string
		confidence float64
		ocrStatus  string
		content    = text
	)

	if len(strings.TrimSpace(text)) < minUsableTextLen {
		// No usable text layer. Fall back to the filename.
		suggested, ok := s.classifier.SuggestFromFilename(doc.Filename)
		if manualCategory != "" {
			suggested, ok = manualCategory, true
		}
		if !ok {
			return fmt.Errorf("%w: no text extracted and filename suggests nothing", apperrors.ErrProcessingFailed)
		}
		category = suggested
		confidence = 50
		ocrStatus = types.OCRStatusCompletedNoOCR
		content = "OCR_SKIPPED"
	} else {
		category, confidence = s.classifier.Classify(text)
		if ocrConfidence > 0 && ocrConfidence < confidence {
			confidence = ocrConfidence
		}
		ocrStatus = types.OCRStatusCompleted
	}

	// A manual pin always wins; extraction still runs against it.
	if manualCategory != "" {
		category = manualCategory
		confidence = 100
	}

	// Manual and user-supplied fields override extraction; the stub metadata
	// carries nothing else.
	extracted := Extract(category, content)
	for k, v := range meta {
		extracted[k] = v
	}

	if findings := ValidateMetadata(category, extracted); len(findings) > 0 {
		parts := make([]string, len(findings))
		for i, f := range findings {
			parts[i] = f.String()
		}
		detail := strings.Join(parts, "; ")
		s.audit.Record(dbc, AuditEvent{
			EntityType:  "Document",
			EntityID:    doc.ID,
			Action:      "VALIDATION_FINDINGS",
			Details:     detail,
			PerformedBy: "System",
		})
		strict, err := s.settings.ValidationStrict(ctx)
		if err != nil {
			return fmt.Errorf("%w: validation strictness unavailable: %v", apperrors.ErrProcessingFailed, err)
		}
		if strict {
			return fmt.Errorf("%w: validation failed: %s", apperrors.ErrProcessingFailed, detail)
		}
	}

	rawMeta, err := json.Marshal(extracted)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	updates := map[string]interface{}{
		"ocr_status":    ocrStatus,
		"content":       content,
		"confidence":    confidence,
		"category":      category,
		"metadata":      datatypes.JSON(rawMeta),
		"template_type": category + " Template",
	}
	if pageCount > 0 {
		updates["page_count"] = pageCount
	}
	if err := s.docRepo.UpdateFields(dbc, doc.ID, updates); err != nil {
		return fmt.Errorf("persist extraction: %w", err)
	}

	if target, err := s.router.Route(dbc, content); err != nil {
		return fmt.Errorf("auto-route: %w", err)
	} else if target != "" && target != doc.ContainerID {
		if err := s.docRepo.UpdateFields(dbc, doc.ID, map[string]interface{}{"container_id": target}); err != nil {
			return fmt.Errorf("apply route: %w", err)
		}
		s.audit.Record(dbc, AuditEvent{
			EntityType:  "Document",
			EntityID:    doc.ID,
			Action:      "AUTO_ROUTE",
			Details:     fmt.Sprintf("automatically routed to %s based on keywords", target),
			Before:      doc.ContainerID,
			After:       target,
			PerformedBy: "System",
		})
		doc.ContainerID = target
	}

	doc.Category = category
	doc.Confidence = confidence
	if err := s.decide(dbc, doc); err != nil {
		return err
	}

	if s.index != nil {
		if err := s.index.IndexDocument(dbc, doc.ID, content); err != nil {
			s.log.Warn("index upsert failed", "document_id", doc.ID, "error", err)
		}
	}
	return nil
}

// extractText downloads the stored artifact and runs the OCR engine under the
// concurrency bound. A missing engine is "unavailable", not an error: the
// caller takes the no-OCR path.
func (s *pipelineService) extractText(ctx context.Context, storageKey string) (string, float64, int, error) {
	if s.engine == nil || storageKey == "" {
		return "", 0, 0, nil
	}

	rc, err := s.store.Download(ctx, storageKey)
	if err != nil {
		return "", 0, 0, fmt.Errorf("fetch artifact: %w", err)
	}
	data, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		return "", 0, 0, fmt.Errorf("read artifact: %w", err)
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return "", 0, 0, err
	}
	defer s.sem.Release(1)

	res, err := s.engine.Extract(ctx, data, "")
	if err != nil {
		return "", 0, 0, fmt.Errorf("ocr: %w", err)
	}
	return res.Text, res.Confidence, res.PageCount, nil
}

// decide applies the post-extraction rule: approval policy match forces the
// manual gate; high confidence on a low-risk category fast-tracks to
// publication; everything else queues for rigorous QC.
func (s *pipelineService) decide(dbc dbctx.Context, doc *types.Document) error {
	var container *types.Container
	if doc.ContainerID != "" {
		c, err := s.containers.GetByID(dbc, doc.ContainerID)
		if err != nil {
			return fmt.Errorf("load container: %w", err)
		}
		container = c
	}
	effective := types.EffectiveConfidentiality(doc, container)

	policies, err := s.approvals.ListActive(dbc)
	if err != nil {
		return fmt.Errorf("load approval policies: %w", err)
	}
	for _, p := range policies {
		if p.Matches(doc.Category, effective) {
			if err := s.docRepo.UpdateFields(dbc, doc.ID, map[string]interface{}{
				"approval_status": types.ApprovalPending,
			}); err != nil {
				return fmt.Errorf("queue for approval: %w", err)
			}
			s.audit.Record(dbc, AuditEvent{
				EntityType:  "Document",
				EntityID:    doc.ID,
				Action:      "APPROVAL_REQUIRED",
				Details:     fmt.Sprintf("approval policy %s=%s matched", p.MatchType, p.MatchValue),
				PerformedBy: "System",
			})
			return nil
		}
	}

	if doc.Confidence > 90 && types.RiskLevel(doc.Category) == types.RiskLow {
		now := time.Now()
		if err := s.docRepo.UpdateFields(dbc, doc.ID, map[string]interface{}{
			"qc_state":        types.QCStatePassed,
			"status":          types.StatusPublished,
			"is_published":    true,
			"approval_status": types.ApprovalApproved,
			"updated_at":      now,
		}); err != nil {
			return fmt.Errorf("fast-track publish: %w", err)
		}
		s.audit.Record(dbc, AuditEvent{
			EntityType:  "Document",
			EntityID:    doc.ID,
			Action:      "AUTO_PUBLISH",
			Details:     fmt.Sprintf("fast-tracked at confidence %.0f, risk %s", doc.Confidence, types.RiskLevel(doc.Category)),
			PerformedBy: "System",
		})
		return nil
	}

	if err := s.docRepo.UpdateFields(dbc, doc.ID, map[string]interface{}{
		"qc_state": types.QCStateRigorous,
	}); err != nil {
		return fmt.Errorf("queue for qc: %w", err)
	}
	s.audit.Record(dbc, AuditEvent{
		EntityType:  "Document",
		EntityID:    doc.ID,
		Action:      "QC_QUEUED",
		Details:     fmt.Sprintf("queued for rigorous QC at confidence %.0f, risk %s", doc.Confidence, types.RiskLevel(doc.Category)),
		PerformedBy: "System",
	})
	return nil
}
