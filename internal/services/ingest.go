package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/PavithraSukumar6/kbn-dss-backend/internal/data/repos"
	types "github.com/PavithraSukumar6/kbn-dss-backend/internal/domain"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/dbctx"
	apperrors "github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/errors"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/logger"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/platform/blob"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/platform/split"
)

// IngestInput is one uploaded file plus its manual overrides.
type IngestInput struct {
	Filename             string
	Data                 []byte
	ContainerID          string
	BatchID              *int64
	Category             string
	ConfidentialityLevel string
	Tags                 string
	Metadata             map[string]string
}

// DuplicateError carries the identity of the already-ingested document.
type DuplicateError struct {
	Existing *types.Document
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate of document %d (%s), uploaded %s by %s",
		e.Existing.ID, e.Existing.Filename,
		e.Existing.UploadDate.Format("2006-01-02"), e.Existing.UploaderID)
}

func (e *DuplicateError) Unwrap() error { return apperrors.ErrConflict }

// IngestService turns an uploaded file into per-page document stubs and
// queues one pipeline job per stub. It returns as soon as the stubs exist.
type IngestService interface {
	Ingest(ctx context.Context, actor *types.User, in IngestInput) ([]*types.Document, error)
}

type ingestService struct {
	db          *gorm.DB
	log         *logger.Logger
	docRepo     repos.DocumentRepo
	jobRepo     repos.JobRunRepo
	containers  repos.ContainerRepo
	batches     repos.BatchRepo
	audit       AuditService
	store       blob.Store
	splitter    split.Splitter
}

func NewIngestService(
	db *gorm.DB,
	baseLog *logger.Logger,
	docRepo repos.DocumentRepo,
	jobRepo repos.JobRunRepo,
	containers repos.ContainerRepo,
	batches repos.BatchRepo,
	audit AuditService,
	store blob.Store,
	splitter split.Splitter,
) IngestService {
	return &ingestService{
		db:         db,
		log:        baseLog.With("service", "IngestService"),
		docRepo:    docRepo,
		jobRepo:    jobRepo,
		containers: containers,
		batches:    batches,
		audit:      audit,
		store:      store,
		splitter:   splitter,
	}
}

// Fingerprint hashes the exact uploaded bytes, before any splitting.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func (s *ingestService) Ingest(ctx context.Context, actor *types.User, in IngestInput) ([]*types.Document, error) {
	if actor == nil {
		return nil, fmt.Errorf("actor required: %w", apperrors.ErrInvalidArgument)
	}
	if len(in.Data) == 0 || in.Filename == "" {
		return nil, fmt.Errorf("file required: %w", apperrors.ErrInvalidArgument)
	}
	if in.ContainerID == "" {
		return nil, fmt.Errorf("container id required: %w", apperrors.ErrInvalidArgument)
	}
	dbc := dbctx.Context{Ctx: ctx}

	container, err := s.containers.GetByID(dbc, in.ContainerID)
	if err != nil {
		return nil, fmt.Errorf("load container: %w", err)
	}
	if container == nil {
		return nil, fmt.Errorf("container %s: %w", in.ContainerID, apperrors.ErrNotFound)
	}

	fingerprint := Fingerprint(in.Data)
	existing, err := s.docRepo.FindByFingerprint(dbc, fingerprint)
	if err != nil {
		return nil, fmt.Errorf("duplicate check: %w", err)
	}
	if existing != nil {
		return nil, &DuplicateError{Existing: existing}
	}

	artifacts, err := s.splitter.Split(in.Filename, in.Data)
	if err != nil || len(artifacts) == 0 {
		// Splitter failure degrades to single-page intake.
		artifacts = []split.Artifact{{Filename: in.Filename, PageNumber: 1, PageCount: 1}}
	}

	storageKey := fmt.Sprintf("intake/%s/%s", fingerprint[:16], in.Filename)
	if err := s.store.Upload(ctx, storageKey, bytes.NewReader(in.Data)); err != nil {
		return nil, fmt.Errorf("store upload: %w", err)
	}

	now := time.Now()
	stubs := make([]*types.Document, 0, len(artifacts))
	for _, art := range artifacts {
		doc := &types.Document{
			UID:                  types.NewDocumentUID(),
			Filename:             art.Filename,
			Fingerprint:          fingerprint,
			PageCount:            1,
			PageNumber:           art.PageNumber,
			StorageKey:           storageKey,
			OCRStatus:            types.OCRStatusProcessing,
			Status:               types.StatusIntake,
			ApprovalStatus:       types.ApprovalNotRequired,
			ConfidentialityLevel: in.ConfidentialityLevel,
			OwnerID:              actor.ID,
			UploaderID:           actor.ID,
			ContainerID:          in.ContainerID,
			BatchID:              in.BatchID,
			Tags:                 in.Tags,
			UploadDate:           now,
		}
		// A manual category pin is authoritative: full confidence, never
		// overwritten by the classifier.
		meta := map[string]string{}
		if in.Category != "" {
			doc.Category = in.Category
			doc.Confidence = 100
			meta["manual_category"] = in.Category
		}
		for k, v := range in.Metadata {
			meta[k] = v
		}
		if len(meta) > 0 {
			raw, err := json.Marshal(meta)
			if err != nil {
				return nil, fmt.Errorf("encode metadata: %w", err)
			}
			doc.Metadata = datatypes.JSON(raw)
		}
		stubs = append(stubs, doc)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.Context{Ctx: ctx, Tx: tx}
		if _, err := s.docRepo.Create(txc, stubs); err != nil {
			return fmt.Errorf("create stubs: %w", err)
		}
		jobs := make([]*types.JobRun, 0, len(stubs))
		for _, doc := range stubs {
			jobs = append(jobs, &types.JobRun{
				JobType:    types.JobTypeDocumentProcess,
				EntityType: "Document",
				EntityID:   doc.ID,
				Status:     types.JobStatusQueued,
				CreatedAt:  now,
				UpdatedAt:  now,
			})
		}
		if _, err := s.jobRepo.Create(txc, jobs); err != nil {
			return fmt.Errorf("enqueue pipeline jobs: %w", err)
		}
		if in.BatchID != nil {
			if err := s.batches.IncrementScanned(txc, *in.BatchID, len(stubs)); err != nil {
				return fmt.Errorf("update batch page count: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// One aggregated entry for the upload; the pipeline audits per document.
	s.audit.Record(dbc, AuditEvent{
		EntityType:  "Document",
		EntityID:    stubs[0].ID,
		Action:      "INGEST",
		Details:     fmt.Sprintf("ingested %s as %d page document(s)", in.Filename, len(stubs)),
		PerformedBy: actor.ID,
	})

	s.log.Info("Ingested file", "filename", in.Filename, "pages", len(stubs), "container", in.ContainerID)
	return stubs, nil
}
