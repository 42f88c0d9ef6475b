package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/PavithraSukumar6/kbn-dss-backend/internal/data/repos"
	types "github.com/PavithraSukumar6/kbn-dss-backend/internal/domain"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/dbctx"
	apperrors "github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/errors"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/logger"
)

// ContainerInput describes a new organizational node.
type ContainerInput struct {
	Name                 string
	Subsidiary           string
	Department           string
	Function             string
	DateRange            string
	ConfidentialityLevel string
	SourceLocation       string
	PhysicalPageCount    int
	ParentID             string
}

// BatchCompleteness compares scanned pages against the container's expected
// physical count.
type BatchCompleteness struct {
	BatchID           int64 `json:"batch_id"`
	TotalPagesScanned int   `json:"total_pages_scanned"`
	ExpectedPageCount int   `json:"expected_page_count"`
	Complete          bool  `json:"complete"`
}

// ContainerService manages the organizational tree, physical transfers, and
// scan batches with their QC verdicts.
type ContainerService interface {
	Create(ctx context.Context, actor *types.User, in ContainerInput) (*types.Container, error)
	Get(ctx context.Context, id string) (*types.Container, error)
	List(ctx context.Context) ([]*types.Container, error)
	Transfer(ctx context.Context, actor *types.User, containerID, newLocation string) (*types.Container, error)
	TransferLog(ctx context.Context, containerID string) ([]*types.TransferLogEntry, error)

	CreateBatch(ctx context.Context, actor *types.User, containerID string) (*types.Batch, error)
	ListBatches(ctx context.Context, containerID, qcStatus string) ([]*types.Batch, error)
	Completeness(ctx context.Context, batchID int64) (*BatchCompleteness, error)
	ReviewBatch(ctx context.Context, actor *types.User, batchID int64, verdict, notes string) (*types.Batch, error)
}

type containerService struct {
	db         *gorm.DB
	log        *logger.Logger
	containers repos.ContainerRepo
	transfers  repos.TransferLogRepo
	batches    repos.BatchRepo
	audit      AuditService
}

func NewContainerService(
	db *gorm.DB,
	baseLog *logger.Logger,
	containers repos.ContainerRepo,
	transfers repos.TransferLogRepo,
	batches repos.BatchRepo,
	audit AuditService,
) ContainerService {
	return &containerService{
		db:         db,
		log:        baseLog.With("service", "ContainerService"),
		containers: containers,
		transfers:  transfers,
		batches:    batches,
		audit:      audit,
	}
}

func (s *containerService) Create(ctx context.Context, actor *types.User, in ContainerInput) (*types.Container, error) {
	dbc := dbctx.Context{Ctx: ctx}
	if in.Name == "" {
		return nil, fmt.Errorf("container name required: %w", apperrors.ErrInvalidArgument)
	}
	if in.ParentID != "" {
		parent, err := s.containers.GetByID(dbc, in.ParentID)
		if err != nil {
			return nil, fmt.Errorf("load parent: %w", err)
		}
		if parent == nil {
			return nil, fmt.Errorf("parent container %s: %w", in.ParentID, apperrors.ErrNotFound)
		}
	}

	c := &types.Container{
		ID:                   types.NewContainerID(),
		Name:                 in.Name,
		Subsidiary:           in.Subsidiary,
		Department:           in.Department,
		Function:             in.Function,
		DateRange:            in.DateRange,
		ConfidentialityLevel: in.ConfidentialityLevel,
		SourceLocation:       in.SourceLocation,
		PhysicalPageCount:    in.PhysicalPageCount,
		ParentID:             in.ParentID,
		Barcode:              types.NewBarcode(),
		CreatedBy:            actor.ID,
		CreatedAt:            time.Now(),
	}
	if _, err := s.containers.Create(dbc, []*types.Container{c}); err != nil {
		return nil, fmt.Errorf("create container: %w", err)
	}
	s.audit.Record(dbc, AuditEvent{
		EntityType:  "Container",
		Action:      "CONTAINER_CREATED",
		Details:     fmt.Sprintf("%s (%s)", c.Name, c.ID),
		PerformedBy: actor.ID,
	})
	return c, nil
}

func (s *containerService) Get(ctx context.Context, id string) (*types.Container, error) {
	c, err := s.containers.GetByID(dbctx.Context{Ctx: ctx}, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("container %s: %w", id, apperrors.ErrNotFound)
	}
	return c, nil
}

func (s *containerService) List(ctx context.Context) ([]*types.Container, error) {
	return s.containers.List(dbctx.Context{Ctx: ctx})
}

func (s *containerService) Transfer(ctx context.Context, actor *types.User, containerID, newLocation string) (*types.Container, error) {
	dbc := dbctx.Context{Ctx: ctx}
	c, err := s.Get(ctx, containerID)
	if err != nil {
		return nil, err
	}
	if newLocation == "" {
		return nil, fmt.Errorf("new location required: %w", apperrors.ErrInvalidArgument)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txc := dbctx.Context{Ctx: ctx, Tx: tx}
		if err := s.containers.UpdateFields(txc, c.ID, map[string]interface{}{
			"source_location": newLocation,
		}); err != nil {
			return fmt.Errorf("update location: %w", err)
		}
		_, err := s.transfers.Create(txc, []*types.TransferLogEntry{{
			ContainerID:      c.ID,
			PreviousLocation: c.SourceLocation,
			NewLocation:      newLocation,
			TransferredBy:    actor.ID,
		}})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(dbc, AuditEvent{
		EntityType:  "Container",
		Action:      "CONTAINER_TRANSFER",
		Details:     c.ID,
		Before:      c.SourceLocation,
		After:       newLocation,
		PerformedBy: actor.ID,
	})
	return s.Get(ctx, containerID)
}

func (s *containerService) TransferLog(ctx context.Context, containerID string) ([]*types.TransferLogEntry, error) {
	return s.transfers.ListByContainerID(dbctx.Context{Ctx: ctx}, containerID)
}

func (s *containerService) CreateBatch(ctx context.Context, actor *types.User, containerID string) (*types.Batch, error) {
	dbc := dbctx.Context{Ctx: ctx}
	c, err := s.Get(ctx, containerID)
	if err != nil {
		return nil, err
	}
	b := &types.Batch{
		ContainerID:       c.ID,
		Status:            types.BatchQCPending,
		ExpectedPageCount: c.PhysicalPageCount,
		StartTime:         time.Now(),
	}
	if _, err := s.batches.Create(dbc, []*types.Batch{b}); err != nil {
		return nil, fmt.Errorf("create batch: %w", err)
	}
	s.audit.Record(dbc, AuditEvent{
		EntityType:  "Batch",
		EntityID:    b.ID,
		Action:      "BATCH_CREATED",
		Details:     fmt.Sprintf("container %s", c.ID),
		PerformedBy: actor.ID,
	})
	return b, nil
}

func (s *containerService) ListBatches(ctx context.Context, containerID, qcStatus string) ([]*types.Batch, error) {
	return s.batches.List(dbctx.Context{Ctx: ctx}, containerID, qcStatus)
}

func (s *containerService) Completeness(ctx context.Context, batchID int64) (*BatchCompleteness, error) {
	b, err := s.batches.GetByID(dbctx.Context{Ctx: ctx}, batchID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("batch %d: %w", batchID, apperrors.ErrNotFound)
	}
	return &BatchCompleteness{
		BatchID:           b.ID,
		TotalPagesScanned: b.TotalPagesScanned,
		ExpectedPageCount: b.ExpectedPageCount,
		Complete:          b.ExpectedPageCount > 0 && b.TotalPagesScanned >= b.ExpectedPageCount,
	}, nil
}

func (s *containerService) ReviewBatch(ctx context.Context, actor *types.User, batchID int64, verdict, notes string) (*types.Batch, error) {
	dbc := dbctx.Context{Ctx: ctx}
	b, err := s.batches.GetByID(dbc, batchID)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, fmt.Errorf("batch %d: %w", batchID, apperrors.ErrNotFound)
	}
	if verdict != types.BatchQCArchived && verdict != types.BatchQCReturned {
		return nil, fmt.Errorf("verdict must be %s or %s: %w", types.BatchQCArchived, types.BatchQCReturned, apperrors.ErrInvalidArgument)
	}

	now := time.Now()
	if err := s.batches.UpdateFields(dbc, b.ID, map[string]interface{}{
		"qc_status": verdict,
		"qc_notes":  notes,
		"qc_by":     actor.ID,
		"qc_date":   now,
		"status":    verdict,
		"end_time":  now,
	}); err != nil {
		return nil, fmt.Errorf("review batch: %w", err)
	}
	s.audit.Record(dbc, AuditEvent{
		EntityType:  "Batch",
		EntityID:    b.ID,
		Action:      "BATCH_QC",
		Details:     notes,
		Before:      b.QCStatus,
		After:       verdict,
		PerformedBy: actor.ID,
	})
	return s.batches.GetByID(dbc, batchID)
}
