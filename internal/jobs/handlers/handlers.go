// Package handlers binds job types to the services that execute them.
package handlers

import (
	"fmt"

	types "github.com/PavithraSukumar6/kbn-dss-backend/internal/domain"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/jobs/runtime"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/services"
)

// DocumentProcess runs the extraction pipeline for one document. The
// document id rides on the job_run entity columns; the payload is a backup.
type DocumentProcess struct {
	Pipeline services.PipelineService
}

func (h *DocumentProcess) Type() string { return types.JobTypeDocumentProcess }

func (h *DocumentProcess) Run(jc *runtime.Context) error {
	documentID := jc.Job.EntityID
	if documentID == 0 {
		if id, ok := jc.PayloadInt64("document_id"); ok {
			documentID = id
		}
	}
	if documentID == 0 {
		return fmt.Errorf("document_process: no document id on job %s", jc.Job.ID)
	}
	return h.Pipeline.Process(jc.Ctx, documentID)
}

// RetentionSweep runs one pass of the retention policy sweep.
type RetentionSweep struct {
	Retention services.RetentionService
}

func (h *RetentionSweep) Type() string { return types.JobTypeRetentionSweep }

func (h *RetentionSweep) Run(jc *runtime.Context) error {
	_, err := h.Retention.Sweep(jc.Ctx)
	return err
}

// RegisterAll wires every handler into the registry.
func RegisterAll(reg *runtime.Registry, pipeline services.PipelineService, retention services.RetentionService) error {
	for _, h := range []runtime.Handler{
		&DocumentProcess{Pipeline: pipeline},
		&RetentionSweep{Retention: retention},
	} {
		if err := reg.Register(h); err != nil {
			return err
		}
	}
	return nil
}
