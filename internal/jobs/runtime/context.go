package runtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/PavithraSukumar6/kbn-dss-backend/internal/data/repos"
	types "github.com/PavithraSukumar6/kbn-dss-backend/internal/domain"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/dbctx"
)

// Context is the execution handle for a single claimed job run. Handlers
// report terminal state through Succeed/Fail rather than touching the
// job_run row directly.
type Context struct {
	Ctx     context.Context
	DB      *gorm.DB
	Job     *types.JobRun
	Repo    repos.JobRunRepo
	payload map[string]any
}

// NewContext decodes the payload eagerly; handlers validate required fields
// themselves, so a malformed payload is not fatal here.
func NewContext(ctx context.Context, db *gorm.DB, job *types.JobRun, repo repos.JobRunRepo) *Context {
	c := &Context{Ctx: ctx, DB: db, Job: job, Repo: repo}
	c.payload = map[string]any{}
	if job != nil && len(job.Payload) > 0 {
		var m map[string]any
		if err := json.Unmarshal(job.Payload, &m); err == nil {
			c.payload = m
		}
	}
	return c
}

// Payload never returns nil.
func (c *Context) Payload() map[string]any {
	if c.payload == nil {
		c.payload = map[string]any{}
	}
	return c.payload
}

// PayloadInt64 reads a numeric payload field. JSON numbers decode as
// float64, so the common entity-id case goes through here.
func (c *Context) PayloadInt64(key string) (int64, bool) {
	v, ok := c.Payload()[key]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}

func (c *Context) Succeed() {
	c.terminal(types.JobStatusSucceeded, "")
}

func (c *Context) Fail(err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.terminal(types.JobStatusFailed, msg)
}

func (c *Context) terminal(status, errMsg string) {
	if c.Job == nil || c.Job.ID == uuid.Nil {
		return
	}
	now := time.Now()
	updates := map[string]interface{}{
		"status":     status,
		"locked_at":  nil,
		"updated_at": now,
	}
	if status == types.JobStatusFailed {
		updates["error"] = errMsg
		updates["last_error_at"] = now
	}
	_ = c.Repo.UpdateFields(dbctx.Context{Ctx: c.Ctx}, c.Job.ID, updates)
}
