package runtime

import (
	"context"
	"errors"
	"testing"

	"github.com/PavithraSukumar6/kbn-dss-backend/internal/data/repos"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/data/repos/testutil"
	types "github.com/PavithraSukumar6/kbn-dss-backend/internal/domain"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/dbctx"
)

func TestPayloadInt64_ReadsJSONNumbers(t *testing.T) {
	job := &types.JobRun{Payload: []byte(`{"document_id": 42, "note": "x"}`)}
	jc := NewContext(context.Background(), nil, job, nil)

	id, ok := jc.PayloadInt64("document_id")
	if !ok || id != 42 {
		t.Fatalf("expected 42, got %d ok=%v", id, ok)
	}
	if _, ok := jc.PayloadInt64("note"); ok {
		t.Fatalf("a string field must not read as int64")
	}
	if _, ok := jc.PayloadInt64("missing"); ok {
		t.Fatalf("a missing field must not read as int64")
	}
}

func TestPayloadInt64_MalformedPayloadIsNotFatal(t *testing.T) {
	job := &types.JobRun{Payload: []byte(`not json`)}
	jc := NewContext(context.Background(), nil, job, nil)

	if jc.Payload() == nil {
		t.Fatalf("payload must never be nil")
	}
	if _, ok := jc.PayloadInt64("document_id"); ok {
		t.Fatalf("expected no fields from a malformed payload")
	}
}

func TestSucceedAndFail_WriteTerminalState(t *testing.T) {
	gdb := testutil.DB(t)
	repo := repos.NewJobRunRepo(gdb, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background()}

	jobs, err := repo.Create(dbc, []*types.JobRun{
		{JobType: types.JobTypeDocumentProcess, EntityType: "Document", EntityID: 1, Status: types.JobStatusRunning},
		{JobType: types.JobTypeDocumentProcess, EntityType: "Document", EntityID: 2, Status: types.JobStatusRunning},
	})
	if err != nil {
		t.Fatalf("seed jobs: %v", err)
	}

	NewContext(context.Background(), gdb, jobs[0], repo).Succeed()
	NewContext(context.Background(), gdb, jobs[1], repo).Fail(errors.New("ocr backend down"))

	done, err := repo.GetByID(dbc, jobs[0].ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if done.Status != types.JobStatusSucceeded || done.LockedAt != nil {
		t.Fatalf("expected an unlocked succeeded job, got %+v", done)
	}

	failed, err := repo.GetByID(dbc, jobs[1].ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if failed.Status != types.JobStatusFailed || failed.Error != "ocr backend down" || failed.LastErrorAt == nil {
		t.Fatalf("expected a failed job with the error recorded, got %+v", failed)
	}
}

func TestRegistry_RejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	h := stubHandler{jobType: types.JobTypeDocumentProcess}

	if err := reg.Register(h); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register(h); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if _, ok := reg.Get(types.JobTypeDocumentProcess); !ok {
		t.Fatalf("expected the handler to be resolvable")
	}
	if _, ok := reg.Get("unknown"); ok {
		t.Fatalf("expected unknown job types to miss")
	}
}

type stubHandler struct{ jobType string }

func (h stubHandler) Type() string           { return h.jobType }
func (h stubHandler) Run(ctx *Context) error { return nil }
