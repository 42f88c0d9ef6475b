package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"gorm.io/datatypes"

	"github.com/PavithraSukumar6/kbn-dss-backend/internal/data/repos/testutil"
	types "github.com/PavithraSukumar6/kbn-dss-backend/internal/domain"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/platform/blob"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/platform/ocr"
)

type stubEngine struct {
	text  string
	conf  float64
	pages int
	err   error
}

func (e *stubEngine) Extract(ctx context.Context, data []byte, mimeType string) (*ocr.Result, error) {
	if e.err != nil {
		return nil, e.err
	}
	return &ocr.Result{Text: e.text, Confidence: e.conf, PageCount: e.pages}, nil
}

func (e *stubEngine) Close() error { return nil }

func newPipeline(t *testing.T, env *testEnv, engine ocr.Engine) (PipelineService, blob.Store) {
	t.Helper()
	log := testutil.Logger(t)
	store, err := blob.NewLocal(log, t.TempDir())
	if err != nil {
		t.Fatalf("local store: %v", err)
	}
	classifier, err := NewClassifier(log, "")
	if err != nil {
		t.Fatalf("classifier: %v", err)
	}
	router, err := NewRouter(log, env.containers, "")
	if err != nil {
		t.Fatalf("router: %v", err)
	}
	p := NewPipelineService(env.db, log, env.docs, env.approvals, env.containers,
		env.audit, env.settings, classifier, router, engine, store, nil, 2)
	return p, store
}

func metaJSON(t *testing.T, meta map[string]string) datatypes.JSON {
	t.Helper()
	raw, err := json.Marshal(meta)
	if err != nil {
		t.Fatalf("marshal metadata: %v", err)
	}
	return datatypes.JSON(raw)
}

func (env *testEnv) createIntakeDoc(t *testing.T, mutate func(*types.Document)) *types.Document {
	t.Helper()
	return env.createDoc(t, func(d *types.Document) {
		d.Status = types.StatusIntake
		d.ApprovalStatus = types.ApprovalNotRequired
		d.OCRStatus = types.OCRStatusProcessing
		d.Confidence = 0
		if mutate != nil {
			mutate(d)
		}
	})
}

func seedArtifact(t *testing.T, store blob.Store, key string, data []byte) {
	t.Helper()
	if err := store.Upload(context.Background(), key, bytes.NewReader(data)); err != nil {
		t.Fatalf("seed artifact: %v", err)
	}
}

const invoiceText = "Acme Trading LLC\nTax Invoice\nInvoice # INV-2041\nDate 15/03/2026\nBill To: KBN Holding\nTotal: 12,500.00\nAmount Due: 12,500.00\nPayment Due: 30/03/2026\n"

func TestPipeline_FastTracksHighConfidenceLowRisk(t *testing.T) {
	env := newTestEnv(t)
	p, store := newPipeline(t, env, &stubEngine{text: invoiceText, pages: 1})

	key := "intake/test/" + shortID()
	seedArtifact(t, store, key, []byte("%PDF raw bytes"))
	doc := env.createIntakeDoc(t, func(d *types.Document) {
		d.ConfidentialityLevel = types.ConfidentialityPublic
		d.StorageKey = key
	})

	if err := p.Process(context.Background(), doc.ID); err != nil {
		t.Fatalf("process: %v", err)
	}

	got := env.reloadDoc(t, doc.ID)
	if got.Category != types.CategoryInvoice {
		t.Fatalf("expected Invoice, got %q", got.Category)
	}
	if got.Confidence <= 90 {
		t.Fatalf("expected fast-track confidence, got %v", got.Confidence)
	}
	if got.Status != types.StatusPublished || !got.IsPublished {
		t.Fatalf("expected published, got status=%q published=%v", got.Status, got.IsPublished)
	}
	if got.QCState != types.QCStatePassed {
		t.Fatalf("expected QC_Passed, got %q", got.QCState)
	}
	if got.ApprovalStatus != types.ApprovalApproved {
		t.Fatalf("expected Approved, got %q", got.ApprovalStatus)
	}
	if n := len(env.auditEntries(t, doc.ID, "AUTO_PUBLISH")); n != 1 {
		t.Fatalf("expected one AUTO_PUBLISH entry, got %d", n)
	}
}

func TestPipeline_HighRiskCategoryQueuesForRigorousQC(t *testing.T) {
	env := newTestEnv(t)
	idText := "Passport\nIdentity Card\nNationality: AE\nDate of Birth: 01/01/1990\nID Card No: P88412345\n"
	p, store := newPipeline(t, env, &stubEngine{text: idText, pages: 1})

	key := "intake/test/" + shortID()
	seedArtifact(t, store, key, []byte("scan"))
	doc := env.createIntakeDoc(t, func(d *types.Document) {
		d.StorageKey = key
	})

	if err := p.Process(context.Background(), doc.ID); err != nil {
		t.Fatalf("process: %v", err)
	}

	got := env.reloadDoc(t, doc.ID)
	if got.Category != types.CategoryID {
		t.Fatalf("expected ID, got %q", got.Category)
	}
	if got.QCState != types.QCStateRigorous {
		t.Fatalf("expected Rigorous_QC regardless of confidence, got %q", got.QCState)
	}
	if got.Status != types.StatusIntake {
		t.Fatalf("expected document to stay in intake, got %q", got.Status)
	}
	if n := len(env.auditEntries(t, doc.ID, "QC_QUEUED")); n != 1 {
		t.Fatalf("expected one QC_QUEUED entry, got %d", n)
	}
}

func TestPipeline_NoOCRFallsBackToFilename(t *testing.T) {
	env := newTestEnv(t)
	p, _ := newPipeline(t, env, nil)

	doc := env.createIntakeDoc(t, func(d *types.Document) {
		d.Filename = "Invoice_" + shortID() + ".pdf"
	})

	if err := p.Process(context.Background(), doc.ID); err != nil {
		t.Fatalf("process: %v", err)
	}

	got := env.reloadDoc(t, doc.ID)
	if got.OCRStatus != types.OCRStatusCompletedNoOCR {
		t.Fatalf("expected %q, got %q", types.OCRStatusCompletedNoOCR, got.OCRStatus)
	}
	if got.Content != "OCR_SKIPPED" {
		t.Fatalf("expected OCR_SKIPPED content, got %q", got.Content)
	}
	if got.Category != types.CategoryInvoice || got.Confidence != 50 {
		t.Fatalf("expected Invoice at confidence 50, got %q at %v", got.Category, got.Confidence)
	}
	if got.QCState != types.QCStateRigorous {
		t.Fatalf("expected the fallback to queue for QC, got %q", got.QCState)
	}
}

func TestPipeline_NoOCRWithoutFilenameHintFails(t *testing.T) {
	env := newTestEnv(t)
	p, _ := newPipeline(t, env, nil)

	doc := env.createIntakeDoc(t, func(d *types.Document) {
		d.Filename = "scan_0001_" + shortID() + ".tiff"
	})

	if err := p.Process(context.Background(), doc.ID); err != nil {
		t.Fatalf("process should contain the failure: %v", err)
	}

	got := env.reloadDoc(t, doc.ID)
	if got.OCRStatus != types.OCRStatusFailed {
		t.Fatalf("expected Failed, got %q", got.OCRStatus)
	}
	if n := len(env.auditEntries(t, doc.ID, "PROCESS_FAILED")); n != 1 {
		t.Fatalf("expected one PROCESS_FAILED entry, got %d", n)
	}
}

func TestPipeline_ManualPinOverridesClassifier(t *testing.T) {
	env := newTestEnv(t)
	p, store := newPipeline(t, env, &stubEngine{text: invoiceText, pages: 1})

	key := "intake/test/" + shortID()
	seedArtifact(t, store, key, []byte("scan"))
	doc := env.createIntakeDoc(t, func(d *types.Document) {
		d.Category = types.CategoryReport
		d.StorageKey = key
		d.Metadata = metaJSON(t, map[string]string{"manual_category": types.CategoryReport})
	})

	if err := p.Process(context.Background(), doc.ID); err != nil {
		t.Fatalf("process: %v", err)
	}

	got := env.reloadDoc(t, doc.ID)
	if got.Category != types.CategoryReport {
		t.Fatalf("expected the pin to win over the classifier, got %q", got.Category)
	}
	if got.Confidence != 100 {
		t.Fatalf("expected confidence 100 for a pinned category, got %v", got.Confidence)
	}
}

func TestPipeline_ApprovalPolicyForcesManualGate(t *testing.T) {
	env := newTestEnv(t)
	p, store := newPipeline(t, env, &stubEngine{text: invoiceText, pages: 1})

	policies, err := env.approvals.Create(bg(), []*types.ApprovalPolicy{{
		MatchType:  types.MatchConfidentiality,
		MatchValue: types.ConfidentialityRestricted,
		IsActive:   true,
	}})
	if err != nil {
		t.Fatalf("create approval policy: %v", err)
	}
	t.Cleanup(func() {
		_ = env.approvals.Delete(bg(), policies[0].ID)
	})

	key := "intake/test/" + shortID()
	seedArtifact(t, store, key, []byte("scan"))
	doc := env.createIntakeDoc(t, func(d *types.Document) {
		d.ConfidentialityLevel = types.ConfidentialityRestricted
		d.StorageKey = key
	})

	if err := p.Process(context.Background(), doc.ID); err != nil {
		t.Fatalf("process: %v", err)
	}

	got := env.reloadDoc(t, doc.ID)
	if got.ApprovalStatus != types.ApprovalPending {
		t.Fatalf("expected Pending Approval, got %q", got.ApprovalStatus)
	}
	if got.Status == types.StatusPublished || got.IsPublished {
		t.Fatalf("policy match must not publish, got status=%q", got.Status)
	}
	if n := len(env.auditEntries(t, doc.ID, "APPROVAL_REQUIRED")); n != 1 {
		t.Fatalf("expected one APPROVAL_REQUIRED entry, got %d", n)
	}
}

func TestPipeline_EngineErrorIsContained(t *testing.T) {
	env := newTestEnv(t)
	p, store := newPipeline(t, env, &stubEngine{err: errors.New("backend unreachable")})

	key := "intake/test/" + shortID()
	seedArtifact(t, store, key, []byte("scan"))
	doc := env.createIntakeDoc(t, func(d *types.Document) {
		d.StorageKey = key
	})

	if err := p.Process(context.Background(), doc.ID); err != nil {
		t.Fatalf("engine failures must not escape Process: %v", err)
	}

	got := env.reloadDoc(t, doc.ID)
	if got.OCRStatus != types.OCRStatusFailed {
		t.Fatalf("expected Failed, got %q", got.OCRStatus)
	}
	if got.Confidence != 0 {
		t.Fatalf("expected zero confidence, got %v", got.Confidence)
	}
}

func TestPipeline_AutoRoutesByKeyword(t *testing.T) {
	env := newTestEnv(t)
	reportText := "Quarterly Report\nSummary and analysis of payroll status for Q1.\n"
	p, store := newPipeline(t, env, &stubEngine{text: reportText, pages: 1})

	target := &types.Container{ID: "DEPT-FINANCE", Name: "Finance"}
	if _, err := env.containers.Create(bg(), []*types.Container{target}); err != nil {
		t.Fatalf("create routing target: %v", err)
	}

	key := "intake/test/" + shortID()
	seedArtifact(t, store, key, []byte("scan"))
	source := env.createContainer(t, "Operations", "")
	doc := env.createIntakeDoc(t, func(d *types.Document) {
		d.ContainerID = source.ID
		d.StorageKey = key
	})

	if err := p.Process(context.Background(), doc.ID); err != nil {
		t.Fatalf("process: %v", err)
	}

	got := env.reloadDoc(t, doc.ID)
	if got.ContainerID != "DEPT-FINANCE" {
		t.Fatalf("expected routing to DEPT-FINANCE, got %q", got.ContainerID)
	}
	if n := len(env.auditEntries(t, doc.ID, "AUTO_ROUTE")); n != 1 {
		t.Fatalf("expected one AUTO_ROUTE entry, got %d", n)
	}
}

func TestPipeline_ValidationFindingsAreAdvisoryByDefault(t *testing.T) {
	env := newTestEnv(t)
	badDateText := "Acme Trading LLC\nTax Invoice\nInvoice # INV-9\nDate 99/99/2026\nBill To: KBN Holding\nTotal: 100.00\n"
	p, store := newPipeline(t, env, &stubEngine{text: badDateText, pages: 1})

	key := "intake/test/" + shortID()
	seedArtifact(t, store, key, []byte("scan"))
	doc := env.createIntakeDoc(t, func(d *types.Document) {
		d.StorageKey = key
	})

	if err := p.Process(context.Background(), doc.ID); err != nil {
		t.Fatalf("process: %v", err)
	}

	got := env.reloadDoc(t, doc.ID)
	if got.OCRStatus != types.OCRStatusCompleted {
		t.Fatalf("advisory findings must not fail the run, got %q", got.OCRStatus)
	}
	if n := len(env.auditEntries(t, doc.ID, "VALIDATION_FINDINGS")); n != 1 {
		t.Fatalf("expected one VALIDATION_FINDINGS entry, got %d", n)
	}
}

func TestPipeline_StrictValidationFailsTheRun(t *testing.T) {
	env := newTestEnv(t)
	badDateText := "Acme Trading LLC\nTax Invoice\nInvoice # INV-9\nDate 99/99/2026\nBill To: KBN Holding\nTotal: 100.00\n"
	p, store := newPipeline(t, env, &stubEngine{text: badDateText, pages: 1})

	if err := env.settings.Set(bg(), types.SettingValidationStrict, "true", "test"); err != nil {
		t.Fatalf("enable strict validation: %v", err)
	}
	t.Cleanup(func() {
		_ = env.settings.Set(bg(), types.SettingValidationStrict, "false", "test")
	})

	key := "intake/test/" + shortID()
	seedArtifact(t, store, key, []byte("scan"))
	doc := env.createIntakeDoc(t, func(d *types.Document) {
		d.StorageKey = key
	})

	if err := p.Process(context.Background(), doc.ID); err != nil {
		t.Fatalf("process: %v", err)
	}

	got := env.reloadDoc(t, doc.ID)
	if got.OCRStatus != types.OCRStatusFailed {
		t.Fatalf("expected strict mode to fail the run, got %q", got.OCRStatus)
	}
	if n := len(env.auditEntries(t, doc.ID, "PROCESS_FAILED")); n != 1 {
		t.Fatalf("expected one PROCESS_FAILED entry, got %d", n)
	}
}

func TestPipeline_ConcurrentRunsOnOneDocumentSerialize(t *testing.T) {
	env := newTestEnv(t)
	p, store := newPipeline(t, env, &stubEngine{text: invoiceText, pages: 1})

	key := "intake/test/" + shortID()
	seedArtifact(t, store, key, []byte("%PDF raw bytes"))
	doc := env.createIntakeDoc(t, func(d *types.Document) {
		d.ConfidentialityLevel = types.ConfidentialityPublic
		d.StorageKey = key
	})

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- p.Process(context.Background(), doc.ID)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("process: %v", err)
		}
	}

	got := env.reloadDoc(t, doc.ID)
	if got.Category != types.CategoryInvoice || got.Status != types.StatusPublished {
		t.Fatalf("expected a consistent published invoice, got category=%q status=%q", got.Category, got.Status)
	}
	if n := len(env.auditEntries(t, doc.ID, "PROCESS_FAILED")); n != 0 {
		t.Fatalf("no run may fail under contention, got %d failures", n)
	}
}

func TestPipeline_ReleasesDocumentLocks(t *testing.T) {
	env := newTestEnv(t)
	p, store := newPipeline(t, env, &stubEngine{text: invoiceText, pages: 1})

	key := "intake/test/" + shortID()
	seedArtifact(t, store, key, []byte("%PDF raw bytes"))
	doc := env.createIntakeDoc(t, func(d *types.Document) {
		d.ConfidentialityLevel = types.ConfidentialityPublic
		d.StorageKey = key
	})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = p.Process(context.Background(), doc.ID)
		}()
	}
	wg.Wait()

	svc := p.(*pipelineService)
	svc.mu.Lock()
	held := len(svc.locks)
	svc.mu.Unlock()
	if held != 0 {
		t.Fatalf("expected all document locks released, %d still held", held)
	}
}

func TestPipeline_MetadataCarriesNoBookkeepingKeys(t *testing.T) {
	env := newTestEnv(t)
	p, store := newPipeline(t, env, &stubEngine{text: invoiceText, pages: 1})

	key := "intake/test/" + shortID()
	seedArtifact(t, store, key, []byte("%PDF raw bytes"))
	doc := env.createIntakeDoc(t, func(d *types.Document) {
		d.ConfidentialityLevel = types.ConfidentialityPublic
		d.StorageKey = key
		d.Metadata = metaJSON(t, map[string]string{"cost_center": "FIN-044"})
	})

	if err := p.Process(context.Background(), doc.ID); err != nil {
		t.Fatalf("process: %v", err)
	}

	got := env.reloadDoc(t, doc.ID)
	meta := decodeMeta(got.Metadata)
	if meta["storage_key"] != "" || meta["page_number"] != "" {
		t.Fatalf("bookkeeping keys leaked into metadata: %v", meta)
	}
	if meta["cost_center"] != "FIN-044" {
		t.Fatalf("user-supplied field must survive the merge, got %v", meta)
	}
	if meta["invoice_number"] == "" {
		t.Fatalf("extraction must still populate metadata, got %v", meta)
	}
	if got.StorageKey != key {
		t.Fatalf("blob location must survive for rescan, got %q", got.StorageKey)
	}
}
