package services

import (
	"context"
	"testing"

	"github.com/PavithraSukumar6/kbn-dss-backend/internal/data/repos/testutil"
	types "github.com/PavithraSukumar6/kbn-dss-backend/internal/domain"
)

func TestAnalytics_DashboardCountsMove(t *testing.T) {
	env := newTestEnv(t)
	svc := NewAnalyticsService(env.db, testutil.Logger(t), env.docs, env.auditRepo)
	admin := testActor(types.RoleAdmin)
	ctx := context.Background()

	before, err := svc.Dashboard(ctx, admin)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}

	category := "Permit-" + shortID()
	env.createDoc(t, func(d *types.Document) { d.Category = category })
	env.createDoc(t, func(d *types.Document) {
		d.Category = category
		d.Status = types.StatusIntake
		d.ApprovalStatus = types.ApprovalPending
		d.OCRStatus = types.OCRStatusFailed
	})

	after, err := svc.Dashboard(ctx, admin)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}

	if got := after.TotalDocuments - before.TotalDocuments; got != 2 {
		t.Fatalf("expected total to move by 2, moved %d", got)
	}
	if got := after.Published - before.Published; got != 1 {
		t.Fatalf("expected published to move by 1, moved %d", got)
	}
	if got := after.PendingApproval - before.PendingApproval; got != 1 {
		t.Fatalf("expected pending approval to move by 1, moved %d", got)
	}
	if got := after.ProcessingFailed - before.ProcessingFailed; got != 1 {
		t.Fatalf("expected processing failed to move by 1, moved %d", got)
	}
	if after.ByCategory[category] != 2 {
		t.Fatalf("expected 2 documents in %s, got %d", category, after.ByCategory[category])
	}
	if len(after.DailyThroughput) != 7 {
		t.Fatalf("expected a 7-day throughput window, got %d", len(after.DailyThroughput))
	}
	if after.AverageConfidence < 0 || after.AverageConfidence > 100 {
		t.Fatalf("average confidence out of range: %v", after.AverageConfidence)
	}
}
