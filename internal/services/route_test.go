package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/PavithraSukumar6/kbn-dss-backend/internal/data/repos/testutil"
)

func TestRoute_FirstMatchingRuleWins(t *testing.T) {
	env := newTestEnv(t)
	first := env.createContainer(t, "Finance-"+shortID(), "")
	second := env.createContainer(t, "Legal-"+shortID(), "")

	rulePath := filepath.Join(t.TempDir(), "routing.yaml")
	rules := "- keyword: payroll\n  container_id: " + first.ID + "\n" +
		"- keyword: agreement\n  container_id: " + second.ID + "\n"
	if err := os.WriteFile(rulePath, []byte(rules), 0o644); err != nil {
		t.Fatalf("write rules: %v", err)
	}

	router, err := NewRouter(testutil.Logger(t), env.containers, rulePath)
	if err != nil {
		t.Fatalf("new router: %v", err)
	}

	target, err := router.Route(bg(), "Payroll summary and agreement attached")
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if target != first.ID {
		t.Fatalf("expected the first rule to win, got %q", target)
	}
}

func TestRoute_NoMatchLeavesDocumentInPlace(t *testing.T) {
	env := newTestEnv(t)
	rulePath := filepath.Join(t.TempDir(), "routing.yaml")
	rules := "- keyword: payroll\n  container_id: CONT-NOWHERE-" + shortID() + "\n"
	if err := os.WriteFile(rulePath, []byte(rules), 0o644); err != nil {
		t.Fatalf("write rules: %v", err)
	}
	router, err := NewRouter(testutil.Logger(t), env.containers, rulePath)
	if err != nil {
		t.Fatalf("new router: %v", err)
	}

	target, err := router.Route(bg(), "nothing relevant here")
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if target != "" {
		t.Fatalf("expected no target, got %q", target)
	}
}

func TestRoute_MissingTargetContainerIsIgnored(t *testing.T) {
	env := newTestEnv(t)
	rulePath := filepath.Join(t.TempDir(), "routing.yaml")
	rules := "- keyword: payroll\n  container_id: CONT-NOWHERE-" + shortID() + "\n"
	if err := os.WriteFile(rulePath, []byte(rules), 0o644); err != nil {
		t.Fatalf("write rules: %v", err)
	}
	router, err := NewRouter(testutil.Logger(t), env.containers, rulePath)
	if err != nil {
		t.Fatalf("new router: %v", err)
	}

	target, err := router.Route(bg(), "monthly payroll run")
	if err != nil {
		t.Fatalf("route: %v", err)
	}
	if target != "" {
		t.Fatalf("a rule pointing at a missing container must not route, got %q", target)
	}
}
