package services

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/PavithraSukumar6/kbn-dss-backend/internal/data/repos"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/dbctx"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/logger"
)

// RouterService maps keyword hits in classified text to a container id.
// Best-effort and silent: no match, or a match pointing at a container that
// does not exist, leaves the document where it is.
type RouterService interface {
	Route(dbc dbctx.Context, text string) (containerID string, err error)
}

type routingRule struct {
	Keyword     string `yaml:"keyword"`
	ContainerID string `yaml:"container_id"`
}

// First match wins, so order is part of the table's semantics.
var defaultRoutingRules = []routingRule{
	{Keyword: "HR", ContainerID: "DEPT-HR"},
	{Keyword: "HUMAN RESOURCES", ContainerID: "DEPT-HR"},
	{Keyword: "FINANCE", ContainerID: "DEPT-FINANCE"},
	{Keyword: "PAYROLL", ContainerID: "DEPT-FINANCE"},
	{Keyword: "LEGAL", ContainerID: "DEPT-LEGAL"},
	{Keyword: "CONTRACT", ContainerID: "DEPT-LEGAL"},
	{Keyword: "OPERATIONS", ContainerID: "DEPT-OPERATIONS"},
	{Keyword: "SALES", ContainerID: "DEPT-SALES"},
	{Keyword: "UAE", ContainerID: "DEPT-UAE"},
	{Keyword: "DUBAI", ContainerID: "DEPT-UAE"},
	{Keyword: "KBN UAE", ContainerID: "DEPT-UAE"},
}

type routerService struct {
	log           *logger.Logger
	containerRepo repos.ContainerRepo
	rules         []routingRule
}

func NewRouter(baseLog *logger.Logger, containerRepo repos.ContainerRepo, rulePath string) (RouterService, error) {
	slog := baseLog.With("service", "RouterService")
	rules := defaultRoutingRules
	if rulePath != "" {
		raw, err := os.ReadFile(rulePath)
		if err != nil {
			return nil, fmt.Errorf("read routing rules: %w", err)
		}
		var loaded []routingRule
		if err := yaml.Unmarshal(raw, &loaded); err != nil {
			return nil, fmt.Errorf("parse routing rules: %w", err)
		}
		if len(loaded) > 0 {
			rules = loaded
			slog.Info("Routing rules loaded", "path", rulePath, "rules", len(loaded))
		}
	}
	return &routerService{log: slog, containerRepo: containerRepo, rules: rules}, nil
}

func (s *routerService) Route(dbc dbctx.Context, text string) (string, error) {
	upper := strings.ToUpper(text)

	target := ""
	for _, rule := range s.rules {
		if strings.Contains(upper, strings.ToUpper(rule.Keyword)) {
			target = rule.ContainerID
			break
		}
	}
	if target == "" {
		return "", nil
	}

	container, err := s.containerRepo.GetByID(dbc, target)
	if err != nil {
		return "", fmt.Errorf("resolve routing target %s: %w", target, err)
	}
	if container == nil {
		return "", nil
	}
	return target, nil
}
