package services

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	types "github.com/PavithraSukumar6/kbn-dss-backend/internal/domain"
	"github.com/PavithraSukumar6/kbn-dss-backend/internal/pkg/logger"
)

// ClassifierService labels OCR text with a document category by keyword hit
// count. Keyword sets are built in but overridable from a YAML rule file.
type ClassifierService interface {
	Classify(text string) (category string, confidence float64)
	SuggestFromFilename(filename string) (category string, ok bool)
}

type keywordRule struct {
	Category string   `yaml:"category"`
	Keywords []string `yaml:"keywords"`
}

type classifierService struct {
	log *logger.Logger
	// order matters: ties break to the earliest rule.
	rules []keywordRule
}

var defaultKeywordRules = []keywordRule{
	{Category: types.CategoryInvoice, Keywords: []string{"invoice", "bill to", "amount due", "tax invoice", "payment due"}},
	{Category: types.CategoryContract, Keywords: []string{"contract", "agreement", "undersigned", "parties", "hereinafter"}},
	{Category: types.CategoryID, Keywords: []string{"passport", "identity", "nationality", "date of birth", "id card"}},
	{Category: types.CategoryReport, Keywords: []string{"report", "summary", "analysis", "status", "quarterly"}},
	{Category: types.CategoryHR, Keywords: []string{"employee", "salary", "payroll", "leave", "appraisal", "human resources"}},
	{Category: types.CategoryLegal, Keywords: []string{"court", "lawsuit", "legal notice", "attorney", "jurisdiction"}},
}

// NewClassifier loads rules from rulePath when non-empty, else uses the
// built-in table.
func NewClassifier(baseLog *logger.Logger, rulePath string) (ClassifierService, error) {
	slog := baseLog.With("service", "ClassifierService")
	rules := defaultKeywordRules
	if rulePath != "" {
		raw, err := os.ReadFile(rulePath)
		if err != nil {
			return nil, fmt.Errorf("read classification rules: %w", err)
		}
		var loaded []keywordRule
		if err := yaml.Unmarshal(raw, &loaded); err != nil {
			return nil, fmt.Errorf("parse classification rules: %w", err)
		}
		if len(loaded) > 0 {
			rules = loaded
			slog.Info("Classification rules loaded", "path", rulePath, "rules", len(loaded))
		}
	}
	return &classifierService{log: slog, rules: rules}, nil
}

// Classify scores each category by keyword hits over the lower-cased text.
// Highest count wins, earliest rule wins ties, zero hits maps to Other with
// low confidence. Confidence is on the 0-100 scale.
func (s *classifierService) Classify(text string) (string, float64) {
	lower := strings.ToLower(text)

	best := ""
	bestHits := 0
	for _, rule := range s.rules {
		hits := 0
		for _, kw := range rule.Keywords {
			hits += strings.Count(lower, strings.ToLower(kw))
		}
		if hits > bestHits {
			best = rule.Category
			bestHits = hits
		}
	}

	if bestHits == 0 {
		return types.CategoryOther, 30
	}
	confidence := 60 + float64(bestHits)*7
	if confidence > 95 {
		confidence = 95
	}
	return best, confidence
}

// SuggestFromFilename is the no-OCR fallback: it matches category keywords
// against the filename alone.
func (s *classifierService) SuggestFromFilename(filename string) (string, bool) {
	lower := strings.ToLower(filename)
	for _, rule := range s.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				return rule.Category, true
			}
		}
		// The category name itself in a filename is the common case
		// ("Contract_Acme_2023.pdf").
		if strings.Contains(lower, strings.ToLower(rule.Category)) {
			return rule.Category, true
		}
	}
	return "", false
}
