package services

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	types "github.com/PavithraSukumar6/kbn-dss-backend/internal/domain"
)

// ValidationFinding is one advisory field-level problem. Findings are audited
// and, under strict mode, block persistence.
type ValidationFinding struct {
	Field   string
	Message string
}

func (f ValidationFinding) String() string {
	return fmt.Sprintf("%s: %s", f.Field, f.Message)
}

var dateLayouts = []string{
	"02-01-2006", "02/01/2006",
	"01-02-2006", "01/02/2006",
	"2006-01-02", "2006/01/02",
	"2006.1.2", "2.1.2006",
}

func parseLooseDate(s string) bool {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// ValidateMetadata checks the final category+metadata pair for field-shape
// problems.
func ValidateMetadata(category string, metadata map[string]string) []ValidationFinding {
	var findings []ValidationFinding

	switch category {
	case types.CategoryInvoice:
		for _, field := range []string{"date", "due_date"} {
			if v, ok := metadata[field]; ok && v != "" && !parseLooseDate(v) {
				findings = append(findings, ValidationFinding{Field: field, Message: fmt.Sprintf("%q is not a parseable date", v)})
			}
		}
		for _, field := range []string{"total_amount", "amount"} {
			v, ok := metadata[field]
			if !ok || v == "" {
				continue
			}
			cleaned := strings.ReplaceAll(v, ",", "")
			if _, err := strconv.ParseFloat(cleaned, 64); err != nil {
				findings = append(findings, ValidationFinding{Field: field, Message: fmt.Sprintf("%q is not numeric", v)})
			}
		}
	case types.CategoryContract:
		if v, ok := metadata["contract_date"]; ok && v != "" && !parseLooseDate(v) {
			findings = append(findings, ValidationFinding{Field: "contract_date", Message: fmt.Sprintf("%q is not a parseable date", v)})
		}
	case types.CategoryID:
		if v, ok := metadata["id_number"]; ok && len(v) < 6 {
			findings = append(findings, ValidationFinding{Field: "id_number", Message: "shorter than 6 characters"})
		}
	}
	return findings
}
