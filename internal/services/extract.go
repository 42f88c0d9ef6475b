package services

import (
	"regexp"
	"strings"

	types "github.com/PavithraSukumar6/kbn-dss-backend/internal/domain"
)

// Extract runs the category's regex templates over the text and returns the
// structured field map. Categories without templates yield an empty map.
func Extract(category, text string) map[string]string {
	switch category {
	case types.CategoryInvoice:
		return extractInvoice(text)
	case types.CategoryContract:
		return extractContract(text)
	case types.CategoryID:
		return extractID(text)
	}
	return map[string]string{}
}

var (
	invoiceNumberRe        = regexp.MustCompile(`(?i)(?:INV[- ]?\d+)|(?:Invoice\s*#[:\.]?\s*([\w-]+))`)
	invoiceNumberGenericRe = regexp.MustCompile(`(?i)Invoice\s*(?:No|Number)?[:\.]?\s*([A-Z0-9-]+)`)
	invoiceDateRe          = regexp.MustCompile(`(\d{2}[/-]\d{2}[/-]\d{4})`)
	invoiceAmountRe        = regexp.MustCompile(`(?i)(?:Total|Amount|Balance|Due)[\s:$]*([\d,\.]+)`)
	billToRe               = regexp.MustCompile(`(?i)(?:Bill|Ship)\s*To[:\.]?\s*([^\n]+)`)
	fromRe                 = regexp.MustCompile(`(?i)(?:From|Vendor)[:\.]?\s*([^\n]+)`)

	contractDateRe    = regexp.MustCompile(`(?i)(?:Date|Effective)[\s:]*(\d{1,4}[-/\.]\d{1,2}[-/\.]\d{1,4})`)
	contractPartiesRe = regexp.MustCompile(`(?i)Between\s+(.*?)\s+and\s+(.*?)[\.,\n]`)

	idNumberRe = regexp.MustCompile(`(?i)(?:ID|No|Number)[\s\.:]*([A-Z0-9-]{6,})`)
)

func extractInvoice(text string) map[string]string {
	data := map[string]string{}

	if m := invoiceNumberRe.FindStringSubmatch(text); m != nil {
		if m[1] != "" {
			data["invoice_number"] = m[1]
		} else {
			data["invoice_number"] = m[0]
		}
	} else if m := invoiceNumberGenericRe.FindStringSubmatch(text); m != nil {
		data["invoice_number"] = m[1]
	}

	if m := invoiceDateRe.FindStringSubmatch(text); m != nil {
		data["date"] = m[1]
	}
	if m := invoiceAmountRe.FindStringSubmatch(text); m != nil {
		data["total_amount"] = m[1]
	}
	if m := billToRe.FindStringSubmatch(text); m != nil {
		data["addressed_company"] = strings.TrimSpace(m[1])
	}

	if m := fromRe.FindStringSubmatch(text); m != nil {
		data["issuing_company"] = strings.TrimSpace(m[1])
	} else {
		// Headers usually lead with the issuing company.
		for _, line := range strings.Split(text, "\n") {
			if s := strings.TrimSpace(line); s != "" {
				data["issuing_company"] = s
				break
			}
		}
	}
	return data
}

func extractContract(text string) map[string]string {
	data := map[string]string{}
	if m := contractDateRe.FindStringSubmatch(text); m != nil {
		data["contract_date"] = m[1]
	}
	if m := contractPartiesRe.FindStringSubmatch(text); m != nil {
		data["party_1"] = strings.TrimSpace(m[1])
		data["party_2"] = strings.TrimSpace(m[2])
	}
	return data
}

func extractID(text string) map[string]string {
	data := map[string]string{}
	if m := idNumberRe.FindStringSubmatch(text); m != nil {
		data["id_number"] = m[1]
	}
	return data
}
