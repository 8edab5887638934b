package http

import (
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/report"
)

// formatAmount renders a stored amount, falling back to the stored text when
// it does not parse.
func formatAmount(a core.Amount) string {
	d, err := a.Decimal()
	if err != nil {
		return a.String()
	}
	return report.FormatBRL(d)
}

// formatDate turns an ISO date into DD/MM/YYYY; anything else is returned as is.
func formatDate(iso string) string {
	d, err := core.ParseDate(iso)
	if err != nil {
		return iso
	}
	return d.Format("02/01/2006")
}

// sanitizeInput removes control characters except tab and newlines, then
// trims whitespace.
func sanitizeInput(s string) string {
	s = strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
