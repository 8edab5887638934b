// Package sheets defines the outbound port for mirroring a user's report
// into a spreadsheet.
package sheets

import "context"

// ReportWriter replaces the mirrored report of username with rows. The first
// row is the header. Implementations must be safe for concurrent use.
type ReportWriter interface {
	WriteReport(ctx context.Context, username string, rows [][]string) error
}

// TabPrefix starts the name of every per-user tab.
const TabPrefix = "fintrack_"

// TabName returns the tab holding username's report.
func TabName(username string) string {
	return TabPrefix + username
}
