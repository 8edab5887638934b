// Package memory is an in-process ReportWriter for tests and local runs
// without Google credentials.
package memory

import (
	"context"
	"sort"
	"sync"

	"fintrack/internal/sheets"
)

type Writer struct {
	mu      sync.Mutex
	reports map[string][][]string
	writes  int
	fail    error
}

var _ sheets.ReportWriter = (*Writer)(nil)

func New() *Writer {
	return &Writer{reports: make(map[string][][]string)}
}

// WriteReport stores a copy of rows under the user's tab name.
func (w *Writer) WriteReport(ctx context.Context, username string, rows [][]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.fail != nil {
		return w.fail
	}
	cp := make([][]string, len(rows))
	for i, r := range rows {
		cp[i] = append([]string(nil), r...)
	}
	w.reports[sheets.TabName(username)] = cp
	w.writes++
	return nil
}

// Report returns what was last written for username.
func (w *Writer) Report(username string) ([][]string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	rows, ok := w.reports[sheets.TabName(username)]
	return rows, ok
}

// Tabs lists the tabs written so far, sorted.
func (w *Writer) Tabs() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.reports))
	for tab := range w.reports {
		out = append(out, tab)
	}
	sort.Strings(out)
	return out
}

// Writes counts successful WriteReport calls.
func (w *Writer) Writes() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writes
}

// FailWith makes every following write return err; nil restores success.
func (w *Writer) FailWith(err error) {
	w.mu.Lock()
	w.fail = err
	w.mu.Unlock()
}
