package http

import (
	"bytes"
	"net/http"
	"strconv"

	"fintrack/internal/export"
	"fintrack/internal/log"
	"fintrack/internal/session"
)

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	l, err := s.ledger.Ledger(r.Context())
	if err != nil {
		s.serverError(w, r, log.OpRead, err)
		return
	}
	s.render(w, r, http.StatusOK, "reports.html", newReportsPage(r.Context(), l))
}

// handleExport streams the user's ledger as CSV. The file is built in memory
// first so a failure still yields a proper 500.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	l, err := s.ledger.Ledger(r.Context())
	if err != nil {
		s.serverError(w, r, log.OpExport, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, l); err != nil {
		s.serverError(w, r, log.OpExport, err)
		return
	}
	username, _ := session.UserFrom(r.Context())
	log.FromContext(r.Context()).InfoContext(r.Context(), "Ledger exported",
		log.FieldOperation, log.OpExport,
		"transactions", len(l.Transactions),
		"investments", len(l.Investments))
	NewResponse().
		Attachment(export.ContentType, export.FileName(username)).
		Header("Content-Length", strconv.Itoa(buf.Len())).
		Body(buf.Bytes()).
		Write(w, r)
}
