package http

import (
	"errors"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	l, err := s.ledger.Ledger(r.Context())
	if err != nil {
		s.serverError(w, r, log.OpRead, err)
		return
	}
	s.render(w, r, http.StatusOK, "dashboard.html", newDashboardPage(r.Context(), l, s.ledger.Today()))
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	l, err := s.ledger.Ledger(r.Context())
	if err != nil {
		s.serverError(w, r, log.OpList, err)
		return
	}
	s.render(w, r, http.StatusOK, "transactions.html", newTransactionsPage(r.Context(), l))
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	form, resp := RequireFields(w, r, "type", "date", "description", "amount", "category")
	if resp != nil {
		resp.Write(w, r)
		return
	}
	in := services.TransactionInput{
		Type:          form["type"],
		Date:          form["date"],
		Description:   form["description"],
		Amount:        form["amount"],
		Category:      form["category"],
		PaymentMethod: OptionalField(r.PostForm, "payment_method"),
	}
	_, err := s.ledger.AddTransaction(r.Context(), in)
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		l, lerr := s.ledger.Ledger(r.Context())
		if lerr != nil {
			s.serverError(w, r, log.OpRead, lerr)
			return
		}
		p := newDashboardPage(r.Context(), l, s.ledger.Today())
		p.Error = verr.Message()
		p.Form = in
		s.render(w, r, http.StatusUnprocessableEntity, "dashboard.html", p)
		return
	}
	if err != nil {
		s.serverError(w, r, log.OpCreate, err)
		return
	}
	Redirect("/").Write(w, r)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if _, err := s.ledger.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		s.serverError(w, r, log.OpDelete, err)
		return
	}
	Redirect("/transactions").Write(w, r)
}

func (s *Server) handleInvestments(w http.ResponseWriter, r *http.Request) {
	l, err := s.ledger.Ledger(r.Context())
	if err != nil {
		s.serverError(w, r, log.OpList, err)
		return
	}
	s.render(w, r, http.StatusOK, "investments.html", newInvestmentsPage(r.Context(), l))
}

func (s *Server) handleAddInvestment(w http.ResponseWriter, r *http.Request) {
	form, resp := RequireFields(w, r, "name", "type", "amount")
	if resp != nil {
		resp.Write(w, r)
		return
	}
	in := services.InvestmentInput{
		Name:        form["name"],
		Type:        form["type"],
		Amount:      form["amount"],
		Description: OptionalField(r.PostForm, "description"),
	}
	_, err := s.ledger.AddInvestment(r.Context(), in)
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		l, lerr := s.ledger.Ledger(r.Context())
		if lerr != nil {
			s.serverError(w, r, log.OpRead, lerr)
			return
		}
		p := newInvestmentsPage(r.Context(), l)
		p.Error = verr.Message()
		p.Form = in
		s.render(w, r, http.StatusUnprocessableEntity, "investments.html", p)
		return
	}
	if err != nil {
		s.serverError(w, r, log.OpCreate, err)
		return
	}
	Redirect("/investments").Write(w, r)
}

func (s *Server) handleDeleteInvestment(w http.ResponseWriter, r *http.Request) {
	if _, err := s.ledger.DeleteInvestment(r.Context(), r.PathValue("id")); err != nil {
		s.serverError(w, r, log.OpDelete, err)
		return
	}
	Redirect("/investments").Write(w, r)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	l, err := s.ledger.Ledger(r.Context())
	if err != nil {
		s.serverError(w, r, log.OpRead, err)
		return
	}
	p := newSettingsPage(r.Context(), l)
	p.Saved = r.URL.Query().Get("saved") == "1"
	s.render(w, r, http.StatusOK, "settings.html", p)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	form, resp := RequireFields(w, r, "display_name")
	if resp != nil {
		resp.Write(w, r)
		return
	}
	if err := s.ledger.UpdateSettings(r.Context(), form["display_name"]); err != nil {
		s.serverError(w, r, log.OpUpdate, err)
		return
	}
	Redirect("/settings?saved=1").Write(w, r)
}

func (s *Server) handleDanger(w http.ResponseWriter, r *http.Request) {
	if _, err := s.ledger.Reset(r.Context(), core.DangerAction(r.PathValue("mode"))); err != nil {
		s.serverError(w, r, log.OpReset, err)
		return
	}
	Redirect("/settings").Write(w, r)
}
