package http

import (
	"errors"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.sessions.FromRequest(r); ok {
		Redirect("/").Write(w, r)
		return
	}
	s.render(w, r, http.StatusOK, "login.html", authPage{page: page{Title: "Entrar"}})
}

func (s *Server) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.sessions.FromRequest(r); ok {
		Redirect("/").Write(w, r)
		return
	}
	s.render(w, r, http.StatusOK, "login.html", authPage{page: page{Title: "Criar conta"}, Register: true})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	form, resp := RequireFields(w, r, "username", "password")
	if resp != nil {
		resp.Write(w, r)
		return
	}
	// Passwords are compared as typed.
	username, err := s.auth.Authenticate(r.Context(), form["username"], r.PostForm.Get("password"))
	if errors.Is(err, services.ErrInvalidCredentials) {
		p := authPage{page: page{Title: "Entrar", Error: services.UserMessage(err)}}
		p.Form.Username = form["username"]
		s.render(w, r, http.StatusOK, "login.html", p)
		return
	}
	if err != nil {
		s.serverError(w, r, log.OpLogin, err)
		return
	}
	s.sessions.Start(w, username)
	log.FromContext(r.Context()).InfoContext(r.Context(), "User logged in",
		log.FieldUsername, username, log.FieldOperation, log.OpLogin)
	Redirect("/").Write(w, r)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	form, resp := RequireFields(w, r, "username", "password")
	if resp != nil {
		resp.Write(w, r)
		return
	}
	username, err := s.auth.Register(r.Context(), form["username"], r.PostForm.Get("password"))
	if err != nil {
		status := http.StatusOK
		switch {
		case errors.Is(err, storage.ErrUserExists):
		case errors.Is(err, core.ErrInvalidUsername), errors.Is(err, core.ErrEmptyPassword):
			status = http.StatusUnprocessableEntity
		default:
			s.serverError(w, r, log.OpRegister, err)
			return
		}
		p := authPage{page: page{Title: "Criar conta", Error: services.UserMessage(err)}, Register: true}
		p.Form.Username = form["username"]
		s.render(w, r, status, "login.html", p)
		return
	}
	s.sessions.Start(w, username)
	Redirect("/").Write(w, r)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.End(w, r)
	Redirect(loginPath).Write(w, r)
}
