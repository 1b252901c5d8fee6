package httpapi

import (
	"net/http"
	"time"

	"github.com/custodia-labs/markscan/internal/core/domain"
)

type searchRequest struct {
	Name   string `json:"name" validate:"required,max=200"`
	TURegd string `json:"tuRegd" validate:"required,max=100"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=256"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.ports.Activity == nil {
		writeJSON(w, http.StatusOK, domain.Health{Status: "ok", CheckedAt: time.Now().UTC()})
		return
	}
	writeJSON(w, http.StatusOK, s.ports.Activity.Health(r.Context()))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	record, err := s.ports.Search.Lookup(r.Context(), req.Name, req.TURegd)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	session, err := s.ports.Auth.Login(r.Context(), req.Username, req.Password, clientKey(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		Token:     session.Token,
		Username:  session.Username,
		ExpiresAt: session.ExpiresAt,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	session := sessionFrom(r.Context())
	if err := s.ports.Auth.Logout(r.Context(), session.Token); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
