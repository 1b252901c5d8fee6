package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/custodia-labs/markscan/internal/core/domain"
)

type createAdminRequest struct {
	Username string `json:"username" validate:"required,min=3,max=32"`
	Password string `json:"password" validate:"required,min=8,max=256"`
}

type semesterRequest struct {
	Name      string     `json:"name" validate:"required,max=100"`
	Year      int        `json:"year" validate:"gte=0,lte=9999"`
	StartDate *time.Time `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
}

func (req semesterRequest) semester(id string) domain.Semester {
	return domain.Semester{
		ID:        id,
		Name:      req.Name,
		Year:      req.Year,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
}

// ==================== Admins ====================

func (s *Server) handleListAdmins(w http.ResponseWriter, r *http.Request) {
	if s.ports.Admins == nil {
		writeError(w, domain.ErrNotImplemented)
		return
	}
	admins, err := s.ports.Admins.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, admins)
}

func (s *Server) handleCreateAdmin(w http.ResponseWriter, r *http.Request) {
	if s.ports.Admins == nil {
		writeError(w, domain.ErrNotImplemented)
		return
	}
	var req createAdminRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	admin, err := s.ports.Admins.Create(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, admin)
}

func (s *Server) handleDeleteAdmin(w http.ResponseWriter, r *http.Request) {
	if s.ports.Admins == nil {
		writeError(w, domain.ErrNotImplemented)
		return
	}
	if err := s.ports.Admins.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ==================== Semesters ====================

func (s *Server) handleListSemesters(w http.ResponseWriter, r *http.Request) {
	if s.ports.Semesters == nil {
		writeError(w, domain.ErrNotImplemented)
		return
	}
	semesters, err := s.ports.Semesters.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, semesters)
}

func (s *Server) handleCreateSemester(w http.ResponseWriter, r *http.Request) {
	if s.ports.Semesters == nil {
		writeError(w, domain.ErrNotImplemented)
		return
	}
	var req semesterRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	semester, err := s.ports.Semesters.Create(r.Context(), req.semester(""))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, semester)
}

func (s *Server) handleUpdateSemester(w http.ResponseWriter, r *http.Request) {
	if s.ports.Semesters == nil {
		writeError(w, domain.ErrNotImplemented)
		return
	}
	var req semesterRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}
	semester, err := s.ports.Semesters.Update(r.Context(), req.semester(r.PathValue("id")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, semester)
}

func (s *Server) handleDeleteSemester(w http.ResponseWriter, r *http.Request) {
	if s.ports.Semesters == nil {
		writeError(w, domain.ErrNotImplemented)
		return
	}
	cascade := false
	if v := r.URL.Query().Get("cascade"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "cascade must be true or false"})
			return
		}
		cascade = b
	}
	if err := s.ports.Semesters.Delete(r.Context(), r.PathValue("id"), cascade); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleActivateSemester(w http.ResponseWriter, r *http.Request) {
	if s.ports.Semesters == nil {
		writeError(w, domain.ErrNotImplemented)
		return
	}
	semester, err := s.ports.Semesters.Activate(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, semester)
}
