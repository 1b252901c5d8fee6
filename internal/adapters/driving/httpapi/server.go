// Package httpapi serves the public result lookup and the admin API over
// HTTP.
//
// Routes:
//
//	GET    /api/health
//	POST   /api/results/search
//	POST   /api/auth/login
//	POST   /api/auth/logout                 (admin)
//	GET    /api/admins                      (admin)
//	POST   /api/admins                      (admin)
//	DELETE /api/admins/{id}                 (admin)
//	GET    /api/semesters                   (admin)
//	POST   /api/semesters                   (admin)
//	PUT    /api/semesters/{id}              (admin)
//	DELETE /api/semesters/{id}?cascade=true (admin)
//	POST   /api/semesters/{id}/activate     (admin)
//	POST   /api/uploads                     (admin, multipart "files")
//	POST   /api/extract                     (admin, multipart "file")
//	GET    /api/records                     (admin)
//	GET    /api/records/{id}                (admin)
//	DELETE /api/records/{id}                (admin)
//	GET    /api/activity                    (admin)
//	GET    /api/activity/ws                 (admin, WebSocket)
//
// Admin routes take "Authorization: Bearer <token>". The WebSocket route
// also accepts ?token= since browsers cannot set headers on it.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/markscan/internal/logger"
)

// DefaultMaxUploadBytes bounds a single upload request.
const DefaultMaxUploadBytes int64 = 64 << 20

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Server is the HTTP API.
type Server struct {
	ports    *Ports
	mux      *http.ServeMux
	validate *validator.Validate

	maxUploadBytes int64

	closeOnce sync.Once
	done      chan struct{}
}

// Option configures a Server.
type Option func(*Server)

// WithMaxUploadBytes bounds the size of upload and extract requests.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// NewServer creates a server for the given ports.
func NewServer(ports *Ports, opts ...Option) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports:          ports,
		mux:            http.NewServeMux(),
		validate:       newValidator(),
		maxUploadBytes: DefaultMaxUploadBytes,
		done:           make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("POST /api/results/search", s.handleSearch)
	s.mux.HandleFunc("POST /api/auth/login", s.handleLogin)

	s.mux.Handle("POST /api/auth/logout", s.requireAdmin(s.handleLogout))

	s.mux.Handle("GET /api/admins", s.requireAdmin(s.handleListAdmins))
	s.mux.Handle("POST /api/admins", s.requireAdmin(s.handleCreateAdmin))
	s.mux.Handle("DELETE /api/admins/{id}", s.requireAdmin(s.handleDeleteAdmin))

	s.mux.Handle("GET /api/semesters", s.requireAdmin(s.handleListSemesters))
	s.mux.Handle("POST /api/semesters", s.requireAdmin(s.handleCreateSemester))
	s.mux.Handle("PUT /api/semesters/{id}", s.requireAdmin(s.handleUpdateSemester))
	s.mux.Handle("DELETE /api/semesters/{id}", s.requireAdmin(s.handleDeleteSemester))
	s.mux.Handle("POST /api/semesters/{id}/activate", s.requireAdmin(s.handleActivateSemester))

	s.mux.Handle("POST /api/uploads", s.requireAdmin(s.handleUpload))
	s.mux.Handle("POST /api/extract", s.requireAdmin(s.handleExtract))
	s.mux.Handle("GET /api/records", s.requireAdmin(s.handleListRecords))
	s.mux.Handle("GET /api/records/{id}", s.requireAdmin(s.handleGetRecord))
	s.mux.Handle("DELETE /api/records/{id}", s.requireAdmin(s.handleDeleteRecord))

	s.mux.Handle("GET /api/activity", s.requireAdmin(s.handleRecentActivity))
	s.mux.Handle("GET /api/activity/ws", s.requireAdmin(s.handleActivityStream))
}

// Handler returns the root handler with logging and panic recovery.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.recoverPanics(s.mux))
}

// Close ends open activity streams.
func (s *Server) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	httpServer.RegisterOnShutdown(s.Close)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	logger.Info("http: listening on %s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
