package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/net/websocket"

	"github.com/custodia-labs/markscan/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/markscan/internal/core/domain"
	"github.com/custodia-labs/markscan/internal/core/services"
)

const aliceText = "Student Name: Alice Sharma T.U. Reg No: 7-2-123-45-2018 Grade: A Result: Pass"

// stubRecognizer returns text by filename.
type stubRecognizer struct {
	byFile map[string]string
}

func (s *stubRecognizer) Name() string { return "stub" }

func (s *stubRecognizer) Recognize(_ context.Context, img domain.Image) (string, error) {
	return s.byFile[img.Filename], nil
}

type testEnv struct {
	server   *Server
	handler  http.Handler
	token    string
	adminID  string
	records  *memory.RecordStore
	activity *services.ActivityService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	records := memory.NewRecordStore()
	semesterStore := memory.NewSemesterStore()
	activity := services.NewActivityService(20, records, "stub")
	admins := services.NewAdminService(memory.NewAdminStore(), activity, bcrypt.MinCost)
	auth := services.NewAuthService(admins, memory.NewSessionStore(), activity, time.Hour, 100)
	recognizer := &stubRecognizer{byFile: map[string]string{
		"alice.png":   aliceText,
		"partial.png": "Student Name: Nobody Known Result: Pass",
	}}

	ports := &Ports{
		Search:    services.NewSearchService(records, activity),
		Auth:      auth,
		Admins:    admins,
		Semesters: services.NewSemesterService(semesterStore, records, activity),
		Activity:  activity,
		Records: services.NewRecordService(recognizer, records,
			services.WithSemesterStore(semesterStore),
			services.WithActivitySink(activity)),
	}
	server, err := NewServer(ports)
	require.NoError(t, err)
	t.Cleanup(server.Close)

	admin, err := admins.Create(ctx, "registrar", "correct-horse")
	require.NoError(t, err)
	session, err := auth.Login(ctx, "registrar", "correct-horse", "setup")
	require.NoError(t, err)

	return &testEnv{
		server:   server,
		handler:  server.Handler(),
		token:    session.Token,
		adminID:  admin.ID,
		records:  records,
		activity: activity,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) upload(t *testing.T, path, field string, files map[string]string, order []string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, name := range order {
		part, err := mw.CreateFormFile(field, name)
		require.NoError(t, err)
		_, err = part.Write([]byte(files[name]))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+e.token)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func seedRecord(t *testing.T, records *memory.RecordStore) *domain.StudentRecord {
	t.Helper()
	record := &domain.StudentRecord{
		ID: "rec-1",
		OCRResult: domain.OCRResult{
			Name:   "Alice Sharma",
			TURegd: "7-2-123-45-2018",
			Result: domain.StatusPassed,
		},
		UploadedBy: "registrar",
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, records.Save(context.Background(), record))
	return record
}

func TestNewServer_RequiresPorts(t *testing.T) {
	_, err := NewServer(&Ports{})
	assert.ErrorIs(t, err, ErrMissingSearchService)

	_, err = NewServer(&Ports{Search: services.NewSearchService(nil, nil)})
	assert.ErrorIs(t, err, ErrMissingAuthService)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/api/health", nil, false)

	require.Equal(t, http.StatusOK, rec.Code)
	health := decode[domain.Health](t, rec)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "stub", health.OCREngine)
}

func TestSearch(t *testing.T) {
	env := newTestEnv(t)
	seedRecord(t, env.records)

	t.Run("found ignoring case and spaces", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/results/search",
			map[string]string{"name": "  alice SHARMA ", "tuRegd": "7-2-123-45-2018"}, false)
		require.Equal(t, http.StatusOK, rec.Code)
		got := decode[domain.StudentRecord](t, rec)
		assert.Equal(t, "rec-1", got.ID)
		assert.Equal(t, domain.StatusPassed, got.Result)
	})

	t.Run("not found", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/results/search",
			map[string]string{"name": "Bob", "tuRegd": "1-1-1"}, false)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing field", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/results/search", map[string]string{"name": "Alice"}, false)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decode[errorResponse](t, rec).Error, "tuRegd is required")
	})

	t.Run("unknown field", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/results/search", `{"name":"a","tuRegd":"b","x":1}`, false)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty body", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/results/search", "", false)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLoginLogout(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/login",
		map[string]string{"username": "registrar", "password": "wrong-password"}, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/auth/login",
		map[string]string{"username": "Registrar", "password": "correct-horse"}, false)
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode[loginResponse](t, rec)
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, "registrar", login.Username)
	assert.True(t, login.ExpiresAt.After(time.Now()))

	env.token = login.Token
	rec = env.do(t, http.MethodPost, "/api/auth/logout", nil, true)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/admins", nil, true)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/records", nil, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")

	env.token = "not-a-token"
	rec = env.do(t, http.MethodGet, "/api/records", nil, true)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdmins(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/admins",
		map[string]string{"username": "clerk", "password": "short"}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/admins",
		map[string]string{"username": "clerk", "password": "long-enough"}, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	clerk := decode[domain.Admin](t, rec)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = env.do(t, http.MethodPost, "/api/admins",
		map[string]string{"username": "CLERK", "password": "long-enough"}, true)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/admins", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Admin](t, rec), 2)

	rec = env.do(t, http.MethodDelete, "/api/admins/"+clerk.ID, nil, true)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/admins/"+env.adminID, nil, true)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSemesters(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/semesters", map[string]any{"year": 2024}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/semesters", map[string]any{"name": "Fall 2024", "year": 2024}, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	fall := decode[domain.Semester](t, rec)
	assert.False(t, fall.Active)

	rec = env.do(t, http.MethodPost, "/api/semesters/"+fall.ID+"/activate", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[domain.Semester](t, rec).Active)

	rec = env.do(t, http.MethodPut, "/api/semesters/"+fall.ID, map[string]any{"name": "Autumn 2024", "year": 2024}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Autumn 2024", decode[domain.Semester](t, rec).Name)

	rec = env.do(t, http.MethodGet, "/api/semesters", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Semester](t, rec), 1)

	rec = env.do(t, http.MethodDelete, "/api/semesters/"+fall.ID+"?cascade=maybe", nil, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/semesters/"+fall.ID+"?cascade=true", nil, true)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/semesters/missing/activate", nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpload(t *testing.T) {
	env := newTestEnv(t)

	files := map[string]string{
		"alice.png": "png bytes",
		"notes.txt": "hello",
		"blank.png": "png bytes",
	}
	rec := env.upload(t, "/api/uploads", "files", files, []string{"alice.png", "notes.txt", "blank.png"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	report := decode[domain.BatchReport](t, rec)
	require.Len(t, report.Outcomes, 3)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 2, report.Failed)

	assert.Equal(t, "alice.png", report.Outcomes[0].Filename)
	require.NotNil(t, report.Outcomes[0].Record)
	assert.Equal(t, "Alice Sharma", report.Outcomes[0].Record.Name)
	assert.Equal(t, "registrar", report.Outcomes[0].Record.UploadedBy)

	assert.Equal(t, "notes.txt", report.Outcomes[1].Filename)
	assert.Contains(t, report.Outcomes[1].Error, "unsupported file type")

	assert.Equal(t, "blank.png", report.Outcomes[2].Filename)
	assert.NotEmpty(t, report.Outcomes[2].Error)

	count, err := env.records.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestUpload_NoFiles(t *testing.T) {
	env := newTestEnv(t)
	rec := env.upload(t, "/api/uploads", "other", map[string]string{"a.png": "x"}, []string{"a.png"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpload_TooLarge(t *testing.T) {
	env := newTestEnv(t)
	env.server.maxUploadBytes = 64
	rec := env.upload(t, "/api/uploads", "files",
		map[string]string{"alice.png": strings.Repeat("x", 1024)}, []string{"alice.png"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorResponse](t, rec).Error, "exceeds")
}

func TestExtract(t *testing.T) {
	env := newTestEnv(t)

	t.Run("complete", func(t *testing.T) {
		rec := env.upload(t, "/api/extract", "file", map[string]string{"alice.png": "x"}, []string{"alice.png"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		result := decode[domain.OCRResult](t, rec)
		assert.Equal(t, "Alice Sharma", result.Name)
		assert.Equal(t, domain.StatusPassed, result.Result)
	})

	t.Run("partial", func(t *testing.T) {
		rec := env.upload(t, "/api/extract", "file", map[string]string{"partial.png": "x"}, []string{"partial.png"})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
		resp := decode[errorResponse](t, rec)
		assert.Equal(t, domain.ExtractionHint, resp.Hint)
		require.NotNil(t, resp.Result)
		assert.Equal(t, domain.RegistrationNotFound, resp.Result.TURegd)
	})

	t.Run("unsupported", func(t *testing.T) {
		rec := env.upload(t, "/api/extract", "file", map[string]string{"a.pdf": "x"}, []string{"a.pdf"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	count, err := env.records.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRecords(t *testing.T) {
	env := newTestEnv(t)
	seedRecord(t, env.records)

	rec := env.do(t, http.MethodGet, "/api/records?limit=10", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.StudentRecord](t, rec), 1)

	rec = env.do(t, http.MethodGet, "/api/records?limit=-1", nil, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/records?offset=abc", nil, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/records/rec-1", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Alice Sharma", decode[domain.StudentRecord](t, rec).Name)

	rec = env.do(t, http.MethodDelete, "/api/records/rec-1", nil, true)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/records/rec-1", nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecentActivity(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/activity?n=10", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	events := decode[[]domain.Activity](t, rec)
	require.NotEmpty(t, events)
	assert.Equal(t, domain.ActivityLogin, events[len(events)-1].Kind)

	rec = env.do(t, http.MethodGet, "/api/activity?n=0", nil, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestActivityStream(t *testing.T) {
	env := newTestEnv(t)
	ts := httptest.NewServer(env.handler)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/activity/ws?token=" + env.token
	conn, err := websocket.Dial(wsURL, "", ts.URL)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var msg streamMessage
	require.NoError(t, websocket.JSON.Receive(conn, &msg))
	assert.Equal(t, "health", msg.Type)
	require.NotNil(t, msg.Health)

	// Backlog holds the admin_created and login events from setup.
	for i := 0; i < 2; i++ {
		msg = streamMessage{}
		require.NoError(t, websocket.JSON.Receive(conn, &msg))
		assert.Equal(t, "activity", msg.Type)
	}

	require.Eventually(t, func() bool {
		return env.activity.Health(context.Background()).Subscribers == 1
	}, 2*time.Second, 10*time.Millisecond)

	env.activity.Record(domain.Activity{Kind: domain.ActivitySearch, Message: "live event", At: time.Now()})
	msg = streamMessage{}
	require.NoError(t, websocket.JSON.Receive(conn, &msg))
	require.NotNil(t, msg.Activity)
	assert.Equal(t, "live event", msg.Activity.Message)
}

func TestActivityStream_RequiresToken(t *testing.T) {
	env := newTestEnv(t)
	ts := httptest.NewServer(env.handler)
	defer ts.Close()

	_, err := websocket.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/api/activity/ws", "", ts.URL)
	assert.Error(t, err)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrInvalidInput, http.StatusBadRequest},
		{domain.ErrUnauthorized, http.StatusUnauthorized},
		{fmt.Errorf("wrapped: %w", domain.ErrNotFound), http.StatusNotFound},
		{domain.ErrAlreadyExists, http.StatusConflict},
		{domain.ErrLastAdmin, http.StatusConflict},
		{domain.ErrRecognizerUnavailable, http.StatusServiceUnavailable},
		{domain.NewExtractionError("a.png", "no name", nil), http.StatusUnprocessableEntity},
		{domain.ErrRateLimited, http.StatusTooManyRequests},
		{domain.ErrNotImplemented, http.StatusNotImplemented},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestWriteError_HidesInternalErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("db password is hunter2"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "hunter2")
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/records?token=q", nil)
	req.Header.Set("Authorization", "bearer abc")
	assert.Equal(t, "abc", bearerToken(req))

	req = httptest.NewRequest(http.MethodGet, "/api/records?token=q", nil)
	assert.Empty(t, bearerToken(req))

	req = httptest.NewRequest(http.MethodGet, "/api/activity/ws?token=q", nil)
	assert.Equal(t, "q", bearerToken(req))

	req = httptest.NewRequest(http.MethodGet, "/api/records", nil)
	req.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, bearerToken(req))
}
