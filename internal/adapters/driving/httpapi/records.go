package httpapi

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/custodia-labs/markscan/internal/core/domain"
)

// multipartMemory is held in memory before parts spill to temp files.
const multipartMemory = 32 << 20

func (s *Server) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return fmt.Errorf("%w: upload exceeds %d bytes", domain.ErrInvalidInput, s.maxUploadBytes)
		}
		return fmt.Errorf("%w: malformed multipart form: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

func readPart(fh *multipart.FileHeader) (domain.Image, error) {
	f, err := fh.Open()
	if err != nil {
		return domain.Image{}, fmt.Errorf("opening %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return domain.Image{}, fmt.Errorf("reading %s: %w", fh.Filename, err)
	}
	contentType := domain.ContentTypeFor(fh.Filename)
	return domain.Image{Filename: fh.Filename, Data: data, ContentType: contentType}, nil
}

// handleUpload processes every file in the "files" field. Files with an
// unsupported extension fail on their own without reaching the recognizer.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.ports.Records == nil {
		writeError(w, domain.ErrNotImplemented)
		return
	}
	if err := s.parseMultipart(w, r); err != nil {
		writeError(w, err)
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		writeError(w, fmt.Errorf("%w: no files in field \"files\"", domain.ErrInvalidInput))
		return
	}

	uploader := sessionFrom(r.Context()).Username
	outcomes := make([]domain.FileOutcome, len(files))
	var uploads []domain.Upload
	var positions []int

	for i, fh := range files {
		outcomes[i].Filename = fh.Filename
		if !domain.IsSupportedImage(fh.Filename) {
			outcomes[i].Error = domain.NewExtractionError(fh.Filename, "unsupported file type", nil).Error()
			continue
		}
		img, err := readPart(fh)
		if err != nil {
			outcomes[i].Error = domain.NewExtractionError(fh.Filename, "unreadable upload", err).Error()
			continue
		}
		uploads = append(uploads, domain.Upload{Image: img, UploadedBy: uploader})
		positions = append(positions, i)
	}

	if len(uploads) > 0 {
		batch := s.ports.Records.ProcessBatch(r.Context(), uploads)
		for j, outcome := range batch.Outcomes {
			outcomes[positions[j]] = outcome
		}
	}

	report := domain.BatchReport{Outcomes: outcomes}
	for _, o := range outcomes {
		if o.Succeeded() {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}
	writeJSON(w, http.StatusOK, report)
}

// handleExtract runs a dry-run extraction of the single "file" field.
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if s.ports.Records == nil {
		writeError(w, domain.ErrNotImplemented)
		return
	}
	if err := s.parseMultipart(w, r); err != nil {
		writeError(w, err)
		return
	}
	defer r.MultipartForm.RemoveAll() //nolint:errcheck

	files := r.MultipartForm.File["file"]
	if len(files) != 1 {
		writeError(w, fmt.Errorf("%w: expected exactly one file in field \"file\"", domain.ErrInvalidInput))
		return
	}
	if !domain.IsSupportedImage(files[0].Filename) {
		writeError(w, fmt.Errorf("%w: unsupported file type %q", domain.ErrInvalidInput, files[0].Filename))
		return
	}
	img, err := readPart(files[0])
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := s.ports.Records.Extract(r.Context(), img)
	if err != nil {
		var exErr *domain.ExtractionError
		if errors.As(err, &exErr) && result.Result != "" {
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
				Error:  exErr.Filename + ": " + exErr.Reason,
				Hint:   exErr.Hint,
				Result: &result,
			})
			return
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	if s.ports.Records == nil {
		writeError(w, domain.ErrNotImplemented)
		return
	}
	q := r.URL.Query()
	filter := domain.RecordFilter{SemesterID: q.Get("semester")}

	var err error
	if filter.Limit, err = queryInt(q.Get("limit")); err != nil {
		writeError(w, fmt.Errorf("%w: limit: %v", domain.ErrInvalidInput, err))
		return
	}
	if filter.Offset, err = queryInt(q.Get("offset")); err != nil {
		writeError(w, fmt.Errorf("%w: offset: %v", domain.ErrInvalidInput, err))
		return
	}

	records, err := s.ports.Records.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	if s.ports.Records == nil {
		writeError(w, domain.ErrNotImplemented)
		return
	}
	record, err := s.ports.Records.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	if s.ports.Records == nil {
		writeError(w, domain.ErrNotImplemented)
		return
	}
	if err := s.ports.Records.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// queryInt parses a non-negative query integer. Empty means zero.
func queryInt(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errors.New("must not be negative")
	}
	return n, nil
}
