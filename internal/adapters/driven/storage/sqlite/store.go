package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	sqlitedrv "modernc.org/sqlite" // SQLite driver
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/custodia-labs/markscan/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/markscan/internal/core/domain"
	"github.com/custodia-labs/markscan/internal/core/ports/driven"
)

// timeLayout is a fixed-width UTC layout so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store is a unified SQLite-based storage that provides access to
// all store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.markscan/data/markscan.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".markscan", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "markscan.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// RecordStore returns a RecordStore interface backed by this store.
func (s *Store) RecordStore() driven.RecordStore {
	return &recordStore{store: s}
}

// AdminStore returns an AdminStore interface backed by this store.
func (s *Store) AdminStore() driven.AdminStore {
	return &adminStore{store: s}
}

// SessionStore returns a SessionStore interface backed by this store.
func (s *Store) SessionStore() driven.SessionStore {
	return &sessionStore{store: s}
}

// SemesterStore returns a SemesterStore interface backed by this store.
func (s *Store) SemesterStore() driven.SemesterStore {
	return &semesterStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if err := s.applyMigration(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// applyMigration executes one migration and records its version atomically.
func (s *Store) applyMigration(version int, content string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(content); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// ==================== Record Store ====================

// recordStore implements driven.RecordStore.
type recordStore struct {
	store *Store
}

var _ driven.RecordStore = (*recordStore)(nil)

const recordColumns = `id, name, tu_regd, result, grade, marks, total_marks, subject, program, faculty,
	needs_review, image_path, uploaded_by, semester_id, created_at`

// Save stores or updates a record. A different record with the same
// identity is rejected with domain.ErrAlreadyExists.
func (s *recordStore) Save(ctx context.Context, record *domain.StudentRecord) error {
	if record == nil {
		return domain.ErrInvalidInput
	}
	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO records (id, name, tu_regd, name_key, regd_key, result, grade, marks, total_marks,
			subject, program, faculty, needs_review, image_path, uploaded_by, semester_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			tu_regd = excluded.tu_regd,
			name_key = excluded.name_key,
			regd_key = excluded.regd_key,
			result = excluded.result,
			grade = excluded.grade,
			marks = excluded.marks,
			total_marks = excluded.total_marks,
			subject = excluded.subject,
			program = excluded.program,
			faculty = excluded.faculty,
			needs_review = excluded.needs_review,
			image_path = excluded.image_path,
			uploaded_by = excluded.uploaded_by,
			semester_id = excluded.semester_id,
			created_at = excluded.created_at
	`, record.ID, record.Name, record.TURegd, record.NameKey(), record.RegdKey(), string(record.Result),
		nullStringPtr(record.Grade), nullIntPtr(record.Marks), nullIntPtr(record.TotalMarks),
		nullStringPtr(record.Subject), nullStringPtr(record.Program), nullStringPtr(record.Faculty),
		boolToInt(record.NeedsReview), record.ImagePath, record.UploadedBy, nullString(record.SemesterID),
		formatTime(createdAt))

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("saving record: %w", err)
	}
	return nil
}

// Get retrieves a record by ID.
func (s *recordStore) Get(ctx context.Context, id string) (*domain.StudentRecord, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM records WHERE id = ?`, id)
	return scanRecord(row)
}

// FindByIdentity retrieves the record matching name and registration.
func (s *recordStore) FindByIdentity(ctx context.Context, name, tuRegd string) (*domain.StudentRecord, error) {
	nameKey, regdKey := domain.IdentityKey(name, tuRegd)
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE name_key = ? AND regd_key = ?`, nameKey, regdKey)
	return scanRecord(row)
}

// List returns records newest first.
func (s *recordStore) List(ctx context.Context, filter domain.RecordFilter) ([]domain.StudentRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM records`
	var args []any
	if filter.SemesterID != "" {
		query += ` WHERE semester_id = ?`
		args = append(args, filter.SemesterID)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = -1
	}
	query += ` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`
	args = append(args, limit, max(filter.Offset, 0))

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	records := []domain.StudentRecord{}
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}

	return records, nil
}

// Count returns the number of stored records.
func (s *recordStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return count, nil
}

// Delete removes a record.
func (s *recordStore) Delete(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM records WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting record: %w", err)
	}
	return requireAffected(res)
}

// DeleteBySemester removes every record of a semester.
func (s *recordStore) DeleteBySemester(ctx context.Context, semesterID string) (int, error) {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM records WHERE semester_id = ?", semesterID)
	if err != nil {
		return 0, fmt.Errorf("deleting semester records: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted records: %w", err)
	}
	return int(n), nil
}

// ==================== Helper Functions ====================

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRecord scans a single record in recordColumns order.
func scanRecord(row rowScanner) (*domain.StudentRecord, error) {
	var record domain.StudentRecord
	var result, createdAt string
	var grade, subject, program, faculty, semesterID sql.NullString
	var marks, totalMarks sql.NullInt64
	var needsReview int

	if err := row.Scan(&record.ID, &record.Name, &record.TURegd, &result, &grade, &marks, &totalMarks,
		&subject, &program, &faculty, &needsReview, &record.ImagePath, &record.UploadedBy,
		&semesterID, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning record: %w", err)
	}

	record.Result = domain.ResultStatus(result)
	record.Grade = fromNullString(grade)
	record.Marks = fromNullInt(marks)
	record.TotalMarks = fromNullInt(totalMarks)
	record.Subject = fromNullString(subject)
	record.Program = fromNullString(program)
	record.Faculty = fromNullString(faculty)
	record.NeedsReview = needsReview == 1
	record.SemesterID = semesterID.String
	record.CreatedAt = parseTime(createdAt)

	return &record, nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var sqliteErr *sqlitedrv.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}

// requireAffected maps a statement that touched no rows to domain.ErrNotFound.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking affected rows: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// formatTime formats a time in the fixed-width UTC layout.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// formatNullableTime formats a time, or returns nil for a nil pointer.
func formatNullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

// parseTime parses a stored timestamp. Returns zero time on parse error.
func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// parseNullableTime parses a nullable stored timestamp.
func parseNullableTime(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t := parseTime(s.String)
	return &t
}

// nullString returns nil for empty strings, otherwise the string.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullStringPtr(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullIntPtr(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}

func fromNullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	return &s.String
}

func fromNullInt(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

// boolToInt converts a bool to 1 (true) or 0 (false).
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
