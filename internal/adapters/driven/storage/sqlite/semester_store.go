package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/markscan/internal/core/domain"
	"github.com/custodia-labs/markscan/internal/core/ports/driven"
)

// semesterStore implements driven.SemesterStore.
type semesterStore struct {
	store *Store
}

var _ driven.SemesterStore = (*semesterStore)(nil)

const semesterColumns = `id, name, year, start_date, end_date, active, created_at, updated_at`

// Save stores or updates a semester. Names are unique case-insensitively.
func (s *semesterStore) Save(ctx context.Context, semester *domain.Semester) error {
	if semester == nil {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO semesters (`+semesterColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			year = excluded.year,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			active = excluded.active,
			updated_at = excluded.updated_at
	`, semester.ID, semester.Name, semester.Year,
		formatNullableTime(semester.StartDate), formatNullableTime(semester.EndDate),
		boolToInt(semester.Active), formatTime(semester.CreatedAt), formatTime(semester.UpdatedAt))

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("saving semester: %w", err)
	}
	return nil
}

// Get retrieves a semester by ID.
func (s *semesterStore) Get(ctx context.Context, id string) (*domain.Semester, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+semesterColumns+` FROM semesters WHERE id = ?`, id)
	return scanSemester(row)
}

// List returns all semesters, most recent year first.
func (s *semesterStore) List(ctx context.Context) ([]domain.Semester, error) {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT `+semesterColumns+` FROM semesters ORDER BY year DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("querying semesters: %w", err)
	}
	defer rows.Close()

	semesters := []domain.Semester{}
	for rows.Next() {
		semester, err := scanSemester(rows)
		if err != nil {
			return nil, err
		}
		semesters = append(semesters, *semester)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating semesters: %w", err)
	}

	return semesters, nil
}

// Delete removes a semester. Its records are left in place.
func (s *semesterStore) Delete(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM semesters WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting semester: %w", err)
	}
	return requireAffected(res)
}

// Activate marks one semester active and every other one inactive.
func (s *semesterStore) Activate(ctx context.Context, id string) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM semesters WHERE id = ?", id).Scan(&exists); err != nil {
		return fmt.Errorf("checking semester: %w", err)
	}
	if exists == 0 {
		return domain.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, "UPDATE semesters SET active = (id = ?)", id); err != nil {
		return fmt.Errorf("activating semester: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Active returns the active semester.
func (s *semesterStore) Active(ctx context.Context) (*domain.Semester, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+semesterColumns+` FROM semesters WHERE active = 1 LIMIT 1`)
	return scanSemester(row)
}

func scanSemester(row rowScanner) (*domain.Semester, error) {
	var semester domain.Semester
	var startDate, endDate sql.NullString
	var createdAt, updatedAt string
	var active int

	if err := row.Scan(&semester.ID, &semester.Name, &semester.Year, &startDate, &endDate,
		&active, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning semester: %w", err)
	}

	semester.StartDate = parseNullableTime(startDate)
	semester.EndDate = parseNullableTime(endDate)
	semester.Active = active == 1
	semester.CreatedAt = parseTime(createdAt)
	semester.UpdatedAt = parseTime(updatedAt)

	return &semester, nil
}
