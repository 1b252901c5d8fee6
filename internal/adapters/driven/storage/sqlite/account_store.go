package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/markscan/internal/core/domain"
	"github.com/custodia-labs/markscan/internal/core/ports/driven"
)

// ==================== Admin Store ====================

// adminStore implements driven.AdminStore.
type adminStore struct {
	store *Store
}

var _ driven.AdminStore = (*adminStore)(nil)

// Save stores or updates an admin.
func (s *adminStore) Save(ctx context.Context, admin *domain.Admin) error {
	if admin == nil {
		return domain.ErrInvalidInput
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO admins (id, username, password_hash, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			username = excluded.username,
			password_hash = excluded.password_hash
	`, admin.ID, admin.Username, admin.PasswordHash, formatTime(admin.CreatedAt))

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("saving admin: %w", err)
	}
	return nil
}

// Get retrieves an admin by ID.
func (s *adminStore) Get(ctx context.Context, id string) (*domain.Admin, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, created_at FROM admins WHERE id = ?
	`, id)
	return scanAdmin(row)
}

// GetByUsername retrieves an admin by normalised username.
func (s *adminStore) GetByUsername(ctx context.Context, username string) (*domain.Admin, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, created_at FROM admins WHERE username = ?
	`, username)
	return scanAdmin(row)
}

// List returns all admins ordered by username.
func (s *adminStore) List(ctx context.Context) ([]domain.Admin, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, username, password_hash, created_at FROM admins ORDER BY username
	`)
	if err != nil {
		return nil, fmt.Errorf("querying admins: %w", err)
	}
	defer rows.Close()

	admins := []domain.Admin{}
	for rows.Next() {
		admin, err := scanAdmin(rows)
		if err != nil {
			return nil, err
		}
		admins = append(admins, *admin)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating admins: %w", err)
	}

	return admins, nil
}

// Delete removes an admin. Its sessions go with it.
func (s *adminStore) Delete(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM admins WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting admin: %w", err)
	}
	return requireAffected(res)
}

// Count returns the number of admins.
func (s *adminStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM admins").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting admins: %w", err)
	}
	return count, nil
}

func scanAdmin(row rowScanner) (*domain.Admin, error) {
	var admin domain.Admin
	var createdAt string
	if err := row.Scan(&admin.ID, &admin.Username, &admin.PasswordHash, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning admin: %w", err)
	}
	admin.CreatedAt = parseTime(createdAt)
	return &admin, nil
}

// ==================== Session Store ====================

// sessionStore implements driven.SessionStore.
type sessionStore struct {
	store *Store
}

var _ driven.SessionStore = (*sessionStore)(nil)

// Save stores a session.
func (s *sessionStore) Save(ctx context.Context, session *domain.Session) error {
	if session == nil {
		return domain.ErrInvalidInput
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO sessions (token, admin_id, username, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(token) DO UPDATE SET
			expires_at = excluded.expires_at
	`, session.Token, session.AdminID, session.Username,
		formatTime(session.CreatedAt), formatTime(session.ExpiresAt))

	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// Get retrieves a session by token.
func (s *sessionStore) Get(ctx context.Context, token string) (*domain.Session, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT token, admin_id, username, created_at, expires_at FROM sessions WHERE token = ?
	`, token)

	var session domain.Session
	var createdAt, expiresAt string
	if err := row.Scan(&session.Token, &session.AdminID, &session.Username, &createdAt, &expiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}
	session.CreatedAt = parseTime(createdAt)
	session.ExpiresAt = parseTime(expiresAt)
	return &session, nil
}

// Delete removes a session. Unknown tokens are not an error.
func (s *sessionStore) Delete(ctx context.Context, token string) error {
	if _, err := s.store.db.ExecContext(ctx, "DELETE FROM sessions WHERE token = ?", token); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// DeleteExpired removes sessions that expired at or before now.
func (s *sessionStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM sessions WHERE expires_at <= ?", formatTime(now))
	if err != nil {
		return 0, fmt.Errorf("deleting expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting expired sessions: %w", err)
	}
	return int(n), nil
}
