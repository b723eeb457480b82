package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/qrattend-backend/internal/model"
)

var (
	ErrSessionNotFound = errors.New("class session not found")
	ErrSessionConflict = errors.New("class already has an open session")
)

const sessionColumns = `id, class_code, starts_at, ends_at, closed_at, created_at`

// SessionRepository handles class session data access.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func scanSession(row pgx.Row) (*model.ClassSession, error) {
	s := &model.ClassSession{}
	if err := row.Scan(&s.ID, &s.ClassID, &s.StartsAt, &s.EndsAt, &s.ClosedAt, &s.CreatedAt); err != nil {
		return nil, err
	}
	return s, nil
}

// Active returns the session accepting scans for a class at t.
func (r *SessionRepository) Active(ctx context.Context, classID string, at time.Time) (*model.ClassSession, error) {
	s, err := scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE class_code = $1 AND closed_at IS NULL AND starts_at <= $2 AND ends_at > $2
		 ORDER BY starts_at DESC LIMIT 1`, classID, at,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	return s, err
}

// Create closes any lapsed open session of the class and inserts s. The
// partial unique index on open sessions rejects a second open one.
func (r *SessionRepository) Create(ctx context.Context, s *model.ClassSession) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE sessions SET closed_at = ends_at
		 WHERE class_code = $1 AND closed_at IS NULL AND ends_at <= $2`,
		s.ClassID, s.StartsAt,
	); err != nil {
		return fmt.Errorf("close lapsed sessions: %w", err)
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO sessions (class_code, starts_at, ends_at)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		s.ClassID, s.StartsAt, s.EndsAt,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return ErrSessionConflict
		}
		return err
	}
	return tx.Commit(ctx)
}

// Close ends an open session of the class at t.
func (r *SessionRepository) Close(ctx context.Context, id uuid.UUID, classID string, at time.Time) (*model.ClassSession, error) {
	s, err := scanSession(r.pool.QueryRow(ctx,
		`UPDATE sessions SET closed_at = LEAST($3, ends_at)
		 WHERE id = $1 AND class_code = $2 AND closed_at IS NULL
		 RETURNING `+sessionColumns, id, classID, at,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	return s, err
}

// ListByClass returns the most recent sessions of a class, newest first.
func (r *SessionRepository) ListByClass(ctx context.Context, classID string, limit int) ([]model.ClassSession, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE class_code = $1
		 ORDER BY starts_at DESC LIMIT $2`, classID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []model.ClassSession{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// CloseExpired closes every open session whose window ended by t and returns them.
func (r *SessionRepository) CloseExpired(ctx context.Context, at time.Time) ([]model.ClassSession, error) {
	rows, err := r.pool.Query(ctx,
		`UPDATE sessions SET closed_at = ends_at
		 WHERE closed_at IS NULL AND ends_at <= $1
		 RETURNING `+sessionColumns, at,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var closed []model.ClassSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		closed = append(closed, *s)
	}
	return closed, rows.Err()
}
