package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/qrattend-backend/internal/metrics"
	"github.com/stemsi/qrattend-backend/internal/model"
	"github.com/stemsi/qrattend-backend/internal/repository"
)

const (
	DefaultSessionDuration = 60 * time.Minute
	MaxSessionDuration     = 8 * time.Hour
	sessionListLimit       = 50
)

var (
	ErrSessionsUnsupported = errors.New("class sessions require the database backend")
	ErrSessionActive       = errors.New("class already has an active session")
	ErrSessionNotFound     = errors.New("class session not found")
)

// SessionStore persists class sessions.
type SessionStore interface {
	Active(ctx context.Context, classID string, at time.Time) (*model.ClassSession, error)
	Create(ctx context.Context, s *model.ClassSession) error
	Close(ctx context.Context, id uuid.UUID, classID string, at time.Time) (*model.ClassSession, error)
	ListByClass(ctx context.Context, classID string, limit int) ([]model.ClassSession, error)
	CloseExpired(ctx context.Context, at time.Time) ([]model.ClassSession, error)
}

// ClassSessionService opens and closes the windows during which a class
// accepts attendance. With a nil store every operation reports
// ErrSessionsUnsupported.
type ClassSessionService struct {
	store   SessionStore
	feed    *LiveFeed
	metrics *metrics.Metrics
	log     zerolog.Logger
	now     func() time.Time
}

// NewClassSessionService creates the service.
func NewClassSessionService(store SessionStore, feed *LiveFeed, m *metrics.Metrics, log zerolog.Logger) *ClassSessionService {
	return &ClassSessionService{
		store:   store,
		feed:    feed,
		metrics: m,
		log:     log.With().Str("component", "class_session_service").Logger(),
		now:     time.Now,
	}
}

// Supported reports whether sessions are backed by a store.
func (s *ClassSessionService) Supported() bool { return s.store != nil }

// Open starts a session for classID lasting duration (zero means the default).
func (s *ClassSessionService) Open(ctx context.Context, classID string, duration time.Duration) (*model.ClassSession, error) {
	if s.store == nil {
		return nil, ErrSessionsUnsupported
	}
	if duration <= 0 {
		duration = DefaultSessionDuration
	}
	if duration > MaxSessionDuration {
		duration = MaxSessionDuration
	}

	now := s.now()
	if _, err := s.store.Active(ctx, classID, now); err == nil {
		return nil, ErrSessionActive
	} else if !errors.Is(err, repository.ErrSessionNotFound) {
		return nil, fmt.Errorf("check active session: %w", err)
	}

	sess := &model.ClassSession{ClassID: classID, StartsAt: now, EndsAt: now.Add(duration)}
	if err := s.store.Create(ctx, sess); err != nil {
		if errors.Is(err, repository.ErrSessionConflict) {
			return nil, ErrSessionActive
		}
		return nil, fmt.Errorf("create session: %w", err)
	}
	sess.Active = sess.ActiveAt(now)

	s.log.Info().
		Str("class_id", classID).
		Str("session_id", sess.ID.String()).
		Time("ends_at", sess.EndsAt).
		Msg("Class session opened")
	return sess, nil
}

// Close ends an open session of classID early.
func (s *ClassSessionService) Close(ctx context.Context, classID string, id uuid.UUID) (*model.ClassSession, error) {
	if s.store == nil {
		return nil, ErrSessionsUnsupported
	}
	sess, err := s.store.Close(ctx, id, classID, s.now())
	if errors.Is(err, repository.ErrSessionNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("close session: %w", err)
	}
	sess.Active = false
	s.announceClosed(ctx, *sess)
	return sess, nil
}

// List returns recent sessions of classID, newest first. A lapsed session
// the sweeper has not closed yet is reported inactive.
func (s *ClassSessionService) List(ctx context.Context, classID string) ([]model.ClassSession, error) {
	if s.store == nil {
		return nil, ErrSessionsUnsupported
	}
	list, err := s.store.ListByClass(ctx, classID, sessionListLimit)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range list {
		list[i].Active = list[i].ActiveAt(now)
	}
	return list, nil
}

// CloseExpired closes every session whose window has ended and announces each.
func (s *ClassSessionService) CloseExpired(ctx context.Context) (int, error) {
	if s.store == nil {
		return 0, nil
	}
	closed, err := s.store.CloseExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("close expired sessions: %w", err)
	}
	for _, sess := range closed {
		s.announceClosed(ctx, sess)
	}
	s.metrics.SessionsExpired(len(closed))
	return len(closed), nil
}

func (s *ClassSessionService) announceClosed(ctx context.Context, sess model.ClassSession) {
	at := sess.EndsAt
	if sess.ClosedAt != nil {
		at = *sess.ClosedAt
	}
	s.log.Info().Str("class_id", sess.ClassID).Str("session_id", sess.ID.String()).Msg("Class session closed")
	s.feed.Publish(ctx, model.LiveEvent{
		Type:      model.LiveSessionClosed,
		ClassID:   sess.ClassID,
		SessionID: sess.ID.String(),
		At:        at,
	})
}
