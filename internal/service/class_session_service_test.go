package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/qrattend-backend/internal/cache"
	"github.com/stemsi/qrattend-backend/internal/model"
	"github.com/stemsi/qrattend-backend/internal/repository"
)

// memSessions mirrors the SQL semantics of the session repository.
type memSessions struct {
	mu       sync.Mutex
	sessions []*model.ClassSession
}

func (m *memSessions) Active(_ context.Context, classID string, at time.Time) (*model.ClassSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.ClassID == classID && s.ActiveAt(at) {
			cp := *s
			return &cp, nil
		}
	}
	return nil, repository.ErrSessionNotFound
}

func (m *memSessions) Create(_ context.Context, s *model.ClassSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.sessions {
		if existing.ClassID == s.ClassID && existing.ClosedAt == nil && existing.EndsAt.After(s.StartsAt) {
			return repository.ErrSessionConflict
		}
	}
	s.ID = uuid.New()
	s.CreatedAt = s.StartsAt
	cp := *s
	m.sessions = append(m.sessions, &cp)
	return nil
}

func (m *memSessions) Close(_ context.Context, id uuid.UUID, classID string, at time.Time) (*model.ClassSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sessions {
		if s.ID == id && s.ClassID == classID && s.ClosedAt == nil {
			t := at
			s.ClosedAt = &t
			cp := *s
			return &cp, nil
		}
	}
	return nil, repository.ErrSessionNotFound
}

func (m *memSessions) ListByClass(_ context.Context, classID string, limit int) ([]model.ClassSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.ClassSession
	for i := len(m.sessions) - 1; i >= 0 && len(out) < limit; i-- {
		if m.sessions[i].ClassID == classID {
			out = append(out, *m.sessions[i])
		}
	}
	return out, nil
}

func (m *memSessions) CloseExpired(_ context.Context, at time.Time) ([]model.ClassSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.ClassSession
	for _, s := range m.sessions {
		if s.ClosedAt == nil && !s.EndsAt.After(at) {
			t := s.EndsAt
			s.ClosedAt = &t
			out = append(out, *s)
		}
	}
	return out, nil
}

func newSessionService(store SessionStore, broker cache.Broker, now *time.Time) *ClassSessionService {
	svc := NewClassSessionService(store, NewLiveFeed(broker, zerolog.Nop()), nil, zerolog.Nop())
	svc.now = func() time.Time { return *now }
	return svc
}

func TestOpenSessionDefaultsAndCap(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	svc := newSessionService(&memSessions{}, cache.NewMemoryBroker(), &now)
	ctx := context.Background()

	s, err := svc.Open(ctx, "DMS", 0)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.EndsAt.Sub(s.StartsAt); got != DefaultSessionDuration {
		t.Errorf("default duration = %s", got)
	}

	s, err = svc.Open(ctx, "COA", 24*time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.EndsAt.Sub(s.StartsAt); got != MaxSessionDuration {
		t.Errorf("capped duration = %s", got)
	}
}

func TestOpenSessionOnePerClass(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	svc := newSessionService(&memSessions{}, cache.NewMemoryBroker(), &now)
	ctx := context.Background()

	first, err := svc.Open(ctx, "TOC", 30*time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Open(ctx, "TOC", 30*time.Minute); !errors.Is(err, ErrSessionActive) {
		t.Errorf("second open err = %v, want ErrSessionActive", err)
	}
	if _, err := svc.Open(ctx, "DBMS", 30*time.Minute); err != nil {
		t.Errorf("other class blocked: %v", err)
	}

	if _, err := svc.Close(ctx, "TOC", first.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Open(ctx, "TOC", 30*time.Minute); err != nil {
		t.Errorf("reopen after close: %v", err)
	}
}

func TestCloseSessionScopedToClass(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	broker := cache.NewMemoryBroker()
	svc := newSessionService(&memSessions{}, broker, &now)
	ctx := context.Background()

	s, _ := svc.Open(ctx, "LCOA", time.Hour)
	if _, err := svc.Close(ctx, "COA", s.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("foreign class close err = %v", err)
	}

	sub, _ := broker.Subscribe(ctx, "class:LCOA:live")
	defer sub.Close()
	closed, err := svc.Close(ctx, "LCOA", s.ID)
	if err != nil {
		t.Fatal(err)
	}
	if closed.ClosedAt == nil {
		t.Error("ClosedAt not set")
	}
	select {
	case raw := <-sub.Messages():
		var ev model.LiveEvent
		_ = json.Unmarshal(raw, &ev)
		if ev.Type != model.LiveSessionClosed || ev.SessionID != s.ID.String() {
			t.Errorf("event = %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("no session_closed event")
	}

	if _, err := svc.Close(ctx, "LCOA", s.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("double close err = %v", err)
	}
}

func TestCloseExpired(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	store := &memSessions{}
	svc := newSessionService(store, cache.NewMemoryBroker(), &now)
	ctx := context.Background()

	_, _ = svc.Open(ctx, "DMS", 10*time.Minute)
	_, _ = svc.Open(ctx, "COA", time.Hour)

	now = now.Add(15 * time.Minute)
	n, err := svc.CloseExpired(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("closed %d, want 1", n)
	}
	if _, err := store.Active(ctx, "COA", now); err != nil {
		t.Errorf("COA closed early: %v", err)
	}

	list, _ := svc.List(ctx, "DMS")
	if len(list) != 1 || list[0].ClosedAt == nil {
		t.Errorf("DMS sessions = %+v", list)
	}
}

func TestListMarksActiveSession(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	svc := newSessionService(&memSessions{}, cache.NewMemoryBroker(), &now)
	ctx := context.Background()

	first, _ := svc.Open(ctx, "TOC", 10*time.Minute)
	if !first.Active {
		t.Error("opened session not active")
	}
	closed, _ := svc.Close(ctx, "TOC", first.ID)
	if closed.Active {
		t.Error("closed session still active")
	}
	second, _ := svc.Open(ctx, "TOC", 10*time.Minute)

	list, err := svc.List(ctx, "TOC")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != second.ID || !list[0].Active || list[1].Active {
		t.Errorf("sessions = %+v", list)
	}

	// Lapsed but not yet swept.
	now = now.Add(10 * time.Minute)
	list, _ = svc.List(ctx, "TOC")
	if list[0].ClosedAt != nil || list[0].Active {
		t.Errorf("lapsed session = %+v", list[0])
	}
}

func TestSessionsUnsupportedWithoutStore(t *testing.T) {
	svc := NewClassSessionService(nil, nil, nil, zerolog.Nop())
	ctx := context.Background()

	if svc.Supported() {
		t.Error("Supported() = true")
	}
	if _, err := svc.Open(ctx, "DMS", 0); !errors.Is(err, ErrSessionsUnsupported) {
		t.Errorf("Open err = %v", err)
	}
	if _, err := svc.List(ctx, "DMS"); !errors.Is(err, ErrSessionsUnsupported) {
		t.Errorf("List err = %v", err)
	}
	if _, err := svc.Close(ctx, "DMS", uuid.New()); !errors.Is(err, ErrSessionsUnsupported) {
		t.Errorf("Close err = %v", err)
	}
	if n, err := svc.CloseExpired(ctx); n != 0 || err != nil {
		t.Errorf("CloseExpired = %d, %v", n, err)
	}
}
