package model

import (
	"time"

	"github.com/google/uuid"
)

// ClassSession is a time window during which a class accepts attendance.
type ClassSession struct {
	ID        uuid.UUID  `json:"id"`
	ClassID   string     `json:"class_id"`
	StartsAt  time.Time  `json:"starts_at"`
	EndsAt    time.Time  `json:"ends_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`

	// Active is filled in by the service when the session is returned.
	Active bool `json:"active"`
}

// ActiveAt reports whether the session accepts scans at t.
func (s *ClassSession) ActiveAt(t time.Time) bool {
	if s.ClosedAt != nil {
		return false
	}
	return !t.Before(s.StartsAt) && t.Before(s.EndsAt)
}

// OpenSessionRequest is the payload for opening a class session.
type OpenSessionRequest struct {
	DurationMinutes int `json:"duration_minutes" binding:"omitempty,min=1,max=480"`
}
