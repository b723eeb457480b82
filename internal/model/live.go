package model

import "time"

// LiveEventType enumerates events pushed to a class live feed.
type LiveEventType string

const (
	LiveAttendanceMarked LiveEventType = "attendance_marked"
	LiveSessionClosed    LiveEventType = "session_closed"
)

// LiveEvent is published when a class's attendance changes.
type LiveEvent struct {
	Type        LiveEventType `json:"type"`
	ClassID     string        `json:"class_id"`
	StudentID   string        `json:"student_id,omitempty"`
	StudentName string        `json:"student_name,omitempty"`
	SessionID   string        `json:"session_id,omitempty"`
	At          time.Time     `json:"at"`
}
