package model

import "time"

// MarkOutcome describes what an accepted scan did to the durable record.
type MarkOutcome string

const (
	// MarkRecorded means the counter was incremented or a row inserted.
	MarkRecorded MarkOutcome = "RECORDED"
	// MarkDuplicate means a row already exists for the (session, student) pair.
	MarkDuplicate MarkOutcome = "DUPLICATE"
	// MarkNoActiveSession means the class is not accepting attendance right now.
	MarkNoActiveSession MarkOutcome = "NO_ACTIVE_SESSION"
	// MarkNotEnrolled means the student is not enrolled in the class.
	MarkNotEnrolled MarkOutcome = "NOT_ENROLLED"
)

// ScanRequest carries a decoded QR payload and the network the scan was made from.
type ScanRequest struct {
	Code string `json:"code" binding:"max=256"`
	SSID string `json:"ssid" binding:"max=64"`
}

// ScanResult is returned for an accepted scan.
type ScanResult struct {
	ClassID  string      `json:"class_id"`
	Outcome  MarkOutcome `json:"outcome"`
	Recorded bool        `json:"recorded"`
	Message  string      `json:"message"`
	MarkedAt time.Time   `json:"marked_at"`
}

// Sheet is the whole attendance table: one row per student, one counter per subject.
type Sheet struct {
	Subjects []string   `json:"subjects"`
	Rows     []SheetRow `json:"rows"`
}

// SheetRow holds a student's counters keyed by subject.
type SheetRow struct {
	Name   string         `json:"name"`
	Counts map[string]int `json:"counts"`
}

// Row returns the row for the named student.
func (s *Sheet) Row(name string) (*SheetRow, bool) {
	for i := range s.Rows {
		if s.Rows[i].Name == name {
			return &s.Rows[i], true
		}
	}
	return nil, false
}

// SubjectCount is one (subject, count) pair of a student's attendance.
type SubjectCount struct {
	Subject string `json:"subject"`
	Count   int    `json:"count"`
}

// Ordered flattens a row into subject order.
func (r *SheetRow) Ordered(subjects []string) []SubjectCount {
	out := make([]SubjectCount, 0, len(subjects))
	for _, s := range subjects {
		out = append(out, SubjectCount{Subject: s, Count: r.Counts[s]})
	}
	return out
}

// MarkReceipt is what a store reports for one applied update.
type MarkReceipt struct {
	Outcome   MarkOutcome
	SessionID string
	MarkedAt  time.Time
}
