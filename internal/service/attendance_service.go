package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/qrattend-backend/internal/metrics"
	"github.com/stemsi/qrattend-backend/internal/model"
	"github.com/stemsi/qrattend-backend/internal/netinfo"
	"github.com/stemsi/qrattend-backend/internal/repository"
	"github.com/stemsi/qrattend-backend/internal/roster"
)

// AttendanceStore is the durable attendance record. Implemented by the CSV
// sheet and the PostgreSQL repositories.
type AttendanceStore interface {
	Mark(ctx context.Context, student model.Student, classID string, at time.Time) (*model.MarkReceipt, error)
	Sheet(ctx context.Context) (*model.Sheet, error)
	StudentSheet(ctx context.Context, student model.Student) (*model.SheetRow, []string, error)
}

// AttendanceService applies the scan acceptance rule and serves the sheet.
type AttendanceService struct {
	roster  *roster.Roster
	store   AttendanceStore
	probe   netinfo.Prober
	feed    *LiveFeed
	metrics *metrics.Metrics
	log     zerolog.Logger
	now     func() time.Time
}

// NewAttendanceService creates the service. A nil probe means the
// client-reported network name is trusted; otherwise the server's own
// wireless interface is the observed network.
func NewAttendanceService(
	r *roster.Roster,
	store AttendanceStore,
	probe netinfo.Prober,
	feed *LiveFeed,
	m *metrics.Metrics,
	log zerolog.Logger,
) *AttendanceService {
	return &AttendanceService{
		roster:  r,
		store:   store,
		probe:   probe,
		feed:    feed,
		metrics: m,
		log:     log.With().Str("component", "attendance_service").Logger(),
		now:     time.Now,
	}
}

// Scan decides whether a decoded QR payload is accepted for student and, if
// so, applies exactly one store update. Checks run in order: a payload was
// decoded, it names a subject, the observed network is the expected one.
// Every refusal is a *ScanRejectedError.
func (s *AttendanceService) Scan(ctx context.Context, student model.Student, req model.ScanRequest) (*model.ScanResult, error) {
	if req.Code == "" {
		return nil, s.rejected(reject(RejectNothingDecoded, MsgNothingDecoded, nil))
	}
	if !s.roster.IsSubject(req.Code) {
		return nil, s.rejected(reject(RejectUnknownSubject, MsgUnknownSubject, nil))
	}
	if observed := s.observedSSID(ctx, req.SSID); observed != s.roster.ExpectedSSID {
		return nil, s.rejected(reject(RejectWrongNetwork, MsgWrongNetwork, nil))
	}

	at := s.now()
	receipt, err := s.store.Mark(ctx, student, req.Code, at)
	if err != nil {
		msg := MsgUpdateFailed
		if errors.Is(err, repository.ErrSheetRowNotFound) || errors.Is(err, repository.ErrSheetColumnNotFound) {
			msg = MsgInvalidClass
		}
		s.log.Error().Err(err).
			Str("student_id", student.ID).
			Str("class_id", req.Code).
			Msg("Attendance update failed")
		return nil, s.rejected(reject(RejectUpdateFailed, msg, err))
	}

	s.metrics.Scan(strings.ToLower(string(receipt.Outcome)))

	result := &model.ScanResult{
		ClassID:  req.Code,
		Outcome:  receipt.Outcome,
		Recorded: receipt.Outcome == model.MarkRecorded,
		Message:  outcomeMessage(receipt.Outcome, req.Code),
		MarkedAt: receipt.MarkedAt,
	}
	if !result.Recorded {
		return result, nil
	}
	if result.MarkedAt.IsZero() {
		result.MarkedAt = at
	}

	s.log.Info().
		Str("student_id", student.ID).
		Str("class_id", req.Code).
		Str("session_id", receipt.SessionID).
		Msg("Attendance marked")

	s.feed.Publish(ctx, model.LiveEvent{
		Type:        model.LiveAttendanceMarked,
		ClassID:     req.Code,
		StudentID:   student.ID,
		StudentName: student.Name,
		SessionID:   receipt.SessionID,
		At:          result.MarkedAt,
	})
	return result, nil
}

func (s *AttendanceService) observedSSID(ctx context.Context, reported string) string {
	if s.probe == nil {
		return reported
	}
	ssid, err := s.probe.SSID(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Network probe failed")
		return ""
	}
	return ssid
}

func (s *AttendanceService) rejected(e *ScanRejectedError) error {
	s.metrics.Scan(strings.ToLower(string(e.Reason)))
	return e
}

func outcomeMessage(o model.MarkOutcome, classID string) string {
	switch o {
	case model.MarkRecorded:
		return fmt.Sprintf("Attendance marked for %s", classID)
	case model.MarkDuplicate:
		return fmt.Sprintf("Attendance already marked for %s in this session", classID)
	case model.MarkNoActiveSession:
		return fmt.Sprintf("%s is not taking attendance right now", classID)
	case model.MarkNotEnrolled:
		return fmt.Sprintf("You are not enrolled in %s", classID)
	default:
		return string(o)
	}
}

// Sheet returns the whole attendance table.
func (s *AttendanceService) Sheet(ctx context.Context) (*model.Sheet, error) {
	return s.store.Sheet(ctx)
}

// StudentSheet returns one student's counters in subject order.
func (s *AttendanceService) StudentSheet(ctx context.Context, student model.Student) ([]model.SubjectCount, error) {
	row, subjects, err := s.store.StudentSheet(ctx, student)
	if err != nil {
		return nil, err
	}
	return row.Ordered(subjects), nil
}
