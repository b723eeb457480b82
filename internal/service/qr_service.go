package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/qrattend-backend/internal/metrics"
	"github.com/stemsi/qrattend-backend/internal/model"
	"github.com/stemsi/qrattend-backend/internal/qr"
	"github.com/stemsi/qrattend-backend/internal/roster"
)

var (
	ErrUnknownClass   = errors.New("unknown class")
	ErrQRNotGenerated = qr.ErrNotGenerated
)

// QRService generates and serves class QR images.
type QRService struct {
	roster  *roster.Roster
	gen     *qr.Generator
	metrics *metrics.Metrics
	log     zerolog.Logger
	now     func() time.Time
}

// NewQRService creates a new QRService.
func NewQRService(r *roster.Roster, gen *qr.Generator, m *metrics.Metrics, log zerolog.Logger) *QRService {
	return &QRService{
		roster:  r,
		gen:     gen,
		metrics: m,
		log:     log.With().Str("component", "qr_service").Logger(),
		now:     time.Now,
	}
}

// Generate renders the QR image for classID, replacing any previous one.
func (s *QRService) Generate(classID string) (*model.QRCode, error) {
	if !s.roster.IsSubject(classID) {
		return nil, ErrUnknownClass
	}
	path, err := s.gen.Generate(classID)
	if err != nil {
		return nil, fmt.Errorf("generate qr: %w", err)
	}
	s.metrics.QRGenerated(classID)
	s.log.Info().Str("class_id", classID).Str("path", path).Msg("QR generated")
	return &model.QRCode{ClassID: classID, Size: s.gen.Size(), GeneratedAt: s.now()}, nil
}

// Open returns the stored PNG for classID.
func (s *QRService) Open(classID string) ([]byte, error) {
	if !s.roster.IsSubject(classID) {
		return nil, ErrUnknownClass
	}
	return s.gen.Read(classID)
}
