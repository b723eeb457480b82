package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/qrattend-backend/internal/middleware"
	"github.com/stemsi/qrattend-backend/internal/response"
	"github.com/stemsi/qrattend-backend/internal/service"
)

// QRHandler lets a teacher generate and fetch their class QR code.
type QRHandler struct {
	qr  *service.QRService
	log zerolog.Logger
}

// NewQRHandler creates a new QRHandler.
func NewQRHandler(qr *service.QRService, log zerolog.Logger) *QRHandler {
	return &QRHandler{qr: qr, log: log.With().Str("component", "qr_handler").Logger()}
}

// Generate godoc
// POST /api/v1/teacher/qr
// Renders the QR image for the teacher's own class.
func (h *QRHandler) Generate(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	code, err := h.qr.Generate(claims.ClassID)
	if err != nil {
		if errors.Is(err, service.ErrUnknownClass) {
			response.Fail(c, http.StatusBadRequest, response.ErrUnknownClass)
			return
		}
		h.log.Error().Err(err).Str("class_id", claims.ClassID).Msg("QR generation failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Created(c, gin.H{"qr": code, "message": "QR generated for " + code.ClassID})
}

// Image godoc
// GET /api/v1/teacher/qr
// Serves the stored PNG for the teacher's class.
func (h *QRHandler) Image(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	png, err := h.qr.Open(claims.ClassID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQRNotGenerated):
			response.Fail(c, http.StatusNotFound, response.ErrQRNotGenerated)
		case errors.Is(err, service.ErrUnknownClass):
			response.Fail(c, http.StatusBadRequest, response.ErrUnknownClass)
		default:
			h.log.Error().Err(err).Str("class_id", claims.ClassID).Msg("Read QR failed")
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}
