package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stemsi/qrattend-backend/internal/middleware"
	"github.com/stemsi/qrattend-backend/internal/model"
	"github.com/stemsi/qrattend-backend/internal/response"
	"github.com/stemsi/qrattend-backend/internal/service"
	"github.com/stemsi/qrattend-backend/internal/validator"
)

// SessionHandler manages the attendance windows of a teacher's class.
type SessionHandler struct {
	sessions *service.ClassSessionService
	log      zerolog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions *service.ClassSessionService, log zerolog.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, log: log.With().Str("component", "session_handler").Logger()}
}

// Open godoc
// POST /api/v1/teacher/sessions
// Opens an attendance window for the teacher's class.
func (h *SessionHandler) Open(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.OpenSessionRequest
	if fields := validator.BindOptional(c, &req); fields != nil {
		failBinding(c, fields)
		return
	}

	sess, err := h.sessions.Open(c.Request.Context(), claims.ClassID, time.Duration(req.DurationMinutes)*time.Minute)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, sess)
}

// Close godoc
// POST /api/v1/teacher/sessions/:id/close
// Ends an open session early.
func (h *SessionHandler) Close(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	sess, err := h.sessions.Close(c.Request.Context(), claims.ClassID, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, sess)
}

// List godoc
// GET /api/v1/teacher/sessions
// Lists recent sessions of the teacher's class.
func (h *SessionHandler) List(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessions, err := h.sessions.List(c.Request.Context(), claims.ClassID)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, sessions)
}

func (h *SessionHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionsUnsupported):
		response.Fail(c, http.StatusNotImplemented, response.ErrSessionsUnsupported)
	case errors.Is(err, service.ErrSessionActive):
		response.Fail(c, http.StatusConflict, response.ErrSessionActive)
	case errors.Is(err, service.ErrSessionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
	default:
		h.log.Error().Err(err).Msg("Session operation failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
