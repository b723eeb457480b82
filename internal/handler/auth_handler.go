package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/qrattend-backend/internal/middleware"
	"github.com/stemsi/qrattend-backend/internal/model"
	"github.com/stemsi/qrattend-backend/internal/response"
	"github.com/stemsi/qrattend-backend/internal/service"
	"github.com/stemsi/qrattend-backend/internal/validator"
)

// Teacher login failures use their own wording.
const msgTeacherInvalidCredentials = "Incorrect User ID or Password!"

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
	log         zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         log.With().Str("component", "auth_handler").Logger(),
	}
}

// StudentLogin godoc
// POST /api/v1/auth/student/login
// Checks id + password against the roster and returns a JWT. A previous
// session of the same student is replaced.
func (h *AuthHandler) StudentLogin(c *gin.Context) {
	var req model.StudentLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		failBinding(c, fields)
		return
	}

	resp, err := h.authService.LoginStudent(c.Request.Context(), req.ID, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
			return
		}
		h.log.Error().Err(err).Msg("Student login failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// TeacherLogin godoc
// POST /api/v1/auth/teacher/login
// Checks login + password against the per-class table and returns a JWT
// bound to the teacher's class.
func (h *AuthHandler) TeacherLogin(c *gin.Context) {
	var req model.TeacherLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		failBinding(c, fields)
		return
	}

	resp, err := h.authService.LoginTeacher(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.FailWithMessage(c, http.StatusUnauthorized, response.ErrInvalidCredentials, msgTeacherInvalidCredentials)
			return
		}
		h.log.Error().Err(err).Msg("Teacher login failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, resp)
}

// Logout godoc
// POST /api/v1/auth/logout
// Ends the session of the presented token.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), claims); err != nil {
		h.log.Error().Err(err).Str("user_id", claims.UserID).Msg("Logout failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{})
}

// Me godoc
// GET /api/v1/auth/me
// Returns the identity carried by the current token.
func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	switch claims.TokenType {
	case service.TokenTypeStudent:
		response.Success(c, http.StatusOK, gin.H{"role": claims.TokenType, "student": claims.Student()})
	default:
		response.Success(c, http.StatusOK, gin.H{"role": claims.TokenType, "teacher": claims.Teacher()})
	}
}
