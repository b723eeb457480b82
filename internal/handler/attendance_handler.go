package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/qrattend-backend/internal/middleware"
	"github.com/stemsi/qrattend-backend/internal/model"
	"github.com/stemsi/qrattend-backend/internal/repository"
	"github.com/stemsi/qrattend-backend/internal/response"
	"github.com/stemsi/qrattend-backend/internal/service"
	"github.com/stemsi/qrattend-backend/internal/validator"
)

// AttendanceHandler serves scans and attendance views.
type AttendanceHandler struct {
	attendance *service.AttendanceService
	log        zerolog.Logger
}

// NewAttendanceHandler creates a new AttendanceHandler.
func NewAttendanceHandler(attendance *service.AttendanceService, log zerolog.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		attendance: attendance,
		log:        log.With().Str("component", "attendance_handler").Logger(),
	}
}

// Scan godoc
// POST /api/v1/student/scan
// Submits a decoded QR payload with the network it was scanned from.
// Refusals answer 422 SCAN_REJECTED with the reason as message.
func (h *AttendanceHandler) Scan(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.ScanRequest
	if fields := validator.Bind(c, &req); fields != nil {
		failBinding(c, fields)
		return
	}

	result, err := h.attendance.Scan(c.Request.Context(), claims.Student(), req)
	if err != nil {
		var rej *service.ScanRejectedError
		if errors.As(err, &rej) {
			response.FailWithMessage(c, http.StatusUnprocessableEntity, response.ErrScanRejected, rej.Message)
			return
		}
		h.log.Error().Err(err).Msg("Scan failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	status := http.StatusOK
	if result.Recorded {
		status = http.StatusCreated
	}
	response.Success(c, status, result)
}

// StudentAttendance godoc
// GET /api/v1/student/attendance
// Returns the caller's counters in subject order.
func (h *AttendanceHandler) StudentAttendance(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	counts, err := h.attendance.StudentSheet(c.Request.Context(), claims.Student())
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrRecordNotFound)
			return
		}
		h.log.Error().Err(err).Str("student_id", claims.UserID).Msg("Load attendance failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"student": claims.Student(), "attendance": counts})
}

// Sheet godoc
// GET /api/v1/teacher/attendance
// Returns the whole attendance table.
func (h *AttendanceHandler) Sheet(c *gin.Context) {
	sheet, err := h.attendance.Sheet(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Load sheet failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, sheet)
}

// Export godoc
// GET /api/v1/teacher/attendance/export
// Streams the attendance table as a CSV download.
func (h *AttendanceHandler) Export(c *gin.Context) {
	sheet, err := h.attendance.Sheet(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Load sheet failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	filename := fmt.Sprintf("attendance-%s.csv", time.Now().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	if err := repository.WriteSheetCSV(c.Writer, sheet); err != nil {
		h.log.Error().Err(err).Msg("Write CSV export failed")
	}
}
