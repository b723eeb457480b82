package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/qrattend-backend/internal/response"
	"github.com/stemsi/qrattend-backend/internal/validator"
)

// failBinding rejects a request body. A body that could not be decoded at
// all is INVALID_PAYLOAD; rule violations on decoded fields are
// VALIDATION_ERROR.
func failBinding(c *gin.Context, fields map[string]string) {
	code := response.ErrValidation
	if _, malformed := fields[validator.DetailField]; malformed {
		code = response.ErrInvalidPayload
	}
	response.FailWithFields(c, http.StatusBadRequest, code, fields)
}
