package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dosetrack/dosetrack-backend/internal/adherence"
	"github.com/dosetrack/dosetrack-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// Error maps service errors onto the envelope. Field-attributed
// validation failures carry the offending field; anything unrecognized
// is a 500.
func Error(c *gin.Context, err error) {
	var ferr *adherence.FieldError
	var ae *apierr.Error

	status := http.StatusInternalServerError
	code := "internal_error"
	if errors.As(err, &ae) {
		if ae.Status != 0 {
			status = ae.Status
		}
		if ae.Code != "" {
			code = ae.Code
		}
	}

	out := APIError{Message: "unknown error", Code: code}
	if err != nil {
		out.Message = err.Error()
	}
	if errors.As(err, &ferr) {
		out.Field = ferr.Field
		out.Message = ferr.Message
	}
	c.JSON(status, ErrorEnvelope{Error: out})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
