package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// RespondError maps application error codes onto HTTP statuses. Busy
// rejections get 409 so clients can show a "pick another slot" message.
func RespondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case apperrors.HasCode(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
	case apperrors.HasCode(err, apperrors.ErrValidation):
		status = http.StatusBadRequest
	case apperrors.HasCode(err, apperrors.ErrDoctorBusy),
		apperrors.HasCode(err, apperrors.ErrPatientBusy):
		status = http.StatusConflict
	}
	c.JSON(status, NewErrorResponse(err.Error()))
}
