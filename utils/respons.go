package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type JSONResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Success: code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, err error) {
	c.JSON(code, JSONResponse{
		Success: false,
		Message: err.Error(),
		Data:    nil,
	})
}

// RespondAppError is the single place where error kinds become status codes.
func RespondAppError(c *gin.Context, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		RespondError(c, http.StatusInternalServerError, err)
		return
	}

	switch appErr.Kind {
	case KindValidation:
		RespondError(c, http.StatusBadRequest, appErr)
	case KindNotFound:
		RespondError(c, http.StatusNotFound, appErr)
	case KindAccessDenied:
		RespondError(c, http.StatusForbidden, appErr)
	default:
		ErrorLogger.Printf("internal error: %v", appErr)
		RespondError(c, http.StatusInternalServerError, appErr)
	}
}
