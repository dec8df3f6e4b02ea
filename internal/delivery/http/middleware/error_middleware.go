package middleware

import (
	"errors"
	"net/http"

	"kondax-backend/internal/delivery/http/response"
	"kondax-backend/internal/domain"
	"kondax-backend/pkg/apperror"
	"kondax-backend/pkg/logger"
	"kondax-backend/pkg/validation"

	"github.com/gin-gonic/gin"
)

// Message returned for failed input checks
const ValidationFailedMessage = "入力内容に不備があります。"

// Message returned for anything unexpected
const InternalErrorMessage = "サーバーエラーが発生しました。"

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err

		var appErr *apperror.AppError
		var fields validation.Errors
		switch {
		case errors.As(err, &appErr):
			if appErr.Code >= http.StatusInternalServerError {
				logger.Log.Error("Request failed",
					"status", appErr.Code,
					"path", c.FullPath(),
					"request_id", response.RequestID(c),
					"error", appErr.Message,
					"cause", appErr.Err)
			}
			response.Error(c, appErr.Code, appErr.Message, appErr.Details)
		case errors.As(err, &fields):
			response.Error(c, http.StatusBadRequest, ValidationFailedMessage, fields)
		case errors.Is(err, domain.ErrNotFound):
			response.Error(c, http.StatusNotFound, "Not found", nil)
		default:
			// Never expose internal error details to clients.
			logger.Log.Error("Internal server error",
				"path", c.FullPath(),
				"request_id", response.RequestID(c),
				"error", err)
			response.Error(c, http.StatusInternalServerError, InternalErrorMessage, nil)
		}
	}
}
