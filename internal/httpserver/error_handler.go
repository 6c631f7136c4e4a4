package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mkravchenko/blog-backend/internal/apperror"
)

type errorBody struct {
	Status  string      `json:"status"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Error   interface{} `json:"error,omitempty"`
}

// ErrorHandler translates every error into the {status, code, message, error?}
// contract. Unknown errors become a sanitized 500; nothing escapes unhandled.
func ErrorHandler(log *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		body := errorBody{
			Status:  string(apperror.KindServer),
			Code:    string(apperror.KindServer),
			Message: "something went wrong",
		}

		var appErr *apperror.Error
		var httpErr *echo.HTTPError

		switch {
		case errors.As(err, &appErr):
			status = appErr.HTTPStatus()
			body.Status = string(appErr.Kind)
			body.Code = string(appErr.Kind)
			body.Message = appErr.Message
			if len(appErr.Fields) > 0 {
				body.Error = appErr.Fields
			}
			if appErr.Kind == apperror.KindServer {
				log.Error("server_error", "message", appErr.Message, "error", appErr.Unwrap())
				body.Message = "something went wrong"
			}
		case errors.As(err, &httpErr):
			status = httpErr.Code
			kind := kindForStatus(httpErr.Code)
			body.Status = string(kind)
			body.Code = string(kind)
			if msg, ok := httpErr.Message.(string); ok {
				body.Message = msg
			}
		default:
			log.Error("unhandled_error", "error", err)
		}

		if writeErr := c.JSON(status, body); writeErr != nil {
			log.Error("error_response_write_failed", "error", writeErr)
		}
	}
}

func kindForStatus(status int) apperror.Kind {
	switch status {
	case http.StatusBadRequest:
		return apperror.KindValidation
	case http.StatusUnauthorized:
		return apperror.KindAuthentication
	case http.StatusForbidden:
		return apperror.KindAuthorization
	default:
		return apperror.KindServer
	}
}
