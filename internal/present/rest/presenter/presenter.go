package presenter

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/shelterhub/adoptd/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// OK wraps a successful response.
func OK(c echo.Context, payload any) error {
	return c.JSON(http.StatusOK, payload)
}

func BadRequestMessage(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Error: msg, Code: "bad_request"})
}

// Error maps a domain error to its HTTP status and stable code. The code
// is the localizable message key; the engine itself stays language
// agnostic.
func Error(c echo.Context, err error) error {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(c.Request().Context(), "request failed",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()),
		)
	}
	return c.JSON(status, errorResponse{Error: err.Error(), Code: code})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "unauthenticated"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrInvalidStatus):
		return http.StatusConflict, "invalid_status"
	case errors.Is(err, domain.ErrTerminalState):
		return http.StatusConflict, "terminal_status"
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition"
	case errors.Is(err, domain.ErrMessageRequired):
		return http.StatusBadRequest, "message_required"
	case errors.Is(err, domain.ErrRejectionReasonRequired):
		return http.StatusBadRequest, "rejection_reason_required"
	case errors.Is(err, domain.ErrEmptyFile):
		return http.StatusBadRequest, "empty_file"
	case errors.Is(err, domain.ErrFileTooLarge):
		return http.StatusBadRequest, "file_too_large"
	case errors.Is(err, domain.ErrInvalidFileType):
		return http.StatusBadRequest, "invalid_file_type"
	case errors.Is(err, domain.ErrAdopterEmailNotFound):
		return http.StatusUnprocessableEntity, "adopter_email_not_found"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
