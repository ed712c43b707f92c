package handler

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"expedientes/internal/http/middleware"
	"expedientes/internal/service"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_INPUT", "CASE_NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", "a valid session is required")
		case fiber.StatusForbidden:
			return writeError(c, status, "FORBIDDEN", "forbidden")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
// Causes of server-side failures are logged by the service, not returned.
func writeServiceError(c *fiber.Ctx, err error) error {
	var e *service.Error
	caseID, office := "", ""
	if errors.As(err, &e) {
		caseID, office = e.CaseID, e.Office
	}

	switch {
	case errors.Is(err, service.ErrInvalidInput):
		msg := "invalid input"
		if e != nil && e.Err != nil {
			msg = e.Err.Error()
		}
		return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", msg)
	case errors.Is(err, service.ErrOfficeMismatch):
		return writeError(c, fiber.StatusForbidden, "OFFICE_MISMATCH",
			fmt.Sprintf("case %s does not belong to office %s", caseID, office))
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "CASE_NOT_FOUND", fmt.Sprintf("case %s not found", caseID))
	case errors.Is(err, service.ErrAmbiguousID):
		return writeError(c, fiber.StatusConflict, "AMBIGUOUS_CASE_ID",
			fmt.Sprintf("case %s matches more than one record; fix the spreadsheet first", caseID))
	case errors.Is(err, service.ErrSchema):
		return writeError(c, fiber.StatusUnprocessableEntity, "SCHEMA_ERROR", err.Error())
	case errors.Is(err, service.ErrSourceUnavailable):
		return writeError(c, fiber.StatusServiceUnavailable, "SOURCE_UNAVAILABLE", "case store unavailable")
	case errors.Is(err, service.ErrPersistence):
		return writeError(c, fiber.StatusInternalServerError, "PERSISTENCE_ERROR",
			fmt.Sprintf("case %s could not be saved; nothing was changed", caseID))
	default:
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
}
