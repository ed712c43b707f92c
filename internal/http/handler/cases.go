package handler

import (
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"expedientes/internal/auth"
	"expedientes/internal/deadline"
	"expedientes/internal/export"
	"expedientes/internal/http/middleware"
	"expedientes/internal/model"
	"expedientes/internal/service"
)

type sessionRequest struct {
	Office     string `json:"office"`
	Passphrase string `json:"passphrase"`
}

type sessionResponse struct {
	Token     string    `json:"token"`
	Office    string    `json:"office"`
	ExpiresAt time.Time `json:"expires_at"`
}

type pendingRecord struct {
	model.CaseRecord
	AtRisk bool `json:"at_risk"`
}

type pendingResponse struct {
	Office  string          `json:"office"`
	Count   int             `json:"count"`
	Records []pendingRecord `json:"records"`
	Message string          `json:"message,omitempty"`
}

type updateRequest struct {
	ForwardedDate string `json:"forwarded_date"`
}

// ListOffices godoc
// @Summary List offices present in the case store
// @Tags offices
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /offices [get]
func ListOffices(svc service.CaseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offices, err := svc.ListOffices(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		if offices == nil {
			offices = []string{}
		}
		return c.JSON(fiber.Map{"offices": offices})
	}
}

// CreateSession godoc
// @Summary Open an office session with the office passphrase
// @Tags sessions
// @Accept json
// @Produce json
// @Success 200 {object} sessionResponse
// @Failure 401 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /sessions [post]
func CreateSession(svc service.CaseService, gate auth.Gate, tokens *auth.Tokens) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req sessionRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		req.Office = strings.TrimSpace(req.Office)
		if req.Office == "" {
			return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", "office is required")
		}

		offices, err := svc.ListOffices(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		if !slices.Contains(offices, req.Office) {
			return writeError(c, fiber.StatusNotFound, "UNKNOWN_OFFICE", fmt.Sprintf("office %s not found", req.Office))
		}
		if !gate.Authorize(req.Office, req.Passphrase) {
			return writeError(c, fiber.StatusUnauthorized, "INVALID_PASSPHRASE", "incorrect passphrase for this office")
		}

		token, sess, err := tokens.Issue(req.Office)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(sessionResponse{Token: token, Office: sess.Office, ExpiresAt: sess.ExpiresAt})
	}
}

// PendingRecords godoc
// @Summary Pending cases of the session's office
// @Tags offices
// @Produce json
// @Param office path string true "Office"
// @Success 200 {object} pendingResponse
// @Failure 403 {object} errorPayload
// @Security Bearer
// @Router /offices/{office}/pending [get]
func PendingRecords(svc service.CaseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		office, err := sessionOffice(c)
		if err != nil {
			return err
		}
		view, err := svc.Pending(c.UserContext(), office)
		if err != nil {
			return writeServiceError(c, err)
		}
		res := pendingResponse{
			Office:  view.Office,
			Count:   len(view.Records),
			Records: make([]pendingRecord, 0, len(view.Records)),
			Message: view.Message,
		}
		for _, r := range view.Records {
			res.Records = append(res.Records, pendingRecord{CaseRecord: r, AtRisk: deadline.AtRisk(r.DaysRemaining)})
		}
		return c.JSON(res)
	}
}

// ExportPending godoc
// @Summary Download the pending cases of the session's office as CSV
// @Tags offices
// @Produce text/csv
// @Param office path string true "Office"
// @Success 200 {file} file
// @Security Bearer
// @Router /offices/{office}/pending.csv [get]
func ExportPending(svc service.CaseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		office, err := sessionOffice(c)
		if err != nil {
			return err
		}
		view, err := svc.Pending(c.UserContext(), office)
		if err != nil {
			return writeServiceError(c, err)
		}
		data, err := export.CSV(view.Records)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		c.Attachment(export.Filename(office))
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		return c.Send(data)
	}
}

// SubmitUpdate godoc
// @Summary Record the date a case was forwarded to DRCM
// @Tags cases
// @Accept json
// @Produce json
// @Param caseID path string true "Case id"
// @Success 200 {object} service.UpdateResult
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Failure 409 {object} errorPayload
// @Security Bearer
// @Router /cases/{caseID}/forwarded-date [put]
func SubmitUpdate(svc service.CaseService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caseID, err := url.PathUnescape(c.Params("caseID"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_INPUT", "invalid case id")
		}
		var req updateRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		res, err := svc.SubmitUpdate(c.UserContext(), service.UpdateRequest{
			CaseID:        caseID,
			Office:        middleware.SessionOffice(c),
			ForwardedDate: req.ForwardedDate,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// sessionOffice returns the :office path parameter after checking it is the session's office.
// Failures are fiber errors rendered by ErrorHandler.
func sessionOffice(c *fiber.Ctx) (string, error) {
	office, err := url.PathUnescape(c.Params("office"))
	if err != nil {
		return "", fiber.ErrBadRequest
	}
	if office != middleware.SessionOffice(c) {
		return "", fiber.ErrForbidden
	}
	return office, nil
}
