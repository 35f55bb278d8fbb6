package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	apimiddleware "formgate/internal/api/middleware"
	"formgate/internal/api/validator"
	"formgate/internal/models"
	"formgate/internal/services"
)

// EmbedHandler exposes the embed-domain request/review workflow.
type EmbedHandler struct {
	embed  *services.EmbedService
	access *services.AccessService
}

func NewEmbedHandler(embed *services.EmbedService, access *services.AccessService) *EmbedHandler {
	return &EmbedHandler{embed: embed, access: access}
}

// ListAllowed returns the approved domains for a form.
func (h *EmbedHandler) ListAllowed(c echo.Context) error {
	domains, err := h.embed.ListAllowedDomains(c.Request().Context(), c.Param("formId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, domains)
}

// ListRequested returns a form's domains, filtered by the status query
// parameter (comma separated).
func (h *EmbedHandler) ListRequested(c echo.Context) error {
	var statuses []models.EmbedDomainStatus
	if raw := c.QueryParam("status"); raw != "" {
		for _, value := range strings.Split(raw, ",") {
			status := models.EmbedDomainStatus(strings.TrimSpace(value))
			if !status.Valid() {
				return echo.NewHTTPError(http.StatusBadRequest, "unknown status: "+string(status))
			}
			statuses = append(statuses, status)
		}
	}

	domains, err := h.embed.ListRequestedDomains(c.Request().Context(), c.Param("formId"), statuses)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, domains)
}

// Request registers a new embed domain for review. Duplicate in-flight
// requests answer 409 with the current status.
func (h *EmbedHandler) Request(c echo.Context) error {
	var body validator.EmbedDomainRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&body); err != nil {
		return err
	}

	record, err := h.embed.RequestDomain(c.Request().Context(), c.Param("formId"), body.Domain, apimiddleware.GetActor(c))
	if err != nil {
		return embedError(err)
	}
	return c.JSON(http.StatusCreated, record)
}

// Review applies an approve/deny decision to an awaiting request.
func (h *EmbedHandler) Review(c echo.Context) error {
	var body validator.ReviewRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&body); err != nil {
		return err
	}

	domainID := c.Param("requestId")
	if err := h.requireReviewPermission(c, domainID); err != nil {
		return err
	}

	record, err := h.embed.ReviewDomainRequest(
		c.Request().Context(),
		domainID,
		models.EmbedDomainStatus(body.Decision),
		apimiddleware.GetActor(c),
	)
	if err != nil {
		return embedError(err)
	}
	return c.JSON(http.StatusOK, record)
}

// History returns a domain's audit trail.
func (h *EmbedHandler) History(c echo.Context) error {
	domainID := c.Param("domainId")
	if err := h.requireReviewPermission(c, domainID); err != nil {
		return err
	}

	history, err := h.embed.DomainHistory(c.Request().Context(), domainID)
	if err != nil {
		return embedError(err)
	}
	return c.JSON(http.StatusOK, history)
}

// Remove hard-deletes a domain and its history.
func (h *EmbedHandler) Remove(c echo.Context) error {
	domainID := c.Param("domainId")
	if err := h.requireReviewPermission(c, domainID); err != nil {
		return err
	}

	if err := h.embed.RemoveDomain(c.Request().Context(), domainID); err != nil {
		return embedError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// requireReviewPermission resolves the domain's owning form and checks the
// caller may review embed domains on it. Routes addressed by domain id
// cannot be guarded by the :formId middleware, so the check lives here.
func (h *EmbedHandler) requireReviewPermission(c echo.Context, domainID string) error {
	if apimiddleware.IsPlatformAdmin(c) {
		return nil
	}

	record, err := h.embed.GetDomain(c.Request().Context(), domainID)
	if err != nil {
		return embedError(err)
	}

	perms, err := h.access.EffectivePermissions(c.Request().Context(), apimiddleware.GetUserID(c), record.FormID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "permission lookup failed")
	}
	if !apimiddleware.HasPermission(perms, models.PermissionEmbedDomainReview) {
		return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
	}
	return nil
}

// embedError maps registry errors onto HTTP statuses.
func embedError(err error) error {
	var conflict *services.ConflictError
	switch {
	case errors.As(err, &conflict):
		return echo.NewHTTPError(http.StatusConflict, map[string]interface{}{
			"message": conflict.Error(),
			"domain":  conflict.Domain,
			"status":  conflict.Status,
		})
	case errors.Is(err, services.ErrDomainNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "domain not found")
	case errors.Is(err, services.ErrInvalidDecision):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
