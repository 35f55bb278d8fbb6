package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	apimiddleware "formgate/internal/api/middleware"
	"formgate/internal/api/validator"
	"formgate/internal/services"
)

// AccessHandler exposes role assignment and effective-permission lookups.
type AccessHandler struct {
	access *services.AccessService
}

func NewAccessHandler(access *services.AccessService) *AccessHandler {
	return &AccessHandler{access: access}
}

// MyPermissions returns the caller's effective permission set on the form.
// Anonymous callers on a public form see the public fallback set.
func (h *AccessHandler) MyPermissions(c echo.Context) error {
	perms, err := h.access.EffectivePermissions(c.Request().Context(), apimiddleware.GetUserID(c), c.Param("formId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"formId":      c.Param("formId"),
		"permissions": perms,
	})
}

// MyRoles returns the caller's role codes on the form.
func (h *AccessHandler) MyRoles(c echo.Context) error {
	roles, err := h.access.Roles(c.Request().Context(), apimiddleware.GetUserID(c), c.Param("formId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"formId": c.Param("formId"),
		"roles":  roles,
	})
}

// Assign grants a role to a user on the form.
func (h *AccessHandler) Assign(c echo.Context) error {
	var body validator.RoleAssignmentRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&body); err != nil {
		return err
	}

	err := h.access.AssignRole(c.Request().Context(), body.UserID, c.Param("formId"), body.RoleCode)
	if err != nil {
		if errors.Is(err, services.ErrUnknownRole) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusCreated)
}

// Unassign removes a role from a user on the form.
func (h *AccessHandler) Unassign(c echo.Context) error {
	err := h.access.UnassignRole(c.Request().Context(), c.Param("userId"), c.Param("formId"), c.Param("roleCode"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
