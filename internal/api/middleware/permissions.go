package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// PermissionSource yields the caller's effective permission set on a form.
// Satisfied by services.AccessService.
type PermissionSource interface {
	EffectivePermissions(ctx context.Context, userID, formID string) ([]string, error)
}

// HasPermission reports whether code is in the caller's effective set.
func HasPermission(perms []string, code string) bool {
	for _, p := range perms {
		if p == code {
			return true
		}
	}
	return false
}

// RequireFormPermission gates a route carrying a :formId parameter on the
// caller holding the given permission code. Lookup failures are surfaced as
// errors, never as access.
func RequireFormPermission(access PermissionSource, code string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if IsPlatformAdmin(c) {
				return next(c)
			}

			formID := c.Param("formId")
			if formID == "" {
				return echo.NewHTTPError(http.StatusBadRequest, "missing formId parameter")
			}

			perms, err := access.EffectivePermissions(c.Request().Context(), GetUserID(c), formID)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "permission lookup failed")
			}

			if !HasPermission(perms, code) {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
			}

			return next(c)
		}
	}
}
