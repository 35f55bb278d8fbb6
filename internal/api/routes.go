package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	apimiddleware "formgate/internal/api/middleware"
	"formgate/internal/models"
	"formgate/internal/routes"
	"formgate/internal/services"
)

func (s *Server) registerRoutes() {
	// Health check
	s.echo.GET("/health", s.healthCheck)

	auth := apimiddleware.NewAuthMiddleware(s.config.JWT.Secret, s.db)
	embedService := services.NewEmbedService(s.db)
	accessService := services.NewAccessService(s.db)

	// Public form surface: anonymous callers allowed, framing headers
	// computed per request from the embed-domain allow list.
	public := s.echo.Group("/forms/:formId",
		auth.Optional(),
		apimiddleware.EmbedSecurityHeaders(embedService),
	)
	public.GET("/render", s.renderForm(accessService))

	// Authenticated API
	api := s.echo.Group("/api/v1")
	api.Use(auth.Middleware())

	routes.SetupAccessRoutes(api, s.db)
	routes.SetupEmbedRoutes(api, s.db)
}

// renderForm is the embeddable surface. Schema rendering itself lives in the
// form-runtime service; this endpoint authorizes the read and returns the
// form metadata the runtime bootstraps from.
func (s *Server) renderForm(access *services.AccessService) echo.HandlerFunc {
	return func(c echo.Context) error {
		formID := c.Param("formId")

		var form models.Form
		if err := s.db.WithContext(c.Request().Context()).First(&form, "id = ?", formID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return echo.NewHTTPError(http.StatusNotFound, "form not found")
			}
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}

		perms, err := access.EffectivePermissions(c.Request().Context(), apimiddleware.GetUserID(c), formID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if !apimiddleware.HasPermission(perms, models.PermissionFormRead) {
			return echo.NewHTTPError(http.StatusForbidden, "form is not publicly accessible")
		}

		return c.JSON(http.StatusOK, map[string]interface{}{
			"id":           form.ID,
			"title":        form.Title,
			"publicAccess": form.PublicAccess,
			"permissions":  perms,
		})
	}
}
