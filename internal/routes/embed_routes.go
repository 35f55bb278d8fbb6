package routes

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	apimiddleware "formgate/internal/api/middleware"
	"formgate/internal/handlers"
	"formgate/internal/models"
	"formgate/internal/services"
	"formgate/internal/utils/logger"
)

// SetupEmbedRoutes wires the embed-domain workflow under the authenticated
// API group.
func SetupEmbedRoutes(api *echo.Group, db *gorm.DB) {
	log := logger.New("embed_routes")

	embedService := services.NewEmbedService(db)
	accessService := services.NewAccessService(db)
	handler := handlers.NewEmbedHandler(embedService, accessService)

	forms := api.Group("/forms/:formId/embed-domains")
	forms.GET("", handler.ListAllowed)
	forms.GET("/requests", handler.ListRequested,
		apimiddleware.RequireFormPermission(accessService, models.PermissionEmbedDomainReview))
	forms.POST("", handler.Request,
		apimiddleware.RequireFormPermission(accessService, models.PermissionEmbedDomainRequest))

	// Addressed by domain id; the handlers resolve the owning form before
	// checking review permission.
	domains := api.Group("/embed-domains")
	domains.PUT("/:requestId/review", handler.Review)
	domains.GET("/:domainId/history", handler.History)
	domains.DELETE("/:domainId", handler.Remove)

	log.Success("Embed routes initialized successfully")
}
