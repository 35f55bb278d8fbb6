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

// SetupAccessRoutes wires role assignment and permission lookups.
func SetupAccessRoutes(api *echo.Group, db *gorm.DB) {
	log := logger.New("access_routes")

	accessService := services.NewAccessService(db)
	handler := handlers.NewAccessHandler(accessService)

	forms := api.Group("/forms/:formId")
	forms.GET("/permissions/me", handler.MyPermissions)
	forms.GET("/roles/me", handler.MyRoles)
	forms.POST("/roles", handler.Assign,
		apimiddleware.RequireFormPermission(accessService, models.PermissionFormShare))
	forms.DELETE("/roles/:userId/:roleCode", handler.Unassign,
		apimiddleware.RequireFormPermission(accessService, models.PermissionFormShare))

	log.Success("Access routes initialized successfully")
}
