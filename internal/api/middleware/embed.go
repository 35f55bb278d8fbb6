package middleware

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"

	"formgate/internal/utils/logger"
)

var embedLog = logger.New("embed_headers")

// Default, maximally restrictive framing posture.
const (
	defaultCSP          = "frame-ancestors 'self';"
	defaultFrameOptions = "SAMEORIGIN"
)

// OriginEvaluator decides whether an origin may embed a form. Satisfied by
// services.EmbedService.
type OriginEvaluator interface {
	AllowsOrigin(ctx context.Context, formID, origin string) (bool, error)
}

// EmbedSecurityHeaders sets the framing security headers on every response.
// The restrictive defaults are relaxed for a specific origin only when the
// evaluator explicitly allows it; on any evaluator error the defaults stand
// and the error is logged. The middleware never blocks the request itself.
func EmbedSecurityHeaders(evaluator OriginEvaluator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Response().Header()
			header.Set(echo.HeaderContentSecurityPolicy, defaultCSP)
			header.Set(echo.HeaderXFrameOptions, defaultFrameOptions)

			formID := c.Param("formId")
			origin := c.Request().Header.Get(echo.HeaderOrigin)

			if formID != "" && origin != "" {
				allowed, err := evaluator.AllowsOrigin(c.Request().Context(), formID, origin)
				switch {
				case err != nil:
					// absorb, but only ever toward the restrictive posture
					embedLog.Warn("Embed trust check failed for form %s, origin %s: %v", formID, origin, err)
				case allowed:
					header.Set(echo.HeaderContentSecurityPolicy, fmt.Sprintf("frame-ancestors 'self' %s;", origin))
					header.Set(echo.HeaderXFrameOptions, "ALLOW-FROM "+origin)
				}
			}

			return next(c)
		}
	}
}
