package middleware

import (
	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectoinject/ectocontainer"
	"github.com/labstack/echo/v4"
)

// Inject attaches the DI container to every request context so handlers can
// resolve their dependencies with ectoinject.GetContext.
func Inject(container ectocontainer.DIContainer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx, _ := ectoinject.SetActiveContainer(req.Context(), container.GetContainerID())
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}
