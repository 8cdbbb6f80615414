package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/ZETA-AI-ORG/onboard/pkg/reqctx"
)

// HeaderCompanyID is the header key for the acting company
const HeaderCompanyID = "X-Company-ID"

func Context() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			req := c.Request()

			requestID := req.Header.Get(echo.HeaderXRequestID)
			if requestID == "" {
				requestID = uuid.New().String()
			}

			companyID := req.Header.Get(HeaderCompanyID)

			ctx := req.Context()
			ctx = reqctx.SetRequestID(ctx, requestID)
			ctx = reqctx.SetMethod(ctx, req.Method)
			ctx = reqctx.SetRoute(ctx, req.URL.Path)
			ctx = reqctx.SetRemoteIP(ctx, c.RealIP())
			ctx = reqctx.SetCompanyID(ctx, companyID)

			c.SetRequest(req.WithContext(ctx))

			return next(c)
		}
	}
}
