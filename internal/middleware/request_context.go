package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/shinyyama/listing-studio/internal/reqctx"
)

// RequestContext copies the request id and the :id route param into the
// request context so service and client logs can be correlated.
func RequestContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		rid := c.Response().Header().Get(echo.HeaderXRequestID)
		if rid == "" {
			rid = c.Request().Header.Get(echo.HeaderXRequestID)
		}
		ctx := reqctx.WithRID(c.Request().Context(), rid)
		if id := c.Param("id"); id != "" {
			ctx = reqctx.WithSessionID(ctx, id)
		}
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}
