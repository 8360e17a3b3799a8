package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"cors-anywhere-go/internal/header"
)

// SecurityHeaders returns an Echo middleware that strips hop-by-hop headers
// from incoming requests and sets X-Frame-Options: DENY on responses.
//
// X-Frame-Options is set before the handler runs so that a target's own
// value replaces it. X-Content-Type-Options is not added here: preflight
// responses must not carry it.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()

			// Headers named in Connection are hop-by-hop as well.
			for _, v := range req.Header.Values("Connection") {
				for _, name := range strings.Split(v, ",") {
					if name = strings.TrimSpace(name); name != "" {
						req.Header.Del(name)
					}
				}
			}
			for _, h := range header.HopByHop {
				req.Header.Del(h)
			}

			c.Response().Header().Set("X-Frame-Options", "DENY")

			return next(c)
		}
	}
}
