package middleware

import (
	"math"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"cors-anywhere-go/internal/config"
)

// RateLimiter returns a per-client rate limiting middleware. Clients are
// keyed by ipHeader when the request carries it, else by echo's RealIP.
// Rejections carry Access-Control-Allow-Origin: * so that browser callers
// can read the 429.
func RateLimiter(cfg config.RateLimitConfig, ipHeader string) echo.MiddlewareFunc {
	burst := int(math.Ceil(cfg.RequestsPerSecond))
	store := echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
		Rate:  rate.Limit(cfg.RequestsPerSecond),
		Burst: burst,
	})

	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			if ipHeader != "" {
				if ip := c.Request().Header.Get(ipHeader); ip != "" {
					return ip, nil
				}
			}
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, _ error) error {
			c.Response().Header().Set(echo.HeaderAccessControlAllowOrigin, "*")
			return c.JSON(http.StatusForbidden, map[string]string{
				"error": "client identifier unavailable",
			})
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			c.Response().Header().Set(echo.HeaderAccessControlAllowOrigin, "*")
			return c.JSON(http.StatusTooManyRequests, map[string]string{
				"error": "rate limit exceeded",
			})
		},
	})
}
