package middleware

import (
	"time"

	applogger "FxPilot/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RequestLogging logs one line per request. 5xx are errors, slow requests warnings.
func RequestLogging(l *applogger.Logger, slowThreshold time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			took := time.Since(start)
			status := c.Response().Status
			fields := []applogger.Field{
				applogger.String("method", c.Request().Method),
				applogger.String("route", routeLabel(c)),
				applogger.Int("status", status),
				applogger.Duration("took", took),
				applogger.Int64("bytes", c.Response().Size),
			}
			switch {
			case status >= 500:
				l.Error("http request failed", fields...)
			case slowThreshold > 0 && took >= slowThreshold:
				l.Warn("http request slow", fields...)
			default:
				l.Debug("http request", fields...)
			}
			return nil
		}
	}
}
