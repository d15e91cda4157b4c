package middleware

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"slotpoll/core/config"
	"slotpoll/core/logger"
)

// Middleware bundles the cross-cutting echo middleware. There is no auth
// middleware: viewers self-identify by name and the organizer check is a
// name comparison done in the service layer.
type Middleware struct {
	cfg *config.AppConfig
}

func NewMiddleware(cfg *config.AppConfig) *Middleware {
	return &Middleware{cfg: cfg}
}

func (m *Middleware) CORS() echo.MiddlewareFunc {
	return echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: m.cfg.Server.CORSOrigins,
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
	})
}

func (m *Middleware) RequestLogger() echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			logger.Info("request",
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
			)
			return nil
		},
	})
}

func (m *Middleware) Recover() echo.MiddlewareFunc {
	return echomw.Recover()
}
