package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/altera-oes/backend/internal/handler"    // import the handlers that implement business logic
	"github.com/altera-oes/backend/internal/logging"    // structured request logs
	"github.com/altera-oes/backend/internal/metrics"    // request duration histogram
	"github.com/altera-oes/backend/internal/middleware" // JWT authentication, caching, metrics
)

// Setup installs the global middleware chain and the request validator.
// Recover keeps a panicking handler from taking the process down; request
// ids are UUIDs so they can be correlated across logs and events.
func Setup(e *echo.Echo, log logging.Logger, m *metrics.Metrics, corsOrigins []string) {
	e.HideBanner = true
	e.Validator = handler.NewValidator()

	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: corsOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	if m != nil {
		e.Use(middleware.Metrics(m))
	}
}

// RegisterRoutes registers operational routes that do not require
// authentication: the health check and the Prometheus endpoint.
func RegisterRoutes(e *echo.Echo, db handler.Pinger, gatherer prometheus.Gatherer) {
	e.GET("/healthz", handler.Health(db))
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}

// RegisterAuth registers the unauthenticated register and login routes.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/api")
	g.POST("/register", a.Register)
	g.POST("/authenticate", a.Authenticate)
}

// RegisterContact exposes the public contact form.
func RegisterContact(e *echo.Echo, h *handler.ContactHandler) {
	e.POST("/api/contact", h.Create)
}

// RegisterComments registers comment listing (public, cached) and creation
// (requires a valid access token).
func RegisterComments(e *echo.Echo, h *handler.CommentHandler, tokens middleware.TokenVerifier, cache echo.MiddlewareFunc) {
	e.GET("/api/comments", h.List, cache)
	e.POST("/api/comments", h.Create, middleware.JWTAuth(tokens))
}
