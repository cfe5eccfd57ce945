package middleware

import (
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/altera-oes/backend/internal/metrics"
)

// Metrics records the duration of every request, labelled by the route
// pattern rather than the raw path to keep cardinality bounded.
func Metrics(m *metrics.Metrics) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            start := time.Now()
            err := next(c)

            status := c.Response().Status
            var he *echo.HTTPError
            if errors.As(err, &he) {
                status = he.Code
            } else if err != nil {
                status = http.StatusInternalServerError
            }
            route := c.Path()
            if route == "" {
                route = "unmatched"
            }
            m.ObserveRequest(c.Request().Method, route, status, time.Since(start).Seconds())
            return err
        }
    }
}
