package middleware

import (
    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"

    "github.com/altera-oes/backend/internal/logging"
)

// RequestLogger logs one structured line per request.
func RequestLogger(log logging.Logger) echo.MiddlewareFunc {
    return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
        LogMethod:    true,
        LogURIPath:   true,
        LogStatus:    true,
        LogLatency:   true,
        LogRequestID: true,
        LogError:     true,
        HandleError:  true,
        LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
            args := []any{
                "method", v.Method,
                "path", v.URIPath,
                "status", v.Status,
                "latency_ms", v.Latency.Milliseconds(),
                "request_id", v.RequestID,
            }
            ctx := c.Request().Context()
            if v.Error != nil {
                log.Error(ctx, "request failed", append(args, "err", v.Error.Error())...)
                return nil
            }
            if v.Status >= 500 {
                log.Warn(ctx, "request", args...)
                return nil
            }
            log.Info(ctx, "request", args...)
            return nil
        },
    })
}
