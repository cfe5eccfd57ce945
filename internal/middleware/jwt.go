package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "errors"   // sentinel for a missing or malformed Authorization header
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for splitting the header

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/altera-oes/backend/internal/utils" // token verification results and errors
)

// ErrMissingToken is returned when the Authorization header is absent or is
// not of the form "Bearer <token>".
var ErrMissingToken = errors.New("missing bearer token")

// TokenVerifier verifies a raw access token.  *utils.TokenService
// implements it.
type TokenVerifier interface {
    Verify(raw string) (utils.Identity, error)
}

// Authenticate extracts the bearer token from an Authorization header value
// and verifies it.  It returns ErrMissingToken for an absent or malformed
// header and propagates utils.ErrTokenInvalid / utils.ErrTokenExpired from
// the verifier.
func Authenticate(tokens TokenVerifier, header string) (utils.Identity, error) {
    scheme, raw, ok := strings.Cut(strings.TrimSpace(header), " ")
    if !ok || !strings.EqualFold(scheme, "Bearer") {
        return utils.Identity{}, ErrMissingToken
    }
    raw = strings.TrimSpace(raw)
    if raw == "" {
        return utils.Identity{}, ErrMissingToken
    }
    return tokens.Verify(raw)
}

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// exposes the verified identity to the wrapped handler.  A missing token is
// answered with 401, an invalid or expired one with 403.  On success the
// identity is stored both in the echo context ("user_id", "email") and in
// the request's context.Context (see IdentityFromContext); neither outlives
// the request.
func JWTAuth(tokens TokenVerifier) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            id, err := Authenticate(tokens, c.Request().Header.Get(echo.HeaderAuthorization))
            switch {
            case err == nil:
            case errors.Is(err, ErrMissingToken):
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": err.Error()})
            case errors.Is(err, utils.ErrTokenExpired):
                return c.JSON(http.StatusForbidden, echo.Map{"error": "token expired"})
            default:
                return c.JSON(http.StatusForbidden, echo.Map{"error": "invalid token"})
            }

            c.Set(userIDKey, id.UserID)
            c.Set(emailKey, id.Email)
            c.SetRequest(c.Request().WithContext(WithIdentity(c.Request().Context(), id)))
            return next(c)
        }
    }
}
