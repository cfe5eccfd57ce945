package middleware

// identity.go carries the authenticated identity from JWTAuth to handlers,
// through the echo context and the request's context.Context.

import (
    "context"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/altera-oes/backend/internal/utils"
)

const (
    userIDKey = "user_id"
    emailKey  = "email"
)

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id utils.Identity) context.Context {
    return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the identity stored by WithIdentity.
func IdentityFromContext(ctx context.Context) (utils.Identity, bool) {
    id, ok := ctx.Value(identityKey{}).(utils.Identity)
    return id, ok && id.UserID != 0
}

// UserID returns the authenticated user id of the request, or false when
// the request did not pass through JWTAuth.
func UserID(c echo.Context) (uint64, bool) {
    if id, ok := IdentityFromContext(c.Request().Context()); ok {
        return id.UserID, true
    }
    switch t := c.Get(userIDKey).(type) {
    case uint64:
        return t, t != 0
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, n != 0
        }
    }
    return 0, false
}

// Email returns the authenticated user's email, or "" when anonymous.
func Email(c echo.Context) string {
    if id, ok := IdentityFromContext(c.Request().Context()); ok {
        return id.Email
    }
    s, _ := c.Get(emailKey).(string)
    return s
}
