package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/altera-oes/backend/internal/utils"
)

func TestIdentityFromContext(t *testing.T) {
	_, ok := IdentityFromContext(context.Background())
	assert.False(t, ok)

	ctx := WithIdentity(context.Background(), utils.Identity{UserID: 4, Email: "d@example.com"})
	id, ok := IdentityFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, uint64(4), id.UserID)
}

func TestUserID_FallsBackToEchoContext(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	_, ok := UserID(c)
	assert.False(t, ok)
	assert.Equal(t, "", Email(c))

	c.Set(userIDKey, "17")
	c.Set(emailKey, "q@example.com")
	id, ok := UserID(c)
	assert.True(t, ok)
	assert.Equal(t, uint64(17), id)
	assert.Equal(t, "q@example.com", Email(c))

	c.Set(userIDKey, "nope")
	_, ok = UserID(c)
	assert.False(t, ok)
}
