package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify_RoundTrip(t *testing.T) {
	t.Parallel()

	svc := NewTokenService("super-secret", time.Hour)

	tok, err := svc.Issue(42, "ana@example.com")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.Exp, 2*time.Second)

	id, err := svc.Verify(tok.Token)
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: 42, Email: "ana@example.com"}, id)
}

func TestNewTokenService_DefaultTTL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultAccessTTL, NewTokenService("k", 0).TTL())
	assert.Equal(t, time.Minute, NewTokenService("k", time.Minute).TTL())
}

func TestVerify_Expired(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	svc := NewTokenService("secret", time.Hour).WithClock(func() time.Time { return start })

	tok, err := svc.Issue(7, "u@example.com")
	require.NoError(t, err)

	later := svc.WithClock(func() time.Time { return start.Add(time.Hour + time.Second) })
	_, err = later.Verify(tok.Token)
	assert.ErrorIs(t, err, ErrTokenExpired)

	justBefore := svc.WithClock(func() time.Time { return start.Add(59 * time.Minute) })
	_, err = justBefore.Verify(tok.Token)
	assert.NoError(t, err)
}

func TestVerify_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewTokenService("right-secret", time.Hour).Issue(1, "a@b.c")
	require.NoError(t, err)

	_, err = NewTokenService("wrong-secret", time.Hour).Verify(tok.Token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_Tampered(t *testing.T) {
	t.Parallel()

	svc := NewTokenService("k", time.Hour)
	tok, err := svc.Issue(1, "a@b.c")
	require.NoError(t, err)

	parts := strings.Split(tok.Token, ".")
	require.Len(t, parts, 3)
	forged, err := NewTokenService("k", time.Hour).Issue(2, "evil@b.c")
	require.NoError(t, err)
	// payload of another token under the original signature
	parts[1] = strings.Split(forged.Token, ".")[1]

	_, err = svc.Verify(strings.Join(parts, "."))
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_Malformed(t *testing.T) {
	t.Parallel()

	svc := NewTokenService("k", time.Hour)
	for _, raw := range []string{"", "not.a.jwt", "abc"} {
		_, err := svc.Verify(raw)
		assert.ErrorIs(t, err, ErrTokenInvalid, raw)
	}
}

func TestVerify_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	claims := Claims{
		UserID: 1,
		Email:  "a@b.c",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = NewTokenService("k", time.Hour).Verify(raw)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = NewTokenService("k", time.Hour).Verify(none)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerify_MissingClaims(t *testing.T) {
	t.Parallel()

	sign := func(c Claims) string {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte("k"))
		require.NoError(t, err)
		return raw
	}
	exp := jwt.NewNumericDate(time.Now().Add(time.Hour))
	svc := NewTokenService("k", time.Hour)

	cases := map[string]Claims{
		"no exp":           {UserID: 1, Email: "a@b.c", RegisteredClaims: jwt.RegisteredClaims{Subject: "1"}},
		"no email":         {UserID: 1, RegisteredClaims: jwt.RegisteredClaims{Subject: "1", ExpiresAt: exp}},
		"subject mismatch": {UserID: 1, Email: "a@b.c", RegisteredClaims: jwt.RegisteredClaims{Subject: "2", ExpiresAt: exp}},
		"bad subject":      {UserID: 1, Email: "a@b.c", RegisteredClaims: jwt.RegisteredClaims{Subject: "x", ExpiresAt: exp}},
	}
	for name, c := range cases {
		_, err := svc.Verify(sign(c))
		assert.ErrorIs(t, err, ErrTokenInvalid, name)
	}
}
