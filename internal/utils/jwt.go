package utils // package utils provides helper functions for token creation and hashing

import (
    "errors"  // sentinel errors for token verification
    "strconv" // user ids travel as decimal strings in the subject claim
    "time"    // time utilities for generating expirations

    "github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
)

// Token verification failures.  Callers map ErrTokenExpired and
// ErrTokenInvalid to the same HTTP status but may log them differently.
var (
    ErrTokenInvalid = errors.New("invalid token")
    ErrTokenExpired = errors.New("token expired")
)

// DefaultAccessTTL is the lifetime of an access token when none is configured.
const DefaultAccessTTL = time.Hour

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the JWT string.  Exp stores the expiration
// timestamp as a time.Time.  Access tokens are sent in the Authorization
// header when calling protected endpoints.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// Identity is the verified content of an access token.
type Identity struct {
    UserID uint64
    Email  string
}

// Claims is the JWT payload.  The subject carries the user id as a string as
// required by RFC 7519; UserID duplicates it numerically for clients that
// read the payload.
type Claims struct {
    UserID uint64 `json:"user_id"`
    Email  string `json:"email"`
    jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 access tokens.  It holds no mutable
// state after construction and is safe for concurrent use.
type TokenService struct {
    secret []byte
    ttl    time.Duration
    now    func() time.Time
}

// NewTokenService builds a TokenService signing with secret.  A non-positive
// ttl selects DefaultAccessTTL.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
    if ttl <= 0 {
        ttl = DefaultAccessTTL
    }
    return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock returns a copy of the service that reads the current time from
// now.  It exists for tests that need to step past token expiry.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
    cp := *s
    cp.now = now
    return &cp
}

// TTL reports the lifetime of issued tokens.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue builds and signs a JWT for a user.  The token embeds the user id,
// the email, issued-at and an expiry of issued-at plus the service TTL.
func (s *TokenService) Issue(userID uint64, email string) (AccessToken, error) {
    // Truncate to whole seconds: NumericDate has second precision and the
    // returned Exp should equal what a verifier reads back.
    iat := s.now().UTC().Truncate(time.Second)
    exp := iat.Add(s.ttl)
    claims := Claims{
        UserID: userID,
        Email:  email,
        RegisteredClaims: jwt.RegisteredClaims{
            Subject:   strconv.FormatUint(userID, 10),
            IssuedAt:  jwt.NewNumericDate(iat),
            ExpiresAt: jwt.NewNumericDate(exp),
        },
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString(s.secret)
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// Verify checks the signature and expiry of raw and returns the identity it
// carries.  Expired tokens fail with ErrTokenExpired; every other defect
// (bad signature, foreign algorithm, garbage input, missing claims) fails
// with ErrTokenInvalid.
func (s *TokenService) Verify(raw string) (Identity, error) {
    claims := &Claims{}
    tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
        return s.secret, nil
    },
        jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
        jwt.WithExpirationRequired(),
        jwt.WithTimeFunc(s.now),
    )
    if err != nil {
        if errors.Is(err, jwt.ErrTokenExpired) {
            return Identity{}, ErrTokenExpired
        }
        return Identity{}, ErrTokenInvalid
    }
    if !tok.Valid {
        return Identity{}, ErrTokenInvalid
    }

    uid, err := strconv.ParseUint(claims.Subject, 10, 64)
    if err != nil || uid == 0 || uid != claims.UserID || claims.Email == "" {
        return Identity{}, ErrTokenInvalid
    }
    return Identity{UserID: uid, Email: claims.Email}, nil
}
