// Package auth issues and verifies the bearer tokens that guard screen
// actions. Reads stay public; anything that changes the screen needs a token
// signed with the shared control secret.
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Defaults for control tokens.
const (
	DefaultIssuer   = "nimbus"
	DefaultAudience = "nimbus-screen"

	// DefaultTokenTTL applies when Issue is called without a TTL.
	DefaultTokenTTL = 24 * time.Hour
)

// Scopes a control token may carry.
const (
	ScopeControl     = "screen:control"
	ScopeDevice      = "device:report"
	ScopeDiagnostics = "diagnostics:read"
)

// Token errors.
var (
	ErrInvalidToken = errors.New("invalid control token")
	ErrTokenExpired = errors.New("control token has expired")
	ErrMissingScope = errors.New("control token lacks required scope")
)

// Claims are the claims of a control token.
type Claims struct {
	jwt.RegisteredClaims

	Scopes []string `json:"scp,omitempty"`
}

// HasScope reports whether the token grants scope.
func (c *Claims) HasScope(scope string) bool {
	return slices.Contains(c.Scopes, scope)
}

// Config holds configuration for the token service.
type Config struct {
	// SigningKey is the HS256 secret shared with whoever mints tokens.
	SigningKey string

	Issuer   string
	Audience string
}

// TokenService mints and validates control tokens.
type TokenService struct {
	signingKey []byte
	issuer     string
	audience   string
	now        func() time.Time
}

// NewTokenService creates a token service. Issuer and audience fall back to
// the package defaults.
func NewTokenService(cfg Config) *TokenService {
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = DefaultIssuer
	}
	audience := cfg.Audience
	if audience == "" {
		audience = DefaultAudience
	}

	return &TokenService{
		signingKey: []byte(cfg.SigningKey),
		issuer:     issuer,
		audience:   audience,
		now:        time.Now,
	}
}

// Issue signs a token for subject with the given scopes.
func (s *TokenService) Issue(subject string, scopes []string, ttl time.Duration) (string, time.Time, error) {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}

	now := s.now()
	expiresAt := now.Add(ttl)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			ID:        generateTokenID(),
		},
		Scopes: scopes,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing control token: %w", err)
	}

	return signed, expiresAt, nil
}

// Validate parses and verifies a token.
func (s *TokenService) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.signingKey, nil
	}, jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, err.Error())
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// Authorize validates a token and checks it carries scope.
func (s *TokenService) Authorize(tokenString, scope string) (*Claims, error) {
	claims, err := s.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	if !claims.HasScope(scope) {
		return nil, fmt.Errorf("%w: %s", ErrMissingScope, scope)
	}
	return claims, nil
}

func generateTokenID() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(bytes)
}
