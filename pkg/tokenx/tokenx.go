// Package tokenx issues and verifies the signed, typed tokens that carry
// board identities: short-lived access tokens for API calls, refresh tokens
// for silent renewal, and opt-in long-lived session tokens.
package tokenx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/errgroup"

	"github.com/uplist/uplist/pkg/idx"
)

// Token types. A token's type is fixed at issuance and must match the
// operation it is presented for.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
	TypeSession = "session"
)

// Default lifetimes per token type.
const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
	DefaultSessionTTL = 30 * 24 * time.Hour
)

// ErrInvalidToken is returned by Verify for every failure mode: bad
// signature, expiry, wrong issuer or audience, malformed input. Collapsing
// them keeps validation internals from leaking to callers; treat it as
// "unauthenticated", not as an error to propagate.
var ErrInvalidToken = errors.New("tokenx: invalid token")

// Claims is the payload carried inside every signed token.
type Claims struct {
	jwt.RegisteredClaims

	Email       string `json:"email"`
	Role        string `json:"role"`
	DisplayName string `json:"name,omitempty"`
	TokenType   string `json:"typ"`
}

// Identity is the subject a token is minted for.
type Identity struct {
	SubjectID   string
	Email       string
	Role        string
	DisplayName string
}

// TokenPair is the result of a login or refresh. SessionToken is set only
// when the caller opted into extended persistence.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	SessionToken string `json:"sessionToken,omitempty"`
}

// Service signs and verifies tokens with a shared HMAC secret and a fixed
// issuer/audience binding.
type Service struct {
	Secret     []byte
	Issuer     string
	Audience   string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	SessionTTL time.Duration

	// Revocations tracks revoked token IDs. Optional; when nil, IsRevoked
	// always reports false.
	Revocations *RevocationList

	// Now is injectable for tests. Defaults to time.Now.
	Now func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) ttlFor(tokenType string) time.Duration {
	switch tokenType {
	case TypeRefresh:
		if s.RefreshTTL > 0 {
			return s.RefreshTTL
		}
		return DefaultRefreshTTL
	case TypeSession:
		if s.SessionTTL > 0 {
			return s.SessionTTL
		}
		return DefaultSessionTTL
	default:
		if s.AccessTTL > 0 {
			return s.AccessTTL
		}
		return DefaultAccessTTL
	}
}

// CreateAccessToken mints a short-lived access token.
func (s *Service) CreateAccessToken(id Identity) (string, error) {
	return s.create(id, TypeAccess)
}

// CreateRefreshToken mints a refresh token for silent renewal.
func (s *Service) CreateRefreshToken(id Identity) (string, error) {
	return s.create(id, TypeRefresh)
}

// CreateSessionToken mints a long-lived session token ("remember me").
func (s *Service) CreateSessionToken(id Identity) (string, error) {
	return s.create(id, TypeSession)
}

// CreateTokenPair issues the access and refresh tokens concurrently, plus a
// session token when includeSession is set.
func (s *Service) CreateTokenPair(id Identity, includeSession bool) (*TokenPair, error) {
	pair := &TokenPair{}

	var g errgroup.Group
	g.Go(func() error {
		token, err := s.CreateAccessToken(id)
		pair.AccessToken = token
		return err
	})
	g.Go(func() error {
		token, err := s.CreateRefreshToken(id)
		pair.RefreshToken = token
		return err
	})
	if includeSession {
		g.Go(func() error {
			token, err := s.CreateSessionToken(id)
			pair.SessionToken = token
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pair, nil
}

func (s *Service) create(id Identity, tokenType string) (string, error) {
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.Issuer,
			Subject:   id.SubjectID,
			Audience:  jwt.ClaimStrings{s.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttlFor(tokenType))),
			ID:        idx.New().String(),
		},
		Email:       id.Email,
		Role:        id.Role,
		DisplayName: id.DisplayName,
		TokenType:   tokenType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.Secret)
}

// Verify checks the signature, issuer, audience, and expiry of a token and
// returns its claims. It does NOT enforce token type or revocation; callers
// must follow up with ValidateTokenType and IsRevoked.
func (s *Service) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (any, error) { return s.Secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.Issuer),
		jwt.WithAudience(s.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ValidateTokenType reports whether the claims carry exactly the expected
// token type. Verify does not enforce this; every operation that accepts a
// token must call it.
func ValidateTokenType(c *Claims, expected string) bool {
	return c != nil && c.TokenType == expected
}

// Revoke adds a token ID to the revocation list until the token's own
// expiry. No-op when the service has no revocation list.
func (s *Service) Revoke(jti string, expiresAt time.Time) {
	if s.Revocations != nil {
		s.Revocations.Revoke(jti, expiresAt)
	}
}

// IsRevoked reports whether a token ID has been revoked.
func (s *Service) IsRevoked(jti string) bool {
	return s.Revocations != nil && s.Revocations.IsRevoked(jti)
}
