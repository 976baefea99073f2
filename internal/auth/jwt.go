// Package auth verifies the session tokens issued by the marketplace identity service.
//
// A token is an HS256 JWT whose "sub" claim is the user ID and whose "role" claim is
// the user's role. Verification needs only the shared secret, so no request in this
// module touches the users table just to learn who is calling.
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header:  {"alg":"HS256","typ":"JWT"}
//	- Payload: {"sub":"<userID>","role":"learner","iss":"course-marketplace","exp":...}
//
// Generate exists for the seed command and tests; production tokens come from the
// identity service, which signs with the same secret and issuer.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/sakif/course-marketplace/internal/model"
)

const (
	issuer = "course-marketplace"

	// DefaultTokenLifetime matches the session length of the identity service.
	DefaultTokenLifetime = 24 * time.Hour
)

// TokenService handles JWT creation and validation.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims is the JWT payload: the registered claims plus the caller's role.
type claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Generate signs a token for userID with DefaultTokenLifetime.
func (s *TokenService) Generate(userID string, role model.Role) (string, error) {
	return s.GenerateWithDuration(userID, role, DefaultTokenLifetime)
}

// GenerateWithDuration signs a token that expires d from now. A negative d yields an
// already-expired token, which tests use.
func (s *TokenService) GenerateWithDuration(userID string, role model.Role, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string and returns the Caller it identifies.
//
// The library checks the signature, expiry, issuer and algorithm. Restricting the
// accepted methods to HS256 blocks "alg: none" and key-confusion tokens.
func (s *TokenService) Validate(tokenStr string) (Caller, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Caller{}, fmt.Errorf("auth: token expired")
		}
		return Caller{}, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return Caller{}, fmt.Errorf("auth: invalid token claims")
	}

	if c.Subject == "" {
		return Caller{}, fmt.Errorf("auth: token has no subject")
	}
	role, ok := model.ParseRole(c.Role)
	if !ok {
		return Caller{}, fmt.Errorf("auth: token has unknown role %q", c.Role)
	}

	return Caller{UserID: c.Subject, Role: role}, nil
}
