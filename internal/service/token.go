package service

import (
	"fmt"
	"time"

	"github.com/codequest/backend/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Session lifetimes.
const (
	SignupTokenTTL = time.Hour
	LoginTokenTTL  = 7 * 24 * time.Hour
)

type tokenClaims struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies HS256 bearer tokens.
type TokenIssuer struct {
	secret []byte
	now    func() time.Time
}

// NewTokenIssuer creates an issuer for secret.
func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret), now: time.Now}
}

// Issue signs a token for the account valid for ttl.
func (t *TokenIssuer) Issue(a *domain.Account, ttl time.Duration) (string, error) {
	now := t.now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   a.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if a.Email != nil {
		claims.Email = *a.Email
	}
	if a.Phone != nil {
		claims.Phone = *a.Phone
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", domain.ErrInternal("failed to sign token", err)
	}
	return signed, nil
}

// Verify validates a token and returns its claims.
func (t *TokenIssuer) Verify(tokenStr string) (*domain.JWTClaims, error) {
	var claims tokenClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, domain.ErrUnauthorized("invalid or expired token")
	}
	if claims.Subject == "" {
		return nil, domain.ErrUnauthorized("invalid token claims")
	}
	return &domain.JWTClaims{Sub: claims.Subject, Email: claims.Email, Phone: claims.Phone}, nil
}
