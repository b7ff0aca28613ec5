package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"eventbooking/internal/domain"
)

// APIKeySubject is the subject reported when the raw shared secret is presented.
const APIKeySubject = "api-key"

type jwtClaims struct {
	jwt.RegisteredClaims
	Roles []string `json:"roles"`
}

type jwtIssuer struct {
	secret []byte
}

// NewJWTIssuer returns a TokenIssuer that signs JWTs with HS256 using the given secret.
func NewJWTIssuer(secret string) domain.TokenIssuer {
	return &jwtIssuer{secret: []byte(secret)}
}

func (i *jwtIssuer) Issue(subject string, roles []string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
		Roles: roles,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

type adminVerifier struct {
	secret []byte
}

// NewAdminVerifier returns a TokenVerifier accepting either the shared secret itself
// or an unexpired HS256 JWT signed with it that carries the admin role.
func NewAdminVerifier(secret string) domain.TokenVerifier {
	return &adminVerifier{secret: []byte(secret)}
}

func (v *adminVerifier) Verify(token string) (string, error) {
	if len(v.secret) == 0 || token == "" {
		return "", domain.ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(token), v.secret) == 1 {
		return APIKeySubject, nil
	}

	claims := &jwtClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return "", errors.Join(domain.ErrUnauthorized, err)
	}
	if !slices.Contains(claims.Roles, domain.RoleAdmin) {
		return "", fmt.Errorf("%w: token lacks %s role", domain.ErrUnauthorized, domain.RoleAdmin)
	}
	return claims.Subject, nil
}
