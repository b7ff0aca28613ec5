package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventbooking/internal/domain"
)

func TestJWTIssuer_Issue(t *testing.T) {
	secret := "test-secret"
	issuer := NewJWTIssuer(secret)

	token, err := issuer.Issue("ops@example.com", []string{domain.RoleAdmin}, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// Parse and verify claims
	parsed, err := jwt.ParseWithClaims(token, &jwtClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	claims, ok := parsed.Claims.(*jwtClaims)
	require.True(t, ok)
	assert.Equal(t, "ops@example.com", claims.Subject)
	assert.Equal(t, []string{domain.RoleAdmin}, claims.Roles)
}

func TestAdminVerifier_Verify(t *testing.T) {
	const secret = "s3cret-key"
	issuer := NewJWTIssuer(secret)

	adminToken, err := issuer.Issue("ops", []string{domain.RoleAdmin}, time.Hour)
	require.NoError(t, err)
	viewerToken, err := issuer.Issue("viewer", []string{"viewer"}, time.Hour)
	require.NoError(t, err)
	expiredToken, err := issuer.Issue("ops", []string{domain.RoleAdmin}, -time.Minute)
	require.NoError(t, err)
	foreignToken, err := NewJWTIssuer("other-secret").Issue("ops", []string{domain.RoleAdmin}, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name        string
		token       string
		wantSubject string
		wantErr     bool
	}{
		{name: "raw shared secret", token: secret, wantSubject: APIKeySubject},
		{name: "admin jwt", token: adminToken, wantSubject: "ops"},
		{name: "wrong secret", token: "nope", wantErr: true},
		{name: "empty token", token: "", wantErr: true},
		{name: "jwt without admin role", token: viewerToken, wantErr: true},
		{name: "expired jwt", token: expiredToken, wantErr: true},
		{name: "jwt signed with another key", token: foreignToken, wantErr: true},
	}

	v := NewAdminVerifier(secret)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, err := v.Verify(tt.token)
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrUnauthorized)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSubject, subject)
		})
	}
}

func TestAdminVerifier_EmptySecretRejectsEverything(t *testing.T) {
	_, err := NewAdminVerifier("").Verify("")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}
