package domain

import "time"

// RoleAdmin is the role required to manage events.
const RoleAdmin = "admin"

// TokenIssuer issues signed admin tokens.
type TokenIssuer interface {
	Issue(subject string, roles []string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a bearer token and returns the authenticated subject.
type TokenVerifier interface {
	Verify(token string) (subject string, err error)
}
