package token

import (
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/casekit/case-gateway/internal/domain"
)

// ExpiringSoonWindow is how close to expiry a token may get before the
// session is refreshed.
const ExpiringSoonWindow = 5 * time.Minute

// Claims describes the JWT payload issued by the auth backend.
type Claims struct {
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	FullName    string      `json:"fullName"`
	Role        domain.Role `json:"role"`
	Department  string      `json:"department"`
	BadgeNumber string      `json:"badgeNumber"`
	jwt.RegisteredClaims
}

// Inspector reads a token's embedded claims without verifying the
// signature. Cryptographic validation is the auth backend's job; this
// layer only answers expiry questions and maps claims to a profile, so
// every answer it gives is advisory.
type Inspector struct {
	now func() time.Time
}

// NewInspector returns an Inspector using the wall clock.
func NewInspector() *Inspector {
	return &Inspector{now: time.Now}
}

// NewInspectorAt returns an Inspector with an injected clock.
func NewInspectorAt(now func() time.Time) *Inspector {
	return &Inspector{now: now}
}

// Decode parses the claim segment of the token. It returns false on any
// structural failure: malformed encoding or missing subject/expiry.
func (i *Inspector) Decode(tokenStr string) (*Claims, bool) {
	if tokenStr == "" {
		return nil, false
	}
	claims := &Claims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenStr, claims); err != nil {
		return nil, false
	}
	if claims.Subject == "" || claims.ExpiresAt == nil {
		return nil, false
	}
	return claims, true
}

// IsValid reports whether the token decodes and its expiry is strictly
// after the current time.
func (i *Inspector) IsValid(tokenStr string) bool {
	claims, ok := i.Decode(tokenStr)
	if !ok {
		return false
	}
	return claims.ExpiresAt.Time.After(i.now())
}

// IsExpiringSoon reports whether less than ExpiringSoonWindow remains
// before expiry. Undecodable tokens read as expiring so callers refresh
// or log out rather than trusting them.
func (i *Inspector) IsExpiringSoon(tokenStr string) bool {
	claims, ok := i.Decode(tokenStr)
	if !ok {
		return true
	}
	return claims.ExpiresAt.Time.Sub(i.now()) < ExpiringSoonWindow
}

// TimeRemaining returns the time until expiry, floored at zero.
func (i *Inspector) TimeRemaining(tokenStr string) time.Duration {
	claims, ok := i.Decode(tokenStr)
	if !ok {
		return 0
	}
	remaining := claims.ExpiresAt.Time.Sub(i.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// UserFromClaims maps token claims onto a profile record. CreatedAt is
// derived from the issued-at claim; the token carries no activity flag
// so IsActive defaults true.
func UserFromClaims(claims *Claims) *domain.User {
	if claims == nil {
		return nil
	}
	user := &domain.User{
		ID:          claims.Subject,
		Username:    claims.Username,
		Email:       claims.Email,
		FullName:    claims.FullName,
		Role:        claims.Role,
		Department:  claims.Department,
		BadgeNumber: claims.BadgeNumber,
		IsActive:    true,
	}
	if claims.IssuedAt != nil {
		user.CreatedAt = claims.IssuedAt.Time
	}
	return user
}
