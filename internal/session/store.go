package session

import (
	"context"

	"github.com/casekit/case-gateway/internal/domain"
)

// Storage keys. The store holds exactly two session records plus two
// cached UI preference entries cleared on logout.
const (
	keyToken          = "auth_token"
	keyUser           = "user"
	keyDashboardPrefs = "dashboard_preferences"
	keyCaseFilters    = "case_filters"
)

// PreferenceKeys lists the auxiliary entries a client may cache
// alongside its session.
func PreferenceKeys() []string {
	return []string{keyDashboardPrefs, keyCaseFilters}
}

// Store persists one browser session's token and profile in a durable
// key-value store. Implementations keep no in-memory cache; every call
// round-trips to the backing store. The controller receives a Store
// instance by injection, never through ambient globals, so tests can
// substitute doubles.
type Store interface {
	// SetToken stores the token string, overwriting any prior value.
	SetToken(ctx context.Context, token string) error
	// GetToken returns the stored token, or false if never set or
	// cleared.
	GetToken(ctx context.Context) (string, bool, error)
	// RemoveToken clears both the token and the profile. A profile
	// without a token is meaningless, so the removal is deliberately
	// asymmetric.
	RemoveToken(ctx context.Context) error

	// SetUser serializes and stores the full profile, overwriting.
	SetUser(ctx context.Context, user *domain.User) error
	// GetUser deserializes the stored profile. Malformed stored data
	// reads as absent rather than failing; corrupt state is treated as
	// no session.
	GetUser(ctx context.Context) (*domain.User, bool, error)

	// SetPreference stores a cached UI preference under one of the
	// PreferenceKeys.
	SetPreference(ctx context.Context, key, value string) error
	// GetPreference returns a cached preference, or false when unset.
	GetPreference(ctx context.Context, key string) (string, bool, error)

	// Clear removes the token, profile and all cached preferences.
	Clear(ctx context.Context) error
}
