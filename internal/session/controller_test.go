package session

import (
	"context"
	"sync"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casekit/case-gateway/internal/domain"
	"github.com/casekit/case-gateway/internal/token"
	apperrors "github.com/casekit/case-gateway/pkg/util"
)

var testNow = time.Unix(1_700_000_000, 0)

func testToken(t *testing.T, user *domain.User, expiresAt time.Time) string {
	t.Helper()
	claims := &token.Claims{
		Username: user.Username,
		Email:    user.Email,
		FullName: user.FullName,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(testNow.Add(-time.Hour)),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

// fakeAuthAPI scripts the auth backend per call.
type fakeAuthAPI struct {
	mu           sync.Mutex
	loginFn      func(ctx context.Context, username, password string) (*AuthResult, error)
	refreshFn    func(ctx context.Context, currentToken string) (*AuthResult, error)
	updateFn     func(ctx context.Context, currentToken string, update domain.ProfileUpdate) (*domain.ProfileUpdate, error)
	loginCalls   int
	refreshCalls int
}

func (f *fakeAuthAPI) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	f.mu.Lock()
	f.loginCalls++
	fn := f.loginFn
	f.mu.Unlock()
	return fn(ctx, username, password)
}

func (f *fakeAuthAPI) Refresh(ctx context.Context, currentToken string) (*AuthResult, error) {
	f.mu.Lock()
	f.refreshCalls++
	fn := f.refreshFn
	f.mu.Unlock()
	return fn(ctx, currentToken)
}

func (f *fakeAuthAPI) UpdateProfile(ctx context.Context, currentToken string, update domain.ProfileUpdate) (*domain.ProfileUpdate, error) {
	return f.updateFn(ctx, currentToken, update)
}

func (f *fakeAuthAPI) refreshCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshCalls
}

func newTestController(store Store, api AuthAPI) *Controller {
	return NewController(store, api, Options{
		SessionID:     "sid-test",
		CheckInterval: time.Hour,
		Inspector:     token.NewInspectorAt(func() time.Time { return testNow }),
	})
}

func freshResult(t *testing.T, user *domain.User) *AuthResult {
	return &AuthResult{Token: testToken(t, user, testNow.Add(time.Hour)), User: user}
}

func TestLoginSuccess(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	user := sampleUser()
	res := freshResult(t, user)
	api := &fakeAuthAPI{
		loginFn: func(_ context.Context, username, password string) (*AuthResult, error) {
			assert.Equal(t, "somchai", username)
			assert.Equal(t, "password123", password)
			return res, nil
		},
	}
	ctl := newTestController(store, api)
	defer ctl.Close()

	result := ctl.Login(ctx, "somchai", "password123")

	require.True(t, result.Success)
	assert.Equal(t, StateAuthenticated, ctl.State())
	assert.Equal(t, res.Token, ctl.Token())

	storedToken, ok, _ := store.GetToken(ctx)
	require.True(t, ok)
	assert.Equal(t, res.Token, storedToken)
	storedUser, ok, _ := store.GetUser(ctx)
	require.True(t, ok)
	assert.Equal(t, user, storedUser)
}

func TestLoginNetworkFailure(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	api := &fakeAuthAPI{
		loginFn: func(context.Context, string, string) (*AuthResult, error) {
			return nil, apperrors.NewNetworkError(context.DeadlineExceeded)
		},
	}
	ctl := newTestController(store, api)

	result := ctl.Login(ctx, "somchai", "password123")

	require.False(t, result.Success)
	assert.Equal(t, "Network error - please check your connection", result.Error)
	assert.Equal(t, StateUnauthenticated, ctl.State())
	_, ok, _ := store.GetToken(ctx)
	assert.False(t, ok)
}

func TestLoginRejectedCredentials(t *testing.T) {
	api := &fakeAuthAPI{
		loginFn: func(context.Context, string, string) (*AuthResult, error) {
			return nil, apperrors.NewUpstreamRejected("invalid username or password")
		},
	}
	ctl := newTestController(NewMemoryStore(), api)

	result := ctl.Login(context.Background(), "somchai", "wrong")

	require.False(t, result.Success)
	assert.Equal(t, "invalid username or password", result.Error)
	assert.Equal(t, StateUnauthenticated, ctl.State())
}

func TestInitializeWithValidSession(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	user := sampleUser()
	tok := testToken(t, user, testNow.Add(time.Hour))
	require.NoError(t, store.SetToken(ctx, tok))
	require.NoError(t, store.SetUser(ctx, user))

	api := &fakeAuthAPI{}
	ctl := newTestController(store, api)
	defer ctl.Close()

	ctl.Initialize(ctx)

	assert.Equal(t, StateAuthenticated, ctl.State())
	assert.False(t, ctl.Loading())
	assert.Equal(t, tok, ctl.Token())
	assert.Equal(t, 0, api.refreshCount())
}

func TestInitializeWithEmptyStore(t *testing.T) {
	ctx := context.Background()
	ctl := newTestController(NewMemoryStore(), &fakeAuthAPI{})

	ctl.Initialize(ctx)

	assert.Equal(t, StateUnauthenticated, ctl.State())
	assert.False(t, ctl.Loading())
}

func TestInitializeRebuildsProfileFromClaims(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	user := sampleUser()
	require.NoError(t, store.SetToken(ctx, testToken(t, user, testNow.Add(time.Hour))))

	ctl := newTestController(store, &fakeAuthAPI{})
	defer ctl.Close()

	ctl.Initialize(ctx)

	require.Equal(t, StateAuthenticated, ctl.State())
	got := ctl.User()
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, user.Username, got.Username)
	assert.Equal(t, user.Role, got.Role)

	stored, ok, _ := store.GetUser(ctx)
	require.True(t, ok)
	assert.Equal(t, user.ID, stored.ID)
}

func TestInitializeWithExpiredToken(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	user := sampleUser()
	require.NoError(t, store.SetToken(ctx, testToken(t, user, testNow.Add(-time.Second))))
	require.NoError(t, store.SetUser(ctx, user))

	ctl := newTestController(store, &fakeAuthAPI{})
	ctl.Initialize(ctx)

	assert.Equal(t, StateUnauthenticated, ctl.State())
	_, ok, _ := store.GetToken(ctx)
	assert.False(t, ok)
	_, ok, _ = store.GetUser(ctx)
	assert.False(t, ok)
}

func TestInitializeExpiringSoonRefreshFails(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	user := sampleUser()
	require.NoError(t, store.SetToken(ctx, testToken(t, user, testNow.Add(100*time.Second))))
	require.NoError(t, store.SetUser(ctx, user))

	api := &fakeAuthAPI{
		refreshFn: func(context.Context, string) (*AuthResult, error) {
			return nil, apperrors.NewUnauthorized("session no longer valid")
		},
	}
	ctl := newTestController(store, api)

	ctl.Initialize(ctx)

	assert.Equal(t, StateUnauthenticated, ctl.State())
	assert.False(t, ctl.Loading())
	_, ok, _ := store.GetToken(ctx)
	assert.False(t, ok)
	_, ok, _ = store.GetUser(ctx)
	assert.False(t, ok)
}

func TestInitializeExpiringSoonRefreshSucceeds(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	user := sampleUser()
	require.NoError(t, store.SetToken(ctx, testToken(t, user, testNow.Add(100*time.Second))))
	require.NoError(t, store.SetUser(ctx, user))

	fresh := freshResult(t, user)
	api := &fakeAuthAPI{
		refreshFn: func(context.Context, string) (*AuthResult, error) {
			return fresh, nil
		},
	}
	ctl := newTestController(store, api)
	defer ctl.Close()

	ctl.Initialize(ctx)

	assert.Equal(t, StateAuthenticated, ctl.State())
	assert.Equal(t, fresh.Token, ctl.Token())
	storedToken, ok, _ := store.GetToken(ctx)
	require.True(t, ok)
	assert.Equal(t, fresh.Token, storedToken)
}

func TestInitializeTwiceKeepsOneTicker(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	user := sampleUser()
	require.NoError(t, store.SetToken(ctx, testToken(t, user, testNow.Add(time.Hour))))
	require.NoError(t, store.SetUser(ctx, user))

	ctl := newTestController(store, &fakeAuthAPI{})
	defer ctl.Close()

	ctl.Initialize(ctx)
	first := ctl.stopCh
	require.NotNil(t, first)

	ctl.Initialize(ctx)
	assert.Equal(t, first, ctl.stopCh)
}

func TestRefreshSingleFlight(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	user := sampleUser()

	gate := make(chan struct{})
	fresh := freshResult(t, user)
	api := &fakeAuthAPI{
		loginFn: func(context.Context, string, string) (*AuthResult, error) {
			return freshResult(t, user), nil
		},
		refreshFn: func(context.Context, string) (*AuthResult, error) {
			<-gate
			return fresh, nil
		},
	}
	ctl := newTestController(store, api)
	defer ctl.Close()
	require.True(t, ctl.Login(ctx, "somchai", "password123").Success)

	var wg sync.WaitGroup
	results := make([]Result, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = ctl.Refresh(ctx)
		}(i)
	}

	// Let both callers reach the single-flight gate before releasing.
	time.Sleep(20 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.Equal(t, 1, api.refreshCount())
	for _, r := range results {
		assert.True(t, r.Success)
	}
	assert.Equal(t, fresh.Token, ctl.Token())
}

func TestRefreshFailureForcesLogout(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	user := sampleUser()
	api := &fakeAuthAPI{
		loginFn: func(context.Context, string, string) (*AuthResult, error) {
			return freshResult(t, user), nil
		},
		refreshFn: func(context.Context, string) (*AuthResult, error) {
			return nil, apperrors.NewNetworkError(context.DeadlineExceeded)
		},
	}
	ctl := newTestController(store, api)
	require.True(t, ctl.Login(ctx, "somchai", "password123").Success)

	result := ctl.Refresh(ctx)

	require.False(t, result.Success)
	assert.Equal(t, StateUnauthenticated, ctl.State())
	_, ok, _ := store.GetToken(ctx)
	assert.False(t, ok)
}

func TestLogoutDuringRefreshDiscardsResult(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	user := sampleUser()

	started := make(chan struct{})
	gate := make(chan struct{})
	api := &fakeAuthAPI{
		loginFn: func(context.Context, string, string) (*AuthResult, error) {
			return freshResult(t, user), nil
		},
		refreshFn: func(context.Context, string) (*AuthResult, error) {
			close(started)
			<-gate
			return freshResult(t, user), nil
		},
	}
	ctl := newTestController(store, api)
	require.True(t, ctl.Login(ctx, "somchai", "password123").Success)

	done := make(chan Result, 1)
	go func() { done <- ctl.Refresh(ctx) }()

	<-started
	ctl.Logout(ctx)
	close(gate)
	result := <-done

	assert.False(t, result.Success)
	assert.Equal(t, StateUnauthenticated, ctl.State())
	_, ok, _ := store.GetToken(ctx)
	assert.False(t, ok)
	assert.Nil(t, ctl.User())
}

func TestLogoutClearsEverything(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	user := sampleUser()
	api := &fakeAuthAPI{
		loginFn: func(context.Context, string, string) (*AuthResult, error) {
			return freshResult(t, user), nil
		},
	}
	ctl := newTestController(store, api)
	require.True(t, ctl.Login(ctx, "somchai", "password123").Success)
	for _, key := range PreferenceKeys() {
		require.NoError(t, store.SetPreference(ctx, key, "{}"))
	}

	ctl.Logout(ctx)

	assert.Equal(t, StateUnauthenticated, ctl.State())
	assert.Empty(t, ctl.Token())
	_, ok, _ := store.GetToken(ctx)
	assert.False(t, ok)
	for _, key := range PreferenceKeys() {
		_, ok, _ := store.GetPreference(ctx, key)
		assert.False(t, ok)
	}
}

func TestUpdateProfileMergesEchoedFields(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	user := sampleUser()
	api := &fakeAuthAPI{
		loginFn: func(context.Context, string, string) (*AuthResult, error) {
			return freshResult(t, user), nil
		},
		// The backend echoes only the field it changed; nothing else.
		updateFn: func(_ context.Context, _ string, update domain.ProfileUpdate) (*domain.ProfileUpdate, error) {
			return &domain.ProfileUpdate{Department: update.Department}, nil
		},
	}
	ctl := newTestController(store, api)
	defer ctl.Close()
	require.True(t, ctl.Login(ctx, "somchai", "password123").Success)

	dept := "Cybercrime"
	result := ctl.UpdateProfile(ctx, domain.ProfileUpdate{Department: &dept})

	require.True(t, result.Success)
	got := ctl.User()
	assert.Equal(t, "Cybercrime", got.Department)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, user.Username, got.Username)
	assert.Equal(t, user.Email, got.Email)
	assert.Equal(t, user.Role, got.Role)

	stored, ok, _ := store.GetUser(ctx)
	require.True(t, ok)
	assert.Equal(t, "Cybercrime", stored.Department)
	assert.Equal(t, user.Username, stored.Username)
}

func TestUpdateProfileFailureLeavesSessionUnchanged(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	user := sampleUser()
	api := &fakeAuthAPI{
		loginFn: func(context.Context, string, string) (*AuthResult, error) {
			return freshResult(t, user), nil
		},
		updateFn: func(context.Context, string, domain.ProfileUpdate) (*domain.ProfileUpdate, error) {
			return nil, apperrors.NewUpstreamRejected("email already in use")
		},
	}
	ctl := newTestController(store, api)
	defer ctl.Close()
	require.True(t, ctl.Login(ctx, "somchai", "password123").Success)

	email := "taken@unit.example"
	result := ctl.UpdateProfile(ctx, domain.ProfileUpdate{Email: &email})

	require.False(t, result.Success)
	assert.Equal(t, "email already in use", result.Error)
	assert.Equal(t, StateAuthenticated, ctl.State())
	assert.Equal(t, user.Email, ctl.User().Email)
}

func TestUpdateProfileUnauthorizedForcesLogout(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	user := sampleUser()
	api := &fakeAuthAPI{
		loginFn: func(context.Context, string, string) (*AuthResult, error) {
			return freshResult(t, user), nil
		},
		updateFn: func(context.Context, string, domain.ProfileUpdate) (*domain.ProfileUpdate, error) {
			return nil, apperrors.NewUnauthorized("session no longer valid")
		},
	}
	ctl := newTestController(store, api)
	require.True(t, ctl.Login(ctx, "somchai", "password123").Success)

	dept := "Cybercrime"
	result := ctl.UpdateProfile(ctx, domain.ProfileUpdate{Department: &dept})

	require.False(t, result.Success)
	assert.Equal(t, StateUnauthenticated, ctl.State())
	_, ok, _ := store.GetToken(ctx)
	assert.False(t, ok)
}

func TestBackgroundTickerRefreshesExpiringToken(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	user := sampleUser()
	require.NoError(t, store.SetToken(ctx, testToken(t, user, testNow.Add(10*time.Minute))))
	require.NoError(t, store.SetUser(ctx, user))

	refreshed := make(chan struct{}, 1)
	fresh := freshResult(t, user)
	api := &fakeAuthAPI{
		refreshFn: func(context.Context, string) (*AuthResult, error) {
			select {
			case refreshed <- struct{}{}:
			default:
			}
			return fresh, nil
		},
	}

	// The stored token is not expiring soon yet, so Initialize settles
	// without refreshing; the ticker then sees a shrinking remaining
	// window once the clock moves inside it.
	var mu sync.Mutex
	now := testNow
	ctl := NewController(store, api, Options{
		CheckInterval: 10 * time.Millisecond,
		Inspector: token.NewInspectorAt(func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return now
		}),
	})
	defer ctl.Close()

	ctl.Initialize(ctx)
	require.Equal(t, StateAuthenticated, ctl.State())
	require.Equal(t, 0, api.refreshCount())

	mu.Lock()
	now = testNow.Add(6 * time.Minute)
	mu.Unlock()

	select {
	case <-refreshed:
	case <-time.After(2 * time.Second):
		t.Fatal("ticker never triggered a refresh")
	}

	assert.Eventually(t, func() bool {
		return ctl.Token() == fresh.Token
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, StateAuthenticated, ctl.State())
}
