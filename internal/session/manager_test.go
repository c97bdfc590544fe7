package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casekit/case-gateway/internal/token"
)

func newTestManager(api AuthAPI) (*Manager, map[string]*MemoryStore) {
	stores := make(map[string]*MemoryStore)
	var mu sync.Mutex
	factory := func(sessionID string) Store {
		mu.Lock()
		defer mu.Unlock()
		if s, ok := stores[sessionID]; ok {
			return s
		}
		s := NewMemoryStore()
		stores[sessionID] = s
		return s
	}
	m := NewManager(factory, api, ManagerOptions{
		CheckInterval: time.Hour,
		Inspector:     token.NewInspectorAt(func() time.Time { return testNow }),
	})
	return m, stores
}

func TestResumeUnknownSession(t *testing.T) {
	m, _ := newTestManager(&fakeAuthAPI{})

	ctl, ok := m.Resume(context.Background(), "never-seen")

	assert.False(t, ok)
	assert.Nil(t, ctl)
}

func TestResumeEmptySessionID(t *testing.T) {
	m, _ := newTestManager(&fakeAuthAPI{})

	_, ok := m.Resume(context.Background(), "")

	assert.False(t, ok)
}

func TestResumeReturnsLiveController(t *testing.T) {
	ctx := context.Background()
	user := sampleUser()
	api := &fakeAuthAPI{
		loginFn: func(context.Context, string, string) (*AuthResult, error) {
			return freshResult(t, user), nil
		},
	}
	m, _ := newTestManager(api)
	defer m.Shutdown()

	created := m.Create("sid-1")
	require.True(t, created.Login(ctx, "somchai", "password123").Success)

	resumed, ok := m.Resume(ctx, "sid-1")

	require.True(t, ok)
	assert.Same(t, created, resumed)
}

func TestResumeRebuildsFromStore(t *testing.T) {
	ctx := context.Background()
	user := sampleUser()
	m, stores := newTestManager(&fakeAuthAPI{})
	defer m.Shutdown()

	// Seed durable state as a previous process would have left it.
	store := NewMemoryStore()
	require.NoError(t, store.SetToken(ctx, testToken(t, user, testNow.Add(time.Hour))))
	require.NoError(t, store.SetUser(ctx, user))
	stores["sid-2"] = store

	ctl, ok := m.Resume(ctx, "sid-2")

	require.True(t, ok)
	assert.Equal(t, StateAuthenticated, ctl.State())
	assert.Equal(t, user.ID, ctl.User().ID)

	again, ok := m.Resume(ctx, "sid-2")
	require.True(t, ok)
	assert.Same(t, ctl, again)
}

func TestDropForgetsController(t *testing.T) {
	ctx := context.Background()
	user := sampleUser()
	api := &fakeAuthAPI{
		loginFn: func(context.Context, string, string) (*AuthResult, error) {
			return freshResult(t, user), nil
		},
	}
	m, stores := newTestManager(api)
	defer m.Shutdown()

	ctl := m.Create("sid-3")
	require.True(t, ctl.Login(ctx, "somchai", "password123").Success)
	ctl.Logout(ctx)
	m.Drop("sid-3")

	_, ok := m.Resume(ctx, "sid-3")
	assert.False(t, ok)
	_, has, _ := stores["sid-3"].GetToken(ctx)
	assert.False(t, has)
}

func TestDropWithoutLogoutKeepsSessionResumable(t *testing.T) {
	ctx := context.Background()
	user := sampleUser()
	api := &fakeAuthAPI{
		loginFn: func(context.Context, string, string) (*AuthResult, error) {
			return freshResult(t, user), nil
		},
	}
	m, _ := newTestManager(api)
	defer m.Shutdown()

	ctl := m.Create("sid-4")
	require.True(t, ctl.Login(ctx, "somchai", "password123").Success)
	m.Drop("sid-4")

	resumed, ok := m.Resume(ctx, "sid-4")
	require.True(t, ok)
	assert.NotSame(t, ctl, resumed)
	assert.Equal(t, StateAuthenticated, resumed.State())
}

func TestConcurrentResumeSharesOneController(t *testing.T) {
	ctx := context.Background()
	user := sampleUser()
	m, stores := newTestManager(&fakeAuthAPI{})
	defer m.Shutdown()

	store := NewMemoryStore()
	require.NoError(t, store.SetToken(ctx, testToken(t, user, testNow.Add(time.Hour))))
	require.NoError(t, store.SetUser(ctx, user))
	stores["sid-5"] = store

	const callers = 8
	controllers := make([]*Controller, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ctl, _ := m.Resume(ctx, "sid-5")
			controllers[i] = ctl
		}(i)
	}
	wg.Wait()

	final, ok := m.Resume(ctx, "sid-5")
	require.True(t, ok)
	for _, ctl := range controllers {
		require.NotNil(t, ctl)
		assert.Same(t, final, ctl)
	}
}
