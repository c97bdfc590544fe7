package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/casekit/case-gateway/internal/domain"
	"github.com/casekit/case-gateway/internal/events"
	"github.com/casekit/case-gateway/internal/token"
	apperrors "github.com/casekit/case-gateway/pkg/util"
)

// State names a point in the session lifecycle.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticating  State = "authenticating"
	StateAuthenticated   State = "authenticated"
	StateRefreshing      State = "refreshing"
)

// DefaultCheckInterval is how often the background ticker re-examines
// the held token for approaching expiry.
const DefaultCheckInterval = time.Minute

// AuthResult is a successful auth backend response: the new token and
// the profile it authorizes.
type AuthResult struct {
	Token string
	User  *domain.User
}

// AuthAPI is the external auth backend contract. Implementations
// return DomainError values so the controller can tell a 401 from a
// connectivity failure; they never retry on their own. UpdateProfile
// returns the backend's echo, which may carry only the fields it
// changed; the controller overlays it onto the held profile.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (*AuthResult, error)
	Refresh(ctx context.Context, currentToken string) (*AuthResult, error)
	UpdateProfile(ctx context.Context, currentToken string, update domain.ProfileUpdate) (*domain.ProfileUpdate, error)
}

// Result is the structured outcome of a network-dependent operation.
// Failures carry the human-readable message the UI shows inline.
type Result struct {
	Success bool
	Error   string
}

func okResult() Result { return Result{Success: true} }

func failResult(msg string) Result { return Result{Success: false, Error: msg} }

// Options tunes a controller.
type Options struct {
	SessionID     string
	CheckInterval time.Duration
	Logger        *zap.Logger
	Dispatcher    events.Dispatcher
	Inspector     *token.Inspector
}

type refreshCall struct {
	done   chan struct{}
	result Result
}

// Controller orchestrates one session's lifecycle: login, logout,
// refresh and profile updates, persisting through the injected Store
// and deciding expiry via the token Inspector. All state transitions
// happen under one mutex; the background ticker and explicit callers
// share a single-flight refresh so at most one refresh request is ever
// outstanding.
type Controller struct {
	store         Store
	api           AuthAPI
	inspector     *token.Inspector
	logger        *zap.Logger
	dispatcher    events.Dispatcher
	sessionID     string
	checkInterval time.Duration

	mu       sync.Mutex
	state    State
	loading  bool
	token    string
	user     *domain.User
	inflight *refreshCall
	stopCh   chan struct{}
}

// NewController builds a controller in the Unauthenticated state with
// the loading flag set, mirroring process start before Initialize runs.
func NewController(store Store, api AuthAPI, opts Options) *Controller {
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = DefaultCheckInterval
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Inspector == nil {
		opts.Inspector = token.NewInspector()
	}
	return &Controller{
		store:         store,
		api:           api,
		inspector:     opts.Inspector,
		logger:        opts.Logger,
		dispatcher:    opts.Dispatcher,
		sessionID:     opts.SessionID,
		checkInterval: opts.CheckInterval,
		state:         StateUnauthenticated,
		loading:       true,
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Loading reports whether Initialize has yet to settle.
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// IsAuthenticated reports whether a usable session is held.
func (c *Controller) IsAuthenticated() bool {
	return c.State() == StateAuthenticated
}

// Token returns the held token string, empty when unauthenticated.
func (c *Controller) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// User returns a copy of the held profile, nil when unauthenticated.
func (c *Controller) User() *domain.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

// Store exposes the injected session store for callers that read or
// write the cached preference entries.
func (c *Controller) Store() Store {
	return c.store
}

// Initialize restores a session from the store. Invalid or absent
// state clears the store and settles Unauthenticated. A valid token
// that is expiring soon gets one refresh attempt; if that fails the
// controller has already forced logout. The loading flag is cleared on
// every path.
func (c *Controller) Initialize(ctx context.Context) {
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.loading = false
		c.mu.Unlock()
	}()

	tok, hasToken, err := c.store.GetToken(ctx)
	if err != nil {
		c.logger.Warn("session store read failed", zap.Error(err))
	}
	user, hasUser, _ := c.store.GetUser(ctx)
	if hasToken && !hasUser {
		// A missing or corrupt profile record is recoverable as long as
		// the token still carries the claims.
		if claims, ok := c.inspector.Decode(tok); ok {
			user = token.UserFromClaims(claims)
			hasUser = true
			if err := c.store.SetUser(ctx, user); err != nil {
				c.logger.Warn("restoring profile failed", zap.Error(err))
			}
		}
	}

	if !hasToken || !hasUser || !c.inspector.IsValid(tok) {
		_ = c.store.RemoveToken(ctx)
		c.mu.Lock()
		c.state = StateUnauthenticated
		c.token = ""
		c.user = nil
		c.mu.Unlock()
		return
	}

	c.mu.Lock()
	c.token = tok
	c.user = user
	c.state = StateAuthenticated
	c.startTickerLocked()
	c.mu.Unlock()

	if c.inspector.IsExpiringSoon(tok) {
		// Refresh forces logout on failure; nothing more to do here.
		c.Refresh(ctx)
	}
}

// Login authenticates against the auth backend and, on success,
// persists the returned token and profile. Failures settle back in
// Unauthenticated with the backend's message; there is no automatic
// retry.
func (c *Controller) Login(ctx context.Context, username, password string) Result {
	c.mu.Lock()
	c.state = StateAuthenticating
	c.mu.Unlock()

	res, err := c.api.Login(ctx, username, password)
	if err != nil {
		c.mu.Lock()
		c.state = StateUnauthenticated
		c.token = ""
		c.user = nil
		c.mu.Unlock()
		msg := apperrors.ToDomainError(err).Message
		c.publish(events.EventLoginFailed, username, "", msg)
		return failResult(msg)
	}

	if err := c.persist(ctx, res); err != nil {
		c.logger.Error("persisting session failed", zap.Error(err))
	}

	c.mu.Lock()
	c.token = res.Token
	c.user = res.User
	c.state = StateAuthenticated
	c.startTickerLocked()
	c.mu.Unlock()

	c.publish(events.EventLogin, res.User.Username, res.User.ID, "")
	return okResult()
}

// Logout clears the session synchronously and unconditionally: held
// state, stored token, profile and cached preferences. It does not
// call the auth backend.
func (c *Controller) Logout(ctx context.Context) {
	c.mu.Lock()
	username, userID := "", ""
	if c.user != nil {
		username, userID = c.user.Username, c.user.ID
	}
	c.stopTickerLocked()
	c.state = StateUnauthenticated
	c.token = ""
	c.user = nil
	c.mu.Unlock()

	if err := c.store.Clear(ctx); err != nil {
		c.logger.Warn("clearing session store failed", zap.Error(err))
	}
	c.publish(events.EventLogout, username, userID, "")
}

// Refresh exchanges the held token for a fresh one. Concurrent callers
// (the ticker and explicit triggers) share a single in-flight call and
// its outcome. Any failure forces logout: an unrefreshable session is
// unsafe to keep alive.
func (c *Controller) Refresh(ctx context.Context) Result {
	c.mu.Lock()
	if c.inflight != nil {
		call := c.inflight
		c.mu.Unlock()
		<-call.done
		return call.result
	}
	if c.state != StateAuthenticated && c.state != StateRefreshing {
		c.mu.Unlock()
		return failResult("no active session")
	}
	call := &refreshCall{done: make(chan struct{})}
	c.inflight = call
	c.state = StateRefreshing
	currentToken := c.token
	c.mu.Unlock()

	call.result = c.doRefresh(ctx, currentToken)

	c.mu.Lock()
	c.inflight = nil
	c.mu.Unlock()
	close(call.done)
	return call.result
}

func (c *Controller) doRefresh(ctx context.Context, currentToken string) Result {
	res, err := c.api.Refresh(ctx, currentToken)
	if err != nil {
		msg := apperrors.ToDomainError(err).Message
		c.publish(events.EventRefreshFailed, "", "", msg)
		c.Logout(ctx)
		return failResult(msg)
	}

	c.mu.Lock()
	// Logout may have raced the response in; a stale result must not
	// re-authenticate the session.
	if c.state != StateRefreshing {
		c.mu.Unlock()
		return failResult("session closed during refresh")
	}
	c.token = res.Token
	c.user = res.User
	c.state = StateAuthenticated
	c.mu.Unlock()

	if err := c.persist(ctx, res); err != nil {
		c.logger.Error("persisting refreshed session failed", zap.Error(err))
	}
	c.publish(events.EventRefreshed, res.User.Username, res.User.ID, "")
	return okResult()
}

// UpdateProfile sends the partial update to the auth backend and, on
// success, shallow-merges the echoed fields into the held profile:
// fields the backend returns overwrite, everything else is retained.
// On failure the session is unchanged, except that a 401 forces
// logout like any other unauthorized response.
func (c *Controller) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) Result {
	c.mu.Lock()
	if c.state != StateAuthenticated || c.user == nil {
		c.mu.Unlock()
		return failResult("no active session")
	}
	currentToken := c.token
	c.mu.Unlock()

	echo, err := c.api.UpdateProfile(ctx, currentToken, update)
	if err != nil {
		if apperrors.IsUnauthorized(err) {
			c.Logout(ctx)
		}
		return failResult(apperrors.ToDomainError(err).Message)
	}

	c.mu.Lock()
	if c.state != StateAuthenticated || c.user == nil {
		c.mu.Unlock()
		return failResult("session closed during update")
	}
	merged := echo.Apply(*c.user)
	c.user = &merged
	c.mu.Unlock()

	if err := c.store.SetUser(ctx, &merged); err != nil {
		c.logger.Error("persisting profile failed", zap.Error(err))
	}
	c.publish(events.EventProfileUpdated, merged.Username, merged.ID, "")
	return okResult()
}

// Close stops the background ticker without touching the store. The
// session manager uses it when evicting an idle controller; the stored
// session stays resumable.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopTickerLocked()
}

func (c *Controller) persist(ctx context.Context, res *AuthResult) error {
	if err := c.store.SetToken(ctx, res.Token); err != nil {
		return err
	}
	return c.store.SetUser(ctx, res.User)
}

// startTickerLocked launches the expiry watcher once. Repeated
// Initialize calls reuse the running ticker instead of stacking a
// second one.
func (c *Controller) startTickerLocked() {
	if c.stopCh != nil {
		return
	}
	stop := make(chan struct{})
	c.stopCh = stop
	go c.watchExpiry(stop)
}

func (c *Controller) stopTickerLocked() {
	if c.stopCh != nil {
		close(c.stopCh)
		c.stopCh = nil
	}
}

func (c *Controller) watchExpiry(stop <-chan struct{}) {
	ticker := time.NewTicker(c.checkInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			tok, state := c.token, c.state
			c.mu.Unlock()
			if state != StateAuthenticated {
				continue
			}
			if c.inspector.IsExpiringSoon(tok) {
				c.Refresh(context.Background())
			}
		}
	}
}

func (c *Controller) publish(eventType events.EventType, username, userID, detail string) {
	if c.dispatcher == nil {
		return
	}
	_ = c.dispatcher.Publish(context.Background(), events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SessionID: c.sessionID,
		UserID:    userID,
		Username:  username,
		Timestamp: time.Now(),
		Detail:    detail,
	})
}
