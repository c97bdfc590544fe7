package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/casekit/case-gateway/internal/events"
	"github.com/casekit/case-gateway/internal/token"
)

// StoreFactory builds the Store scoped to one session id.
type StoreFactory func(sessionID string) Store

// Manager keeps one live Controller per browser session id. A session
// whose controller has been evicted (process restart, idle cleanup) is
// rebuilt from its store through Initialize, so the durable state stays
// authoritative.
type Manager struct {
	newStore      StoreFactory
	api           AuthAPI
	inspector     *token.Inspector
	logger        *zap.Logger
	dispatcher    events.Dispatcher
	checkInterval time.Duration

	mu       sync.Mutex
	sessions map[string]*Controller
}

// ManagerOptions tunes the manager and the controllers it builds.
type ManagerOptions struct {
	CheckInterval time.Duration
	Logger        *zap.Logger
	Dispatcher    events.Dispatcher
	Inspector     *token.Inspector
}

// NewManager builds a manager.
func NewManager(newStore StoreFactory, api AuthAPI, opts ManagerOptions) *Manager {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Inspector == nil {
		opts.Inspector = token.NewInspector()
	}
	return &Manager{
		newStore:      newStore,
		api:           api,
		inspector:     opts.Inspector,
		logger:        opts.Logger,
		dispatcher:    opts.Dispatcher,
		checkInterval: opts.CheckInterval,
		sessions:      make(map[string]*Controller),
	}
}

func (m *Manager) build(sessionID string) *Controller {
	return NewController(m.newStore(sessionID), m.api, Options{
		SessionID:     sessionID,
		CheckInterval: m.checkInterval,
		Logger:        m.logger.With(zap.String("session_id", sessionID)),
		Dispatcher:    m.dispatcher,
		Inspector:     m.inspector,
	})
}

// Create registers a fresh controller for a newly minted session id.
func (m *Manager) Create(sessionID string) *Controller {
	ctl := m.build(sessionID)
	m.mu.Lock()
	m.sessions[sessionID] = ctl
	m.mu.Unlock()
	return ctl
}

// Resume returns the live controller for the session id, rebuilding it
// from the store when necessary. It returns false when no usable
// session exists behind the id.
func (m *Manager) Resume(ctx context.Context, sessionID string) (*Controller, bool) {
	if sessionID == "" {
		return nil, false
	}
	m.mu.Lock()
	if ctl, ok := m.sessions[sessionID]; ok {
		m.mu.Unlock()
		return ctl, ctl.IsAuthenticated()
	}
	m.mu.Unlock()

	ctl := m.build(sessionID)
	ctl.Initialize(ctx)
	if !ctl.IsAuthenticated() {
		return nil, false
	}

	m.mu.Lock()
	// Another request may have resumed the same session in parallel;
	// keep the registered controller and discard ours.
	if existing, ok := m.sessions[sessionID]; ok {
		m.mu.Unlock()
		ctl.Close()
		return existing, existing.IsAuthenticated()
	}
	m.sessions[sessionID] = ctl
	m.mu.Unlock()
	return ctl, true
}

// Drop removes the controller and stops its ticker. The caller decides
// whether the stored session was cleared first (Logout) or should stay
// resumable (eviction).
func (m *Manager) Drop(sessionID string) {
	m.mu.Lock()
	ctl, ok := m.sessions[sessionID]
	if ok {
		delete(m.sessions, sessionID)
	}
	m.mu.Unlock()
	if ok {
		ctl.Close()
	}
}

// Shutdown stops every live controller's ticker.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	controllers := make([]*Controller, 0, len(m.sessions))
	for id, ctl := range m.sessions {
		controllers = append(controllers, ctl)
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	for _, ctl := range controllers {
		ctl.Close()
	}
}
