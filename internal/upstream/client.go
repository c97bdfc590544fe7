// Package upstream is the thin HTTP client for the external auth
// backend. It translates the backend's response envelopes into typed
// results and tags failures by kind; it never redirects or clears
// session state on its own — that policy belongs to the session
// controller.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/casekit/case-gateway/internal/domain"
	"github.com/casekit/case-gateway/internal/session"
	apperrors "github.com/casekit/case-gateway/pkg/util"
)

// DefaultTimeout bounds every auth backend call. A timed-out call is a
// network failure, indistinguishable from other connectivity errors.
const DefaultTimeout = 30 * time.Second

// Client talks to the auth backend.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// New builds a client. Zero timeout falls back to DefaultTimeout.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// envelope is the backend's uniform response shape.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// sessionPayload is the data member of login/refresh responses.
type sessionPayload struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// Login authenticates credentials for a new session.
func (c *Client) Login(ctx context.Context, username, password string) (*session.AuthResult, error) {
	body := map[string]string{"username": username, "password": password}
	raw, err := c.do(ctx, http.MethodPost, "/auth/login", "", body)
	if err != nil {
		return nil, err
	}
	return decodeSession(raw)
}

// Refresh exchanges the current token for a fresh one.
func (c *Client) Refresh(ctx context.Context, currentToken string) (*session.AuthResult, error) {
	raw, err := c.do(ctx, http.MethodPost, "/auth/refresh", currentToken, nil)
	if err != nil {
		return nil, err
	}
	return decodeSession(raw)
}

// UpdateProfile submits a partial profile update. The backend's data
// member is itself partial: it carries the fields the backend accepted
// and may omit everything else, so the echo is decoded into the same
// pointer-fielded shape and handed back for the caller to overlay.
func (c *Client) UpdateProfile(ctx context.Context, currentToken string, update domain.ProfileUpdate) (*domain.ProfileUpdate, error) {
	raw, err := c.do(ctx, http.MethodPut, "/auth/profile", currentToken, update)
	if err != nil {
		return nil, err
	}
	var echo domain.ProfileUpdate
	if err := json.Unmarshal(raw, &echo); err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("decoding profile payload: %w", err))
	}
	return &echo, nil
}

func decodeSession(raw json.RawMessage) (*session.AuthResult, error) {
	var payload sessionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("decoding session payload: %w", err))
	}
	if payload.Token == "" || payload.User == nil {
		return nil, apperrors.NewInternalError(fmt.Errorf("incomplete session payload"))
	}
	return &session.AuthResult{Token: payload.Token, User: payload.User}, nil
}

func (c *Client) do(ctx context.Context, method, path, bearer string, body any) (json.RawMessage, error) {
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("auth backend unreachable", zap.String("path", path), zap.Error(err))
		return nil, apperrors.NewNetworkError(err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, apperrors.NewNetworkError(fmt.Errorf("decoding response: %w", err))
	}

	if resp.StatusCode == http.StatusUnauthorized {
		msg := env.Error
		if msg == "" {
			msg = "session no longer valid"
		}
		return nil, apperrors.NewUnauthorized(msg)
	}
	if !env.Success {
		return nil, apperrors.NewUpstreamRejected(env.Error)
	}
	return env.Data, nil
}
