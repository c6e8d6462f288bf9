package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/synk/client/internal/domain/entities"
	"github.com/synk/client/internal/infrastructure/config"
	"github.com/synk/client/internal/infrastructure/logger"
	"github.com/synk/client/internal/ports"
)

// Manager holds the token pair and the current user, refreshing the access
// token on demand. It is safe for concurrent use; concurrent refresh attempts
// share a single in-flight exchange.
type Manager struct {
	baseURL string
	slack   time.Duration
	store   ports.CredentialStore
	client  *http.Client
	logger  *logger.Logger

	mu       sync.Mutex
	loaded   bool
	creds    ports.Credentials
	inflight *refreshCall
}

// refreshCall is the pending-exchange guard: late callers wait on done and
// read the shared result instead of issuing a second network call.
type refreshCall struct {
	done chan struct{}
	err  error
}

// SignupParams carries the registration form
type SignupParams struct {
	Email           string
	Password        string
	PasswordConfirm string
	FirstName       string
	LastName        string
	CouplingCode    string
}

type tokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// NewManager creates a session manager
func NewManager(cfg config.APIConfig, sessionCfg config.SessionConfig, store ports.CredentialStore, appLogger *logger.Logger) *Manager {
	slack := sessionCfg.ExpirySlack
	if slack <= 0 {
		slack = 30 * time.Second
	}
	return &Manager{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		slack:   slack,
		store:   store,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  appLogger.WithComponent("session"),
	}
}

// Token returns a currently valid access token. A cached token whose expiry
// is more than the configured slack in the future is returned as-is;
// otherwise a refresh is attempted first.
func (m *Manager) Token(ctx context.Context) (string, error) {
	m.mu.Lock()
	m.ensureLoaded()
	token := m.creds.AccessToken
	m.mu.Unlock()

	if token != "" && !m.expiringSoon(token) {
		return token, nil
	}

	if err := m.Refresh(ctx); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.creds.AccessToken == "" {
		return "", entities.ErrNotAuthenticated
	}
	return m.creds.AccessToken, nil
}

// Refresh exchanges the refresh token for a new access token. Concurrent
// callers share one network call. On failure all session state is cleared.
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	m.ensureLoaded()

	if m.inflight != nil {
		call := m.inflight
		m.mu.Unlock()
		select {
		case <-call.done:
			return call.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	call := &refreshCall{done: make(chan struct{})}
	m.inflight = call
	refresh := m.creds.RefreshToken
	m.mu.Unlock()

	call.err = m.doRefresh(ctx, refresh)

	m.mu.Lock()
	m.inflight = nil
	m.mu.Unlock()
	close(call.done)

	return call.err
}

func (m *Manager) doRefresh(ctx context.Context, refresh string) error {
	if refresh == "" {
		m.clear()
		return entities.ErrNotAuthenticated
	}

	var out struct {
		Access string `json:"access"`
	}
	err := m.post(ctx, "/api/token/refresh/", map[string]string{"refresh": refresh}, &out)
	if err != nil {
		m.logger.Warnw("Token refresh failed, clearing session", "error", err)
		m.clear()
		return fmt.Errorf("%w: %v", entities.ErrSessionExpired, err)
	}

	m.mu.Lock()
	m.creds.AccessToken = out.Access
	creds := m.creds
	m.mu.Unlock()

	if err := m.store.Save(creds); err != nil {
		m.logger.Warnw("Failed to persist refreshed session", "error", err)
	}

	return nil
}

// Login authenticates with an email or username plus password. The backend's
// token endpoint expects a username, so emails are reduced to the same
// derived username used at signup.
func (m *Manager) Login(ctx context.Context, identifier, password string) (*entities.User, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, entities.ErrInvalidLogin
	}

	username := identifier
	if strings.Contains(identifier, "@") {
		username = DeriveUsername(identifier)
	}

	var tokens tokenPair
	if err := m.post(ctx, "/api/token/", map[string]string{"username": username, "password": password}, &tokens); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	user, err := m.fetchUser(ctx, tokens.Access)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.loaded = true
	m.creds = ports.Credentials{
		AccessToken:  tokens.Access,
		RefreshToken: tokens.Refresh,
		User:         user,
	}
	creds := m.creds
	m.mu.Unlock()

	if err := m.store.Save(creds); err != nil {
		m.logger.Warnw("Failed to persist session", "error", err)
	}

	m.logger.Infow("User logged in", "user_id", user.ID)
	return user, nil
}

// Signup registers a new account and logs it in
func (m *Manager) Signup(ctx context.Context, params SignupParams) (*entities.User, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))
	body := map[string]string{
		"username":         DeriveUsername(email),
		"email":            email,
		"password":         params.Password,
		"password_confirm": params.PasswordConfirm,
		"first_name":       strings.TrimSpace(params.FirstName),
		"last_name":        strings.TrimSpace(params.LastName),
	}
	if code := strings.TrimSpace(params.CouplingCode); code != "" {
		body["coupling_code"] = strings.ToUpper(code)
	}

	var created entities.User
	if err := m.post(ctx, "/api/register/", body, &created); err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	username := created.Username
	if username == "" {
		username = DeriveUsername(email)
	}
	return m.Login(ctx, username, params.Password)
}

// Logout clears all session state
func (m *Manager) Logout(ctx context.Context) error {
	m.clear()
	m.logger.Info("User logged out")
	return nil
}

// CurrentUser returns the cached user record, or nil when no session exists
func (m *Manager) CurrentUser(ctx context.Context) (*entities.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureLoaded()

	if m.creds.Empty() {
		return nil, nil
	}
	return m.creds.User, nil
}

// Authenticated reports whether a valid token can be produced
func (m *Manager) Authenticated(ctx context.Context) bool {
	_, err := m.Token(ctx)
	return err == nil
}

// SetUser replaces the cached user record and persists it, used by the
// profile poller to pick up edits made on another device
func (m *Manager) SetUser(user *entities.User) {
	m.mu.Lock()
	m.ensureLoaded()
	m.creds.User = user
	creds := m.creds
	m.mu.Unlock()

	if creds.Empty() {
		return
	}
	if err := m.store.Save(creds); err != nil {
		m.logger.Warnw("Failed to persist user record", "error", err)
	}
}

// expiringSoon decodes the token payload locally; no server round-trip is
// needed to check expiry. Tokens without a readable exp claim are treated
// as expired.
func (m *Manager) expiringSoon(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return time.Now().Add(m.slack).After(exp.Time)
}

func (m *Manager) ensureLoaded() {
	if m.loaded {
		return
	}
	m.loaded = true
	creds, err := m.store.Load()
	if err != nil {
		m.logger.Warnw("Failed to load stored session", "error", err)
		return
	}
	m.creds = creds
}

func (m *Manager) clear() {
	m.mu.Lock()
	m.loaded = true
	m.creds = ports.Credentials{}
	m.mu.Unlock()

	if err := m.store.Clear(); err != nil {
		m.logger.Warnw("Failed to clear stored session", "error", err)
	}
}

func (m *Manager) fetchUser(ctx context.Context, token string) (*entities.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/api/users/", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build user request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch user info: status %d", resp.StatusCode)
	}

	// The user list endpoint may return a bare array or a pagination envelope
	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}

	var users []entities.User
	if err := json.Unmarshal(raw, &users); err != nil {
		var envelope struct {
			Results []entities.User `json:"results"`
		}
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, fmt.Errorf("failed to decode user info: %w", err)
		}
		users = envelope.Results
	}

	if len(users) == 0 {
		return nil, fmt.Errorf("user info response was empty")
	}
	return &users[0], nil
}

func (m *Manager) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var detail struct {
			Detail string `json:"detail"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&detail)
		if detail.Detail != "" {
			return fmt.Errorf("status %d: %s", resp.StatusCode, detail.Detail)
		}
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]`)

// DeriveUsername reduces an email address to the backend's username form.
// The same derivation runs at signup and login so the two always agree.
// The backend requires at least three characters.
func DeriveUsername(email string) string {
	raw := strings.ToLower(strings.TrimSpace(email))
	at := strings.Index(raw, "@")
	local := raw
	domain := "mail"
	if at >= 0 {
		local = raw[:at]
		domain = raw[at+1:]
	}
	local = nonAlnum.ReplaceAllString(local, "")
	if local == "" {
		local = "user"
	}
	if len(local) >= 3 {
		if len(local) > 150 {
			return local[:150]
		}
		return local
	}
	domain = strings.ReplaceAll(domain, ".", "")
	if len(domain) > 8 {
		domain = domain[:8]
	}
	combined := local + "_" + domain
	if len(combined) > 150 {
		combined = combined[:150]
	}
	return combined
}
