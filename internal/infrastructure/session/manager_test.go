package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/synk/client/internal/domain/entities"
	"github.com/synk/client/internal/infrastructure/config"
	"github.com/synk/client/internal/infrastructure/logger"
	"github.com/synk/client/internal/ports"
)

func signedToken(t *testing.T, ttl time.Duration) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(ttl).Unix(),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	return token
}

func newTestManager(t *testing.T, baseURL string, creds ports.Credentials) *Manager {
	t.Helper()
	store, err := NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	if !creds.Empty() {
		if err := store.Save(creds); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	return NewManager(
		config.APIConfig{BaseURL: baseURL, Timeout: 5 * time.Second},
		config.SessionConfig{ExpirySlack: 30 * time.Second},
		store,
		logger.Nop(),
	)
}

func TestTokenReturnsCachedWhenFresh(t *testing.T) {
	var refreshCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&refreshCalls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	access := signedToken(t, time.Hour)
	m := newTestManager(t, srv.URL, ports.Credentials{AccessToken: access, RefreshToken: "r"})

	token, err := m.Token(context.Background())
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if token != access {
		t.Errorf("Token() = %q, want cached token", token)
	}
	if n := atomic.LoadInt32(&refreshCalls); n != 0 {
		t.Errorf("refresh calls = %d, want 0", n)
	}
}

func TestTokenRefreshesWhenExpiringSoon(t *testing.T) {
	fresh := signedToken(t, time.Hour)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/token/refresh/" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{"access": fresh})
	}))
	defer srv.Close()

	// Expires inside the 30s slack window
	stale := signedToken(t, 10*time.Second)
	m := newTestManager(t, srv.URL, ports.Credentials{AccessToken: stale, RefreshToken: "r"})

	token, err := m.Token(context.Background())
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if token != fresh {
		t.Errorf("Token() = %q, want refreshed token", token)
	}
}

func TestTokenTreatsUnreadableExpiryAsExpired(t *testing.T) {
	fresh := signedToken(t, time.Hour)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"access": fresh})
	}))
	defer srv.Close()

	m := newTestManager(t, srv.URL, ports.Credentials{AccessToken: "not-a-jwt", RefreshToken: "r"})

	token, err := m.Token(context.Background())
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if token != fresh {
		t.Errorf("Token() = %q, want refreshed token", token)
	}
}

func TestRefreshCoalescesConcurrentCallers(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	fresh := signedToken(t, time.Hour)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		<-release
		json.NewEncoder(w).Encode(map[string]string{"access": fresh})
	}))
	defer srv.Close()

	m := newTestManager(t, srv.URL, ports.Credentials{AccessToken: "stale", RefreshToken: "r"})

	const workers = 10
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = m.Refresh(context.Background())
		}(i)
	}

	// Let every worker reach the pending exchange before it completes
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("Refresh() worker %d error = %v", i, err)
		}
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("network calls = %d, want 1", n)
	}

	token, err := m.Token(context.Background())
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if token != fresh {
		t.Errorf("Token() = %q, want refreshed token", token)
	}
}

func TestRefreshFailureClearsSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Token is invalid or expired"})
	}))
	defer srv.Close()

	m := newTestManager(t, srv.URL, ports.Credentials{
		AccessToken:  "stale",
		RefreshToken: "bad",
		User:         &entities.User{ID: "1", Username: "sam"},
	})

	err := m.Refresh(context.Background())
	if !errors.Is(err, entities.ErrSessionExpired) {
		t.Fatalf("Refresh() error = %v, want ErrSessionExpired", err)
	}

	user, err := m.CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("CurrentUser() error = %v", err)
	}
	if user != nil {
		t.Errorf("CurrentUser() after failed refresh = %+v, want nil", user)
	}

	if _, err := m.Token(context.Background()); !errors.Is(err, entities.ErrNotAuthenticated) {
		t.Errorf("Token() after failed refresh error = %v, want ErrNotAuthenticated", err)
	}
}

func TestRefreshWithoutSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no network call expected without a refresh token")
	}))
	defer srv.Close()

	m := newTestManager(t, srv.URL, ports.Credentials{})

	if err := m.Refresh(context.Background()); !errors.Is(err, entities.ErrNotAuthenticated) {
		t.Errorf("Refresh() error = %v, want ErrNotAuthenticated", err)
	}
}

func TestLoginDerivesUsernameFromEmail(t *testing.T) {
	access := signedToken(t, time.Hour)
	var gotUsername string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/token/":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			gotUsername = body["username"]
			json.NewEncoder(w).Encode(map[string]string{"access": access, "refresh": "r"})
		case "/api/users/":
			json.NewEncoder(w).Encode([]entities.User{{ID: "1", Username: "samjones", Email: "sam.jones@x.io"}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	m := newTestManager(t, srv.URL, ports.Credentials{})

	user, err := m.Login(context.Background(), "Sam.Jones@x.io", "pw")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if gotUsername != "samjones" {
		t.Errorf("login username = %q, want %q", gotUsername, "samjones")
	}
	if user.ID != "1" {
		t.Errorf("user.ID = %q, want %q", user.ID, "1")
	}

	token, err := m.Token(context.Background())
	if err != nil {
		t.Fatalf("Token() after login error = %v", err)
	}
	if token != access {
		t.Errorf("Token() = %q, want login token", token)
	}
}

func TestLoginUnwrapsPaginatedUserList(t *testing.T) {
	access := signedToken(t, time.Hour)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/token/":
			json.NewEncoder(w).Encode(map[string]string{"access": access, "refresh": "r"})
		case "/api/users/":
			json.NewEncoder(w).Encode(map[string]any{
				"count":   1,
				"results": []entities.User{{ID: "7", Username: "sam"}},
			})
		}
	}))
	defer srv.Close()

	m := newTestManager(t, srv.URL, ports.Credentials{})

	user, err := m.Login(context.Background(), "sam", "pw")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if user.ID != "7" {
		t.Errorf("user.ID = %q, want %q", user.ID, "7")
	}
}

func TestLoginRejectsEmptyIdentifier(t *testing.T) {
	m := newTestManager(t, "http://unused", ports.Credentials{})

	if _, err := m.Login(context.Background(), "   ", "pw"); !errors.Is(err, entities.ErrInvalidLogin) {
		t.Errorf("Login() error = %v, want ErrInvalidLogin", err)
	}
}

func TestDeriveUsername(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"sam.jones@gmail.com", "samjones"},
		{"Sam.Jones@Gmail.com", "samjones"},
		{"a+b@example.com", "ab_examplec"},
		{"x@longdomainname.io", "x_longdoma"},
		{"plainuser", "plainuser"},
		{"@weird.io", "user"},
	}

	for _, tt := range tests {
		if got := DeriveUsername(tt.email); got != tt.want {
			t.Errorf("DeriveUsername(%q) = %q, want %q", tt.email, got, tt.want)
		}
	}
}
