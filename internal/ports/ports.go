package ports

import (
	"context"

	"github.com/synk/client/internal/domain/entities"
)

// Credentials is the locally persisted session state: the token pair plus the
// last-known user record. The browser client kept these in localStorage; here
// they live behind a CredentialStore.
type Credentials struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	User         *entities.User `json:"user,omitempty"`
}

// Empty reports whether no session is stored
func (c Credentials) Empty() bool {
	return c.AccessToken == "" && c.RefreshToken == ""
}

// CredentialStore persists session credentials between runs. Absence or
// corruption of the stored state must degrade to "not authenticated",
// never to an error that blocks startup.
type CredentialStore interface {
	Load() (Credentials, error)
	Save(creds Credentials) error
	Clear() error
}

// TokenSource supplies a currently valid access token. Implemented by the
// session manager and consumed by the API gateway.
type TokenSource interface {
	// Token returns a valid access token, refreshing if the cached one is
	// expired or close to expiry. Returns entities.ErrNotAuthenticated when
	// no session is available.
	Token(ctx context.Context) (string, error)
	// Refresh forces a refresh-token exchange. Concurrent callers share a
	// single in-flight exchange.
	Refresh(ctx context.Context) error
	// CurrentUser returns the cached user record, or nil without error when
	// no user is known.
	CurrentUser(ctx context.Context) (*entities.User, error)
}
