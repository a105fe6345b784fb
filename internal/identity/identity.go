// Package identity is the client side of the hosted identity provider:
// email/password and federated sign-in, sign-out, and an auth-state
// subscription that reports the current user (or none) to observers.
package identity

import (
	"context"
	"time"
)

// ProviderGoogle is the provider ID used for Google federated credentials.
const ProviderGoogle = "google.com"

// ProviderPassword is the provider ID reported for email/password users.
const ProviderPassword = "password"

// User is a signed-in account as reported by the identity provider.
type User struct {
	UID          string    `json:"uid"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	ProviderID   string    `json:"provider_id"`
	IDToken      string    `json:"id_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Clone returns a copy of u, or nil when u is nil.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

// Name returns the display name, falling back to the email address.
func (u *User) Name() string {
	if u == nil {
		return ""
	}
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}

// Credential is a token issued by a third-party sign-in flow.
type Credential struct {
	ProviderID string
	IDToken    string
}

// GoogleCredential wraps a Google ID token.
func GoogleCredential(idToken string) Credential {
	return Credential{ProviderID: ProviderGoogle, IDToken: idToken}
}

// AuthStateFunc receives the current user, or nil when nobody is signed in.
type AuthStateFunc func(u *User)

// Provider is the identity provider contract consumed by the session
// coordinator and the authentication actions.
type Provider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*User, error)
	CreateAccount(ctx context.Context, email, password, displayName string) (*User, error)
	SignInWithFederatedCredential(ctx context.Context, cred Credential) (*User, error)
	SignOut(ctx context.Context) error
	CurrentUser() *User
	AuthStateSource
}

// AuthStateSource is the subscription half of Provider.
type AuthStateSource interface {
	// SubscribeToAuthState registers fn and returns the function that
	// releases the registration. fn is first called asynchronously with the
	// current user once the provider knows it, then on every change.
	SubscribeToAuthState(fn AuthStateFunc) (unsubscribe func())
}

// Persistence keeps the signed-in user across process restarts.
// LoadUser returns nil, nil when no user is stored.
type Persistence interface {
	LoadUser(ctx context.Context) (*User, error)
	SaveUser(ctx context.Context, u *User) error
	ClearUser(ctx context.Context) error
}
