// Package session coordinates startup navigation: a splash gate, an
// observer of the identity provider's auth state, and the route selector
// that decides which group of screens is reachable.
package session

import "fmt"

// SessionStatus is the kind of a SessionState.
type SessionStatus int

const (
	// SessionUnknown means no auth-state callback has fired yet.
	SessionUnknown SessionStatus = iota
	SessionAuthenticated
	SessionUnauthenticated
)

// SessionState is the latest known "current user or none" value.
type SessionState struct {
	Status SessionStatus
	UserID string // set only when Status is SessionAuthenticated
}

// Unknown is the state before the provider has reported anything.
func Unknown() SessionState { return SessionState{Status: SessionUnknown} }

// Authenticated is the state for a signed-in user.
func Authenticated(userID string) SessionState {
	return SessionState{Status: SessionAuthenticated, UserID: userID}
}

// Unauthenticated is the state after the provider reported no user.
func Unauthenticated() SessionState { return SessionState{Status: SessionUnauthenticated} }

// IsAuthenticated reports whether a user is signed in.
func (s SessionState) IsAuthenticated() bool { return s.Status == SessionAuthenticated }

func (s SessionState) String() string {
	switch s.Status {
	case SessionAuthenticated:
		return fmt.Sprintf("authenticated(%s)", s.UserID)
	case SessionUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// SplashState tracks the splash delay gate.
type SplashState int

const (
	SplashPending SplashState = iota
	SplashComplete
)

func (s SplashState) String() string {
	if s == SplashComplete {
		return "complete"
	}
	return "pending"
}

// RouteGroup is the set of screens the navigation layer may show.
type RouteGroup int

const (
	ShowSplash RouteGroup = iota
	ShowAuthFlow
	ShowAppFlow
)

func (r RouteGroup) String() string {
	switch r {
	case ShowAuthFlow:
		return "auth"
	case ShowAppFlow:
		return "app"
	default:
		return "splash"
	}
}
