// Package auth implements the user-facing authentication actions: sign in,
// sign up, Google sign-in and sign-out. Actions validate input locally,
// call the identity provider, and classify failures into a fixed set of
// user-facing errors. They never navigate; a successful sign-in reaches
// the rest of the application through the provider's auth-state
// subscription.
package auth

import (
	"context"
	"strings"
	"time"

	"github.com/marcus/habitchain/internal/identity"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// IDTokenSource runs a third-party consent flow and returns its ID token.
type IDTokenSource interface {
	IDToken(ctx context.Context) (string, error)
}

// Event names recorded in the journal.
const (
	EventSignIn       = "sign_in"
	EventSignUp       = "sign_up"
	EventGoogleSignIn = "google_sign_in"
	EventSignOut      = "sign_out"
)

// Entry is one authentication attempt.
type Entry struct {
	ID       string    `json:"id"`
	Event    string    `json:"event"`
	Email    string    `json:"email,omitempty"`
	UID      string    `json:"uid,omitempty"`
	Provider string    `json:"provider,omitempty"`
	OK       bool      `json:"ok"`
	Reason   Reason    `json:"reason,omitempty"`
	At       time.Time `json:"at"`
}

// Journal records authentication attempts.
type Journal interface {
	Record(ctx context.Context, e Entry) error
}

// SignUpInput is the registration form.
type SignUpInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	DisplayName     string
}

// Options wires optional collaborators into Actions.
type Options struct {
	Google  IDTokenSource // nil disables Google sign-in
	Journal Journal
	Logger  *zap.Logger
	Now     func() time.Time
}

// Actions performs authentication against a provider.
type Actions struct {
	provider identity.Provider
	google   IDTokenSource
	journal  Journal
	log      *zap.Logger
	now      func() time.Time
}

// New creates Actions for provider.
func New(provider identity.Provider, opts Options) *Actions {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Actions{
		provider: provider,
		google:   opts.Google,
		journal:  opts.Journal,
		log:      opts.Logger.Named("auth"),
		now:      opts.Now,
	}
}

// SignIn signs in with email and password.
func (a *Actions) SignIn(ctx context.Context, email, password string) (*identity.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, a.fail(ctx, EventSignIn, email, validation(ReasonMissingFields, msgSignInMissing))
	}

	u, err := a.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		return nil, a.fail(ctx, EventSignIn, email, classifySignIn(err))
	}
	a.succeed(ctx, EventSignIn, u)
	return u, nil
}

// SignUp creates an account. Missing fields or mismatched passwords are
// rejected before the provider is contacted.
func (a *Actions) SignUp(ctx context.Context, in SignUpInput) (*identity.User, error) {
	email := strings.TrimSpace(in.Email)
	name := strings.TrimSpace(in.DisplayName)
	if email == "" || in.Password == "" || in.ConfirmPassword == "" || name == "" {
		return nil, a.fail(ctx, EventSignUp, email, validation(ReasonMissingFields, msgSignUpMissing))
	}
	if in.Password != in.ConfirmPassword {
		return nil, a.fail(ctx, EventSignUp, email, validation(ReasonPasswordMismatch, msgPasswordsDiffer))
	}

	u, err := a.provider.CreateAccount(ctx, email, in.Password, name)
	if err != nil {
		return nil, a.fail(ctx, EventSignUp, email, classifySignUp(err))
	}
	a.succeed(ctx, EventSignUp, u)
	return u, nil
}

// GoogleAvailable reports whether SignInWithGoogle can run.
func (a *Actions) GoogleAvailable() bool {
	if a.google == nil {
		return false
	}
	if av, ok := a.google.(interface{ Available() bool }); ok {
		return av.Available()
	}
	return true
}

// SignInWithGoogle runs the Google consent flow and exchanges its ID
// token with the provider.
func (a *Actions) SignInWithGoogle(ctx context.Context) (*identity.User, error) {
	if a.google == nil {
		err := &identity.Error{Code: identity.CodeServiceUnavailable, Message: "google sign-in is not configured"}
		return nil, a.fail(ctx, EventGoogleSignIn, "", classifyFederated(err))
	}

	token, err := a.google.IDToken(ctx)
	if err != nil {
		return nil, a.fail(ctx, EventGoogleSignIn, "", classifyFederated(err))
	}
	if token == "" {
		err := &identity.Error{Code: identity.CodeMissingIDToken, Message: "empty id token"}
		return nil, a.fail(ctx, EventGoogleSignIn, "", classifyFederated(err))
	}

	u, err := a.provider.SignInWithFederatedCredential(ctx, identity.GoogleCredential(token))
	if err != nil {
		return nil, a.fail(ctx, EventGoogleSignIn, "", classifyFederated(err))
	}
	a.succeed(ctx, EventGoogleSignIn, u)
	return u, nil
}

// SignOut ends the provider session.
func (a *Actions) SignOut(ctx context.Context) error {
	u := a.provider.CurrentUser()
	if err := a.provider.SignOut(ctx); err != nil {
		a.log.Error("sign out failed", zap.Error(err))
		return err
	}
	if u != nil {
		a.record(ctx, Entry{Event: EventSignOut, Email: u.Email, UID: u.UID, Provider: u.ProviderID, OK: true})
	}
	a.log.Info("signed out")
	return nil
}

func (a *Actions) succeed(ctx context.Context, event string, u *identity.User) {
	a.log.Info("authenticated", zap.String("event", event), zap.String("uid", u.UID))
	a.record(ctx, Entry{Event: event, Email: u.Email, UID: u.UID, Provider: u.ProviderID, OK: true})
}

func (a *Actions) fail(ctx context.Context, event, email string, e *Error) *Error {
	fields := []zap.Field{
		zap.String("event", event),
		zap.String("kind", e.Kind.String()),
		zap.String("reason", string(e.Reason)),
	}
	a.log.Log(levelFor(e.Kind), "authentication failed", append(fields, zap.Error(e.Err))...)

	// Validation failures never reached the provider.
	if e.Kind != KindValidation {
		a.record(ctx, Entry{Event: event, Email: email, Reason: e.Reason})
	}
	return e
}

func (a *Actions) record(ctx context.Context, e Entry) {
	if a.journal == nil {
		return
	}
	e.At = a.now()
	if err := a.journal.Record(ctx, e); err != nil {
		a.log.Warn("record auth event", zap.Error(err))
	}
}

func levelFor(k Kind) zapcore.Level {
	switch k {
	case KindValidation:
		return zapcore.DebugLevel
	case KindCredential:
		return zapcore.InfoLevel
	case KindFederated:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}
