// Package federated runs the Google sign-in flow that produces the ID
// token exchanged with the identity provider. The flow is an OAuth 2.0
// authorization-code grant with PKCE and a loopback redirect.
package federated

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/marcus/habitchain/internal/identity"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
)

// Google's OAuth endpoints.
const (
	GoogleAuthURL  = "https://accounts.google.com/o/oauth2/auth"
	GoogleTokenURL = "https://oauth2.googleapis.com/token"
)

const callbackPath = "/callback"

// GoogleOptions configures a Google sign-in flow.
type GoogleOptions struct {
	ClientID     string
	ClientSecret string
	AuthURL      string   // "" = GoogleAuthURL
	TokenURL     string   // "" = GoogleTokenURL
	Scopes       []string // nil = openid, email, profile
	ListenAddr   string   // "" = 127.0.0.1:0

	// Open presents the consent URL to the user. nil = OpenBrowser.
	Open func(url string) error

	Logger *zap.Logger
}

// Google obtains Google ID tokens. Only one flow runs at a time.
type Google struct {
	opts    GoogleOptions
	log     *zap.Logger
	running atomic.Bool
}

// NewGoogle creates a flow runner.
func NewGoogle(opts GoogleOptions) *Google {
	if opts.AuthURL == "" {
		opts.AuthURL = GoogleAuthURL
	}
	if opts.TokenURL == "" {
		opts.TokenURL = GoogleTokenURL
	}
	if len(opts.Scopes) == 0 {
		opts.Scopes = []string{"openid", "email", "profile"}
	}
	if opts.ListenAddr == "" {
		opts.ListenAddr = "127.0.0.1:0"
	}
	if opts.Open == nil {
		opts.Open = OpenBrowser
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Google{opts: opts, log: opts.Logger.Named("federated")}
}

// Available reports whether the flow is configured.
func (g *Google) Available() bool {
	return g.opts.ClientID != ""
}

// callbackResult is what the redirect handler hands back to the flow.
type callbackResult struct {
	code string
	err  error
}

// IDToken runs the consent flow and returns the Google ID token.
// Failures are *identity.Error values coded CodeServiceUnavailable,
// CodeInProgress, CodeCancelled, CodeMissingIDToken or CodeInternal.
func (g *Google) IDToken(ctx context.Context) (string, error) {
	if !g.Available() {
		return "", &identity.Error{Code: identity.CodeServiceUnavailable, Message: "google client ID is not configured"}
	}
	if !g.running.CompareAndSwap(false, true) {
		return "", &identity.Error{Code: identity.CodeInProgress, Message: "a google sign-in is already running"}
	}
	defer g.running.Store(false)

	ln, err := net.Listen("tcp", g.opts.ListenAddr)
	if err != nil {
		return "", &identity.Error{Code: identity.CodeServiceUnavailable, Message: "listen for redirect: " + err.Error(), Err: err}
	}

	conf := &oauth2.Config{
		ClientID:     g.opts.ClientID,
		ClientSecret: g.opts.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  g.opts.AuthURL,
			TokenURL: g.opts.TokenURL,
		},
		RedirectURL: "http://" + ln.Addr().String() + callbackPath,
		Scopes:      g.opts.Scopes,
	}
	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()
	authURL := conf.AuthCodeURL(state, oauth2.AccessTypeOnline, oauth2.S256ChallengeOption(verifier))

	results := make(chan callbackResult, 1)
	srv := &http.Server{
		Handler:           g.router(state, results),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var code string
	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return &identity.Error{Code: identity.CodeServiceUnavailable, Message: "redirect server: " + err.Error(), Err: err}
		}
		return nil
	})
	group.Go(func() error {
		defer srv.Shutdown(context.Background())
		if err := g.opts.Open(authURL); err != nil {
			g.log.Warn("open consent page", zap.Error(err))
		}
		select {
		case res := <-results:
			if res.err != nil {
				return res.err
			}
			code = res.code
			return nil
		case <-gctx.Done():
			return &identity.Error{Code: identity.CodeCancelled, Message: "google sign-in cancelled", Err: gctx.Err()}
		}
	})
	if err := group.Wait(); err != nil {
		return "", err
	}

	tok, err := conf.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return "", classifyExchange(ctx, err)
	}
	idToken, _ := tok.Extra("id_token").(string)
	if idToken == "" {
		return "", &identity.Error{Code: identity.CodeMissingIDToken, Message: "token response has no id_token"}
	}
	g.log.Info("google consent complete")
	return idToken, nil
}

// router serves the loopback redirect.
func (g *Google) router(state string, results chan<- callbackResult) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc(callbackPath, func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()
		var res callbackResult
		switch {
		case q.Get("state") != state:
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		case q.Get("error") == "access_denied":
			res.err = &identity.Error{Code: identity.CodeCancelled, Message: "consent denied"}
		case q.Get("error") != "":
			res.err = &identity.Error{Code: identity.CodeInternal, Message: "consent failed: " + q.Get("error")}
		case q.Get("code") == "":
			res.err = &identity.Error{Code: identity.CodeInternal, Message: "redirect carried no code"}
		default:
			res.code = q.Get("code")
		}

		if res.err != nil {
			fmt.Fprintln(w, "Sign-in did not complete. You can close this tab.")
		} else {
			fmt.Fprintln(w, "Signed in to HabitChain. You can close this tab.")
		}
		select {
		case results <- res:
		default:
		}
	}).Methods(http.MethodGet)
	return r
}

func classifyExchange(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return &identity.Error{Code: identity.CodeCancelled, Message: "google sign-in cancelled", Err: err}
	}
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		msg := re.ErrorCode
		if re.ErrorDescription != "" {
			msg += ": " + re.ErrorDescription
		}
		if msg == "" {
			msg = re.Error()
		}
		if re.Response != nil && re.Response.StatusCode == http.StatusServiceUnavailable {
			return &identity.Error{Code: identity.CodeServiceUnavailable, Message: msg, Err: err}
		}
		return &identity.Error{Code: identity.CodeInternal, Message: msg, Err: err}
	}
	return &identity.Error{Code: identity.CodeServiceUnavailable, Message: err.Error(), Err: err}
}
