package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultEndpoint      = "https://identitytoolkit.googleapis.com/v1"
	DefaultTokenEndpoint = "https://securetoken.googleapis.com/v1"

	// federatedRequestURI is the continue URI sent with IdP credentials.
	// The provider only checks it for redirect-based flows.
	federatedRequestURI = "http://localhost"
)

// Options configures a Client.
type Options struct {
	Endpoint      string
	TokenEndpoint string
	APIKey        string
	Timeout       time.Duration
	Store         Persistence // nil = session lives in memory only
	Logger        *zap.Logger
}

// Client talks to the Identity Toolkit REST API and tracks the current user.
type Client struct {
	Endpoint      string
	TokenEndpoint string
	APIKey        string
	HTTP          *http.Client

	store Persistence
	log   *zap.Logger
	now   func() time.Time

	mu      sync.RWMutex
	current *User

	notify    notifier
	ready     chan struct{}
	readyOnce sync.Once
	done      chan struct{}
	closeOnce sync.Once
}

var _ Provider = (*Client)(nil)

// New creates a client. When opts.Store is set the client reports no auth
// state until Restore has run.
func New(opts Options) *Client {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if opts.TokenEndpoint == "" {
		opts.TokenEndpoint = DefaultTokenEndpoint
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	c := &Client{
		Endpoint:      strings.TrimRight(opts.Endpoint, "/"),
		TokenEndpoint: strings.TrimRight(opts.TokenEndpoint, "/"),
		APIKey:        opts.APIKey,
		HTTP:          &http.Client{Timeout: opts.Timeout},
		store:         opts.Store,
		log:           opts.Logger.Named("identity"),
		now:           time.Now,
		ready:         make(chan struct{}),
		done:          make(chan struct{}),
	}
	if c.store == nil {
		c.markReady()
	}
	return c
}

// --- Wire types ---

type signInResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
	ProviderID   string `json:"providerId"`
}

type refreshResponse struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    string `json:"expires_in"`
	UserID       string `json:"user_id"`
}

type remoteError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// --- Provider ---

// SignInWithPassword signs in an existing email/password account.
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*User, error) {
	body := map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}
	var resp signInResponse
	if err := c.postJSON(ctx, c.Endpoint+"/accounts:signInWithPassword", body, &resp); err != nil {
		return nil, err
	}
	u := c.userFrom(resp, ProviderPassword)
	c.setUser(ctx, u)
	return u.Clone(), nil
}

// CreateAccount registers a new email/password account and signs it in.
func (c *Client) CreateAccount(ctx context.Context, email, password, displayName string) (*User, error) {
	body := map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}
	if displayName != "" {
		body["displayName"] = displayName
	}
	var resp signInResponse
	if err := c.postJSON(ctx, c.Endpoint+"/accounts:signUp", body, &resp); err != nil {
		return nil, err
	}
	if resp.DisplayName == "" {
		resp.DisplayName = displayName
	}
	u := c.userFrom(resp, ProviderPassword)
	c.setUser(ctx, u)
	return u.Clone(), nil
}

// SignInWithFederatedCredential exchanges a third-party ID token for a session.
func (c *Client) SignInWithFederatedCredential(ctx context.Context, cred Credential) (*User, error) {
	if cred.IDToken == "" {
		return nil, &Error{Code: CodeMissingIDToken, Message: "credential has no ID token"}
	}
	providerID := cred.ProviderID
	if providerID == "" {
		providerID = ProviderGoogle
	}
	post := url.Values{}
	post.Set("id_token", cred.IDToken)
	post.Set("providerId", providerID)

	body := map[string]any{
		"postBody":            post.Encode(),
		"requestUri":          federatedRequestURI,
		"returnIdpCredential": true,
		"returnSecureToken":   true,
	}
	var resp signInResponse
	if err := c.postJSON(ctx, c.Endpoint+"/accounts:signInWithIdp", body, &resp); err != nil {
		return nil, err
	}
	u := c.userFrom(resp, providerID)
	c.setUser(ctx, u)
	return u.Clone(), nil
}

// SignOut forgets the current user. It never fails because of the
// provider; persistence errors are logged.
func (c *Client) SignOut(ctx context.Context) error {
	c.setUser(ctx, nil)
	return nil
}

// CurrentUser returns a copy of the signed-in user, or nil.
func (c *Client) CurrentUser() *User {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current.Clone()
}

// SubscribeToAuthState implements AuthStateSource.
func (c *Client) SubscribeToAuthState(fn AuthStateFunc) func() {
	return c.notify.subscribe(fn, c.ready, c.done, c.CurrentUser)
}

// Restore loads the persisted user and refreshes its ID token. A user whose
// refresh token the provider rejects is dropped; any other failure (network,
// outage, cancellation) keeps the stored user. Subscribers receive their first state once Restore
// returns, whatever the outcome.
func (c *Client) Restore(ctx context.Context) error {
	defer c.markReady()
	if c.store == nil {
		return nil
	}

	stored, err := c.store.LoadUser(ctx)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if stored == nil {
		return nil
	}

	refreshed, err := c.Refresh(ctx, stored)
	switch {
	case err == nil:
		c.mu.Lock()
		c.current = refreshed
		c.mu.Unlock()
		if err := c.store.SaveUser(ctx, refreshed); err != nil {
			c.log.Warn("save refreshed session", zap.Error(err))
		}
		c.log.Info("session restored", zap.String("uid", refreshed.UID))
	case rejectsSession(CodeOf(err)):
		if cerr := c.store.ClearUser(ctx); cerr != nil {
			c.log.Warn("clear rejected session", zap.Error(cerr))
		}
		c.log.Info("stored session rejected", zap.String("uid", stored.UID), zap.Error(err))
	default:
		c.mu.Lock()
		c.current = stored.Clone()
		c.mu.Unlock()
		c.log.Warn("session restored offline", zap.String("uid", stored.UID), zap.Error(err))
	}
	return nil
}

// rejectsSession reports whether a refresh failure with code means the
// stored session is no longer valid. Anything else is treated as an
// outage and the stored user is kept.
func rejectsSession(code Code) bool {
	switch code {
	case CodeTokenExpired, CodeUserDisabled, CodeUserNotFound, CodeInvalidCredential:
		return true
	}
	return false
}

// Refresh exchanges u's refresh token for a new ID token.
func (c *Client) Refresh(ctx context.Context, u *User) (*User, error) {
	if u == nil || u.RefreshToken == "" {
		return nil, &Error{Code: CodeTokenExpired, Message: "no refresh token"}
	}
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", u.RefreshToken)

	var resp refreshResponse
	if err := c.postForm(ctx, c.TokenEndpoint+"/token", form, &resp); err != nil {
		return nil, err
	}
	out := u.Clone()
	out.IDToken = resp.IDToken
	if resp.RefreshToken != "" {
		out.RefreshToken = resp.RefreshToken
	}
	out.ExpiresAt = c.expiry(resp.ExpiresIn)
	return out, nil
}

// Close drops pending first deliveries and waits for them to finish.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.done) })
	c.notify.wait()
}

// Subscribers returns the number of registered auth-state listeners.
func (c *Client) Subscribers() int {
	return c.notify.count()
}

func (c *Client) markReady() {
	c.readyOnce.Do(func() { close(c.ready) })
}

// setUser replaces the current user, persists it and notifies listeners.
// Concurrent calls are applied one at a time, each followed by its delivery.
func (c *Client) setUser(ctx context.Context, u *User) {
	c.notify.update(func() *User {
		c.mu.Lock()
		c.current = u.Clone()
		c.mu.Unlock()

		if c.store != nil {
			var err error
			if u == nil {
				err = c.store.ClearUser(ctx)
			} else {
				err = c.store.SaveUser(ctx, u)
			}
			if err != nil {
				c.log.Warn("persist session", zap.Error(err))
			}
		}
		c.markReady()
		return u
	})
}

func (c *Client) userFrom(resp signInResponse, providerID string) *User {
	if resp.ProviderID != "" {
		providerID = resp.ProviderID
	}
	return &User{
		UID:          resp.LocalID,
		Email:        resp.Email,
		DisplayName:  resp.DisplayName,
		ProviderID:   providerID,
		IDToken:      resp.IDToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    c.expiry(resp.ExpiresIn),
	}
}

func (c *Client) expiry(expiresIn string) time.Time {
	secs, err := strconv.Atoi(expiresIn)
	if err != nil || secs <= 0 {
		secs = 3600
	}
	return c.now().Add(time.Duration(secs) * time.Second)
}

// --- HTTP helpers ---

func (c *Client) postJSON(ctx context.Context, endpoint string, body, result any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	return c.doRequest(ctx, endpoint, "application/json", bytes.NewReader(data), result)
}

func (c *Client) postForm(ctx context.Context, endpoint string, form url.Values, result any) error {
	return c.doRequest(ctx, endpoint, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()), result)
}

func (c *Client) doRequest(ctx context.Context, endpoint, contentType string, body io.Reader, result any) error {
	if c.APIKey == "" {
		return &Error{Code: CodeOperationNotAllowed, Message: "identity API key is not configured"}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"?key="+url.QueryEscape(c.APIKey), body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return &Error{Code: CodeCancelled, Message: "request cancelled", Err: err}
		}
		return &Error{Code: CodeNetwork, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Code: CodeNetwork, Message: "read response: " + err.Error(), Err: err}
	}

	if resp.StatusCode >= 400 {
		var remote remoteError
		if json.Unmarshal(respBody, &remote) == nil && remote.Error.Message != "" {
			return classifyRemote(resp.StatusCode, remote.Error.Message)
		}
		return classifyRemote(resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}
