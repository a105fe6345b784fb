package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeToolkit is a minimal Identity Toolkit + Secure Token server.
type fakeToolkit struct {
	t        *testing.T
	mu       sync.Mutex
	accounts map[string]string // email -> password
	requests []string          // paths hit, in order
	lastBody map[string]any
	failWith map[string]string // path -> error message
	status   int               // status for failWith, default 400
}

func newFakeToolkit(t *testing.T) (*fakeToolkit, *httptest.Server) {
	t.Helper()
	f := &fakeToolkit{
		t:        t,
		accounts: map[string]string{"ada@example.com": "hunter22"},
		failWith: map[string]string{},
	}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeToolkit) writeError(w http.ResponseWriter, msg string) {
	status := f.status
	if status == 0 {
		status = http.StatusBadRequest
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": status, "message": msg},
	})
}

func (f *fakeToolkit) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.URL.Path)

	if r.URL.Query().Get("key") != "test-key" {
		f.writeError(w, "API key not valid. Please pass a valid API key.")
		return
	}
	if msg, ok := f.failWith[r.URL.Path]; ok {
		f.writeError(w, msg)
		return
	}

	if r.URL.Path == "/token" {
		if err := r.ParseForm(); err != nil {
			f.t.Fatalf("parse form: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"id_token":      "refreshed-id-token",
			"refresh_token": "refresh-2",
			"expires_in":    "3600",
			"user_id":       "uid-1",
		})
		return
	}

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		f.t.Fatalf("decode body: %v", err)
	}
	f.lastBody = body

	switch r.URL.Path {
	case "/accounts:signInWithPassword":
		email, _ := body["email"].(string)
		password, _ := body["password"].(string)
		want, ok := f.accounts[email]
		if !ok {
			f.writeError(w, "EMAIL_NOT_FOUND")
			return
		}
		if want != password {
			f.writeError(w, "INVALID_PASSWORD")
			return
		}
		writeSignIn(w, "uid-1", email, "")
	case "/accounts:signUp":
		email, _ := body["email"].(string)
		if _, exists := f.accounts[email]; exists {
			f.writeError(w, "EMAIL_EXISTS")
			return
		}
		password, _ := body["password"].(string)
		if len(password) < 6 {
			f.writeError(w, "WEAK_PASSWORD : Password should be at least 6 characters")
			return
		}
		f.accounts[email] = password
		name, _ := body["displayName"].(string)
		writeSignIn(w, "uid-2", email, name)
	case "/accounts:signInWithIdp":
		post, _ := body["postBody"].(string)
		vals, err := url.ParseQuery(post)
		if err != nil || vals.Get("id_token") == "" {
			f.writeError(w, "INVALID_IDP_RESPONSE")
			return
		}
		writeSignIn(w, "uid-g", "grace@example.com", "Grace")
	default:
		http.NotFound(w, r)
	}
}

func writeSignIn(w http.ResponseWriter, uid, email, name string) {
	json.NewEncoder(w).Encode(map[string]string{
		"localId":      uid,
		"email":        email,
		"displayName":  name,
		"idToken":      "id-token-" + uid,
		"refreshToken": "refresh-" + uid,
		"expiresIn":    "3600",
	})
}

func newTestClient(srv *httptest.Server, store Persistence) *Client {
	return New(Options{
		Endpoint:      srv.URL,
		TokenEndpoint: srv.URL,
		APIKey:        "test-key",
		Store:         store,
	})
}

// recorder collects auth-state deliveries.
type recorder struct {
	ch chan *User
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan *User, 16)}
}

func (r *recorder) fn(u *User) { r.ch <- u }

func (r *recorder) next(t *testing.T) *User {
	t.Helper()
	select {
	case u := <-r.ch:
		return u
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for auth state")
		return nil
	}
}

func (r *recorder) none(t *testing.T) {
	t.Helper()
	select {
	case u := <-r.ch:
		t.Fatalf("unexpected auth state delivery: %+v", u)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSignInWithPasswordNotifiesAndPersists(t *testing.T) {
	_, srv := newFakeToolkit(t)
	store := NewMemoryStore(nil)
	c := newTestClient(srv, store)
	defer c.Close()
	require.NoError(t, c.Restore(context.Background()))

	rec := newRecorder()
	unsubscribe := c.SubscribeToAuthState(rec.fn)
	defer unsubscribe()
	assert.Nil(t, rec.next(t), "first delivery reports no user")

	u, err := c.SignInWithPassword(context.Background(), "ada@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", u.UID)
	assert.Equal(t, ProviderPassword, u.ProviderID)
	assert.False(t, u.ExpiresAt.IsZero())

	got := rec.next(t)
	require.NotNil(t, got)
	assert.Equal(t, "uid-1", got.UID)
	assert.Equal(t, "uid-1", c.CurrentUser().UID)
	assert.Equal(t, "refresh-uid-1", store.Stored().RefreshToken)
}

func TestSignInErrorsMapToCodes(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		want     Code
	}{
		{"unknown email", "nobody@example.com", "x", CodeUserNotFound},
		{"wrong password", "ada@example.com", "nope", CodeWrongPassword},
	}
	_, srv := newFakeToolkit(t)
	c := newTestClient(srv, nil)
	defer c.Close()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.SignInWithPassword(context.Background(), tt.email, tt.password)
			require.Error(t, err)
			assert.Equal(t, tt.want, CodeOf(err))
		})
	}
}

func TestFailedSignInKeepsCurrentUser(t *testing.T) {
	_, srv := newFakeToolkit(t)
	c := newTestClient(srv, nil)
	defer c.Close()

	_, err := c.SignInWithPassword(context.Background(), "ada@example.com", "hunter22")
	require.NoError(t, err)

	rec := newRecorder()
	unsubscribe := c.SubscribeToAuthState(rec.fn)
	defer unsubscribe()
	require.Equal(t, "uid-1", rec.next(t).UID)

	_, err = c.SignInWithPassword(context.Background(), "ada@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, "uid-1", c.CurrentUser().UID)
	rec.none(t)
}

func TestCreateAccountSendsDisplayName(t *testing.T) {
	f, srv := newFakeToolkit(t)
	c := newTestClient(srv, nil)
	defer c.Close()

	u, err := c.CreateAccount(context.Background(), "new@example.com", "secret1", "New Person")
	require.NoError(t, err)
	assert.Equal(t, "New Person", u.DisplayName)
	assert.Equal(t, "New Person", f.lastBody["displayName"])

	_, err = c.CreateAccount(context.Background(), "new@example.com", "secret1", "Again")
	assert.Equal(t, CodeEmailInUse, CodeOf(err))

	_, err = c.CreateAccount(context.Background(), "weak@example.com", "123", "Weak")
	assert.Equal(t, CodeWeakPassword, CodeOf(err))
	assert.Contains(t, RawMessage(err), "at least 6 characters")
}

func TestSignInWithFederatedCredential(t *testing.T) {
	f, srv := newFakeToolkit(t)
	c := newTestClient(srv, nil)
	defer c.Close()

	u, err := c.SignInWithFederatedCredential(context.Background(), GoogleCredential("google-id-token"))
	require.NoError(t, err)
	assert.Equal(t, "uid-g", u.UID)
	assert.Equal(t, ProviderGoogle, u.ProviderID)

	post, _ := f.lastBody["postBody"].(string)
	vals, err := url.ParseQuery(post)
	require.NoError(t, err)
	assert.Equal(t, "google-id-token", vals.Get("id_token"))
	assert.Equal(t, ProviderGoogle, vals.Get("providerId"))

	_, err = c.SignInWithFederatedCredential(context.Background(), Credential{})
	assert.Equal(t, CodeMissingIDToken, CodeOf(err))
}

func TestSignOutNotifiesNoUser(t *testing.T) {
	_, srv := newFakeToolkit(t)
	store := NewMemoryStore(nil)
	c := newTestClient(srv, store)
	defer c.Close()
	require.NoError(t, c.Restore(context.Background()))

	_, err := c.SignInWithPassword(context.Background(), "ada@example.com", "hunter22")
	require.NoError(t, err)

	rec := newRecorder()
	unsubscribe := c.SubscribeToAuthState(rec.fn)
	defer unsubscribe()
	require.NotNil(t, rec.next(t))

	require.NoError(t, c.SignOut(context.Background()))
	assert.Nil(t, rec.next(t))
	assert.Nil(t, c.CurrentUser())
	assert.Nil(t, store.Stored())
}

func TestUnsubscribeStopsDeliveryAndIsIdempotent(t *testing.T) {
	_, srv := newFakeToolkit(t)
	c := newTestClient(srv, nil)
	defer c.Close()

	rec := newRecorder()
	unsubscribe := c.SubscribeToAuthState(rec.fn)
	rec.next(t)
	assert.Equal(t, 1, c.Subscribers())

	unsubscribe()
	unsubscribe()
	assert.Equal(t, 0, c.Subscribers())

	_, err := c.SignInWithPassword(context.Background(), "ada@example.com", "hunter22")
	require.NoError(t, err)
	rec.none(t)
}

func TestFirstDeliveryWaitsForRestore(t *testing.T) {
	_, srv := newFakeToolkit(t)
	store := NewMemoryStore(&User{UID: "uid-1", Email: "ada@example.com", RefreshToken: "refresh-1"})
	c := newTestClient(srv, store)
	defer c.Close()

	rec := newRecorder()
	unsubscribe := c.SubscribeToAuthState(rec.fn)
	defer unsubscribe()
	rec.none(t)

	require.NoError(t, c.Restore(context.Background()))
	got := rec.next(t)
	require.NotNil(t, got)
	assert.Equal(t, "uid-1", got.UID)
	assert.Equal(t, "refreshed-id-token", got.IDToken)
	assert.Equal(t, "refresh-2", store.Stored().RefreshToken)
}

func TestRestoreDropsRejectedSession(t *testing.T) {
	f, srv := newFakeToolkit(t)
	f.failWith["/token"] = "TOKEN_EXPIRED"
	store := NewMemoryStore(&User{UID: "uid-1", RefreshToken: "stale"})
	c := newTestClient(srv, store)
	defer c.Close()

	require.NoError(t, c.Restore(context.Background()))
	assert.Nil(t, c.CurrentUser())
	assert.Nil(t, store.Stored())
}

func TestRestoreKeepsSessionWhenOffline(t *testing.T) {
	_, srv := newFakeToolkit(t)
	srv.Close()
	store := NewMemoryStore(&User{UID: "uid-1", RefreshToken: "refresh-1"})
	c := newTestClient(srv, store)
	defer c.Close()

	require.NoError(t, c.Restore(context.Background()))
	require.NotNil(t, c.CurrentUser())
	assert.Equal(t, "uid-1", c.CurrentUser().UID)
	assert.NotNil(t, store.Stored())
}

func TestRestoreKeepsSessionDuringOutage(t *testing.T) {
	tests := []struct {
		name   string
		status int
		msg    string
		want   Code
	}{
		{"service unavailable", http.StatusServiceUnavailable, "The service is currently unavailable.", CodeServiceUnavailable},
		{"internal error", http.StatusInternalServerError, "Internal error encountered.", CodeInternal},
		{"rate limited", http.StatusBadRequest, "TOO_MANY_ATTEMPTS_TRY_LATER", CodeTooManyRequests},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, srv := newFakeToolkit(t)
			f.status = tt.status
			f.failWith["/token"] = tt.msg
			store := NewMemoryStore(&User{UID: "uid-1", RefreshToken: "refresh-1"})
			c := newTestClient(srv, store)
			defer c.Close()

			_, err := c.Refresh(context.Background(), store.Stored())
			require.Equal(t, tt.want, CodeOf(err))

			require.NoError(t, c.Restore(context.Background()))
			require.NotNil(t, c.CurrentUser())
			assert.Equal(t, "uid-1", c.CurrentUser().UID)
			require.NotNil(t, store.Stored())
			assert.Equal(t, "refresh-1", store.Stored().RefreshToken)
		})
	}
}

func TestRestoreKeepsSessionWhenCancelled(t *testing.T) {
	_, srv := newFakeToolkit(t)
	store := NewMemoryStore(&User{UID: "uid-1", RefreshToken: "refresh-1"})
	c := newTestClient(srv, store)
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, c.Restore(ctx))
	require.NotNil(t, c.CurrentUser())
	assert.NotNil(t, store.Stored())
}

func TestConcurrentChangesDeliverFinalState(t *testing.T) {
	_, srv := newFakeToolkit(t)
	c := newTestClient(srv, nil)

	var mu sync.Mutex
	var last *User
	delivered := false
	unsubscribe := c.SubscribeToAuthState(func(u *User) {
		mu.Lock()
		defer mu.Unlock()
		last, delivered = u, true
	})
	defer unsubscribe()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.SignInWithPassword(context.Background(), "ada@example.com", "hunter22")
		}()
		go func() {
			defer wg.Done()
			c.SignOut(context.Background())
		}()
	}
	wg.Wait()
	c.Close()

	mu.Lock()
	defer mu.Unlock()
	require.True(t, delivered)
	if cur := c.CurrentUser(); cur == nil {
		assert.Nil(t, last)
	} else {
		require.NotNil(t, last)
		assert.Equal(t, cur.UID, last.UID)
	}
}

func TestMissingAPIKey(t *testing.T) {
	_, srv := newFakeToolkit(t)
	c := New(Options{Endpoint: srv.URL})
	defer c.Close()

	_, err := c.SignInWithPassword(context.Background(), "ada@example.com", "hunter22")
	assert.Equal(t, CodeOperationNotAllowed, CodeOf(err))
}

func TestClassifyRemote(t *testing.T) {
	tests := []struct {
		status  int
		message string
		want    Code
	}{
		{400, "EMAIL_NOT_FOUND", CodeUserNotFound},
		{400, "INVALID_PASSWORD", CodeWrongPassword},
		{400, "INVALID_LOGIN_CREDENTIALS", CodeInvalidCredential},
		{400, "INVALID_EMAIL", CodeInvalidEmail},
		{400, "EMAIL_EXISTS", CodeEmailInUse},
		{400, "WEAK_PASSWORD : Password should be at least 6 characters", CodeWeakPassword},
		{400, "TOO_MANY_ATTEMPTS_TRY_LATER : Access disabled", CodeTooManyRequests},
		{400, "USER_DISABLED", CodeUserDisabled},
		{503, "backend down", CodeServiceUnavailable},
		{500, "SOMETHING_NEW", CodeInternal},
	}
	for _, tt := range tests {
		got := classifyRemote(tt.status, tt.message)
		if got.Code != tt.want {
			t.Errorf("classifyRemote(%d, %q) = %s, want %s", tt.status, tt.message, got.Code, tt.want)
		}
		if !strings.Contains(got.Error(), string(tt.want)) {
			t.Errorf("Error() = %q, want it to mention %s", got.Error(), tt.want)
		}
	}
}
