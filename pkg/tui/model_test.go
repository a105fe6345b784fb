package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/marcus/habitchain/internal/auth"
	"github.com/marcus/habitchain/internal/habits"
	"github.com/marcus/habitchain/internal/identity"
	"github.com/marcus/habitchain/internal/session"
)

type fakeAuth struct {
	signIns  int
	signUps  int
	signOuts int
	google   bool
}

func (f *fakeAuth) SignIn(ctx context.Context, email, password string) (*identity.User, error) {
	f.signIns++
	return &identity.User{UID: "u1", Email: email}, nil
}

func (f *fakeAuth) SignUp(ctx context.Context, in auth.SignUpInput) (*identity.User, error) {
	f.signUps++
	return &identity.User{UID: "u1", Email: in.Email}, nil
}

func (f *fakeAuth) SignInWithGoogle(ctx context.Context) (*identity.User, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (f *fakeAuth) SignOut(ctx context.Context) error {
	f.signOuts++
	return nil
}

func (f *fakeAuth) GoogleAvailable() bool { return f.google }

func newTestModel(t *testing.T, route session.RouteGroup) (Model, *fakeAuth) {
	t.Helper()
	list, err := habits.SampleList()
	if err != nil {
		t.Fatalf("SampleList: %v", err)
	}
	dash, err := habits.SampleDashboard()
	if err != nil {
		t.Fatalf("SampleDashboard: %v", err)
	}
	fa := &fakeAuth{google: true}
	m := New(Options{
		Auth:      fa,
		Habits:    list,
		Dashboard: dash,
		Route:     route,
		Now:       func() time.Time { return time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC) },
	})
	return m, fa
}

// send feeds msg through Update and returns the concrete model.
func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// collect runs cmd and any batched commands and returns the messages of
// type T.
func collect[T any](cmd tea.Cmd) []T {
	if cmd == nil {
		return nil
	}
	var out []T
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			out = append(out, collect[T](c)...)
		}
	case T:
		out = append(out, msg)
	}
	return out
}

func TestRootScreens(t *testing.T) {
	tests := []struct {
		route    session.RouteGroup
		fromAuth bool
		want     Screen
	}{
		{session.ShowSplash, false, ScreenSplash},
		{session.ShowAuthFlow, false, ScreenLogin},
		{session.ShowAppFlow, false, ScreenHome},
		{session.ShowAppFlow, true, ScreenIntro},
	}
	for _, tt := range tests {
		if got := rootScreen(tt.route, tt.fromAuth); got != tt.want {
			t.Errorf("rootScreen(%v, %v) = %v, want %v", tt.route, tt.fromAuth, got, tt.want)
		}
	}
}

func TestReachable(t *testing.T) {
	tests := []struct {
		route  session.RouteGroup
		screen Screen
		want   bool
	}{
		{session.ShowSplash, ScreenSplash, true},
		{session.ShowSplash, ScreenHome, false},
		{session.ShowAuthFlow, ScreenSignUp, true},
		{session.ShowAuthFlow, ScreenHome, false},
		{session.ShowAppFlow, ScreenTracker, true},
		{session.ShowAppFlow, ScreenLogin, false},
	}
	for _, tt := range tests {
		if got := Reachable(tt.route, tt.screen); got != tt.want {
			t.Errorf("Reachable(%v, %v) = %v, want %v", tt.route, tt.screen, got, tt.want)
		}
	}
}

func TestRouteSequenceThroughAuthOpensIntro(t *testing.T) {
	m, _ := newTestModel(t, session.ShowSplash)
	if m.Screen() != ScreenSplash {
		t.Fatalf("start screen = %v", m.Screen())
	}

	m, _ = send(t, m, RouteChangedMsg{Route: session.ShowAuthFlow})
	if m.Screen() != ScreenLogin {
		t.Fatalf("after auth route screen = %v, want Login", m.Screen())
	}

	m, _ = send(t, m, RouteChangedMsg{Route: session.ShowAppFlow})
	if m.Screen() != ScreenIntro {
		t.Fatalf("after app route screen = %v, want Intro", m.Screen())
	}
	if len(m.stack) != 1 {
		t.Errorf("stack = %v, want only the root", m.stack)
	}
}

func TestRouteSequenceRestoredSessionOpensHome(t *testing.T) {
	m, _ := newTestModel(t, session.ShowSplash)
	m, _ = send(t, m, RouteChangedMsg{Route: session.ShowAppFlow})
	if m.Screen() != ScreenHome {
		t.Fatalf("screen = %v, want Home", m.Screen())
	}
	if m.Route() != session.ShowAppFlow {
		t.Errorf("route = %v", m.Route())
	}
}

func TestSignOutRouteReturnsToLogin(t *testing.T) {
	m, _ := newTestModel(t, session.ShowAppFlow)
	m, _ = send(t, m, runes("t"))
	if m.Screen() != ScreenTracker {
		t.Fatalf("screen = %v, want Tracker", m.Screen())
	}
	m, _ = send(t, m, RouteChangedMsg{Route: session.ShowAuthFlow})
	if m.Screen() != ScreenLogin || len(m.stack) != 1 {
		t.Fatalf("screen = %v stack = %v, want only Login", m.Screen(), m.stack)
	}
}

func TestNavigateIgnoresOtherGroups(t *testing.T) {
	m, _ := newTestModel(t, session.ShowAuthFlow)
	m, _ = m.navigate(ScreenHome)
	if m.Screen() != ScreenLogin {
		t.Errorf("screen = %v, want Login", m.Screen())
	}
	m, _ = m.navigate(ScreenSignUp)
	if m.Screen() != ScreenSignUp {
		t.Errorf("screen = %v, want SignUp", m.Screen())
	}
}

func TestLoginToSignUpAndBack(t *testing.T) {
	m, _ := newTestModel(t, session.ShowAuthFlow)
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlN})
	if m.Screen() != ScreenSignUp {
		t.Fatalf("screen = %v, want SignUp", m.Screen())
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.Screen() != ScreenLogin {
		t.Fatalf("screen = %v, want Login", m.Screen())
	}
}

func TestAuthFailureShowsMessage(t *testing.T) {
	m, _ := newTestModel(t, session.ShowAuthFlow)
	m.busy = true

	err := &auth.Error{Kind: auth.KindCredential, Reason: auth.ReasonInvalidCredentials, Message: "Incorrect password."}
	m, _ = send(t, m, authResultMsg{op: "sign in", err: err})

	if m.busy {
		t.Error("still busy after result")
	}
	if m.err != "Incorrect password." {
		t.Errorf("err = %q", m.err)
	}
	if m.Screen() != ScreenLogin {
		t.Errorf("screen = %v, want Login", m.Screen())
	}
	if !strings.Contains(m.View(), "Incorrect password.") {
		t.Error("view does not show the error")
	}
}

func TestAuthSuccessWaitsForRoute(t *testing.T) {
	m, _ := newTestModel(t, session.ShowAuthFlow)
	m.busy = true
	m, _ = send(t, m, authResultMsg{op: "sign in"})
	if m.busy || m.err != "" {
		t.Errorf("busy = %v err = %q", m.busy, m.err)
	}
	if m.Screen() != ScreenLogin {
		t.Errorf("screen = %v, want Login until the route changes", m.Screen())
	}
}

func TestGoogleSignInCancel(t *testing.T) {
	m, _ := newTestModel(t, session.ShowAuthFlow)
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyCtrlG})
	if !m.busy || m.cancel == nil {
		t.Fatalf("busy = %v cancel set = %v", m.busy, m.cancel != nil)
	}

	// Keys other than esc are ignored while busy.
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlN})
	if m.Screen() != ScreenLogin {
		t.Fatalf("screen = %v, want Login", m.Screen())
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	results := collect[authResultMsg](cmd)
	if len(results) != 1 {
		t.Fatalf("got %d results", len(results))
	}
	if !errors.Is(results[0].err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", results[0].err)
	}

	m, _ = send(t, m, results[0])
	if m.busy {
		t.Error("still busy")
	}
	if m.err == "" {
		t.Error("no error shown")
	}
}

func TestSubmittedFormSendsOneRequest(t *testing.T) {
	tests := []struct {
		name   string
		screen Screen
		calls  func(*fakeAuth) int
	}{
		{"login", ScreenLogin, func(f *fakeAuth) int { return f.signIns }},
		{"sign up", ScreenSignUp, func(f *fakeAuth) int { return f.signUps }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, fa := newTestModel(t, session.ShowAuthFlow)
			if tt.screen == ScreenSignUp {
				m, _ = m.navigate(ScreenSignUp)
				m.signup.form.State = huh.StateCompleted
			} else {
				m.login.form.State = huh.StateCompleted
			}

			m, first := send(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
			if !m.busy {
				t.Fatal("completed form did not start a request")
			}
			m, second := send(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
			if m.Width != 120 {
				t.Errorf("width = %d, want resize applied while busy", m.Width)
			}

			results := append(collect[authResultMsg](first), collect[authResultMsg](second)...)
			if len(results) != 1 {
				t.Errorf("got %d results, want 1", len(results))
			}
			if n := tt.calls(fa); n != 1 {
				t.Errorf("provider called %d times, want 1", n)
			}
		})
	}
}

func TestRouteChangeCancelsGoogleSignIn(t *testing.T) {
	m, _ := newTestModel(t, session.ShowAuthFlow)
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyCtrlG})
	if m.cancel == nil {
		t.Fatal("google sign-in not cancellable")
	}

	m, _ = send(t, m, RouteChangedMsg{Route: session.ShowAppFlow})
	if m.busy || m.cancel != nil {
		t.Errorf("busy = %v cancel set = %v after route change", m.busy, m.cancel != nil)
	}

	results := collect[authResultMsg](cmd)
	if len(results) != 1 || !errors.Is(results[0].err, context.Canceled) {
		t.Fatalf("results = %+v, want one cancelled result", results)
	}
	m, _ = send(t, m, results[0])
	if m.err != "" {
		t.Errorf("err = %q, want late result ignored", m.err)
	}
}

func TestIntroContinue(t *testing.T) {
	m, _ := newTestModel(t, session.ShowSplash)
	m, _ = send(t, m, RouteChangedMsg{Route: session.ShowAuthFlow})
	m, _ = send(t, m, RouteChangedMsg{Route: session.ShowAppFlow})
	if !strings.Contains(m.View(), "Continue") {
		t.Error("intro view missing the continue action")
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Screen() != ScreenHome {
		t.Fatalf("screen = %v, want Home", m.Screen())
	}
	m, _ = m.back()
	if m.Screen() != ScreenHome {
		t.Errorf("back from the root moved to %v", m.Screen())
	}
}

func TestHomeToggle(t *testing.T) {
	m, _ := newTestModel(t, session.ShowAppFlow)
	first := m.list.All()[0]

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if got := m.list.All()[0].Checked; got == first.Checked {
		t.Errorf("checked = %v, want toggled", got)
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want 1", m.cursor)
	}
	if got := m.list.All()[1].Checked; got == first.Checked {
		t.Errorf("second checked = %v, want toggled", got)
	}
}

func TestHomeSearch(t *testing.T) {
	m, _ := newTestModel(t, session.ShowAppFlow)
	m, _ = send(t, m, runes("/"))
	if !m.searching {
		t.Fatal("search not focused")
	}
	m, _ = send(t, m, runes("water"))
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.searching {
		t.Error("still searching after enter")
	}

	rows := m.visible()
	if len(rows) != 1 || !strings.HasPrefix(rows[0].Name, "Drink Water") {
		t.Fatalf("visible = %v", rows)
	}
	if strings.Contains(m.View(), "Workout") {
		t.Error("filtered view shows Workout")
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if n := len(m.visible()); n != m.list.Len() {
		t.Errorf("visible after clear = %d, want %d", n, m.list.Len())
	}
}

func TestHabitFormCancel(t *testing.T) {
	m, _ := newTestModel(t, session.ShowAppFlow)
	m, _ = send(t, m, runes("a"))
	if m.Screen() != ScreenHabit {
		t.Fatalf("screen = %v, want Habit", m.Screen())
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.Screen() != ScreenHome {
		t.Fatalf("screen = %v, want Home", m.Screen())
	}
	if m.list.Len() != 5 {
		t.Errorf("len = %d, cancel must not add", m.list.Len())
	}
}

func TestSignOut(t *testing.T) {
	m, fa := newTestModel(t, session.ShowAppFlow)
	m, cmd := send(t, m, runes("o"))
	if !m.busy {
		t.Fatal("not busy after sign out")
	}
	msgs := collect[signedOutMsg](cmd)
	if len(msgs) != 1 || msgs[0].err != nil {
		t.Fatalf("sign out msgs = %v", msgs)
	}
	if fa.signOuts != 1 {
		t.Errorf("SignOut calls = %d", fa.signOuts)
	}
	m, _ = send(t, m, msgs[0])
	if m.busy {
		t.Error("still busy")
	}
}

func TestTrackerView(t *testing.T) {
	m, _ := newTestModel(t, session.ShowAppFlow)
	m, _ = send(t, m, runes("t"))
	m, _ = send(t, m, runes("l"))
	if m.activity != 1 {
		t.Errorf("activity = %d, want 1", m.activity)
	}

	view := m.View()
	for _, want := range []string{"Mar 9, 2024", "Walk", "7500", "cycling"} {
		if !strings.Contains(view, want) {
			t.Errorf("tracker view missing %q", want)
		}
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.Screen() != ScreenHome {
		t.Errorf("screen = %v, want Home", m.Screen())
	}
}
