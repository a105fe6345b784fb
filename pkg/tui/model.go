// Package tui is the HabitChain terminal interface. The root model shows
// the screens of whichever route group the session coordinator selects;
// it never decides on its own whether the user is signed in.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/habitchain/internal/auth"
	"github.com/marcus/habitchain/internal/habits"
	"github.com/marcus/habitchain/internal/identity"
	"github.com/marcus/habitchain/internal/session"
	"go.uber.org/zap"
)

// Authenticator is the subset of auth.Actions the screens use.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) (*identity.User, error)
	SignUp(ctx context.Context, in auth.SignUpInput) (*identity.User, error)
	SignInWithGoogle(ctx context.Context) (*identity.User, error)
	SignOut(ctx context.Context) error
	GoogleAvailable() bool
}

// RouteChangedMsg tells the model that the coordinator selected a new
// route group.
type RouteChangedMsg struct {
	Route session.RouteGroup
}

// authResultMsg reports the end of a sign-in or sign-up attempt.
type authResultMsg struct {
	op  string
	err error
}

// signedOutMsg reports the end of a sign-out.
type signedOutMsg struct {
	err error
}

// Options configures the model.
type Options struct {
	Context   context.Context
	Auth      Authenticator
	Habits    *habits.List
	Dashboard habits.Dashboard
	Route     session.RouteGroup // route at startup
	Logger    *zap.Logger
	Now       func() time.Time
}

// Model is the root bubbletea model.
type Model struct {
	ctx  context.Context
	auth Authenticator
	list *habits.List
	dash habits.Dashboard
	log  *zap.Logger
	now  func() time.Time
	keys keyMap
	help help.Model

	route    session.RouteGroup
	stack    []Screen
	fromAuth bool // the auth flow was shown in this run

	Width  int
	Height int

	busy    bool
	cancel  context.CancelFunc
	spinner spinner.Model
	err     string
	notice  string

	login  *loginForm
	signup *signupForm
	habit  *habitForm

	search    textinput.Model
	searching bool
	cursor    int

	intro      viewport.Model
	introReady bool

	activity int
}

// New creates the root model.
func New(opts Options) Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Habits == nil {
		opts.Habits, _ = habits.SampleList()
	}

	search := textinput.New()
	search.Placeholder = "Search habits..."
	search.Prompt = "🔍 "

	m := Model{
		ctx:     opts.Context,
		auth:    opts.Auth,
		list:    opts.Habits,
		dash:    opts.Dashboard,
		log:     opts.Logger.Named("tui"),
		now:     opts.Now,
		keys:    defaultKeyMap(),
		help:    help.New(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(titleStyle)),
		search:  search,
		Width:   80,
		Height:  24,
	}
	m.route = opts.Route
	if m.route == session.ShowAuthFlow {
		m.fromAuth = true
	}
	m.stack = []Screen{rootScreen(m.route, m.fromAuth)}
	m.prepare(m.Screen())
	return m
}

// Screen returns the screen on top of the navigation stack.
func (m Model) Screen() Screen {
	return m.stack[len(m.stack)-1]
}

// Route returns the route group being shown.
func (m Model) Route() session.RouteGroup {
	return m.route
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.screenInit())
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RouteChangedMsg:
		return m.setRoute(msg.Route)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.help.Width = msg.Width
		if m.Screen() == ScreenIntro {
			m.renderIntro()
		}
		return m.updateScreen(msg)

	case spinner.TickMsg:
		// Only animate while something is waiting.
		if !m.busy && m.Screen() != ScreenSplash {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case authResultMsg:
		return m.handleAuthResult(msg)

	case signedOutMsg:
		m.busy = false
		if msg.err != nil {
			m.err = "Sign out failed: " + msg.err.Error()
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.cancelPending()
			return m, tea.Quit
		}
		if m.busy {
			if key.Matches(msg, m.keys.Back) {
				m.cancelPending()
			}
			return m, nil
		}
	}
	return m.updateScreen(msg)
}

func (m Model) updateScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.Screen() {
	case ScreenSplash:
		return m.updateSplash(msg)
	case ScreenLogin:
		return m.updateLogin(msg)
	case ScreenSignUp:
		return m.updateSignUp(msg)
	case ScreenIntro:
		return m.updateIntro(msg)
	case ScreenHome:
		return m.updateHome(msg)
	case ScreenHabit:
		return m.updateHabit(msg)
	case ScreenTracker:
		return m.updateTracker(msg)
	}
	return m, nil
}

// setRoute resets navigation to the root of the new group and cancels any
// pending cancellable action.
func (m Model) setRoute(route session.RouteGroup) (tea.Model, tea.Cmd) {
	if route == m.route {
		return m, nil
	}
	m.log.Debug("route changed", zap.Stringer("from", m.route), zap.Stringer("to", route))
	if route == session.ShowAuthFlow {
		m.fromAuth = true
	}
	m.route = route
	m.cancelPending()
	m.busy = false
	m.notice = ""
	root := rootScreen(route, m.fromAuth)
	m.stack = []Screen{root}
	cmd := m.enter(root)
	return m, cmd
}

// navigate pushes s when the current route group exposes it.
func (m Model) navigate(s Screen) (Model, tea.Cmd) {
	if !Reachable(m.route, s) {
		m.log.Debug("navigation ignored", zap.Stringer("screen", s), zap.Stringer("route", m.route))
		return m, nil
	}
	m.stack = append(m.stack, s)
	cmd := m.enter(s)
	return m, cmd
}

// replace swaps the top of the stack for s.
func (m Model) replace(s Screen) (Model, tea.Cmd) {
	if !Reachable(m.route, s) {
		return m, nil
	}
	m.stack = append(m.stack[:len(m.stack)-1:len(m.stack)-1], s)
	cmd := m.enter(s)
	return m, cmd
}

// back pops the current screen unless it is the group's root.
func (m Model) back() (Model, tea.Cmd) {
	if len(m.stack) <= 1 {
		return m, nil
	}
	m.stack = m.stack[:len(m.stack)-1]
	cmd := m.enter(m.Screen())
	return m, cmd
}

// enter prepares s for display and returns its initial command.
func (m *Model) enter(s Screen) tea.Cmd {
	m.prepare(s)
	return m.screenInit()
}

// prepare resets the state s shows.
func (m *Model) prepare(s Screen) {
	m.err = ""
	switch s {
	case ScreenLogin:
		m.login = newLoginForm("")
	case ScreenSignUp:
		m.signup = newSignupForm(auth.SignUpInput{})
	case ScreenHabit:
		m.habit = newHabitForm(habits.DefaultInput())
	case ScreenIntro:
		m.renderIntro()
	case ScreenHome:
		m.clampCursor()
	case ScreenTracker:
		m.activity = 0
	}
}

// screenInit returns the current form's Init command, if any.
func (m Model) screenInit() tea.Cmd {
	switch m.Screen() {
	case ScreenLogin:
		return m.login.form.Init()
	case ScreenSignUp:
		return m.signup.form.Init()
	case ScreenHabit:
		return m.habit.form.Init()
	}
	return nil
}

// run starts an authentication call in the background.
func (m *Model) run(op string, cancellable bool, call func(ctx context.Context) (*identity.User, error)) tea.Cmd {
	ctx := m.ctx
	var cancel context.CancelFunc
	if cancellable {
		ctx, cancel = context.WithCancel(ctx)
		m.cancel = cancel
	}
	m.busy = true
	m.err = ""
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		if cancel != nil {
			defer cancel()
		}
		_, err := call(ctx)
		return authResultMsg{op: op, err: err}
	})
}

func (m Model) handleAuthResult(msg authResultMsg) (tea.Model, tea.Cmd) {
	if !m.busy {
		// Superseded by a route change.
		return m, nil
	}
	m.busy = false
	m.cancel = nil
	m.log.Debug("auth action finished", zap.String("op", msg.op), zap.Bool("ok", msg.err == nil))
	if msg.err == nil {
		// The coordinator moves us to the app flow.
		return m, nil
	}
	m.err = auth.UserMessage(msg.err)

	switch m.Screen() {
	case ScreenLogin:
		m.login = newLoginForm(m.login.Email)
		return m, m.login.form.Init()
	case ScreenSignUp:
		in := m.signup.input()
		in.Password, in.ConfirmPassword = "", ""
		m.signup = newSignupForm(in)
		return m, m.signup.form.Init()
	}
	return m, nil
}

func (m *Model) cancelPending() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
}
