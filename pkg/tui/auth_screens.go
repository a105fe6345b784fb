package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/marcus/habitchain/internal/auth"
	"github.com/marcus/habitchain/internal/identity"
)

// loginForm holds the sign-in form and its bound values.
type loginForm struct {
	form     *huh.Form
	Email    string
	Password string
}

func newLoginForm(email string) *loginForm {
	f := &loginForm{Email: email}
	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&f.Email),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&f.Password),
		).Title("Login"),
	).WithTheme(huh.ThemeCharm()).WithShowHelp(false)
	return f
}

// signupForm holds the registration form and its bound values.
type signupForm struct {
	form            *huh.Form
	DisplayName     string
	Email           string
	Password        string
	ConfirmPassword string
}

func newSignupForm(in auth.SignUpInput) *signupForm {
	f := &signupForm{
		DisplayName:     in.DisplayName,
		Email:           in.Email,
		Password:        in.Password,
		ConfirmPassword: in.ConfirmPassword,
	}
	f.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Full Name").
				Placeholder("Ada Lovelace").
				Value(&f.DisplayName),
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&f.Email),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&f.Password),
			huh.NewInput().
				Title("Confirm Password").
				EchoMode(huh.EchoModePassword).
				Value(&f.ConfirmPassword),
		).Title("Create Account"),
	).WithTheme(huh.ThemeCharm()).WithShowHelp(false)
	return f
}

func (f *signupForm) input() auth.SignUpInput {
	return auth.SignUpInput{
		Email:           f.Email,
		Password:        f.Password,
		ConfirmPassword: f.ConfirmPassword,
		DisplayName:     f.DisplayName,
	}
}

func (m Model) updateLogin(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The submitted form stays completed until the result arrives.
	if m.busy {
		return m, nil
	}
	if k, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(k, m.keys.Google):
			a := m.auth
			cmd := m.run("google", true, func(ctx context.Context) (*identity.User, error) {
				return a.SignInWithGoogle(ctx)
			})
			return m, cmd
		case key.Matches(k, m.keys.ToSignUp):
			return m.navigate(ScreenSignUp)
		}
	}

	form, cmd := m.login.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.login.form = f
	}
	if m.login.form.State == huh.StateCompleted {
		a := m.auth
		email, password := m.login.Email, m.login.Password
		cmd := m.run("sign in", false, func(ctx context.Context) (*identity.User, error) {
			return a.SignIn(ctx, email, password)
		})
		return m, cmd
	}
	return m, cmd
}

func (m Model) updateSignUp(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	if k, ok := msg.(tea.KeyMsg); ok && key.Matches(k, m.keys.Back) {
		return m.back()
	}

	form, cmd := m.signup.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.signup.form = f
	}
	if m.signup.form.State == huh.StateCompleted {
		a := m.auth
		in := m.signup.input()
		cmd := m.run("sign up", false, func(ctx context.Context) (*identity.User, error) {
			return a.SignUp(ctx, in)
		})
		return m, cmd
	}
	return m, cmd
}

func (m Model) viewLogin() string {
	s := titleStyle.Render("Welcome to HabitChain") + "\n" +
		subtleStyle.Render("Sign in to keep your streaks going.") + "\n\n" +
		m.login.form.View()
	if m.auth != nil && !m.auth.GoogleAvailable() {
		s += "\n" + subtleStyle.Render("Google sign-in is not configured.")
	}
	return s
}

func (m Model) viewSignUp() string {
	return titleStyle.Render("Join HabitChain") + "\n" +
		subtleStyle.Render("Already have an account? Press esc to sign in.") + "\n\n" +
		m.signup.form.View()
}
