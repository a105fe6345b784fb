package tui

import "github.com/marcus/habitchain/internal/session"

// Screen is one view of the application.
type Screen int

const (
	ScreenSplash Screen = iota
	ScreenLogin
	ScreenSignUp
	ScreenIntro
	ScreenHome
	ScreenHabit
	ScreenTracker
)

func (s Screen) String() string {
	switch s {
	case ScreenSplash:
		return "Splash"
	case ScreenLogin:
		return "Login"
	case ScreenSignUp:
		return "SignUp"
	case ScreenIntro:
		return "Intro"
	case ScreenHome:
		return "Home"
	case ScreenHabit:
		return "Habit"
	case ScreenTracker:
		return "Tracker"
	default:
		return "Unknown"
	}
}

// reachable lists the screens each route group exposes.
var reachable = map[session.RouteGroup]map[Screen]bool{
	session.ShowSplash: {
		ScreenSplash: true,
	},
	session.ShowAuthFlow: {
		ScreenLogin:  true,
		ScreenSignUp: true,
	},
	session.ShowAppFlow: {
		ScreenIntro:   true,
		ScreenHome:    true,
		ScreenHabit:   true,
		ScreenTracker: true,
	},
}

// Reachable reports whether s may be shown while route is active.
func Reachable(route session.RouteGroup, s Screen) bool {
	return reachable[route][s]
}

// rootScreen is where a route group starts. The app flow opens on the
// intro only when the user came through the sign-in screens in this run.
func rootScreen(route session.RouteGroup, fromAuthFlow bool) Screen {
	switch route {
	case session.ShowAuthFlow:
		return ScreenLogin
	case session.ShowAppFlow:
		if fromAuthFlow {
			return ScreenIntro
		}
		return ScreenHome
	default:
		return ScreenSplash
	}
}
