package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/habitchain/internal/habits"
	"github.com/marcus/habitchain/internal/session"
	"github.com/marcus/habitchain/pkg/tui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

var appCmd = &cobra.Command{
	Use:   "app",
	Short: "Open the habit tracker",
	Long: `Launch the HabitChain terminal app.

The app opens on a splash screen, restores the saved session in the
background, then shows the sign-in screens or your habits.

Key bindings:
  ctrl+g         Sign in with Google (login screen)
  ctrl+n         Create an account (login screen)
  ↑/↓ or j/k     Move between habits
  space          Check or uncheck a habit
  /              Search habits
  a              Add a habit
  t              Open the tracker
  o              Sign out
  esc            Back, or cancel a running sign-in
  q / ctrl+c     Quit`,
	GroupID: "app",
	RunE:    runApp,
}

func runApp(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("the app needs an interactive terminal; see \"habitchain auth --help\" for scripting")
	}

	env, err := openEnv(cfg, nil)
	if err != nil {
		return err
	}
	defer env.Close()

	list, err := habits.SampleList()
	if err != nil {
		return err
	}
	dash, err := habits.SampleDashboard()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	coord := session.NewCoordinator(env.client, session.Options{
		SplashDelay: cfg.Splash.Delay,
		Logger:      env.log,
	})
	model := tui.New(tui.Options{
		Context:   ctx,
		Auth:      env.auth,
		Habits:    list,
		Dashboard: dash,
		Route:     coord.Route(),
		Logger:    env.log,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	coord.OnRouteChange(func(r session.RouteGroup) {
		p.Send(tui.RouteChangedMsg{Route: r})
	})

	return coord.Within(func() error {
		restoreCtx, cancelRestore := context.WithCancel(ctx)
		var g errgroup.Group
		g.Go(func() error {
			return env.client.Restore(restoreCtx)
		})

		_, runErr := p.Run()
		cancelRestore()
		if err := g.Wait(); err != nil {
			env.log.Warn("restore session", zap.Error(err))
		}

		if errors.Is(runErr, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return runErr
	})
}

func init() {
	rootCmd.AddCommand(appCmd)
}
