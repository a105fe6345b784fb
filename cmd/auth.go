package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/marcus/habitchain/internal/auth"
	"github.com/marcus/habitchain/internal/federated"
	"github.com/marcus/habitchain/internal/identity"
	"github.com/marcus/habitchain/internal/output"
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:     "auth",
	Short:   "Manage your HabitChain account",
	GroupID: "account",
}

// authError turns an auth failure into the message the app would show.
func authError(err error) error {
	if err == nil {
		return nil
	}
	return errors.New(auth.UserMessage(err))
}

func signedIn(u *identity.User) {
	output.Success("Signed in as %s", u.Name())
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with email and password",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		if email == "" {
			var err error
			if email, err = promptLine("Email: "); err != nil {
				return err
			}
		}
		password, err := promptPassword("Password: ")
		if err != nil {
			return err
		}

		env, err := openEnv(cfg, nil)
		if err != nil {
			return err
		}
		defer env.Close()

		u, err := env.auth.SignIn(cmd.Context(), email, password)
		if err != nil {
			return authError(err)
		}
		signedIn(u)
		return nil
	},
}

var authSignupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		var in auth.SignUpInput
		var err error
		in.DisplayName, _ = cmd.Flags().GetString("name")
		in.Email, _ = cmd.Flags().GetString("email")
		if in.DisplayName == "" {
			if in.DisplayName, err = promptLine("Full name: "); err != nil {
				return err
			}
		}
		if in.Email == "" {
			if in.Email, err = promptLine("Email: "); err != nil {
				return err
			}
		}
		if in.Password, err = promptPassword("Password: "); err != nil {
			return err
		}
		if in.ConfirmPassword, err = promptPassword("Confirm password: "); err != nil {
			return err
		}

		env, err := openEnv(cfg, nil)
		if err != nil {
			return err
		}
		defer env.Close()

		u, err := env.auth.SignUp(cmd.Context(), in)
		if err != nil {
			return authError(err)
		}
		output.Success("Account created")
		signedIn(u)
		return nil
	},
}

var authGoogleCmd = &cobra.Command{
	Use:   "google",
	Short: "Sign in with Google in your browser",
	RunE: func(cmd *cobra.Command, args []string) error {
		noBrowser, _ := cmd.Flags().GetBool("no-browser")
		open := func(url string) error {
			output.Info("Complete sign-in in your browser:\n  %s", url)
			if noBrowser {
				return nil
			}
			return federated.OpenBrowser(url)
		}

		env, err := openEnv(cfg, open)
		if err != nil {
			return err
		}
		defer env.Close()

		if !env.auth.GoogleAvailable() {
			return fmt.Errorf("google sign-in needs google.client_id in %s", configPathOrDefault())
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		u, err := env.auth.SignInWithGoogle(ctx)
		if err != nil {
			return authError(err)
		}
		signedIn(u)
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the saved session",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cfg, nil)
		if err != nil {
			return err
		}
		defer env.Close()

		ctx := cmd.Context()
		if err := env.client.Restore(ctx); err != nil {
			return err
		}
		if env.client.CurrentUser() == nil {
			output.Info("Not signed in.")
			return nil
		}
		if err := env.auth.SignOut(ctx); err != nil {
			return err
		}
		output.Success("Signed out.")
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the saved session",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := openEnv(cfg, nil)
		if err != nil {
			return err
		}
		defer env.Close()

		u, err := env.store.LoadUser(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			if u != nil {
				u.IDToken, u.RefreshToken = "", ""
			}
			return output.JSON(map[string]any{"signed_in": u != nil, "user": u})
		}
		fmt.Print(output.FormatUser(u))
		if u == nil {
			fmt.Println()
		}
		return nil
	},
}

var authHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent sign-in activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		jsonOut, _ := cmd.Flags().GetBool("json")

		env, err := openEnv(cfg, nil)
		if err != nil {
			return err
		}
		defer env.Close()

		entries, err := env.store.History(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if jsonOut {
			return output.JSON(entries)
		}
		if len(entries) == 0 {
			output.Info("No sign-in activity yet.")
			return nil
		}
		for _, e := range entries {
			fmt.Println(output.FormatEntry(e))
		}
		return nil
	},
}

func init() {
	authLoginCmd.Flags().String("email", "", "account email (prompted when empty)")
	authSignupCmd.Flags().String("email", "", "account email (prompted when empty)")
	authSignupCmd.Flags().String("name", "", "display name (prompted when empty)")
	authGoogleCmd.Flags().Bool("no-browser", false, "print the consent URL without opening a browser")
	authStatusCmd.Flags().Bool("json", false, "JSON output")
	authHistoryCmd.Flags().IntP("limit", "n", 20, "number of entries (0 for all)")
	authHistoryCmd.Flags().Bool("json", false, "JSON output")

	authCmd.AddCommand(authLoginCmd, authSignupCmd, authGoogleCmd, authLogoutCmd, authStatusCmd, authHistoryCmd)
	rootCmd.AddCommand(authCmd)
}
