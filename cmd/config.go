package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/marcus/habitchain/internal/config"
	"github.com/marcus/habitchain/internal/output"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Inspect HabitChain configuration",
	GroupID: "system",
}

// configPathOrDefault names the config file for messages, falling back to
// the documented default when the home directory is unknown.
func configPathOrDefault() string {
	p, err := config.Path()
	if err != nil {
		return "~/.config/habitchain/config.toml"
	}
	return p
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective settings (secrets masked)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			settings := map[string]string{}
			for _, kv := range cfg.Settings() {
				settings[kv[0]] = kv[1]
			}
			return output.JSON(settings)
		}
		fmt.Print(output.SectionHeader("settings"))
		fmt.Print(output.KeyValues(cfg.Settings()))
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file location",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := config.Path()
		if err != nil {
			return err
		}
		fmt.Println(p)
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			output.Warning("file does not exist; defaults and %s_* variables apply", config.EnvPrefix)
		}
		return nil
	},
}

func init() {
	configShowCmd.Flags().Bool("json", false, "JSON output")
	configCmd.AddCommand(configShowCmd, configPathCmd)
	rootCmd.AddCommand(configCmd)
}
