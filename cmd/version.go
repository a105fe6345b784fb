package cmd

import (
	"fmt"

	"github.com/marcus/habitchain/internal/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:     "version",
	Short:   "Show version and check for updates",
	GroupID: "system",
	// Version needs no configuration.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		short, _ := cmd.Flags().GetBool("short")
		if short {
			fmt.Print(versionStr)
			return
		}

		fmt.Printf("habitchain version %s\n", versionStr)

		checkUpdates, _ := cmd.Flags().GetBool("check")
		if !checkUpdates || version.IsDevelopmentVersion(versionStr) {
			return
		}

		result, err := version.Check(cmd.Context(), nil, versionStr)
		if err != nil {
			// Silently ignore network errors
			return
		}
		if result.HasUpdate {
			fmt.Printf("\nUpdate available: %s → %s\n", versionStr, result.LatestVersion)
			if cmd := version.UpdateCommand(result.LatestVersion); cmd != "" {
				fmt.Printf("Run: %s\n", cmd)
			}
		}
	},
}

func init() {
	versionCmd.Flags().Bool("check", false, "Check GitHub for a newer release")
	versionCmd.Flags().Bool("short", false, "Output only version string")
	rootCmd.AddCommand(versionCmd)
}
