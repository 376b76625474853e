package cmd

import (
	"github.com/abhisek/certify/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "certify",
	Short: "Placement and certification scoring engine",
	Long: "Certify runs adaptive smart placements and scores certification courses " +
		"(classic skill propagation or flash ability estimation).",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides CERTIFY_DB env var)")
	rootCmd.PersistentFlags().String("log-mode", "", "Log encoder: dev or prod (overrides CERTIFY_LOG_MODE env var)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(skillCmd)
	rootCmd.AddCommand(placementCmd)
	rootCmd.AddCommand(courseCmd)
	rootCmd.AddCommand(answerCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(rescoreCmd)
	rootCmd.AddCommand(resultCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then CERTIFY_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, envPath string) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if envPath != "" {
		return envPath, store.EnsureDir(envPath)
	}
	return store.DefaultDBPath()
}
