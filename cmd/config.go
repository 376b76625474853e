package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		dbPath, err := resolveDBPath(cmd, cfg.DBPath)
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}

		redisAddr := cfg.Redis.Addr
		if redisAddr == "" {
			redisAddr = "(in-process guard)"
		}
		referentialPath := cfg.ReferentialPath
		if referentialPath == "" {
			referentialPath = "(unset)"
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-22s %s\n", "db", dbPath)
		fmt.Fprintf(out, "%-22s %s\n", "log mode", cfg.Log.Mode)
		fmt.Fprintf(out, "%-22s %t\n", "log debug", cfg.Log.Debug)
		fmt.Fprintf(out, "%-22s %s\n", "redis", redisAddr)
		fmt.Fprintf(out, "%-22s %s\n", "redis claim ttl", cfg.Redis.ClaimTTL)
		fmt.Fprintf(out, "%-22s %d\n", "rescore concurrency", cfg.RescoreConcurrency)
		fmt.Fprintf(out, "%-22s %s\n", "referential", referentialPath)
		fmt.Fprintf(out, "%-22s %d\n", "max reachable level", cfg.MaxReachableLevel)
		fmt.Fprintf(out, "%-22s %d\n", "placement max length", cfg.PlacementMaxLength)
		return nil
	},
}
