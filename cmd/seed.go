package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/certify/internal/referential"
)

var seedCmd = &cobra.Command{
	Use:   "seed [referential.yaml]",
	Short: "Load a YAML referential into the database",
	Long: "Seed validates a referential file (competences, skills, challenges, target profiles " +
		"and flash configuration) and upserts it. The path defaults to CERTIFY_REFERENTIAL.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		path := a.cfg.ReferentialPath
		if len(args) == 1 {
			path = args[0]
		}
		if path == "" {
			return errors.New("no referential given and CERTIFY_REFERENTIAL is not set")
		}

		doc, err := referential.Load(path)
		if err != nil {
			return err
		}
		stats, err := doc.Seed(cmd.Context(), referentialSink{st: a.store})
		if err != nil {
			return fmt.Errorf("seed referential: %w", err)
		}
		a.log.Info("referential seeded", "path", path, "version", doc.Version)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Seeded referential %s from %s\n", doc.Version, path)
		fmt.Fprintf(out, "  competences      %d\n", stats.Competences)
		fmt.Fprintf(out, "  skills           %d\n", stats.Skills)
		fmt.Fprintf(out, "  challenges       %d\n", stats.Challenges)
		fmt.Fprintf(out, "  target profiles  %d\n", stats.TargetProfiles)
		if stats.FlashConfig {
			fmt.Fprintln(out, "  flash configuration updated")
		}
		return nil
	},
}
