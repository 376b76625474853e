package cmd

import (
	"fmt"
	"strings"

	"github.com/abhisek/certify/internal/skillgraph"
	"github.com/spf13/cobra"
)

var skillCmd = &cobra.Command{
	Use:   "skill",
	Short: "Browse the skill graph",
}

var skillListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all skills (optionally filtered by competence or tube)",
	RunE: func(cmd *cobra.Command, args []string) error {
		competence, _ := cmd.Flags().GetString("competence")
		tube, _ := cmd.Flags().GetString("tube")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		g, err := a.graph(cmd.Context())
		if err != nil {
			return err
		}

		var skills []skillgraph.Skill

		switch {
		case competence != "" && tube != "":
			return fmt.Errorf("use --competence or --tube, not both")
		case competence != "":
			skills = g.SkillsOfCompetence(competence)
			if len(skills) == 0 {
				return fmt.Errorf("no skills found for competence %q", competence)
			}
		case tube != "":
			t, ok := g.Tube(tube)
			if !ok {
				return fmt.Errorf("no skills found for tube %q", tube)
			}
			skills = t.Skills
		default:
			skills = g.AllSkills()
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%-20s  %-24s  %-16s  %10s  %-10s  %s\n",
			"ID", "Name", "Tube", "Difficulty", "Competence", "Status")
		fmt.Fprintln(out, strings.Repeat("\u2500", 100))

		for _, s := range skills {
			code := s.CompetenceID
			if c, ok := g.Competence(s.CompetenceID); ok {
				code = c.Code
			}
			fmt.Fprintf(out, "%-20s  %-24s  %-16s  %10d  %-10s  %s\n",
				s.ID, s.Name, s.TubeName, s.Difficulty, code, s.Status)
		}

		fmt.Fprintf(out, "\n%d skills\n", len(skills))
		return nil
	},
}

func init() {
	skillListCmd.Flags().String("competence", "", "Filter by competence ID")
	skillListCmd.Flags().String("tube", "", "Filter by tube name (e.g. @web)")

	skillCmd.AddCommand(skillListCmd)
}
