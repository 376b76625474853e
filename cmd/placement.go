package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/certify/internal/assessment"
)

var placementCmd = &cobra.Command{
	Use:   "placement",
	Short: "Run smart placements",
}

var placementStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a smart placement for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetInt64("user")
		profileID, _ := cmd.Flags().GetInt64("profile")
		if userID <= 0 {
			return fmt.Errorf("--user is required")
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		if profileID != 0 {
			if _, err := a.store.TargetProfiles().SkillIDs(ctx, profileID); err != nil {
				return fmt.Errorf("target profile %d: %w", profileID, err)
			}
		}
		created, err := a.store.Assessments().Create(ctx, assessment.Assessment{
			Type:            assessment.TypeSmartPlacement,
			UserID:          userID,
			TargetProfileID: profileID,
		})
		if err != nil {
			return err
		}
		a.log.Info("placement started", "assessment_id", created.ID, "user_id", userID, "target_profile_id", profileID)
		fmt.Fprintf(cmd.OutOrStdout(), "Started placement %d\n", created.ID)
		return nil
	},
}

var placementNextCmd = &cobra.Command{
	Use:   "next <assessment-id>",
	Short: "Pick the next challenge of a placement",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		g, err := a.graph(ctx)
		if err != nil {
			return err
		}
		sel, err := a.placementService(g).NextChallenge(ctx, id)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		c, ok := sel.Challenge()
		if !ok {
			fmt.Fprintf(out, "Placement %d ended: %s\n", id, sel.Reason())
			return nil
		}
		skill := c.SkillID()
		if s, err := g.Skill(skill); err == nil {
			skill = s.Name
		}
		fmt.Fprintf(out, "%s  (skill %s, difficulty %.2f)\n", c.ID, skill, c.Difficulty)
		return nil
	},
}

var answerCmd = &cobra.Command{
	Use:   "answer <assessment-id> <challenge-id> <result>",
	Short: "Record an answer (ok, ko, partially, timedout, focusedOut, aband, skipped)",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		value, _ := cmd.Flags().GetString("value")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		g, err := a.graph(ctx)
		if err != nil {
			return err
		}
		ans, kes, err := a.placementService(g).RecordAnswer(ctx, assessment.Answer{
			AssessmentID: id,
			ChallengeID:  args[1],
			Result:       assessment.AnswerResult(args[2]),
			Value:        value,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Recorded answer %d (%s)\n", ans.ID, ans.Result)
		if len(kes) > 0 {
			fmt.Fprintf(out, "\n%-20s  %-12s  %s\n", "Skill", "Status", "Source")
			fmt.Fprintln(out, strings.Repeat("\u2500", 48))
			for _, ke := range kes {
				fmt.Fprintf(out, "%-20s  %-12s  %s\n", ke.SkillID, ke.Status, ke.Source)
			}
		}
		return nil
	},
}

func init() {
	placementStartCmd.Flags().Int64("user", 0, "User ID")
	placementStartCmd.Flags().Int64("profile", 0, "Target profile ID (0 targets every skill)")
	answerCmd.Flags().String("value", "", "Raw answer value")

	placementCmd.AddCommand(placementStartCmd)
	placementCmd.AddCommand(placementNextCmd)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
