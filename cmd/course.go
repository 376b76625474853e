package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/certify/internal/assessment"
	"github.com/abhisek/certify/internal/events"
	"github.com/abhisek/certify/internal/skillgraph"
)

// challengesPerCompetence is how many challenges a classic course
// administers for each competence.
const challengesPerCompetence = 3

var courseCmd = &cobra.Command{
	Use:   "course",
	Short: "Manage certification courses",
}

var courseCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a certification course and its assessment for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetInt64("user")
		v, _ := cmd.Flags().GetInt("version")
		if userID <= 0 {
			return fmt.Errorf("--user is required")
		}
		version := assessment.Version(v)
		if version != assessment.VersionClassic && version != assessment.VersionFlash {
			return fmt.Errorf("--version must be %d or %d", assessment.VersionClassic, assessment.VersionFlash)
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
		skillIDs := make([]string, 0, len(g.AllSkills()))
		for _, s := range g.AllSkills() {
			skillIDs = append(skillIDs, s.ID)
		}
		pool, err := a.store.Challenges().FindBySkillIDs(ctx, skillIDs)
		if err != nil {
			return err
		}

		course, err := a.store.Courses().Create(ctx, assessment.CertificationCourse{
			UserID:  userID,
			Version: version,
		})
		if err != nil {
			return err
		}
		created, err := a.store.Assessments().Create(ctx, assessment.Assessment{
			Type:                  assessment.TypeCertification,
			UserID:                userID,
			CertificationCourseID: course.ID,
		})
		if err != nil {
			return err
		}

		var picked []assessment.CertificationChallenge
		if version == assessment.VersionClassic {
			picked = pickClassicChallenges(g, pool, course.ID)
			if err := a.store.Courses().SaveChallenges(ctx, picked); err != nil {
				return err
			}
		}
		a.log.Info("certification course created",
			"course_id", course.ID,
			"assessment_id", created.ID,
			"user_id", userID,
			"version", v,
			"challenges", len(picked),
		)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Created course %d (v%d) with assessment %d\n", course.ID, v, created.ID)
		for _, c := range picked {
			fmt.Fprintf(out, "  %-20s  competence %-10s  skill %s\n", c.ChallengeID, c.CompetenceID, c.AssociatedSkillID)
		}
		return nil
	},
}

// pickClassicChallenges administers, for each competence, one usable
// challenge of each of its hardest skills.
func pickClassicChallenges(g *skillgraph.Graph, pool []assessment.Challenge, courseID int64) []assessment.CertificationChallenge {
	bySkill := make(map[string]assessment.Challenge)
	for _, c := range pool {
		if !c.Usable() {
			continue
		}
		if _, ok := bySkill[c.SkillID()]; !ok {
			bySkill[c.SkillID()] = c
		}
	}

	var out []assessment.CertificationChallenge
	for _, comp := range g.Competences() {
		skills := g.SkillsOfCompetence(comp.ID)
		sort.SliceStable(skills, func(i, j int) bool { return skills[i].Difficulty > skills[j].Difficulty })
		n := 0
		for _, s := range skills {
			c, ok := bySkill[s.ID]
			if !ok {
				continue
			}
			out = append(out, assessment.CertificationChallenge{
				ChallengeID:       c.ID,
				CourseID:          courseID,
				CompetenceID:      comp.ID,
				AssociatedSkillID: s.ID,
			})
			if n++; n == challengesPerCompetence {
				break
			}
		}
	}
	return out
}

var completeCmd = &cobra.Command{
	Use:   "complete <assessment-id>",
	Short: "Complete an assessment and score it when it is a certification",
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
		assmt, err := a.store.Assessments().Get(ctx, id)
		if err != nil {
			return err
		}
		if err := a.store.Assessments().SetState(ctx, id, assessment.StateCompleted); err != nil {
			return err
		}

		g, err := a.graph(ctx)
		if err != nil {
			return err
		}
		svc, err := a.scoringService(g)
		if err != nil {
			return err
		}
		d, err := a.dispatcher(ctx, svc)
		if err != nil {
			return err
		}

		evt := events.NewAssessmentCompleted(assmt.ID, assmt.UserID, assmt.CertificationCourseID, time.Now().UTC())
		a.log.Info("assessment completed", "event_id", evt.ID, "assessment_id", id)
		res, err := d.Dispatch(ctx, evt)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if res == nil {
			fmt.Fprintf(out, "Completed assessment %d\n", id)
			return nil
		}
		fmt.Fprintf(out, "Completed assessment %d, course %d scored (reproducibility %.2f%%)\n",
			id, res.CertificationCourseID, res.ReproducibilityRate)
		return nil
	},
}

func init() {
	courseCreateCmd.Flags().Int64("user", 0, "User ID")
	courseCreateCmd.Flags().Int("version", int(assessment.VersionClassic), "Scoring version: 2 (classic) or 3 (flash)")

	courseCmd.AddCommand(courseCreateCmd)
}
