package cmd

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var scoreCmd = &cobra.Command{
	Use:   "score <course-id>",
	Short: "Score a certification course and persist its result",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		courseID, err := parseID(args[0])
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
		svc, err := a.scoringService(g)
		if err != nil {
			return err
		}
		if _, err := svc.ScoreCourse(ctx, courseID); err != nil {
			return err
		}
		return printResult(cmd, a, courseID)
	},
}

var rescoreCmd = &cobra.Command{
	Use:   "rescore [course-id...]",
	Short: "Rescore certification courses in parallel (all courses when none given)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		var ids []int64
		if len(args) == 0 {
			if ids, err = a.store.Courses().IDs(ctx); err != nil {
				return err
			}
		} else {
			for _, arg := range args {
				id, err := parseID(arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
		}

		g, err := a.graph(ctx)
		if err != nil {
			return err
		}
		svc, err := a.scoringService(g)
		if err != nil {
			return err
		}

		keepGoing, _ := cmd.Flags().GetBool("keep-going")
		var scored, failed atomic.Int64

		eg, egCtx := errgroup.WithContext(ctx)
		eg.SetLimit(a.cfg.RescoreConcurrency)
		for _, id := range ids {
			id := id // per-iteration copy (go directive is 1.21)
			eg.Go(func() error {
				if _, err := svc.ScoreCourse(egCtx, id); err != nil {
					failed.Add(1)
					if keepGoing {
						a.log.Warn("rescore failed", "course_id", id, "error", err.Error())
						return nil
					}
					return fmt.Errorf("rescore course %d: %w", id, err)
				}
				scored.Add(1)
				return nil
			})
		}
		err = eg.Wait()

		fmt.Fprintf(cmd.OutOrStdout(), "Rescored %d of %d courses (%d failed)\n", scored.Load(), len(ids), failed.Load())
		return err
	},
}

var resultCmd = &cobra.Command{
	Use:   "result <course-id>",
	Short: "Show the latest result and competence marks of a course",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		courseID, err := parseID(args[0])
		if err != nil {
			return err
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		return printResult(cmd, a, courseID)
	},
}

func printResult(cmd *cobra.Command, a *app, courseID int64) error {
	ctx := cmd.Context()
	res, err := a.store.AssessmentResults().LatestByCourse(ctx, courseID)
	if err != nil {
		return err
	}
	marks, err := a.store.CompetenceMarks().FindByResult(ctx, res.ID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Course %d  result %d  %s\n", courseID, res.ID, res.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(out, "  status               %s\n", res.Status)
	fmt.Fprintf(out, "  pix score            %d\n", res.PixScore)
	fmt.Fprintf(out, "  reproducibility      %.2f%%\n", res.ReproducibilityRate)
	if res.CommentForJury != "" {
		fmt.Fprintf(out, "  comment for jury     %s\n", res.CommentForJury)
	}
	if len(marks) == 0 {
		return nil
	}

	fmt.Fprintf(out, "\n%-8s  %-6s  %-14s  %5s  %5s\n", "Code", "Area", "Competence", "Level", "Score")
	fmt.Fprintln(out, strings.Repeat("\u2500", 46))
	for _, m := range marks {
		fmt.Fprintf(out, "%-8s  %-6s  %-14s  %5d  %5d\n", m.CompetenceCode, m.AreaCode, m.CompetenceID, m.Level, m.Score)
	}
	return nil
}

func init() {
	rescoreCmd.Flags().Bool("keep-going", false, "Log failed courses and continue instead of stopping")
}
