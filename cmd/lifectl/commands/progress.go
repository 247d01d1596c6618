package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/benvon/life-tracker/internal/app"
	"github.com/benvon/life-tracker/internal/models"
	"github.com/benvon/life-tracker/internal/progress"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRecomputeCmd(rt *runtime) *cobra.Command {
	var date, goal string
	cmd := &cobra.Command{
		Use:   "recompute",
		Short: "Recompute and store goal progress",
		Long:  "Recompute one goal (--goal) or every top-level active goal for --date (default today) and store the result.",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := rt.date(date)
			if err != nil {
				return err
			}
			return rt.withServices(cmd, func(ctx context.Context, svc *app.Services, log *zap.Logger) error {
				out := cmd.OutOrStdout()
				if goal == "" {
					results, err := svc.Progress.UpdateAllGoalsProgress(ctx, day)
					if err != nil {
						return err
					}
					printResults(out, results)
					return nil
				}

				goalID, err := parseGoalID(goal)
				if err != nil {
					return err
				}
				result, err := svc.Progress.UpdateGoalProgress(ctx, goalID, day)
				if err != nil {
					return err
				}
				printResults(out, []progress.GoalProgressResult{{GoalID: goalID, Progress: result}})
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Date to recompute, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&goal, "goal", "", "Goal ID (default every top-level active goal)")
	return cmd
}

func newProgressCmd(rt *runtime) *cobra.Command {
	var date, goal string
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Show a goal's computed progress without storing it",
		RunE: func(cmd *cobra.Command, args []string) error {
			goalID, err := parseGoalID(goal)
			if err != nil {
				return err
			}
			day, err := rt.date(date)
			if err != nil {
				return err
			}
			return rt.withServices(cmd, func(ctx context.Context, svc *app.Services, log *zap.Logger) error {
				result, err := svc.Engine.GoalProgress(ctx, goalID, day)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if result == nil {
					fmt.Fprintf(out, "Goal %s has nothing to measure on %s.\n", goalID, models.FormatDate(day))
					return nil
				}
				fmt.Fprintf(out, "Goal:          %s\n", goalID)
				fmt.Fprintf(out, "Date:          %s\n", models.FormatDate(day))
				fmt.Fprintf(out, "Progress:      %.1f%% %s\n", result.Percentage, starString(result.Stars))
				if result.ContributionsCount > 0 || result.MilestonesCount > 0 {
					fmt.Fprintf(out, "Contributions: %d\n", result.ContributionsCount)
					fmt.Fprintf(out, "Milestones:    %d\n", result.MilestonesCount)
					fmt.Fprintf(out, "Total weight:  %.1f\n", result.TotalWeight)
				}
				if d := result.Daily; d != nil && d.AchievedValue != nil && d.TargetValue != nil {
					fmt.Fprintf(out, "Achieved:      %g / %g\n", *d.AchievedValue, *d.TargetValue)
				}
				if d := result.Daily; d != nil && d.TotalItems > 0 {
					fmt.Fprintf(out, "Checklist:     %d / %d\n", d.CompletedItems, d.TotalItems)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Date, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&goal, "goal", "", "Goal ID (required)")
	return cmd
}

func newHistoryCmd(rt *runtime) *cobra.Command {
	var goal, start, end string
	var summary bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List a goal's stored daily progress",
		RunE: func(cmd *cobra.Command, args []string) error {
			goalID, err := parseGoalID(goal)
			if err != nil {
				return err
			}
			from, err := rt.optionalDate(start)
			if err != nil {
				return err
			}
			to, err := rt.optionalDate(end)
			if err != nil {
				return err
			}
			return rt.withServices(cmd, func(ctx context.Context, svc *app.Services, log *zap.Logger) error {
				out := cmd.OutOrStdout()
				rows, err := svc.Progress.History(ctx, goalID, from, to)
				if err != nil {
					return err
				}
				if len(rows) == 0 {
					fmt.Fprintln(out, "No progress recorded.")
				} else {
					tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "DATE\tPERCENT\tSTARS\tACHIEVED\tTARGET")
					for _, h := range rows {
						fmt.Fprintf(tw, "%s\t%.1f\t%s\t%s\t%s\n",
							models.FormatDate(h.Date), h.Percentage, starString(h.Stars),
							optionalFloat(h.AchievedValue), optionalFloat(h.TargetValue))
					}
					if err := tw.Flush(); err != nil {
						return err
					}
				}

				if !summary {
					return nil
				}
				last, err := rt.date("")
				if err != nil {
					return err
				}
				if to != nil {
					last = *to
				}
				first := last.AddDate(0, 0, -6)
				if from != nil {
					first = *from
				}
				week, err := svc.Progress.WeeklyProgress(ctx, goalID, first, last)
				if err != nil {
					return err
				}
				if week == nil {
					fmt.Fprintf(out, "No days tracked between %s and %s.\n", models.FormatDate(first), models.FormatDate(last))
					return nil
				}
				fmt.Fprintf(out, "%s to %s: %d days tracked, average %.1f%% %s\n",
					models.FormatDate(first), models.FormatDate(last), week.DaysTracked, week.AvgPercentage, starString(week.Stars))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&goal, "goal", "", "Goal ID (required)")
	cmd.Flags().StringVar(&start, "start", "", "First date, YYYY-MM-DD")
	cmd.Flags().StringVar(&end, "end", "", "Last date, YYYY-MM-DD")
	cmd.Flags().BoolVar(&summary, "summary", false, "Also summarise the range (default the last seven days)")
	return cmd
}

func printResults(out io.Writer, results []progress.GoalProgressResult) {
	if len(results) == 0 {
		fmt.Fprintln(out, "No active goals.")
		return
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "GOAL\tPERCENT\tSTARS\tERROR")
	for _, r := range results {
		switch {
		case r.Error != "":
			fmt.Fprintf(tw, "%s\t-\t-\t%s\n", r.GoalID, color.New(color.FgRed).Sprint(r.Error))
		case r.Progress == nil:
			fmt.Fprintf(tw, "%s\t-\t-\tnothing to measure\n", r.GoalID)
		default:
			fmt.Fprintf(tw, "%s\t%.1f\t%s\t\n", r.GoalID, r.Progress.Percentage, starString(r.Progress.Stars))
		}
	}
	_ = tw.Flush()
}

var starColors = map[int]color.Attribute{
	1: color.FgRed,
	2: color.FgYellow,
	3: color.FgGreen,
}

// starString renders a rating as asterisks, coloured when the output is a terminal
func starString(stars int) string {
	if stars <= 0 {
		return "-"
	}
	return color.New(starColors[min(stars, 3)]).Sprint(strings.Repeat("*", stars))
}

func optionalFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *v)
}
