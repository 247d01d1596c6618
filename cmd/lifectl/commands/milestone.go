package commands

import (
	"context"
	"fmt"

	"github.com/benvon/life-tracker/internal/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMilestoneCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "milestone",
		Short: "Work with goal milestones",
	}
	cmd.AddCommand(newMilestoneCheckCmd(rt))
	return cmd
}

func newMilestoneCheckCmd(rt *runtime) *cobra.Command {
	var item, date string
	var undo bool
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Tick a checklist milestone item and recompute its goal",
		Long:  "Tick (or with --undo untick) one item of a checklist milestone. The milestone closes once every item is ticked; the parent goal is then recomputed for --date (default today).",
		RunE: func(cmd *cobra.Command, args []string) error {
			itemID, err := parseUUIDFlag("item", item)
			if err != nil {
				return err
			}
			day, err := rt.date(date)
			if err != nil {
				return err
			}
			return rt.withServices(cmd, func(ctx context.Context, svc *app.Services, log *zap.Logger) error {
				milestone, err := svc.Milestones.SetChecklistItemCompleted(ctx, itemID, !undo)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				state := "open"
				if milestone.IsCompleted {
					state = "completed"
				}
				fmt.Fprintf(out, "Milestone %q is %s.\n", milestone.Title, state)

				result, err := svc.Progress.UpdateGoalProgress(ctx, milestone.GoalID, day)
				if err != nil {
					return err
				}
				if result == nil {
					fmt.Fprintf(out, "Goal %s has nothing left to measure.\n", milestone.GoalID)
					return nil
				}
				fmt.Fprintf(out, "Goal %s: %.1f%% %s\n", milestone.GoalID, result.Percentage, starString(result.Stars))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&item, "item", "", "Checklist item ID (required)")
	cmd.Flags().StringVar(&date, "date", "", "Date to recompute, YYYY-MM-DD (default today)")
	cmd.Flags().BoolVar(&undo, "undo", false, "Untick the item instead")
	return cmd
}
