package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/benvon/life-tracker/internal/app"
	"github.com/benvon/life-tracker/internal/apperr"
	"github.com/benvon/life-tracker/internal/models"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newCompileCmd(rt *runtime) *cobra.Command {
	var (
		date      string
		recompute bool
	)
	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile a day's pending entries into the permanent logs",
		Long:  "Compile every uncompiled pending entry of --date (default today), then recompute goal progress for that date.",
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := rt.date(date)
			if err != nil {
				return err
			}
			return rt.withServices(cmd, func(ctx context.Context, svc *app.Services, log *zap.Logger) error {
				out := cmd.OutOrStdout()
				result, err := svc.Compiler.CompileDay(ctx, day)
				if errors.Is(err, apperr.ErrPrecondition) {
					fmt.Fprintf(out, "%s for %s.\n", apperr.Message(err), models.FormatDate(day))
					return nil
				}
				if err != nil {
					return err
				}

				fmt.Fprintf(out, "Compiled %d entries for %s (%d rows written).\n",
					result.TotalLogs, models.FormatDate(day), result.RowsWritten)
				for _, category := range models.Categories {
					if n := result.Counts[category]; n > 0 {
						fmt.Fprintf(out, "  %-8s %d\n", category, n)
					}
				}

				if !recompute {
					return nil
				}
				results, err := svc.Progress.UpdateAllGoalsProgress(ctx, day)
				if err != nil {
					log.Warn("post_compile_recompute_failed", zap.Error(err))
					return fmt.Errorf("compiled, but progress recompute failed: %w", err)
				}
				printResults(out, results)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Date to compile, YYYY-MM-DD (default today)")
	cmd.Flags().BoolVar(&recompute, "recompute", true, "Recompute goal progress after compiling")
	return cmd
}
