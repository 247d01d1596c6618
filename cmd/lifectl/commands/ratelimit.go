package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/benvon/life-tracker/internal/app"
	"github.com/benvon/life-tracker/internal/database"
	"github.com/benvon/life-tracker/internal/models"
	"github.com/spf13/cobra"
	"github.com/ulule/limiter/v3"
	"go.uber.org/zap"
)

func newRatelimitCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ratelimit",
		Short: "Manage rate limit configuration",
		Long:  "List or update the ingestion rate limit (e.g. 10-M, 100-H). The server reloads it every minute.",
	}
	cmd.AddCommand(newRatelimitListCmd(rt))
	cmd.AddCommand(newRatelimitSetCmd(rt))
	return cmd
}

func newRatelimitListCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored rate limits",
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.withServices(cmd, func(ctx context.Context, svc *app.Services, log *zap.Logger) error {
				out := cmd.OutOrStdout()
				configs, err := svc.RateLimits.List(ctx)
				if err != nil {
					return err
				}
				if len(configs) == 0 {
					fmt.Fprintln(out, "No rate limit configuration in database. Use 'ratelimit set' to add one.")
					return nil
				}
				tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "KEY\tRATE\tUPDATED")
				for _, c := range configs {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", c.ConfigKey, c.Rate, c.UpdatedAt.Format("2006-01-02 15:04:05"))
				}
				return tw.Flush()
			})
		},
	}
}

func newRatelimitSetCmd(rt *runtime) *cobra.Command {
	var rate, key string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set a rate limit",
		RunE: func(cmd *cobra.Command, args []string) error {
			rate = strings.TrimSpace(rate)
			if rate == "" {
				return fmt.Errorf("--rate is required (e.g. 10-M, 100-H)")
			}
			if _, err := limiter.NewRateFromFormatted(rate); err != nil {
				return fmt.Errorf("invalid --rate %q: %w", rate, err)
			}
			return rt.withServices(cmd, func(ctx context.Context, svc *app.Services, log *zap.Logger) error {
				if err := svc.RateLimits.Set(ctx, &models.RatelimitConfig{ConfigKey: key, Rate: rate}); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Rate limit %q set to %s.\n", key, rate)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&rate, "rate", "", "Rate (e.g. 10-M, 100-H) (required)")
	cmd.Flags().StringVar(&key, "key", database.IngestRatelimitKey, "Config key")
	return cmd
}
