package commands

import (
	"context"
	"fmt"

	"github.com/benvon/life-tracker/internal/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newMigrateCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create any missing tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			return rt.withServices(cmd, func(ctx context.Context, svc *app.Services, log *zap.Logger) error {
				// Opening the database already applied the schema
				fmt.Fprintf(cmd.OutOrStdout(), "Schema applied (%s).\n", svc.DB.Driver())
				return nil
			})
		},
	}
}
