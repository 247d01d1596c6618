// Package commands implements lifectl, the operator CLI for the tracker database.
package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/life-tracker/internal/app"
	"github.com/benvon/life-tracker/internal/config"
	"github.com/benvon/life-tracker/internal/logger"
	"github.com/benvon/life-tracker/internal/models"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// runtime holds what every command needs before it can touch the database
type runtime struct {
	loadConfig func() (*config.Config, error)
	now        func() time.Time
	location   *time.Location
	debug      bool
	noColor    bool
}

// NewRootCmd creates the lifectl command tree reading configuration from the environment
func NewRootCmd() *cobra.Command {
	return newRootCmd(&runtime{loadConfig: config.Load, now: time.Now, location: time.Local})
}

func newRootCmd(rt *runtime) *cobra.Command {
	root := &cobra.Command{
		Use:           "lifectl",
		Short:         "Operator tool for the life tracker",
		Long:          "Apply the schema, compile days, recompute goal progress and manage the ingestion rate limit.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if rt.noColor {
				color.NoColor = true
			}
		},
	}
	root.PersistentFlags().BoolVar(&rt.debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&rt.noColor, "no-color", false, "Disable coloured output")

	root.AddCommand(newMigrateCmd(rt))
	root.AddCommand(newCompileCmd(rt))
	root.AddCommand(newRecomputeCmd(rt))
	root.AddCommand(newProgressCmd(rt))
	root.AddCommand(newHistoryCmd(rt))
	root.AddCommand(newMilestoneCmd(rt))
	root.AddCommand(newRatelimitCmd(rt))
	return root
}

// withServices opens the configured database, builds the services and runs fn against them
func (rt *runtime) withServices(cmd *cobra.Command, fn func(ctx context.Context, svc *app.Services, log *zap.Logger) error) error {
	cfg, err := rt.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log, err := logger.NewCLILogger(rt.debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync(log) }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	db, err := app.OpenDatabase(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn("failed_to_close_database", zap.Error(err))
		}
	}()

	return fn(ctx, app.NewServices(db, cfg, log), log)
}

// date parses a --date style flag, defaulting to today
func (rt *runtime) date(value string) (time.Time, error) {
	if value == "" {
		return models.TruncateDay(rt.now().In(rt.location)), nil
	}
	return models.ParseDate(value, rt.location)
}

// optionalDate parses a flag that may be left empty
func (rt *runtime) optionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	d, err := models.ParseDate(value, rt.location)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func parseGoalID(value string) (uuid.UUID, error) {
	return parseUUIDFlag("goal", value)
}

func parseUUIDFlag(name, value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.Nil, fmt.Errorf("--%s is required", name)
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("--%s must be a UUID: %w", name, err)
	}
	return id, nil
}
