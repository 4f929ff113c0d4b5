// Package cli implements the vantrackctl operator commands.
package cli

import (
	"context"
	"os"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vantrack/server/internal/app"
	"github.com/vantrack/server/internal/config"
	"github.com/vantrack/server/internal/logging"
	"github.com/vantrack/server/internal/notify"
)

var (
	ok      = color.New(color.FgGreen).SprintFunc()
	warn    = color.New(color.FgYellow).SprintFunc()
	bold    = color.New(color.Bold).SprintFunc()
	envFile string
)

// env is what a command needs to talk to the store
type env struct {
	cfg      *config.Config
	log      logging.Logger
	stores   *app.Stores
	services *app.Services
}

func (e *env) Close() {
	_ = e.stores.Close()
}

func loadConfig() (*config.Config, logging.Logger, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, nil, err
		}
	} else {
		_ = godotenv.Load(".env")
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat), nil
}

func openEnv(ctx context.Context) (*env, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}
	stores, err := app.Open(ctx, cfg, true, log)
	if err != nil {
		return nil, err
	}
	return &env{
		cfg:      cfg,
		log:      log,
		stores:   stores,
		services: app.NewServices(cfg, stores, notify.Nop{}, log),
	}, nil
}

// RootCmd builds the vantrackctl command tree
func RootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "vantrackctl",
		Short:         "Operate a vantrack deployment",
		Long:          "vantrackctl applies migrations, manages the daily access code and inspects the vehicle roster using the same configuration as the API server.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "load environment from this file instead of ./.env")

	root.AddCommand(MigrateCmd())
	root.AddCommand(CodeCmd())
	root.AddCommand(VehicleCmd())
	return root
}
