package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vantrack/server/internal/app"
)

// MigrateCmd returns the migrate command
func MigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations for the configured store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			if err := app.MigrateOnly(cmd.Context(), cfg, log); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s migrations applied (%s)\n", ok("✓"), cfg.StoreDriver)
			return nil
		},
	}
}
