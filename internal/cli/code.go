package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// CodeCmd returns the daily code command group
func CodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "code",
		Short: "Manage the daily access code",
	}
	cmd.AddCommand(codeShowCmd(), codeRegenerateCmd())
	return cmd
}

func codeShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print today's daily code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			ac, found, err := e.services.Regenerator.Current(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !found {
				fmt.Fprintf(out, "%s no daily code generated for %s\n", warn("!"), ac.Date)
				return nil
			}
			fmt.Fprintf(out, "%s  %s\n", ac.Date, bold(ac.Code))
			return nil
		},
	}
}

func codeRegenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "regenerate",
		Short: "Replace today's daily code with a fresh one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			ac, err := e.services.Regenerator.Regenerate(cmd.Context())
			if err != nil {
				return fmt.Errorf("regenerate daily code: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s daily code for %s: %s\n", ok("✓"), ac.Date, bold(ac.Code))
			return nil
		},
	}
}
