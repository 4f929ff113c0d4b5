package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vantrack/server/internal/fleet"
	"github.com/vantrack/server/internal/model"
)

// VehicleCmd returns the vehicle command group
func VehicleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vehicle",
		Short: "Inspect the vehicle roster",
	}
	cmd.AddCommand(vehicleListCmd(), vehicleSearchCmd(), vehicleSeenCmd())
	return cmd
}

func vehicleListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List vehicles ordered by id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, _ := cmd.Flags().GetString("filter")

			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			vehicles, err := e.services.Roster.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if len(vehicles) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), warn("no vehicles"))
				return nil
			}
			printVehicles(cmd.OutOrStdout(), vehicles)
			return nil
		},
	}
	cmd.Flags().StringP("filter", "f", "", "case-insensitive match on plate, driver or responsible")
	return cmd
}

func vehicleSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search [plate]",
		Short: "Look a vehicle up by plate the way operators do",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			res, err := e.services.Resolver.Search(cmd.Context(), args[0])
			var nf *fleet.PlateNotFoundError
			if errors.As(err, &nf) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", warn("!"), nf.Error())
				return nil
			}
			if err != nil {
				return err
			}
			if res.Flexible {
				fmt.Fprintln(cmd.OutOrStdout(), warn("matched without separators"))
			}
			printVehicles(cmd.OutOrStdout(), []model.Vehicle{res.Vehicle})
			return nil
		},
	}
}

func vehicleSeenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seen [id]",
		Short: "Record a sighting of a vehicle now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid vehicle id %q", args[0])
			}

			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			v, err := e.services.Recorder.MarkSeen(cmd.Context(), id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s seen at %s\n", ok("✓"), v.Plate, v.LastSeen.Format(time.RFC3339))
			if gap, found := fleet.SightingGap(v); found {
				fmt.Fprintf(out, "  since previous: %dh %dm\n", gap.Hours, gap.Minutes)
			}
			return nil
		},
	}
}

func printVehicles(w io.Writer, vehicles []model.Vehicle) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPLATE\tDRIVER\tVEST\tLAST SEEN")
	for _, v := range vehicles {
		last := "-"
		if v.LastSeen != nil {
			last = v.LastSeen.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", v.ID, v.Plate, v.DriverName, v.VestColor, last)
	}
	_ = tw.Flush()
}
