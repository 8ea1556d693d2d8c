package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// FleetCmd lists the ships.
func FleetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fleet",
		Short: "List ships",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(cmd)
			if err != nil {
				return err
			}
			ships, err := c.Fleet(cmd.Context())
			if err != nil {
				return fmt.Errorf("list fleet: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(ships) == 0 {
				fmt.Fprintln(out, "No ships found")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCAPABILITY\tHEALTH\tSTATUS")
			for _, s := range ships {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d/%d\t%s\n",
					s.ResourceID, s.Name, s.Capability, s.CurrentHealth, s.MaxHealth, statusColor(s.Status))
			}
			return w.Flush()
		},
	}
	addClientFlags(cmd)
	return cmd
}

// RepairCmd returns a damaged ship to service.
func RepairCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repair [ship-id]",
		Short: "Repair a ship",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(cmd)
			if err != nil {
				return err
			}
			s, err := c.Repair(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("repair ship: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s repaired to %d/%d\n",
				color.New(color.FgGreen).Sprint("✓"), s.Name, s.CurrentHealth, s.MaxHealth)
			return nil
		},
	}
	addClientFlags(cmd)
	return cmd
}

// PlayerCmd shows the player's balances.
func PlayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Show credits and reputation",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(cmd)
			if err != nil {
				return err
			}
			p, err := c.Player(cmd.Context())
			if err != nil {
				return fmt.Errorf("get player: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-12s %s\n", "PLAYER", p.PlayerID)
			fmt.Fprintf(out, "%-12s %s\n", "CREDITS", humanize.Comma(p.Credits))
			fmt.Fprintf(out, "%-12s %d\n", "REPUTATION", p.Reputation)
			fmt.Fprintf(out, "%-12s %d\n", "COMPLETED", p.Completed)
			return nil
		},
	}
	addClientFlags(cmd)
	return cmd
}

// LocationsCmd prints the lane graph.
func LocationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locations",
		Short: "List locations and their lanes",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(cmd)
			if err != nil {
				return err
			}
			locs, err := c.Locations(cmd.Context())
			if err != nil {
				return fmt.Errorf("list locations: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(locs) == 0 {
				fmt.Fprintln(out, "No locations found")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tLANES")
			for _, l := range locs {
				lanes := strings.Join(l.Neighbors, ", ")
				if lanes == "" {
					lanes = color.New(color.Faint).Sprint("none")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", l.ID, l.Name, lanes)
			}
			return w.Flush()
		},
	}
	addClientFlags(cmd)
	return cmd
}
