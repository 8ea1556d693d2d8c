package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rogers-f/contract-engine/internal/domain"
)

// BoardCmd generates a fresh contract board.
func BoardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Generate a contract board",
		Long:  "Replace the available contracts of one kind with a fresh board departing from an origin.",
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, _ := cmd.Flags().GetString("kind")
			origin, _ := cmd.Flags().GetString("origin")

			c, err := newClient(cmd)
			if err != nil {
				return err
			}
			board, err := c.Board(cmd.Context(), origin, domain.Kind(kind))
			if err != nil {
				return fmt.Errorf("generate board: %w", err)
			}

			out := cmd.OutOrStdout()
			if board.NoRoute {
				fmt.Fprintf(out, "No lanes leave %s, the %s board is empty\n", board.Origin, board.Kind)
				return nil
			}
			fmt.Fprintf(out, "%s board at %s\n", board.Kind, board.Origin)
			printMissions(out, board.Missions)
			return nil
		},
	}
	cmd.Flags().String("kind", "", "contract kind (trade, escort, taxi, diplomatic, strike)")
	cmd.Flags().String("origin", "", "departure location (default: configured origin)")
	_ = cmd.MarkFlagRequired("kind")
	addClientFlags(cmd)
	return cmd
}

// MissionsCmd lists missions.
func MissionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "missions",
		Short: "List missions",
		RunE: func(cmd *cobra.Command, args []string) error {
			state, _ := cmd.Flags().GetString("state")

			c, err := newClient(cmd)
			if err != nil {
				return err
			}
			missions, err := c.Missions(cmd.Context(), domain.MissionState(state))
			if err != nil {
				return fmt.Errorf("list missions: %w", err)
			}
			printMissions(cmd.OutOrStdout(), missions)
			return nil
		},
	}
	cmd.Flags().String("state", "", "filter by state (available, active, completed)")
	addClientFlags(cmd)
	return cmd
}

// AcceptCmd starts an available mission.
func AcceptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accept [mission-id]",
		Short: "Accept a contract",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ship, _ := cmd.Flags().GetString("ship")

			c, err := newClient(cmd)
			if err != nil {
				return err
			}
			m, err := c.Accept(cmd.Context(), args[0], ship)
			if err != nil {
				return fmt.Errorf("accept mission: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Accepted %s: %s bound for %s\n",
				color.New(color.FgGreen).Sprint("✓"), m.Title, m.AssignedResourceID, m.Destination)
			return nil
		},
	}
	cmd.Flags().String("ship", "", "ship to assign (default: first capable ship)")
	addClientFlags(cmd)
	return cmd
}

// ResolveCmd clears a mission's pending interruption.
func ResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve [mission-id]",
		Short: "Resolve a pending interruption",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(cmd)
			if err != nil {
				return err
			}
			in, err := c.ResolveInterruption(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("resolve interruption: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Resolved: %s (+%ds)\n",
				color.New(color.FgGreen).Sprint("✓"), in.Description, in.PenaltySeconds)
			return nil
		},
	}
	addClientFlags(cmd)
	return cmd
}

// PruneCmd removes a completed mission.
func PruneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune [mission-id]",
		Short: "Remove a completed mission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient(cmd)
			if err != nil {
				return err
			}
			if err := c.Prune(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("prune mission: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %s\n", args[0])
			return nil
		},
	}
	addClientFlags(cmd)
	return cmd
}

func printMissions(out io.Writer, missions []domain.Mission) {
	if len(missions) == 0 {
		fmt.Fprintln(out, "No missions found")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tTITLE\tROUTE\tRISK\tPAYOUT\tDURATION\tSTATE\tPROGRESS")
	for _, m := range missions {
		progress := fmt.Sprintf("%.1f%%", m.ProgressPercent)
		if m.PendingInterruption != nil {
			progress += " " + color.New(color.FgRed).Sprint("!")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s -> %s\t%s\t%s\t%s\t%s\t%s\n",
			m.ID, m.Kind, m.Title, m.Origin, m.Destination, riskColor(m.RiskTier),
			humanize.Comma(m.Payout), time.Duration(m.DurationSeconds)*time.Second,
			stateColor(m.State), progress)
	}
	w.Flush()
}
