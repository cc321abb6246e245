package main

import (
	"fmt"
	"text/tabwriter"

	"leaddesk_backend/internal/access"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func locksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "locks",
		Short: "Lead working locks",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "sweep",
		Short: "Release every lock older than LEAD_LOCK_TIMEOUT",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, e *env, _ []string) error {
			svc, _ := e.leads()
			released, err := svc.SweepExpiredLocks(cmd.Context())
			if err != nil {
				return err
			}
			cmd.Println(color.GreenString("✓ released %d expired lock(s)", released))
			return nil
		}),
	})
	return cmd
}

func leadsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leads",
		Short: "Lead pool maintenance",
	}
	cmd.AddCommand(leadsStuckCmd())
	cmd.AddCommand(leadsRecoverCmd())
	return cmd
}

func leadsStuckCmd() *cobra.Command {
	var hours, limit int
	cmd := &cobra.Command{
		Use:   "stuck",
		Short: "List pending leads assigned longer than --hours ago",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, e *env, _ []string) error {
			svc, _ := e.leads()
			stuck, _, err := svc.PreviewStuck(cmd.Context(), hours, limit)
			if err != nil {
				return err
			}
			if len(stuck) == 0 {
				cmd.Println(color.GreenString("no stuck leads"))
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCOMPANY\tASSIGNED TO\tASSIGNED AT")
			for _, l := range stuck {
				assigned := "-"
				if l.AssignedAt != nil {
					assigned = l.AssignedAt.In(e.cfg.GetTimezone()).Format("2006-01-02 15:04")
				}
				owner := "-"
				if l.AssignedTo != nil {
					owner = l.AssignedTo.String()
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", l.ID, l.CompanyName, owner, assigned)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			cmd.Println(color.YellowString("%d stuck lead(s)", len(stuck)))
			return nil
		}),
	}
	cmd.Flags().IntVar(&hours, "hours", 0, "age threshold in hours (default STUCK_LEAD_DEFAULT_HOURS)")
	cmd.Flags().IntVar(&limit, "limit", 100, "maximum rows to list")
	return cmd
}

func leadsRecoverCmd() *cobra.Command {
	var (
		hours int
		to    string
		as    string
	)
	cmd := &cobra.Command{
		Use:   "recover",
		Short: "Reassign stuck leads to --to, or return them to the pool",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, e *env, _ []string) error {
			actor, err := e.actor(cmd.Context(), as, access.ActionLeadRecoverStuck)
			if err != nil {
				return err
			}

			var target *uuid.UUID
			if to != "" {
				id, err := uuid.Parse(to)
				if err != nil {
					return fmt.Errorf("--to must be an agent id: %w", err)
				}
				target = &id
			}

			svc, _ := e.leads()
			moved, err := svc.RecoverStuck(cmd.Context(), actor, hours, target)
			if err != nil {
				return err
			}
			dest := "the pool"
			if target != nil {
				dest = target.String()
			}
			cmd.Println(color.GreenString("✓ moved %d lead(s) to %s", len(moved), dest))
			return nil
		}),
	}
	cmd.Flags().IntVar(&hours, "hours", 0, "age threshold in hours (default STUCK_LEAD_DEFAULT_HOURS)")
	cmd.Flags().StringVar(&to, "to", "", "agent id to receive the leads")
	cmd.Flags().StringVar(&as, "as", "", "email of the founder or admin performing the recovery")
	return cmd
}
