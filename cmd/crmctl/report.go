package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"leaddesk_backend/internal/analytics"
	"leaddesk_backend/internal/exports"
	"leaddesk_backend/internal/leads"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func leaderboardCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the completion leaderboard",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, e *env, _ []string) error {
			rules, err := analytics.LoadRules(e.cfg.GetInsightRulesPath())
			if err != nil {
				return err
			}
			svc := analytics.NewService(analytics.NewRepository(e.pool), analytics.NopCache{}, rules, e.cfg, e.log)
			board, err := svc.Leaderboard(cmd.Context(), days)
			if err != nil {
				return err
			}

			cmd.Println(color.CyanString("Leaderboard since %s", board.Since.In(e.cfg.GetTimezone()).Format("2006-01-02")))
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "RANK\tAGENT\tCOMPLETED")
			for _, entry := range board.Entries {
				fmt.Fprintf(w, "%d\t%s\t%d\n", entry.Rank, entry.AgentName, entry.Count)
			}
			return w.Flush()
		}),
	}
	cmd.Flags().IntVar(&days, "days", 1, "window length in days, today included")
	return cmd
}

func exportCmd() *cobra.Command {
	var batch, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write leads as a spreadsheet CSV",
		Args:  cobra.NoArgs,
		RunE: withEnv(func(cmd *cobra.Command, e *env, _ []string) error {
			var f leads.ExportFilter
			if batch != "" {
				id, err := uuid.Parse(batch)
				if err != nil {
					return fmt.Errorf("--batch must be a batch id: %w", err)
				}
				f.BatchID = &id
			}

			w := cmd.OutOrStdout()
			if out != "" && out != "-" {
				file, err := os.Create(out)
				if err != nil {
					return err
				}
				defer file.Close()
				w = file
			}

			_, repo := e.leads()
			rows, err := exports.Export(cmd.Context(), leads.NewExporter(repo), f, w, e.cfg.GetTimezone())
			if err != nil {
				return err
			}
			if out != "" && out != "-" {
				cmd.PrintErrln(color.GreenString("✓ wrote %d lead(s) to %s", rows, out))
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&batch, "batch", "", "only leads from this upload batch")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}
