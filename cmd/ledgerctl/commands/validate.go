package commands

import (
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"hotel_reputation/internal/domain"
	"hotel_reputation/internal/ledger"
	"hotel_reputation/internal/shared"
)

var validateDate string

func init() {
	validateCmd.Flags().StringVar(&validateDate, "date", "", "Run date to check (YYYY-MM-DD, default today).")
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate [--date YYYY-MM-DD] [sources...]",
	Short: "Checks that each source ledger has a column for the run date and reports how many hotels were scored.",
	RunE: func(cmd *cobra.Command, args []string) error {
		date := domain.DateColumnOf(time.Now())
		if validateDate != "" {
			d, err := domain.ParseDateColumn(validateDate)
			if err != nil {
				return err
			}
			date = d
		}
		sources, err := shared.Select(env.catalog, args)
		if err != nil {
			return err
		}

		t := newTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Source", "Status", "Exists", "Has date", "Scored", "Total"})
		var statuses []domain.RunStatus
		for _, s := range sources {
			st, err := env.queries.RunStatus(cmd.Context(), s.Name, date)
			if err != nil {
				return err
			}
			statuses = append(statuses, st.Status)
			t.AppendRow(table.Row{s.Name, string(st.Status), st.Exists, st.HasDate, st.Scored, st.Total})
		}
		t.SetCaption("run date %s", date)
		t.Render()

		if ledger.ExitCode(statuses) != 0 {
			return errRunsFailed
		}
		return nil
	},
}
