package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"hotel_reputation/internal/app"
	"hotel_reputation/internal/ledger"
)

func init() {
	rootCmd.AddCommand(showCmd)
}

func ledgerPath(source string) string {
	src, _ := env.catalog.Source(source)
	return app.LedgerPath(env.cfg.DataDir, src)
}

var showCmd = &cobra.Command{
	Use:   "show <source>",
	Short: "Prints a source ledger as a table.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := env.queries.GetLedger(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		t := newTable(cmd.OutOrStdout())
		header := table.Row{"Hotel"}
		for _, d := range v.Dates {
			header = append(header, string(d))
		}
		header = append(header, "Average Score")
		t.AppendHeader(header)

		for _, r := range v.Rows {
			row := table.Row{string(r.Hotel)}
			for _, d := range v.Dates {
				if s, ok := r.Scores[d]; ok {
					row = append(row, ledger.FormatScore(s))
				} else {
					row = append(row, "")
				}
			}
			if r.Average != nil {
				row = append(row, ledger.FormatScore(*r.Average))
			} else {
				row = append(row, "")
			}
			t.AppendRow(row)
		}
		t.Render()
		return nil
	},
}
