package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Lists the configured sources with their scale and ledger file.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		t := newTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Source", "Scale", "Targets", "Ledger"})
		for _, s := range env.catalog.Sources {
			n := 0
			for _, u := range s.Targets {
				if u != "" {
					n++
				}
			}
			t.AppendRow(table.Row{s.Name, s.Scale.String(), n, ledgerPath(s.Name)})
		}
		t.Render()
	},
}
