package commands

import (
	"bufio"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"hotel_reputation/internal/app"
	"hotel_reputation/internal/domain"
	"hotel_reputation/internal/ledger"
)

func init() {
	rootCmd.AddCommand(editCmd)
}

var editCmd = &cobra.Command{
	Use:   "edit <source> <hotel> <date> [value]",
	Short: "Overwrites one ledger cell, prompting for the value when it is omitted.",
	Args:  cobra.RangeArgs(3, 4),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		source, hotel := args[0], domain.NormalizeHotelKey(args[1])
		date, err := domain.ParseDateColumn(args[2])
		if err != nil {
			return err
		}

		known, err := env.edits.KnownHotels(source)
		if err != nil {
			return err
		}
		if !slices.Contains(known, hotel) {
			sug, _ := app.SuggestHotel(string(hotel), known)
			return &app.UnknownHotelError{Hotel: hotel, Suggestion: sug}
		}

		cell, err := env.queries.GetCell(ctx, source, hotel, date)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if cell.Missing {
			fmt.Fprintf(out, "%s / %s / %s: missing\n", cell.Source, hotel, date)
		} else {
			fmt.Fprintf(out, "%s / %s / %s: current %s\n", cell.Source, hotel, date, ledger.FormatScore(*cell.Value))
		}

		raw := ""
		if len(args) == 4 {
			raw = args[3]
		} else {
			fmt.Fprint(out, "new value: ")
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("no value entered")
			}
			raw = line
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			fmt.Fprintln(out, "unchanged")
			return nil
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
		if err != nil {
			return fmt.Errorf("value %q is not a number", raw)
		}

		res, err := env.edits.Override(ctx, source, hotel, date, v)
		if err != nil {
			return err
		}
		avg := "none"
		if res.Average != nil {
			avg = ledger.FormatScore(*res.Average)
		}
		fmt.Fprintf(out, "saved %s (average %s)\n", ledger.FormatScore(res.Value), avg)
		return nil
	},
}

