package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"hotel_reputation/internal/adapters/observability"
	"hotel_reputation/internal/app"
	"hotel_reputation/internal/domain"
	"hotel_reputation/internal/shared"
)

// env holds what every subcommand needs, filled before it runs.
var env struct {
	cfg     shared.Config
	catalog domain.Catalog
	queries *app.QueryService
	edits   *app.EditService
}

// errRunsFailed makes validate exit non-zero without printing a second message.
var errRunsFailed = errors.New("one or more source runs failed")

var rootCmd = &cobra.Command{
	Use:           "ledgerctl",
	Short:         "ledgerctl inspects and corrects the per-source score ledgers.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		env.cfg = shared.Load()
		log.Logger = observability.NewLoggerTo(cmd.ErrOrStderr(), env.cfg.AppEnv, env.cfg.LogLevel)

		cat, err := shared.LoadCatalog(env.cfg.SourcesFile)
		if err != nil {
			return err
		}
		env.catalog = cat
		env.queries = app.NewQueryService(cat, env.cfg.DataDir, nil, nil, 0)
		env.edits = app.NewEditService(cat, env.cfg.DataDir, env.queries)
		return nil
	},
}

func ExecuteContext(ctx context.Context) {
	if err := execute(ctx, os.Stdin, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		if !errors.Is(err, errRunsFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func execute(ctx context.Context, in io.Reader, out, errOut io.Writer, args []string) error {
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}
