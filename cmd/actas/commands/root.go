package commands

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"penya-tracker/internal/constants"
	fxmodules "penya-tracker/internal/fx"
	"penya-tracker/internal/logger"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var (
	seasonName string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "actas",
	Short:         "actas extracts federation match sheets and reports league reference values.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&seasonName, "season", "", "season name from the registry (default: the active season)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withApp builds the dependency graph, fills targets, runs fn and stops the graph.
// extract selects the fetch stack as well as the read side.
func withApp(ctx context.Context, extract bool, fn func() error, targets ...any) error {
	opts := []fx.Option{
		fxmodules.Module,
		fx.NopLogger,
		fx.Invoke(closeDatabaseOnStop),
		fx.Populate(targets...),
	}
	if extract {
		opts = append(opts, fxmodules.ExtractModule)
	}
	if verbose {
		opts = append(opts, fx.Decorate(func(zerolog.Logger) zerolog.Logger {
			return logger.SetLevel(zerolog.DebugLevel)
		}))
	}

	app := fx.New(opts...)
	if err := app.Err(); err != nil {
		return err
	}
	if err := app.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.ShutdownTimeout)
		defer cancel()
		_ = app.Stop(stopCtx)
	}()
	return fn()
}

func closeDatabaseOnStop(lc fx.Lifecycle, db *sql.DB) {
	lc.Append(fx.StopHook(db.Close))
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}
