package commands

import (
	"fmt"

	"penya-tracker/internal/domain"
	"penya-tracker/internal/service"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	extractRounds    string
	extractForce     bool
	extractSkipUnify bool
)

func init() {
	extractCmd.Flags().StringVar(&extractRounds, "rounds", "", "rounds to process, e.g. 3,5-7 (default: all rounds of the season)")
	extractCmd.Flags().BoolVar(&extractForce, "force", false, "re-extract sheets already marked extracted")
	extractCmd.Flags().BoolVar(&extractSkipUnify, "skip-unify", false, "do not rebuild the unified tables")
	rootCmd.AddCommand(extractCmd)
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Scans round indexes and extracts every pending match sheet.",
	RunE: func(cmd *cobra.Command, args []string) error {
		rounds, err := parseRounds(extractRounds)
		if err != nil {
			return err
		}

		var extraction *service.ExtractionService
		return withApp(cmd.Context(), true, func() error {
			run, err := extraction.Extract(cmd.Context(), service.ExtractOptions{
				Season:    seasonName,
				Rounds:    rounds,
				Force:     extractForce,
				SkipUnify: extractSkipUnify,
			})
			if run != nil {
				printRun(run)
			}
			return err
		}, &extraction)
	},
}

func printRun(run *domain.Run) {
	t := newTable()
	t.SetTitle(fmt.Sprintf("%s (%s) run %s: %s", run.SeasonName, run.SeasonKey, run.ID, run.State))
	t.AppendHeader(table.Row{"Round", "Attempted", "Succeeded", "Retried", "Failed", "Skipped", "Index error"})

	var totals domain.RoundSummary
	var failures []domain.SheetFailure
	for _, r := range run.Rounds {
		t.AppendRow(table.Row{r.Round, r.Attempted, r.Succeeded, r.Retried, r.Failed, r.Skipped, r.IndexError})
		totals.Attempted += r.Attempted
		totals.Succeeded += r.Succeeded
		totals.Retried += r.Retried
		totals.Failed += r.Failed
		totals.Skipped += r.Skipped
		failures = append(failures, r.Failures...)
	}
	t.AppendFooter(table.Row{"Total", totals.Attempted, totals.Succeeded, totals.Retried, totals.Failed, totals.Skipped, ""})
	t.Render()

	if len(failures) == 0 {
		return
	}
	f := newTable()
	f.SetTitle("Failed sheets")
	f.AppendHeader(table.Row{"Round", "Sheet", "Kind", "Attempts", "Error"})
	for _, fail := range failures {
		f.AppendRow(table.Row{fail.Round, fail.Sheet, fail.Kind, fail.Attempts, fail.Error})
	}
	f.Render()
}
