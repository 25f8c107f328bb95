package commands

import (
	"time"

	"penya-tracker/internal/service"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var runsLimit int

func init() {
	runsCmd.Flags().IntVar(&runsLimit, "limit", 10, "number of runs to list")
	rootCmd.AddCommand(runsCmd)
}

var runsCmd = &cobra.Command{
	Use:   "runs [run-id]",
	Short: "Lists recent extraction runs, or prints the summary of one.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var runs *service.RunService
		return withApp(cmd.Context(), false, func() error {
			if len(args) == 1 {
				run, err := runs.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printRun(run)
				return nil
			}

			recent, err := runs.Recent(cmd.Context(), runsLimit)
			if err != nil {
				return err
			}
			t := newTable()
			t.AppendHeader(table.Row{"ID", "Season", "State", "Started", "Took", "Error"})
			for _, r := range recent {
				took := ""
				if r.FinishedAt != nil {
					took = r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String()
				}
				t.AppendRow(table.Row{r.ID, r.SeasonName, r.State, r.StartedAt.Local().Format(time.DateTime), took, r.Error})
			}
			t.Render()
			return nil
		}, &runs)
	},
}
