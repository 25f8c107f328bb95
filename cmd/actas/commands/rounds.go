package commands

import (
	"fmt"

	"penya-tracker/internal/config"
	"penya-tracker/internal/service"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(roundsCmd)
}

var roundsCmd = &cobra.Command{
	Use:   "rounds",
	Short: "Prints how many sheets of each indexed round are extracted.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			cfg     *config.Config
			leagues *service.LeagueService
		)
		return withApp(cmd.Context(), false, func() error {
			rounds, season, err := leagues.Rounds(seasonName)
			if err != nil {
				return err
			}

			t := newTable()
			t.SetTitle(fmt.Sprintf("%s: complete at %d sheets", season.Name, cfg.RoundCompleteness))
			t.AppendHeader(table.Row{"Round", "Matches", "Extracted", "Complete"})
			for _, r := range rounds {
				complete := ""
				if r.Complete {
					complete = "yes"
				}
				t.AppendRow(table.Row{r.Round, r.Matches, r.Extracted, complete})
			}
			t.Render()
			return nil
		}, &cfg, &leagues)
	},
}
