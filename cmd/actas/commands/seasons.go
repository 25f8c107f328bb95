package commands

import (
	"penya-tracker/internal/config"
	"penya-tracker/internal/service"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(seasonsCmd)
}

var seasonsCmd = &cobra.Command{
	Use:   "seasons",
	Short: "Prints the season registry.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var leagues *service.LeagueService
		return withApp(cmd.Context(), false, func() error {
			t := newTable()
			t.AppendHeader(table.Row{"Name", "Key", "Competition", "Group", "Season", "Rounds", "Active", "Valid"})
			for _, s := range leagues.Seasons() {
				active, valid := "", "yes"
				if s.Active {
					active = "*"
				}
				if err := config.ValidateSeason(s); err != nil {
					valid = err.Error()
				}
				t.AppendRow(table.Row{s.Name, s.Key(), s.Competition, s.Group, s.Season, s.Rounds, active, valid})
			}
			t.Render()
			return nil
		}, &leagues)
	},
}
