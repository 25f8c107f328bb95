package commands

import (
	"penya-tracker/internal/config"
	"penya-tracker/internal/service"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(unifyCmd)
}

var unifyCmd = &cobra.Command{
	Use:   "unify",
	Short: "Rebuilds the league-wide tables from the stored per-match tables.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			cfg     *config.Config
			unifier *service.UnifyService
		)
		return withApp(cmd.Context(), false, func() error {
			season, err := cfg.ResolveSeason(seasonName)
			if err != nil {
				return err
			}
			tables, err := unifier.Unify(cmd.Context(), season)
			if err != nil {
				return err
			}

			t := newTable()
			t.SetTitle(season.Name + " unified")
			t.AppendHeader(table.Row{"Table", "Rows"})
			t.AppendRows([]table.Row{
				{"matches", len(tables.Matches)},
				{"rosters", len(tables.Rosters)},
				{"goals", len(tables.Goals)},
				{"substitutions", len(tables.Substitutions)},
				{"cards", len(tables.Cards)},
			})
			t.Render()
			return nil
		}, &cfg, &unifier)
	},
}
