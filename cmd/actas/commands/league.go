package commands

import (
	"fmt"

	"penya-tracker/internal/league"
	"penya-tracker/internal/service"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	leagueTeam string
	leagueAll  bool
)

func init() {
	leagueCmd.Flags().StringVar(&leagueTeam, "team", "", "team to report (default: TARGET_CLUB)")
	leagueCmd.Flags().BoolVar(&leagueAll, "all", false, "print the totals of every team instead")
	rootCmd.AddCommand(leagueCmd)
}

var leagueCmd = &cobra.Command{
	Use:   "league",
	Short: "Reports a team's season totals against the mean of the other teams.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var leagues *service.LeagueService
		return withApp(cmd.Context(), false, func() error {
			if leagueAll {
				l, season, err := leagues.League(seasonName)
				if err != nil {
					return err
				}
				printLeague(season.Name, l)
				return nil
			}

			report, err := leagues.Team(seasonName, leagueTeam)
			if err != nil {
				return err
			}
			printReport(report)
			return nil
		}, &leagues)
	},
}

func printLeague(title string, l *league.League) {
	t := newTable()
	t.SetTitle(title)
	t.AppendHeader(table.Row{"Team", "Played", "GF", "GA", "Yellow", "Red", "Opp yellow", "Opp red", "Squad"})
	for _, s := range l.Teams {
		t.AppendRow(table.Row{s.Team, s.MatchesPlayed, s.GoalsFor, s.GoalsAgainst, s.Yellows, s.Reds, s.OppYellows, s.OppReds, s.SquadSize})
	}
	t.Render()
}

func printReport(r league.TeamReport) {
	t := newTable()
	t.SetTitle(r.Stats.Team)
	t.AppendHeader(table.Row{"Metric", "Team", "League mean", "Team / match", "League mean / match"})

	f := func(v float64) string { return fmt.Sprintf("%.2f", v) }
	rows := []struct {
		name                  string
		total                 int
		ref, perMatch, refPer float64
	}{
		{"goals for", r.Stats.GoalsFor, r.Reference.GoalsFor, r.PerMatch.GoalsFor, r.ReferencePerMatch.GoalsFor},
		{"goals against", r.Stats.GoalsAgainst, r.Reference.GoalsAgainst, r.PerMatch.GoalsAgainst, r.ReferencePerMatch.GoalsAgainst},
		{"yellow cards", r.Stats.Yellows, r.Reference.Yellows, r.PerMatch.Yellows, r.ReferencePerMatch.Yellows},
		{"red cards", r.Stats.Reds, r.Reference.Reds, r.PerMatch.Reds, r.ReferencePerMatch.Reds},
		{"opponent yellows", r.Stats.OppYellows, r.Reference.OppYellows, r.PerMatch.OppYellows, r.ReferencePerMatch.OppYellows},
		{"opponent reds", r.Stats.OppReds, r.Reference.OppReds, r.PerMatch.OppReds, r.ReferencePerMatch.OppReds},
		{"squad size", r.Stats.SquadSize, r.Reference.SquadSize, r.PerMatch.SquadSize, r.ReferencePerMatch.SquadSize},
		{"matches played", r.Stats.MatchesPlayed, r.Reference.MatchesPlayed, r.PerMatch.MatchesPlayed, r.ReferencePerMatch.MatchesPlayed},
	}
	for _, row := range rows {
		t.AppendRow(table.Row{row.name, row.total, f(row.ref), f(row.perMatch), f(row.refPer)})
	}
	t.Render()
}
