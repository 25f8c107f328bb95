package commands

import (
	"errors"
	"fmt"
	"os"

	"penya-tracker/internal/config"
	"penya-tracker/internal/service"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	matchRound int
	matchTeam  string
)

func init() {
	matchCmd.Flags().IntVar(&matchRound, "round", 0, "round of the match")
	matchCmd.Flags().StringVar(&matchTeam, "team", "", "either side of the match (default: TARGET_CLUB)")
	_ = matchCmd.MarkFlagRequired("round")
	rootCmd.AddCommand(matchCmd)
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Prints the stored rosters and timeline of one extracted match.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			cfg     *config.Config
			matches *service.MatchDetailService
		)
		return withApp(cmd.Context(), false, func() error {
			team := matchTeam
			if team == "" {
				team = cfg.TargetClub
			}
			detail, err := matches.GetMatch(seasonName, matchRound, team)
			if errors.Is(err, service.ErrMatchNotFound) {
				return fmt.Errorf("%w (is the round extracted?)", err)
			}
			if err != nil {
				return err
			}
			printMatch(detail)
			return nil
		}, &cfg, &matches)
	},
}

func printMatch(d *service.MatchDetail) {
	fmt.Fprintf(os.Stdout, "R%d  %s %d - %d %s  (acta %s)\n",
		d.Match.Round, d.Match.Home, d.Match.HomeGoals, d.Match.AwayGoals, d.Match.Away, d.Match.SheetCode)

	for _, side := range []struct {
		team  string
		lines []service.PlayerLine
	}{{d.Match.Home, d.Home}, {d.Match.Away, d.Away}} {
		t := newTable()
		t.SetTitle(side.team)
		t.AppendHeader(table.Row{"#", "Player", "Status", "Min", "Goals", "Yellow", "Red"})
		for _, p := range side.lines {
			t.AppendRow(table.Row{p.ShirtNumber, p.Player, p.Status, p.MinutesPlayed, p.Goals, p.YellowCards, p.RedCards})
		}
		t.Render()
	}

	t := newTable()
	t.SetTitle("Timeline")
	t.AppendHeader(table.Row{"Min", "Event", "Team", "Player", "Out", "Detail"})
	for _, e := range d.Timeline {
		t.AppendRow(table.Row{e.Minute, e.Kind, e.Team, e.Player, e.PlayerOut, e.Detail})
	}
	t.Render()

	for _, w := range d.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}
}
