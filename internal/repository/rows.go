package repository

import (
	"fmt"
	"strings"

	"penya-tracker/internal/domain"
)

// yesNo is the index's extracted flag.
type yesNo bool

func (b yesNo) MarshalCSV() (string, error) {
	if b {
		return "Yes", nil
	}
	return "No", nil
}

func (b *yesNo) UnmarshalCSV(s string) error {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1":
		*b = true
	case "no", "false", "0", "":
		*b = false
	default:
		return fmt.Errorf("invalid extracted flag %q", s)
	}
	return nil
}

type indexRow struct {
	SeasonID      int    `csv:"season_id"`
	CompetitionID int    `csv:"competition_id"`
	GroupID       int    `csv:"group_id"`
	Round         int    `csv:"round"`
	Home          string `csv:"home"`
	Away          string `csv:"away"`
	SheetCode     string `csv:"sheet_code"`
	SheetURL      string `csv:"sheet_url"`
	Extracted     yesNo  `csv:"extracted"`
}

func toIndexRow(m domain.Match) indexRow {
	return indexRow{
		SeasonID:      m.Season.Season,
		CompetitionID: m.Season.Competition,
		GroupID:       m.Season.Group,
		Round:         m.Round,
		Home:          m.Home,
		Away:          m.Away,
		SheetCode:     m.SheetCode,
		SheetURL:      m.SheetURL,
		Extracted:     yesNo(m.Extracted),
	}
}

func (r indexRow) match(season domain.SeasonDescriptor) domain.Match {
	return domain.Match{
		Season:    season,
		Round:     r.Round,
		Home:      domain.CanonicalTeam(r.Home),
		Away:      domain.CanonicalTeam(r.Away),
		SheetCode: r.SheetCode,
		SheetURL:  r.SheetURL,
		Extracted: bool(r.Extracted),
	}
}

type rosterRow struct {
	ShirtNumber   int    `csv:"shirt_number"`
	Player        string `csv:"player"`
	Team          string `csv:"team"`
	Status        string `csv:"status"`
	Venue         string `csv:"venue"`
	Opponent      string `csv:"opponent"`
	Round         int    `csv:"round"`
	Goals         int    `csv:"goals"`
	YellowCards   int    `csv:"yellow_cards"`
	RedCards      int    `csv:"red_cards"`
	MinutesPlayed int    `csv:"minutes_played"`
	PlayerID      string `csv:"player_id"`
}

func toRosterRow(e domain.RosterEntry) rosterRow {
	return rosterRow{
		ShirtNumber:   e.ShirtNumber,
		Player:        e.Player,
		Team:          e.Team,
		Status:        string(e.Status),
		Venue:         string(e.Venue),
		Opponent:      e.Opponent,
		Round:         e.Round,
		Goals:         e.Goals,
		YellowCards:   e.YellowCards,
		RedCards:      e.RedCards,
		MinutesPlayed: e.MinutesPlayed,
		PlayerID:      e.PlayerID,
	}
}

func (r rosterRow) entry() domain.RosterEntry {
	id := r.PlayerID
	if id == "" {
		id = domain.PlayerID(r.Team, r.Player)
	}
	return domain.RosterEntry{
		ShirtNumber:   r.ShirtNumber,
		Player:        r.Player,
		Team:          domain.CanonicalTeam(r.Team),
		Status:        domain.Status(r.Status),
		Venue:         domain.Venue(r.Venue),
		Opponent:      domain.CanonicalTeam(r.Opponent),
		Round:         r.Round,
		Goals:         r.Goals,
		YellowCards:   r.YellowCards,
		RedCards:      r.RedCards,
		MinutesPlayed: r.MinutesPlayed,
		PlayerID:      id,
	}
}

type goalRow struct {
	Round  int    `csv:"round"`
	Minute int    `csv:"minute"`
	Player string `csv:"player"`
	Kind   string `csv:"kind"`
	Team   string `csv:"team"`
}

func toGoalRow(g domain.GoalEvent) goalRow {
	return goalRow{Round: g.Round, Minute: g.Minute, Player: g.Player, Kind: string(g.Kind), Team: g.Team}
}

func (r goalRow) event() domain.GoalEvent {
	return domain.GoalEvent{Round: r.Round, Minute: r.Minute, Player: r.Player, Kind: domain.GoalKind(r.Kind), Team: domain.CanonicalTeam(r.Team)}
}

type substitutionRow struct {
	PlayerIn  string `csv:"player_in"`
	PlayerOut string `csv:"player_out"`
	Minute    int    `csv:"minute"`
	Team      string `csv:"team"`
	Round     int    `csv:"round"`
}

func toSubstitutionRow(s domain.Substitution) substitutionRow {
	return substitutionRow{PlayerIn: s.PlayerIn, PlayerOut: s.PlayerOut, Minute: s.Minute, Team: s.Team, Round: s.Round}
}

func (r substitutionRow) event() domain.Substitution {
	return domain.Substitution{Round: r.Round, Minute: r.Minute, PlayerIn: r.PlayerIn, PlayerOut: r.PlayerOut, Team: domain.CanonicalTeam(r.Team)}
}

type cardRow struct {
	Round        int    `csv:"round"`
	Minute       int    `csv:"minute"`
	Player       string `csv:"player"`
	Colour       string `csv:"colour"`
	Team         string `csv:"team"`
	SecondYellow yesNo  `csv:"second_yellow"`
}

func toCardRow(c domain.CardEvent) cardRow {
	return cardRow{Round: c.Round, Minute: c.Minute, Player: c.Player, Colour: string(c.Colour), Team: c.Team, SecondYellow: yesNo(c.SecondYellow)}
}

func (r cardRow) event() domain.CardEvent {
	return domain.CardEvent{
		Round:        r.Round,
		Minute:       r.Minute,
		Player:       r.Player,
		Colour:       domain.CardColour(r.Colour),
		Team:         domain.CanonicalTeam(r.Team),
		SecondYellow: bool(r.SecondYellow),
	}
}

type warningRow struct {
	Kind   string `csv:"kind"`
	Player string `csv:"player"`
	Detail string `csv:"detail"`
}

func toWarningRow(w domain.Warning) warningRow {
	return warningRow{Kind: string(w.Kind), Player: w.Player, Detail: w.Detail}
}

func (r warningRow) warning() domain.Warning {
	return domain.Warning{Kind: domain.WarningKind(r.Kind), Player: r.Player, Detail: r.Detail}
}

func convert[T, U any](in []T, f func(T) U) []U {
	out := make([]U, len(in))
	for i, v := range in {
		out[i] = f(v)
	}
	return out
}
