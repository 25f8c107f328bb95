package domain

import (
	"fmt"
)

// SeasonDescriptor identifies one competitive tournament instance on the federation site.
type SeasonDescriptor struct {
	Name        string `mapstructure:"name" json:"name"`
	Competition int    `mapstructure:"competition" json:"competition"`
	Group       int    `mapstructure:"group" json:"group"`
	Season      int    `mapstructure:"season" json:"season"`
	Rounds      int    `mapstructure:"rounds" json:"rounds"`
	Active      bool   `mapstructure:"active" json:"active"`
}

// Key names the season's directory under the data root.
func (s SeasonDescriptor) Key() string {
	return fmt.Sprintf("%d_%d_%d", s.Season, s.Competition, s.Group)
}

func (s SeasonDescriptor) Complete() bool {
	return s.Competition > 0 && s.Group > 0 && s.Season > 0 && s.Rounds > 0
}

type Status string

const (
	StatusStarter    Status = "starter"
	StatusSubstitute Status = "substitute"
)

type Venue string

const (
	VenueHome Venue = "home"
	VenueAway Venue = "away"
)

type GoalKind string

const (
	GoalOpenPlay GoalKind = "open"
	GoalPenalty  GoalKind = "penalty"
)

type CardColour string

const (
	CardYellow CardColour = "yellow"
	CardRed    CardColour = "red"
)

type Match struct {
	Season    SeasonDescriptor
	Round     int
	Home      string
	Away      string
	SheetCode string
	SheetURL  string
	Extracted bool
}

// MatchKey is unique within a season.
type MatchKey struct {
	Round int
	Home  string
	Away  string
}

func (m Match) Key() MatchKey {
	return MatchKey{Round: m.Round, Home: m.Home, Away: m.Away}
}

func (k MatchKey) String() string {
	return fmt.Sprintf("R%d %s vs %s", k.Round, k.Home, k.Away)
}

type RosterEntry struct {
	ShirtNumber   int
	Player        string
	Team          string
	Status        Status
	Venue         Venue
	Opponent      string
	Round         int
	Goals         int
	YellowCards   int
	RedCards      int
	MinutesPlayed int
	PlayerID      string
}

type GoalEvent struct {
	Round  int
	Minute int
	Player string
	Kind   GoalKind
	Team   string
}

type CardEvent struct {
	Round        int
	Minute       int
	Player       string
	Colour       CardColour
	Team         string
	SecondYellow bool
}

type Substitution struct {
	Round     int
	Minute    int
	PlayerIn  string
	PlayerOut string
	Team      string
}

type WarningKind string

const (
	WarnStartersCount   WarningKind = "starters_count"
	WarnUnknownPlayer   WarningKind = "unknown_player"
	WarnUnmatchedOut    WarningKind = "unmatched_out"
	WarnDuplicateRoster WarningKind = "duplicate_roster"
	WarnSimilarNames    WarningKind = "similar_names"
	WarnBadMinute       WarningKind = "bad_minute"
	WarnMissingIn       WarningKind = "missing_in"
	WarnUnpairedSub     WarningKind = "unpaired_substitution"
	WarnRosterLayout    WarningKind = "roster_layout"
	WarnTeamMismatch    WarningKind = "team_mismatch"
)

// Warning is recorded alongside a match and never blocks persistence.
type Warning struct {
	Kind   WarningKind
	Player string
	Detail string
}

func (w Warning) String() string {
	if w.Player == "" {
		return fmt.Sprintf("%s: %s", w.Kind, w.Detail)
	}
	return fmt.Sprintf("%s [%s]: %s", w.Kind, w.Player, w.Detail)
}

// MatchRecord is everything persisted for one extracted sheet.
type MatchRecord struct {
	Match         Match
	Roster        []RosterEntry
	Goals         []GoalEvent
	Cards         []CardEvent
	Substitutions []Substitution
	Warnings      []Warning
}
