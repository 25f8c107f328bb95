package league

import (
	"sort"

	"penya-tracker/internal/domain"
	"penya-tracker/internal/reconcile"
)

// TeamStats are the season totals of one team over the unified rosters.
type TeamStats struct {
	Team          string `json:"team"`
	GoalsFor      int    `json:"goals_for"`
	GoalsAgainst  int    `json:"goals_against"`
	Yellows       int    `json:"yellows"`
	Reds          int    `json:"reds"`
	OppYellows    int    `json:"opp_yellows"`
	OppReds       int    `json:"opp_reds"`
	SquadSize     int    `json:"squad_size"`
	MatchesPlayed int    `json:"matches_played"`
}

// Values holds one float per metric, used for league means and per-match rates.
type Values struct {
	GoalsFor      float64 `json:"goals_for"`
	GoalsAgainst  float64 `json:"goals_against"`
	Yellows       float64 `json:"yellows"`
	Reds          float64 `json:"reds"`
	OppYellows    float64 `json:"opp_yellows"`
	OppReds       float64 `json:"opp_reds"`
	SquadSize     float64 `json:"squad_size"`
	MatchesPlayed float64 `json:"matches_played"`
}

func (s TeamStats) values() Values {
	return Values{
		GoalsFor:      float64(s.GoalsFor),
		GoalsAgainst:  float64(s.GoalsAgainst),
		Yellows:       float64(s.Yellows),
		Reds:          float64(s.Reds),
		OppYellows:    float64(s.OppYellows),
		OppReds:       float64(s.OppReds),
		SquadSize:     float64(s.SquadSize),
		MatchesPlayed: float64(s.MatchesPlayed),
	}
}

func (v Values) add(o Values) Values {
	return Values{
		GoalsFor:      v.GoalsFor + o.GoalsFor,
		GoalsAgainst:  v.GoalsAgainst + o.GoalsAgainst,
		Yellows:       v.Yellows + o.Yellows,
		Reds:          v.Reds + o.Reds,
		OppYellows:    v.OppYellows + o.OppYellows,
		OppReds:       v.OppReds + o.OppReds,
		SquadSize:     v.SquadSize + o.SquadSize,
		MatchesPlayed: v.MatchesPlayed + o.MatchesPlayed,
	}
}

func (v Values) scale(f float64) Values {
	return Values{
		GoalsFor:      v.GoalsFor * f,
		GoalsAgainst:  v.GoalsAgainst * f,
		Yellows:       v.Yellows * f,
		Reds:          v.Reds * f,
		OppYellows:    v.OppYellows * f,
		OppReds:       v.OppReds * f,
		SquadSize:     v.SquadSize * f,
		MatchesPlayed: v.MatchesPlayed * f,
	}
}

// perMatch divides the event totals by the matches played. Squad size and matches are
// season quantities and are kept as they are.
func (s TeamStats) perMatch() Values {
	if s.MatchesPlayed == 0 {
		return Values{SquadSize: float64(s.SquadSize)}
	}
	v := s.values().scale(1 / float64(s.MatchesPlayed))
	v.SquadSize = float64(s.SquadSize)
	v.MatchesPlayed = float64(s.MatchesPlayed)
	return v
}

type TeamReport struct {
	Stats TeamStats `json:"stats"`
	// Reference is the mean of every metric over all the other teams.
	Reference         Values `json:"reference"`
	PerMatch          Values `json:"per_match"`
	ReferencePerMatch Values `json:"reference_per_match"`
}

type League struct {
	// Teams sorted by canonical name.
	Teams []TeamStats `json:"teams"`
	index map[string]int
}

// Aggregate computes team totals over the unified rosters. Team names are canonicalised
// and disciplinary normalisation is applied first, so raw tables can be passed as read.
// matches_played counts extracted matches only.
func Aggregate(rosters []domain.RosterEntry, matches []domain.Match) *League {
	stats := make(map[string]*TeamStats)
	get := func(team string) *TeamStats {
		s, ok := stats[team]
		if !ok {
			s = &TeamStats{Team: team}
			stats[team] = s
		}
		return s
	}

	squads := make(map[string]map[string]struct{})
	for _, row := range reconcile.ApplyDiscipline(rosters) {
		team := domain.CanonicalTeam(row.Team)
		if team == "" {
			continue
		}
		s := get(team)
		s.GoalsFor += row.Goals
		s.Yellows += row.YellowCards
		s.Reds += row.RedCards

		if squads[team] == nil {
			squads[team] = make(map[string]struct{})
		}
		squads[team][domain.PlayerKey(row.Player)] = struct{}{}

		if opponent := domain.CanonicalTeam(row.Opponent); opponent != "" {
			o := get(opponent)
			o.GoalsAgainst += row.Goals
			o.OppYellows += row.YellowCards
			o.OppReds += row.RedCards
		}
	}
	for team, squad := range squads {
		stats[team].SquadSize = len(squad)
	}

	for _, m := range matches {
		if !m.Extracted {
			continue
		}
		for _, team := range []string{m.Home, m.Away} {
			if team = domain.CanonicalTeam(team); team != "" {
				get(team).MatchesPlayed++
			}
		}
	}

	l := &League{index: make(map[string]int, len(stats))}
	for _, s := range stats {
		l.Teams = append(l.Teams, *s)
	}
	sort.Slice(l.Teams, func(i, j int) bool { return l.Teams[i].Team < l.Teams[j].Team })
	for i, s := range l.Teams {
		l.index[s.Team] = i
	}
	return l
}

// Stats returns the totals of a team by any spelling of its name.
func (l *League) Stats(team string) (TeamStats, bool) {
	i, ok := l.index[domain.CanonicalTeam(team)]
	if !ok {
		return TeamStats{}, false
	}
	return l.Teams[i], true
}

// Reference is the arithmetic mean of every metric over all teams except team. It is
// zero when no other team exists.
func (l *League) Reference(team string) Values {
	return l.mean(team, TeamStats.values)
}

func (l *League) ReferencePerMatch(team string) Values {
	return l.mean(team, TeamStats.perMatch)
}

func (l *League) mean(team string, metric func(TeamStats) Values) Values {
	team = domain.CanonicalTeam(team)
	var (
		sum Values
		n   int
	)
	for _, s := range l.Teams {
		if s.Team == team {
			continue
		}
		sum = sum.add(metric(s))
		n++
	}
	if n == 0 {
		return Values{}
	}
	return sum.scale(1 / float64(n))
}

func (l *League) Report(team string) (TeamReport, bool) {
	s, ok := l.Stats(team)
	if !ok {
		return TeamReport{}, false
	}
	return TeamReport{
		Stats:             s,
		Reference:         l.Reference(s.Team),
		PerMatch:          s.perMatch(),
		ReferencePerMatch: l.ReferencePerMatch(s.Team),
	}, true
}
