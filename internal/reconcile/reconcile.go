package reconcile

import (
	"fmt"

	"penya-tracker/internal/config"
	"penya-tracker/internal/constants"
	"penya-tracker/internal/domain"
	"penya-tracker/internal/parser"

	"github.com/antzucaro/matchr"
	"github.com/rs/zerolog"
)

type Reconciler struct {
	duration int
	logger   zerolog.Logger
}

func New(cfg *config.Config, logger zerolog.Logger) *Reconciler {
	return NewWithDuration(cfg.MatchDuration, logger)
}

func NewWithDuration(duration int, logger zerolog.Logger) *Reconciler {
	if duration <= 0 {
		duration = constants.DefaultMatchDuration
	}
	return &Reconciler{duration: duration, logger: logger}
}

func (r *Reconciler) Duration() int {
	return r.duration
}

// Reconcile fuses the event streams of one parsed sheet into one row per rostered
// player, with disciplinary normalisation already applied to the rows. The index match supplies identity: its round and team names win over the
// sheet header so every table joins on the same keys.
func (r *Reconciler) Reconcile(sheet *parser.Sheet, match domain.Match) *domain.MatchRecord {
	rec := &domain.MatchRecord{Match: match}
	rec.Warnings = append(rec.Warnings, sheet.Warnings...)

	round := match.Round
	if round == 0 {
		round = sheet.Round
	}
	home := r.identity(rec, match.Home, sheet.Home)
	away := r.identity(rec, match.Away, sheet.Away)
	rec.Match.Round = round
	rec.Match.Home = home
	rec.Match.Away = away
	rename := map[string]string{sheet.Home: home, sheet.Away: away}

	b := newRosterBuilder(rec)
	b.add(sheet.HomeStarters, home, away, domain.StatusStarter, domain.VenueHome, round)
	b.add(sheet.HomeSubs, home, away, domain.StatusSubstitute, domain.VenueHome, round)
	b.add(sheet.AwayStarters, away, home, domain.StatusStarter, domain.VenueAway, round)
	b.add(sheet.AwaySubs, away, home, domain.StatusSubstitute, domain.VenueAway, round)

	for _, g := range sheet.Goals {
		g.Round = round
		g.Team = rename[g.Team]
		if i, ok := b.lookup(g.Team, g.Player); ok {
			rec.Roster[i].Goals++
			g.Team = rec.Roster[i].Team
		} else {
			b.warn(domain.WarnUnknownPlayer, g.Player, fmt.Sprintf("scored at %d' but is not on either roster", g.Minute))
		}
		rec.Goals = append(rec.Goals, g)
	}

	cardRows := make([]int, 0, len(sheet.Cards))
	for _, c := range sheet.Cards {
		c.Round = round
		c.Team = rename[c.Team]
		i, ok := b.lookup(c.Team, c.Player)
		if !ok {
			b.warn(domain.WarnUnknownPlayer, c.Player, fmt.Sprintf("booked at %d' but is not on either roster", c.Minute))
			i = -1
		} else {
			c.Team = rec.Roster[i].Team
			switch c.Colour {
			case domain.CardYellow:
				rec.Roster[i].YellowCards++
			case domain.CardRed:
				rec.Roster[i].RedCards++
			}
		}
		cardRows = append(cardRows, i)
		rec.Cards = append(rec.Cards, c)
	}
	yellows := make(map[int]int)
	for _, k := range chronologicalCards(rec.Cards) {
		if i := cardRows[k]; i >= 0 && rec.Cards[k].Colour == domain.CardYellow {
			yellows[i]++
			rec.Cards[k].SecondYellow = yellows[i] == 2
		}
	}

	for _, s := range sheet.Substitutions {
		s.Round = round
		s.Team = rename[s.Team]
		for _, player := range []string{s.PlayerIn, s.PlayerOut} {
			if i, ok := b.lookup(s.Team, player); ok {
				if s.Team == "" {
					s.Team = rec.Roster[i].Team
				}
				continue
			}
			b.warn(domain.WarnUnknownPlayer, player, fmt.Sprintf("substitution at %d' names a player on neither roster", s.Minute))
		}
		rec.Substitutions = append(rec.Substitutions, s)
	}

	b.collapseDuplicates()
	r.applyMinutes(rec, b)
	b.flagBenchEvents()
	b.flagSimilarNames()
	rec.Roster = ApplyDiscipline(rec.Roster)

	r.logger.Debug().
		Str("match", rec.Match.Key().String()).
		Int("players", len(rec.Roster)).
		Int("goals", len(rec.Goals)).
		Int("warnings", len(rec.Warnings)).
		Msg("match reconciled")
	return rec
}

func (r *Reconciler) identity(rec *domain.MatchRecord, indexed, header string) string {
	indexed = domain.CanonicalTeam(indexed)
	if indexed == "" {
		return header
	}
	if header != "" && header != indexed {
		rec.Warnings = append(rec.Warnings, domain.Warning{
			Kind:   domain.WarnTeamMismatch,
			Detail: fmt.Sprintf("sheet header names %s, round index names %s", header, indexed),
		})
	}
	return indexed
}

type rosterBuilder struct {
	rec *domain.MatchRecord
	// team|player key -> index of the first row for that player
	first map[string]int
	dupes []int
}

func newRosterBuilder(rec *domain.MatchRecord) *rosterBuilder {
	return &rosterBuilder{rec: rec, first: make(map[string]int)}
}

func rosterKey(team, player string) string {
	return team + "|" + domain.PlayerKey(player)
}

func (b *rosterBuilder) add(lines []parser.RosterLine, team, opponent string, status domain.Status, venue domain.Venue, round int) {
	for _, l := range lines {
		entry := domain.RosterEntry{
			ShirtNumber: l.ShirtNumber,
			Player:      l.Player,
			Team:        team,
			Status:      status,
			Venue:       venue,
			Opponent:    opponent,
			Round:       round,
			PlayerID:    domain.PlayerID(team, l.Player),
		}
		key := rosterKey(team, l.Player)
		idx := len(b.rec.Roster)
		b.rec.Roster = append(b.rec.Roster, entry)
		if _, ok := b.first[key]; ok {
			b.dupes = append(b.dupes, idx)
			b.warn(domain.WarnDuplicateRoster, l.Player, fmt.Sprintf("listed more than once for %s", team))
			continue
		}
		b.first[key] = idx
	}
}

// lookup finds the first roster row of player. An empty team searches home then away.
func (b *rosterBuilder) lookup(team, player string) (int, bool) {
	if team != "" {
		i, ok := b.first[rosterKey(team, player)]
		return i, ok
	}
	for _, t := range []string{b.rec.Match.Home, b.rec.Match.Away} {
		if i, ok := b.first[rosterKey(t, player)]; ok {
			return i, true
		}
	}
	return 0, false
}

func (b *rosterBuilder) warn(kind domain.WarningKind, player, detail string) {
	b.rec.Warnings = append(b.rec.Warnings, domain.Warning{Kind: kind, Player: player, Detail: detail})
}

// collapseDuplicates keeps totals on the first row of a player only.
func (b *rosterBuilder) collapseDuplicates() {
	for _, i := range b.dupes {
		e := &b.rec.Roster[i]
		e.Goals, e.YellowCards, e.RedCards, e.MinutesPlayed = 0, 0, 0, 0
	}
}

// flagBenchEvents warns about substitutes credited with goals or cards without playing.
func (b *rosterBuilder) flagBenchEvents() {
	for _, e := range b.rec.Roster {
		if e.Status != domain.StatusSubstitute || e.MinutesPlayed > 0 {
			continue
		}
		if e.Goals > 0 || e.YellowCards > 0 || e.RedCards > 0 {
			b.warn(domain.WarnMissingIn, e.Player, "has events but never entered the match")
		}
	}
}

// flagSimilarNames warns when two distinct players of a team have near-identical names,
// since events are matched to rows by name only.
func (b *rosterBuilder) flagSimilarNames() {
	roster := b.rec.Roster
	for i := 0; i < len(roster); i++ {
		for j := i + 1; j < len(roster); j++ {
			if roster[i].Team != roster[j].Team {
				continue
			}
			left, right := domain.PlayerKey(roster[i].Player), domain.PlayerKey(roster[j].Player)
			if left == right {
				continue
			}
			if matchr.JaroWinkler(left, right, false) >= constants.SimilarNameThreshold {
				b.warn(domain.WarnSimilarNames, roster[i].Player, fmt.Sprintf("close to %s (%s)", roster[j].Player, roster[i].Team))
			}
		}
	}
}
