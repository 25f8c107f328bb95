package reconcile

import "penya-tracker/internal/domain"

// ApplyDiscipline collapses every pair of yellows of a (match, player) into one red:
// yellows' = yellows mod 2, reds' = reds + yellows div 2. When a player has several rows
// in the same match only the first keeps the totals. Applying it twice is a no-op.
// Rows are returned as a new slice; card events are never touched.
func ApplyDiscipline(rows []domain.RosterEntry) []domain.RosterEntry {
	out := make([]domain.RosterEntry, len(rows))
	seen := make(map[disciplineKey]bool, len(rows))

	for i, row := range rows {
		key := disciplineKey{
			round:    row.Round,
			team:     domain.CanonicalTeam(row.Team),
			opponent: domain.CanonicalTeam(row.Opponent),
			player:   domain.PlayerKey(row.Player),
		}
		if seen[key] {
			row.Goals, row.YellowCards, row.RedCards, row.MinutesPlayed = 0, 0, 0, 0
			out[i] = row
			continue
		}
		seen[key] = true

		row.RedCards += row.YellowCards / 2
		row.YellowCards %= 2
		out[i] = row
	}
	return out
}

// a match is identified within a season by its round and the two teams
type disciplineKey struct {
	round    int
	team     string
	opponent string
	player   string
}
