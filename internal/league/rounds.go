package league

import (
	"sort"

	"penya-tracker/internal/domain"
)

type RoundStatus struct {
	Round     int  `json:"round"`
	Matches   int  `json:"matches"`
	Extracted int  `json:"extracted"`
	Complete  bool `json:"complete"`
}

// RoundCompleteness reports, per round in ascending order, how many sheets are
// extracted. A round is complete once it reaches threshold extracted sheets.
func RoundCompleteness(matches []domain.Match, threshold int) []RoundStatus {
	byRound := make(map[int]*RoundStatus)
	for _, m := range matches {
		r, ok := byRound[m.Round]
		if !ok {
			r = &RoundStatus{Round: m.Round}
			byRound[m.Round] = r
		}
		r.Matches++
		if m.Extracted {
			r.Extracted++
		}
	}

	out := make([]RoundStatus, 0, len(byRound))
	for _, r := range byRound {
		r.Complete = threshold > 0 && r.Extracted >= threshold
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Round < out[j].Round })
	return out
}
