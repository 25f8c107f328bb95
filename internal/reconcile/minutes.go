package reconcile

import (
	"fmt"
	"sort"

	"penya-tracker/internal/domain"
)

type interval struct {
	from, to int
}

// applyMinutes derives minutes played for the first roster row of every player.
// Starters enter at 0. Each entry is paired with the earliest unused exit at or after
// it; entries left unpaired run to the final whistle. Minutes are clipped to the match
// duration, events keep their original minute.
func (r *Reconciler) applyMinutes(rec *domain.MatchRecord, b *rosterBuilder) {
	ins := make(map[int][]int)
	outs := make(map[int][]int)
	for _, s := range rec.Substitutions {
		if i, ok := b.lookup(s.Team, s.PlayerIn); ok {
			ins[i] = append(ins[i], s.Minute)
		}
		if i, ok := b.lookup(s.Team, s.PlayerOut); ok {
			outs[i] = append(outs[i], s.Minute)
		}
	}

	for i := range rec.Roster {
		e := &rec.Roster[i]
		if b.first[rosterKey(e.Team, e.Player)] != i {
			continue
		}
		entries := ins[i]
		if e.Status == domain.StatusStarter {
			entries = append([]int{0}, entries...)
		}
		spans, unmatched := pairStints(entries, outs[i], r.duration)
		for _, m := range unmatched {
			b.warn(domain.WarnUnmatchedOut, e.Player, fmt.Sprintf("substituted out at %d' without having entered", m))
		}
		e.MinutesPlayed = coveredMinutes(spans)
	}
}

// pairStints pairs entry and exit minutes and returns the resulting spans together
// with the exits that had no entry.
func pairStints(entries, exits []int, duration int) ([]interval, []int) {
	entries = sortedCopy(entries)
	exits = sortedCopy(exits)
	used := make([]bool, len(exits))

	var spans []interval
	for _, in := range entries {
		span := interval{from: clip(in, duration), to: duration}
		for j, out := range exits {
			if !used[j] && out >= in {
				used[j] = true
				span.to = clip(out, duration)
				break
			}
		}
		spans = append(spans, span)
	}

	var unmatched []int
	for j, out := range exits {
		if !used[j] {
			unmatched = append(unmatched, out)
		}
	}
	return spans, unmatched
}

// coveredMinutes is the length of the union of spans, so overlapping stints from a
// malformed sheet never count twice.
func coveredMinutes(spans []interval) int {
	sort.Slice(spans, func(i, j int) bool { return spans[i].from < spans[j].from })
	total, end := 0, -1
	for _, s := range spans {
		if s.to <= s.from {
			continue
		}
		from := s.from
		if from < end {
			from = end
		}
		if s.to > from {
			total += s.to - from
			end = s.to
		}
	}
	return total
}

func clip(minute, duration int) int {
	if minute < 0 {
		return 0
	}
	if minute > duration {
		return duration
	}
	return minute
}

func sortedCopy(in []int) []int {
	out := append([]int(nil), in...)
	sort.Ints(out)
	return out
}
