package repository

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"penya-tracker/internal/domain"
)

// LoadIndex reads the season's roster of matches. A season that was never scanned has
// an empty index.
func (s *SeasonStore) LoadIndex() ([]domain.Match, error) {
	rows, err := readCSV[indexRow](filepath.Join(s.dir, indexFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return convert(rows, func(r indexRow) domain.Match { return r.match(s.season) }), nil
}

func (s *SeasonStore) SaveIndex(matches []domain.Match) error {
	return writeCSV(filepath.Join(s.dir, indexFile), convert(matches, toIndexRow))
}

// MergeRound upserts the matches of one scanned round into index. Known matches keep
// their position and extracted flag and only take the sheet code and URL when the page
// now carries one; new matches are appended. The result is ordered by round, stable
// within a round.
func MergeRound(index []domain.Match, scanned []domain.Match) []domain.Match {
	out := append([]domain.Match(nil), index...)
	pos := make(map[domain.MatchKey]int, len(out))
	for i, m := range out {
		pos[m.Key()] = i
	}

	for _, m := range scanned {
		i, ok := pos[m.Key()]
		if !ok {
			pos[m.Key()] = len(out)
			out = append(out, m)
			continue
		}
		if m.SheetCode != "" && m.SheetCode != out[i].SheetCode {
			out[i].SheetCode = m.SheetCode
			out[i].SheetURL = m.SheetURL
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Round < out[j].Round })
	return out
}

// MarkExtracted flips the flag of one match and reports whether the match was found.
func MarkExtracted(index []domain.Match, key domain.MatchKey) bool {
	for i := range index {
		if index[i].Key() == key {
			index[i].Extracted = true
			return true
		}
	}
	return false
}

// SyncExtracted sets every extracted flag from the presence of the match's roster table
// and returns how many flags changed.
func (s *SeasonStore) SyncExtracted(index []domain.Match) (int, error) {
	changed := 0
	for i := range index {
		ok, err := exists(s.RosterPath(index[i].Key()))
		if err != nil {
			return changed, fmt.Errorf("failed to check roster of %s: %w", index[i].Key(), err)
		}
		if index[i].Extracted != ok {
			index[i].Extracted = ok
			changed++
		}
	}
	if changed > 0 {
		s.logger.Info().Int("changed", changed).Msg("extracted flags synchronised with stored rosters")
	}
	return changed, nil
}
