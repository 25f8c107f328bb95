package repository

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"penya-tracker/internal/domain"
)

// SaveMatch replaces the per-match tables of one reconciled sheet. The roster is written
// last: its presence is what marks the match as extracted.
func (s *SeasonStore) SaveMatch(rec *domain.MatchRecord) error {
	key := rec.Match.Key()

	if err := writeCSV(s.goalsPath(key), convert(rec.Goals, toGoalRow)); err != nil {
		return err
	}
	if err := writeCSV(s.substitutionsPath(key), convert(rec.Substitutions, toSubstitutionRow)); err != nil {
		return err
	}
	if err := writeCSV(s.cardsPath(key), convert(rec.Cards, toCardRow)); err != nil {
		return err
	}
	if err := writeCSV(s.warningsPath(key), convert(rec.Warnings, toWarningRow)); err != nil {
		return err
	}
	if err := writeCSV(s.RosterPath(key), convert(rec.Roster, toRosterRow)); err != nil {
		return err
	}

	s.logger.Debug().Str("match", key.String()).Int("players", len(rec.Roster)).Msg("match tables written")
	return nil
}

// LoadMatch reads back the stored tables of one match. Only the roster is required.
func (s *SeasonStore) LoadMatch(match domain.Match) (*domain.MatchRecord, error) {
	key := match.Key()
	roster, err := readCSV[rosterRow](s.RosterPath(key))
	if err != nil {
		return nil, err
	}

	goals, err := readOptional[goalRow](s.goalsPath(key))
	if err != nil {
		return nil, err
	}
	subs, err := readOptional[substitutionRow](s.substitutionsPath(key))
	if err != nil {
		return nil, err
	}
	cards, err := readOptional[cardRow](s.cardsPath(key))
	if err != nil {
		return nil, err
	}
	warnings, err := readOptional[warningRow](s.warningsPath(key))
	if err != nil {
		return nil, err
	}

	return &domain.MatchRecord{
		Match:         match,
		Roster:        convert(roster, rosterRow.entry),
		Goals:         convert(goals, goalRow.event),
		Substitutions: convert(subs, substitutionRow.event),
		Cards:         convert(cards, cardRow.event),
		Warnings:      convert(warnings, warningRow.warning),
	}, nil
}

func readOptional[T any](path string) ([]T, error) {
	rows, err := readCSV[T](path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return rows, err
}

// Tables is the league-wide dataset of one season.
type Tables struct {
	Matches       []domain.Match
	Rosters       []domain.RosterEntry
	Goals         []domain.GoalEvent
	Substitutions []domain.Substitution
	Cards         []domain.CardEvent
}

// CollectTables concatenates every per-match table of the season in file-name order.
func (s *SeasonStore) CollectTables() (*Tables, error) {
	matches, err := s.LoadIndex()
	if err != nil {
		return nil, err
	}
	rosters, err := readDir[rosterRow](filepath.Join(s.dir, rostersDir))
	if err != nil {
		return nil, err
	}
	goals, err := readDir[goalRow](filepath.Join(s.dir, goalsDir))
	if err != nil {
		return nil, err
	}
	subs, err := readDir[substitutionRow](filepath.Join(s.dir, substitutionsDir))
	if err != nil {
		return nil, err
	}
	cards, err := readDir[cardRow](filepath.Join(s.dir, cardsDir))
	if err != nil {
		return nil, err
	}

	return &Tables{
		Matches:       matches,
		Rosters:       convert(rosters, rosterRow.entry),
		Goals:         convert(goals, goalRow.event),
		Substitutions: convert(subs, substitutionRow.event),
		Cards:         convert(cards, cardRow.event),
	}, nil
}

// SaveUnified writes the four league-wide tables plus the cards table at the season root.
func (s *SeasonStore) SaveUnified(t *Tables) error {
	if err := writeCSV(filepath.Join(s.dir, unifiedRosters), convert(t.Rosters, toRosterRow)); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(s.dir, unifiedGoals), convert(t.Goals, toGoalRow)); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(s.dir, unifiedSubstitutions), convert(t.Substitutions, toSubstitutionRow)); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(s.dir, unifiedCards), convert(t.Cards, toCardRow)); err != nil {
		return err
	}
	if err := writeCSV(filepath.Join(s.dir, unifiedMatches), convert(t.Matches, toIndexRow)); err != nil {
		return err
	}
	s.logger.Info().
		Int("matches", len(t.Matches)).
		Int("rosters", len(t.Rosters)).
		Int("goals", len(t.Goals)).
		Msg("unified tables written")
	return nil
}

// LoadUnified reads the league-wide tables written by SaveUnified.
func (s *SeasonStore) LoadUnified() (*Tables, error) {
	matches, err := readCSV[indexRow](filepath.Join(s.dir, unifiedMatches))
	if err != nil {
		return nil, fmt.Errorf("season %s is not unified yet: %w", s.season.Key(), err)
	}
	rosters, err := readCSV[rosterRow](filepath.Join(s.dir, unifiedRosters))
	if err != nil {
		return nil, err
	}
	goals, err := readOptional[goalRow](filepath.Join(s.dir, unifiedGoals))
	if err != nil {
		return nil, err
	}
	subs, err := readOptional[substitutionRow](filepath.Join(s.dir, unifiedSubstitutions))
	if err != nil {
		return nil, err
	}
	cards, err := readOptional[cardRow](filepath.Join(s.dir, unifiedCards))
	if err != nil {
		return nil, err
	}

	return &Tables{
		Matches:       convert(matches, func(r indexRow) domain.Match { return r.match(s.season) }),
		Rosters:       convert(rosters, rosterRow.entry),
		Goals:         convert(goals, goalRow.event),
		Substitutions: convert(subs, substitutionRow.event),
		Cards:         convert(cards, cardRow.event),
	}, nil
}
