package repository

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"penya-tracker/internal/config"
	"penya-tracker/internal/domain"

	"github.com/gocarina/gocsv"
	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"
)

const (
	indexFile = "index.csv"

	rostersDir       = "rosters"
	goalsDir         = "goals"
	substitutionsDir = "substitutions"
	cardsDir         = "cards"
	warningsDir      = "warnings"

	unifiedRosters       = "rosters.csv"
	unifiedGoals         = "goals.csv"
	unifiedSubstitutions = "substitutions.csv"
	unifiedCards         = "cards.csv"
	unifiedMatches       = "matches.csv"
)

// FileStore owns every persisted CSV table. Each season lives in its own directory so
// switching the active season never touches another season's data.
type FileStore struct {
	root   string
	logger zerolog.Logger
}

func NewFileStore(cfg *config.Config, logger zerolog.Logger) *FileStore {
	return &FileStore{root: cfg.DataRoot, logger: logger}
}

func (s *FileStore) Root() string {
	return s.root
}

func (s *FileStore) Season(season domain.SeasonDescriptor) *SeasonStore {
	return &SeasonStore{
		dir:    filepath.Join(s.root, season.Key()),
		season: season,
		logger: s.logger.With().Str("season", season.Key()).Logger(),
	}
}

type SeasonStore struct {
	dir    string
	season domain.SeasonDescriptor
	logger zerolog.Logger
}

func (s *SeasonStore) Dir() string {
	return s.dir
}

func (s *SeasonStore) Descriptor() domain.SeasonDescriptor {
	return s.season
}

// matchFile renders the per-match file name, e.g. roster_R7_PENYA_INDEPENDENT_vs_U_E_NORD.csv.
func matchFile(prefix string, key domain.MatchKey) string {
	return fmt.Sprintf("%s_R%d_%s_vs_%s.csv", prefix, key.Round, domain.FileSafe(key.Home), domain.FileSafe(key.Away))
}

func (s *SeasonStore) RosterPath(key domain.MatchKey) string {
	return filepath.Join(s.dir, rostersDir, matchFile("roster", key))
}

func (s *SeasonStore) goalsPath(key domain.MatchKey) string {
	return filepath.Join(s.dir, goalsDir, matchFile("goals", key))
}

func (s *SeasonStore) substitutionsPath(key domain.MatchKey) string {
	return filepath.Join(s.dir, substitutionsDir, matchFile("subs", key))
}

func (s *SeasonStore) cardsPath(key domain.MatchKey) string {
	return filepath.Join(s.dir, cardsDir, matchFile("cards", key))
}

func (s *SeasonStore) warningsPath(key domain.MatchKey) string {
	return filepath.Join(s.dir, warningsDir, matchFile("warnings", key))
}

// writeCSV replaces path atomically: the table is written to a temp file in the same
// directory and renamed over the old one.
func writeCSV[T any](path string, rows []T) error {
	if rows == nil {
		rows = []T{}
	}
	data, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// readCSV returns fs.ErrNotExist (wrapped) when the file is missing.
func readCSV[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var rows []T
	if len(bytes.TrimSpace(data)) == 0 {
		return rows, nil
	}
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return rows, nil
}

// readDir concatenates every table of one per-match directory in file-name order.
func readDir[T any](dir string) ([]T, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var out []T
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".csv" {
			continue
		}
		rows, err := readCSV[T](filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}

func exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
