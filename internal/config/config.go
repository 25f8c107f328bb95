package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"penya-tracker/internal/constants"
	"penya-tracker/internal/domain"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"go.uber.org/fx"
)

var (
	ErrNoActiveSeason = errors.New("no active season configured")
	ErrInvalidSeason  = errors.New("invalid season descriptor")
)

const (
	FetchModeRender = "render"
	FetchModeStatic = "static"
)

const (
	defaultBaseURL       = "https://resultadosffcv.isquad.es"
	defaultRoundTemplate = "{base}/competicion/jornada?competicion={competition}&grupo={group}&temporada={season}&jornada={round}"
	defaultSheetTemplate = "{base}/competicion/acta?competicion={competition}&grupo={group}&temporada={season}&CodActa={code}"
)

type Config struct {
	DataRoot    string
	DBPath      string
	SeasonsFile string
	ServerPort  string
	LogLevel    string

	MatchDuration     int
	FetchMode         string
	ChromeURL         string
	RenderWait        time.Duration
	FetchTimeout      time.Duration
	FetchConcurrency  int
	FetchRetries      int
	RetryBaseDelay    time.Duration
	RoundCompleteness int

	BaseURL       string
	RoundTemplate string
	SheetTemplate string
	TargetClub    string

	Seasons []domain.SeasonDescriptor
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("DATA_ROOT", "data")
	v.SetDefault("DB_PATH", "data/league.db")
	v.SetDefault("SEASONS_FILE", "config/seasons.yaml")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MATCH_DURATION", constants.DefaultMatchDuration)
	v.SetDefault("FETCH_MODE", FetchModeRender)
	v.SetDefault("CHROME_URL", "")
	v.SetDefault("RENDER_WAIT", constants.DefaultRenderWait)
	v.SetDefault("FETCH_TIMEOUT", constants.DefaultFetchTimeout)
	v.SetDefault("FETCH_CONCURRENCY", constants.DefaultConcurrency)
	v.SetDefault("FETCH_RETRIES", constants.DefaultFetchRetries)
	v.SetDefault("RETRY_BASE_DELAY", constants.DefaultRetryBaseDelay)
	v.SetDefault("ROUND_COMPLETENESS", constants.DefaultRoundCompleteness)
	v.SetDefault("BASE_URL", defaultBaseURL)
	v.SetDefault("ROUND_URL_TEMPLATE", defaultRoundTemplate)
	v.SetDefault("SHEET_URL_TEMPLATE", defaultSheetTemplate)
	v.SetDefault("TARGET_CLUB", "PENYA INDEPENDENT")

	cfg := &Config{
		DataRoot:          v.GetString("DATA_ROOT"),
		DBPath:            v.GetString("DB_PATH"),
		SeasonsFile:       v.GetString("SEASONS_FILE"),
		ServerPort:        v.GetString("SERVER_PORT"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		MatchDuration:     v.GetInt("MATCH_DURATION"),
		FetchMode:         strings.ToLower(v.GetString("FETCH_MODE")),
		ChromeURL:         v.GetString("CHROME_URL"),
		RenderWait:        v.GetDuration("RENDER_WAIT"),
		FetchTimeout:      v.GetDuration("FETCH_TIMEOUT"),
		FetchConcurrency:  v.GetInt("FETCH_CONCURRENCY"),
		FetchRetries:      v.GetInt("FETCH_RETRIES"),
		RetryBaseDelay:    v.GetDuration("RETRY_BASE_DELAY"),
		RoundCompleteness: v.GetInt("ROUND_COMPLETENESS"),
		BaseURL:           strings.TrimRight(v.GetString("BASE_URL"), "/"),
		RoundTemplate:     v.GetString("ROUND_URL_TEMPLATE"),
		SheetTemplate:     v.GetString("SHEET_URL_TEMPLATE"),
		TargetClub:        domain.CanonicalTeam(v.GetString("TARGET_CLUB")),
	}

	if cfg.MatchDuration <= 0 {
		return nil, fmt.Errorf("MATCH_DURATION must be positive, got %d", cfg.MatchDuration)
	}
	if cfg.FetchMode != FetchModeRender && cfg.FetchMode != FetchModeStatic {
		return nil, fmt.Errorf("FETCH_MODE must be %q or %q, got %q", FetchModeRender, FetchModeStatic, cfg.FetchMode)
	}
	if cfg.FetchConcurrency < 1 {
		cfg.FetchConcurrency = 1
	}
	if cfg.FetchRetries < 0 {
		cfg.FetchRetries = 0
	}
	if cfg.FetchRetries > constants.MaxFetchRetries {
		logger.Warn().Int("requested", cfg.FetchRetries).Int("cap", constants.MaxFetchRetries).Msg("retry budget capped")
		cfg.FetchRetries = constants.MaxFetchRetries
	}

	seasons, err := loadSeasons(cfg.SeasonsFile)
	if err != nil {
		return nil, err
	}
	cfg.Seasons = seasons

	logger.Info().
		Str("data_root", cfg.DataRoot).
		Str("db_path", cfg.DBPath).
		Str("fetch_mode", cfg.FetchMode).
		Int("match_duration", cfg.MatchDuration).
		Int("fetch_retries", cfg.FetchRetries).
		Int("seasons", len(cfg.Seasons)).
		Msg("configuration loaded")

	return cfg, nil
}

// loadSeasons reads the season registry. A missing file yields an empty registry; the
// error then surfaces from ActiveSeason before any fetch.
func loadSeasons(path string) ([]domain.SeasonDescriptor, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read season registry %s: %w", path, err)
	}

	var seasons []domain.SeasonDescriptor
	if err := v.UnmarshalKey("seasons", &seasons); err != nil {
		return nil, fmt.Errorf("failed to decode season registry %s: %w", path, err)
	}
	return seasons, nil
}

// ActiveSeason returns the single descriptor marked active. Several active entries, or an
// active entry with unset fields, is a configuration error; there is no fallback to the
// most recent season.
func (c *Config) ActiveSeason() (domain.SeasonDescriptor, error) {
	var active []domain.SeasonDescriptor
	for _, s := range c.Seasons {
		if s.Active {
			active = append(active, s)
		}
	}

	switch len(active) {
	case 0:
		return domain.SeasonDescriptor{}, ErrNoActiveSeason
	case 1:
	default:
		return domain.SeasonDescriptor{}, fmt.Errorf("%w: %d seasons marked active", ErrInvalidSeason, len(active))
	}

	if err := ValidateSeason(active[0]); err != nil {
		return domain.SeasonDescriptor{}, err
	}
	return active[0], nil
}

func (c *Config) Season(name string) (domain.SeasonDescriptor, error) {
	for _, s := range c.Seasons {
		if s.Name == name {
			if err := ValidateSeason(s); err != nil {
				return domain.SeasonDescriptor{}, err
			}
			return s, nil
		}
	}
	return domain.SeasonDescriptor{}, fmt.Errorf("%w: season %q not found", ErrInvalidSeason, name)
}

// ResolveSeason picks the named season, or the active one when name is empty.
func (c *Config) ResolveSeason(name string) (domain.SeasonDescriptor, error) {
	if name == "" {
		return c.ActiveSeason()
	}
	return c.Season(name)
}

func ValidateSeason(s domain.SeasonDescriptor) error {
	var missing []string
	if s.Competition <= 0 {
		missing = append(missing, "competition")
	}
	if s.Group <= 0 {
		missing = append(missing, "group")
	}
	if s.Season <= 0 {
		missing = append(missing, "season")
	}
	if s.Rounds <= 0 {
		missing = append(missing, "rounds")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w %q: missing %s", ErrInvalidSeason, s.Name, strings.Join(missing, ", "))
	}
	return nil
}

var Module = fx.Provide(Load)
