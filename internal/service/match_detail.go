package service

import (
	"errors"
	"fmt"

	"penya-tracker/internal/config"
	"penya-tracker/internal/domain"
	"penya-tracker/internal/reconcile"
	"penya-tracker/internal/repository"

	"github.com/rs/zerolog"
)

var ErrMatchNotFound = errors.New("match not found")

type MatchSummary struct {
	Round     int    `json:"round"`
	Home      string `json:"home"`
	Away      string `json:"away"`
	HomeGoals int    `json:"home_goals"`
	AwayGoals int    `json:"away_goals"`
	SheetCode string `json:"sheet_code"`
}

type TimelineEntry struct {
	Minute    int    `json:"minute"`
	Kind      string `json:"kind"`
	Team      string `json:"team"`
	Player    string `json:"player"`
	PlayerOut string `json:"player_out,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

type PlayerLine struct {
	ShirtNumber   int    `json:"shirt_number"`
	Player        string `json:"player"`
	PlayerID      string `json:"player_id"`
	Status        string `json:"status"`
	Goals         int    `json:"goals"`
	YellowCards   int    `json:"yellow_cards"`
	RedCards      int    `json:"red_cards"`
	MinutesPlayed int    `json:"minutes_played"`
}

type MatchDetail struct {
	Match    MatchSummary    `json:"match"`
	Home     []PlayerLine    `json:"home"`
	Away     []PlayerLine    `json:"away"`
	Timeline []TimelineEntry `json:"timeline"`
	Warnings []string        `json:"warnings"`
}

type MatchDetailService struct {
	cfg    *config.Config
	store  *repository.FileStore
	logger zerolog.Logger
}

func NewMatchDetailService(cfg *config.Config, store *repository.FileStore, logger zerolog.Logger) *MatchDetailService {
	return &MatchDetailService{cfg: cfg, store: store, logger: logger}
}

// GetMatch reads back the stored tables of one extracted match. team may be either side.
func (s *MatchDetailService) GetMatch(seasonName string, round int, team string) (*MatchDetail, error) {
	season, err := s.cfg.ResolveSeason(seasonName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve season: %w", err)
	}
	store := s.store.Season(season)

	index, err := store.LoadIndex()
	if err != nil {
		return nil, fmt.Errorf("failed to load index: %w", err)
	}

	team = domain.CanonicalTeam(team)
	var match *domain.Match
	for i, m := range index {
		if m.Round == round && m.Extracted && (m.Home == team || m.Away == team) {
			match = &index[i]
			break
		}
	}
	if match == nil {
		return nil, fmt.Errorf("%w: round %d, %s", ErrMatchNotFound, round, team)
	}

	rec, err := store.LoadMatch(*match)
	if err != nil {
		s.logger.Error().Err(err).Str("match", match.Key().String()).Msg("failed to load match tables")
		return nil, fmt.Errorf("failed to load match tables: %w", err)
	}
	return s.buildResponse(rec), nil
}

func (s *MatchDetailService) buildResponse(rec *domain.MatchRecord) *MatchDetail {
	detail := &MatchDetail{
		Match: MatchSummary{
			Round:     rec.Match.Round,
			Home:      rec.Match.Home,
			Away:      rec.Match.Away,
			SheetCode: rec.Match.SheetCode,
		},
		Timeline: make([]TimelineEntry, 0),
		Warnings: make([]string, 0, len(rec.Warnings)),
	}

	for _, e := range rec.Roster {
		line := PlayerLine{
			ShirtNumber:   e.ShirtNumber,
			Player:        e.Player,
			PlayerID:      e.PlayerID,
			Status:        string(e.Status),
			Goals:         e.Goals,
			YellowCards:   e.YellowCards,
			RedCards:      e.RedCards,
			MinutesPlayed: e.MinutesPlayed,
		}
		if e.Venue == domain.VenueHome {
			detail.Home = append(detail.Home, line)
		} else {
			detail.Away = append(detail.Away, line)
		}
	}

	for _, g := range rec.Goals {
		switch g.Team {
		case rec.Match.Home:
			detail.Match.HomeGoals++
		case rec.Match.Away:
			detail.Match.AwayGoals++
		}
	}

	for _, ev := range reconcile.Timeline(rec) {
		entry := TimelineEntry{Minute: ev.Minute, Kind: ev.Kind.String(), Team: ev.Team()}
		switch {
		case ev.Goal != nil:
			entry.Player = ev.Goal.Player
			entry.Detail = string(ev.Goal.Kind)
		case ev.Card != nil:
			entry.Player = ev.Card.Player
			entry.Detail = string(ev.Card.Colour)
			if ev.Card.SecondYellow {
				entry.Detail = "second yellow"
			}
		case ev.Substitution != nil:
			entry.Player = ev.Substitution.PlayerIn
			entry.PlayerOut = ev.Substitution.PlayerOut
		}
		detail.Timeline = append(detail.Timeline, entry)
	}

	for _, w := range rec.Warnings {
		detail.Warnings = append(detail.Warnings, w.String())
	}
	return detail
}
