package server

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"strconv"

	"penya-tracker/internal/config"
	"penya-tracker/internal/middleware"
	"penya-tracker/internal/repository"
	"penya-tracker/internal/service"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// Server exposes the unified dataset and the run history as a read-only JSON API.
type Server struct {
	leagueSvc      *service.LeagueService
	playerSvc      *service.PlayerService
	matchDetailSvc *service.MatchDetailService
	runSvc         *service.RunService
	logger         zerolog.Logger
}

func NewServer(
	leagueSvc *service.LeagueService,
	playerSvc *service.PlayerService,
	matchDetailSvc *service.MatchDetailService,
	runSvc *service.RunService,
	logger zerolog.Logger,
) *Server {
	return &Server{
		leagueSvc:      leagueSvc,
		playerSvc:      playerSvc,
		matchDetailSvc: matchDetailSvc,
		runSvc:         runSvc,
		logger:         logger,
	}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestID(s.logger))

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/seasons", s.getSeasons).Methods(http.MethodGet)
	api.HandleFunc("/league", s.getLeague).Methods(http.MethodGet)
	api.HandleFunc("/league/teams/{team}", s.getTeam).Methods(http.MethodGet)
	api.HandleFunc("/league/teams/{team}/squad", s.getSquad).Methods(http.MethodGet)
	api.HandleFunc("/players/{id}", s.getPlayer).Methods(http.MethodGet)
	api.HandleFunc("/rounds", s.getRounds).Methods(http.MethodGet)
	api.HandleFunc("/rounds/{round:[0-9]+}/matches/{team}", s.getMatch).Methods(http.MethodGet)
	api.HandleFunc("/runs", s.getRuns).Methods(http.MethodGet)
	api.HandleFunc("/runs/{id}", s.getRun).Methods(http.MethodGet)
	return r
}

func (s *Server) getSeasons(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"seasons": s.leagueSvc.Seasons()})
}

func (s *Server) getLeague(w http.ResponseWriter, r *http.Request) {
	l, season, err := s.leagueSvc.League(r.URL.Query().Get("season"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"season": season, "teams": l.Teams})
}

func (s *Server) getTeam(w http.ResponseWriter, r *http.Request) {
	report, err := s.leagueSvc.Team(r.URL.Query().Get("season"), mux.Vars(r)["team"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) getSquad(w http.ResponseWriter, r *http.Request) {
	squad, err := s.playerSvc.Squad(r.Context(), r.URL.Query().Get("season"), mux.Vars(r)["team"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"players": squad})
}

func (s *Server) getPlayer(w http.ResponseWriter, r *http.Request) {
	p, err := s.playerSvc.Player(r.Context(), r.URL.Query().Get("season"), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) getRounds(w http.ResponseWriter, r *http.Request) {
	rounds, season, err := s.leagueSvc.Rounds(r.URL.Query().Get("season"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"season": season, "rounds": rounds})
}

func (s *Server) getMatch(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	round, _ := strconv.Atoi(vars["round"])
	detail, err := s.matchDetailSvc.GetMatch(r.URL.Query().Get("season"), round, vars["team"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) getRuns(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := s.runSvc.Recent(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.runSvc.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, config.ErrInvalidSeason), errors.Is(err, config.ErrNoActiveSeason):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrTeamNotFound),
		errors.Is(err, service.ErrMatchNotFound),
		errors.Is(err, repository.ErrPlayerNotFound),
		errors.Is(err, repository.ErrRunNotFound),
		errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, status, map[string]string{
		"error":      err.Error(),
		"request_id": middleware.GetRequestID(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
