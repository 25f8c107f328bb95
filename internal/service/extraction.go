package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"penya-tracker/internal/config"
	"penya-tracker/internal/domain"
	"penya-tracker/internal/fetcher"
	"penya-tracker/internal/parser"
	"penya-tracker/internal/reconcile"
	"penya-tracker/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	failureParse     = "parse"
	failureStore     = "store"
	failureCancelled = "cancelled"
)

// RunRecorder persists the history of extraction runs.
type RunRecorder interface {
	Start(ctx context.Context, season domain.SeasonDescriptor, startedAt time.Time) (string, error)
	UpdateState(ctx context.Context, runID string, state domain.RunState) error
	SaveRound(ctx context.Context, runID string, summary domain.RoundSummary) error
	Finish(ctx context.Context, runID string, state domain.RunState, finishedAt time.Time, runErr error) error
}

type ExtractOptions struct {
	// Season names a registry entry; empty means the active season.
	Season string
	// Rounds to process; empty means every round of the season.
	Rounds []int
	// Force re-extracts sheets already marked extracted.
	Force bool
	// SkipUnify leaves the unified tables untouched.
	SkipUnify bool
}

type ExtractionService struct {
	cfg        *config.Config
	fetcher    fetcher.Fetcher
	urls       *fetcher.URLBuilder
	policy     fetcher.RetryPolicy
	reconciler *reconcile.Reconciler
	store      *repository.FileStore
	unifier    *UnifyService
	runs       RunRecorder
	logger     zerolog.Logger

	mu    sync.RWMutex
	state domain.RunState
}

func NewExtractionService(
	cfg *config.Config,
	f fetcher.Fetcher,
	urls *fetcher.URLBuilder,
	reconciler *reconcile.Reconciler,
	store *repository.FileStore,
	unifier *UnifyService,
	runs RunRecorder,
	logger zerolog.Logger,
) *ExtractionService {
	return &ExtractionService{
		cfg:        cfg,
		fetcher:    f,
		urls:       urls,
		policy:     fetcher.NewRetryPolicy(cfg),
		reconciler: reconciler,
		store:      store,
		unifier:    unifier,
		runs:       runs,
		logger:     logger,
		state:      domain.StateIdle,
	}
}

func (s *ExtractionService) State() domain.RunState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *ExtractionService) setState(ctx context.Context, runID string, state domain.RunState) {
	s.mu.Lock()
	changed := s.state != state
	s.state = state
	s.mu.Unlock()

	if !changed {
		return
	}
	s.logger.Debug().Str("state", string(state)).Msg("run state changed")
	if runID != "" && s.runs != nil {
		if err := s.runs.UpdateState(context.WithoutCancel(ctx), runID, state); err != nil {
			s.logger.Warn().Err(err).Str("run_id", runID).Msg("failed to record run state")
		}
	}
}

// Extract runs the pipeline for one season: rounds in ascending order, sheets fetched
// with bounded concurrency and retried on transient failures, each sheet reconciled and
// stored on its own. Sheet and round failures are reported in the summaries; the error
// return is reserved for configuration problems, cancellation and unify failures.
func (s *ExtractionService) Extract(ctx context.Context, opts ExtractOptions) (*domain.Run, error) {
	season, err := s.cfg.ResolveSeason(opts.Season)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve season: %w", err)
	}
	rounds, err := selectRounds(season, opts.Rounds)
	if err != nil {
		return nil, err
	}

	logger := s.logger.With().Str("season", season.Key()).Logger()
	store := s.store.Season(season)

	index, err := store.LoadIndex()
	if err != nil {
		return nil, fmt.Errorf("failed to load index: %w", err)
	}
	if _, err := store.SyncExtracted(index); err != nil {
		return nil, fmt.Errorf("failed to sync index: %w", err)
	}

	run := &domain.Run{
		SeasonKey:  season.Key(),
		SeasonName: season.Name,
		StartedAt:  time.Now().UTC(),
	}
	if s.runs != nil {
		id, err := s.runs.Start(ctx, season, run.StartedAt)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to record run start")
		}
		run.ID = id
	}
	logger.Info().Str("run_id", run.ID).Ints("rounds", rounds).Bool("force", opts.Force).Msg("extraction started")

	runErr := func() error {
		for _, round := range rounds {
			if err := ctx.Err(); err != nil {
				return err
			}
			summary, idx, err := s.extractRound(ctx, run.ID, store, index, round, opts.Force)
			index = idx
			run.Rounds = append(run.Rounds, summary)
			s.recordRound(ctx, run.ID, summary)
			if err != nil {
				return err
			}
		}

		if opts.SkipUnify || s.unifier == nil {
			return nil
		}
		s.setState(ctx, run.ID, domain.StateUnifying)
		if _, err := s.unifier.Unify(ctx, season); err != nil {
			return fmt.Errorf("failed to unify season: %w", err)
		}
		return nil
	}()

	run.State = domain.StateReady
	switch {
	case errors.Is(runErr, context.Canceled), errors.Is(runErr, context.DeadlineExceeded):
		run.State = domain.StateCancelled
	case runErr != nil:
		run.State = domain.StateFailed
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	finished := time.Now().UTC()
	run.FinishedAt = &finished
	s.setState(ctx, run.ID, run.State)

	if run.ID != "" && s.runs != nil {
		if err := s.runs.Finish(context.WithoutCancel(ctx), run.ID, run.State, finished, runErr); err != nil {
			logger.Warn().Err(err).Msg("failed to record run end")
		}
	}

	logger.Info().
		Str("run_id", run.ID).
		Str("state", string(run.State)).
		Dur("took", finished.Sub(run.StartedAt)).
		Msg("extraction finished")
	return run, runErr
}

func (s *ExtractionService) recordRound(ctx context.Context, runID string, summary domain.RoundSummary) {
	if runID == "" || s.runs == nil {
		return
	}
	if err := s.runs.SaveRound(context.WithoutCancel(ctx), runID, summary); err != nil {
		s.logger.Warn().Err(err).Int("round", summary.Round).Msg("failed to record round summary")
	}
}

// selectRounds validates the requested rounds against the season and sorts them.
func selectRounds(season domain.SeasonDescriptor, requested []int) ([]int, error) {
	if len(requested) == 0 {
		rounds := make([]int, season.Rounds)
		for i := range rounds {
			rounds[i] = i + 1
		}
		return rounds, nil
	}

	seen := make(map[int]bool, len(requested))
	var rounds []int
	for _, r := range requested {
		if r < 1 || r > season.Rounds {
			return nil, fmt.Errorf("%w: round %d outside 1..%d", config.ErrInvalidSeason, r, season.Rounds)
		}
		if !seen[r] {
			seen[r] = true
			rounds = append(rounds, r)
		}
	}
	sort.Ints(rounds)
	return rounds, nil
}

type sheetResult struct {
	match    domain.Match
	sheet    *parser.Sheet
	attempts int
	err      error
}

func sheetIdentity(m domain.Match) string {
	return fmt.Sprintf("sheet %s (%s)", m.SheetCode, m.Key())
}

// extractRound scans one round index, then fetches, reconciles and stores its pending
// sheets. The returned index carries the flags flipped in this round. Only cancellation
// is returned as an error.
func (s *ExtractionService) extractRound(ctx context.Context, runID string, store *repository.SeasonStore, index []domain.Match, round int, force bool) (domain.RoundSummary, []domain.Match, error) {
	logger := s.logger.With().Str("season", store.Descriptor().Key()).Int("round", round).Logger()
	summary := domain.RoundSummary{Round: round}
	season := store.Descriptor()
	indexRound := round

	s.setState(ctx, runID, domain.StateScanningRounds)
	roundURL := s.urls.RoundURL(season, round)
	page, attempts, err := fetcher.Retry(ctx, s.policy, logger, func(ctx context.Context) (*parser.RoundPage, error) {
		html, err := s.fetcher.Fetch(ctx, roundURL)
		if err != nil {
			return nil, err
		}
		return parser.ParseRound(html, season, round, func(code string) string {
			return s.urls.SheetURL(season, code)
		})
	})
	if err != nil {
		if ctx.Err() != nil {
			return summary, index, ctx.Err()
		}
		// the round is isolated: sheets already known from earlier scans are still tried
		summary.IndexError = err.Error()
		logger.Error().Err(err).Int("attempts", attempts).Msg("failed to scan round index")
	} else {
		if page.Round != round {
			// the page header wins: its matches are indexed under the round it names
			logger.Warn().Int("header_round", page.Round).Msg("round page header disagrees with requested round")
			indexRound = page.Round
		}
		index = repository.MergeRound(index, page.Matches)
		if err := store.SaveIndex(index); err != nil {
			summary.IndexError = err.Error()
			logger.Error().Err(err).Msg("failed to save index")
		}
	}

	var targets []domain.Match
	for _, m := range index {
		if m.Round != indexRound {
			continue
		}
		if m.SheetCode == "" || (m.Extracted && !force) {
			summary.Skipped++
			continue
		}
		targets = append(targets, m)
	}
	summary.Attempted = len(targets)
	if len(targets) == 0 {
		logger.Info().Int("skipped", summary.Skipped).Msg("nothing to extract in round")
		return summary, index, nil
	}

	s.setState(ctx, runID, domain.StateFetchingSheets)
	results := s.fetchSheets(ctx, logger, targets)

	s.setState(ctx, runID, domain.StateReconciling)
	for _, res := range results {
		if res.attempts > 1 {
			summary.Retried++
		}
		if res.err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, failureOf(res))
			continue
		}

		rec := s.reconciler.Reconcile(res.sheet, res.match)
		if err := store.SaveMatch(rec); err != nil {
			summary.Failed++
			summary.Failures = append(summary.Failures, domain.SheetFailure{
				Round: res.match.Round, Sheet: sheetIdentity(res.match), Kind: failureStore, Attempts: res.attempts, Error: err.Error(),
			})
			logger.Error().Err(err).Str("sheet_code", res.match.SheetCode).Msg("failed to store match")
			continue
		}

		repository.MarkExtracted(index, res.match.Key())
		if err := store.SaveIndex(index); err != nil {
			logger.Error().Err(err).Msg("failed to save index")
		}
		summary.Succeeded++
		for _, w := range rec.Warnings {
			logger.Warn().Str("sheet_code", res.match.SheetCode).Str("kind", string(w.Kind)).Str("player", w.Player).Msg(w.Detail)
		}
	}

	logger.Info().
		Int("attempted", summary.Attempted).
		Int("succeeded", summary.Succeeded).
		Int("retried", summary.Retried).
		Int("failed", summary.Failed).
		Int("skipped", summary.Skipped).
		Msg("round extracted")

	return summary, index, ctx.Err()
}

// fetchSheets fetches and parses the target sheets with at most FetchConcurrency in
// flight. Results keep the order of targets. Sheets not started before cancellation are
// reported as cancelled.
func (s *ExtractionService) fetchSheets(ctx context.Context, logger zerolog.Logger, targets []domain.Match) []sheetResult {
	results := make([]sheetResult, len(targets))

	g := new(errgroup.Group)
	g.SetLimit(s.cfg.FetchConcurrency)
	for i, m := range targets {
		g.Go(func() error {
			results[i] = s.fetchSheet(ctx, logger, m)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (s *ExtractionService) fetchSheet(ctx context.Context, logger zerolog.Logger, m domain.Match) sheetResult {
	res := sheetResult{match: m}
	if err := ctx.Err(); err != nil {
		res.err = err
		return res
	}

	sheetLogger := logger.With().Str("sheet_code", m.SheetCode).Logger()
	res.sheet, res.attempts, res.err = fetcher.Retry(ctx, s.policy, sheetLogger, func(ctx context.Context) (*parser.Sheet, error) {
		html, err := s.fetcher.Fetch(ctx, m.SheetURL)
		if err != nil {
			return nil, err
		}
		return parser.ParseSheet(html, m)
	})
	if res.err != nil {
		sheetLogger.Error().Err(res.err).Int("attempts", res.attempts).Msg("sheet failed")
	}
	return res
}

func failureOf(res sheetResult) domain.SheetFailure {
	f := domain.SheetFailure{
		Round:    res.match.Round,
		Sheet:    sheetIdentity(res.match),
		Attempts: res.attempts,
		Error:    res.err.Error(),
	}

	var parseErr *parser.ParseError
	switch {
	case res.attempts == 0, errors.Is(res.err, context.Canceled):
		f.Kind = failureCancelled
	case errors.As(res.err, &parseErr):
		f.Kind = failureParse
	default:
		f.Kind = string(fetcher.KindOf(res.err))
		if f.Kind == "" {
			f.Kind = string(fetcher.KindNetwork)
		}
	}
	return f
}
