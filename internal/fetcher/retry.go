package fetcher

import (
	"context"
	"time"

	"penya-tracker/internal/config"
	"penya-tracker/internal/constants"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
)

type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

func NewRetryPolicy(cfg *config.Config) RetryPolicy {
	return RetryPolicy{
		MaxRetries: cfg.FetchRetries,
		BaseDelay:  cfg.RetryBaseDelay,
		MaxDelay:   constants.MaxRetryDelay,
	}
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.MaxInterval = p.MaxDelay
	b.MaxElapsedTime = 0

	retries := p.MaxRetries
	if retries > constants.MaxFetchRetries {
		retries = constants.MaxFetchRetries
	}
	if retries < 0 {
		retries = 0
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)
}

// Retry runs op until it succeeds, returns an error IsRetryable rejects, or the retry
// budget is spent. It reports how many attempts were made.
func Retry[T any](ctx context.Context, p RetryPolicy, logger zerolog.Logger, op func(ctx context.Context) (T, error)) (T, int, error) {
	var (
		result   T
		attempts int
	)

	err := backoff.RetryNotify(func() error {
		attempts++
		v, err := op(ctx)
		if err != nil {
			if !IsRetryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		result = v
		return nil
	}, p.backOff(ctx), func(err error, next time.Duration) {
		logger.Warn().
			Err(err).
			Int("attempt", attempts).
			Dur("retry_in", next).
			Msg("attempt failed, retrying")
	})

	return result, attempts, err
}
