package fetcher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func fastPolicy(retries int) RetryPolicy {
	return RetryPolicy{MaxRetries: retries, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	doc, attempts, err := Retry(context.Background(), fastPolicy(3), zerolog.Nop(), func(ctx context.Context) ([]byte, error) {
		calls++
		if calls < 3 {
			return nil, &FetchError{Kind: KindEmptyDocument, URL: "u"}
		}
		return []byte("<html></html>"), nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, attempts)
	require.Equal(t, "<html></html>", string(doc))
}

func TestRetryStopsOnPermanentError(t *testing.T) {
	_, attempts, err := Retry(context.Background(), fastPolicy(3), zerolog.Nop(), func(ctx context.Context) (int, error) {
		return 0, &FetchError{Kind: KindHTTPStatus, URL: "u", Status: 404}
	})
	require.Error(t, err)
	require.Equal(t, 1, attempts)
	require.Equal(t, KindHTTPStatus, KindOf(err))
}

func TestRetryBudgetIsBounded(t *testing.T) {
	_, attempts, err := Retry(context.Background(), fastPolicy(50), zerolog.Nop(), func(ctx context.Context) (int, error) {
		return 0, &FetchError{Kind: KindNetwork, URL: "u", Err: errors.New("connection reset")}
	})
	require.Error(t, err)
	// one initial attempt plus at most five retries
	require.Equal(t, 6, attempts)
}

func TestFetchErrorRetryable(t *testing.T) {
	testCases := []struct {
		err      *FetchError
		expected bool
	}{
		{err: &FetchError{Kind: KindNetwork}, expected: true},
		{err: &FetchError{Kind: KindTimeout}, expected: true},
		{err: &FetchError{Kind: KindEmptyDocument}, expected: true},
		{err: &FetchError{Kind: KindHTTPStatus, Status: 503}, expected: true},
		{err: &FetchError{Kind: KindHTTPStatus, Status: 429}, expected: true},
		{err: &FetchError{Kind: KindHTTPStatus, Status: 404}, expected: false},
	}
	for _, test := range testCases {
		require.Equal(t, test.expected, IsRetryable(test.err), test.err.Error())
	}
	require.False(t, IsRetryable(errors.New("plain")))
}
