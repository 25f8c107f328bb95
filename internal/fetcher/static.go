package fetcher

import (
	"context"
	"errors"
	"time"

	"penya-tracker/internal/config"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36"

// StaticFetcher fetches raw HTML without running page scripts. It is used for cached
// copies and for sites that serve the markup server-side.
type StaticFetcher struct {
	client  *fasthttp.Client
	timeout time.Duration
	logger  zerolog.Logger
}

func NewStaticFetcher(cfg *config.Config, logger zerolog.Logger) *StaticFetcher {
	return &StaticFetcher{
		client: &fasthttp.Client{
			MaxConnsPerHost:     cfg.FetchConcurrency,
			ReadTimeout:         cfg.FetchTimeout,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
			// no cookie jar: fasthttp.Client never persists cookies between calls
		},
		timeout: cfg.FetchTimeout,
		logger:  logger.With().Str("component", "static_fetcher").Logger(),
	}
}

func (f *StaticFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "es-ES,es;q=0.9,ca;q=0.8")

	deadline, ok := ctx.Deadline()
	if !ok || time.Until(deadline) > f.timeout {
		deadline = time.Now().Add(f.timeout)
	}

	if err := f.client.DoDeadline(req, resp, deadline); err != nil {
		if errors.Is(err, fasthttp.ErrTimeout) {
			return nil, &FetchError{Kind: KindTimeout, URL: url, Err: err}
		}
		return nil, classify(url, err)
	}

	if code := resp.StatusCode(); code != fasthttp.StatusOK {
		return nil, &FetchError{Kind: KindHTTPStatus, URL: url, Status: code}
	}

	body := append([]byte(nil), resp.Body()...)
	if !hasBody(body) {
		return nil, &FetchError{Kind: KindEmptyDocument, URL: url}
	}

	f.logger.Debug().Str("url", url).Int("bytes", len(body)).Msg("page fetched")
	return body, nil
}
