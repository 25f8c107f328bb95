package fetcher

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"penya-tracker/internal/config"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
)

// Renderer loads pages in headless Chrome; the federation pages only produce the
// match markup after client-side script runs.
type Renderer struct {
	chromeURL string
	wait      time.Duration
	timeout   time.Duration
	logger    zerolog.Logger
}

func NewRenderer(cfg *config.Config, logger zerolog.Logger) *Renderer {
	return &Renderer{
		chromeURL: cfg.ChromeURL,
		wait:      cfg.RenderWait,
		timeout:   cfg.FetchTimeout,
		logger:    logger.With().Str("component", "renderer").Logger(),
	}
}

func (r *Renderer) Fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	// a fresh browser per call keeps fetches stateless: no cookies or cache survive
	allocCtx, cancelAlloc := r.allocator(ctx)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) { r.logger.Debug().Msgf(format, args...) }),
		chromedp.WithErrorf(func(format string, args ...any) { r.logger.Debug().Msgf(format, args...) }),
	)
	defer cancelBrowser()

	var status atomic.Int64
	chromedp.ListenTarget(browserCtx, func(ev any) {
		if e, ok := ev.(*network.EventResponseReceived); ok && e.Type == network.ResourceTypeDocument {
			status.Store(e.Response.Status)
		}
	})

	start := time.Now()
	var html string
	err := chromedp.Run(browserCtx,
		network.Enable(),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(r.wait),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		r.logger.Debug().Err(err).Str("url", url).Msg("render failed")
		if ctx.Err() != nil {
			return nil, classify(url, ctx.Err())
		}
		return nil, classify(url, err)
	}

	if code := int(status.Load()); code != 0 && (code < http.StatusOK || code >= http.StatusMultipleChoices) {
		return nil, &FetchError{Kind: KindHTTPStatus, URL: url, Status: code}
	}

	doc := []byte(html)
	if !hasBody(doc) {
		return nil, &FetchError{Kind: KindEmptyDocument, URL: url}
	}

	r.logger.Debug().
		Str("url", url).
		Int("bytes", len(doc)).
		Dur("duration", time.Since(start)).
		Msg("page rendered")
	return doc, nil
}

func (r *Renderer) allocator(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.chromeURL != "" {
		return chromedp.NewRemoteAllocator(ctx, r.chromeURL)
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
	)
	return chromedp.NewExecAllocator(ctx, opts...)
}
