package fetcher

import (
	"bytes"
	"context"
	"errors"
	"strings"

	"penya-tracker/internal/config"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog"
)

// Fetcher returns the fully rendered HTML of one URL. Implementations hold no state
// between calls.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// New picks the renderer or the static client according to FETCH_MODE.
func New(cfg *config.Config, logger zerolog.Logger) Fetcher {
	if cfg.FetchMode == config.FetchModeStatic {
		return NewStaticFetcher(cfg, logger)
	}
	return NewRenderer(cfg, logger)
}

// hasBody reports whether the document has any content inside <body>.
func hasBody(doc []byte) bool {
	if len(bytes.TrimSpace(doc)) == 0 {
		return false
	}
	parsed, err := goquery.NewDocumentFromReader(bytes.NewReader(doc))
	if err != nil {
		return false
	}
	body := parsed.Find("body")
	if body.Length() == 0 {
		return false
	}
	return strings.TrimSpace(body.Text()) != "" || body.Children().Length() > 0
}

func classify(url string, err error) *FetchError {
	if errors.Is(err, context.DeadlineExceeded) {
		return &FetchError{Kind: KindTimeout, URL: url, Err: err}
	}
	return &FetchError{Kind: KindNetwork, URL: url, Err: err}
}
