package fetcher

import (
	"net/url"
	"strconv"
	"strings"

	"penya-tracker/internal/config"
	"penya-tracker/internal/domain"
)

// URLBuilder fills the round and sheet URL templates. Placeholders are {base},
// {competition}, {group}, {season}, {round} and {code}.
type URLBuilder struct {
	base          string
	roundTemplate string
	sheetTemplate string
}

func NewURLBuilder(cfg *config.Config) *URLBuilder {
	return &URLBuilder{
		base:          cfg.BaseURL,
		roundTemplate: cfg.RoundTemplate,
		sheetTemplate: cfg.SheetTemplate,
	}
}

func (b *URLBuilder) Base() string {
	return b.base
}

func (b *URLBuilder) RoundURL(season domain.SeasonDescriptor, round int) string {
	return b.fill(b.roundTemplate, season, "{round}", strconv.Itoa(round))
}

func (b *URLBuilder) SheetURL(season domain.SeasonDescriptor, code string) string {
	return b.fill(b.sheetTemplate, season, "{code}", url.QueryEscape(code))
}

func (b *URLBuilder) fill(template string, season domain.SeasonDescriptor, key, value string) string {
	return strings.NewReplacer(
		"{base}", b.base,
		"{competition}", strconv.Itoa(season.Competition),
		"{group}", strconv.Itoa(season.Group),
		"{season}", strconv.Itoa(season.Season),
		key, value,
	).Replace(template)
}

// Resolve makes href absolute against the site base.
func (b *URLBuilder) Resolve(href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	base, err := url.Parse(b.base + "/")
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
