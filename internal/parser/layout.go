package parser

import (
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Selectors for the federation markup. The pages are rendered client-side, so these only
// hold once the DOM has settled.
const (
	roundHeaderSelector = ".jornada, h1, h2, h3"
	matchBlockSelector  = ".partido"
	teamNameSelector    = ".equipo"

	sheetHomeSelector   = ".equipo-local"
	sheetAwaySelector   = ".equipo-visitante"
	sheetRoundSelector  = ".jornada"
	rosterTableSelector = "table.alineacion"
)

type marker int

const (
	markerNone marker = iota
	markerPenalty
	markerGoal
	markerRed
	markerYellow
	markerSubIn
	markerSubOut
)

func (m marker) String() string {
	switch m {
	case markerPenalty:
		return "penalty goal"
	case markerGoal:
		return "open-play goal"
	case markerRed:
		return "red card"
	case markerYellow:
		return "yellow card"
	case markerSubIn:
		return "substitution in"
	case markerSubOut:
		return "substitution out"
	}
	return "none"
}

// sentinel matches either an image reference (src basename, alt or title containing one
// of images) or a cell whose whole text equals one of texts.
type sentinel struct {
	marker marker
	images []string
	texts  []string
}

// Order matters: the penalty sentinel must win over the plain goal one.
var sentinels = []sentinel{
	{marker: markerPenalty, images: []string{"gol_penalti", "golpenalti", "penalti", "penalty"}, texts: []string{"gol de penalti", "gol penalti", "penalti", "penalty goal", "penalty"}},
	{marker: markerGoal, images: []string{"gol.", "gol_", "balon", "goal"}, texts: []string{"gol", "goal", "open-play goal"}},
	{marker: markerRed, images: []string{"tarjeta_roja", "roja", "red_card", "red-card"}, texts: []string{"roja", "tarjeta roja", "red card", "red"}},
	{marker: markerYellow, images: []string{"tarjeta_amarilla", "amarilla", "yellow_card", "yellow-card"}, texts: []string{"amarilla", "tarjeta amarilla", "yellow card", "yellow"}},
	{marker: markerSubIn, images: []string{"entra", "sube", "sub_in", "sub-in"}, texts: []string{"entra", "in"}},
	{marker: markerSubOut, images: []string{"sale", "baja", "sub_out", "sub-out"}, texts: []string{"sale", "out"}},
}

// rowMarker classifies one table row. The second return value is the index of the cell
// holding a textual sentinel, or -1.
func rowMarker(row *goquery.Selection) (marker, int) {
	sources, labels := imageRefs(row)
	for _, s := range sentinels {
		for _, src := range sources {
			if containsAny(src, s.images) {
				return s.marker, -1
			}
		}
		for _, label := range labels {
			if equalsAny(label, s.texts) || containsAny(strings.ReplaceAll(label, " ", "_"), s.images) {
				return s.marker, -1
			}
		}
	}

	cells := row.Find("td")
	for _, s := range sentinels {
		found := -1
		cells.EachWithBreak(func(i int, td *goquery.Selection) bool {
			if equalsAny(strings.ToLower(cellText(td)), s.texts) {
				found = i
				return false
			}
			return true
		})
		if found >= 0 {
			return s.marker, found
		}
	}
	return markerNone, -1
}

// imageRefs returns the lower-cased src basenames and alt/title labels of a row's images.
func imageRefs(row *goquery.Selection) (sources, labels []string) {
	row.Find("img").Each(func(_ int, img *goquery.Selection) {
		if src := strings.TrimSpace(img.AttrOr("src", "")); src != "" {
			sources = append(sources, strings.ToLower(path.Base(src)))
		}
		for _, attr := range []string{"alt", "title"} {
			if v := strings.TrimSpace(img.AttrOr(attr, "")); v != "" {
				labels = append(labels, strings.ToLower(v))
			}
		}
	})
	return sources, labels
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func equalsAny(s string, candidates []string) bool {
	for _, c := range candidates {
		if s == c {
			return true
		}
	}
	return false
}
