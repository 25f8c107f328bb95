package parser

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"penya-tracker/internal/domain"

	"github.com/PuerkitoBio/goquery"
)

type RoundPage struct {
	// Round comes from the page header when present, otherwise from the caller.
	Round       int
	FromHeader  bool
	Matches     []domain.Match
	SkippedRows int
}

// ParseRound extracts the matches of one round index in page order. sheetURL builds the
// canonical sheet URL for a code so nothing but CodActa is read back from the links.
func ParseRound(html []byte, season domain.SeasonDescriptor, round int, sheetURL func(code string) string) (*RoundPage, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse round %d: %w", round, err)
	}

	page := &RoundPage{Round: round}
	doc.Find(roundHeaderSelector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if n, ok := findRound(cellText(s)); ok {
			page.Round = n
			page.FromHeader = true
			return false
		}
		return true
	})

	blocks := doc.Find(matchBlockSelector)
	if blocks.Length() == 0 {
		return nil, &ParseError{Sheet: fmt.Sprintf("round %d", round), Reason: "no match blocks found", Incomplete: true}
	}

	seen := make(map[domain.MatchKey]bool)
	blocks.Each(func(_ int, block *goquery.Selection) {
		var teams []string
		block.Find(teamNameSelector).Each(func(_ int, s *goquery.Selection) {
			if t := domain.CanonicalTeam(cellText(s)); t != "" {
				teams = append(teams, t)
			}
		})
		if len(teams) < 2 {
			page.SkippedRows++
			return
		}

		match := domain.Match{
			Season: season,
			Round:  page.Round,
			Home:   teams[0],
			Away:   teams[1],
		}
		if code := sheetCode(block); code != "" {
			match.SheetCode = code
			match.SheetURL = sheetURL(code)
		}

		if seen[match.Key()] {
			page.SkippedRows++
			return
		}
		seen[match.Key()] = true
		page.Matches = append(page.Matches, match)
	})

	return page, nil
}

// sheetCode returns the CodActa of the block's match-sheet link, if any.
func sheetCode(block *goquery.Selection) string {
	code := ""
	block.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href := a.AttrOr("href", "")
		label := strings.ToLower(cellText(a) + " " + a.AttrOr("title", ""))
		if !strings.Contains(strings.ToLower(href), "codacta") && !strings.Contains(label, "acta") {
			return true
		}
		u, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return true
		}
		for key, values := range u.Query() {
			if strings.EqualFold(key, "CodActa") && len(values) > 0 && strings.TrimSpace(values[0]) != "" {
				code = strings.TrimSpace(values[0])
				return false
			}
		}
		return true
	})
	return code
}
