package parser

import (
	"regexp"
	"strconv"
	"strings"

	"penya-tracker/internal/domain"

	"github.com/PuerkitoBio/goquery"
)

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	// (23') (23) (45+2') (90 + 3´)
	minuteRegex   = regexp.MustCompile(`^\(\s*(\d{1,3})\s*(?:\+\s*(\d{1,2}))?\s*['´’′]?\s*\)\s*(.*)$`)
	roundRegex    = regexp.MustCompile(`(?i)jornada\s*(?:n[º°o.]*\s*)?(\d{1,3})`)
	digitsRegex   = regexp.MustCompile(`\d+`)
	rosterMarkers = regexp.MustCompile(`(?i)\s*\((?:c|cap|p|por)\)\s*$`)
)

func cellText(sel *goquery.Selection) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(sel.Text(), " "))
}

// splitMinute parses a parenthesised minute prefix and returns the text after the
// closing parenthesis. Added time is summed into the minute.
func splitMinute(text string) (int, string, bool) {
	m := minuteRegex.FindStringSubmatch(strings.TrimSpace(text))
	if m == nil {
		return 0, "", false
	}
	minute, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, "", false
	}
	if m[2] != "" {
		added, err := strconv.Atoi(m[2])
		if err != nil {
			return 0, "", false
		}
		minute += added
	}
	return minute, strings.TrimSpace(m[3]), true
}

func findRound(text string) (int, bool) {
	m := roundRegex.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func shirtNumber(text string) int {
	d := digitsRegex.FindString(text)
	if d == "" {
		return 0
	}
	n, _ := strconv.Atoi(d)
	return n
}

func playerName(text string) string {
	return domain.NormalizePlayer(rosterMarkers.ReplaceAllString(text, ""))
}

func hasLetter(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			continue
		}
		if strings.ContainsRune(" ,.-'()´’", r) {
			continue
		}
		return true
	}
	return false
}
