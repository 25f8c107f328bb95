package parser

import (
	"bytes"
	"fmt"

	"penya-tracker/internal/constants"
	"penya-tracker/internal/domain"

	"github.com/PuerkitoBio/goquery"
)

type RosterLine struct {
	ShirtNumber int
	Player      string
}

// Sheet is the raw content of one match sheet, events in document order.
type Sheet struct {
	Round int
	Home  string
	Away  string

	HomeStarters []RosterLine
	HomeSubs     []RosterLine
	AwayStarters []RosterLine
	AwaySubs     []RosterLine

	Goals         []domain.GoalEvent
	Cards         []domain.CardEvent
	Substitutions []domain.Substitution

	Warnings []domain.Warning
}

// ParseSheet extracts rosters and events from one rendered match sheet. ref supplies the
// identity used in errors and the fallbacks when the sheet header is missing.
func ParseSheet(html []byte, ref domain.Match) (*Sheet, error) {
	id := sheetID(ref)

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, &ParseError{Sheet: id, Reason: err.Error()}
	}

	tables := doc.Find(rosterTableSelector)
	if tables.Length() == 0 {
		return nil, &ParseError{Sheet: id, Reason: "no roster tables found", Incomplete: true}
	}
	if tables.Length() < 4 {
		return nil, &ParseError{Sheet: id, Reason: fmt.Sprintf("expected 4 roster tables, found %d", tables.Length())}
	}

	sheet := &Sheet{Round: ref.Round}
	if n, ok := headerRound(doc); ok {
		sheet.Round = n
	}

	sheet.Home = domain.CanonicalTeam(cellText(doc.Find(sheetHomeSelector).First()))
	sheet.Away = domain.CanonicalTeam(cellText(doc.Find(sheetAwaySelector).First()))
	if sheet.Home == "" {
		sheet.Home = domain.CanonicalTeam(ref.Home)
	}
	if sheet.Away == "" {
		sheet.Away = domain.CanonicalTeam(ref.Away)
	}
	if sheet.Home == "" || sheet.Away == "" {
		return nil, &ParseError{Sheet: id, Reason: "team names not found"}
	}

	if tables.Length() > 4 {
		sheet.warn(domain.WarnRosterLayout, "", fmt.Sprintf("found %d roster tables, using the first 4", tables.Length()))
	}
	targets := []*[]RosterLine{&sheet.HomeStarters, &sheet.HomeSubs, &sheet.AwayStarters, &sheet.AwaySubs}
	tables.Slice(0, 4).Each(func(i int, table *goquery.Selection) {
		*targets[i] = rosterLines(table)
	})

	if n := len(sheet.HomeStarters); n != constants.ExpectedStarters {
		sheet.warn(domain.WarnStartersCount, "", fmt.Sprintf("%s lists %d starters", sheet.Home, n))
	}
	if n := len(sheet.AwayStarters); n != constants.ExpectedStarters {
		sheet.warn(domain.WarnStartersCount, "", fmt.Sprintf("%s lists %d starters", sheet.Away, n))
	}

	sheet.scanEvents(doc)
	return sheet, nil
}

func sheetID(ref domain.Match) string {
	if ref.SheetCode != "" {
		return fmt.Sprintf("sheet %s (%s)", ref.SheetCode, ref.Key())
	}
	return fmt.Sprintf("sheet %s", ref.Key())
}

func headerRound(doc *goquery.Document) (int, bool) {
	for _, selector := range []string{sheetRoundSelector, "h1, h2, h3"} {
		var (
			round int
			found bool
		)
		doc.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			round, found = findRound(cellText(s))
			return !found
		})
		if found {
			return round, true
		}
	}
	return 0, false
}

func rosterLines(table *goquery.Selection) []RosterLine {
	var lines []RosterLine
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		var line RosterLine
		switch cells.Length() {
		case 0:
			return
		case 1:
			line.Player = playerName(cellText(cells.First()))
		default:
			line.ShirtNumber = shirtNumber(cellText(cells.Eq(0)))
			line.Player = playerName(cellText(cells.Eq(1)))
		}
		if !hasLetter(line.Player) {
			return
		}
		lines = append(lines, line)
	})
	return lines
}

func (s *Sheet) warn(kind domain.WarningKind, player, detail string) {
	s.Warnings = append(s.Warnings, domain.Warning{Kind: kind, Player: player, Detail: detail})
}

// teamOf resolves the team of a player from the sheet's rosters. Names listed on both
// sides resolve to the home team.
func (s *Sheet) teamOf(player string) string {
	key := domain.PlayerKey(player)
	for _, side := range []struct {
		team  string
		lines [][]RosterLine
	}{
		{team: s.Home, lines: [][]RosterLine{s.HomeStarters, s.HomeSubs}},
		{team: s.Away, lines: [][]RosterLine{s.AwayStarters, s.AwaySubs}},
	} {
		for _, lines := range side.lines {
			for _, l := range lines {
				if domain.PlayerKey(l.Player) == key {
					return side.team
				}
			}
		}
	}
	return ""
}

// scanEvents walks every non-roster row in document order.
func (s *Sheet) scanEvents(doc *goquery.Document) {
	var pendingIn string

	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		// layout rows wrapping nested tables would see every descendant sentinel
		if row.Closest(rosterTableSelector).Length() > 0 || row.Find("table").Length() > 0 {
			return
		}
		m, sentinelCell := rowMarker(row)
		if m == markerNone {
			return
		}

		if m == markerSubIn {
			if pendingIn != "" {
				s.warn(domain.WarnUnpairedSub, pendingIn, "entered without a matching out row")
			}
			pendingIn = entryName(row, sentinelCell)
			if pendingIn == "" {
				s.warn(domain.WarnUnpairedSub, "", "substitution in row without a player")
			}
			return
		}

		minute, player, ok := eventCell(row, sentinelCell)
		if !ok {
			s.warn(domain.WarnBadMinute, "", fmt.Sprintf("%s row without a minute: %q", m, cellText(row)))
			return
		}
		if minute < 0 || minute > constants.MaxEventMinute {
			s.warn(domain.WarnBadMinute, player, fmt.Sprintf("%s at minute %d out of range", m, minute))
			return
		}
		team := s.teamOf(player)

		switch m {
		case markerGoal, markerPenalty:
			kind := domain.GoalOpenPlay
			if m == markerPenalty {
				kind = domain.GoalPenalty
			}
			s.Goals = append(s.Goals, domain.GoalEvent{Round: s.Round, Minute: minute, Player: player, Kind: kind, Team: team})
		case markerYellow, markerRed:
			colour := domain.CardYellow
			if m == markerRed {
				colour = domain.CardRed
			}
			s.Cards = append(s.Cards, domain.CardEvent{Round: s.Round, Minute: minute, Player: player, Colour: colour, Team: team})
		case markerSubOut:
			if pendingIn == "" {
				s.warn(domain.WarnUnpairedSub, player, fmt.Sprintf("left at %d' without a preceding in row", minute))
				return
			}
			if team == "" {
				team = s.teamOf(pendingIn)
			}
			s.Substitutions = append(s.Substitutions, domain.Substitution{
				Round:     s.Round,
				Minute:    minute,
				PlayerIn:  pendingIn,
				PlayerOut: player,
				Team:      team,
			})
			pendingIn = ""
		}
	})

	if pendingIn != "" {
		s.warn(domain.WarnUnpairedSub, pendingIn, "entered without a matching out row")
	}
}

// eventCell finds the "(NN') Name" cell of an event row. A name in the following cell is
// accepted when the minute cell holds nothing else.
func eventCell(row *goquery.Selection, skip int) (int, string, bool) {
	cells := row.Find("td")
	for i := 0; i < cells.Length(); i++ {
		if i == skip {
			continue
		}
		minute, rest, ok := splitMinute(cellText(cells.Eq(i)))
		if !ok {
			continue
		}
		if !hasLetter(rest) {
			for j := i + 1; j < cells.Length(); j++ {
				if j != skip && hasLetter(cellText(cells.Eq(j))) {
					rest = cellText(cells.Eq(j))
					break
				}
			}
		}
		name := playerName(rest)
		if name == "" {
			return 0, "", false
		}
		return minute, name, true
	}
	return 0, "", false
}

func entryName(row *goquery.Selection, skip int) string {
	name := ""
	row.Find("td").EachWithBreak(func(i int, td *goquery.Selection) bool {
		if i == skip {
			return true
		}
		text := cellText(td)
		if _, rest, ok := splitMinute(text); ok {
			text = rest
		}
		if hasLetter(text) {
			name = playerName(text)
			return false
		}
		return true
	})
	return name
}
