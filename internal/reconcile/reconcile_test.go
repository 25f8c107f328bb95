package reconcile

import (
	"testing"

	"penya-tracker/internal/domain"
	"penya-tracker/internal/parser"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const (
	home = "HOME FC"
	away = "AWAY FC"
)

func lines(names ...string) []parser.RosterLine {
	out := make([]parser.RosterLine, len(names))
	for i, n := range names {
		out[i] = parser.RosterLine{ShirtNumber: i + 1, Player: n}
	}
	return out
}

func baseSheet() *parser.Sheet {
	return &parser.Sheet{
		Round:        4,
		Home:         home,
		Away:         away,
		HomeStarters: lines("X", "Z", "W"),
		HomeSubs:     lines("Y"),
		AwayStarters: lines("K"),
		AwaySubs:     lines("L"),
	}
}

var baseMatch = domain.Match{Round: 4, Home: home, Away: away, SheetCode: "100"}

func reconcile(t *testing.T, sheet *parser.Sheet) *domain.MatchRecord {
	t.Helper()
	return NewWithDuration(90, zerolog.Nop()).Reconcile(sheet, baseMatch)
}

func row(t *testing.T, rec *domain.MatchRecord, player string) domain.RosterEntry {
	t.Helper()
	for _, e := range rec.Roster {
		if e.Player == player {
			return e
		}
	}
	t.Fatalf("player %s not on roster", player)
	return domain.RosterEntry{}
}

func warningKinds(rec *domain.MatchRecord) []domain.WarningKind {
	var kinds []domain.WarningKind
	for _, w := range rec.Warnings {
		kinds = append(kinds, w.Kind)
	}
	return kinds
}

func TestStarterWithTwoYellows(t *testing.T) {
	sheet := baseSheet()
	sheet.Cards = []domain.CardEvent{
		{Round: 4, Minute: 30, Player: "X", Colour: domain.CardYellow, Team: home},
		{Round: 4, Minute: 70, Player: "X", Colour: domain.CardYellow, Team: home},
	}

	rec := reconcile(t, sheet)
	x := row(t, rec, "X")
	require.Equal(t, 0, x.Goals)
	require.Equal(t, 0, x.YellowCards)
	require.Equal(t, 1, x.RedCards)
	require.Equal(t, 90, x.MinutesPlayed)
	require.Equal(t, domain.StatusStarter, x.Status)
	require.Equal(t, domain.VenueHome, x.Venue)
	require.Equal(t, away, x.Opponent)

	// the cards table keeps both yellows, the later one flagged
	require.Len(t, rec.Cards, 2)
	require.False(t, rec.Cards[0].SecondYellow)
	require.True(t, rec.Cards[1].SecondYellow)
}

func TestSubstituteWhoScores(t *testing.T) {
	sheet := baseSheet()
	sheet.Substitutions = []domain.Substitution{
		{Round: 4, Minute: 60, PlayerIn: "Y", PlayerOut: "Z", Team: home},
	}
	sheet.Goals = []domain.GoalEvent{
		{Round: 4, Minute: 75, Player: "Y", Kind: domain.GoalOpenPlay, Team: home},
	}

	rec := reconcile(t, sheet)
	y := row(t, rec, "Y")
	require.Equal(t, 1, y.Goals)
	require.Equal(t, 30, y.MinutesPlayed)
	require.Equal(t, domain.StatusSubstitute, y.Status)

	z := row(t, rec, "Z")
	require.Equal(t, 0, z.YellowCards)
	require.Equal(t, 0, z.RedCards)
	require.Equal(t, 60, z.MinutesPlayed)

	require.Equal(t, 0, row(t, rec, "L").MinutesPlayed)
	require.Equal(t, 90, row(t, rec, "K").MinutesPlayed)
	require.Empty(t, rec.Warnings)
}

func TestPenaltyAttribution(t *testing.T) {
	sheet := baseSheet()
	sheet.Goals = []domain.GoalEvent{
		{Round: 4, Minute: 82, Player: "W", Kind: domain.GoalPenalty, Team: home},
	}

	rec := reconcile(t, sheet)
	require.Equal(t, 1, row(t, rec, "W").Goals)
	require.Equal(t, []domain.GoalEvent{
		{Round: 4, Minute: 82, Player: "W", Kind: domain.GoalPenalty, Team: home},
	}, rec.Goals)
}

func TestMinutesEdgeCases(t *testing.T) {
	testCases := []struct {
		name     string
		subs     []domain.Substitution
		player   string
		expected int
		warnings []domain.WarningKind
	}{
		{
			name:     "out without in for a substitute",
			subs:     []domain.Substitution{{Minute: 50, PlayerIn: "X", PlayerOut: "Y", Team: home}},
			player:   "Y",
			expected: 0,
			warnings: []domain.WarningKind{domain.WarnUnmatchedOut},
		},
		{
			name: "entered and later replaced",
			subs: []domain.Substitution{
				{Minute: 20, PlayerIn: "Y", PlayerOut: "Z", Team: home},
				{Minute: 65, PlayerIn: "Z", PlayerOut: "Y", Team: home},
			},
			player:   "Y",
			expected: 45,
		},
		{
			name: "starter replaced and brought back",
			subs: []domain.Substitution{
				{Minute: 20, PlayerIn: "Y", PlayerOut: "Z", Team: home},
				{Minute: 65, PlayerIn: "Z", PlayerOut: "Y", Team: home},
			},
			player:   "Z",
			expected: 45,
		},
		{
			name:     "exit in added time is clipped",
			subs:     []domain.Substitution{{Minute: 93, PlayerIn: "Y", PlayerOut: "Z", Team: home}},
			player:   "Z",
			expected: 90,
		},
		{
			name:     "entry in added time plays nothing",
			subs:     []domain.Substitution{{Minute: 93, PlayerIn: "Y", PlayerOut: "Z", Team: home}},
			player:   "Y",
			expected: 0,
		},
		{
			name: "earliest entry pairs with earliest later exit",
			subs: []domain.Substitution{
				{Minute: 70, PlayerIn: "X", PlayerOut: "Y", Team: home},
				{Minute: 30, PlayerIn: "Y", PlayerOut: "W", Team: home},
			},
			player:   "Y",
			expected: 40,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			sheet := baseSheet()
			sheet.Substitutions = test.subs
			rec := reconcile(t, sheet)
			require.Equal(t, test.expected, row(t, rec, test.player).MinutesPlayed)
			require.Equal(t, test.warnings, warningKinds(rec))
		})
	}
}

func TestDuplicateRosterRows(t *testing.T) {
	sheet := baseSheet()
	sheet.HomeSubs = lines("Y", "x")
	sheet.Goals = []domain.GoalEvent{{Minute: 10, Player: "X", Kind: domain.GoalOpenPlay, Team: home}}

	rec := reconcile(t, sheet)
	require.Len(t, rec.Roster, 7)
	require.Equal(t, 1, rec.Roster[0].Goals)
	require.Equal(t, 90, rec.Roster[0].MinutesPlayed)

	dup := rec.Roster[4]
	require.Equal(t, "x", dup.Player)
	require.Equal(t, 0, dup.Goals)
	require.Equal(t, 0, dup.MinutesPlayed)
	require.Equal(t, []domain.WarningKind{domain.WarnDuplicateRoster}, warningKinds(rec))
}

func TestUnknownPlayersAreKept(t *testing.T) {
	sheet := baseSheet()
	sheet.Goals = []domain.GoalEvent{{Minute: 10, Player: "GHOST", Kind: domain.GoalOpenPlay}}
	sheet.Cards = []domain.CardEvent{{Minute: 12, Player: "GHOST", Colour: domain.CardRed}}

	rec := reconcile(t, sheet)
	require.Len(t, rec.Goals, 1)
	require.Len(t, rec.Cards, 1)
	require.Equal(t, []domain.WarningKind{domain.WarnUnknownPlayer, domain.WarnUnknownPlayer}, warningKinds(rec))
	for _, e := range rec.Roster {
		require.Zero(t, e.Goals)
		require.Zero(t, e.RedCards)
	}
}

func TestEventsResolveTeamByRoster(t *testing.T) {
	sheet := baseSheet()
	sheet.Goals = []domain.GoalEvent{{Minute: 10, Player: "k", Kind: domain.GoalOpenPlay}}

	rec := reconcile(t, sheet)
	require.Equal(t, away, rec.Goals[0].Team)
	require.Equal(t, 1, row(t, rec, "K").Goals)
}

func TestBenchPlayerWithEvents(t *testing.T) {
	sheet := baseSheet()
	sheet.Cards = []domain.CardEvent{{Minute: 44, Player: "L", Colour: domain.CardYellow, Team: away}}

	rec := reconcile(t, sheet)
	require.Equal(t, 1, row(t, rec, "L").YellowCards)
	require.Equal(t, []domain.WarningKind{domain.WarnMissingIn}, warningKinds(rec))
}

func TestSimilarNamesAndTeamMismatch(t *testing.T) {
	sheet := baseSheet()
	sheet.Home = "HOME F.C."
	sheet.HomeStarters = lines("GARCIA, PAU", "GARCIA, PAUL", "MARTI, ORIOL")
	sheet.Goals = []domain.GoalEvent{{Minute: 5, Player: "MARTI, ORIOL", Kind: domain.GoalOpenPlay, Team: "HOME F.C."}}

	rec := reconcile(t, sheet)
	require.Equal(t, home, rec.Match.Home)
	require.Equal(t, home, rec.Goals[0].Team)
	require.Equal(t, 1, row(t, rec, "MARTI, ORIOL").Goals)
	require.Equal(t, []domain.WarningKind{domain.WarnTeamMismatch, domain.WarnSimilarNames}, warningKinds(rec))
}

func TestReconcileInvariants(t *testing.T) {
	sheet := baseSheet()
	sheet.Goals = []domain.GoalEvent{
		{Minute: 3, Player: "X", Kind: domain.GoalOpenPlay, Team: home},
		{Minute: 95, Player: "Y", Kind: domain.GoalOpenPlay, Team: home},
		{Minute: 50, Player: "K", Kind: domain.GoalPenalty, Team: away},
	}
	sheet.Cards = []domain.CardEvent{
		{Minute: 10, Player: "K", Colour: domain.CardYellow, Team: away},
		{Minute: 20, Player: "K", Colour: domain.CardYellow, Team: away},
		{Minute: 30, Player: "K", Colour: domain.CardYellow, Team: away},
	}
	sheet.Substitutions = []domain.Substitution{
		{Minute: 80, PlayerIn: "Y", PlayerOut: "W", Team: home},
		{Minute: 85, PlayerIn: "L", PlayerOut: "K", Team: away},
	}

	rec := reconcile(t, sheet)
	goals := map[string]int{}
	for _, e := range rec.Roster {
		require.GreaterOrEqual(t, e.MinutesPlayed, 0)
		require.LessOrEqual(t, e.MinutesPlayed, 90)
		require.LessOrEqual(t, e.YellowCards, 1)
		goals[e.Team] += e.Goals
	}
	events := map[string]int{}
	for _, g := range rec.Goals {
		events[g.Team]++
	}
	require.Equal(t, events, goals)

	k := row(t, rec, "K")
	require.Equal(t, 1, k.YellowCards)
	require.Equal(t, 1, k.RedCards)
	// goals keep their minute even past the final whistle
	require.Equal(t, 95, rec.Goals[1].Minute)
}

func TestRosterIdentity(t *testing.T) {
	rec := reconcile(t, baseSheet())
	x := row(t, rec, "X")
	require.Equal(t, 4, x.Round)
	require.Equal(t, domain.PlayerID(home, "X"), x.PlayerID)
	require.Equal(t, domain.VenueAway, row(t, rec, "K").Venue)
	require.Equal(t, home, row(t, rec, "K").Opponent)
}
