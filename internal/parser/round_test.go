package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"penya-tracker/internal/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var testSeason = domain.SeasonDescriptor{Name: "test", Competition: 11, Group: 22, Season: 33, Rounds: 30, Active: true}

func sheetURLFor(code string) string {
	return "https://federation.test/acta?CodActa=" + code
}

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	html, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return html
}

func TestParseRound(t *testing.T) {
	page, err := ParseRound(readFixture(t, "round.html"), testSeason, 3, sheetURLFor)
	require.NoError(t, err)

	require.Equal(t, 7, page.Round)
	require.True(t, page.FromHeader)
	require.Equal(t, 2, page.SkippedRows)

	expected := []domain.Match{
		{Season: testSeason, Round: 7, Home: "PENYA INDEPENDENT", Away: "C.E. SANT PERE B", SheetCode: "9001", SheetURL: sheetURLFor("9001")},
		{Season: testSeason, Round: 7, Home: "ATLETIC LLEVANT", Away: "U.E. NORD", SheetCode: "9002", SheetURL: sheetURLFor("9002")},
		{Season: testSeason, Round: 7, Home: "C.F. SUD A", Away: "PENYA INDEPENDENT B"},
	}
	if diff := cmp.Diff(expected, page.Matches); diff != "" {
		t.Fatalf("matches mismatch (-want +got):\n%s", diff)
	}
	for _, m := range page.Matches {
		require.False(t, m.Extracted)
	}
}

func TestParseRoundWithoutHeader(t *testing.T) {
	html := []byte(`<html><body>
		<div class="partido"><span class="equipo">A</span><span class="equipo">B</span></div>
	</body></html>`)

	page, err := ParseRound(html, testSeason, 12, sheetURLFor)
	require.NoError(t, err)
	require.Equal(t, 12, page.Round)
	require.False(t, page.FromHeader)
	require.Len(t, page.Matches, 1)
	require.Equal(t, 12, page.Matches[0].Round)
	require.Empty(t, page.Matches[0].SheetURL)
}

func TestParseRoundNotRendered(t *testing.T) {
	_, err := ParseRound([]byte(`<html><body><div id="app"></div></body></html>`), testSeason, 1, sheetURLFor)
	require.Error(t, err)

	var parseErr *ParseError
	require.True(t, errors.As(err, &parseErr))
	require.True(t, parseErr.Retryable())
}

func TestSheetCodeIgnoresUnrelatedLinks(t *testing.T) {
	html := []byte(`<html><body><div class="partido">
		<span class="equipo">A</span><span class="equipo">B</span>
		<a href="/clasificacion?CodActa=1">Clasificación</a>
		<a href="/equipo?id=4">Equipo</a>
	</div></body></html>`)

	page, err := ParseRound(html, testSeason, 1, sheetURLFor)
	require.NoError(t, err)
	require.Len(t, page.Matches, 1)
	// the href alone is enough to identify the sheet link
	require.Equal(t, "1", page.Matches[0].SheetCode)

	html = []byte(`<html><body><div class="partido">
		<span class="equipo">A</span><span class="equipo">B</span>
		<a href="/equipo?id=4">Equipo</a>
	</div></body></html>`)
	page, err = ParseRound(html, testSeason, 1, sheetURLFor)
	require.NoError(t, err)
	require.Empty(t, page.Matches[0].SheetCode)
}
