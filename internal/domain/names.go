package domain

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	// 'A', "B", (A) or [B] as the last token
	reserveMarkerRegex = regexp.MustCompile(`\s+["'(\[]*([AB])["')\]]*$`)
	fileUnsafeRegex    = regexp.MustCompile(`[^A-Z0-9]+`)
)

// playerNamespace scopes name-based player ids.
var playerNamespace = uuid.MustParse("5d8c3a0e-8f0b-4f5e-9d7e-2b1c6a4f9e10")

// CanonicalTeam is the single source of team identity across tables: escaped quotes and
// backslashes stripped, whitespace collapsed, upper-cased, trailing reserve marker kept as
// a bare " A" / " B" token. Only the trailing token is ever treated as a marker.
func CanonicalTeam(name string) string {
	name = norm.NFC.String(name)
	name = strings.ReplaceAll(name, `\"`, "")
	name = strings.ReplaceAll(name, `\'`, "'")
	name = strings.ReplaceAll(name, `\`, "")
	name = strings.ToUpper(collapse(name))

	if m := reserveMarkerRegex.FindStringSubmatchIndex(name); m != nil {
		name = strings.TrimSpace(name[:m[0]]) + " " + name[m[2]:m[3]]
	}
	name = strings.ReplaceAll(name, `"`, "")
	return collapse(name)
}

// NormalizePlayer is the exact name string used as player identity within a match.
func NormalizePlayer(name string) string {
	name = norm.NFC.String(name)
	name = strings.ReplaceAll(name, `\`, "")
	name = strings.Trim(collapse(name), `"`)
	return strings.TrimSpace(name)
}

// PlayerKey is the case-insensitive lookup form of a normalised player name.
func PlayerKey(name string) string {
	return strings.ToUpper(NormalizePlayer(name))
}

// PlayerID is stable across matches for the tuple (team, normalised name).
func PlayerID(team, player string) string {
	return uuid.NewSHA1(playerNamespace, []byte(CanonicalTeam(team)+"|"+PlayerKey(player))).String()
}

// FileSafe renders a canonical team name for use inside a file name.
func FileSafe(name string) string {
	return strings.Trim(fileUnsafeRegex.ReplaceAllString(CanonicalTeam(name), "_"), "_")
}

func collapse(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}
