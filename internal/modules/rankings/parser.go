// Package rankings manages commissioner-uploaded ranking sheets. Sheets are
// pasted as plain text from the league host's rankings page and replace any
// prior upload for the same league and year.
package rankings

import (
	"regexp"
	"strconv"
	"strings"
)

// Sheet lines look like:
//
//	1 McCaffrey, Christian SFO RB FA (Locked)
//
// with occasional variations in how the team and position columns land.
var (
	sheetLineRe = regexp.MustCompile(`^(\d+)\s+(.+?)\s+([A-Z]{2,3})\s+([A-Z]{1,3})\s+FA\s*(.*)$`)
	looseLineRe = regexp.MustCompile(`^(\d+)\s+([^0-9]+?)\s+([A-Z]{2,3})\s+([A-Z]{1,3})\s+`)
	trailTeamRe = regexp.MustCompile(`(.+?)\s+([A-Z]{2,3})$`)
	spacesRe    = regexp.MustCompile(`\s+`)
)

// ParseSheet extracts ranking entries from pasted sheet text. Header lines
// and anything unparseable are skipped; the caller decides whether a low
// yield is worth rejecting.
func ParseSheet(text string) []Entry {
	var entries []Entry

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.Contains(trimmed, "RANK") || strings.Contains(trimmed, "PLAYER") {
			continue
		}

		if m := sheetLineRe.FindStringSubmatch(trimmed); m != nil {
			rank, _ := strconv.Atoi(m[1])
			entries = append(entries, Entry{
				Rank:       rank,
				PlayerName: spacesRe.ReplaceAllString(strings.TrimSpace(m[2]), " "),
				Team:       m[3],
				Position:   m[4],
				Status:     strings.TrimSpace(m[5]),
			})
			continue
		}

		// Looser fallback for rows where the name column swallowed the team.
		m := looseLineRe.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		rank, _ := strconv.Atoi(m[1])
		name, team := m[2], m[3]
		if parts := trailTeamRe.FindStringSubmatch(name); parts != nil {
			name, team = parts[1], parts[2]
		}
		entries = append(entries, Entry{
			Rank:       rank,
			PlayerName: spacesRe.ReplaceAllString(strings.TrimSpace(name), " "),
			Team:       team,
			Position:   m[4],
		})
	}

	return entries
}
