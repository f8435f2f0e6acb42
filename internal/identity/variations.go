package identity

import (
	"regexp"
	"strings"
)

var (
	dottedInitialsRe = regexp.MustCompile(`(?i)d\.j\.`)
	bareInitialsRe   = regexp.MustCompile(`(?i)\bdj\b`)
)

// Variations returns every candidate key worth trying when matching a name
// against another source, in a fixed order with duplicates removed (first
// occurrence wins). The order matters: the matcher takes the first lookup
// hit, so cheaper/safer keys come before lossier ones.
//
// The final first-name + last-initial key is deliberately lossy: two
// different players can share it. It exists because sources abbreviate
// ("Ken Walker" vs "Kenneth Walker III") and the recall is worth the
// occasional false positive.
func Variations(rawName string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(v string) {
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}

	add(strings.ToLower(rawName))

	normalized := Normalize(rawName)
	add(normalized)

	// Comma form gets its reordered spelling added explicitly, both raw
	// and normalized.
	if parts := strings.Split(rawName, ","); len(parts) == 2 {
		reordered := strings.TrimSpace(parts[1]) + " " + strings.TrimSpace(parts[0])
		add(strings.ToLower(reordered))
		add(Normalize(reordered))
	}

	// Toggle punctuated initials: "D.J." <-> "DJ". The two replacements run
	// in sequence, so a name already containing "D.J." round-trips back to
	// itself and only the bare "DJ" spelling actually changes.
	toggled := dottedInitialsRe.ReplaceAllString(rawName, "DJ")
	toggled = bareInitialsRe.ReplaceAllString(toggled, "D.J.")
	add(strings.ToLower(toggled))
	add(Normalize(toggled))

	if key := firstNameLastInitial(normalized); key != "" {
		add(key)
	}

	return out
}

// firstNameLastInitial reduces a normalized name to "{first} {lastInitial}".
// Returns "" when the name has fewer than two tokens.
func firstNameLastInitial(normalized string) string {
	tokens := strings.Fields(normalized)
	if len(tokens) < 2 {
		return ""
	}
	last := tokens[len(tokens)-1]
	return tokens[0] + " " + last[:1]
}
