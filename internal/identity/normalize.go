// Package identity resolves player identities across data sources.
//
// The league host, the rankings host, and uploaded ranking sheets all spell
// player names differently ("Last, First", suffixes, punctuated initials).
// This package normalizes names into comparable keys, generates candidate
// variations, and matches player records against ranking records.
package identity

import "strings"

// suffixTokens are generational suffixes stripped from the end of a name.
// Stripping repeats until the last token is not a suffix, so the result of
// Normalize contains no trailing suffix token and the function is idempotent.
var suffixTokens = map[string]bool{
	"jr": true,
	"sr": true,
	"i":  true,
	"ii": true,
	"iii": true,
	"iv": true,
}

// Normalize converts a raw display name into a canonical comparable key:
// "Last, First" is reordered, the string is lowercased, everything that is
// not an ASCII letter or whitespace is removed, whitespace runs collapse to
// a single space, and trailing generational suffixes (Jr/Sr/I-IV) are
// stripped. Total on any input; empty input yields "".
//
// Apostrophes and hyphens are removed rather than replaced, so "Ja'Marr"
// becomes "jamarr". That can in theory merge distinct tokens in compound
// names; downstream matching was tuned against exactly this behavior, so it
// is kept as-is.
func Normalize(raw string) string {
	name := raw

	// "Last, First" -> "First Last". Only a single comma triggers the
	// reorder; zero or multiple commas leave the structure alone.
	if parts := strings.Split(name, ","); len(parts) == 2 {
		name = strings.TrimSpace(parts[1]) + " " + strings.TrimSpace(parts[0])
	}

	name = strings.ToLower(name)

	// Keep only lowercase letters and whitespace.
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			b.WriteRune(r)
		}
	}

	// Fields collapses whitespace runs and trims in one step.
	fields := strings.Fields(b.String())

	// Strip trailing suffix tokens. A suffix must follow at least one other
	// token: a bare "iii" is somebody's whole input, not a suffix.
	for len(fields) >= 2 && suffixTokens[fields[len(fields)-1]] {
		fields = fields[:len(fields)-1]
	}

	return strings.Join(fields, " ")
}
