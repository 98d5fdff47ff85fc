package parser

import "regexp"

// Canonical track filename shape:
//
//	[<ordinal>. ]<title> -- <artist> [<external id>].mp3
//
// Anchored at both ends; anything that deviates is no match, never a partial
// one. Compiled once at init and shared read-only across goroutines.
var filenameRegex = regexp.MustCompile(`^(?:(\d+)\.\s)?(.+)\s--\s(.+)?\s\[(\d+)]\.mp3$`)

// Captures holds the positional groups of a parsed track filename. Only
// ExternalID is consumed by the reconciliation pipeline; the others exist for
// display callers.
type Captures struct {
	Ordinal    string
	Title      string
	Artist     string
	ExternalID string
}

// ParseFilename matches the final path segment of a track file against the
// canonical shape. Returns nil when the name does not conform.
func ParseFilename(name string) *Captures {
	m := filenameRegex.FindStringSubmatch(name)
	if m == nil {
		return nil
	}
	return &Captures{
		Ordinal:    m[1],
		Title:      m[2],
		Artist:     m[3],
		ExternalID: m[4],
	}
}
