package tags

import (
	"fmt"
	"time"
)

// YearWeek formats t's ISO week as a four-digit provenance stamp: two-digit
// year-of-week followed by the zero-padded week number, e.g. "2550" for week
// 50 of 2025. The stamp is write-only; nothing parses it back.
func YearWeek(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%02d%02d", year%100, week)
}
