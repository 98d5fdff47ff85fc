package tags

import (
	"testing"
	"time"
)

func TestYearWeek(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want string
	}{
		{"mid-december", time.Date(2025, time.December, 9, 0, 0, 0, 0, time.UTC), "2550"},
		{"january in previous iso year", time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC), "2053"},
		{"single-digit week is padded", time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), "2601"},
		{"year rollover into week one", time.Date(2024, time.December, 30, 0, 0, 0, 0, time.UTC), "2501"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := YearWeek(tt.date); got != tt.want {
				t.Errorf("YearWeek(%s) = %q, want %q", tt.date.Format("2006-01-02"), got, tt.want)
			}
		})
	}
}
