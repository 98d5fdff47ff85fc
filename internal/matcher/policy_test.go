package matcher

import (
	"reflect"
	"testing"

	"trackaudit/internal/models"
)

func boolPtr(b bool) *bool { return &b }

func TestReconcile(t *testing.T) {
	const path = "/music/1. A -- B [42].mp3"

	tests := []struct {
		name string
		in   Input
		want []models.FindingKind
	}{
		{
			name: "matching ratings yield nothing",
			in: Input{Path: path, LocalRating: 3, ExternalID: "42",
				Exists: boolPtr(true), External: &models.Content{ID: "7", Rating: 3}},
			want: nil,
		},
		{
			name: "unrated in store",
			in: Input{Path: path, LocalRating: 4, ExternalID: "42",
				Exists: boolPtr(true), External: &models.Content{ID: "7", Rating: 0}},
			want: []models.FindingKind{models.FindingUnratedInStore},
		},
		{
			name: "rating mismatch",
			in: Input{Path: path, LocalRating: 2, ExternalID: "42",
				Exists: boolPtr(true), External: &models.Content{ID: "7", Rating: 5}},
			want: []models.FindingKind{models.FindingRatingMismatch},
		},
		{
			name: "missing file is terminal",
			in: Input{Path: path, LocalRating: 5, ExternalID: "42",
				Exists: boolPtr(false), External: &models.Content{ID: "7", Rating: 1}},
			want: []models.FindingKind{models.FindingMissingFile},
		},
		{
			name: "low rating flags and suppresses store checks",
			in: Input{Path: path, LocalRating: 1, ExternalID: "42",
				Exists: boolPtr(true), External: &models.Content{ID: "7", Rating: 5}},
			want: []models.FindingKind{models.FindingLowRating},
		},
		{
			name: "not found in store",
			in: Input{Path: path, LocalRating: 3, ExternalID: "42",
				Exists: boolPtr(true)},
			want: []models.FindingKind{models.FindingNotFoundInStore},
		},
		{
			name: "no external id, no store finding",
			in: Input{Path: "/music/untitled.mp3", LocalRating: 3,
				Exists: boolPtr(true)},
			want: nil,
		},
		{
			name: "existence unknown skips the track",
			in:   Input{Path: path, LocalRating: 1, ExternalID: "42"},
			want: nil,
		},
		{
			name: "local unrated ignores store rating",
			in: Input{Path: path, LocalRating: 0, ExternalID: "42",
				Exists: boolPtr(true), External: &models.Content{ID: "7", Rating: 4}},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reconcile(tt.in)
			var kinds []models.FindingKind
			for _, f := range got {
				kinds = append(kinds, f.Kind)
			}
			if !reflect.DeepEqual(kinds, tt.want) {
				t.Errorf("Reconcile() kinds = %v, want %v", kinds, tt.want)
			}
		})
	}
}

func TestReconcileMismatchDetail(t *testing.T) {
	in := Input{
		Path:        "/music/1. A -- B [42].mp3",
		RelPath:     "/music/1. A -- B [42].mp3",
		LocalRating: 2,
		ExternalID:  "42",
		Exists:      boolPtr(true),
		External:    &models.Content{ID: "7", Rating: 5},
	}
	got := Reconcile(in)
	if len(got) != 1 {
		t.Fatalf("Reconcile() = %d findings, want 1", len(got))
	}
	f := got[0]
	if f.LocalRating != 2 || f.ExternalRating != 5 || f.Source != "rekordbox" {
		t.Errorf("mismatch finding = %+v, want local 2, external 5, source rekordbox", f)
	}
}

func TestReconcileIsPure(t *testing.T) {
	in := Input{
		Path:        "/music/1. A -- B [42].mp3",
		LocalRating: 2,
		ExternalID:  "42",
		Exists:      boolPtr(true),
		External:    &models.Content{ID: "7", Rating: 5},
	}
	first := Reconcile(in)
	for i := 0; i < 10; i++ {
		if got := Reconcile(in); !reflect.DeepEqual(got, first) {
			t.Fatalf("Reconcile() not stable: run %d = %+v, first = %+v", i, got, first)
		}
	}
}
