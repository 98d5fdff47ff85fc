package models

import (
	"fmt"
	"path/filepath"
	"strings"

	"trackaudit/internal/parser"
)

// cloudDocsRoot is the cloud-sync prefix stripped from paths for display.
const cloudDocsRoot = "/Mobile Documents/com~apple~CloudDocs"

// Track is one media file as seen by the local catalog. Ratings are on the
// 0-5 star scale; 0 means unrated.
type Track struct {
	Path   string `json:"path"`
	Rating int    `json:"rating"`
}

// NewTrack builds a Track from a provider item's file location and raw 0-100
// rating (multiples of 20). Items without a locatable file are dropped
// (ok == false) rather than carried with an absent path, so reported totals
// count only tracks that can produce filesystem findings.
func NewTrack(location string, rawRating int) (Track, bool) {
	if location == "" {
		return Track{}, false
	}
	return Track{Path: location, Rating: rawRating / 20}, true
}

// RelativePath strips the cloud-sync root from the track path for display.
// Paths outside the sync root are returned unchanged.
func (t Track) RelativePath() string {
	if _, rest, ok := strings.Cut(t.Path, cloudDocsRoot); ok {
		return rest
	}
	return t.Path
}

// ExternalID returns the cross-source join key parsed from the filename's
// trailing bracketed digits, or "" when the name does not follow the
// canonical shape.
func (t Track) ExternalID() string {
	caps := parser.ParseFilename(filepath.Base(t.Path))
	if caps == nil {
		return ""
	}
	return caps.ExternalID
}

// Content is one record from the external content store.
type Content struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
	Rating   int    `json:"rating"`

	// Matches is the total number of store rows embedding the looked-up
	// external id. The first row wins; anything above 1 is ambiguity the
	// caller may want to surface.
	Matches int `json:"matches,omitempty"`
}

// FindingKind classifies a reconciliation finding.
type FindingKind string

const (
	FindingMissingFile     FindingKind = "missing_file"
	FindingLowRating       FindingKind = "low_rating"
	FindingUnratedInStore  FindingKind = "unrated_in_store"
	FindingRatingMismatch  FindingKind = "rating_mismatch"
	FindingNotFoundInStore FindingKind = "not_found_in_store"
	FindingTagReadFailure  FindingKind = "tag_read_failure"
)

// Finding is one unit of reported discrepancy for a single track. Findings
// are value outputs; nothing mutates them after creation.
type Finding struct {
	Kind           FindingKind `json:"kind"`
	Path           string      `json:"path"`
	RelativePath   string      `json:"relative_path,omitempty"`
	LocalRating    int         `json:"local_rating,omitempty"`
	ExternalRating int         `json:"external_rating,omitempty"`
	ExternalID     string      `json:"external_id,omitempty"`
	Source         string      `json:"source,omitempty"`
	Detail         string      `json:"detail,omitempty"`
}

// String renders the finding as a one-line operator message.
func (f Finding) String() string {
	path := f.RelativePath
	if path == "" {
		path = f.Path
	}
	switch f.Kind {
	case FindingMissingFile:
		return fmt.Sprintf("Does not exist %s", f.Path)
	case FindingLowRating:
		return fmt.Sprintf("Delete %s with %d star rating", path, f.LocalRating)
	case FindingUnratedInStore:
		return fmt.Sprintf("Rating %s in rekordbox as %d", path, f.LocalRating)
	case FindingRatingMismatch:
		if f.Source == "tags" {
			return fmt.Sprintf("Different rating for %s in Music %d and ID3 %d", path, f.LocalRating, f.ExternalRating)
		}
		return fmt.Sprintf("Different rating for %s in Music %d and rekordbox %d", path, f.LocalRating, f.ExternalRating)
	case FindingNotFoundInStore:
		return fmt.Sprintf("Not in rekordbox %s with %q", path, f.ExternalID)
	case FindingTagReadFailure:
		return fmt.Sprintf("Cannot read ID3 for %s", f.Path)
	}
	return fmt.Sprintf("%s %s", f.Kind, path)
}
