package matcher

import "trackaudit/internal/models"

// Input is everything the decision table consumes for one track.
//
// Exists is nil when the filesystem check itself failed: existence unknown
// suppresses every file-dependent finding rather than asserting a missing
// file. External is nil when the store had no match or was never consulted.
type Input struct {
	Path        string
	RelPath     string
	LocalRating int
	ExternalID  string
	Exists      *bool
	External    *models.Content
}

// Reconcile classifies a single track against the local catalog, the
// external content store and the filesystem signal. Pure: identical inputs
// always yield identical findings, and it is safe to call from any number of
// goroutines.
//
// Precedence: a missing file is terminal; a 1-star rating flags the track for
// operator review and suppresses the external checks; only then do the
// store-rating comparisons apply.
func Reconcile(in Input) []models.Finding {
	if in.Exists == nil {
		return nil
	}
	if !*in.Exists {
		return []models.Finding{{
			Kind:         models.FindingMissingFile,
			Path:         in.Path,
			RelativePath: in.RelPath,
		}}
	}

	if in.LocalRating == 1 {
		// Flag only. Deleting the file stays an explicit operator action.
		return []models.Finding{{
			Kind:         models.FindingLowRating,
			Path:         in.Path,
			RelativePath: in.RelPath,
			LocalRating:  in.LocalRating,
		}}
	}

	if in.ExternalID == "" {
		// Nothing to key the store lookup on.
		return nil
	}

	if in.External == nil {
		return []models.Finding{{
			Kind:         models.FindingNotFoundInStore,
			Path:         in.Path,
			RelativePath: in.RelPath,
			ExternalID:   in.ExternalID,
		}}
	}

	switch {
	case in.LocalRating > 0 && in.External.Rating == 0:
		return []models.Finding{{
			Kind:         models.FindingUnratedInStore,
			Path:         in.Path,
			RelativePath: in.RelPath,
			LocalRating:  in.LocalRating,
			Source:       "rekordbox",
		}}
	case in.LocalRating > 0 && in.External.Rating != in.LocalRating:
		return []models.Finding{{
			Kind:           models.FindingRatingMismatch,
			Path:           in.Path,
			RelativePath:   in.RelPath,
			LocalRating:    in.LocalRating,
			ExternalRating: in.External.Rating,
			Source:         "rekordbox",
		}}
	}
	return nil
}
