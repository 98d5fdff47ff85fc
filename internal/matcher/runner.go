package matcher

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	"trackaudit/internal/models"
	"trackaudit/internal/rekordbox"
	"trackaudit/internal/tags"
)

// Lookup finds the external content record embedding an external id.
// Implementations return rekordbox.ErrNotFound for zero matches and ordinary
// errors for connectivity-class failures.
type Lookup interface {
	Find(ctx context.Context, externalID string) (*models.Content, error)
}

// TagFile is the slice of the tag container the runner needs.
type TagFile interface {
	Rating(source string) (int, bool)
	SetRating(source string, stars int)
	SetGrouping(v string)
	Save() error
	Close() error
}

// Runner fans the reconciliation policy across the full track set with
// bounded concurrency. Tracks are independent: no ordering is guaranteed and
// a per-track failure never aborts the batch.
type Runner struct {
	Lookup  Lookup
	Workers int

	// CheckTags enables the tag-layer rating comparison; WriteTags
	// additionally rewrites disagreeing popularimeter ratings and stamps the
	// grouping frame with the current year-week.
	CheckTags bool
	WriteTags bool

	// Exists reports whether a path is present on disk. Defaults to an
	// os.Stat probe; overridable in tests.
	Exists func(path string) (bool, error)

	// OpenTags opens the embedded tag container for a path. Defaults to
	// tags.Open.
	OpenTags func(path string) (TagFile, error)

	// Now supplies the clock for the grouping stamp. Defaults to time.Now.
	Now func() time.Time
}

// Run reconciles every track and returns the union of all findings.
func (r *Runner) Run(ctx context.Context, tracks []models.Track) []models.Finding {
	workers := r.Workers
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, workers)
	findingsChan := make(chan []models.Finding, len(tracks))

	for _, track := range tracks {
		wg.Add(1)
		go func(track models.Track) {
			defer wg.Done()
			semaphore <- struct{}{}        // acquire
			defer func() { <-semaphore }() // release

			findingsChan <- r.processTrack(ctx, track)
		}(track)
	}

	go func() {
		wg.Wait()
		close(findingsChan)
	}()

	var findings []models.Finding
	for fs := range findingsChan {
		findings = append(findings, fs...)
	}
	return findings
}

func (r *Runner) processTrack(ctx context.Context, track models.Track) []models.Finding {
	in := Input{
		Path:        track.Path,
		RelPath:     track.RelativePath(),
		LocalRating: track.Rating,
		ExternalID:  track.ExternalID(),
	}

	exists := r.Exists
	if exists == nil {
		exists = fileExists
	}
	ok, err := exists(track.Path)
	if err != nil {
		// Existence unknown: skip the track rather than claim a missing file.
		slog.Warn("existence check failed", "path", track.Path, "error", err)
		return nil
	}
	in.Exists = &ok

	if ok && in.ExternalID != "" && in.LocalRating != 1 {
		content, err := r.Lookup.Find(ctx, in.ExternalID)
		switch {
		case err == nil:
			in.External = content
			if content.Matches > 1 {
				slog.Warn("ambiguous store match, first row wins",
					"path", in.RelPath, "external_id", in.ExternalID, "matches", content.Matches)
			}
		case errors.Is(err, rekordbox.ErrNotFound):
			// Routine; the policy turns it into a finding.
		default:
			// Connectivity-class failure likely affects every later track.
			slog.Error("content store lookup failed",
				"path", in.RelPath, "external_id", in.ExternalID, "error", err)
			return nil
		}
	}

	findings := Reconcile(in)

	if r.CheckTags && ok && in.LocalRating != 1 {
		findings = append(findings, r.checkTags(track, in.RelPath)...)
	}
	return findings
}

// checkTags compares the embedded popularimeter rating against the catalog
// rating and, when write-back is on, settles the disagreement in the file.
func (r *Runner) checkTags(track models.Track, relPath string) []models.Finding {
	open := r.OpenTags
	if open == nil {
		open = defaultOpenTags
	}

	f, err := open(track.Path)
	if err != nil {
		return []models.Finding{{
			Kind:         models.FindingTagReadFailure,
			Path:         track.Path,
			RelativePath: relPath,
			Detail:       err.Error(),
		}}
	}
	defer f.Close()

	stars, found := f.Rating(tags.RatingSource)
	if !found || stars == track.Rating {
		return nil
	}

	findings := []models.Finding{{
		Kind:           models.FindingRatingMismatch,
		Path:           track.Path,
		RelativePath:   relPath,
		LocalRating:    track.Rating,
		ExternalRating: stars,
		Source:         "tags",
	}}

	if r.WriteTags {
		now := r.Now
		if now == nil {
			now = time.Now
		}
		f.SetRating(tags.RatingSource, track.Rating)
		f.SetGrouping(tags.YearWeek(now()))
		if err := f.Save(); err != nil {
			findings = append(findings, models.Finding{
				Kind:         models.FindingTagReadFailure,
				Path:         track.Path,
				RelativePath: relPath,
				Detail:       err.Error(),
			})
		}
	}
	return findings
}

func defaultOpenTags(path string) (TagFile, error) {
	return tags.Open(path)
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}
