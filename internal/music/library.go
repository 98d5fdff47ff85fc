package music

import (
	"fmt"
	"net/url"
	"os"

	"howett.net/plist"
)

// Item is one opaque catalog entry: a file location (empty when the provider
// has no local file for it), the raw 0-100 rating, and whether that rating
// was inferred by the provider rather than set by the user.
type Item struct {
	Location       string
	Rating         int
	RatingComputed bool
}

// Library is the media-library provider: a read-only, in-memory catalog of
// tracks and playlists.
type Library interface {
	Version() string
	AllItems() []Item
	PlaylistItems(name string) []Item
}

// plist shapes for the exported iTunes/Music library XML.

type libraryPlist struct {
	ApplicationVersion string                `plist:"Application Version"`
	Tracks             map[string]trackPlist `plist:"Tracks"`
	Playlists          []playlistPlist       `plist:"Playlists"`
}

type trackPlist struct {
	Location       string `plist:"Location"`
	Rating         int    `plist:"Rating"`
	RatingComputed bool   `plist:"Rating Computed"`
}

type playlistPlist struct {
	Name  string              `plist:"Name"`
	Items []playlistItemPlist `plist:"Playlist Items"`
}

type playlistItemPlist struct {
	TrackID int `plist:"Track ID"`
}

// XMLLibrary reads an exported library XML once and serves lookups from
// memory. Safe to share across goroutines; nothing mutates it after Open.
type XMLLibrary struct {
	version   string
	tracks    map[string]Item
	playlists map[string][]string // playlist name -> ordered track ids
}

// Open parses the exported library XML at path.
func Open(path string) (*XMLLibrary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("music: read library: %w", err)
	}

	var raw libraryPlist
	if _, err := plist.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("music: parse library: %w", err)
	}

	lib := &XMLLibrary{
		version:   raw.ApplicationVersion,
		tracks:    make(map[string]Item, len(raw.Tracks)),
		playlists: make(map[string][]string, len(raw.Playlists)),
	}

	for id, t := range raw.Tracks {
		lib.tracks[id] = Item{
			Location:       locationPath(t.Location),
			Rating:         t.Rating,
			RatingComputed: t.RatingComputed,
		}
	}

	for _, pl := range raw.Playlists {
		ids := make([]string, 0, len(pl.Items))
		for _, it := range pl.Items {
			ids = append(ids, fmt.Sprintf("%d", it.TrackID))
		}
		lib.playlists[pl.Name] = ids
	}

	return lib, nil
}

// Version reports the exporting application's version string.
func (l *XMLLibrary) Version() string { return l.version }

// AllItems enumerates every catalog entry whose rating was set by the user.
// Provider-computed ratings are excluded from the working set entirely.
func (l *XMLLibrary) AllItems() []Item {
	items := make([]Item, 0, len(l.tracks))
	for _, it := range l.tracks {
		if it.RatingComputed {
			continue
		}
		items = append(items, it)
	}
	return items
}

// PlaylistItems enumerates the named playlist in playlist order, with the
// same computed-rating exclusion as AllItems. An unknown playlist name yields
// an empty set.
func (l *XMLLibrary) PlaylistItems(name string) []Item {
	ids := l.playlists[name]
	items := make([]Item, 0, len(ids))
	for _, id := range ids {
		it, ok := l.tracks[id]
		if !ok || it.RatingComputed {
			continue
		}
		items = append(items, it)
	}
	return items
}

// locationPath converts the plist "Location" file URL to a filesystem path.
// Entries without a parseable file URL come back empty (an unlocated track,
// not an error).
func locationPath(loc string) string {
	if loc == "" {
		return ""
	}
	u, err := url.Parse(loc)
	if err != nil || u.Scheme != "file" {
		return ""
	}
	return u.Path
}
