package tags

import (
	"fmt"
	"math/big"

	"github.com/bogem/id3v2/v2"
)

// RatingSource is the popularimeter email label this tool reads and owns.
const RatingSource = "itunes"

// File is an open ID3 tag container for one audio file.
type File struct {
	tag *id3v2.Tag
}

// Open parses the ID3 tag of the file at path.
func Open(path string) (*File, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		return nil, fmt.Errorf("tags: open %s: %w", path, err)
	}
	return &File{tag: tag}, nil
}

// Rating returns the 0-5 star rating recorded in the popularimeter frame for
// the given source label, found=false when no such frame exists. Star values
// live directly in the rating byte; this tool does not use the 0-255 banding
// some players write.
func (f *File) Rating(source string) (stars int, found bool) {
	for _, frame := range f.tag.GetFrames(f.tag.CommonID("Popularimeter")) {
		popm, ok := frame.(id3v2.PopularimeterFrame)
		if !ok || popm.Email != source {
			continue
		}
		return int(popm.Rating), true
	}
	return 0, false
}

// SetRating records stars in the popularimeter frame for source, replacing
// any previous frame with the same label.
func (f *File) SetRating(source string, stars int) {
	f.tag.AddFrame(f.tag.CommonID("Popularimeter"), id3v2.PopularimeterFrame{
		Email:   source,
		Rating:  uint8(stars),
		Counter: big.NewInt(0),
	})
}

// SetGrouping stamps the content-group frame, used as a provenance marker for
// when a rating was rewritten.
func (f *File) SetGrouping(v string) {
	f.tag.AddTextFrame(f.tag.CommonID("Content group description"), f.tag.DefaultEncoding(), v)
}

// Save writes the tag back to the file.
func (f *File) Save() error {
	if err := f.tag.Save(); err != nil {
		return fmt.Errorf("tags: save: %w", err)
	}
	return nil
}

// Close releases the underlying file without saving.
func (f *File) Close() error { return f.tag.Close() }
