// Package clip defines the saved-clip model and its persistence.
package clip

import (
	"time"

	"clipper/pkg/textutil"
)

// Stats summarizes the generated clip body.
type Stats struct {
	Words    int
	Headings int
	Links    int
	Images   int
}

// Clip is one captured page: the built markdown document plus the
// metadata it was built from.
type Clip struct {
	Title     string
	URL       string
	ClippedAt time.Time
	Document  string
	Stats     Stats
}

// New creates a clip with its word count filled in. Heading, link and
// image counts come from validation, which walks the markdown AST.
func New(title, url string, clippedAt time.Time, document string) *Clip {
	return &Clip{
		Title:     title,
		URL:       url,
		ClippedAt: clippedAt,
		Document:  document,
		Stats: Stats{
			Words: textutil.WordCount(document),
		},
	}
}

// Filename returns the slugged output filename for this clip.
func (c *Clip) Filename() string {
	return textutil.Slugify(c.Title) + ".md"
}
