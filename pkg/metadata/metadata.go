// Package metadata manages the integrity trailer appended to saved clips.
// The trailer lets maintenance tooling detect clips that were edited by
// hand after they were written, without parsing the whole document.
package metadata

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	// TagStart opens the trailer block.
	TagStart = "<!-- CLIP_META"
	// TagEnd closes the trailer block.
	TagEnd = "CLIP_META -->"
)

// Trailer verification errors.
var (
	ErrNoTrailer    = errors.New("no clip metadata trailer found")
	ErrNoHash       = errors.New("no hash in clip metadata trailer")
	ErrHashMismatch = errors.New("clip content does not match trailer hash")
)

// Trailer holds the integrity information of a saved clip.
type Trailer struct {
	SignedAt  time.Time
	Generator string
	Hash      string
	Validated bool
}

var trailerRegex = regexp.MustCompile(`(?s)<!--\s*CLIP_META\s*\n(.*?)\n\s*CLIP_META\s*-->`)

// Extract splits the trailer from a clip document. It returns the parsed
// trailer (nil when absent) and the document without the trailer; the
// cleaned document is what gets hashed.
func Extract(content string) (*Trailer, string) {
	match := trailerRegex.FindStringSubmatch(content)
	clean := strings.TrimRight(trailerRegex.ReplaceAllString(content, ""), "\n")

	if len(match) < 2 {
		return nil, clean
	}

	trailer := &Trailer{}

	for _, line := range strings.Split(match[1], "\n") {
		key, val, ok := strings.Cut(strings.TrimSpace(line), ":")
		if !ok {
			continue
		}

		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)

		switch key {
		case "VALIDATED":
			trailer.Validated = strings.EqualFold(val, "TRUE")
		case "SIGNED_AT":
			if t, err := time.Parse(time.RFC3339, val); err == nil {
				trailer.SignedAt = t
			}
		case "HASH":
			trailer.Hash = val
		case "GENERATOR":
			trailer.Generator = val
		}
	}

	return trailer, clean
}

// Hash computes the SHA-256 hash of the clip body, trailer excluded.
func Hash(content string) string {
	_, clean := Extract(content)
	sum := sha256.Sum256([]byte(clean))

	return hex.EncodeToString(sum[:])
}

// Sign strips any existing trailer and appends a fresh one with the
// current hash and timestamp.
func Sign(content, generator string, validated bool) string {
	_, clean := Extract(content)

	valStr := "FALSE"
	if validated {
		valStr = "TRUE"
	}

	block := fmt.Sprintf("\n\n%s\nGENERATOR: %s\nVALIDATED: %s\nSIGNED_AT: %s\nHASH: %s\n%s",
		TagStart,
		generator,
		valStr,
		time.Now().UTC().Format(time.RFC3339),
		Hash(clean),
		TagEnd)

	return clean + block
}

// Verify reports whether the clip body still matches its trailer hash.
func Verify(content string) (bool, error) {
	trailer, clean := Extract(content)
	if trailer == nil {
		return false, ErrNoTrailer
	}

	if trailer.Hash == "" {
		return false, ErrNoHash
	}

	calculated := Hash(clean)
	if calculated != trailer.Hash {
		return false, fmt.Errorf("%w: expected %s, got %s", ErrHashMismatch, trailer.Hash, calculated)
	}

	return true, nil
}
