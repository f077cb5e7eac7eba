package markdown

import (
	"fmt"
	"strings"
	"time"
)

// SourceLabel identifies the clip producer in front matter.
const SourceLabel = "Personal Web Clipper"

// TimeFormatter renders the human-readable footer timestamp. The front
// matter always carries the raw ISO string; only the footer rendering is
// locale-dependent, so tests inject a deterministic formatter here.
type TimeFormatter func(time.Time) string

// DefaultTimeFormatter renders in the clip's local time.
func DefaultTimeFormatter(t time.Time) string {
	return t.Local().Format("January 2, 2006 3:04:05 PM")
}

// BuildDocument wraps converted content into the final clip document:
// front matter, H1 title, body and a source attribution footer.
func BuildDocument(title, content, url, timestampISO string) string {
	return BuildDocumentWith(title, content, url, timestampISO, DefaultTimeFormatter)
}

// BuildDocumentWith is BuildDocument with an explicit footer formatter.
func BuildDocumentWith(title, content, url, timestampISO string, formatTime TimeFormatter) string {
	if formatTime == nil {
		formatTime = DefaultTimeFormatter
	}

	var sb strings.Builder

	// Only embedded double quotes are escaped; the front matter value
	// is a double-quoted YAML-like scalar.
	escapedTitle := strings.ReplaceAll(title, `"`, `\"`)

	sb.WriteString("---\n")
	sb.WriteString(fmt.Sprintf("title: \"%s\"\n", escapedTitle))
	sb.WriteString(fmt.Sprintf("url: \"%s\"\n", url))
	sb.WriteString(fmt.Sprintf("clipped: \"%s\"\n", timestampISO))
	sb.WriteString(fmt.Sprintf("source: \"%s\"\n", SourceLabel))
	sb.WriteString("---\n\n")

	sb.WriteString("# " + title + "\n\n")
	sb.WriteString(content + "\n\n")

	sb.WriteString("---\n\n")
	sb.WriteString(fmt.Sprintf("**Source:** [%s](%s)  \n", url, url))
	sb.WriteString(fmt.Sprintf("**Clipped:** %s\n", formatTime(parseClipTime(timestampISO))))

	return sb.String()
}

// parseClipTime accepts RFC3339 with or without fractional seconds; an
// unparseable stamp falls back to the zero time rather than failing,
// keeping document building total.
func parseClipTime(iso string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, iso); err == nil {
			return t
		}
	}

	return time.Time{}
}
