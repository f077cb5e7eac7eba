// Package markdown converts a simplified element tree into markdown text
// and assembles the final front-matter-wrapped clip document.
package markdown

import (
	"fmt"
	"regexp"
	"strings"

	"clipper/internal/dom"
)

// DefaultMaxDepth caps tree recursion. Content below the cap is dropped
// rather than risking stack exhaustion on pathological trees.
const DefaultMaxDepth = 200

// Pre-compile cleanup patterns to avoid recompilation overhead.
var (
	multiNewlinePattern = regexp.MustCompile(`\n{3,}`)
	trailingWSPattern   = regexp.MustCompile(`[ \t]+\n`)
)

// escaper prefixes markdown metacharacters with a backslash. A single
// Replacer pass never rescans inserted text, so backslashes inserted for
// later characters are not themselves re-escaped.
var escaper = strings.NewReplacer(
	`\`, `\\`,
	`*`, `\*`,
	`_`, `\_`,
	`[`, `\[`,
	`]`, `\]`,
	`(`, `\(`,
	`)`, `\)`,
	`#`, `\#`,
	`+`, `\+`,
	`!`, `\!`,
)

// Converter translates a dom tree into markdown. The zero value is not
// usable; construct with NewConverter. Conversion is stateless and
// deterministic, so a single Converter is safe for concurrent use.
type Converter struct {
	maxDepth int
}

// NewConverter creates a converter with the default recursion cap.
func NewConverter() *Converter {
	return &Converter{maxDepth: DefaultMaxDepth}
}

// NewConverterWithDepth creates a converter with a custom recursion cap.
func NewConverterWithDepth(maxDepth int) *Converter {
	if maxDepth < 1 {
		maxDepth = DefaultMaxDepth
	}

	return &Converter{maxDepth: maxDepth}
}

// Convert walks the tree rooted at root and returns cleaned-up markdown.
// It is total: every input yields some string, unknown tags degrade to
// pass-through text.
func (c *Converter) Convert(root dom.Node) string {
	return cleanup(c.convertNode(root, 0))
}

// Convert converts a tree with a default converter.
func Convert(root dom.Node) string {
	return NewConverter().Convert(root)
}

func (c *Converter) convertNode(n dom.Node, depth int) string {
	if depth > c.maxDepth {
		return ""
	}

	switch n := n.(type) {
	case *dom.Text:
		return escaper.Replace(n.Data)
	case *dom.Element:
		return c.convertElement(n, depth)
	default:
		return ""
	}
}

func (c *Converter) convertElement(el *dom.Element, depth int) string {
	// Direct conversions consume the element's full text content as a
	// unit, bypassing per-child formatting.
	switch el.Tag {
	case "code":
		return "`" + el.TextContent() + "`"
	case "pre":
		return "\n```\n" + el.TextContent() + "\n```\n\n"
	case "ul":
		return c.convertList(el, depth, false)
	case "ol":
		return c.convertList(el, depth, true)
	case "a":
		href := el.GetAttr("href")
		if strings.HasPrefix(href, "http") {
			return fmt.Sprintf("[%s](%s)", el.TextContent(), href)
		}

		return el.TextContent()
	case "img":
		src := el.GetAttr("src")
		if src == "" {
			return ""
		}

		alt := el.GetAttr("alt")
		if alt == "" {
			alt = "Image"
		}

		return fmt.Sprintf("![%s](%s)", alt, src)
	case "br":
		return "\n"
	case "hr":
		return "\n---\n\n"
	}

	// Everything else converts its children in document order first,
	// then applies tag-specific block wrapping.
	var sb strings.Builder
	for _, child := range el.Children {
		sb.WriteString(c.convertNode(child, depth+1))
	}

	return wrapBlock(el.Tag, sb.String())
}

func wrapBlock(tag, content string) string {
	switch tag {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		trimmed := strings.TrimSpace(content)
		if trimmed == "" {
			return ""
		}

		level := int(tag[1] - '0')

		return "\n" + strings.Repeat("#", level) + " " + trimmed + "\n\n"
	case "blockquote":
		lines := strings.Split(strings.TrimSpace(content), "\n")
		for i, line := range lines {
			if line != "" {
				lines[i] = "> " + line
			}
		}

		return "\n" + strings.Join(lines, "\n") + "\n\n"
	case "p":
		trimmed := strings.TrimSpace(content)
		if trimmed == "" {
			return ""
		}

		return "\n" + trimmed + "\n\n"
	case "strong", "b":
		trimmed := strings.TrimSpace(content)
		if trimmed == "" {
			return ""
		}

		return "**" + trimmed + "**"
	case "em", "i":
		trimmed := strings.TrimSpace(content)
		if trimmed == "" {
			return ""
		}

		return "*" + trimmed + "*"
	case "li":
		// Stray list items outside ul/ol contribute nothing. Known
		// quirk carried over from the observed behavior; list items
		// are only rendered by convertList.
		return ""
	default:
		// Transparent container: children pass through unwrapped.
		return content
	}
}

// convertList renders the direct li children of a ul/ol element. Nested
// block content inside an item is re-indented by two spaces so it stays
// visually attached to its item.
func (c *Converter) convertList(el *dom.Element, depth int, ordered bool) string {
	var sb strings.Builder

	sb.WriteString("\n")

	num := 0

	for _, child := range el.Children {
		item, ok := child.(*dom.Element)
		if !ok || item.Tag != "li" {
			continue
		}

		var content strings.Builder
		for _, grandchild := range item.Children {
			content.WriteString(c.convertNode(grandchild, depth+1))
		}

		text := strings.ReplaceAll(strings.TrimSpace(content.String()), "\n", "\n  ")

		num++
		if ordered {
			sb.WriteString(fmt.Sprintf("%d. %s\n", num, text))
		} else {
			sb.WriteString("- " + text + "\n")
		}
	}

	sb.WriteString("\n")

	return sb.String()
}

// cleanup collapses runs of three or more newlines to exactly two,
// strips trailing whitespace from every line and trims the result.
func cleanup(s string) string {
	s = multiNewlinePattern.ReplaceAllString(s, "\n\n")
	s = trailingWSPattern.ReplaceAllString(s, "\n")
	// Stripping whitespace-only lines can merge newline runs, so
	// collapse once more to keep the at-most-one-blank-line guarantee.
	s = multiNewlinePattern.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}
