// Package validator checks generated clip documents before they are saved.
package validator

import (
	"fmt"
	"strings"

	"clipper/internal/clip"
	"clipper/internal/config"
	"clipper/pkg/textutil"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// FrontMatter is the metadata block every clip document carries.
type FrontMatter struct {
	Title   string `yaml:"title"`
	URL     string `yaml:"url"`
	Clipped string `yaml:"clipped"`
	Source  string `yaml:"source"`
}

// ValidationError represents a validation failure with context.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) String() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Result contains validation results for one document.
type Result struct {
	Errors      []ValidationError
	Warnings    []string
	FrontMatter FrontMatter
	Stats       clip.Stats
	IsValid     bool
}

func (r *Result) addError(field, message string) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Message: message})
	r.IsValid = false
}

// DocumentValidator validates clip documents.
type DocumentValidator struct {
	cfg config.ValidationConfig
	md  goldmark.Markdown
}

// New creates a validator for the given bounds.
func New(cfg config.ValidationConfig) *DocumentValidator {
	return &DocumentValidator{
		cfg: cfg,
		md:  goldmark.New(),
	}
}

// Validate parses the document's front matter and markdown body and
// checks them against the configured bounds. It never fails hard; all
// findings land in the result.
func (v *DocumentValidator) Validate(document string) *Result {
	result := &Result{IsValid: true}

	body := v.checkFrontMatter(document, result)
	v.checkBody(body, result)

	return result
}

func (v *DocumentValidator) checkFrontMatter(document string, result *Result) string {
	hasFence := strings.HasPrefix(document, "---\n")

	rest, err := frontmatter.Parse(strings.NewReader(document), &result.FrontMatter)
	if err != nil {
		result.addError("front_matter", fmt.Sprintf("unparseable: %v", err))

		return document
	}

	if v.cfg.RequireFrontMatter {
		if !hasFence || result.FrontMatter.Source == "" {
			result.addError("front_matter", "missing or incomplete front matter block")
		}

		if result.FrontMatter.URL == "" {
			result.addError("front_matter.url", "url is required")
		}

		if result.FrontMatter.Clipped == "" {
			result.addError("front_matter.clipped", "clipped timestamp is required")
		}
	}

	return string(rest)
}

func (v *DocumentValidator) checkBody(body string, result *Result) {
	source := []byte(body)
	root := v.md.Parser().Parse(text.NewReader(source))

	sawTitle := false

	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n := n.(type) {
		case *ast.Heading:
			result.Stats.Headings++

			if n.Level == 1 {
				sawTitle = true
			}
		case *ast.Link, *ast.AutoLink:
			result.Stats.Links++
		case *ast.Image:
			result.Stats.Images++
		}

		return ast.WalkContinue, nil
	})

	result.Stats.Words = textutil.WordCount(body)

	if v.cfg.RequireTitle && !sawTitle {
		result.addError("body", "document has no top-level heading")
	}

	if result.Stats.Words < v.cfg.MinWords {
		result.addError("body", fmt.Sprintf("word count %d below minimum %d", result.Stats.Words, v.cfg.MinWords))
	}

	if v.cfg.MaxWords > 0 && result.Stats.Words > v.cfg.MaxWords {
		result.addError("body", fmt.Sprintf("word count %d above maximum %d", result.Stats.Words, v.cfg.MaxWords))
	}

	if result.Stats.Headings == 0 {
		result.Warnings = append(result.Warnings, "document has no headings")
	}
}
