// Package extractor locates the main content of a fetched page and
// prepares it for markdown conversion.
package extractor

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"clipper/internal/config"
	"clipper/internal/dom"
	"clipper/pkg/textutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// ErrEmptyDocument indicates the page had no usable markup.
var ErrEmptyDocument = errors.New("document has no usable content")

// FallbackTitle is used when neither <title> nor a heading is present.
const FallbackTitle = "Untitled"

// Result is the extracted content subtree plus page metadata.
type Result struct {
	Title    string
	Selector string // content selector that matched, "" for body fallback
	Root     dom.Node
}

// SelectorCache remembers which content selector matched for a site, so
// batch runs against the same host skip the probe sequence. The cache is
// owned by the caller; nothing here is package-level mutable state.
type SelectorCache struct {
	mu     sync.Mutex
	bySite map[string]string
}

// NewSelectorCache creates an empty cache.
func NewSelectorCache() *SelectorCache {
	return &SelectorCache{bySite: make(map[string]string)}
}

// Get returns the cached selector for a site, if any.
func (c *SelectorCache) Get(site string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sel, ok := c.bySite[site]

	return sel, ok
}

// Put records the selector that matched for a site.
func (c *SelectorCache) Put(site, selector string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.bySite[site] = selector
}

// Extractor finds the content root of a page, strips non-content
// elements and builds the simplified tree for the converter.
type Extractor struct {
	cfg    config.ExtractionConfig
	policy *bluemonday.Policy
}

// New creates an extractor. The sanitize policy mirrors the tag set the
// converter understands; relative URLs are kept so the converter's
// non-http link rule still sees them.
func New(cfg config.ExtractionConfig) *Extractor {
	e := &Extractor{cfg: cfg}

	if cfg.Sanitize {
		p := bluemonday.NewPolicy()
		p.AllowElements(
			"h1", "h2", "h3", "h4", "h5", "h6",
			"p", "br", "hr", "blockquote", "pre", "code",
			"ul", "ol", "li", "strong", "b", "em", "i",
			"a", "img", "div", "span", "section", "article", "main",
			"table", "thead", "tbody", "tr", "th", "td",
		)
		p.AllowAttrs("href").OnElements("a")
		p.AllowAttrs("src", "alt").OnElements("img")
		p.AllowURLSchemes("http", "https")
		p.AllowRelativeURLs(true)

		e.policy = p
	}

	return e
}

// Extract processes one page without a selector cache.
func (e *Extractor) Extract(rawHTML string) (*Result, error) {
	return e.ExtractCached(rawHTML, "", nil)
}

// ExtractCached processes one page, consulting the cache for the site's
// known content selector when cache is non-nil.
func (e *Extractor) ExtractCached(rawHTML, site string, cache *SelectorCache) (*Result, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, ErrEmptyDocument
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	title := e.extractTitle(doc)
	content, selector := e.locateContent(doc, site, cache)

	if cache != nil && site != "" && selector != "" {
		cache.Put(site, selector)
	}

	// Drop non-content elements inside the chosen subtree.
	if len(e.cfg.StripSelectors) > 0 {
		content.Find(strings.Join(e.cfg.StripSelectors, ", ")).Remove()
	}

	subtree, err := goquery.OuterHtml(content)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize content subtree: %w", err)
	}

	if e.policy != nil {
		subtree = e.policy.Sanitize(subtree)
	}

	root, err := dom.ParseHTMLString(subtree)
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild content tree: %w", err)
	}

	return &Result{
		Title:    title,
		Selector: selector,
		Root:     root,
	}, nil
}

func (e *Extractor) extractTitle(doc *goquery.Document) string {
	if title := textutil.NormalizeWhitespace(doc.Find("title").First().Text()); title != "" {
		return title
	}

	if h1 := textutil.NormalizeWhitespace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}

	return FallbackTitle
}

// locateContent tries the cached selector first, then the configured
// candidates in order, then falls back to body.
func (e *Extractor) locateContent(doc *goquery.Document, site string, cache *SelectorCache) (*goquery.Selection, string) {
	if cache != nil && site != "" {
		if sel, ok := cache.Get(site); ok {
			if match := doc.Find(sel).First(); match.Length() > 0 {
				return match, sel
			}
		}
	}

	for _, sel := range e.cfg.ContentSelectors {
		if match := doc.Find(sel).First(); match.Length() > 0 {
			return match, sel
		}
	}

	return doc.Find("body").First(), ""
}
