// Package dom defines the simplified element tree consumed by the markdown converter.
package dom

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Attributes the converter reads; everything else is dropped at build time.
var keptAttributes = map[string]bool{
	"href": true,
	"src":  true,
	"alt":  true,
}

// Node is one node of the simplified tree. Exactly two implementations
// exist: Text and Element. The tree is acyclic and each element
// exclusively owns its children; consumers treat it as read-only.
type Node interface {
	isNode()
}

// Text is a leaf carrying raw character data.
type Text struct {
	Data string
}

func (*Text) isNode() {}

// Element is a tagged node with ordered children.
type Element struct {
	Tag      string // lower-case tag name
	Attr     map[string]string
	Children []Node
}

func (*Element) isNode() {}

// GetAttr returns the attribute value or "" when absent.
func (e *Element) GetAttr(key string) string {
	if e.Attr == nil {
		return ""
	}

	return e.Attr[key]
}

// TextContent returns the concatenated character data of the element's
// subtree in document order.
func (e *Element) TextContent() string {
	var sb strings.Builder

	appendText(e, &sb)

	return sb.String()
}

func appendText(n Node, sb *strings.Builder) {
	switch n := n.(type) {
	case *Text:
		sb.WriteString(n.Data)
	case *Element:
		for _, c := range n.Children {
			appendText(c, sb)
		}
	}
}

// NewText creates a text leaf.
func NewText(data string) *Text {
	return &Text{Data: data}
}

// NewElement creates an element node. The tag is normalized to lower case.
func NewElement(tag string, attr map[string]string, children ...Node) *Element {
	return &Element{
		Tag:      strings.ToLower(tag),
		Attr:     attr,
		Children: children,
	}
}

// FromHTML builds the simplified tree from a parsed x/net/html node.
// Comments, doctypes and processing instructions vanish; the document
// node itself becomes a transparent "#document" element. Attributes
// other than href, src and alt are not carried over.
func FromHTML(n *html.Node) Node {
	switch n.Type {
	case html.TextNode:
		return &Text{Data: n.Data}
	case html.ElementNode:
		return elementFromHTML(n, n.Data)
	case html.DocumentNode:
		return elementFromHTML(n, "#document")
	default:
		return nil
	}
}

func elementFromHTML(n *html.Node, tag string) *Element {
	el := &Element{Tag: strings.ToLower(tag)}

	for _, a := range n.Attr {
		if !keptAttributes[a.Key] {
			continue
		}

		if el.Attr == nil {
			el.Attr = make(map[string]string, len(keptAttributes))
		}

		el.Attr[a.Key] = a.Val
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if child := FromHTML(c); child != nil {
			el.Children = append(el.Children, child)
		}
	}

	return el
}

// ParseHTML parses a full HTML document from r into a simplified tree.
func ParseHTML(r io.Reader) (Node, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	return FromHTML(doc), nil
}

// ParseHTMLString is a convenience wrapper around ParseHTML.
func ParseHTMLString(s string) (Node, error) {
	return ParseHTML(strings.NewReader(s))
}
