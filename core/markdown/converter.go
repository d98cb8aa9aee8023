// ABOUTME: HTML to Markdown converter built on a tag -> render function table
// ABOUTME: Walks the parsed DOM depth-first and renders each element from its converted children

// Package markdown converts HTML fragments into Markdown.
//
// Conversion never fails: the HTML parser tolerates malformed input and the
// worst case is partially rendered output. Text is emitted verbatim, so
// Markdown metacharacters inside text are not escaped.
package markdown

import (
	"strings"

	"golang.org/x/net/html"
)

// RenderFunc renders one element. Implementations call c.Children(n) to get
// the Markdown of the element's children.
type RenderFunc func(c *Converter, n *html.Node) string

// Converter holds the tag dispatch table. Tags without a rule are transparent:
// their children are rendered with no wrapping.
//
// A Converter is safe for concurrent use once all Register calls are done.
type Converter struct {
	rules map[string]RenderFunc
}

// NewConverter creates a converter with the default rule set
func NewConverter() *Converter {
	return &Converter{rules: defaultRules()}
}

// Register adds or replaces the rule for a tag (case-insensitive)
func (c *Converter) Register(tag string, fn RenderFunc) {
	tag = strings.ToLower(tag)
	if fn == nil {
		delete(c.rules, tag)
		return
	}
	c.rules[tag] = fn
}

// Convert parses input as an HTML document and renders the body as Markdown
func (c *Converter) Convert(input string) string {
	doc, err := html.Parse(strings.NewReader(input))
	if err != nil || doc == nil {
		return ""
	}
	body := findElement(doc, "body")
	if body == nil {
		return ""
	}
	return c.Children(body)
}

// Children renders every child of n in document order
func (c *Converter) Children(n *html.Node) string {
	var b strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		b.WriteString(c.render(child))
	}
	return b.String()
}

func (c *Converter) render(n *html.Node) string {
	switch n.Type {
	case html.TextNode:
		return n.Data
	case html.ElementNode:
		if fn, ok := c.rules[strings.ToLower(n.Data)]; ok {
			return fn(c, n)
		}
		return c.Children(n)
	}
	// comments, doctypes and raw nodes carry no readable content
	return ""
}

var defaultConverter = NewConverter()

// Convert renders html with the default rule set
func Convert(input string) string {
	return defaultConverter.Convert(input)
}

// TextContent returns the concatenated text of n and all its descendants,
// matching the DOM textContent property.
func TextContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		b.WriteString(TextContent(child))
	}
	return b.String()
}

// Attr returns the value of the named attribute, or "" when absent
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && strings.EqualFold(n.Data, tag) {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findElement(child, tag); found != nil {
			return found
		}
	}
	return nil
}
