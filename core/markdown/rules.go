// ABOUTME: Default per-tag Markdown rendering rules
// ABOUTME: Headings, paragraphs, emphasis, links, images, lists, quotes, code and rules

package markdown

import (
	"strings"

	"golang.org/x/net/html"
)

func defaultRules() map[string]RenderFunc {
	rules := map[string]RenderFunc{
		"p":          renderParagraph,
		"br":         renderLineBreak,
		"strong":     wrap("**"),
		"b":          wrap("**"),
		"em":         wrap("*"),
		"i":          wrap("*"),
		"a":          renderLink,
		"img":        renderImage,
		"ul":         renderList("*"),
		"ol":         renderList("1."),
		"blockquote": renderBlockquote,
		"pre":        renderCodeBlock,
		"code":       renderCodeBlock,
		"hr":         renderRule,
	}
	for level := 1; level <= 6; level++ {
		rules["h"+string(rune('0'+level))] = renderHeading(level)
	}
	return rules
}

func renderHeading(level int) RenderFunc {
	prefix := strings.Repeat("#", level) + " "
	return func(c *Converter, n *html.Node) string {
		return prefix + c.Children(n) + "\n\n"
	}
}

func renderParagraph(c *Converter, n *html.Node) string {
	return c.Children(n) + "\n\n"
}

func renderLineBreak(*Converter, *html.Node) string {
	return "\n"
}

func wrap(marker string) RenderFunc {
	return func(c *Converter, n *html.Node) string {
		return marker + c.Children(n) + marker
	}
}

func renderLink(c *Converter, n *html.Node) string {
	return "[" + c.Children(n) + "](" + Attr(n, "href") + ")"
}

func renderImage(_ *Converter, n *html.Node) string {
	return "![" + Attr(n, "alt") + "](" + Attr(n, "src") + ")"
}

// renderList emits every direct li child with the same marker. Ordered lists
// use a literal "1." for each item; Markdown renderers renumber them.
func renderList(marker string) RenderFunc {
	return func(c *Converter, n *html.Node) string {
		var b strings.Builder
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if child.Type != html.ElementNode || !strings.EqualFold(child.Data, "li") {
				continue
			}
			b.WriteString(marker)
			b.WriteString(" ")
			b.WriteString(c.Children(child))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		return b.String()
	}
}

// renderBlockquote prefixes every line of the converted content, blank lines included
func renderBlockquote(c *Converter, n *html.Node) string {
	lines := strings.Split(c.Children(n), "\n")
	for i, line := range lines {
		lines[i] = "> " + line
	}
	return strings.Join(lines, "\n") + "\n\n"
}

// renderCodeBlock uses raw text so nested markup inside code is flattened
func renderCodeBlock(_ *Converter, n *html.Node) string {
	return "```\n" + TextContent(n) + "\n```\n\n"
}

func renderRule(*Converter, *html.Node) string {
	return "---\n\n"
}
