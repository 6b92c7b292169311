package frontend

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/bookc/internal/syntax"
)

// HTML handles HTML files. Heading ids become headline labels, a <pre>
// with an id becomes a numbered list and a <table> or <img> with an id
// becomes a numbered table or figure. When the body has no <h1>, the
// document <title> is used as the chapter headline.
type HTML struct{}

func (p *HTML) Parse(r io.Reader, filename string) (*syntax.Tree, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	c := &htmlConverter{tree: syntax.New(ChapterName(filename))}
	c.sections = newSections(c.tree)

	body := findElement(doc, "body")
	if body == nil {
		body = doc
	}
	if findElement(body, "h1") == nil {
		if title := findElement(doc, "title"); title != nil {
			hd := c.sections.open(1, "", 0)
			c.tree.AddText(hd, textContent(title))
		}
	}
	c.walk(body, false)
	return c.tree, nil
}

type htmlConverter struct {
	tree     *syntax.Tree
	sections *sections
}

// walk converts the block-level content of n. inQuote keeps content inside
// the enclosing quote block instead of the current section.
func (c *htmlConverter) walk(n *html.Node, inQuote bool) {
	c.children(c.sections.current(), n, inQuote)
}

func (c *htmlConverter) children(parent syntax.NodeID, n *html.Node, inQuote bool) {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if !inQuote {
			parent = c.sections.current()
		}
		c.node(parent, child, inQuote)
	}
}

func (c *htmlConverter) node(parent syntax.NodeID, n *html.Node, inQuote bool) {
	switch n.Type {
	case html.TextNode:
		if t := collapse(n.Data); strings.TrimSpace(t) != "" {
			p := c.tree.AddParagraph(parent)
			c.tree.AddMarkedText(p, strings.TrimSpace(t))
		}
		return
	case html.ElementNode:
	default:
		c.children(parent, n, inQuote)
		return
	}

	if level := headingLevel(n.Data); level > 0 {
		hd := c.sections.open(level, attr(n, "id"), 0)
		c.tree.AddMarkedText(hd, c.inlines(n))
		return
	}

	switch n.Data {
	case "script", "style", "nav", "footer", "header", "head":
		return
	case "p":
		if t := c.inlines(n); t != "" {
			p := c.tree.AddParagraph(parent)
			c.tree.AddMarkedText(p, t)
		}
	case "ul", "ol":
		c.list(parent, n, 1)
	case "pre":
		name, args := "emlist", []string(nil)
		if id := attr(n, "id"); id != "" {
			name, args = "list", []string{id, attr(n, "title")}
		} else if title := attr(n, "title"); title != "" {
			args = []string{title}
		}
		b := c.tree.AddBlock(parent, name, args...)
		if body := rawText(n); body != "" {
			c.tree.AddText(b, body)
		}
	case "blockquote":
		q := c.tree.AddBlock(parent, "quote")
		c.children(q, n, true)
	case "table":
		c.table(parent, n)
	case "img":
		if id := attr(n, "id"); id != "" {
			c.tree.AddBlock(parent, "image", id, attr(n, "alt"))
		}
	default:
		c.children(parent, n, inQuote)
	}
}

// list adds the items of a <ul> or <ol>; nested lists follow their item
// with a deeper level.
func (c *htmlConverter) list(parent syntax.NodeID, n *html.Node, level int) {
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		item := c.tree.AddUlist(parent, level)
		var buf strings.Builder
		var nested []*html.Node
		for child := li.FirstChild; child != nil; child = child.NextSibling {
			if child.Type == html.ElementNode && (child.Data == "ul" || child.Data == "ol") {
				nested = append(nested, child)
				continue
			}
			c.inline(&buf, child)
		}
		c.tree.AddMarkedText(item, strings.TrimSpace(buf.String()))
		for _, sub := range nested {
			c.list(parent, sub, level+1)
		}
	}
}

// table adds a table block with one tab-separated line per row.
func (c *htmlConverter) table(parent syntax.NodeID, n *html.Node) {
	caption := ""
	if el := findElement(n, "caption"); el != nil {
		caption = textContent(el)
	}
	var rows []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var cells []string
			for cell := n.FirstChild; cell != nil; cell = cell.NextSibling {
				if cell.Type == html.ElementNode && (cell.Data == "td" || cell.Data == "th") {
					cells = append(cells, textContent(cell))
				}
			}
			rows = append(rows, strings.Join(cells, "\t"))
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	b := c.tree.AddBlock(parent, "table", attr(n, "id"), caption)
	if len(rows) > 0 {
		c.tree.AddText(b, strings.Join(rows, "\n")+"\n")
	}
}

// inlines renders the inline content of n as marked text.
func (c *htmlConverter) inlines(n *html.Node) string {
	var buf strings.Builder
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.inline(&buf, child)
	}
	return strings.TrimSpace(buf.String())
}

func (c *htmlConverter) inline(buf *strings.Builder, n *html.Node) {
	if n.Type == html.TextNode {
		buf.WriteString(collapse(n.Data))
		return
	}
	if n.Type != html.ElementNode {
		return
	}
	switch n.Data {
	case "em", "i", "cite":
		buf.WriteString(inlineMarkup("i", textContent(n)))
	case "strong", "b":
		buf.WriteString(inlineMarkup("b", textContent(n)))
	case "code", "tt", "kbd", "samp":
		buf.WriteString(inlineMarkup("tt", textContent(n)))
	case "u":
		buf.WriteString(inlineMarkup("u", textContent(n)))
	case "a":
		href := attr(n, "href")
		if href == "" {
			buf.WriteString(collapse(textContent(n)))
			return
		}
		buf.WriteString(inlineMarkup("href", href+", "+textContent(n)))
	case "br":
		buf.WriteString("@<br>{}")
	case "script", "style":
	default:
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			c.inline(buf, child)
		}
	}
}

func headingLevel(tag string) int {
	if len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6' {
		return int(tag[1] - '0')
	}
	return 0
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// collapse folds runs of whitespace into single spaces.
func collapse(s string) string {
	var buf strings.Builder
	space := false
	for _, r := range s {
		if r == ' ' || r == '\n' || r == '\t' || r == '\r' {
			space = true
			continue
		}
		if space {
			buf.WriteByte(' ')
			space = false
		}
		buf.WriteRune(r)
	}
	if space {
		buf.WriteByte(' ')
	}
	return buf.String()
}

func textContent(n *html.Node) string {
	return strings.TrimSpace(collapse(rawText(n)))
}

func rawText(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}

func findElement(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findElement(c, tag); b != nil {
			return b
		}
	}
	return nil
}
