package frontend

import (
	"bytes"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/dgallion1/bookc/internal/syntax"
)

// Markdown handles Markdown files using goldmark.
//
// Headings take their label from a {#label} attribute. A fenced code block
// whose info string is name:arg[:arg] becomes that block element, so
// ```list:l1:Sample opens a numbered list; other fenced or indented code
// becomes emlist. Emphasis, code spans and links map to the i, b, tt and
// href inline elements.
type Markdown struct{}

func (p *Markdown) Parse(r io.Reader, filename string) (*syntax.Tree, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithParserOptions(parser.WithHeadingAttribute()))
	doc := md.Parser().Parse(text.NewReader(src))

	c := &mdConverter{src: src, tree: syntax.New(ChapterName(filename))}
	c.sections = newSections(c.tree)
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		c.block(c.sections.current(), n, 0)
	}
	return c.tree, nil
}

type mdConverter struct {
	src      []byte
	tree     *syntax.Tree
	sections *sections
}

// block converts a block-level node. Only top-level headings open
// sections; content nested in quotes attaches to parent.
func (c *mdConverter) block(parent syntax.NodeID, n ast.Node, listLevel int) {
	switch node := n.(type) {
	case *ast.Heading:
		tag := ""
		if v, ok := node.AttributeString("id"); ok {
			if b, ok := v.([]byte); ok {
				tag = string(b)
			}
		}
		hd := c.sections.open(node.Level, tag, c.line(node))
		c.tree.AddMarkedText(hd, strings.TrimSpace(c.inlines(node)))

	case *ast.Paragraph, *ast.TextBlock:
		p := c.tree.AddParagraph(parent)
		c.tree.Node(p).Line = c.line(node)
		c.tree.AddMarkedText(p, c.inlines(node))

	case *ast.FencedCodeBlock:
		name, args := "emlist", []string(nil)
		if node.Info != nil {
			info := strings.TrimSpace(string(node.Info.Segment.Value(c.src)))
			head, rest, ok := strings.Cut(info, ":")
			switch {
			case ok && fencedBlocks[head]:
				name, args = head, strings.SplitN(rest, ":", 2)
			case ok:
				// A language with a file name, e.g. python:hello.py.
				args = []string{info}
			}
		}
		c.code(parent, node, name, args)

	case *ast.CodeBlock:
		c.code(parent, node, "emlist", nil)

	case *ast.List:
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			c.listItem(parent, item, listLevel+1)
		}

	case *ast.Blockquote:
		q := c.tree.AddBlock(parent, "quote")
		for child := node.FirstChild(); child != nil; child = child.NextSibling() {
			c.block(q, child, listLevel)
		}

	case *ast.HTMLBlock:
		var buf bytes.Buffer
		buf.Write(node.Lines().Value(c.src))
		if node.HasClosure() {
			buf.Write(node.ClosureLine.Value(c.src))
		}
		c.tree.AddBlock(parent, "raw", "|html|"+strings.TrimRight(buf.String(), "\n"))

	case *ast.ThematicBreak:
		// No element; sections are delimited by headings.

	default:
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			c.block(parent, child, listLevel)
		}
	}
}

// listItem adds one list item. Nested lists follow as sibling items with a
// deeper level, the way list items are represented in the tree.
func (c *mdConverter) listItem(parent syntax.NodeID, item ast.Node, level int) {
	li := c.tree.AddUlist(parent, level)
	var nested []ast.Node
	first := true
	for child := item.FirstChild(); child != nil; child = child.NextSibling() {
		switch child.(type) {
		case *ast.List:
			nested = append(nested, child)
		case *ast.Paragraph, *ast.TextBlock:
			if !first {
				c.tree.AddText(li, "\n")
			}
			c.tree.AddMarkedText(li, c.inlines(child))
			first = false
		}
	}
	for _, list := range nested {
		c.block(parent, list, level)
	}
}

// fencedBlocks are the code block names a fence info string may select
// with name:label[:caption].
var fencedBlocks = map[string]bool{
	"list": true, "listnum": true, "emlist": true, "emlistnum": true, "source": true, "cmd": true,
}

func (c *mdConverter) code(parent syntax.NodeID, n ast.Node, name string, args []string) {
	b := c.tree.AddBlock(parent, name, args...)
	c.tree.Node(b).Line = c.line(n)
	if body := string(n.Lines().Value(c.src)); body != "" {
		c.tree.AddText(b, body)
	}
}

// inlines renders the inline children of n as marked text.
func (c *mdConverter) inlines(n ast.Node) string {
	var buf strings.Builder
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		c.inline(&buf, child)
	}
	return buf.String()
}

func (c *mdConverter) inline(buf *strings.Builder, n ast.Node) {
	switch node := n.(type) {
	case *ast.Text:
		buf.Write(node.Value(c.src))
		if node.SoftLineBreak() || node.HardLineBreak() {
			buf.WriteByte('\n')
		}
	case *ast.String:
		buf.Write(node.Value)
	case *ast.RawHTML:
		// "@<list>{x}" reaches goldmark as text, raw tag, text.
		buf.Write(node.Segments.Value(c.src))
	case *ast.Emphasis:
		name := "i"
		if node.Level >= 2 {
			name = "b"
		}
		buf.WriteString(inlineMarkup(name, c.plain(node)))
	case *ast.CodeSpan:
		buf.WriteString(inlineMarkup("tt", c.plain(node)))
	case *ast.Link:
		buf.WriteString(inlineMarkup("href", string(node.Destination)+", "+c.plain(node)))
	case *ast.AutoLink:
		buf.WriteString(inlineMarkup("href", string(node.URL(c.src))))
	case *ast.Image:
		buf.WriteString(inlineMarkup("icon", string(node.Destination)))
	default:
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			c.inline(buf, child)
		}
	}
}

// plain is the text content of an inline subtree without markup.
func (c *mdConverter) plain(n ast.Node) string {
	var buf strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := child.(type) {
		case *ast.Text:
			buf.Write(t.Value(c.src))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		case *ast.RawHTML:
			buf.Write(t.Segments.Value(c.src))
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

// line is the 1-based source line of a block node, or 0.
func (c *mdConverter) line(n ast.Node) int {
	lines := n.Lines()
	if lines == nil || lines.Len() == 0 {
		return 0
	}
	return 1 + bytes.Count(c.src[:lines.At(0).Start], []byte("\n"))
}
