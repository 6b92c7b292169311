package frontend

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/bookc/internal/syntax"
)

// DOCX handles .docx files. Heading styles open sections, list styles
// become list items and consecutive Code paragraphs become one emlist
// block. Bold and italic runs keep their formatting as b and i elements.
type DOCX struct{}

func (p *DOCX) Parse(r io.Reader, filename string) (*syntax.Tree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read docx: %w", err)
	}
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	tree := syntax.New(ChapterName(filename))
	s := newSections(tree)
	code := syntax.NoNode // open emlist block, if the previous paragraph was code

	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		style := docxStyle(para)
		if strings.EqualFold(style, "Code") {
			if code == syntax.NoNode {
				code = tree.AddBlock(s.current(), "emlist")
			}
			tree.AddText(code, para.String()+"\n")
			continue
		}
		code = syntax.NoNode

		text := strings.TrimSpace(docxParagraphText(para))
		if text == "" {
			continue
		}
		switch {
		case docxHeadingLevel(style) > 0:
			hd := s.open(docxHeadingLevel(style), "", 0)
			tree.AddMarkedText(hd, strings.TrimSpace(para.String()))
		case isListStyle(style):
			li := tree.AddUlist(s.current(), 1)
			tree.AddMarkedText(li, strings.TrimPrefix(text, "• "))
		case strings.EqualFold(style, "Quote"):
			q := tree.AddBlock(s.current(), "quote")
			tree.AddMarkedText(tree.AddParagraph(q), text)
		default:
			s.paragraph(text, 0)
		}
	}
	return tree, nil
}

func docxStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return para.Properties.Style.Val
}

// docxHeadingLevel accepts both style ids ("Heading2") and style names
// ("heading 2").
func docxHeadingLevel(style string) int {
	s := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	if len(s) == len("heading1") && strings.HasPrefix(s, "heading") {
		if d := s[len(s)-1]; d >= '1' && d <= '6' {
			return int(d - '0')
		}
	}
	return 0
}

func isListStyle(style string) bool {
	s := strings.ToLower(strings.ReplaceAll(style, " ", ""))
	return s == "listbullet" || s == "listparagraph" || s == "listnumber"
}

// docxParagraphText renders the runs of a paragraph as marked text.
func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		switch c := child.(type) {
		case *docx.Run:
			writeRun(&buf, c)
		case *docx.Hyperlink:
			writeRun(&buf, &c.Run)
		}
	}
	return buf.String()
}

func writeRun(buf *strings.Builder, run *docx.Run) {
	var text strings.Builder
	for _, rc := range run.Children {
		switch t := rc.(type) {
		case *docx.Text:
			text.WriteString(t.Text)
		case *docx.Tab:
			text.WriteByte('\t')
		case *docx.BarterRabbet:
			text.WriteByte('\n')
		}
	}
	s := text.String()
	if s == "" {
		return
	}
	props := run.RunProperties
	switch {
	case props != nil && props.Bold != nil:
		buf.WriteString(inlineMarkup("b", s))
	case props != nil && props.Italic != nil:
		buf.WriteString(inlineMarkup("i", s))
	default:
		buf.WriteString(s)
	}
}
