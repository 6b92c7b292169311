// Package docxbuilder renders each chapter as a Word document. The
// document is assembled during the walk and written to the chapter output
// once the chapter is complete.
package docxbuilder

import (
	"fmt"

	"github.com/fumiama/go-docx"

	"github.com/dgallion1/bookc/internal/book"
	"github.com/dgallion1/bookc/internal/builder"
	"github.com/dgallion1/bookc/internal/syntax"
	"github.com/dgallion1/bookc/internal/visit"
)

// Name is the builder name used in reports and output paths.
const Name = "docx"

const monoFont = "Courier New"

// Heading run sizes in half-points, by level.
var headingSizes = map[int]string{1: "40", 2: "32", 3: "28"}

type element = visit.Element[*book.BuilderProcess]

type handler = visit.Handler[*book.BuilderProcess]

// chapterDoc is the document under construction for one chapter.
type chapterDoc struct {
	doc     *docx.Docx
	para    *docx.Paragraph // open paragraph, nil between paragraphs
	heading int

	bold, italic, underline, mono int
}

func (d *chapterDoc) open(style string) *docx.Paragraph {
	d.para = d.doc.AddParagraph()
	if style != "" {
		d.para.Style(style)
	}
	return d.para
}

func (d *chapterDoc) text(s string) *docx.Run {
	if d.para == nil {
		d.open("")
	}
	run := d.para.AddText(s)
	if d.bold > 0 || d.heading > 0 {
		run.Bold()
	}
	if d.italic > 0 {
		run.Italic()
	}
	if d.underline > 0 {
		run.Underline("single")
	}
	if d.mono > 0 {
		run.Font(monoFont, monoFont, monoFont, "")
	}
	if size, ok := headingSizes[d.heading]; ok {
		run.Size(size)
	}
	return run
}

// Builder renders DOCX. A Builder keeps per-chapter state while it runs,
// so it must not be shared by concurrent runs.
type Builder struct {
	builder.Base
	docs map[*book.BuilderProcess]*chapterDoc
}

// New returns a DOCX builder. It declares the structural and reference
// elements a word processor can represent; other elements render as plain
// text.
func New() *Builder {
	b := &Builder{Base: builder.NewBase(Name), docs: make(map[*book.BuilderProcess]*chapterDoc)}
	t := b.Elements()

	for _, name := range []string{"list", "listnum", "table"} {
		t.Block(name, element{Pre: b.code(true), Post: b.closeCode})
	}
	for _, name := range []string{"emlist", "emlistnum", "source", "cmd"} {
		t.Block(name, element{Pre: b.code(false), Post: b.closeCode})
	}
	t.Block("image", element{Handle: func(p *book.BuilderProcess, n *syntax.Node) error {
		s, err := builder.FindReference(p, n.ID)
		if err != nil {
			return err
		}
		d := b.doc(p)
		d.open("Caption")
		d.italic++
		d.text(fmt.Sprintf("[%s: %s]", builder.NumberedCaption(s), builder.Arg(n, 1)))
		d.italic--
		d.para = nil
		return visit.SkipChildren
	}})
	t.Block("footnote", element{Handle: func(p *book.BuilderProcess, n *syntax.Node) error {
		s, err := builder.FindReference(p, n.ID)
		if err != nil {
			return err
		}
		d := b.doc(p)
		d.open("FootnoteText")
		d.text(fmt.Sprintf("[*%d] %s", s.Number, builder.Arg(n, 1)))
		d.para = nil
		return visit.SkipChildren
	}})
	for _, name := range []string{"quote", "lead", "noindent"} {
		t.Block(name, element{Pre: b.paragraph(name), Post: b.endParagraph})
	}

	t.Inline("b", b.toggle(func(d *chapterDoc) *int { return &d.bold }))
	t.Inline("strong", b.toggle(func(d *chapterDoc) *int { return &d.bold }))
	t.Inline("i", b.toggle(func(d *chapterDoc) *int { return &d.italic }))
	t.Inline("em", b.toggle(func(d *chapterDoc) *int { return &d.italic }))
	t.Inline("u", b.toggle(func(d *chapterDoc) *int { return &d.underline }))
	t.Inline("tt", b.toggle(func(d *chapterDoc) *int { return &d.mono }))
	t.Inline("code", b.toggle(func(d *chapterDoc) *int { return &d.mono }))

	for _, name := range []string{"list", "img", "table"} {
		t.Inline(name, element{Handle: b.reference(builder.NumberedCaption)})
	}
	t.Inline("fn", element{Handle: b.reference(func(s *book.Symbol) string { return fmt.Sprintf("[*%d]", s.Number) })})
	t.Inline("hd", element{Handle: b.reference(func(s *book.Symbol) string { return `"` + builder.HeadlineCaption(s) + `"` })})
	t.Inline("chap", element{Handle: b.reference(func(s *book.Symbol) string { return builder.ChapterCaption(s.Chapter) })})
	t.Inline("title", element{Handle: b.reference(func(s *book.Symbol) string { return builder.ChapterTitle(s.Chapter) })})
	t.Inline("chapref", element{Handle: b.reference(func(s *book.Symbol) string {
		return builder.ChapterCaption(s.Chapter) + ` "` + builder.ChapterTitle(s.Chapter) + `"`
	})})
	t.Inline("br", element{Handle: func(p *book.BuilderProcess, _ *syntax.Node) error {
		b.doc(p).text("\n")
		return visit.SkipChildren
	}})
	t.Inline("href", element{Handle: func(p *book.BuilderProcess, n *syntax.Node) error {
		url, label := builder.SplitPair(p.Tree().ContentString(n.ID))
		if label == "" {
			label = url
		}
		d := b.doc(p)
		if d.para == nil {
			d.open("")
		}
		d.para.AddLink(label, url)
		return visit.SkipChildren
	}})
	t.Inline("kw", element{Handle: func(p *book.BuilderProcess, n *syntax.Node) error {
		word, alt := builder.SplitPair(p.Tree().ContentString(n.ID))
		d := b.doc(p)
		d.bold++
		d.text(word)
		d.bold--
		if alt != "" {
			d.text(" (" + alt + ")")
		}
		return visit.SkipChildren
	}})
	return b
}

func (b *Builder) doc(p *book.BuilderProcess) *chapterDoc {
	d, ok := b.docs[p]
	if !ok {
		d = &chapterDoc{doc: docx.New().WithDefaultTheme()}
		b.docs[p] = d
	}
	return d
}

// ChapterPost adds nothing: the output is a binary document.
func (b *Builder) ChapterPost(*book.BuilderProcess, *syntax.Node) error { return nil }

func (b *Builder) HeadlinePre(p *book.BuilderProcess, n *syntax.Node) error {
	d := b.doc(p)
	d.open(fmt.Sprintf("Heading%d", n.Level))
	d.heading = n.Level
	if n.Level == 1 {
		if c := p.Chapter; builder.ChapterNumber(c) != "" {
			d.text(builder.ChapterCaption(c) + ". ")
		}
	}
	return nil
}

func (b *Builder) HeadlinePost(p *book.BuilderProcess, _ *syntax.Node) error {
	d := b.doc(p)
	d.heading = 0
	d.para = nil
	return nil
}

func (b *Builder) ParagraphPre(p *book.BuilderProcess, _ *syntax.Node) error {
	b.doc(p).open("")
	return nil
}

func (b *Builder) ParagraphPost(p *book.BuilderProcess, n *syntax.Node) error {
	return b.endParagraph(p, n)
}

func (b *Builder) UlistPre(p *book.BuilderProcess, n *syntax.Node) error {
	d := b.doc(p)
	d.open("ListBullet")
	d.text("• ")
	return nil
}

func (b *Builder) UlistPost(p *book.BuilderProcess, n *syntax.Node) error {
	return b.endParagraph(p, n)
}

func (b *Builder) Text(p *book.BuilderProcess, n *syntax.Node) error {
	b.doc(p).text(n.Text)
	return nil
}

// ProcessPost writes the finished document as the chapter output.
func (b *Builder) ProcessPost(p *book.BuilderProcess) error {
	d := b.doc(p)
	delete(b.docs, p)
	if _, err := d.doc.WriteTo(p); err != nil {
		return fmt.Errorf("write docx for %s: %w", p.Chapter.Name, err)
	}
	return nil
}

func (b *Builder) endParagraph(p *book.BuilderProcess, _ *syntax.Node) error {
	b.doc(p).para = nil
	return nil
}

func (b *Builder) paragraph(style string) handler {
	return func(p *book.BuilderProcess, _ *syntax.Node) error {
		b.doc(p).open(style)
		return nil
	}
}

// code opens a captioned code paragraph. Numbered blocks take their
// caption from the second argument, the others from the first.
func (b *Builder) code(numbered bool) handler {
	return func(p *book.BuilderProcess, n *syntax.Node) error {
		d := b.doc(p)
		caption := builder.Arg(n, 0)
		if numbered {
			s, err := builder.FindReference(p, n.ID)
			if err != nil {
				return err
			}
			caption = builder.NumberedCaption(s) + ": " + builder.Arg(n, 1)
		}
		if caption != "" {
			d.open("Caption")
			d.bold++
			d.text(caption)
			d.bold--
		}
		d.open("Code")
		d.mono++
		return nil
	}
}

func (b *Builder) closeCode(p *book.BuilderProcess, _ *syntax.Node) error {
	d := b.doc(p)
	d.mono--
	d.para = nil
	return nil
}

func (b *Builder) toggle(counter func(*chapterDoc) *int) element {
	return element{
		Pre: func(p *book.BuilderProcess, _ *syntax.Node) error {
			*counter(b.doc(p))++
			return nil
		},
		Post: func(p *book.BuilderProcess, _ *syntax.Node) error {
			*counter(b.doc(p))--
			return nil
		},
	}
}

func (b *Builder) reference(format func(*book.Symbol) string) handler {
	return func(p *book.BuilderProcess, n *syntax.Node) error {
		t, err := builder.Target(p, n.ID)
		if err != nil || t == nil {
			return err
		}
		b.doc(p).text(format(t))
		return visit.SkipChildren
	}
}
