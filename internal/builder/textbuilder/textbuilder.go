// Package textbuilder renders chapters as plain text.
package textbuilder

import (
	"fmt"
	"strings"

	"github.com/dgallion1/bookc/internal/book"
	"github.com/dgallion1/bookc/internal/builder"
	"github.com/dgallion1/bookc/internal/syntax"
	"github.com/dgallion1/bookc/internal/visit"
)

// Name is the builder name used in reports and output paths.
const Name = "text"

type element = visit.Element[*book.BuilderProcess]

// Builder renders plain text.
type Builder struct {
	builder.Base
}

// New returns a text builder with the full element vocabulary.
func New() *Builder {
	b := &Builder{Base: builder.NewBase(Name)}
	t := b.Elements()

	for _, name := range []string{"list", "listnum"} {
		t.Block(name, element{Pre: numberedCaption, Post: blankLine})
	}
	for _, name := range []string{"emlist", "emlistnum", "source", "cmd"} {
		t.Block(name, element{Pre: plainCaption, Post: blankLine})
	}
	t.Block("table", element{Pre: numberedCaption, Post: blankLine})
	t.Block("image", element{Handle: func(p *book.BuilderProcess, n *syntax.Node) error {
		if err := numberedCaption(p, n); err != nil {
			return err
		}
		p.Out("\n")
		return visit.SkipChildren
	}})
	t.Block("indepimage", element{Handle: func(p *book.BuilderProcess, n *syntax.Node) error {
		caption := builder.Arg(n, 1)
		if caption == "" {
			caption = builder.Arg(n, 0)
		}
		p.Out("Figure: " + caption + "\n\n")
		return visit.SkipChildren
	}})
	t.Block("footnote", element{Handle: func(p *book.BuilderProcess, n *syntax.Node) error {
		s, err := builder.FindReference(p, n.ID)
		if err != nil {
			return err
		}
		p.Out(fmt.Sprintf("[*%d] %s\n\n", s.Number, builder.Arg(n, 1)))
		return visit.SkipChildren
	}})
	t.Block("bibpaper", element{
		Pre: func(p *book.BuilderProcess, n *syntax.Node) error {
			s, err := builder.FindReference(p, n.ID)
			if err != nil {
				return err
			}
			p.Out(fmt.Sprintf("[%d] %s\n", s.Number, builder.Arg(n, 1)))
			return nil
		},
		Post: blankLine,
	})
	for _, name := range []string{"quote", "lead", "noindent", "texequation"} {
		t.Block(name, element{Pre: nothing, Post: blankLine})
	}
	t.Block("raw", element{Handle: func(p *book.BuilderProcess, n *syntax.Node) error {
		if content, ok := builder.Raw(builder.Arg(n, 0), Name); ok {
			p.Out(strings.ReplaceAll(content, `\n`, "\n"))
		}
		return visit.SkipChildren
	}})
	t.Block("label", element{Handle: skip})

	for _, name := range []string{"list", "img", "table"} {
		t.Inline(name, element{Handle: reference(builder.NumberedCaption)})
	}
	t.Inline("fn", element{Handle: reference(func(s *book.Symbol) string {
		return fmt.Sprintf("[*%d]", s.Number)
	})})
	t.Inline("bib", element{Handle: reference(func(s *book.Symbol) string {
		return fmt.Sprintf("[%d]", s.Number)
	})})
	t.Inline("hd", element{Handle: reference(func(s *book.Symbol) string {
		return `"` + builder.HeadlineCaption(s) + `"`
	})})
	t.Inline("chap", element{Handle: reference(func(s *book.Symbol) string {
		return builder.ChapterCaption(s.Chapter)
	})})
	t.Inline("title", element{Handle: reference(func(s *book.Symbol) string {
		return builder.ChapterTitle(s.Chapter)
	})})
	t.Inline("chapref", element{Handle: reference(func(s *book.Symbol) string {
		caption, title := builder.ChapterCaption(s.Chapter), builder.ChapterTitle(s.Chapter)
		if caption == title {
			return caption
		}
		return caption + ` "` + title + `"`
	})})

	for _, name := range []string{"b", "i", "strong", "em", "tt", "tti", "ttb", "u", "code", "bou", "ami", "m"} {
		t.Inline(name, element{Handle: nothing})
	}
	t.Inline("br", element{Handle: func(p *book.BuilderProcess, n *syntax.Node) error {
		p.Out("\n")
		return visit.SkipChildren
	}})
	t.Inline("uchar", element{Handle: body(func(s string) string {
		if r, ok := builder.Uchar(s); ok {
			return r
		}
		return s
	})})
	t.Inline("ruby", element{Handle: body(func(s string) string {
		base, ruby := builder.SplitPair(s)
		if ruby == "" {
			return base
		}
		return base + "(" + ruby + ")"
	})})
	t.Inline("kw", element{Handle: body(func(s string) string {
		word, alt := builder.SplitPair(s)
		if alt == "" {
			return word
		}
		return word + " (" + alt + ")"
	})})
	t.Inline("href", element{Handle: body(func(s string) string {
		url, label := builder.SplitPair(s)
		if label == "" {
			return url
		}
		return label + " (" + url + ")"
	})})
	t.Inline("icon", element{Handle: body(func(s string) string { return "[icon:" + s + "]" })})
	t.Inline("raw", element{Handle: body(func(s string) string {
		content, _ := builder.Raw(s, Name)
		return content
	})})
	return b
}

func (b *Builder) HeadlinePre(p *book.BuilderProcess, n *syntax.Node) error {
	if n.Level == 1 {
		if c := p.Chapter; builder.ChapterNumber(c) != "" {
			p.Out(builder.ChapterCaption(c) + ". ")
		}
	}
	return nil
}

func (b *Builder) HeadlinePost(p *book.BuilderProcess, n *syntax.Node) error {
	p.Out("\n\n")
	return nil
}

func (b *Builder) ParagraphPost(p *book.BuilderProcess, n *syntax.Node) error {
	p.Out("\n\n")
	return nil
}

func (b *Builder) UlistPre(p *book.BuilderProcess, n *syntax.Node) error {
	p.Out(strings.Repeat("  ", max(n.Level-1, 0)) + "* ")
	return nil
}

func (b *Builder) UlistPost(p *book.BuilderProcess, n *syntax.Node) error {
	p.Out("\n")
	if next := p.Tree().Node(p.Tree().Sibling(n.ID, 1)); next == nil || next.Kind != syntax.KindUlist {
		p.Out("\n")
	}
	return nil
}

func nothing(*book.BuilderProcess, *syntax.Node) error { return nil }

func skip(*book.BuilderProcess, *syntax.Node) error { return visit.SkipChildren }

func blankLine(p *book.BuilderProcess, _ *syntax.Node) error {
	p.Out("\n")
	return nil
}

func numberedCaption(p *book.BuilderProcess, n *syntax.Node) error {
	s, err := builder.FindReference(p, n.ID)
	if err != nil {
		return err
	}
	p.Out(builder.NumberedCaption(s) + ": " + builder.Arg(n, 1) + "\n")
	return nil
}

func plainCaption(p *book.BuilderProcess, n *syntax.Node) error {
	if caption := builder.Arg(n, 0); caption != "" {
		p.Out(caption + "\n")
	}
	return nil
}

// reference renders a resolved reference with format. An unresolved one
// falls back to its body text.
func reference(format func(*book.Symbol) string) visit.Handler[*book.BuilderProcess] {
	return func(p *book.BuilderProcess, n *syntax.Node) error {
		t, err := builder.Target(p, n.ID)
		if err != nil || t == nil {
			return err
		}
		p.Out(format(t))
		return visit.SkipChildren
	}
}

// body renders an inline from its whole body text.
func body(format func(string) string) visit.Handler[*book.BuilderProcess] {
	return func(p *book.BuilderProcess, n *syntax.Node) error {
		p.Out(format(p.Tree().ContentString(n.ID)))
		return visit.SkipChildren
	}
}
