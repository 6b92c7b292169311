// Package htmlbuilder renders chapters as HTML fragments, one per chapter.
package htmlbuilder

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/bookc/internal/book"
	"github.com/dgallion1/bookc/internal/builder"
	"github.com/dgallion1/bookc/internal/syntax"
	"github.com/dgallion1/bookc/internal/visit"
)

// Name is the builder name used in reports and output paths.
const Name = "html"

type element = visit.Element[*book.BuilderProcess]

type handler = visit.Handler[*book.BuilderProcess]

// Builder renders HTML. Chapters link to each other as <chapter>.html.
type Builder struct {
	builder.Base
}

var anchorPrefix = map[string]string{
	"hd":       "h",
	"list":     "list",
	"image":    "img",
	"table":    "table",
	"footnote": "fn",
	"bibpaper": "bib",
	"chapter":  "",
}

// wrapping inlines: open tag, close tag.
var wrapping = map[string][2]string{
	"b":      {"<b>", "</b>"},
	"i":      {"<i>", "</i>"},
	"strong": {"<strong>", "</strong>"},
	"em":     {"<em>", "</em>"},
	"u":      {"<u>", "</u>"},
	"tt":     {`<code class="tt">`, "</code>"},
	"tti":    {`<code class="tt"><i>`, "</i></code>"},
	"ttb":    {`<code class="tt"><b>`, "</b></code>"},
	"code":   {`<code class="inline-code">`, "</code>"},
	"bou":    {`<span class="bou">`, "</span>"},
	"ami":    {`<span class="ami">`, "</span>"},
	"m":      {`<span class="equation">`, "</span>"},
}

// New returns an HTML builder with the full element vocabulary.
func New() *Builder {
	b := &Builder{Base: builder.NewBase(Name)}
	t := b.Elements()

	for _, name := range []string{"list", "listnum"} {
		t.Block(name, element{
			Pre: func(p *book.BuilderProcess, n *syntax.Node) error {
				s, err := builder.FindReference(p, n.ID)
				if err != nil {
					return err
				}
				p.Out(fmt.Sprintf(`<div class="caption-code" id="%s">`+"\n", attr(anchor(s))))
				p.Out(fmt.Sprintf(`<p class="caption">%s: %s</p>`+"\n", builder.NumberedCaption(s), esc(builder.Arg(n, 1))))
				p.Out(`<pre class="list">`)
				return nil
			},
			Post: closing("</pre>\n</div>\n"),
		})
	}
	for _, name := range []string{"emlist", "emlistnum", "source", "cmd"} {
		class := name
		t.Block(name, element{
			Pre: func(p *book.BuilderProcess, n *syntax.Node) error {
				p.Out(fmt.Sprintf(`<div class="%s-code">`+"\n", class))
				if caption := builder.Arg(n, 0); caption != "" {
					p.Out(`<p class="caption">` + esc(caption) + "</p>\n")
				}
				p.Out(fmt.Sprintf(`<pre class="%s">`, class))
				return nil
			},
			Post: closing("</pre>\n</div>\n"),
		})
	}
	t.Block("table", element{
		Pre: func(p *book.BuilderProcess, n *syntax.Node) error {
			s, err := builder.FindReference(p, n.ID)
			if err != nil {
				return err
			}
			p.Out(fmt.Sprintf(`<div class="table" id="%s">`+"\n", attr(anchor(s))))
			p.Out(fmt.Sprintf(`<p class="caption">%s: %s</p>`+"\n", builder.NumberedCaption(s), esc(builder.Arg(n, 1))))
			p.Out(`<pre class="table">`)
			return nil
		},
		Post: closing("</pre>\n</div>\n"),
	})
	t.Block("image", element{Handle: func(p *book.BuilderProcess, n *syntax.Node) error {
		s, err := builder.FindReference(p, n.ID)
		if err != nil {
			return err
		}
		caption := builder.Arg(n, 1)
		p.Out(fmt.Sprintf(`<div class="image" id="%s">`+"\n", attr(anchor(s))))
		p.Out(fmt.Sprintf(`<img src="images/%s.png" alt="%s" />`+"\n", attr(builder.Arg(n, 0)), attr(caption)))
		p.Out(fmt.Sprintf(`<p class="caption">%s: %s</p>`+"\n</div>\n", builder.NumberedCaption(s), esc(caption)))
		return visit.SkipChildren
	}})
	t.Block("indepimage", element{Handle: func(p *book.BuilderProcess, n *syntax.Node) error {
		caption := builder.Arg(n, 1)
		p.Out(`<div class="image">` + "\n")
		p.Out(fmt.Sprintf(`<img src="images/%s.png" alt="%s" />`+"\n", attr(builder.Arg(n, 0)), attr(caption)))
		if caption != "" {
			p.Out(`<p class="caption">` + esc(caption) + "</p>\n")
		}
		p.Out("</div>\n")
		return visit.SkipChildren
	}})
	t.Block("footnote", element{Handle: func(p *book.BuilderProcess, n *syntax.Node) error {
		s, err := builder.FindReference(p, n.ID)
		if err != nil {
			return err
		}
		p.Out(fmt.Sprintf(`<div class="footnote" id="%s"><p class="footnote">[*%d] %s</p></div>`+"\n",
			attr(anchor(s)), s.Number, esc(builder.Arg(n, 1))))
		return visit.SkipChildren
	}})
	t.Block("bibpaper", element{
		Pre: func(p *book.BuilderProcess, n *syntax.Node) error {
			s, err := builder.FindReference(p, n.ID)
			if err != nil {
				return err
			}
			p.Out(fmt.Sprintf(`<div class="bibpaper" id="%s">`+"\n", attr(anchor(s))))
			p.Out(fmt.Sprintf(`<p class="bibpaper">[%d] %s</p>`+"\n", s.Number, esc(builder.Arg(n, 1))))
			return nil
		},
		Post: closing("</div>\n"),
	})
	t.Block("quote", element{Pre: opening("<blockquote>"), Post: closing("</blockquote>\n")})
	t.Block("lead", element{Pre: opening(`<div class="lead">`), Post: closing("</div>\n")})
	t.Block("noindent", element{Pre: opening(`<p class="noindent">`), Post: closing("</p>\n")})
	t.Block("texequation", element{Pre: opening(`<div class="equation">`), Post: closing("</div>\n")})
	t.Block("raw", element{Handle: func(p *book.BuilderProcess, n *syntax.Node) error {
		if content, ok := builder.Raw(builder.Arg(n, 0), Name); ok {
			p.Out(strings.ReplaceAll(content, `\n`, "\n"))
		}
		return visit.SkipChildren
	}})
	t.Block("label", element{Handle: func(p *book.BuilderProcess, n *syntax.Node) error {
		p.Out(fmt.Sprintf(`<a id="%s"></a>`, attr(builder.Arg(n, 0))))
		return visit.SkipChildren
	}})

	for _, name := range []string{"list", "img", "table"} {
		t.Inline(name, element{Handle: reference(builder.NumberedCaption)})
	}
	t.Inline("fn", element{Handle: reference(func(s *book.Symbol) string { return fmt.Sprintf("*%d", s.Number) })})
	t.Inline("bib", element{Handle: reference(func(s *book.Symbol) string { return fmt.Sprintf("[%d]", s.Number) })})
	t.Inline("hd", element{Handle: reference(func(s *book.Symbol) string { return `"` + builder.HeadlineCaption(s) + `"` })})
	t.Inline("chap", element{Handle: reference(func(s *book.Symbol) string { return builder.ChapterCaption(s.Chapter) })})
	t.Inline("title", element{Handle: reference(func(s *book.Symbol) string { return builder.ChapterTitle(s.Chapter) })})
	t.Inline("chapref", element{Handle: reference(func(s *book.Symbol) string {
		caption, title := builder.ChapterCaption(s.Chapter), builder.ChapterTitle(s.Chapter)
		if caption == title {
			return caption
		}
		return caption + ` "` + title + `"`
	})})

	for name, tags := range wrapping {
		t.Inline(name, element{Pre: opening(tags[0]), Post: closing(tags[1])})
	}
	t.Inline("br", element{Handle: func(p *book.BuilderProcess, _ *syntax.Node) error {
		p.Out("<br />")
		return visit.SkipChildren
	}})
	t.Inline("uchar", element{Handle: body(func(s string) string { return "&#x" + esc(strings.TrimSpace(s)) + ";" })})
	t.Inline("ruby", element{Handle: body(func(s string) string {
		base, ruby := builder.SplitPair(s)
		return "<ruby>" + esc(base) + "<rp>(</rp><rt>" + esc(ruby) + "</rt><rp>)</rp></ruby>"
	})})
	t.Inline("kw", element{Handle: body(func(s string) string {
		word, alt := builder.SplitPair(s)
		out := `<b class="kw">` + esc(word)
		if alt != "" {
			out += " (" + esc(alt) + ")"
		}
		return out + "</b>"
	})})
	t.Inline("href", element{Handle: body(func(s string) string {
		url, label := builder.SplitPair(s)
		if label == "" {
			label = url
		}
		return fmt.Sprintf(`<a href="%s" class="link">%s</a>`, attr(url), esc(label))
	})})
	t.Inline("icon", element{Handle: body(func(s string) string {
		return fmt.Sprintf(`<img src="images/%s.png" alt="[%s]" />`, attr(s), attr(s))
	})})
	t.Inline("raw", element{Handle: body(func(s string) string {
		content, _ := builder.Raw(s, Name)
		return content
	})})
	return b
}

func (b *Builder) ChapterPre(p *book.BuilderProcess, n *syntax.Node) error {
	p.Out(fmt.Sprintf(`<section class="level%d">`+"\n", n.Level))
	return nil
}

func (b *Builder) ChapterPost(p *book.BuilderProcess, n *syntax.Node) error {
	p.Out("</section>\n")
	return nil
}

func (b *Builder) HeadlinePre(p *book.BuilderProcess, n *syntax.Node) error {
	s, err := builder.FindReference(p, n.ID)
	if err != nil {
		return err
	}
	p.Out(fmt.Sprintf("<h%d", n.Level))
	if s.Label != "" {
		p.Out(fmt.Sprintf(` id="%s"`, attr(anchor(s))))
	}
	p.Out(">")
	if n.Level == 1 {
		if c := p.Chapter; builder.ChapterNumber(c) != "" {
			p.Out(`<span class="secno">` + esc(builder.ChapterCaption(c)) + ".</span> ")
		}
	}
	return nil
}

func (b *Builder) HeadlinePost(p *book.BuilderProcess, n *syntax.Node) error {
	p.Out(fmt.Sprintf("</h%d>\n", n.Level))
	return nil
}

func (b *Builder) ParagraphPre(p *book.BuilderProcess, _ *syntax.Node) error {
	p.Out("<p>")
	return nil
}

func (b *Builder) ParagraphPost(p *book.BuilderProcess, _ *syntax.Node) error {
	p.Out("</p>\n")
	return nil
}

// Ulist items are flat siblings; nesting is rebuilt from their levels.
func (b *Builder) UlistPre(p *book.BuilderProcess, n *syntax.Node) error {
	level := listLevel(n)
	for l := ulistLevel(p.Tree(), p.Tree().Sibling(n.ID, -1)) + 1; l <= level; l++ {
		p.Out("<ul>\n")
		if l < level {
			p.Out("<li>")
		}
	}
	p.Out("<li>")
	return nil
}

func (b *Builder) UlistPost(p *book.BuilderProcess, n *syntax.Node) error {
	level := listLevel(n)
	next := ulistLevel(p.Tree(), p.Tree().Sibling(n.ID, 1))
	if next > level {
		p.Out("\n")
		return nil
	}
	p.Out("</li>\n")
	for l := level; l > next; l-- {
		p.Out("</ul>\n")
		if l > 1 {
			p.Out("</li>\n")
		}
	}
	return nil
}

func (b *Builder) Text(p *book.BuilderProcess, n *syntax.Node) error {
	p.Out(esc(n.Text))
	return nil
}

// ulistLevel is the list level of id, or 0 when id is not a list item.
func ulistLevel(t *syntax.Tree, id syntax.NodeID) int {
	n := t.Node(id)
	if n == nil || n.Kind != syntax.KindUlist {
		return 0
	}
	return listLevel(n)
}

func listLevel(n *syntax.Node) int { return max(n.Level, 1) }

func esc(s string) string { return html.EscapeString(s) }

func attr(s string) string { return html.EscapeString(s) }

func anchor(s *book.Symbol) string {
	prefix, ok := anchorPrefix[s.Kind]
	if !ok {
		prefix = s.Kind
	}
	if prefix == "" {
		return s.Label
	}
	return prefix + "-" + s.Label
}

// href links to a symbol, across chapter files when needed.
func href(p *book.BuilderProcess, s *book.Symbol) string {
	file := ""
	if s.Chapter != p.Chapter {
		file = s.Chapter.Name + ".html"
	}
	if s.Kind == "chapter" {
		if file == "" {
			return "#"
		}
		return file
	}
	return file + "#" + anchor(s)
}

func opening(tag string) handler {
	return func(p *book.BuilderProcess, _ *syntax.Node) error {
		p.Out(tag)
		return nil
	}
}

func closing(tag string) handler { return opening(tag) }

func reference(format func(*book.Symbol) string) handler {
	return func(p *book.BuilderProcess, n *syntax.Node) error {
		t, err := builder.Target(p, n.ID)
		if err != nil || t == nil {
			return err
		}
		p.Out(fmt.Sprintf(`<a href="%s">%s</a>`, attr(href(p, t)), esc(format(t))))
		return visit.SkipChildren
	}
}

func body(format func(string) string) handler {
	return func(p *book.BuilderProcess, n *syntax.Node) error {
		p.Out(format(p.Tree().ContentString(n.ID)))
		return visit.SkipChildren
	}
}
