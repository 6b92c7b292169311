// Package builder drives output builders over an analysed book. Every
// builder renders through the same traversal engine as the analyzer, with
// its own per-chapter process.
package builder

import (
	"fmt"

	"github.com/dgallion1/bookc/internal/book"
	"github.com/dgallion1/bookc/internal/syntax"
	"github.com/dgallion1/bookc/internal/visit"
)

// Builder renders chapters. Embed Base to get the default behavior for
// every hook and override what the output format needs.
type Builder interface {
	Name() string
	Elements() *visit.Table[*book.BuilderProcess]
	Declares(kind syntax.Kind, name string) bool

	ChapterPre(p *book.BuilderProcess, n *syntax.Node) error
	ChapterPost(p *book.BuilderProcess, n *syntax.Node) error
	HeadlinePre(p *book.BuilderProcess, n *syntax.Node) error
	HeadlinePost(p *book.BuilderProcess, n *syntax.Node) error
	ParagraphPre(p *book.BuilderProcess, n *syntax.Node) error
	ParagraphPost(p *book.BuilderProcess, n *syntax.Node) error
	UlistPre(p *book.BuilderProcess, n *syntax.Node) error
	UlistPost(p *book.BuilderProcess, n *syntax.Node) error
	Text(p *book.BuilderProcess, n *syntax.Node) error

	// ProcessPost runs once a chapter's whole tree has been walked.
	ProcessPost(p *book.BuilderProcess) error
}

// Base implements every Builder hook with the default behavior: text is
// copied verbatim, a chapter ends with a newline, everything else is a
// no-op.
type Base struct {
	name  string
	table *visit.Table[*book.BuilderProcess]
}

// NewBase returns a Base with an empty element table.
func NewBase(name string) Base {
	return Base{name: name, table: visit.NewTable[*book.BuilderProcess]()}
}

func (b Base) Name() string { return b.name }

func (b Base) Elements() *visit.Table[*book.BuilderProcess] { return b.table }

func (b Base) Declares(kind syntax.Kind, name string) bool { return b.table.Has(kind, name) }

func (Base) ChapterPre(*book.BuilderProcess, *syntax.Node) error { return nil }

func (Base) ChapterPost(p *book.BuilderProcess, _ *syntax.Node) error {
	p.Out("\n")
	return nil
}

func (Base) HeadlinePre(*book.BuilderProcess, *syntax.Node) error   { return nil }
func (Base) HeadlinePost(*book.BuilderProcess, *syntax.Node) error  { return nil }
func (Base) ParagraphPre(*book.BuilderProcess, *syntax.Node) error  { return nil }
func (Base) ParagraphPost(*book.BuilderProcess, *syntax.Node) error { return nil }
func (Base) UlistPre(*book.BuilderProcess, *syntax.Node) error      { return nil }
func (Base) UlistPost(*book.BuilderProcess, *syntax.Node) error     { return nil }

func (Base) Text(p *book.BuilderProcess, n *syntax.Node) error {
	p.Out(n.Text)
	return nil
}

func (Base) ProcessPost(*book.BuilderProcess) error { return nil }

// Run renders every chapter of b with bl and returns the chapter processes
// in book order. The element table is checked first, so a builder that
// declares an element it cannot fully process fails before any output is
// produced. Elements the builder does not declare at all render their
// children only; the validator warns about them beforehand.
func Run(b *book.Book, bl Builder) ([]*book.BuilderProcess, error) {
	if err := bl.Elements().Check(visit.PhasePost); err != nil {
		return nil, fmt.Errorf("builder %s: %w", bl.Name(), err)
	}

	var out []*book.BuilderProcess
	procs := make(map[*book.Chapter]*book.BuilderProcess)
	err := visit.Book(b, func(c *book.Chapter) visit.Visitor {
		p := c.NewBuilderProcess(bl.Name())
		procs[c] = p
		out = append(out, p)
		return visitorFor(bl, p)
	}, func(c *book.Chapter) error {
		return procs[c].DoAfterProcess()
	})
	if err != nil {
		return nil, fmt.Errorf("builder %s: %w", bl.Name(), err)
	}
	return out, nil
}

func visitorFor(bl Builder, p *book.BuilderProcess) visit.Visitor {
	hook := func(fn func(*book.BuilderProcess, *syntax.Node) error) visit.Func {
		return func(n *syntax.Node) error { return fn(p, n) }
	}
	table := bl.Elements()
	return visit.Visitor{
		DocumentPost:  func(*syntax.Node) error { return bl.ProcessPost(p) },
		ChapterPre:    hook(bl.ChapterPre),
		ChapterPost:   hook(bl.ChapterPost),
		HeadlinePre:   hook(bl.HeadlinePre),
		HeadlinePost:  hook(bl.HeadlinePost),
		ParagraphPre:  hook(bl.ParagraphPre),
		ParagraphPost: hook(bl.ParagraphPost),
		UlistPre:      hook(bl.UlistPre),
		UlistPost:     hook(bl.UlistPost),
		BlockPre:      declared(bl, func(n *syntax.Node) error { return table.Pre(p, n) }),
		BlockPost:     declared(bl, func(n *syntax.Node) error { return table.Post(p, n) }),
		InlinePre:     declared(bl, func(n *syntax.Node) error { return table.Pre(p, n) }),
		InlinePost:    declared(bl, func(n *syntax.Node) error { return table.Post(p, n) }),
		Text:          hook(bl.Text),
	}
}

func declared(bl Builder, fn visit.Func) visit.Func {
	return func(n *syntax.Node) error {
		if !bl.Declares(n.Kind, n.Name) {
			return nil
		}
		return fn(n)
	}
}

// FindReference returns the symbol recorded for node id in the process's
// chapter. Anything but exactly one match means the symbol table and the
// tree have diverged.
func FindReference(p *book.BuilderProcess, id syntax.NodeID) (*book.Symbol, error) {
	var found []*book.Symbol
	for _, s := range p.Symbols() {
		if s.Node == id {
			found = append(found, s)
		}
	}
	if len(found) != 1 {
		return nil, &book.AnalyzerError{
			Message: fmt.Sprintf("invalid status: %d symbols for node %d in chapter %s", len(found), id, p.Chapter.Name),
		}
	}
	return found[0], nil
}

// Target returns the symbol the reference at node id resolved to, or nil
// when the reference did not resolve.
func Target(p *book.BuilderProcess, id syntax.NodeID) (*book.Symbol, error) {
	s, err := FindReference(p, id)
	if err != nil {
		return nil, err
	}
	if !s.ReferenceTo.Resolved() {
		return nil, nil
	}
	return s.ReferenceTo.Target, nil
}
