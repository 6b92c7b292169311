// Package analyzer collects the symbols of every chapter and resolves
// cross-references across the whole book.
package analyzer

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dgallion1/bookc/internal/book"
	"github.com/dgallion1/bookc/internal/syntax"
	"github.com/dgallion1/bookc/internal/visit"
)

// DefaultSeparator splits the tokens of a reference such as c1|intro.
const DefaultSeparator = "|"

// Symbol kinds registered by the analyzer.
const (
	KindHeadline = "hd"
	KindChapter  = "chapter"
)

// Acceptable describes one element name the analyzer understands.
type Acceptable struct {
	Type       string `json:"type"` // "block" or "inline"
	Name       string `json:"name"`
	ArgsLength []int  `json:"args_length,omitempty"`
	Symbol     string `json:"symbol,omitempty"`    // kind of symbol the element defines
	Reference  string `json:"reference,omitempty"` // kind of symbol the element refers to
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithSeparator sets the reference token separator.
func WithSeparator(sep string) Option {
	return func(a *Analyzer) {
		if sep != "" {
			a.separator = sep
		}
	}
}

// Analyzer walks each chapter once, records its symbols, then resolves
// every reference against the book-wide symbol list.
type Analyzer struct {
	separator   string
	elements    *visit.Table[*book.Process]
	acceptables []Acceptable
}

// New returns an analyzer with the standard element vocabulary.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		separator: DefaultSeparator,
		elements:  visit.NewTable[*book.Process](),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.registerDefaults()
	return a
}

// Separator returns the reference token separator in use.
func (a *Analyzer) Separator() string { return a.separator }

// Block registers a block element. A non-empty argsLength lists the
// accepted argument counts; on mismatch an ArgumentMismatch error is
// reported and h is not called.
func (a *Analyzer) Block(name string, argsLength []int, h visit.Handler[*book.Process]) {
	a.block(Acceptable{Name: name, ArgsLength: argsLength}, h)
}

// Inline registers an inline element.
func (a *Analyzer) Inline(name string, h visit.Handler[*book.Process]) {
	a.inline(Acceptable{Name: name}, h)
}

func (a *Analyzer) block(acc Acceptable, h visit.Handler[*book.Process]) {
	acc.Type = syntax.KindBlock.String()
	if len(acc.ArgsLength) > 0 {
		next, expects := h, acc.ArgsLength
		h = func(p *book.Process, n *syntax.Node) error {
			if !checkArgsLength(p, n, expects) {
				return nil
			}
			return next(p, n)
		}
	}
	a.elements.Block(acc.Name, visit.Element[*book.Process]{Handle: h})
	a.accept(acc)
}

func (a *Analyzer) inline(acc Acceptable, h visit.Handler[*book.Process]) {
	acc.Type = syntax.KindInline.String()
	a.elements.Inline(acc.Name, visit.Element[*book.Process]{Handle: h})
	a.accept(acc)
}

func (a *Analyzer) accept(acc Acceptable) {
	a.acceptables = slices.DeleteFunc(a.acceptables, func(x Acceptable) bool {
		return x.Type == acc.Type && x.Name == acc.Name
	})
	a.acceptables = append(a.acceptables, acc)
}

// Acceptables returns every element the analyzer accepts, blocks first,
// each group sorted by name.
func (a *Analyzer) Acceptables() []Acceptable {
	out := slices.Clone(a.acceptables)
	slices.SortFunc(out, func(x, y Acceptable) int {
		if c := strings.Compare(x.Type, y.Type); c != 0 {
			return c
		}
		return strings.Compare(x.Name, y.Name)
	})
	return out
}

// Run analyses the book. It must be called once per book. Document
// problems are recorded as reports on the chapters; the returned error is
// an engine failure such as an element with no handler.
func (a *Analyzer) Run(b *book.Book) error {
	err := visit.Book(b, func(c *book.Chapter) visit.Visitor {
		p := c.Process
		v := visit.Visitor{
			DocumentPre: func(n *syntax.Node) error {
				p.AddSymbol(&book.Symbol{Kind: KindChapter, Label: c.Name, Node: n.ID})
				return nil
			},
			HeadlinePre: func(n *syntax.Node) error {
				a.headline(p, n)
				return nil
			},
		}
		a.elements.Bind(&v, p, false)
		return v
	}, func(c *book.Chapter) error {
		return c.Process.DoAfterProcess()
	})
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}
	resolve(b)
	detectDuplicates(b.Symbols())
	return nil
}

// headline labels the symbol with the explicit tag, else with the caption
// when it is a single plain text node.
func (a *Analyzer) headline(p *book.Process, n *syntax.Node) {
	label := n.Tag
	if label == "" && len(n.Children) == 1 {
		if c := p.Tree().Node(n.Children[0]); c.Kind == syntax.KindText {
			label = c.Text
		}
	}
	p.AddSymbol(&book.Symbol{Kind: KindHeadline, Label: label, Node: n.ID})
}

func checkArgsLength(p *book.Process, n *syntax.Node, expects []int) bool {
	if slices.Contains(expects, len(n.Args)) {
		return true
	}
	want := make([]string, len(expects))
	for i, e := range expects {
		want[i] = fmt.Sprint(e)
	}
	p.Error(book.CodeArgumentMismatch,
		fmt.Sprintf("arguments length mismatch, %s expected %s, actual %d", n.Name, strings.Join(want, " or "), len(n.Args)),
		n.ID)
	return false
}
