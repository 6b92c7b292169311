// Package validator checks an analysed book against the builders that are
// about to render it.
package validator

import (
	"fmt"

	"github.com/dgallion1/bookc/internal/book"
	"github.com/dgallion1/bookc/internal/syntax"
)

// Declarer is the part of a builder the validator needs: its name and the
// element names its table declares.
type Declarer interface {
	Name() string
	Declares(kind syntax.Kind, name string) bool
}

// Validator produces warnings only. It never mutates the book.
type Validator struct{}

// New returns a validator.
func New() *Validator { return &Validator{} }

type element struct {
	kind syntax.Kind
	name string
}

type occurrence struct {
	chapter *book.Chapter
	node    syntax.NodeID
}

// Run returns a MissingHeadline warning for every chapter without a
// level-1 headline and, per builder, an UnimplementedByBuilder warning for
// every element name used in the book that the builder does not declare.
// Each warning points at the first occurrence of the element.
func (v *Validator) Run(b *book.Book, builders []Declarer) []book.Report {
	var reports []book.Report
	var order []element
	first := make(map[element]occurrence)

	for _, c := range b.Chapters() {
		if c.Tree.FirstHeadline(1) == syntax.NoNode {
			reports = append(reports, c.Process.NewReport(book.LevelWarning, book.CodeMissingHeadline,
				fmt.Sprintf("chapter %s has no level 1 headline", c.Name)))
		}
		for _, id := range c.Tree.ElementNames() {
			n := c.Tree.Node(id)
			e := element{n.Kind, n.Name}
			if _, ok := first[e]; !ok {
				first[e] = occurrence{c, id}
				order = append(order, e)
			}
		}
	}

	for _, bl := range builders {
		for _, e := range order {
			if bl.Declares(e.kind, e.name) {
				continue
			}
			at := first[e]
			r := at.chapter.Process.NewReport(book.LevelWarning, book.CodeUnimplementedByBuilder,
				fmt.Sprintf("%s %s is not implemented by builder %s", e.kind, e.name, bl.Name()), at.node)
			r.Builder = bl.Name()
			reports = append(reports, r)
		}
	}
	return reports
}
