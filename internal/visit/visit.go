// Package visit is the traversal engine shared by the analyzer and every
// builder: a depth-first walker over a chapter's syntax tree with per-kind
// pre and post hooks, plus a name-keyed element table for block and inline
// nodes.
package visit

import (
	"errors"
	"fmt"

	"github.com/dgallion1/bookc/internal/book"
	"github.com/dgallion1/bookc/internal/syntax"
)

// SkipChildren may be returned by a pre hook to skip the node's children.
// The node's post hook still runs.
var SkipChildren = errors.New("skip children")

// Func is a hook invoked for one node.
type Func func(n *syntax.Node) error

// Visitor holds the hooks for each structural kind. Nil hooks are no-ops.
// Text has no post phase.
type Visitor struct {
	DocumentPre, DocumentPost   Func
	ChapterPre, ChapterPost     Func
	HeadlinePre, HeadlinePost   Func
	ParagraphPre, ParagraphPost Func
	UlistPre, UlistPost         Func
	BlockPre, BlockPost         Func
	InlinePre, InlinePost       Func
	Text                        Func
}

func (v *Visitor) hooks(k syntax.Kind) (pre, post Func) {
	switch k {
	case syntax.KindDocument:
		return v.DocumentPre, v.DocumentPost
	case syntax.KindChapter:
		return v.ChapterPre, v.ChapterPost
	case syntax.KindHeadline:
		return v.HeadlinePre, v.HeadlinePost
	case syntax.KindParagraph:
		return v.ParagraphPre, v.ParagraphPost
	case syntax.KindUlist:
		return v.UlistPre, v.UlistPost
	case syntax.KindBlock:
		return v.BlockPre, v.BlockPost
	case syntax.KindInline:
		return v.InlinePre, v.InlinePost
	case syntax.KindText:
		return v.Text, nil
	}
	return nil, nil
}

// Walk traverses the whole tree from its root.
func Walk(t *syntax.Tree, v Visitor) error {
	return WalkFrom(t, t.Root(), v)
}

// WalkFrom traverses the subtree rooted at id: the pre hook in document
// order, then the children, then the post hook.
func WalkFrom(t *syntax.Tree, id syntax.NodeID, v Visitor) error {
	n := t.Node(id)
	if n == nil {
		return nil
	}
	pre, post := v.hooks(n.Kind)
	descend := true
	if pre != nil {
		if err := pre(n); err != nil {
			if !errors.Is(err, SkipChildren) {
				return err
			}
			descend = false
		}
	}
	if descend {
		for _, c := range n.Children {
			if err := WalkFrom(t, c, v); err != nil {
				return err
			}
		}
	}
	if post != nil {
		return post(n)
	}
	return nil
}

// Book walks every chapter in book order with the visitor returned by
// visitorFor, then runs finalize once per chapter in the same order.
// Finalization starts only after every chapter has been walked. Errors are
// wrapped with the chapter name.
func Book(b *book.Book, visitorFor func(c *book.Chapter) Visitor, finalize func(c *book.Chapter) error) error {
	err := b.EachChapter(func(c *book.Chapter) error {
		if err := Walk(c.Tree, visitorFor(c)); err != nil {
			return fmt.Errorf("chapter %s: %w", c.Name, err)
		}
		return nil
	})
	if err != nil || finalize == nil {
		return err
	}
	return b.EachChapter(func(c *book.Chapter) error {
		if err := finalize(c); err != nil {
			return fmt.Errorf("finalize chapter %s: %w", c.Name, err)
		}
		return nil
	})
}
