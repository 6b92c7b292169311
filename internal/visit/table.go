package visit

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dgallion1/bookc/internal/syntax"
)

// ErrUnimplementedHandler is matched by every *UnimplementedHandlerError.
var ErrUnimplementedHandler = errors.New("unimplemented handler")

// Phase is the traversal phase a handler is needed for.
type Phase int

const (
	PhasePre Phase = iota + 1
	PhasePost
)

func (p Phase) String() string {
	if p == PhasePost {
		return "post"
	}
	return "pre"
}

// UnimplementedHandlerError means an analyzer or builder met an element it
// has no handler for. It is an engine error, never a document error.
type UnimplementedHandlerError struct {
	Kind  syntax.Kind
	Name  string
	Phase Phase
}

func (e *UnimplementedHandlerError) Error() string {
	return fmt.Sprintf("%s_%s_%s or %s_%s is not implemented", e.Kind, e.Name, e.Phase, e.Kind, e.Name)
}

func (e *UnimplementedHandlerError) Unwrap() error { return ErrUnimplementedHandler }

// Handler processes one element node within context c.
type Handler[C any] func(c C, n *syntax.Node) error

// Element is the handler set registered for one element name. A non-nil
// Handle stands in for both phases: it runs at pre time and the post phase
// becomes a no-op, even when Post is also set. Without Handle, Pre and Post
// are used independently.
type Element[C any] struct {
	Handle Handler[C]
	Pre    Handler[C]
	Post   Handler[C]
}

// Table maps block and inline element names to handlers.
type Table[C any] struct {
	blocks  map[string]Element[C]
	inlines map[string]Element[C]
}

// NewTable returns an empty table.
func NewTable[C any]() *Table[C] {
	return &Table[C]{
		blocks:  make(map[string]Element[C]),
		inlines: make(map[string]Element[C]),
	}
}

// Block registers e for the block element name, replacing any previous
// registration.
func (t *Table[C]) Block(name string, e Element[C]) {
	t.blocks[name] = e
}

// Inline registers e for the inline element name.
func (t *Table[C]) Inline(name string, e Element[C]) {
	t.inlines[name] = e
}

func (t *Table[C]) entries(kind syntax.Kind) map[string]Element[C] {
	switch kind {
	case syntax.KindBlock:
		return t.blocks
	case syntax.KindInline:
		return t.inlines
	}
	return nil
}

// Has reports whether name is registered for kind.
func (t *Table[C]) Has(kind syntax.Kind, name string) bool {
	_, ok := t.entries(kind)[name]
	return ok
}

// Names returns the registered names for kind, sorted.
func (t *Table[C]) Names(kind syntax.Kind) []string {
	m := t.entries(kind)
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Check verifies that every registered element can serve the given phases:
// it needs Handle, or Pre (and Post when through is PhasePost).
func (t *Table[C]) Check(through Phase) error {
	var errs []error
	for _, kind := range []syntax.Kind{syntax.KindBlock, syntax.KindInline} {
		for _, name := range t.Names(kind) {
			e := t.entries(kind)[name]
			if e.Handle != nil {
				continue
			}
			if e.Pre == nil {
				errs = append(errs, &UnimplementedHandlerError{Kind: kind, Name: name, Phase: PhasePre})
			}
			if through == PhasePost && e.Post == nil {
				errs = append(errs, &UnimplementedHandlerError{Kind: kind, Name: name, Phase: PhasePost})
			}
		}
	}
	return errors.Join(errs...)
}

// Pre dispatches the pre-visit of a block or inline node.
func (t *Table[C]) Pre(c C, n *syntax.Node) error {
	e, ok := t.entries(n.Kind)[n.Name]
	switch {
	case ok && e.Handle != nil:
		return e.Handle(c, n)
	case ok && e.Pre != nil:
		return e.Pre(c, n)
	}
	return &UnimplementedHandlerError{Kind: n.Kind, Name: n.Name, Phase: PhasePre}
}

// Post dispatches the post-visit of a block or inline node.
func (t *Table[C]) Post(c C, n *syntax.Node) error {
	e, ok := t.entries(n.Kind)[n.Name]
	switch {
	case ok && e.Handle != nil:
		return nil
	case ok && e.Post != nil:
		return e.Post(c, n)
	}
	return &UnimplementedHandlerError{Kind: n.Kind, Name: n.Name, Phase: PhasePost}
}

// Bind installs the table's dispatch as v's block and inline hooks, with c
// as the handler context. When withPost is false only pre hooks are bound.
func (t *Table[C]) Bind(v *Visitor, c C, withPost bool) {
	pre := func(n *syntax.Node) error { return t.Pre(c, n) }
	v.BlockPre, v.InlinePre = pre, pre
	if withPost {
		post := func(n *syntax.Node) error { return t.Post(c, n) }
		v.BlockPost, v.InlinePost = post, post
	}
}
