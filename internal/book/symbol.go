package book

import "github.com/dgallion1/bookc/internal/syntax"

// Symbol is a named, referenceable element found during analysis.
type Symbol struct {
	Chapter     *Chapter
	Kind        string // "hd", "list", "image", ...
	Label       string
	Number      int // per-chapter index drawn with NextIndex, 0 if unnumbered
	Node        syntax.NodeID
	ReferenceTo *ReferenceTo
}

// Part returns the part owning the symbol's chapter.
func (s *Symbol) Part() *Part {
	if s.Chapter == nil {
		return nil
	}
	return s.Chapter.Part
}

// ReferenceTo is a link from a reference element to a target symbol.
// Part and Chapter are filled in as resolution proceeds; ReferenceNode and
// Target are set once the target symbol is found.
type ReferenceTo struct {
	Part         *Part
	PartName     string
	Chapter      *Chapter
	ChapterName  string
	TargetSymbol string
	Label        string

	ReferenceNode syntax.NodeID
	Target        *Symbol
}

// Resolved reports whether the reference points at a target node.
func (r *ReferenceTo) Resolved() bool {
	return r != nil && r.Part != nil && r.Chapter != nil && r.ReferenceNode != syntax.NoNode
}
