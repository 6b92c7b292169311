package analyzer

import (
	"fmt"

	"github.com/dgallion1/bookc/internal/book"
	"github.com/dgallion1/bookc/internal/syntax"
)

type symbolKey struct {
	part    *book.Part
	chapter *book.Chapter
	kind    string
	label   string
}

// findPart returns the part named name, preferring one that holds
// chapter. Several parts may share the empty name (predef, loose chapters,
// appendix, postdef), so "|chapter|label" finds whichever of them holds
// the chapter.
func findPart(b *book.Book, name, chapter string) *book.Part {
	for _, p := range b.Parts {
		if p.Name == name && p.Chapter(chapter) != nil {
			return p
		}
	}
	return b.Part(name)
}

// resolve fills in every ReferenceTo in three passes over the book-wide
// symbol list: part, chapter, then target node. A reference that fails a
// pass is reported once and dropped from the later passes.
func resolve(b *book.Book) {
	symbols := b.Symbols()

	var pending []*book.Symbol
	for _, s := range symbols {
		if s.ReferenceTo != nil {
			pending = append(pending, s)
		}
	}

	pending = keep(pending, func(s *book.Symbol) bool {
		ref := s.ReferenceTo
		if ref.Part == nil {
			ref.Part = findPart(b, ref.PartName, ref.ChapterName)
		}
		if ref.Part == nil {
			s.Chapter.Process.Error(book.CodePartNotFound, fmt.Sprintf("part %q is missing", ref.PartName), s.Node)
			return false
		}
		return true
	})

	pending = keep(pending, func(s *book.Symbol) bool {
		ref := s.ReferenceTo
		if ref.Chapter == nil {
			ref.Chapter = ref.Part.Chapter(ref.ChapterName)
		}
		if ref.Chapter == nil {
			s.Chapter.Process.Error(book.CodeChapterNotFound,
				fmt.Sprintf("chapter %q is missing in part %q", ref.ChapterName, ref.Part.Name), s.Node)
			return false
		}
		return true
	})

	targets := make(map[symbolKey]*book.Symbol)
	for _, s := range symbols {
		if s.Label == "" {
			continue
		}
		k := symbolKey{s.Part(), s.Chapter, s.Kind, s.Label}
		if _, ok := targets[k]; !ok {
			targets[k] = s
		}
	}

	for _, s := range pending {
		ref := s.ReferenceTo
		if ref.ReferenceNode != syntax.NoNode {
			continue
		}
		t, ok := targets[symbolKey{ref.Part, ref.Chapter, ref.TargetSymbol, ref.Label}]
		if !ok {
			s.Chapter.Process.Error(book.CodeReferenceNotFound,
				fmt.Sprintf("reference is missing: %s %q in %s", ref.TargetSymbol, ref.Label, ref.Chapter.Name), s.Node)
			continue
		}
		ref.ReferenceNode, ref.Target = t.Node, t
	}
}

func keep(symbols []*book.Symbol, fn func(*book.Symbol) bool) []*book.Symbol {
	out := symbols[:0]
	for _, s := range symbols {
		if fn(s) {
			out = append(out, s)
		}
	}
	return out
}

// detectDuplicates reports every pair of symbols in one chapter that share
// a kind and a non-empty label. Each pair is reported once, against both
// nodes.
func detectDuplicates(symbols []*book.Symbol) {
	type key struct {
		chapter *book.Chapter
		kind    string
		label   string
	}
	seen := make(map[key][]*book.Symbol)
	for _, s := range symbols {
		if s.Label == "" {
			continue
		}
		k := key{s.Chapter, s.Kind, s.Label}
		for _, prev := range seen[k] {
			s.Chapter.Process.Error(book.CodeDuplicateSymbol,
				fmt.Sprintf("duplicated symbol: %s %q", s.Kind, s.Label), prev.Node, s.Node)
		}
		seen[k] = append(seen[k], s)
	}
}
