package analyzer

import (
	"fmt"
	"strings"

	"github.com/dgallion1/bookc/internal/book"
	"github.com/dgallion1/bookc/internal/syntax"
	"github.com/dgallion1/bookc/internal/visit"
)

// Symbol kinds defined by block elements.
const (
	KindList     = "list"
	KindImage    = "image"
	KindTable    = "table"
	KindFootnote = "footnote"
	KindBibpaper = "bibpaper"
	KindLabel    = "label"
)

// Formatting inlines carry no symbols.
var formattingInlines = []string{
	"b", "i", "strong", "em", "tt", "tti", "ttb", "u", "code", "kw",
	"bou", "ami", "br", "m", "icon", "uchar", "href", "raw", "ruby",
}

func (a *Analyzer) registerDefaults() {
	a.block(Acceptable{Name: "list", ArgsLength: []int{2}, Symbol: KindList}, numbered(KindList))
	a.block(Acceptable{Name: "listnum", ArgsLength: []int{2}, Symbol: KindList}, numbered(KindList))
	a.block(Acceptable{Name: "image", ArgsLength: []int{2, 3}, Symbol: KindImage}, numbered(KindImage))
	a.block(Acceptable{Name: "table", ArgsLength: []int{2}, Symbol: KindTable}, numbered(KindTable))
	a.block(Acceptable{Name: "footnote", ArgsLength: []int{2}, Symbol: KindFootnote}, numbered(KindFootnote))
	a.block(Acceptable{Name: "bibpaper", ArgsLength: []int{2, 3}, Symbol: KindBibpaper}, numbered(KindBibpaper))
	a.block(Acceptable{Name: "label", ArgsLength: []int{1}, Symbol: KindLabel}, labelled(KindLabel))

	for name, args := range map[string][]int{
		"emlist":      {0, 1, 2},
		"emlistnum":   {0, 1, 2},
		"source":      {0, 1, 2},
		"cmd":         {0, 1},
		"indepimage":  {1, 2, 3},
		"quote":       {0},
		"lead":        {0},
		"noindent":    {0},
		"raw":         {1},
		"texequation": {0, 1, 2},
	} {
		a.block(Acceptable{Name: name, ArgsLength: args}, none)
	}

	for name, target := range map[string]string{
		"list":  KindList,
		"img":   KindImage,
		"table": KindTable,
		"fn":    KindFootnote,
		"bib":   KindBibpaper,
		"hd":    KindHeadline,
	} {
		a.inline(Acceptable{Name: name, Reference: target}, a.reference(target))
	}
	for _, name := range []string{"chap", "chapref", "title"} {
		a.inline(Acceptable{Name: name, Reference: KindChapter}, a.chapterReference)
	}
	for _, name := range formattingInlines {
		a.inline(Acceptable{Name: name}, none)
	}
}

func none(*book.Process, *syntax.Node) error { return nil }

// numbered records a symbol labelled by the first argument and numbered
// per chapter and kind.
func numbered(kind string) visit.Handler[*book.Process] {
	return func(p *book.Process, n *syntax.Node) error {
		p.AddSymbol(&book.Symbol{Kind: kind, Label: n.Args[0], Number: p.NextIndex(kind), Node: n.ID})
		return nil
	}
}

func labelled(kind string) visit.Handler[*book.Process] {
	return func(p *book.Process, n *syntax.Node) error {
		p.AddSymbol(&book.Symbol{Kind: kind, Label: n.Args[0], Node: n.ID})
		return nil
	}
}

// reference records a symbol for an inline such as @<list>{c1|l1} that
// points at a symbol of the target kind.
func (a *Analyzer) reference(target string) visit.Handler[*book.Process] {
	return func(p *book.Process, n *syntax.Node) error {
		checkBody(p, n)
		ref := a.referenceTo(p, n, p.Tree().ContentString(n.ID), target)
		p.AddSymbol(&book.Symbol{Kind: n.Name, Node: n.ID, ReferenceTo: ref})
		return nil
	}
}

// chapterReference records a symbol for @<chap>, @<chapref> and @<title>,
// whose body is chapter or part|chapter.
func (a *Analyzer) chapterReference(p *book.Process, n *syntax.Node) error {
	checkBody(p, n)
	value := p.Tree().ContentString(n.ID)
	tokens := strings.Split(value, a.separator)
	ref := &book.ReferenceTo{TargetSymbol: KindChapter}
	switch len(tokens) {
	case 1:
		ref.Part, ref.PartName = p.Part(), p.Part().Name
		ref.ChapterName = tokens[0]
	case 2:
		ref.PartName, ref.ChapterName = tokens[0], tokens[1]
	default:
		p.Error(book.CodeInvalidReferenceSyntax,
			fmt.Sprintf("chapter reference %q expects 1 or 2 tokens separated by %q, actual %d", value, a.separator, len(tokens)),
			n.ID)
		ref = nil
	}
	if ref != nil {
		ref.Label = ref.ChapterName
	}
	p.AddSymbol(&book.Symbol{Kind: n.Name, Node: n.ID, ReferenceTo: ref})
	return nil
}

// checkBody reports reference inlines whose body is not a single string.
func checkBody(p *book.Process, n *syntax.Node) {
	if len(n.Children) == 1 && p.Tree().Node(n.Children[0]).Kind == syntax.KindText {
		return
	}
	p.Error(book.CodeBodyMismatch, fmt.Sprintf("element body mismatch, @<%s> takes only a string", n.Name), n.ID)
}

// referenceTo parses label, chapter|label or part|chapter|label. Any other
// token count is reported and yields nil, so no lookup is attempted.
func (a *Analyzer) referenceTo(p *book.Process, n *syntax.Node, value, target string) *book.ReferenceTo {
	tokens := strings.Split(value, a.separator)
	ref := &book.ReferenceTo{TargetSymbol: target}
	switch len(tokens) {
	case 1:
		ref.Part, ref.PartName = p.Part(), p.Part().Name
		ref.Chapter, ref.ChapterName = p.Chapter, p.Chapter.Name
		ref.Label = tokens[0]
	case 2:
		ref.Part, ref.PartName = p.Part(), p.Part().Name
		ref.ChapterName, ref.Label = tokens[0], tokens[1]
	case 3:
		ref.PartName, ref.ChapterName, ref.Label = tokens[0], tokens[1], tokens[2]
	default:
		p.Error(book.CodeInvalidReferenceSyntax,
			fmt.Sprintf("reference %q expects 1, 2 or 3 tokens separated by %q, actual %d", value, a.separator, len(tokens)),
			n.ID)
		return nil
	}
	return ref
}
