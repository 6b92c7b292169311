package validator

import (
	"testing"

	"github.com/dgallion1/bookc/internal/book"
	"github.com/dgallion1/bookc/internal/syntax"
)

type fakeBuilder struct {
	name     string
	declared map[string]bool
}

func (f fakeBuilder) Name() string { return f.name }

func (f fakeBuilder) Declares(kind syntax.Kind, name string) bool {
	return f.declared[kind.String()+":"+name]
}

func TestRun_UnimplementedByBuilder(t *testing.T) {
	b := book.New()
	p := b.AddPart("", book.RoleContent)

	tree := syntax.New("c1")
	ch := tree.AddChapter(tree.Root(), 1)
	hd := tree.AddHeadline(ch, 1, "")
	tree.AddText(hd, "Title")
	firstList := tree.AddBlock(ch, "list", "l1", "A")
	tree.AddBlock(ch, "list", "l2", "B")
	para := tree.AddParagraph(ch)
	tree.AddMarkedText(para, "@<b>{bold} and @<m>{x^2}")
	b.AddChapter(p, "c1", tree)

	full := fakeBuilder{"full", map[string]bool{"block:list": true, "inline:b": true, "inline:m": true}}
	partial := fakeBuilder{"partial", map[string]bool{"inline:b": true}}

	reports := New().Run(b, []Declarer{full, partial})
	if len(reports) != 2 {
		t.Fatalf("expected 2 warnings, got %v", reports)
	}
	for _, r := range reports {
		if r.Level != book.LevelWarning || r.Code != book.CodeUnimplementedByBuilder {
			t.Errorf("expected unimplemented-by-builder warning, got %+v", r)
		}
		if r.Builder != "partial" {
			t.Errorf("expected builder partial, got %q", r.Builder)
		}
	}
	if reports[0].Nodes[0] != firstList {
		t.Errorf("expected warning at first list node %d, got %v", firstList, reports[0].Nodes)
	}
	if len(b.Reports()) != 0 {
		t.Error("expected validator not to record reports on the book")
	}
}

func TestRun_MissingHeadline(t *testing.T) {
	b := book.New()
	p := b.AddPart("", book.RoleContent)
	tree := syntax.New("c1")
	para := tree.AddParagraph(tree.Root())
	tree.AddText(para, "no headline here")
	b.AddChapter(p, "c1", tree)

	reports := New().Run(b, nil)
	if len(reports) != 1 || reports[0].Code != book.CodeMissingHeadline || reports[0].Chapter != "c1" {
		t.Errorf("expected missing headline warning for c1, got %v", reports)
	}
	if book.HasErrors(reports) {
		t.Error("expected warnings only")
	}
}

func TestRun_ReportsFirstChapterOnly(t *testing.T) {
	b := book.New()
	p := b.AddPart("", book.RoleContent)
	for _, name := range []string{"c1", "c2"} {
		tree := syntax.New(name)
		ch := tree.AddChapter(tree.Root(), 1)
		tree.AddText(tree.AddHeadline(ch, 1, ""), name)
		tree.AddBlock(ch, "graph", "g", "dot")
		b.AddChapter(p, name, tree)
	}

	reports := New().Run(b, []Declarer{fakeBuilder{"text", nil}})
	if len(reports) != 1 {
		t.Fatalf("expected 1 warning, got %v", reports)
	}
	if reports[0].Chapter != "c1" {
		t.Errorf("expected warning in c1, got %q", reports[0].Chapter)
	}
}
