package textbuilder

import (
	"testing"

	"github.com/dgallion1/bookc/internal/analyzer"
	"github.com/dgallion1/bookc/internal/book"
	"github.com/dgallion1/bookc/internal/builder"
	"github.com/dgallion1/bookc/internal/syntax"
)

func TestBuild(t *testing.T) {
	b := book.New()
	p := b.AddPart("", book.RoleContent)

	tree := syntax.New("c1")
	ch := tree.AddChapter(tree.Root(), 1)
	hd := tree.AddHeadline(ch, 1, "intro")
	tree.AddText(hd, "Intro")
	para := tree.AddParagraph(ch)
	tree.AddMarkedText(para, "See @<list>{l1} and @<hd>{intro}.")
	list := tree.AddBlock(ch, "list", "l1", "Sample")
	tree.AddText(list, "x := 1\n")
	for _, item := range []string{"a", "b"} {
		li := tree.AddUlist(ch, 1)
		tree.AddText(li, item)
	}
	b.AddChapter(p, "c1", tree)

	if err := analyzer.New().Run(b); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	procs, err := builder.Run(b, New())
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	want := "Chapter 1. Intro\n\n" +
		"See List 1.1 and \"Intro\".\n\n" +
		"List 1.1: Sample\nx := 1\n\n" +
		"* a\n* b\n\n" +
		"\n"
	if got := string(procs[0].Output()); got != want {
		t.Errorf("expected\n%q\ngot\n%q", want, got)
	}
}

func TestBuild_InlineFormatting(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"@<b>{bold}", "bold"},
		{"@<ruby>{漢字,かんじ}", "漢字(かんじ)"},
		{"@<href>{https://example.com, site}", "site (https://example.com)"},
		{"@<kw>{API, application interface}", "API (application interface)"},
		{"@<uchar>{2460}", "①"},
		{"@<raw>{|html|<b>x</b>}", ""},
		{"@<raw>{|text|plain}", "plain"},
		{"a@<br>{}b", "a\nb"},
	}
	for _, tc := range tests {
		t.Run(tc.text, func(t *testing.T) {
			b := book.New()
			tree := syntax.New("c")
			para := tree.AddParagraph(tree.Root())
			tree.AddMarkedText(para, tc.text)
			b.AddChapter(b.AddPart("", book.RolePredef), "c", tree)
			if err := analyzer.New().Run(b); err != nil {
				t.Fatalf("analyze: %v", err)
			}
			procs, err := builder.Run(b, New())
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			want := tc.want + "\n\n"
			if got := string(procs[0].Output()); got != want {
				t.Errorf("expected %q, got %q", want, got)
			}
		})
	}
}

func TestBuild_ChapterReferences(t *testing.T) {
	b := book.New()
	p := b.AddPart("", book.RoleContent)
	var last *syntax.Tree
	for _, name := range []string{"c1", "c2"} {
		tree := syntax.New(name)
		ch := tree.AddChapter(tree.Root(), 1)
		hd := tree.AddHeadline(ch, 1, "")
		tree.AddText(hd, "Title "+name)
		b.AddChapter(p, name, tree)
		last = tree
	}
	para := last.AddParagraph(last.Root())
	last.AddMarkedText(para, "@<chap>{c1}|@<title>{c1}|@<chapref>{c1}")

	if err := analyzer.New().Run(b); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if reports := b.Reports(); len(reports) != 0 {
		t.Fatalf("expected no reports, got %v", reports)
	}
	procs, err := builder.Run(b, New())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := "Chapter 2. Title c2\n\n\nChapter 1|Title c1|Chapter 1 \"Title c1\"\n\n"
	if got := string(procs[1].Output()); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
