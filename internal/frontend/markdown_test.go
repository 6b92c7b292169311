package frontend

import (
	"strings"
	"testing"
)

func TestMarkdown_Structure(t *testing.T) {
	input := "# Intro {#intro}\n" +
		"\n" +
		"See @<list>{l1} and *this* or **that** with `code`.\n" +
		"\n" +
		"```list:l1:Sample code\n" +
		"x := 1\n" +
		"```\n" +
		"\n" +
		"- one\n" +
		"- two\n" +
		"  - nested\n" +
		"\n" +
		"## Details\n" +
		"\n" +
		"> quoted text\n" +
		"\n" +
		"[site](https://example.com)\n"

	p := &Markdown{}
	tree, err := p.Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Name != "doc" {
		t.Errorf("expected name %q, got %q", "doc", tree.Name)
	}

	want := "chapter 1\n" +
		"  headline 1{intro}: Intro\n" +
		"  paragraph: See @<list>{l1} and @<i>{this} or @<b>{that} with @<tt>{code}.\n" +
		"  block list[\"l1\" \"Sample code\"]: \"x := 1\\n\"\n" +
		"  ulist 1: one\n" +
		"  ulist 1: two\n" +
		"  ulist 2: nested\n" +
		"  chapter 2\n" +
		"    headline 2{}: Details\n" +
		"    block quote[]\n" +
		"      paragraph: quoted text\n" +
		"    paragraph: @<href>{https://example.com, site}\n"
	if got := outline(tree); got != want {
		t.Errorf("expected\n%s\ngot\n%s", want, got)
	}
}

func TestMarkdown_UnlabelledCodeIsEmlist(t *testing.T) {
	input := "```go\nfmt.Println()\n```\n"
	tree, err := (&Markdown{}).Parse(strings.NewReader(input), "code.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "block emlist[]: \"fmt.Println()\\n\"\n"
	if got := outline(tree); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestMarkdown_FenceInfoWithFileName(t *testing.T) {
	tests := []struct {
		info string
		want string
	}{
		{"python:hello.py", "block emlist[\"python:hello.py\"]: \"print(1)\\n\"\n"},
		{"source:main.go:Entry point", "block source[\"main.go\" \"Entry point\"]: \"print(1)\\n\"\n"},
		{"emlist:Shell", "block emlist[\"Shell\"]: \"print(1)\\n\"\n"},
	}
	for _, tc := range tests {
		t.Run(tc.info, func(t *testing.T) {
			input := "```" + tc.info + "\nprint(1)\n```\n"
			tree, err := (&Markdown{}).Parse(strings.NewReader(input), "code.md")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := outline(tree); got != tc.want {
				t.Errorf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestMarkdown_SourceLines(t *testing.T) {
	input := "# Title\n\nfirst\n\nsecond\nline\n"
	tree, err := (&Markdown{}).Parse(strings.NewReader(input), "doc.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var lines []int
	for i := 1; i <= tree.Len(); i++ {
		n := tree.Node(syntaxID(i))
		if n.Line > 0 {
			lines = append(lines, n.Line)
		}
	}
	if len(lines) != 3 || lines[0] != 1 || lines[1] != 3 || lines[2] != 5 {
		t.Errorf("expected lines [1 3 5], got %v", lines)
	}
}

func TestMarkdown_NoHeadings(t *testing.T) {
	input := "Just some text.\n\nAnother paragraph.\n"
	tree, err := (&Markdown{}).Parse(strings.NewReader(input), "plain.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "paragraph: Just some text.\nparagraph: Another paragraph.\n"
	if got := outline(tree); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
