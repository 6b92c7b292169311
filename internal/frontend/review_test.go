package frontend

import (
	"strings"
	"testing"
)

func TestReview_Structure(t *testing.T) {
	input := `= Getting Started
#@ editor note

See @<list>{hello} and @<hd>{setup}.

//list[hello][Hello \[world\]]{
fmt.Println("hi")

return
//}

=={setup} Setup

 * first
 ** nested
 1. ordered

//quote{
quoted one

quoted two
//}

//image[arch][Architecture]
`
	tree, err := (&Review{}).Parse(strings.NewReader(input), "ch01.re")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Name != "ch01" {
		t.Errorf("expected name %q, got %q", "ch01", tree.Name)
	}

	want := "chapter 1\n" +
		"  headline 1{}: Getting Started\n" +
		"  paragraph: See @<list>{hello} and @<hd>{setup}.\n" +
		"  block list[\"hello\" \"Hello [world]\"]: \"fmt.Println(\\\"hi\\\")\\n\\nreturn\\n\"\n" +
		"  chapter 2\n" +
		"    headline 2{setup}: Setup\n" +
		"    ulist 1: first\n" +
		"    ulist 2: nested\n" +
		"    ulist 1: ordered\n" +
		"    block quote[]\n" +
		"      paragraph: quoted one\n" +
		"      paragraph: quoted two\n" +
		"    block image[\"arch\" \"Architecture\"]: \"\"\n"
	if got := outline(tree); got != want {
		t.Errorf("expected\n%s\ngot\n%s", want, got)
	}

	hd := tree.FirstHeadline(2)
	if got := tree.Node(hd).Line; got != 12 {
		t.Errorf("expected level 2 headline on line 12, got %d", got)
	}
}

func TestReview_UnclosedBlock(t *testing.T) {
	input := "= T\n\n//emlist{\nx\n"
	_, err := (&Review{}).Parse(strings.NewReader(input), "ch02.re")
	if err == nil {
		t.Fatal("expected error for unclosed block")
	}
	if !strings.Contains(err.Error(), "ch02.re:3") {
		t.Errorf("expected error to name the opening line, got %v", err)
	}
}

func TestUnescapeArg(t *testing.T) {
	tests := map[string]string{
		`Hello \[world\]`: "Hello [world]",
		`a\\b`:            `a\b`,
		`\\[x]`:           `\[x]`,
		`plain`:            "plain",
	}
	for in, want := range tests {
		if got := unescapeArg(in); got != want {
			t.Errorf("unescapeArg(%q): expected %q, got %q", in, want, got)
		}
	}
}
