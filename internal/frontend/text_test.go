package frontend

import (
	"strings"
	"testing"
)

func TestText_Paragraphs(t *testing.T) {
	input := "First paragraph\ncontinues here.\n\n\nSecond with @<b>{bold}.\n"
	tree, err := (&Text{}).Parse(strings.NewReader(input), "notes.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Name != "notes" {
		t.Errorf("expected name %q, got %q", "notes", tree.Name)
	}
	want := "paragraph: First paragraph\ncontinues here.\n" +
		"paragraph: Second with @<b>{bold}.\n"
	if got := outline(tree); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	root := tree.Node(tree.Root())
	if got := tree.Node(root.Children[1]).Line; got != 5 {
		t.Errorf("expected second paragraph on line 5, got %d", got)
	}
}

func TestText_Empty(t *testing.T) {
	tree, err := (&Text{}).Parse(strings.NewReader("\n\n  \n"), "empty.txt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tree.Len() != 1 {
		t.Errorf("expected only the root node, got %d nodes", tree.Len())
	}
}

func TestCSV_Table(t *testing.T) {
	input := "name,qty\napple,3\npear,5\n"
	tree, err := (&CSV{}).Parse(strings.NewReader(input), "fruit.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "chapter 1\n" +
		"  headline 1{}: fruit\n" +
		"  block table[\"fruit\" \"fruit\"]: \"name\\tqty\\napple\\t3\\npear\\t5\\n\"\n"
	if got := outline(tree); got != want {
		t.Errorf("expected\n%s\ngot\n%s", want, got)
	}
}
