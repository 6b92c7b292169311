package syntax

import "testing"

func sampleTree() (*Tree, NodeID, NodeID) {
	t := New("ch01")
	ch := t.AddChapter(t.Root(), 1)
	hd := t.AddHeadline(ch, 1, "")
	t.AddText(hd, "Introduction")
	sec := t.AddChapter(ch, 2)
	sh := t.AddHeadline(sec, 2, "details")
	t.AddText(sh, "Details")
	p := t.AddParagraph(sec)
	t.AddMarkedText(p, "see @<list>{sample} here")
	return t, ch, sec
}

func TestTree_ParentLinks(t *testing.T) {
	tree, ch, sec := sampleTree()

	if tree.Node(tree.Root()).Kind != KindDocument {
		t.Fatalf("expected root kind document, got %s", tree.Node(tree.Root()).Kind)
	}
	if tree.Node(sec).Parent != ch {
		t.Errorf("expected section parent %d, got %d", ch, tree.Node(sec).Parent)
	}
	if tree.Node(NoNode) != nil {
		t.Error("expected nil node for NoNode")
	}
	if tree.Node(NodeID(tree.Len()+1)) != nil {
		t.Error("expected nil node for out of range id")
	}
}

func TestTree_AddMarkedText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kinds []Kind
		names []string
	}{
		{"plain", "no markup", []Kind{KindText}, []string{""}},
		{"middle", "a @<b>{bold} c", []Kind{KindText, KindInline, KindText}, []string{"", "b", ""}},
		{"edges", "@<list>{c1|l1}", []Kind{KindInline}, []string{"list"}},
		{"two", "@<i>{x}@<fn>{n}", []Kind{KindInline, KindInline}, []string{"i", "fn"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tree := New("c")
			p := tree.AddParagraph(tree.Root())
			tree.AddMarkedText(p, tc.input)
			children := tree.Node(p).Children
			if len(children) != len(tc.kinds) {
				t.Fatalf("expected %d children, got %d", len(tc.kinds), len(children))
			}
			for i, id := range children {
				n := tree.Node(id)
				if n.Kind != tc.kinds[i] {
					t.Errorf("child[%d]: expected kind %s, got %s", i, tc.kinds[i], n.Kind)
				}
				if n.Name != tc.names[i] {
					t.Errorf("child[%d]: expected name %q, got %q", i, tc.names[i], n.Name)
				}
			}
		})
	}
}

func TestTree_AddMarkedTextEscapedBrace(t *testing.T) {
	tree := New("c")
	p := tree.AddParagraph(tree.Root())
	tree.AddMarkedText(p, `@<code>{a\}b}`)

	in := tree.Node(p).Children[0]
	if got := tree.ContentString(in); got != "a}b" {
		t.Errorf("expected %q, got %q", "a}b", got)
	}
}

func TestTree_ElementNames(t *testing.T) {
	tree := New("c")
	l1 := tree.AddBlock(tree.Root(), "list", "l1", "cap")
	p := tree.AddParagraph(tree.Root())
	tree.AddMarkedText(p, "@<list>{l1} @<b>{x} @<list>{l1}")
	tree.AddBlock(tree.Root(), "list", "l2", "cap")

	var got []string
	for _, id := range tree.ElementNames() {
		n := tree.Node(id)
		got = append(got, n.Kind.String()+":"+n.Name)
	}
	want := []string{"block:list", "inline:list", "inline:b"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("element %d: expected %s, got %s", i, want[i], got[i])
		}
	}
	if first := tree.ElementNames()[0]; first != l1 {
		t.Errorf("expected first list block %d, got %d", l1, first)
	}
}

func TestTree_SiblingAndFirstHeadline(t *testing.T) {
	tree := New("c")
	a := tree.AddUlist(tree.Root(), 1)
	b := tree.AddUlist(tree.Root(), 1)
	ch := tree.AddChapter(tree.Root(), 1)
	hd := tree.AddHeadline(ch, 1, "")

	if got := tree.Sibling(b, -1); got != a {
		t.Errorf("expected previous sibling %d, got %d", a, got)
	}
	if got := tree.Sibling(a, -1); got != NoNode {
		t.Errorf("expected no previous sibling, got %d", got)
	}
	if got := tree.Sibling(b, 1); got != ch {
		t.Errorf("expected next sibling %d, got %d", ch, got)
	}
	if got := tree.Sibling(tree.Root(), 1); got != NoNode {
		t.Errorf("expected root to have no siblings, got %d", got)
	}
	if got := tree.FirstHeadline(1); got != hd {
		t.Errorf("expected headline %d, got %d", hd, got)
	}
	if got := tree.FirstHeadline(2); got != NoNode {
		t.Errorf("expected no level 2 headline, got %d", got)
	}
}
