package syntax

import "strings"

// Kind is the structural kind of a node.
type Kind int

const (
	KindDocument Kind = iota + 1
	KindChapter
	KindHeadline
	KindParagraph
	KindUlist
	KindBlock
	KindInline
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindDocument:
		return "document"
	case KindChapter:
		return "chapter"
	case KindHeadline:
		return "headline"
	case KindParagraph:
		return "paragraph"
	case KindUlist:
		return "ulist"
	case KindBlock:
		return "block"
	case KindInline:
		return "inline"
	case KindText:
		return "text"
	}
	return "unknown"
}

// NodeID identifies a node within its Tree. The zero value means no node.
type NodeID int32

// NoNode is the absent node id.
const NoNode NodeID = 0

// Node is one element of a chapter's syntax tree.
type Node struct {
	ID       NodeID
	Kind     Kind
	Parent   NodeID
	Children []NodeID

	Name  string   // element name for block and inline nodes
	Args  []string // block arguments, in source order
	Level int      // chapter, headline and ulist nesting level
	Tag   string   // explicit headline label
	Text  string   // text node content
	Line  int      // source line (0 if unknown)
}

// Tree owns every node of one chapter. Nodes refer to each other only by
// NodeID, so parent links never form ownership cycles.
type Tree struct {
	Name  string
	nodes []Node
}

// New returns a tree holding only its document root.
func New(name string) *Tree {
	t := &Tree{Name: name}
	t.add(NoNode, Node{Kind: KindDocument})
	return t
}

// Root returns the document node id.
func (t *Tree) Root() NodeID { return 1 }

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int { return len(t.nodes) }

// Node returns the node for id, or nil if id is not in the tree.
func (t *Tree) Node(id NodeID) *Node {
	if id <= 0 || int(id) > len(t.nodes) {
		return nil
	}
	return &t.nodes[id-1]
}

func (t *Tree) add(parent NodeID, n Node) NodeID {
	n.ID = NodeID(len(t.nodes) + 1)
	n.Parent = parent
	t.nodes = append(t.nodes, n)
	if p := t.Node(parent); p != nil {
		p.Children = append(p.Children, n.ID)
	}
	return n.ID
}

// AddChapter opens a chapter (section) node at the given heading level.
func (t *Tree) AddChapter(parent NodeID, level int) NodeID {
	return t.add(parent, Node{Kind: KindChapter, Level: level})
}

// AddHeadline adds a headline. Caption content is added as its children.
func (t *Tree) AddHeadline(parent NodeID, level int, tag string) NodeID {
	return t.add(parent, Node{Kind: KindHeadline, Level: level, Tag: tag})
}

// AddParagraph adds a paragraph container.
func (t *Tree) AddParagraph(parent NodeID) NodeID {
	return t.add(parent, Node{Kind: KindParagraph})
}

// AddUlist adds an unordered list item.
func (t *Tree) AddUlist(parent NodeID, level int) NodeID {
	return t.add(parent, Node{Kind: KindUlist, Level: level})
}

// AddBlock adds a block element such as //list[label][caption]{ ... //}.
func (t *Tree) AddBlock(parent NodeID, name string, args ...string) NodeID {
	return t.add(parent, Node{Kind: KindBlock, Name: name, Args: args})
}

// AddInline adds an inline element such as @<list>{label}.
func (t *Tree) AddInline(parent NodeID, name string) NodeID {
	return t.add(parent, Node{Kind: KindInline, Name: name})
}

// AddText adds a text leaf.
func (t *Tree) AddText(parent NodeID, text string) NodeID {
	return t.add(parent, Node{Kind: KindText, Text: text})
}

// ContentString concatenates every text leaf below id.
func (t *Tree) ContentString(id NodeID) string {
	var sb strings.Builder
	var walk func(NodeID)
	walk = func(id NodeID) {
		n := t.Node(id)
		if n == nil {
			return
		}
		if n.Kind == KindText {
			sb.WriteString(n.Text)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(id)
	return sb.String()
}

// ElementNames returns, in document order, the first block or inline node
// for each distinct kind and name used in the tree.
func (t *Tree) ElementNames() []NodeID {
	type key struct {
		kind Kind
		name string
	}
	seen := make(map[key]bool)
	var firsts []NodeID
	var walk func(NodeID)
	walk = func(id NodeID) {
		n := t.Node(id)
		if n.Kind == KindBlock || n.Kind == KindInline {
			if k := (key{n.Kind, n.Name}); !seen[k] {
				seen[k] = true
				firsts = append(firsts, id)
			}
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(t.Root())
	return firsts
}

// Sibling returns the node offset positions away from id among its
// parent's children (offset -1 is the previous sibling), or NoNode.
func (t *Tree) Sibling(id NodeID, offset int) NodeID {
	n := t.Node(id)
	if n == nil {
		return NoNode
	}
	p := t.Node(n.Parent)
	if p == nil {
		return NoNode
	}
	for i, c := range p.Children {
		if c == id {
			j := i + offset
			if j < 0 || j >= len(p.Children) {
				return NoNode
			}
			return p.Children[j]
		}
	}
	return NoNode
}

// FirstHeadline returns the first headline of the given level in document
// order, or NoNode.
func (t *Tree) FirstHeadline(level int) NodeID {
	for i := range t.nodes {
		if n := &t.nodes[i]; n.Kind == KindHeadline && n.Level == level {
			return n.ID
		}
	}
	return NoNode
}
