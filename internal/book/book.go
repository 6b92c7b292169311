package book

import "github.com/dgallion1/bookc/internal/syntax"

// Role places a part within the book's reading order.
type Role string

const (
	RolePredef   Role = "predef"
	RoleContent  Role = "content"
	RoleAppendix Role = "appendix"
	RolePostdef  Role = "postdef"
)

// Book is the root of a compilation: an ordered list of parts.
type Book struct {
	Parts []*Part
}

// Part is a named, ordered group of chapters. Chapters that are not listed
// under an explicit part live in a part with an empty name.
type Part struct {
	Name     string
	Role     Role
	Number   int // 1-based among explicit content parts, 0 otherwise
	Chapters []*Chapter
}

// Chapter owns one syntax tree and its analysis process.
type Chapter struct {
	Name    string
	Number  int // 1-based within content or appendix chapters, 0 otherwise
	Part    *Part
	Tree    *syntax.Tree
	Process *Process
}

// New returns an empty book.
func New() *Book {
	return &Book{}
}

// AddPart appends a part. Explicit content parts are numbered in order.
func (b *Book) AddPart(name string, role Role) *Part {
	p := &Part{Name: name, Role: role}
	if role == RoleContent && name != "" {
		n := 0
		for _, other := range b.Parts {
			if other.Role == RoleContent && other.Name != "" {
				n++
			}
		}
		p.Number = n + 1
	}
	b.Parts = append(b.Parts, p)
	return p
}

// AddChapter appends a chapter to the part and creates its process.
// Content and appendix chapters are numbered across the whole book.
func (b *Book) AddChapter(p *Part, name string, tree *syntax.Tree) *Chapter {
	c := &Chapter{Name: name, Part: p, Tree: tree}
	if p.Role == RoleContent || p.Role == RoleAppendix {
		n := 0
		for _, ch := range b.Chapters() {
			if ch.Part.Role == p.Role {
				n++
			}
		}
		c.Number = n + 1
	}
	c.Process = newProcess(c)
	p.Chapters = append(p.Chapters, c)
	return c
}

// Chapters returns every chapter in book order.
func (b *Book) Chapters() []*Chapter {
	var out []*Chapter
	for _, p := range b.Parts {
		out = append(out, p.Chapters...)
	}
	return out
}

// Part returns the first part with the given name.
func (b *Book) Part(name string) *Part {
	for _, p := range b.Parts {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Chapter returns the first chapter of p with the given name.
func (p *Part) Chapter(name string) *Chapter {
	for _, c := range p.Chapters {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// EachChapter calls fn for every chapter in book order and stops at the
// first error.
func (b *Book) EachChapter(fn func(c *Chapter) error) error {
	for _, p := range b.Parts {
		for _, c := range p.Chapters {
			if err := fn(c); err != nil {
				return err
			}
		}
	}
	return nil
}

// Symbols returns the concatenation of every chapter's symbols in book
// order.
func (b *Book) Symbols() []*Symbol {
	var out []*Symbol
	for _, c := range b.Chapters() {
		out = append(out, c.Process.symbols...)
	}
	return out
}

// Reports returns every chapter's reports in book order.
func (b *Book) Reports() []Report {
	var out []Report
	for _, c := range b.Chapters() {
		out = append(out, c.Process.reports...)
	}
	return out
}
