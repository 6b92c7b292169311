package compiler

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/dgallion1/bookc/internal/book"
	"github.com/dgallion1/bookc/internal/catalog"
	"github.com/dgallion1/bookc/internal/frontend"
)

// ErrNoChapters is returned by LoadBook for a catalog without chapters.
var ErrNoChapters = errors.New("catalog lists no chapters")

// ErrDuplicateChapter is returned by LoadBook when two files map to the same
// chapter name. Outputs and references are keyed by that name.
var ErrDuplicateChapter = errors.New("duplicate chapter name")

// Opener opens a chapter file named in the catalog.
type Opener func(name string) (io.ReadCloser, error)

// FSOpener opens chapter files from fsys.
func FSOpener(fsys fs.FS) Opener {
	return func(name string) (io.ReadCloser, error) {
		return fsys.Open(name)
	}
}

// LoadBook parses every chapter listed in cat and assembles the book.
// Chapters listed outside a part share an unnamed content part; predef,
// appendix and postdef chapters each get an unnamed part of their role.
func LoadBook(cat *catalog.Catalog, open Opener, opts frontend.Options) (*book.Book, error) {
	if len(cat.Files()) == 0 {
		return nil, ErrNoChapters
	}
	l := &loader{book: book.New(), open: open, opts: opts, seen: make(map[string]string)}

	if err := l.chapters(book.RolePredef, cat.Predef); err != nil {
		return nil, err
	}
	var loose *book.Part
	for _, e := range cat.Contents {
		if e.IsPart() {
			loose = nil
			p := l.book.AddPart(frontend.ChapterName(e.Part), book.RoleContent)
			for _, file := range e.Chapters {
				if err := l.chapter(p, file); err != nil {
					return nil, err
				}
			}
			continue
		}
		if loose == nil {
			loose = l.book.AddPart("", book.RoleContent)
		}
		if err := l.chapter(loose, e.File); err != nil {
			return nil, err
		}
	}
	if err := l.chapters(book.RoleAppendix, cat.Appendix); err != nil {
		return nil, err
	}
	if err := l.chapters(book.RolePostdef, cat.Postdef); err != nil {
		return nil, err
	}
	return l.book, nil
}

type loader struct {
	book *book.Book
	open Opener
	opts frontend.Options
	seen map[string]string // chapter name -> file
}

func (l *loader) chapters(role book.Role, files []string) error {
	if len(files) == 0 {
		return nil
	}
	p := l.book.AddPart("", role)
	for _, file := range files {
		if err := l.chapter(p, file); err != nil {
			return err
		}
	}
	return nil
}

func (l *loader) chapter(p *book.Part, file string) error {
	fe, err := l.opts.ForFile(file)
	if err != nil {
		return fmt.Errorf("load %s: %w", file, err)
	}
	name := frontend.ChapterName(file)
	if prev, ok := l.seen[name]; ok {
		return fmt.Errorf("load %s: %w %q, also used by %s", file, ErrDuplicateChapter, name, prev)
	}
	l.seen[name] = file

	rc, err := l.open(file)
	if err != nil {
		return fmt.Errorf("load %s: %w", file, err)
	}
	defer rc.Close()

	tree, err := fe.Parse(rc, file)
	if err != nil {
		return fmt.Errorf("load %s: %w", file, err)
	}
	l.book.AddChapter(p, tree.Name, tree)
	return nil
}
