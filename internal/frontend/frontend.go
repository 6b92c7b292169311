// Package frontend turns chapter source files into syntax trees. Each
// supported format maps its own structure onto chapters, headlines,
// paragraphs, list items and blocks, and every frontend recognises the
// inline markup @<name>{body} inside running text.
package frontend

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/bookc/internal/syntax"
)

// Frontend converts one chapter file into a syntax tree.
type Frontend interface {
	Parse(r io.Reader, filename string) (*syntax.Tree, error)
}

// SupportedExtensions lists the chapter file extensions bookc can read.
var SupportedExtensions = map[string]bool{
	".re":       true,
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// Options tune the frontends returned by ForFile.
type Options struct {
	// PDFFallback runs pdftotext when the PDF library cannot read a file.
	PDFFallback bool
}

// ForFile returns the frontend for a filename using default options.
func ForFile(filename string) (Frontend, error) {
	return Options{}.ForFile(filename)
}

// ForFile returns the frontend for a filename.
func (o Options) ForFile(filename string) (Frontend, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".re":
		return &Review{}, nil
	case ".txt":
		return &Text{}, nil
	case ".md", ".markdown":
		return &Markdown{}, nil
	case ".csv":
		return &CSV{}, nil
	case ".html", ".htm":
		return &HTML{}, nil
	case ".pdf":
		return &PDF{FallbackPdftotext: o.PDFFallback}, nil
	case ".docx":
		return &DOCX{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %q", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	return SupportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// ChapterName is the chapter name for a file: its base name without the
// extension.
func ChapterName(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// sections tracks the open chapter nodes while headings are read in
// document order. The document root sits at level 0.
type sections struct {
	tree  *syntax.Tree
	stack []section
}

type section struct {
	id    syntax.NodeID
	level int
}

func newSections(t *syntax.Tree) *sections {
	return &sections{tree: t, stack: []section{{id: t.Root()}}}
}

// open closes every section at level or deeper and starts a new chapter
// node with its headline. It returns the headline id.
func (s *sections) open(level int, tag string, line int) syntax.NodeID {
	for len(s.stack) > 1 && s.stack[len(s.stack)-1].level >= level {
		s.stack = s.stack[:len(s.stack)-1]
	}
	ch := s.tree.AddChapter(s.current(), level)
	s.stack = append(s.stack, section{id: ch, level: level})
	hd := s.tree.AddHeadline(ch, level, tag)
	s.tree.Node(hd).Line = line
	return hd
}

// current is the innermost open section, or the root before any heading.
func (s *sections) current() syntax.NodeID {
	return s.stack[len(s.stack)-1].id
}

// paragraph adds a paragraph of marked text to the current section.
func (s *sections) paragraph(text string, line int) syntax.NodeID {
	p := s.tree.AddParagraph(s.current())
	s.tree.Node(p).Line = line
	s.tree.AddMarkedText(p, text)
	return p
}

// inlineMarkup renders an inline element as markup for AddMarkedText.
func inlineMarkup(name, body string) string {
	return "@<" + name + ">{" + escapeBody(body) + "}"
}

func escapeBody(s string) string {
	return strings.NewReplacer(`\`, `\\`, `}`, `\}`).Replace(s)
}
