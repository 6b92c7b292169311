package frontend

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/bookc/internal/syntax"
)

// Text handles plain text files: blank lines separate paragraphs.
type Text struct{}

func (p *Text) Parse(r io.Reader, filename string) (*syntax.Tree, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	tree := syntax.New(ChapterName(filename))
	s := newSections(tree)

	var current strings.Builder
	start, line := 0, 0
	flush := func() {
		if current.Len() > 0 {
			s.paragraph(current.String(), start)
			current.Reset()
		}
	}

	for scanner.Scan() {
		line++
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			flush()
			continue
		}
		if current.Len() == 0 {
			start = line
		} else {
			current.WriteString("\n")
		}
		current.WriteString(text)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()
	return tree, nil
}
