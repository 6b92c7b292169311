package frontend

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/dgallion1/bookc/internal/syntax"
)

var (
	reviewHeadline = regexp.MustCompile(`^(={1,6})(?:\[[^\]]*\])?(?:\{([^}]*)\})?\s+(.*)$`)
	reviewBlock    = regexp.MustCompile(`^//([a-z][a-z0-9]*)((?:\[(?:\\.|[^\]\\])*\])*)(\{)?\s*$`)
	reviewArg      = regexp.MustCompile(`\[((?:\\.|[^\]\\])*)\]`)
	reviewItem     = regexp.MustCompile(`^\s+(\*+)\s+(.*)$`)
	reviewOrdered  = regexp.MustCompile(`^\s+\d+\.\s+(.*)$`)
)

// paragraphBlocks hold paragraphs rather than verbatim lines.
var paragraphBlocks = map[string]bool{"quote": true, "lead": true, "noindent": true}

// Review handles Re:VIEW sources: "=" headlines with optional {label},
// //name[arg]...{ ... //} blocks, " * " list items and paragraphs
// separated by blank lines. Lines starting with #@ are comments.
type Review struct{}

func (p *Review) Parse(r io.Reader, filename string) (*syntax.Tree, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	tree := syntax.New(ChapterName(filename))
	s := newSections(tree)

	var para strings.Builder
	paraLine, line := 0, 0
	flush := func() {
		if para.Len() > 0 {
			s.paragraph(para.String(), paraLine)
			para.Reset()
		}
	}

	// Open block state.
	var (
		block     syntax.NodeID
		blockName string
		blockLine int
		body      []string
	)

	for scanner.Scan() {
		line++
		text := scanner.Text()

		if block != syntax.NoNode {
			if strings.TrimSpace(text) == "//}" {
				p.closeBlock(tree, block, blockName, body)
				block, body = syntax.NoNode, nil
				continue
			}
			body = append(body, text)
			continue
		}

		if strings.HasPrefix(text, "#@") {
			continue
		}
		if strings.TrimSpace(text) == "" {
			flush()
			continue
		}
		if m := reviewHeadline.FindStringSubmatch(text); m != nil {
			flush()
			hd := s.open(len(m[1]), m[2], line)
			tree.AddMarkedText(hd, strings.TrimSpace(m[3]))
			continue
		}
		if m := reviewBlock.FindStringSubmatch(text); m != nil {
			flush()
			var args []string
			for _, a := range reviewArg.FindAllStringSubmatch(m[2], -1) {
				args = append(args, unescapeArg(a[1]))
			}
			id := tree.AddBlock(s.current(), m[1], args...)
			tree.Node(id).Line = line
			if m[3] != "" {
				block, blockName, blockLine = id, m[1], line
			}
			continue
		}
		if m := reviewItem.FindStringSubmatch(text); m != nil {
			flush()
			li := tree.AddUlist(s.current(), len(m[1]))
			tree.Node(li).Line = line
			tree.AddMarkedText(li, m[2])
			continue
		}
		if m := reviewOrdered.FindStringSubmatch(text); m != nil {
			flush()
			li := tree.AddUlist(s.current(), 1)
			tree.Node(li).Line = line
			tree.AddMarkedText(li, m[1])
			continue
		}

		if para.Len() == 0 {
			paraLine = line
		} else {
			para.WriteString("\n")
		}
		para.WriteString(text)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if block != syntax.NoNode {
		return nil, fmt.Errorf("%s:%d: block //%s is not closed", filename, blockLine, blockName)
	}
	flush()
	return tree, nil
}

// closeBlock fills a finished block. Paragraph blocks split their body on
// blank lines; the others keep it verbatim.
func (p *Review) closeBlock(tree *syntax.Tree, block syntax.NodeID, name string, body []string) {
	if !paragraphBlocks[name] {
		if len(body) > 0 {
			tree.AddText(block, strings.Join(body, "\n")+"\n")
		}
		return
	}
	var lines []string
	emit := func() {
		if len(lines) > 0 {
			tree.AddMarkedText(tree.AddParagraph(block), strings.Join(lines, "\n"))
			lines = nil
		}
	}
	for _, l := range body {
		if strings.TrimSpace(l) == "" {
			emit()
			continue
		}
		lines = append(lines, l)
	}
	emit()
}

func unescapeArg(s string) string {
	return strings.NewReplacer(`\[`, `[`, `\]`, `]`, `\\`, `\`).Replace(s)
}
