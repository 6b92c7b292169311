package frontend

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/bookc/internal/syntax"
)

// CSV handles CSV files. The file becomes a chapter headed by its name
// holding one table block labelled with the chapter name, one
// tab-separated line per record.
type CSV struct{}

func (p *CSV) Parse(r io.Reader, filename string) (*syntax.Tree, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	name := ChapterName(filename)
	tree := syntax.New(name)
	s := newSections(tree)
	hd := s.open(1, "", 1)
	tree.AddText(hd, name)
	if len(records) == 0 {
		return tree, nil
	}

	var body strings.Builder
	for _, row := range records {
		body.WriteString(strings.Join(row, "\t"))
		body.WriteString("\n")
	}
	table := tree.AddBlock(s.current(), "table", name, name)
	tree.Node(table).Line = 1
	tree.AddText(table, body.String())
	return tree, nil
}
