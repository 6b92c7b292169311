package compiler

import (
	"fmt"
	"strings"

	"github.com/dgallion1/bookc/internal/builder"
	"github.com/dgallion1/bookc/internal/builder/docxbuilder"
	"github.com/dgallion1/bookc/internal/builder/htmlbuilder"
	"github.com/dgallion1/bookc/internal/builder/textbuilder"
)

var registry = map[string]func() builder.Builder{
	textbuilder.Name: func() builder.Builder { return textbuilder.New() },
	htmlbuilder.Name: func() builder.Builder { return htmlbuilder.New() },
	docxbuilder.Name: func() builder.Builder { return docxbuilder.New() },
}

// BuilderNames lists the builders NewBuilders knows, in a stable order.
func BuilderNames() []string {
	return []string{textbuilder.Name, htmlbuilder.Name, docxbuilder.Name}
}

// NewBuilders returns fresh builders for names. Builders keep state while
// they run, so each compilation needs its own.
func NewBuilders(names []string) ([]builder.Builder, error) {
	var out []builder.Builder
	seen := make(map[string]bool)
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" || seen[name] {
			continue
		}
		newFn, ok := registry[name]
		if !ok {
			return nil, fmt.Errorf("unknown builder %q (known: %s)", name, strings.Join(BuilderNames(), ", "))
		}
		seen[name] = true
		out = append(out, newFn())
	}
	return out, nil
}

// OutputExtension is the file extension for a builder's chapter output.
func OutputExtension(name string) string {
	switch name {
	case htmlbuilder.Name:
		return ".html"
	case docxbuilder.Name:
		return ".docx"
	default:
		return ".txt"
	}
}
