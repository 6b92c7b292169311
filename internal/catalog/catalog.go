// Package catalog reads the book catalog: the YAML file that lists the
// chapter files of a book in reading order.
//
//	PREDEF:
//	  - preface.re
//	CHAPS:
//	  - intro.re
//	  - part1.re:
//	    - setup.re
//	    - usage.re
//	APPENDIX:
//	  - faq.re
//	POSTDEF:
//	  - afterword.re
//
// Keys may also be written in lower case, and "contents" is accepted for
// CHAPS. Chapter entries may be given as {file: name}, and parts as
// {part: {file: name, chapters: [...]}} or {file: name, chapters: [...]}.
package catalog

import (
	"fmt"
	"io/fs"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Catalog is the parsed book structure.
type Catalog struct {
	Predef   []string
	Contents []Entry
	Appendix []string
	Postdef  []string
}

// Entry is one CHAPS item: a chapter file, or a part with its chapters.
type Entry struct {
	Part     string   // part file, empty for a chapter entry
	File     string   // chapter file, set when Part is empty
	Chapters []string // chapters of the part
}

// IsPart reports whether the entry is a part.
func (e Entry) IsPart() bool { return e.Part != "" }

// Parse reads a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	c := &Catalog{}
	var err error
	if node, key := lookup(raw, "predef", "PREDEF"); node != nil {
		if c.Predef, err = decodeChapters(node); err != nil {
			return nil, fmt.Errorf("catalog %s: %w", key, err)
		}
	}
	if node, key := lookup(raw, "contents", "chaps", "CHAPS"); node != nil {
		if c.Contents, err = decodeContents(node); err != nil {
			return nil, fmt.Errorf("catalog %s: %w", key, err)
		}
	}
	if node, key := lookup(raw, "appendix", "APPENDIX"); node != nil {
		if c.Appendix, err = decodeChapters(node); err != nil {
			return nil, fmt.Errorf("catalog %s: %w", key, err)
		}
	}
	if node, key := lookup(raw, "postdef", "POSTDEF"); node != nil {
		if c.Postdef, err = decodeChapters(node); err != nil {
			return nil, fmt.Errorf("catalog %s: %w", key, err)
		}
	}
	return c, nil
}

// lookup returns the first key present; keys not listed anywhere belong to
// other tools and are ignored.
func lookup(raw map[string]yaml.Node, keys ...string) (*yaml.Node, string) {
	for _, k := range keys {
		if node, ok := raw[k]; ok {
			return &node, k
		}
	}
	return nil, ""
}

// Files returns every chapter file in reading order. Part files are not
// included.
func (c *Catalog) Files() []string {
	var out []string
	out = append(out, c.Predef...)
	for _, e := range c.Contents {
		if e.IsPart() {
			out = append(out, e.Chapters...)
		} else {
			out = append(out, e.File)
		}
	}
	out = append(out, c.Appendix...)
	out = append(out, c.Postdef...)
	return out
}

// Expand returns a copy of the catalog with doublestar patterns in chapter
// entries replaced by the matching files of fsys, in lexical order. A
// pattern that matches nothing is an error; plain names are kept as is.
func (c *Catalog) Expand(fsys fs.FS) (*Catalog, error) {
	out := &Catalog{}
	var err error
	if out.Predef, err = expandAll(fsys, c.Predef); err != nil {
		return nil, err
	}
	for _, e := range c.Contents {
		if e.IsPart() {
			chapters, err := expandAll(fsys, e.Chapters)
			if err != nil {
				return nil, err
			}
			out.Contents = append(out.Contents, Entry{Part: e.Part, Chapters: chapters})
			continue
		}
		files, err := expand(fsys, e.File)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			out.Contents = append(out.Contents, Entry{File: f})
		}
	}
	if out.Appendix, err = expandAll(fsys, c.Appendix); err != nil {
		return nil, err
	}
	if out.Postdef, err = expandAll(fsys, c.Postdef); err != nil {
		return nil, err
	}
	return out, nil
}

func expandAll(fsys fs.FS, patterns []string) ([]string, error) {
	var out []string
	for _, p := range patterns {
		files, err := expand(fsys, p)
		if err != nil {
			return nil, err
		}
		out = append(out, files...)
	}
	return out, nil
}

func expand(fsys fs.FS, pattern string) ([]string, error) {
	if !strings.ContainsAny(pattern, "*?[{") {
		return []string{pattern}, nil
	}
	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("expand %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("expand %q: no matching files", pattern)
	}
	return matches, nil
}

func decodeChapters(node *yaml.Node) ([]string, error) {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil, nil
	}
	var items []chapterFile
	if err := node.Decode(&items); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for _, f := range items {
		out = append(out, string(f))
	}
	return out, nil
}

func decodeContents(node *yaml.Node) ([]Entry, error) {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return nil, nil
	}
	var out []Entry
	if err := node.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// chapterFile decodes "name" or {file: name}.
type chapterFile string

func (f *chapterFile) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*f = chapterFile(value.Value)
		return nil
	case yaml.MappingNode:
		var v struct {
			File string `yaml:"file"`
		}
		if err := value.Decode(&v); err != nil {
			return err
		}
		if v.File == "" {
			return fmt.Errorf("line %d: chapter entry without file", value.Line)
		}
		*f = chapterFile(v.File)
		return nil
	}
	return fmt.Errorf("line %d: unexpected chapter entry", value.Line)
}

type partFields struct {
	File     string        `yaml:"file"`
	Chapters []chapterFile `yaml:"chapters"`
}

func (e *Entry) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		e.File = value.Value
		return nil
	case yaml.MappingNode:
	default:
		return fmt.Errorf("line %d: unexpected contents entry", value.Line)
	}

	keys := make(map[string]*yaml.Node, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		keys[value.Content[i].Value] = value.Content[i+1]
	}

	switch {
	case keys["chapter"] != nil:
		var f chapterFile
		if err := keys["chapter"].Decode(&f); err != nil {
			return err
		}
		e.File = string(f)
	case keys["part"] != nil:
		var p partFields
		if err := keys["part"].Decode(&p); err != nil {
			return err
		}
		e.setPart(p)
	case keys["file"] != nil && keys["chapters"] != nil:
		var p partFields
		if err := value.Decode(&p); err != nil {
			return err
		}
		e.setPart(p)
	case keys["file"] != nil:
		e.File = keys["file"].Value
	case len(keys) == 1:
		// {part-file: [chapters]}
		for name, chapters := range keys {
			var items []chapterFile
			if err := chapters.Decode(&items); err != nil {
				return err
			}
			e.setPart(partFields{File: name, Chapters: items})
		}
	default:
		return fmt.Errorf("line %d: cannot tell chapter from part", value.Line)
	}
	if e.File == "" && e.Part == "" {
		return fmt.Errorf("line %d: entry without file", value.Line)
	}
	return nil
}

func (e *Entry) setPart(p partFields) {
	e.Part = p.File
	e.Chapters = make([]string, 0, len(p.Chapters))
	for _, c := range p.Chapters {
		e.Chapters = append(e.Chapters, string(c))
	}
}
