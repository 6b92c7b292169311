package builder

import (
	"strconv"
	"strings"

	"github.com/dgallion1/bookc/internal/book"
	"github.com/dgallion1/bookc/internal/syntax"
)

// ChapterNumber formats a chapter's number: "3" for content chapters, "A"
// for the first appendix, "" for unnumbered chapters.
func ChapterNumber(c *book.Chapter) string {
	if c == nil || c.Number == 0 {
		return ""
	}
	if c.Part != nil && c.Part.Role == book.RoleAppendix {
		n := c.Number - 1
		s := ""
		for {
			s = string(rune('A'+n%26)) + s
			n = n/26 - 1
			if n < 0 {
				return s
			}
		}
	}
	return strconv.Itoa(c.Number)
}

// SymbolNumber formats a numbered symbol as chapter.number, e.g. "2.1".
func SymbolNumber(s *book.Symbol) string {
	n := strconv.Itoa(s.Number)
	if ch := ChapterNumber(s.Chapter); ch != "" {
		return ch + "." + n
	}
	return n
}

// ChapterTitle returns the caption of the chapter's first level-1
// headline, or the chapter name.
func ChapterTitle(c *book.Chapter) string {
	if id := c.Tree.FirstHeadline(1); id != syntax.NoNode {
		return c.Tree.ContentString(id)
	}
	return c.Name
}

// Arg returns the i-th block argument or "".
func Arg(n *syntax.Node, i int) string {
	if i < len(n.Args) {
		return n.Args[i]
	}
	return ""
}

// SplitPair splits an inline body such as "word, alt" at the first comma.
func SplitPair(s string) (first, second string) {
	first, second, _ = strings.Cut(s, ",")
	return strings.TrimSpace(first), strings.TrimSpace(second)
}

// Raw parses the body of raw elements, "|html,text|content". ok reports
// whether the content is meant for builder; a body without a target list
// is meant for every builder.
func Raw(body, builder string) (content string, ok bool) {
	if !strings.HasPrefix(body, "|") {
		return body, true
	}
	targets, content, found := strings.Cut(body[1:], "|")
	if !found {
		return body, true
	}
	for _, t := range strings.Split(targets, ",") {
		if strings.TrimSpace(t) == builder {
			return content, true
		}
	}
	return "", false
}

// Uchar decodes the hexadecimal body of @<uchar>{2460}.
func Uchar(body string) (string, bool) {
	code, err := strconv.ParseUint(strings.TrimSpace(body), 16, 32)
	if err != nil {
		return "", false
	}
	return string(rune(code)), true
}

var captionWords = map[string]string{
	"list":  "List",
	"image": "Figure",
	"table": "Table",
}

// NumberedCaption names a numbered symbol for display, e.g. "List 1.2".
func NumberedCaption(s *book.Symbol) string {
	word, ok := captionWords[s.Kind]
	if !ok {
		word = s.Kind
	}
	return word + " " + SymbolNumber(s)
}

// ChapterCaption names a chapter for display: "Chapter 2", "Appendix A",
// or the chapter title when it is unnumbered.
func ChapterCaption(c *book.Chapter) string {
	n := ChapterNumber(c)
	switch {
	case n == "":
		return ChapterTitle(c)
	case c.Part.Role == book.RoleAppendix:
		return "Appendix " + n
	}
	return "Chapter " + n
}

// HeadlineCaption returns the caption text of a headline symbol.
func HeadlineCaption(s *book.Symbol) string {
	return s.Chapter.Tree.ContentString(s.Node)
}
