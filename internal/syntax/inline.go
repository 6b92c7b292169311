package syntax

import "regexp"

// inlinePattern matches Re:VIEW inline markup such as @<list>{c1|sample}.
// Bodies may contain "\}" to escape a closing brace.
var inlinePattern = regexp.MustCompile(`@<([a-z][a-z0-9]*)>\{((?:\\.|[^}\\])*)\}`)

// AddMarkedText adds text under parent, turning every @<name>{body}
// occurrence into an inline element holding body as its text child.
func (t *Tree) AddMarkedText(parent NodeID, text string) {
	pos := 0
	for _, m := range inlinePattern.FindAllStringSubmatchIndex(text, -1) {
		if m[0] > pos {
			t.AddText(parent, text[pos:m[0]])
		}
		inline := t.AddInline(parent, text[m[2]:m[3]])
		if body := unescapeBody(text[m[4]:m[5]]); body != "" {
			t.AddText(inline, body)
		}
		pos = m[1]
	}
	if pos < len(text) {
		t.AddText(parent, text[pos:])
	}
}

func unescapeBody(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		out = append(out, s[i])
	}
	return string(out)
}
