package book

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dgallion1/bookc/internal/syntax"
)

// Code classifies a document report.
type Code string

const (
	CodeInvalidReferenceSyntax Code = "invalid-reference-syntax"
	CodePartNotFound           Code = "part-not-found"
	CodeChapterNotFound        Code = "chapter-not-found"
	CodeReferenceNotFound      Code = "reference-not-found"
	CodeDuplicateSymbol        Code = "duplicate-symbol"
	CodeUnimplementedByBuilder Code = "unimplemented-by-builder"
	CodeArgumentMismatch       Code = "argument-mismatch"
	CodeBodyMismatch           Code = "body-mismatch"
	CodeMissingHeadline        Code = "missing-headline"
)

// Level is the severity of a report.
type Level string

const (
	LevelError   Level = "error"
	LevelWarning Level = "warning"
)

// Report is a non-fatal problem found in the document.
type Report struct {
	Level   Level           `json:"level"`
	Code    Code            `json:"code"`
	Message string          `json:"message"`
	Part    string          `json:"part,omitempty"`
	Chapter string          `json:"chapter"`
	Nodes   []syntax.NodeID `json:"nodes,omitempty"`
	Lines   []int           `json:"lines,omitempty"`
	Builder string          `json:"builder,omitempty"`
}

// String formats the report for display.
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] %s", r.Level, r.Code, r.Message)
	if r.Chapter != "" {
		fmt.Fprintf(&b, " in %s", r.Chapter)
	}
	var lines []string
	for _, line := range r.Lines {
		if line > 0 {
			lines = append(lines, strconv.Itoa(line))
		}
	}
	if len(lines) > 0 {
		b.WriteString(" line " + strings.Join(lines, ", "))
	}
	if r.Builder != "" {
		fmt.Fprintf(&b, " (builder %s)", r.Builder)
	}
	return b.String()
}

// HasErrors reports whether any report has error level.
func HasErrors(reports []Report) bool {
	for _, r := range reports {
		if r.Level == LevelError {
			return true
		}
	}
	return false
}

// AnalyzerError is an internal consistency failure: the analyzer or a
// builder is incomplete or out of step with the tree. Problems in the
// user's document are reported through Process.Error instead.
type AnalyzerError struct {
	Message string
}

func (e *AnalyzerError) Error() string {
	return "analyzer error: " + e.Message
}
