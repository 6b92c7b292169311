package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dgallion1/bookc/internal/book"
)

var (
	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF5555"))

	warningStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFAA00"))

	locationStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	codeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#66AAFF"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#00CC66")).
		Bold(true)
)

// printReports writes one line per report and a summary line.
func printReports(w io.Writer, reports []book.Report) {
	var errs, warnings int
	for _, r := range reports {
		level := warningStyle.Render("warning")
		if r.Level == book.LevelError {
			level = errorStyle.Render("error")
			errs++
		} else {
			warnings++
		}
		fmt.Fprintf(w, "%s %s %s %s\n", locationStyle.Render(location(r)), level, codeStyle.Render(string(r.Code)), r.Message)
	}
	switch {
	case errs > 0:
		fmt.Fprintln(w, errorStyle.Render(fmt.Sprintf("%d error(s), %d warning(s)", errs, warnings)))
	case warnings > 0:
		fmt.Fprintln(w, warningStyle.Render(fmt.Sprintf("%d warning(s)", warnings)))
	default:
		fmt.Fprintln(w, okStyle.Render("no problems found"))
	}
}

// location renders part/chapter:line for a report.
func location(r book.Report) string {
	loc := r.Chapter
	if r.Part != "" {
		loc = r.Part + "/" + loc
	}
	var lines []string
	for _, l := range r.Lines {
		if l > 0 {
			lines = append(lines, strconv.Itoa(l))
		}
	}
	if len(lines) > 0 {
		loc += ":" + strings.Join(lines, ",")
	}
	if r.Builder != "" {
		loc += " [" + r.Builder + "]"
	}
	return loc
}

// printSymbols lists every symbol defined in the book.
func printSymbols(w io.Writer, symbols []*book.Symbol) {
	for _, s := range symbols {
		if s.ReferenceTo != nil || s.Chapter == nil {
			continue
		}
		number := ""
		if s.Number > 0 {
			number = strconv.Itoa(s.Number)
		}
		fmt.Fprintf(w, "%-20s %-8s %-4s %s\n", s.Chapter.Name, s.Kind, number, s.Label)
	}
}
