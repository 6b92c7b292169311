package book

import (
	"bytes"

	"github.com/dgallion1/bookc/internal/syntax"
)

// Process is the per-chapter compilation context handed to every handler.
// It is mutated only while its own chapter is being traversed or
// finalized.
type Process struct {
	Chapter *Chapter

	symbols  []*Symbol
	reports  []Report
	out      bytes.Buffer
	counters map[string]int
	after    []func() error
}

func newProcess(c *Chapter) *Process {
	return &Process{Chapter: c, counters: make(map[string]int)}
}

// Part returns the part owning the chapter.
func (p *Process) Part() *Part { return p.Chapter.Part }

// Tree returns the chapter's syntax tree.
func (p *Process) Tree() *syntax.Tree { return p.Chapter.Tree }

// Error records a document error attributed to nodes of this chapter.
func (p *Process) Error(code Code, message string, nodes ...syntax.NodeID) {
	p.report(LevelError, code, message, nodes)
}

// Warning records a document warning attributed to nodes of this chapter.
func (p *Process) Warning(code Code, message string, nodes ...syntax.NodeID) {
	p.report(LevelWarning, code, message, nodes)
}

func (p *Process) report(level Level, code Code, message string, nodes []syntax.NodeID) {
	p.reports = append(p.reports, p.NewReport(level, code, message, nodes...))
}

// NewReport builds a report attributed to this chapter without recording
// it. Checks that must not mutate the book use it.
func (p *Process) NewReport(level Level, code Code, message string, nodes ...syntax.NodeID) Report {
	r := Report{
		Level:   level,
		Code:    code,
		Message: message,
		Chapter: p.Chapter.Name,
		Nodes:   nodes,
	}
	if p.Chapter.Part != nil {
		r.Part = p.Chapter.Part.Name
	}
	for _, id := range nodes {
		line := 0
		if n := p.Tree().Node(id); n != nil {
			line = n.Line
		}
		r.Lines = append(r.Lines, line)
	}
	return r
}

// Reports returns the reports accumulated for this chapter.
func (p *Process) Reports() []Report { return p.reports }

// AddSymbol appends a symbol owned by this chapter.
func (p *Process) AddSymbol(s *Symbol) {
	s.Chapter = p.Chapter
	p.symbols = append(p.symbols, s)
}

// Symbols returns the chapter's symbols in discovery order.
func (p *Process) Symbols() []*Symbol { return p.symbols }

// Out appends text to the chapter output.
func (p *Process) Out(text string) { p.out.WriteString(text) }

// Output returns the accumulated chapter output.
func (p *Process) Output() []byte { return p.out.Bytes() }

// NextIndex returns the next number for tag, starting at 1. Counters are
// independent per tag.
func (p *Process) NextIndex(tag string) int {
	p.counters[tag]++
	return p.counters[tag]
}

// AddAfterProcess defers fn until DoAfterProcess.
func (p *Process) AddAfterProcess(fn func() error) { p.after = append(p.after, fn) }

// DoAfterProcess runs and clears the deferred hooks in registration order.
func (p *Process) DoAfterProcess() error {
	hooks := p.after
	p.after = nil
	for _, fn := range hooks {
		if err := fn(); err != nil {
			return err
		}
	}
	return nil
}

// BuilderProcess is the context one builder gets for one chapter. It shares
// symbols and reports with the chapter's analysis process but has its own
// output, counters and deferred hooks, so builders never see each other's
// output.
type BuilderProcess struct {
	*Process
	Builder string

	out      bytes.Buffer
	counters map[string]int
	after    []func() error
}

// NewBuilderProcess creates the rendering context of builder for c.
func (c *Chapter) NewBuilderProcess(builder string) *BuilderProcess {
	return &BuilderProcess{
		Process:  c.Process,
		Builder:  builder,
		counters: make(map[string]int),
	}
}

// Out appends rendered text.
func (p *BuilderProcess) Out(text string) { p.out.WriteString(text) }

// Write appends rendered bytes. It never fails.
func (p *BuilderProcess) Write(b []byte) (int, error) { return p.out.Write(b) }

// Output returns the rendered chapter.
func (p *BuilderProcess) Output() []byte { return p.out.Bytes() }

// Reset discards rendered output.
func (p *BuilderProcess) Reset() { p.out.Reset() }

// NextIndex returns the next render-time number for tag, starting at 1.
func (p *BuilderProcess) NextIndex(tag string) int {
	p.counters[tag]++
	return p.counters[tag]
}

// AddAfterProcess defers fn until DoAfterProcess.
func (p *BuilderProcess) AddAfterProcess(fn func() error) { p.after = append(p.after, fn) }

// DoAfterProcess runs and clears the builder's deferred hooks.
func (p *BuilderProcess) DoAfterProcess() error {
	hooks := p.after
	p.after = nil
	for _, fn := range hooks {
		if err := fn(); err != nil {
			return err
		}
	}
	return nil
}
