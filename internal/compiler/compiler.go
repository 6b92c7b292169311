// Package compiler drives a whole compilation: analysis, validation and
// every requested builder, reporting progress through a Listener.
package compiler

import (
	"context"
	"log/slog"
	"time"

	"github.com/dgallion1/bookc/internal/analyzer"
	"github.com/dgallion1/bookc/internal/book"
	"github.com/dgallion1/bookc/internal/builder"
	"github.com/dgallion1/bookc/internal/metrics"
	"github.com/dgallion1/bookc/internal/validator"
)

// Listener receives compilation events. Nil callbacks are skipped.
type Listener struct {
	OnAcceptables    func([]analyzer.Acceptable)
	OnSymbols        func([]*book.Symbol)
	OnReports        func([]book.Report)
	OnCompileSuccess func(*book.Book)
	OnCompileFailed  func(*book.Book)
}

// Validator checks an analysed book and returns its findings.
type Validator interface {
	Run(b *book.Book, builders []validator.Declarer) []book.Report
}

// Options configure Compile. Zero values select the defaults.
type Options struct {
	Analyzer   *analyzer.Analyzer // default analyzer.New()
	Validators []Validator        // default the structural validator
	Builders   []builder.Builder  // none means check only
	Listener   Listener
	Logger     *slog.Logger
	Metrics    *metrics.Metrics
}

// Result is the outcome of a compilation that ran to completion.
type Result struct {
	Book     *book.Book
	Symbols  []*book.Symbol
	Reports  []book.Report
	Outputs  map[string]map[string][]byte // builder -> chapter -> output
	Duration time.Duration
}

// Failed reports whether the document has error reports. Builders do not
// run for a failed compilation.
func (r *Result) Failed() bool { return book.HasErrors(r.Reports) }

// Output returns the output of builder for chapter.
func (r *Result) Output(builder, chapter string) ([]byte, bool) {
	out, ok := r.Outputs[builder][chapter]
	return out, ok
}

// Counts returns the number of error and warning reports.
func (r *Result) Counts() (errors, warnings int) {
	for _, rep := range r.Reports {
		switch rep.Level {
		case book.LevelError:
			errors++
		case book.LevelWarning:
			warnings++
		}
	}
	return errors, warnings
}

// Compile analyses, validates and builds b. Problems in the document are
// returned as reports in the Result; the error is reserved for engine
// failures, builder failures and cancellation. A book must be compiled
// only once.
func Compile(ctx context.Context, b *book.Book, opts Options) (*Result, error) {
	start := time.Now()
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	a := opts.Analyzer
	if a == nil {
		a = analyzer.New()
	}
	validators := opts.Validators
	if validators == nil {
		validators = []Validator{validator.New()}
	}
	chapters := len(b.Chapters())

	fail := func(err error) (*Result, error) {
		opts.Metrics.ObserveCompile(metrics.OutcomeError, time.Since(start), chapters)
		if l := opts.Listener.OnCompileFailed; l != nil {
			l(b)
		}
		return nil, err
	}

	if l := opts.Listener.OnAcceptables; l != nil {
		l(a.Acceptables())
	}

	log.Debug("analyze", "chapters", chapters)
	if err := a.Run(b); err != nil {
		return fail(err)
	}
	if err := ctx.Err(); err != nil {
		return fail(err)
	}

	declarers := make([]validator.Declarer, 0, len(opts.Builders))
	for _, bl := range opts.Builders {
		declarers = append(declarers, bl)
	}
	var validated []book.Report
	for _, v := range validators {
		validated = append(validated, v.Run(b, declarers)...)
	}
	log.Debug("validate", "reports", len(validated))

	res := &Result{
		Book:    b,
		Symbols: b.Symbols(),
		Outputs: make(map[string]map[string][]byte),
	}
	if l := opts.Listener.OnSymbols; l != nil {
		l(res.Symbols)
	}
	res.Reports = append(b.Reports(), validated...)

	if !res.Failed() {
		for _, bl := range opts.Builders {
			if err := ctx.Err(); err != nil {
				return fail(err)
			}
			blog := log.With("builder", bl.Name())
			blog.Debug("build")
			procs, err := builder.Run(b, bl)
			if err != nil {
				return fail(err)
			}
			outputs := make(map[string][]byte, len(procs))
			for _, p := range procs {
				outputs[p.Chapter.Name] = p.Output()
			}
			res.Outputs[bl.Name()] = outputs
			blog.Debug("built", "chapters", len(procs))
		}
		// Builders may add reports of their own.
		res.Reports = append(b.Reports(), validated...)
	}

	if l := opts.Listener.OnReports; l != nil {
		l(res.Reports)
	}
	opts.Metrics.ObserveReports(res.Reports)

	res.Duration = time.Since(start)
	errs, warnings := res.Counts()
	log.Info("compiled",
		"chapters", chapters,
		"symbols", len(res.Symbols),
		"errors", errs,
		"warnings", warnings,
		"duration", res.Duration,
	)

	if res.Failed() {
		opts.Metrics.ObserveCompile(metrics.OutcomeFailed, res.Duration, chapters)
		if l := opts.Listener.OnCompileFailed; l != nil {
			l(b)
		}
		return res, nil
	}
	opts.Metrics.ObserveCompile(metrics.OutcomeSuccess, res.Duration, chapters)
	if l := opts.Listener.OnCompileSuccess; l != nil {
		l(b)
	}
	return res, nil
}
