package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dgallion1/bookc/internal/analyzer"
	"github.com/dgallion1/bookc/internal/catalog"
	"github.com/dgallion1/bookc/internal/compiler"
	"github.com/dgallion1/bookc/internal/frontend"
)

// compileCatalog loads the book described by the catalog at path, with
// chapter files resolved against the catalog's directory, and compiles it.
func compileCatalog(ctx context.Context, path string, builders []string, listener compiler.Listener, log *slog.Logger) (*compiler.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cat, err := catalog.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	fsys := os.DirFS(filepath.Dir(path))
	if cat, err = cat.Expand(fsys); err != nil {
		return nil, err
	}
	b, err := compiler.LoadBook(cat, compiler.FSOpener(fsys), frontend.Options{PDFFallback: pdftotext})
	if err != nil {
		return nil, err
	}
	bls, err := compiler.NewBuilders(builders)
	if err != nil {
		return nil, err
	}
	return compiler.Compile(ctx, b, compiler.Options{
		Analyzer: analyzer.New(analyzer.WithSeparator(separator)),
		Builders: bls,
		Listener: listener,
		Logger:   log,
	})
}
