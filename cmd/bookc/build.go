package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/bookc/internal/book"
	"github.com/dgallion1/bookc/internal/compiler"
	"github.com/dgallion1/bookc/internal/frontend"
	"github.com/dgallion1/bookc/internal/watch"
)

var (
	buildBuilders []string
	buildOut      string
	buildWatch    bool
)

var buildCmd = &cobra.Command{
	Use:   "build <catalog>",
	Short: "Compile a book and write each builder's chapter outputs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		path := args[0]
		out := cmd.OutOrStdout()

		err := build(ctx, out, path)
		if !buildWatch {
			return err
		}
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render(err.Error()))
		}
		return watchAndRebuild(ctx, out, path)
	},
}

func init() {
	buildCmd.Flags().StringSliceVarP(&buildBuilders, "builder", "b", []string{"text", "html"}, "builders to run (text, html, docx)")
	buildCmd.Flags().StringVarP(&buildOut, "out", "o", "out", "output directory")
	buildCmd.Flags().BoolVarP(&buildWatch, "watch", "w", false, "rebuild when the catalog or a chapter changes")
}

func build(ctx context.Context, out io.Writer, path string) error {
	res, err := compileCatalog(ctx, path, buildBuilders, compiler.Listener{
		OnReports: func(reports []book.Report) { printReports(out, reports) },
	}, newLogger())
	if err != nil {
		return err
	}
	if res.Failed() {
		errs, _ := res.Counts()
		return fmt.Errorf("%s has %d error(s), nothing written", path, errs)
	}
	n, err := writeOutputs(buildOut, res)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, okStyle.Render(fmt.Sprintf("wrote %d file(s) to %s in %s", n, buildOut, res.Duration.Round(time.Millisecond))))
	return nil
}

// writeOutputs writes <dir>/<builder>/<chapter><ext> for every output.
func writeOutputs(dir string, res *compiler.Result) (int, error) {
	names := make([]string, 0, len(res.Outputs))
	for name := range res.Outputs {
		names = append(names, name)
	}
	sort.Strings(names)

	written := 0
	for _, bl := range names {
		bdir := filepath.Join(dir, bl)
		if err := os.MkdirAll(bdir, 0o755); err != nil {
			return written, err
		}
		for chapter, data := range res.Outputs[bl] {
			file := filepath.Join(bdir, chapter+compiler.OutputExtension(bl))
			if err := os.WriteFile(file, data, 0o644); err != nil {
				return written, err
			}
			written++
		}
	}
	return written, nil
}

func watchAndRebuild(ctx context.Context, out io.Writer, path string) error {
	catalogFile, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	outDir, _ := filepath.Abs(buildOut)
	dir := filepath.Dir(catalogFile)

	w, err := watch.New(dir, watch.DefaultDelay, func(p string) bool {
		if rel, err := filepath.Rel(outDir, p); err == nil && filepath.IsLocal(rel) {
			return false
		}
		return p == catalogFile || frontend.IsSupportedExtension(p)
	}, newLogger())
	if err != nil {
		return err
	}
	defer w.Close()

	fmt.Fprintln(out, locationStyle.Render("watching "+dir))
	err = w.Run(ctx, func(changed []string) {
		fmt.Fprintln(out, locationStyle.Render(fmt.Sprintf("%d file(s) changed, rebuilding", len(changed))))
		if err := build(ctx, out, path); err != nil {
			fmt.Fprintln(out, errorStyle.Render(err.Error()))
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
