package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose   bool
	separator string
	pdftotext bool
)

var rootCmd = &cobra.Command{
	Use:   "bookc",
	Short: "Compile books written as a catalog of chapter files",
	Long: `bookc reads a catalog (PREDEF, CHAPS, APPENDIX, POSTDEF) and its chapter
files, resolves cross references between chapters and renders every chapter
with the requested builders.

Chapters may be Re:VIEW (.re), Markdown, HTML, DOCX, PDF, CSV or plain text.
Inline references use @<name>{body}, e.g. @<list>{ch01|sample}.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log compiler phases to stderr")
	rootCmd.PersistentFlags().StringVar(&separator, "separator", "|", "reference separator between part, chapter and label")
	rootCmd.PersistentFlags().BoolVar(&pdftotext, "pdftotext", true, "fall back to pdftotext for PDFs the built-in reader cannot handle")

	rootCmd.AddCommand(checkCmd, buildCmd, versionCmd)
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
