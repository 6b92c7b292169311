package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgallion1/bookc/internal/book"
	"github.com/dgallion1/bookc/internal/compiler"
)

var showSymbols bool

var checkCmd = &cobra.Command{
	Use:   "check <catalog>",
	Short: "Analyse and validate a book without building it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		listener := compiler.Listener{
			OnReports: func(reports []book.Report) { printReports(out, reports) },
		}
		if showSymbols {
			listener.OnSymbols = func(symbols []*book.Symbol) { printSymbols(out, symbols) }
		}
		res, err := compileCatalog(cmd.Context(), args[0], nil, listener, newLogger())
		if err != nil {
			return err
		}
		if res.Failed() {
			errs, _ := res.Counts()
			return fmt.Errorf("%s has %d error(s)", args[0], errs)
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().BoolVar(&showSymbols, "symbols", false, "list the labels each chapter defines")
}
