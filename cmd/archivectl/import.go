package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Import catalog documents from a JSON export",
	Long: `Import a JSON document, or a list of documents, into the catalog.

Every source goes through the merge engine, so importing the same file
twice leaves the catalog unchanged.`,
	Args: cobra.ExactArgs(1),
	RunE: runImportCmd,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	rt, err := openRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close(cmd.Context())

	report, err := rt.Import.Execute(cmd.Context(), f)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, report)
	}
	fmt.Fprintf(out, "movies:  %d\n", report.Movies)
	fmt.Fprintf(out, "series:  %d\n", report.Series)
	fmt.Fprintf(out, "sources: %d\n", report.Sources)
	fmt.Fprintf(out, "skipped: %d\n", report.Skipped)
	fmt.Fprintf(out, "failed:  %d\n", report.Failed)
	for _, e := range report.Errors {
		fmt.Fprintf(out, "  %s\n", e)
	}
	return nil
}
