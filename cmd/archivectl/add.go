package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mediaarchive/internal/usecase"
)

var addCmd = &cobra.Command{
	Use:   "add [flags] <link> [filename]",
	Short: "Ingest links through the metadata pipeline",
	Long: `Resolve, parse, enrich and merge one or more links into the catalog.

A link file holds one "link [filename]" entry per line. Blank lines and
lines starting with # are skipped. The filename is optional when the
file host reports one.

Examples:
  archivectl add https://pixeldrain.com/u/abc123
  archivectl add https://host.example/f/1 "Dark.S01E01.1080p.NF.WEB-DL.mkv"
  archivectl add --file links.txt --refresh`,
	Args: cobra.MaximumNArgs(2),
	RunE: runAddCmd,
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringP("file", "f", "", "Read links from file")
	addCmd.Flags().Bool("refresh", false, "Overwrite descriptive fields of existing titles")
}

func runAddCmd(cmd *cobra.Command, args []string) error {
	inputFile, _ := cmd.Flags().GetString("file")
	refresh, _ := cmd.Flags().GetBool("refresh")

	var inputs []usecase.IngestInput
	if len(args) > 0 {
		in := usecase.IngestInput{Link: args[0]}
		if len(args) > 1 {
			in.Filename = args[1]
		}
		inputs = append(inputs, in)
	}
	if inputFile != "" {
		f, err := os.Open(inputFile)
		if err != nil {
			return err
		}
		defer f.Close()
		fromFile, err := readAddLines(f)
		if err != nil {
			return err
		}
		inputs = append(inputs, fromFile...)
	}
	if len(inputs) == 0 {
		return errors.New("no links given")
	}
	for i := range inputs {
		inputs[i].Refresh = refresh
	}

	rt, err := openRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close(cmd.Context())
	if rt.Ingest == nil {
		return errors.New("ingestion needs TMDB_API_KEY")
	}

	report, err := rt.Ingest.Execute(cmd.Context(), inputs)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, report)
	}
	printBatchReport(out, report)
	if report.Failed > 0 {
		return fmt.Errorf("%d of %d links failed", report.Failed, report.Total)
	}
	return nil
}

// readAddLines parses "link [filename]" lines. The filename keeps its
// inner spaces.
func readAddLines(r io.Reader) ([]usecase.IngestInput, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}
	out := make([]usecase.IngestInput, 0, len(lines))
	for _, line := range lines {
		link, filename, _ := strings.Cut(line, " ")
		out = append(out, usecase.IngestInput{
			Link:     link,
			Filename: strings.TrimSpace(filename),
		})
	}
	return out, nil
}

func printBatchReport(w io.Writer, report usecase.BatchReport) {
	for _, item := range report.Items {
		if item.Error != "" {
			fmt.Fprintf(w, "FAIL  %s: %s\n", item.Link, item.Error)
			continue
		}
		res := item.Result
		action := "merged"
		switch {
		case res.Created:
			action = "created"
		case !res.Inserted:
			action = "replaced"
		}
		fmt.Fprintf(w, "OK    %s -> %s [%s] (%s)\n", res.Filename, res.Title, res.Kind, action)
	}
	fmt.Fprintf(w, "\n%d total, %d ok, %d failed (%d movies, %d series)\n",
		report.Total, report.Succeeded, report.Failed, report.Movies, report.Series)
}
