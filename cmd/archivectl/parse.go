package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mediaarchive/internal/platform"
	"mediaarchive/internal/release"
)

// ParseOutput is the JSON form of one parsed filename.
type ParseOutput struct {
	Filename   string `json:"filename"`
	Title      string `json:"title"`
	Year       int    `json:"year,omitempty"`
	Kind       string `json:"kind"`
	Season     int    `json:"season,omitempty"`
	Episode    int    `json:"episode,omitempty"`
	Resolution string `json:"resolution,omitempty"`
	Codec      string `json:"codec,omitempty"`
	Group      string `json:"group,omitempty"`
	Size       string `json:"size,omitempty"`
	Platform   string `json:"platform,omitempty"`
	TMDBID     int    `json:"tmdb_id,omitempty"`
	IMDbID     string `json:"imdb_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

var parseCmd = &cobra.Command{
	Use:   "parse [flags] <filename>...",
	Short: "Parse release filenames (local, no storage needed)",
	Long: `Parse release filenames the way ingestion does.

Examples:
  archivectl parse "Dark.S01E02.1080p.NF.WEB-DL.x264-GROUP.mkv"
  archivectl parse --file names.txt --json`,
	RunE: runParseCmd,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringP("file", "f", "", "Read filenames from file (one per line)")
}

func runParseCmd(cmd *cobra.Command, args []string) error {
	inputFile, _ := cmd.Flags().GetString("file")

	names := args
	if inputFile != "" {
		f, err := os.Open(inputFile)
		if err != nil {
			return err
		}
		defer f.Close()
		fromFile, err := readLines(f)
		if err != nil {
			return err
		}
		names = append(names, fromFile...)
	}
	if len(names) == 0 {
		return fmt.Errorf("no filenames given")
	}

	classifier := platform.NewClassifier()
	results := make([]ParseOutput, 0, len(names))
	for _, name := range names {
		results = append(results, parseOne(classifier, name))
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, results)
	}
	for _, r := range results {
		printParseResult(out, r)
	}
	return nil
}

func parseOne(classifier platform.Classifier, filename string) ParseOutput {
	info := release.Parse(filename)
	tmdbID, imdbID := release.ExtractIDs(filename)
	r := ParseOutput{
		Filename:   filename,
		Title:      info.Title,
		Year:       info.Year,
		Kind:       string(info.Kind()),
		Season:     info.Season,
		Episode:    info.Episode,
		Resolution: info.ResolutionLabel,
		Codec:      info.Codec,
		Group:      info.Group,
		Platform:   classifier.ClassifyRelease(info, nil).String(),
		TMDBID:     tmdbID,
		IMDbID:     imdbID,
	}
	if info.SizeMB > 0 {
		r.Size = release.FormatSize(int64(info.SizeMB * 1024 * 1024))
	}
	switch {
	case info.MultiPart:
		r.Error = "multi-part file"
	case info.Title == "":
		r.Error = "no title"
	default:
		if err := info.Validate(); err != nil {
			r.Error = err.Error()
		}
	}
	return r
}

func printParseResult(w io.Writer, r ParseOutput) {
	fmt.Fprintf(w, "%s\n", r.Filename)
	fmt.Fprintf(w, "  title:      %s\n", r.Title)
	if r.Year > 0 {
		fmt.Fprintf(w, "  year:       %d\n", r.Year)
	}
	fmt.Fprintf(w, "  kind:       %s\n", r.Kind)
	if r.Season > 0 {
		fmt.Fprintf(w, "  episode:    S%02dE%02d\n", r.Season, r.Episode)
	}
	if r.Resolution != "" {
		fmt.Fprintf(w, "  resolution: %s\n", r.Resolution)
	}
	if r.Size != "" {
		fmt.Fprintf(w, "  size:       %s\n", r.Size)
	}
	if r.Platform != "" {
		fmt.Fprintf(w, "  platform:   %s\n", r.Platform)
	}
	if r.Error != "" {
		fmt.Fprintf(w, "  error:      %s\n", r.Error)
	}
}

// readLines returns the non-blank lines of r, skipping # comments.
func readLines(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}
