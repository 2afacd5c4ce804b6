package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mediaarchive/internal/domain"
)

var purgeCmd = &cobra.Command{
	Use:   "purge --yes",
	Short: "Delete every movie and series from the catalog",
	Long: `Delete every movie and series document.

Without --yes only the current counts are shown.`,
	Args: cobra.NoArgs,
	RunE: runPurgeCmd,
}

func init() {
	rootCmd.AddCommand(purgeCmd)
	purgeCmd.Flags().Bool("yes", false, "Confirm the deletion")
}

func runPurgeCmd(cmd *cobra.Command, args []string) error {
	confirmed, _ := cmd.Flags().GetBool("yes")

	rt, err := openRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.Close(cmd.Context())

	out := cmd.OutOrStdout()
	if !confirmed {
		movies, err := rt.Repo.Count(cmd.Context(), domain.MediaMovie)
		if err != nil {
			return err
		}
		series, err := rt.Repo.Count(cmd.Context(), domain.MediaSeries)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "catalog holds %d movies and %d series\n", movies, series)
		fmt.Fprintln(out, "rerun with --yes to delete them")
		return nil
	}

	report, err := rt.Purge.Execute(cmd.Context())
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(out, report)
	}
	fmt.Fprintf(out, "deleted %d movies and %d series\n", report.Movies, report.Series)
	return nil
}
