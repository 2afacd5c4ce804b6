package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"mediaarchive/internal/app"
)

var pixeldrainCmd = &cobra.Command{
	Use:   "pixeldrain",
	Short: "Manage files on the pixeldrain account",
}

var pixeldrainListCmd = &cobra.Command{
	Use:   "list",
	Short: "List files on the account",
	Args:  cobra.NoArgs,
	RunE:  runPixeldrainList,
}

var pixeldrainPurgeCmd = &cobra.Command{
	Use:   "purge --yes",
	Short: "Delete every file on the account",
	Args:  cobra.NoArgs,
	RunE:  runPixeldrainPurge,
}

func init() {
	rootCmd.AddCommand(pixeldrainCmd)
	pixeldrainCmd.AddCommand(pixeldrainListCmd)
	pixeldrainCmd.AddCommand(pixeldrainPurgeCmd)
	pixeldrainPurgeCmd.Flags().Bool("yes", false, "Confirm the deletion")
}

func runPixeldrainList(cmd *cobra.Command, args []string) error {
	cfg, _ := loadConfig(cmd)
	pd := app.NewPixeldrain(cfg)
	if !pd.Enabled() {
		return errors.New("PIXELDRAIN_API_KEY not set")
	}
	files, err := pd.ListFiles(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return printJSON(out, files)
	}
	fmt.Fprintf(out, "  %-10s %-50s %-10s %s\n", "ID", "NAME", "SIZE", "UPLOADED")
	var total uint64
	for _, f := range files {
		total += uint64(f.Size)
		uploaded := "-"
		if !f.DateUpload.IsZero() {
			uploaded = f.DateUpload.Format("2006-01-02")
		}
		fmt.Fprintf(out, "  %-10s %-50s %-10s %s\n", f.ID, truncate(f.Name, 50), humanize.Bytes(uint64(f.Size)), uploaded)
	}
	fmt.Fprintf(out, "\n%d files, %s\n", len(files), humanize.Bytes(total))
	return nil
}

func runPixeldrainPurge(cmd *cobra.Command, args []string) error {
	confirmed, _ := cmd.Flags().GetBool("yes")
	cfg, logger := loadConfig(cmd)
	pd := app.NewPixeldrain(cfg)
	if !pd.Enabled() {
		return errors.New("PIXELDRAIN_API_KEY not set")
	}
	files, err := pd.ListFiles(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !confirmed {
		fmt.Fprintf(out, "account holds %d files\n", len(files))
		fmt.Fprintln(out, "rerun with --yes to delete them")
		return nil
	}

	var deleted, failed int
	for _, f := range files {
		if err := pd.Delete(cmd.Context(), f.ID); err != nil {
			failed++
			logger.Warn("pixeldrain delete failed", slog.String("id", f.ID), slog.String("error", err.Error()))
			continue
		}
		deleted++
	}
	if jsonOutput {
		return printJSON(out, map[string]int{"deleted": deleted, "failed": failed})
	}
	fmt.Fprintf(out, "deleted %d files, %d failed\n", deleted, failed)
	if failed > 0 {
		return fmt.Errorf("%d deletions failed", failed)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
