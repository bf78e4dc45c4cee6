package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/huh"
	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/siftertools/sift2bb/internal/archive"
	"github.com/siftertools/sift2bb/internal/convert"
	"github.com/siftertools/sift2bb/internal/fetch"
	"github.com/siftertools/sift2bb/internal/mapping"
	"github.com/siftertools/sift2bb/internal/output"
	"github.com/siftertools/sift2bb/internal/render"
	"github.com/siftertools/sift2bb/internal/sifter"
)

// bundleFileName is the serialized bundle document the target importer
// expects at the root of the output directory.
const bundleFileName = "db-1.0.json"

type migrateResult struct {
	Issues             int      `json:"issues"`
	Comments           int      `json:"comments"`
	Attachments        int      `json:"attachments"`
	SkippedAttachments []string `json:"skipped_attachments"`
	Components         int      `json:"components"`
	Milestones         int      `json:"milestones"`
	BytesFetched       int64    `json:"bytes_fetched"`
	Output             string   `json:"output"`
	Archive            string   `json:"archive,omitempty"`
}

var migrateCmd = &cobra.Command{
	Use:   "migrate <export.xml>",
	Short: "Convert a Sifter export into an importable bundle",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		w := getWriter(cmd)
		cfg := getCfg(cmd)

		outDir, _ := cmd.Flags().GetString("out")
		zipPath, _ := cmd.Flags().GetString("zip")
		concurrency, _ := cmd.Flags().GetInt("concurrency")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		retries, _ := cmd.Flags().GetUint64("retries")
		skipFailed, _ := cmd.Flags().GetBool("skip-failed")
		force, _ := cmd.Flags().GetBool("force")

		f, err := os.Open(args[0])
		if err != nil {
			return cmdErr(fmt.Errorf("opening export: %w", err), output.ErrNotFound)
		}
		doc, err := sifter.Parse(f)
		f.Close()
		if err != nil {
			return cmdErr(err, output.ErrValidation)
		}

		// Replacing an existing bundle is destructive; get consent before
		// downloading anything.
		if err := confirmReplace(cmd, w, outDir, force); err != nil {
			return err
		}

		conv := convert.New(cfg.Tables(), mapping.BuildLookups(doc))
		bundle, downloads, err := conv.Bundle(doc)
		if err != nil {
			return cmdErr(err, output.ErrValidation)
		}

		// Everything is staged in a scratch directory next to the final
		// location and renamed into place only on success, so a failed run
		// leaves nothing at the expected path.
		parent := filepath.Dir(filepath.Clean(outDir))
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return cmdErr(fmt.Errorf("creating output parent: %w", err), output.ErrGeneral)
		}
		staging, err := os.MkdirTemp(parent, ".sift2bb-staging-*")
		if err != nil {
			return cmdErr(fmt.Errorf("creating staging directory: %w", err), output.ErrGeneral)
		}
		defer os.RemoveAll(staging)

		attachmentsDir := filepath.Join(staging, "attachments")
		if err := os.MkdirAll(attachmentsDir, 0o755); err != nil {
			return cmdErr(fmt.Errorf("creating attachments directory: %w", err), output.ErrGeneral)
		}

		fetcher := fetch.New(attachmentsDir, fetch.Options{
			Concurrency: concurrency,
			Timeout:     timeout,
			MaxRetries:  retries,
			Progress:    w.Info,
		})
		results, err := fetcher.FetchAll(cmd.Context(), downloads, !skipFailed)
		if err != nil {
			return cmdErr(err, output.ErrDownload)
		}

		// Merge results in document order. Only the owner of the bundle
		// appends; workers never touch it.
		var bytesFetched int64
		skipped := []string{}
		for _, r := range results {
			if r.Err != nil {
				w.Warn("Skipping attachment %s: %v", r.Download.Record.Filename, r.Err)
				skipped = append(skipped, r.Download.Record.Filename)
				continue
			}
			bundle.Attachments = append(bundle.Attachments, r.Download.Record)
			bytesFetched += r.Size
		}

		data, err := json.MarshalIndent(bundle, "", "  ")
		if err != nil {
			return cmdErr(fmt.Errorf("serializing bundle: %w", err), output.ErrGeneral)
		}
		if err := os.WriteFile(filepath.Join(staging, bundleFileName), append(data, '\n'), 0o644); err != nil {
			return cmdErr(fmt.Errorf("writing bundle: %w", err), output.ErrGeneral)
		}

		if err := os.RemoveAll(outDir); err != nil {
			return cmdErr(fmt.Errorf("clearing output directory: %w", err), output.ErrGeneral)
		}
		if err := os.Rename(staging, outDir); err != nil {
			return cmdErr(fmt.Errorf("moving bundle into place: %w", err), output.ErrGeneral)
		}

		if zipPath != "" {
			if err := archive.ZipDir(outDir, zipPath); err != nil {
				return cmdErr(err, output.ErrGeneral)
			}
		}

		result := migrateResult{
			Issues:             len(bundle.Issues),
			Comments:           len(bundle.Comments),
			Attachments:        len(bundle.Attachments),
			SkippedAttachments: skipped,
			Components:         len(bundle.Components),
			Milestones:         len(bundle.Milestones),
			BytesFetched:       bytesFetched,
			Output:             outDir,
			Archive:            zipPath,
		}

		var message string
		if !w.JSONMode {
			message = formatMigrateSummary(result)
		}
		w.Success(result, message)
		return nil
	},
}

// confirmReplace guards against silently clobbering an existing bundle
// directory. In JSON mode there is no one to ask, so an existing directory
// is a conflict unless --force is given.
func confirmReplace(cmd *cobra.Command, w *output.Writer, outDir string, force bool) error {
	if _, err := os.Stat(outDir); os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return cmdErr(fmt.Errorf("checking output directory: %w", err), output.ErrGeneral)
	}
	if force {
		return nil
	}
	if w.JSONMode {
		return cmdErr(
			fmt.Errorf("output directory %s already exists: use --force to replace it", outDir),
			output.ErrConflict,
		)
	}

	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Output directory %s already exists and will be replaced. Continue?", outDir)).
				Affirmative("Yes, replace it").
				Negative("Cancel").
				Value(&confirmed),
		),
	)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return cmdErr(fmt.Errorf("cancelled"), output.ErrConflict)
		}
		return cmdErr(fmt.Errorf("interactive form failed: %w", err), output.ErrGeneral)
	}
	if !confirmed {
		return cmdErr(fmt.Errorf("cancelled"), output.ErrConflict)
	}
	return nil
}

func formatMigrateSummary(r migrateResult) string {
	rows := []render.SummaryRow{
		{Label: "Issues", Value: render.Count(r.Issues)},
		{Label: "Comments", Value: render.Count(r.Comments)},
		{Label: "Attachments", Value: render.Count(r.Attachments)},
		{Label: "Components", Value: render.Count(r.Components)},
		{Label: "Milestones", Value: render.Count(r.Milestones)},
		{Label: "Downloaded", Value: humanize.Bytes(uint64(r.BytesFetched))},
		{Label: "Output", Value: r.Output},
	}
	if len(r.SkippedAttachments) > 0 {
		rows = append(rows, render.SummaryRow{Label: "Skipped", Value: render.Count(len(r.SkippedAttachments))})
	}
	if r.Archive != "" {
		rows = append(rows, render.SummaryRow{Label: "Archive", Value: r.Archive})
	}
	return render.SummaryTable("Migration complete", rows)
}

func init() {
	migrateCmd.Flags().StringP("out", "o", "bundle", "Output directory for the bundle")
	migrateCmd.Flags().String("zip", "", "Also package the bundle into a zip archive at this path")
	migrateCmd.Flags().Int("concurrency", 4, "Parallel attachment downloads")
	migrateCmd.Flags().Duration("timeout", 60*time.Second, "Per-download attempt timeout")
	migrateCmd.Flags().Uint64("retries", 3, "Download retries after the first attempt")
	migrateCmd.Flags().Bool("skip-failed", false, "Record failed attachment downloads and continue instead of aborting")
	migrateCmd.Flags().Bool("force", false, "Replace an existing output directory without confirmation")
	rootCmd.AddCommand(migrateCmd)
}
