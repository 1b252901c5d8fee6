package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/markscan/internal/core/domain"
)

// cliUploader is recorded as the uploader when --as is not given.
const cliUploader = "cli"

var (
	uploadAs   string
	uploadJSON bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload [file or glob]...",
	Short: "Upload scanned marksheets",
	Long: `Reads one or more scanned marksheets, extracts each student's result
and stores it under the active semester.

Arguments may be files or doublestar globs such as 'scans/**/*.png'.
Files that fail do not stop the others; each outcome is reported.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVar(&uploadAs, "as", cliUploader, "username recorded as the uploader")
	uploadCmd.Flags().BoolVar(&uploadJSON, "json", false, "output the batch report as JSON")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	if recordService == nil {
		return errors.New("record service not configured")
	}

	paths, err := expandPaths(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return errors.New("no files matched")
	}

	var uploads []domain.Upload
	var skipped []domain.FileOutcome
	for _, path := range paths {
		name := filepath.Base(path)
		if !domain.IsSupportedImage(name) {
			skipped = append(skipped, domain.FileOutcome{Filename: name, Error: "unsupported file type"})
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			skipped = append(skipped, domain.FileOutcome{Filename: name, Error: err.Error()})
			continue
		}
		uploads = append(uploads, domain.Upload{
			Image: domain.Image{
				Filename:    name,
				Data:        data,
				ContentType: domain.ContentTypeFor(name),
			},
			UploadedBy: uploadAs,
		})
	}

	var report domain.BatchReport
	if len(uploads) > 0 {
		report = recordService.ProcessBatch(context.Background(), uploads)
	}
	report.Outcomes = append(report.Outcomes, skipped...)
	report.Failed += len(skipped)

	if uploadJSON {
		if err := printJSON(cmd, report); err != nil {
			return err
		}
	} else {
		printReport(cmd, report)
	}

	if report.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", report.Failed, len(report.Outcomes))
	}
	return nil
}

// expandPaths resolves globs and plain paths into a sorted, de-duplicated list.
func expandPaths(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var paths []string

	for _, arg := range args {
		if !doublestar.ValidatePathPattern(arg) {
			return nil, fmt.Errorf("invalid pattern %q", arg)
		}
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", arg, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(arg); err != nil {
				return nil, fmt.Errorf("no files match %q", arg)
			}
			matches = []string{arg}
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				paths = append(paths, m)
			}
		}
	}

	sort.Strings(paths)
	return paths, nil
}

func printReport(cmd *cobra.Command, report domain.BatchReport) {
	for _, o := range report.Outcomes {
		if o.Succeeded() {
			cmd.Printf("  ok    %s -> %s (%s, %s)\n", o.Filename, o.Record.Name, o.Record.TURegd, o.Record.Result)
		} else {
			cmd.Printf("  fail  %s: %s\n", o.Filename, o.Error)
		}
	}
	cmd.Println()
	cmd.Printf("Uploaded %d, failed %d\n", report.Succeeded, report.Failed)
}
