package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/markscan/internal/core/domain"
)

var extractJSON bool

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Extract a result without storing it",
	Long: `Runs OCR and field extraction on one scan and prints the result.
Nothing is stored. Useful for checking scan quality before uploading.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().BoolVar(&extractJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	if recordService == nil {
		return errors.New("record service not configured")
	}

	path := args[0]
	name := filepath.Base(path)
	if !domain.IsSupportedImage(name) {
		return fmt.Errorf("%s: unsupported file type", name)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	result, err := recordService.Extract(context.Background(), domain.Image{
		Filename:    name,
		Data:        data,
		ContentType: domain.ContentTypeFor(name),
	})
	// A rejected scan still carries what was found, unless recognition
	// itself failed.
	if err != nil && (!errors.Is(err, domain.ErrExtractionFailed) || result.Name == "") {
		return err
	}

	if extractJSON {
		if perr := printJSON(cmd, result); perr != nil {
			return perr
		}
	} else {
		cmd.Printf("%s:\n", name)
		printResult(cmd, result)
	}
	return err
}
