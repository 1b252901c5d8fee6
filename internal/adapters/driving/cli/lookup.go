package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/markscan/internal/core/domain"
)

var (
	lookupName string
	lookupRegd string
	lookupJSON bool
)

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Look up a student's result",
	Long: `Finds the stored result for a student by name and T.U. registration
number. Both must match; comparison ignores case and surrounding spaces.`,
	Args: cobra.NoArgs,
	RunE: runLookup,
}

func init() {
	lookupCmd.Flags().StringVar(&lookupName, "name", "", "student name as printed on the marksheet")
	lookupCmd.Flags().StringVar(&lookupRegd, "regd", "", "T.U. registration number")
	lookupCmd.Flags().BoolVar(&lookupJSON, "json", false, "output the record as JSON")
	_ = lookupCmd.MarkFlagRequired("name")
	_ = lookupCmd.MarkFlagRequired("regd")
	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, _ []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	record, err := searchService.Lookup(context.Background(), lookupName, lookupRegd)
	if errors.Is(err, domain.ErrNotFound) {
		cmd.Println("No result found for that name and registration number.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}

	if lookupJSON {
		return printJSON(cmd, record)
	}
	printResult(cmd, record.OCRResult)
	return nil
}

// printJSON writes v as indented JSON.
func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// printResult writes the fields of a result, skipping absent ones.
func printResult(cmd *cobra.Command, r domain.OCRResult) {
	cmd.Printf("  Name:         %s\n", r.Name)
	cmd.Printf("  Registration: %s\n", r.TURegd)
	cmd.Printf("  Result:       %s\n", r.Result)
	if r.Grade != nil {
		cmd.Printf("  Grade:        %s\n", *r.Grade)
	}
	if r.Marks != nil {
		if r.TotalMarks != nil {
			cmd.Printf("  Marks:        %d/%d\n", *r.Marks, *r.TotalMarks)
		} else {
			cmd.Printf("  Marks:        %d\n", *r.Marks)
		}
	}
	if r.Subject != nil {
		cmd.Printf("  Subject:      %s\n", *r.Subject)
	}
	if r.Program != nil {
		cmd.Printf("  Program:      %s\n", *r.Program)
	}
	if r.Faculty != nil {
		cmd.Printf("  Faculty:      %s\n", *r.Faculty)
	}
	if r.NeedsReview {
		cmd.Println("  (no pass/fail marker found; status needs review)")
	}
}
