package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/markscan/internal/core/domain"
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Manage stored student records",
	Long:  `List, view, or delete stored student records.`,
}

var recordListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored records",
	Args:  cobra.NoArgs,
	RunE:  runRecordList,
}

var recordGetCmd = &cobra.Command{
	Use:   "get [record-id]",
	Short: "Show a record",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecordGet,
}

var recordDeleteCmd = &cobra.Command{
	Use:   "delete [record-id]",
	Short: "Delete a record and its scan",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecordDelete,
}

var (
	recordSemester string
	recordLimit    int
	recordOffset   int
	recordJSON     bool
)

func init() {
	recordListCmd.Flags().StringVar(&recordSemester, "semester", "", "only records in this semester ID")
	recordListCmd.Flags().IntVarP(&recordLimit, "limit", "n", 50, "maximum number of records (0 = all)")
	recordListCmd.Flags().IntVar(&recordOffset, "offset", 0, "skip this many records")
	recordListCmd.Flags().BoolVar(&recordJSON, "json", false, "output records as JSON")
	recordGetCmd.Flags().BoolVar(&recordJSON, "json", false, "output the record as JSON")

	recordCmd.AddCommand(recordListCmd)
	recordCmd.AddCommand(recordGetCmd)
	recordCmd.AddCommand(recordDeleteCmd)
	rootCmd.AddCommand(recordCmd)
}

func runRecordList(cmd *cobra.Command, _ []string) error {
	if recordService == nil {
		return errors.New("record service not configured")
	}
	if recordLimit < 0 || recordOffset < 0 {
		return errors.New("limit and offset must not be negative")
	}

	records, err := recordService.List(context.Background(), domain.RecordFilter{
		SemesterID: recordSemester,
		Limit:      recordLimit,
		Offset:     recordOffset,
	})
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}

	if recordJSON {
		return printJSON(cmd, records)
	}

	if len(records) == 0 {
		cmd.Println("No records found.")
		return nil
	}

	for i := range records {
		r := &records[i]
		cmd.Printf("  %s  %-28s %-20s %s\n", r.ID, r.Name, r.TURegd, r.Result)
	}
	cmd.Println()
	cmd.Printf("Total: %d records\n", len(records))
	return nil
}

func runRecordGet(cmd *cobra.Command, args []string) error {
	if recordService == nil {
		return errors.New("record service not configured")
	}

	record, err := recordService.Get(context.Background(), args[0])
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("record not found: %s", args[0])
		}
		return fmt.Errorf("failed to get record: %w", err)
	}

	if recordJSON {
		return printJSON(cmd, record)
	}

	cmd.Printf("Record %s\n", record.ID)
	printResult(cmd, record.OCRResult)
	cmd.Printf("  Uploaded by:  %s\n", record.UploadedBy)
	cmd.Printf("  Uploaded at:  %s\n", record.CreatedAt.Format("2006-01-02 15:04"))
	if record.SemesterID != "" {
		cmd.Printf("  Semester:     %s\n", record.SemesterID)
	}
	if record.ImagePath != "" {
		cmd.Printf("  Scan:         %s\n", record.ImagePath)
	}
	return nil
}

func runRecordDelete(cmd *cobra.Command, args []string) error {
	if recordService == nil {
		return errors.New("record service not configured")
	}

	if err := recordService.Delete(context.Background(), args[0]); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("record not found: %s", args[0])
		}
		return fmt.Errorf("failed to delete record: %w", err)
	}

	cmd.Printf("Deleted record %s\n", args[0])
	return nil
}
