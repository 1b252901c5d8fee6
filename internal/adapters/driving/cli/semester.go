package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/markscan/internal/core/domain"
)

// dateLayout is the format of --start and --end.
const dateLayout = "2006-01-02"

var semesterCmd = &cobra.Command{
	Use:   "semester",
	Short: "Manage academic semesters",
	Long: `Add, list, update, remove, or activate semesters. Uploads are filed
under the active semester; at most one is active at a time.`,
}

var semesterAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a semester",
	Args:  cobra.ExactArgs(1),
	RunE:  runSemesterAdd,
}

var semesterListCmd = &cobra.Command{
	Use:   "list",
	Short: "List semesters",
	Args:  cobra.NoArgs,
	RunE:  runSemesterList,
}

var semesterUpdateCmd = &cobra.Command{
	Use:   "update [semester-id]",
	Short: "Update a semester",
	Args:  cobra.ExactArgs(1),
	RunE:  runSemesterUpdate,
}

var semesterRemoveCmd = &cobra.Command{
	Use:   "remove [semester-id]",
	Short: "Remove a semester",
	Long: `Removes a semester. Its records are kept unless --cascade is given,
in which case they are deleted too.`,
	Args: cobra.ExactArgs(1),
	RunE: runSemesterRemove,
}

var semesterActivateCmd = &cobra.Command{
	Use:   "activate [semester-id]",
	Short: "Make a semester the active one",
	Args:  cobra.ExactArgs(1),
	RunE:  runSemesterActivate,
}

var (
	semesterName    string
	semesterYear    int
	newYear         int
	semesterStart   string
	semesterEnd     string
	semesterActive  bool
	semesterCascade bool
)

func init() {
	semesterAddCmd.Flags().IntVar(&semesterYear, "year", time.Now().Year(), "academic year")
	semesterAddCmd.Flags().StringVar(&semesterStart, "start", "", "start date (YYYY-MM-DD)")
	semesterAddCmd.Flags().StringVar(&semesterEnd, "end", "", "end date (YYYY-MM-DD)")
	semesterAddCmd.Flags().BoolVar(&semesterActive, "activate", false, "make the new semester active")

	semesterUpdateCmd.Flags().StringVar(&semesterName, "name", "", "new name")
	semesterUpdateCmd.Flags().IntVar(&newYear, "year", 0, "new academic year")
	semesterUpdateCmd.Flags().StringVar(&semesterStart, "start", "", "new start date (YYYY-MM-DD, empty to clear)")
	semesterUpdateCmd.Flags().StringVar(&semesterEnd, "end", "", "new end date (YYYY-MM-DD, empty to clear)")

	semesterRemoveCmd.Flags().BoolVar(&semesterCascade, "cascade", false, "also delete the semester's records")

	semesterCmd.AddCommand(semesterAddCmd)
	semesterCmd.AddCommand(semesterListCmd)
	semesterCmd.AddCommand(semesterUpdateCmd)
	semesterCmd.AddCommand(semesterRemoveCmd)
	semesterCmd.AddCommand(semesterActivateCmd)
	rootCmd.AddCommand(semesterCmd)
}

func runSemesterAdd(cmd *cobra.Command, args []string) error {
	if semesterService == nil {
		return errors.New("semester service not configured")
	}

	start, err := parseDate(semesterStart)
	if err != nil {
		return err
	}
	end, err := parseDate(semesterEnd)
	if err != nil {
		return err
	}

	created, err := semesterService.Create(context.Background(), domain.Semester{
		Name:      args[0],
		Year:      semesterYear,
		StartDate: start,
		EndDate:   end,
		Active:    semesterActive,
	})
	if err != nil {
		return semesterError(err, args[0])
	}

	cmd.Printf("Added semester %s (%s)\n", created.Name, created.ID)
	return nil
}

func runSemesterList(cmd *cobra.Command, _ []string) error {
	if semesterService == nil {
		return errors.New("semester service not configured")
	}

	semesters, err := semesterService.List(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list semesters: %w", err)
	}

	if len(semesters) == 0 {
		cmd.Println("No semesters. Add one with 'markscan semester add <name>'.")
		return nil
	}

	for i := range semesters {
		s := &semesters[i]
		marker := " "
		if s.Active {
			marker = "*"
		}
		cmd.Printf("%s %s  %-24s %d%s\n", marker, s.ID, s.Name, s.Year, dateRange(s))
	}
	return nil
}

func runSemesterUpdate(cmd *cobra.Command, args []string) error {
	if semesterService == nil {
		return errors.New("semester service not configured")
	}

	ctx := context.Background()
	semester, err := semesterService.Get(ctx, args[0])
	if err != nil {
		return semesterError(err, args[0])
	}

	flags := cmd.Flags()
	if flags.Changed("name") {
		semester.Name = semesterName
	}
	if flags.Changed("year") {
		semester.Year = newYear
	}
	if flags.Changed("start") {
		if semester.StartDate, err = parseDate(semesterStart); err != nil {
			return err
		}
	}
	if flags.Changed("end") {
		if semester.EndDate, err = parseDate(semesterEnd); err != nil {
			return err
		}
	}

	updated, err := semesterService.Update(ctx, *semester)
	if err != nil {
		return semesterError(err, args[0])
	}

	cmd.Printf("Updated semester %s (%s)\n", updated.Name, updated.ID)
	return nil
}

func runSemesterRemove(cmd *cobra.Command, args []string) error {
	if semesterService == nil {
		return errors.New("semester service not configured")
	}

	if err := semesterService.Delete(context.Background(), args[0], semesterCascade); err != nil {
		return semesterError(err, args[0])
	}

	if semesterCascade {
		cmd.Printf("Removed semester %s and its records\n", args[0])
	} else {
		cmd.Printf("Removed semester %s\n", args[0])
	}
	return nil
}

func runSemesterActivate(cmd *cobra.Command, args []string) error {
	if semesterService == nil {
		return errors.New("semester service not configured")
	}

	semester, err := semesterService.Activate(context.Background(), args[0])
	if err != nil {
		return semesterError(err, args[0])
	}

	cmd.Printf("Active semester is now %s\n", semester.Name)
	return nil
}

func semesterError(err error, ref string) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return fmt.Errorf("semester not found: %s", ref)
	case errors.Is(err, domain.ErrAlreadyExists):
		return fmt.Errorf("a semester named %q already exists", ref)
	case errors.Is(err, domain.ErrInvalidInput):
		return errors.New("invalid semester: name is required and the end date must not precede the start date")
	}
	return err
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return &t, nil
}

func dateRange(s *domain.Semester) string {
	if s.StartDate == nil && s.EndDate == nil {
		return ""
	}
	var start, end string
	if s.StartDate != nil {
		start = s.StartDate.Format(dateLayout)
	}
	if s.EndDate != nil {
		end = s.EndDate.Format(dateLayout)
	}
	return fmt.Sprintf("  %s .. %s", start, end)
}
