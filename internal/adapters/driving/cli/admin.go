package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/markscan/internal/core/domain"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage administrator accounts",
	Long: `Add, list, or remove the administrators who may upload scans and
manage semesters. The last administrator cannot be removed.`,
}

var adminAddCmd = &cobra.Command{
	Use:   "add [username]",
	Short: "Add an administrator",
	Long: `Adds an administrator. The password is prompted for without echo,
or read from standard input with --password-stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdminAdd,
}

var adminListCmd = &cobra.Command{
	Use:   "list",
	Short: "List administrators",
	Args:  cobra.NoArgs,
	RunE:  runAdminList,
}

var adminRemoveCmd = &cobra.Command{
	Use:   "remove [username]",
	Short: "Remove an administrator",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminRemove,
}

var passwordStdin bool

func init() {
	adminAddCmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from standard input")

	adminCmd.AddCommand(adminAddCmd)
	adminCmd.AddCommand(adminListCmd)
	adminCmd.AddCommand(adminRemoveCmd)
	rootCmd.AddCommand(adminCmd)
}

func runAdminAdd(cmd *cobra.Command, args []string) error {
	if adminService == nil {
		return errors.New("admin service not configured")
	}

	var password string
	if passwordStdin {
		p, err := readPasswordFrom(cmd.InOrStdin())
		if err != nil {
			return err
		}
		password = p
	} else {
		cmd.Print("Password: ")
		password = readPassword()
		cmd.Println()
	}

	admin, err := adminService.Create(context.Background(), args[0], password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyExists):
			return fmt.Errorf("administrator %q already exists", args[0])
		case errors.Is(err, domain.ErrInvalidInput):
			return fmt.Errorf("invalid administrator: usernames are %d-%d characters of a-z, 0-9, '.', '_' or '-'; passwords at least %d characters",
				domain.MinUsernameLength, domain.MaxUsernameLength, domain.MinPasswordLength)
		}
		return fmt.Errorf("failed to add administrator: %w", err)
	}

	cmd.Printf("Added administrator %s\n", admin.Username)
	return nil
}

func runAdminList(cmd *cobra.Command, _ []string) error {
	if adminService == nil {
		return errors.New("admin service not configured")
	}

	admins, err := adminService.List(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list administrators: %w", err)
	}

	if len(admins) == 0 {
		cmd.Println("No administrators. Add one with 'markscan admin add <username>'.")
		return nil
	}

	for i := range admins {
		cmd.Printf("  %-32s added %s\n", admins[i].Username, admins[i].CreatedAt.Format("2006-01-02"))
	}
	return nil
}

func runAdminRemove(cmd *cobra.Command, args []string) error {
	if adminService == nil {
		return errors.New("admin service not configured")
	}

	ctx := context.Background()
	admins, err := adminService.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list administrators: %w", err)
	}

	username := domain.NormaliseUsername(args[0])
	var id string
	for i := range admins {
		if admins[i].Username == username || admins[i].ID == args[0] {
			id = admins[i].ID
			break
		}
	}
	if id == "" {
		return fmt.Errorf("administrator not found: %s", args[0])
	}

	if err := adminService.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrLastAdmin) {
			return errors.New("cannot remove the last administrator")
		}
		return fmt.Errorf("failed to remove administrator: %w", err)
	}

	cmd.Printf("Removed administrator %s\n", username)
	return nil
}

// readPasswordFrom reads the first line of r.
func readPasswordFrom(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}
