// Package cli implements the markscan command line.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/markscan/internal/core/domain"
	"github.com/custodia-labs/markscan/internal/core/ports/driven"
	"github.com/custodia-labs/markscan/internal/core/ports/driving"
	"github.com/custodia-labs/markscan/internal/extraction"
	"github.com/custodia-labs/markscan/internal/logger"
)

// version is set at build time.
var version = "dev"

// Command annotations that limit bootstrapping.
const (
	// skipServices marks commands that run without any services.
	skipServices = "markscan/skip-services"

	// settingsOnly marks commands that need only the settings service,
	// so they work while storage or OCR is misconfigured.
	settingsOnly = "markscan/settings-only"
)

// Services holds everything the commands need. It is built by the
// Bootstrap function registered from main.
type Services struct {
	Records   driving.RecordService
	Search    driving.SearchService
	Admins    driving.AdminService
	Auth      driving.AuthService
	Semesters driving.SemesterService
	Activity  driving.ActivityService
	Settings  driving.SettingsService

	// Sessions is pruned by the serve command's scheduler.
	Sessions driven.SessionStore

	Extractor *extraction.Extractor
	Config    *domain.AppSettings

	// Close releases storage handles and clients.
	Close func() error
}

// Bootstrap builds the services from the config directory. With full
// unset only Settings and Config need to be filled in.
type Bootstrap func(configDir string, full bool) (*Services, error)

var (
	recordService   driving.RecordService
	searchService   driving.SearchService
	adminService    driving.AdminService
	authService     driving.AuthService
	semesterService driving.SemesterService
	activityService driving.ActivityService
	settingsService driving.SettingsService
	sessionStore    driven.SessionStore
	extractor       *extraction.Extractor
	appSettings     *domain.AppSettings
)

var (
	bootstrap     Bootstrap
	closeServices func() error

	verbose   bool
	configDir string
)

var rootCmd = &cobra.Command{
	Use:   "markscan",
	Short: "University exam result management",
	Long: `markscan turns scanned marksheets into searchable student results.

Scans are read with OCR, the student's name, T.U. registration number,
grade, marks and pass/fail status are extracted, and the record is stored
under the active semester. Students look up their result by name and
registration number; administrators upload scans and manage semesters.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupServices,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.markscan)")
}

// SetBootstrap registers the function that builds services before a
// command runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command and releases services afterwards.
func Execute() error {
	err := rootCmd.Execute()
	if closeServices != nil {
		if cerr := closeServices(); cerr != nil {
			logger.Warn("closing services: %v", cerr)
		}
		closeServices = nil
	}
	return err
}

func setupServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if bootstrap == nil || hasAnnotation(cmd, skipServices) {
		return nil
	}

	svc, err := bootstrap(configDir, !hasAnnotation(cmd, settingsOnly))
	if err != nil {
		return fmt.Errorf("starting markscan: %w", err)
	}
	applyServices(svc)
	return nil
}

// hasAnnotation reports whether cmd or one of its parents carries key.
func hasAnnotation(cmd *cobra.Command, key string) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[key] == "true" {
			return true
		}
	}
	return false
}

func applyServices(svc *Services) {
	recordService = svc.Records
	searchService = svc.Search
	adminService = svc.Admins
	authService = svc.Auth
	semesterService = svc.Semesters
	activityService = svc.Activity
	settingsService = svc.Settings
	sessionStore = svc.Sessions
	extractor = svc.Extractor
	appSettings = svc.Config
	closeServices = svc.Close
}

// settingsOrDefault returns the loaded settings or the defaults.
func settingsOrDefault() domain.AppSettings {
	if appSettings != nil {
		return *appSettings
	}
	return domain.DefaultAppSettings()
}
