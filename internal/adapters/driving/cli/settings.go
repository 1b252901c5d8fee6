package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/markscan/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View the effective configuration read from config.toml in the
configuration directory, or write every setting to the file for editing.`,
	Annotations: map[string]string{settingsOnly: "true"},
	RunE:        runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write all settings to the config file",
	Long: `Writes every setting to config.toml, keeping values already set and
filling the rest with defaults, so the file can be edited by hand.`,
	RunE: runSettingsInit,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsInitCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Address: %s\n", settings.Server.Addr)
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Backend: %s\n", settings.Storage.Backend)
	switch settings.Storage.Backend {
	case domain.StorageSQLite:
		cmd.Printf("  Data dir: %s\n", orDefault(settings.Storage.DataDir, "~/.markscan/data"))
	case domain.StorageFirestore:
		cmd.Printf("  Project: %s\n", orDefault(settings.Storage.FirestoreProject, "(not set)"))
		cmd.Printf("  Collection: %s\n", settings.Storage.FirestoreCollection)
	}
	cmd.Println()

	cmd.Println("[Images]")
	cmd.Printf("  Backend: %s\n", settings.Images.Backend)
	if settings.Images.Backend == domain.ImagesGCS {
		cmd.Printf("  Bucket: %s\n", orDefault(settings.Images.Bucket, "(not set)"))
	} else {
		cmd.Printf("  Dir: %s\n", orDefault(settings.Images.Dir, "~/.markscan/images"))
	}
	cmd.Println()

	cmd.Println("[OCR]")
	cmd.Printf("  Engine: %s\n", settings.OCR.Engine.Description())
	cmd.Printf("  Timeout: %s\n", settings.OCR.Timeout)
	if settings.OCR.Engine == domain.OCRVertex {
		cmd.Printf("  Project: %s\n", orDefault(settings.OCR.VertexProject, "(not set)"))
		cmd.Printf("  Region: %s\n", settings.OCR.VertexRegion)
		cmd.Printf("  Model: %s\n", settings.OCR.VertexModel)
	} else {
		cmd.Printf("  Languages: %s\n", strings.Join(settings.OCR.Languages, "+"))
		cmd.Printf("  DPI: %d\n", settings.OCR.DPI)
	}
	cmd.Println()

	cmd.Println("[Uploads]")
	cmd.Printf("  Workers: %d\n", settings.Upload.Workers)
	cmd.Printf("  Pattern pack: %s\n", orDefault(settings.PatternPack, "(built-in rules only)"))
	cmd.Printf("  Watch dir: %s\n", orDefault(settings.WatchDir, "(not set)"))
	cmd.Println()

	cmd.Println("[Auth]")
	cmd.Printf("  Session TTL: %s\n", settings.Auth.SessionTTL)
	cmd.Printf("  Logins per minute: %d\n", settings.Auth.LoginRatePerMinute)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsInit(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Println("Settings written.")
	return nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
