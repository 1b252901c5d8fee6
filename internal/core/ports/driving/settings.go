package driving

import "github.com/custodia-labs/markscan/internal/core/domain"

// SettingsService reads and writes the typed view of config.toml.
type SettingsService interface {
	// Get returns the effective settings; unset or invalid keys take
	// their defaults.
	Get() (*domain.AppSettings, error)

	// Save writes every setting back to the config store.
	Save(settings *domain.AppSettings) error

	// Validate reports a backend or engine that is selected but missing
	// its project or bucket.
	Validate() error

	GetDefaults() domain.AppSettings
}
