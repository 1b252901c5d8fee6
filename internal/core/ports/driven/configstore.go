package driven

// ConfigStore holds flat dot-separated settings keys such as "ocr.engine"
// or "storage.data_dir". The settings service maps them onto
// domain.AppSettings; stores only convert types.
type ConfigStore interface {
	// Get returns the raw value and whether the key is set.
	Get(key string) (any, bool)

	// GetString returns "" when the key is unset or not a string.
	GetString(key string) string

	// GetInt returns 0 when the key is unset or not a number.
	GetInt(key string) int

	// GetBool returns false when the key is unset or not a bool.
	GetBool(key string) bool

	// GetStringSlice returns nil when the key is unset or not a list.
	GetStringSlice(key string) []string

	// Set stores a value. File-backed stores write through immediately.
	Set(key string, value any) error

	Save() error
	Load() error

	// Path identifies the backing file, e.g. ~/.markscan/config.toml.
	Path() string
}
