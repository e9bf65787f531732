package driven

import "context"

// ConfigStore is a flat key-value view of the configuration file.
// Keys use dot notation matching the TOML tables, e.g. "features.present_fences".
// Typed getters return the zero value for missing or mistyped keys.
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	// Returns the value and a boolean indicating if the key exists.
	Get(key string) (any, bool)

	// GetInt retrieves an integer value.
	GetInt(key string) int

	// GetFloat retrieves a numeric value. Integers are converted.
	GetFloat(key string) float64

	// GetBool retrieves a boolean value.
	GetBool(key string) bool

	// Set stores a configuration value.
	// The value is persisted immediately.
	Set(key string, value any) error

	// Save persists the current configuration to storage.
	Save() error

	// Load reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}

// ConfigWatcher signals when the backing configuration changes.
type ConfigWatcher interface {
	// Watch sends on the returned channel after each change, until ctx is done.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
