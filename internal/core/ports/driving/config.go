package driving

import (
	"context"

	"github.com/custodia-labs/vsync-cli/internal/core/domain"
)

// ConfigService reads and updates the schedule configuration.
type ConfigService interface {
	// Load returns the configuration, with defaults for missing keys.
	Load() (domain.ScheduleConfig, error)

	// Get returns the stored value of key, or false if it is unset.
	Get(key string) (any, bool)

	// Set stores a single key after validating it.
	Set(key, value string) error

	// Keys returns the supported configuration keys in display order.
	Keys() []string

	// Path returns the backing configuration file path.
	Path() string

	// Watch signals after the backing store changes and has been reloaded.
	// The channel is closed when ctx is cancelled.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
