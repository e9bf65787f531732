package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/custodia-labs/vsync-cli/internal/core/domain"
	"github.com/custodia-labs/vsync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/vsync-cli/internal/core/ports/driving"
	"github.com/custodia-labs/vsync-cli/internal/logger"
)

// Ensure ConfigService implements the interface.
var _ driving.ConfigService = (*ConfigService)(nil)

// Configuration keys.
const (
	KeyDisplayID              = "display.id"
	KeyDisplayRefreshHz       = "display.refresh_hz"
	KeyDisplayJitterUs        = "display.jitter_us"
	KeyTracePredictedVsync    = "features.trace_predicted_vsync"
	KeyKernelIdleTimer        = "features.kernel_idle_timer"
	KeyPresentFences          = "features.present_fences"
	KeyTrackerInitialHz       = "tracker.initial_refresh_hz"
	KeyTrackerHistorySize     = "tracker.history_size"
	KeyTrackerMinSamples      = "tracker.min_samples"
	KeyTrackerDiscardOutliers = "tracker.discard_outlier_percent"
	KeyDispatchGroupWithinUs  = "dispatch.group_within_us"
	KeyDispatchSnapWithinUs   = "dispatch.snap_within_us"
	KeyMaxPendingFences       = "controller.max_pending_fences"
)

type keyKind int

const (
	kindInt keyKind = iota
	kindFloat
	kindBool
)

type configKey struct {
	name  string
	kind  keyKind
	apply func(cfg *domain.ScheduleConfig, store driven.ConfigStore)
}

func featureKey(name string, feature domain.Feature) configKey {
	return configKey{name, kindBool, func(c *domain.ScheduleConfig, s driven.ConfigStore) {
		if s.GetBool(name) {
			c.Features = c.Features.With(feature)
		}
	}}
}

var configKeys = []configKey{
	{KeyDisplayID, kindInt, func(c *domain.ScheduleConfig, s driven.ConfigStore) {
		c.Display = domain.DisplayID(s.GetInt(KeyDisplayID))
	}},
	{KeyDisplayRefreshHz, kindFloat, func(c *domain.ScheduleConfig, s driven.ConfigStore) {
		c.RefreshRate = domain.Fps(s.GetFloat(KeyDisplayRefreshHz))
	}},
	{KeyDisplayJitterUs, kindInt, func(c *domain.ScheduleConfig, s driven.ConfigStore) {
		c.Jitter = time.Duration(s.GetInt(KeyDisplayJitterUs)) * time.Microsecond
	}},
	featureKey(KeyTracePredictedVsync, domain.FeatureTracePredictedVsync),
	featureKey(KeyKernelIdleTimer, domain.FeatureKernelIdleTimer),
	featureKey(KeyPresentFences, domain.FeaturePresentFences),
	{KeyTrackerInitialHz, kindFloat, func(c *domain.ScheduleConfig, s driven.ConfigStore) {
		c.Tuning.Tracker.InitialPeriod = domain.Fps(s.GetFloat(KeyTrackerInitialHz)).Period()
	}},
	{KeyTrackerHistorySize, kindInt, func(c *domain.ScheduleConfig, s driven.ConfigStore) {
		c.Tuning.Tracker.HistorySize = s.GetInt(KeyTrackerHistorySize)
	}},
	{KeyTrackerMinSamples, kindInt, func(c *domain.ScheduleConfig, s driven.ConfigStore) {
		c.Tuning.Tracker.MinSamplesForPrediction = s.GetInt(KeyTrackerMinSamples)
	}},
	{KeyTrackerDiscardOutliers, kindInt, func(c *domain.ScheduleConfig, s driven.ConfigStore) {
		c.Tuning.Tracker.DiscardOutlierPercent = s.GetInt(KeyTrackerDiscardOutliers)
	}},
	{KeyDispatchGroupWithinUs, kindInt, func(c *domain.ScheduleConfig, s driven.ConfigStore) {
		c.Tuning.Dispatch.GroupDispatchWithin = time.Duration(s.GetInt(KeyDispatchGroupWithinUs)) * time.Microsecond
	}},
	{KeyDispatchSnapWithinUs, kindInt, func(c *domain.ScheduleConfig, s driven.ConfigStore) {
		c.Tuning.Dispatch.SnapToSameVsyncWithin = time.Duration(s.GetInt(KeyDispatchSnapWithinUs)) * time.Microsecond
	}},
	{KeyMaxPendingFences, kindInt, func(c *domain.ScheduleConfig, s driven.ConfigStore) {
		c.Tuning.Controller.MaxPendingFences = s.GetInt(KeyMaxPendingFences)
	}},
}

// ConfigService maps the key-value configuration store onto a ScheduleConfig.
type ConfigService struct {
	store   driven.ConfigStore
	watcher driven.ConfigWatcher
}

// NewConfigService creates a config service. store may be nil, in which
// case Load returns defaults and Set fails.
func NewConfigService(store driven.ConfigStore) *ConfigService {
	return &ConfigService{store: store}
}

// WithWatcher attaches a change source for Watch.
func (s *ConfigService) WithWatcher(w driven.ConfigWatcher) *ConfigService {
	s.watcher = w
	return s
}

// Load returns the configuration, with defaults for missing keys.
func (s *ConfigService) Load() (domain.ScheduleConfig, error) {
	cfg := domain.DefaultScheduleConfig()
	if s.store == nil {
		return cfg, nil
	}

	for _, key := range configKeys {
		if _, ok := s.store.Get(key.name); ok {
			key.apply(&cfg, s.store)
		}
	}

	if cfg.RefreshRate <= 0 {
		return cfg, fmt.Errorf("%w: %s must be positive", domain.ErrInvalidConfig, KeyDisplayRefreshHz)
	}
	if cfg.Jitter < 0 {
		return cfg, fmt.Errorf("%w: %s must not be negative", domain.ErrInvalidConfig, KeyDisplayJitterUs)
	}
	if err := cfg.Tuning.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Set parses value according to the key's type and stores it.
func (s *ConfigService) Set(key, value string) error {
	if s.store == nil {
		return errors.New("config store not configured")
	}

	k, ok := lookupKey(key)
	if !ok {
		return fmt.Errorf("%w: unknown key %q", domain.ErrInvalidInput, key)
	}

	var typed any
	var err error
	switch k.kind {
	case kindInt:
		typed, err = strconv.ParseInt(value, 10, 64)
	case kindFloat:
		typed, err = strconv.ParseFloat(value, 64)
	case kindBool:
		typed, err = strconv.ParseBool(value)
	}
	if err != nil {
		return fmt.Errorf("%w: %s=%q", domain.ErrInvalidInput, key, value)
	}

	return s.store.Set(key, typed)
}

// Get returns the stored value of key, or false if it is unset.
func (s *ConfigService) Get(key string) (any, bool) {
	if s.store == nil {
		return nil, false
	}
	return s.store.Get(key)
}

// Watch reloads the store after each change reported by the watcher and
// then signals. Reload failures are logged and not signalled.
func (s *ConfigService) Watch(ctx context.Context) (<-chan struct{}, error) {
	if s.watcher == nil {
		return nil, errors.New("config watcher not configured")
	}
	raw, err := s.watcher.Watch(ctx)
	if err != nil {
		return nil, fmt.Errorf("watching config: %w", err)
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		for range raw {
			if s.store != nil {
				if err := s.store.Load(); err != nil {
					logger.Warn("config reload failed: %v", err)
					continue
				}
			}
			select {
			case out <- struct{}{}:
			default:
			}
		}
	}()
	return out, nil
}

// Keys returns the supported configuration keys in display order.
func (s *ConfigService) Keys() []string {
	keys := make([]string, 0, len(configKeys))
	for _, k := range configKeys {
		keys = append(keys, k.name)
	}
	return keys
}

// Path returns the backing configuration file path.
func (s *ConfigService) Path() string {
	if s.store == nil {
		return ""
	}
	return s.store.Path()
}

func lookupKey(name string) (configKey, bool) {
	for _, k := range configKeys {
		if k.name == name {
			return k, true
		}
	}
	return configKey{}, false
}
