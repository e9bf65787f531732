package domain

import "strings"

// Feature is a single capability flag of a schedule.
type Feature uint8

const (
	// FeatureTracePredictedVsync emits a trace counter toggled at each predicted vsync.
	FeatureTracePredictedVsync Feature = 1 << iota
	// FeatureKernelIdleTimer indicates the display driver runs a kernel idle timer.
	FeatureKernelIdleTimer
	// FeaturePresentFences feeds presentation fences into the vsync model.
	FeaturePresentFences
)

var featureNames = []struct {
	feature Feature
	name    string
}{
	{FeatureTracePredictedVsync, "TracePredictedVsync"},
	{FeatureKernelIdleTimer, "KernelIdleTimer"},
	{FeaturePresentFences, "PresentFences"},
}

// FeatureFlags is an immutable set of features.
type FeatureFlags uint8

// NewFeatureFlags returns a set containing the given features.
func NewFeatureFlags(features ...Feature) FeatureFlags {
	var f FeatureFlags
	for _, feature := range features {
		f |= FeatureFlags(feature)
	}
	return f
}

// Has reports whether feature is in the set.
func (f FeatureFlags) Has(feature Feature) bool {
	return f&FeatureFlags(feature) != 0
}

// With returns a copy of f that also contains the given features.
func (f FeatureFlags) With(features ...Feature) FeatureFlags {
	return f | NewFeatureFlags(features...)
}

// String lists the feature names joined by '|', or "none".
func (f FeatureFlags) String() string {
	var names []string
	for _, fn := range featureNames {
		if f.Has(fn.feature) {
			names = append(names, fn.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}
