package domain

import (
	"math"
	"time"
)

// TimePoint is an absolute instant on the monotonic clock, in nanoseconds.
type TimePoint int64

// TimePointFromNs builds a TimePoint from a nanosecond count.
func TimePointFromNs(ns int64) TimePoint {
	return TimePoint(ns)
}

// Ns returns the nanosecond value.
func (t TimePoint) Ns() int64 {
	return int64(t)
}

// Add returns t shifted by d.
func (t TimePoint) Add(d time.Duration) TimePoint {
	return t + TimePoint(d)
}

// Sub returns the duration t-u.
func (t TimePoint) Sub(u TimePoint) time.Duration {
	return time.Duration(t - u)
}

// Period is the duration of one refresh interval.
type Period time.Duration

// PeriodFromNs builds a Period from a nanosecond count.
func PeriodFromNs(ns int64) Period {
	return Period(ns)
}

// Ns returns the nanosecond value.
func (p Period) Ns() int64 {
	return int64(p)
}

// Duration returns p as a time.Duration.
func (p Period) Duration() time.Duration {
	return time.Duration(p)
}

// Fps returns the refresh rate matching p, or 0 for a non-positive period.
func (p Period) Fps() Fps {
	if p <= 0 {
		return 0
	}
	return Fps(float64(time.Second) / float64(p))
}

// String formats the period as a duration.
func (p Period) String() string {
	return time.Duration(p).String()
}

// Fps is a refresh rate in hertz.
type Fps float64

// Period returns the refresh interval for f, rounded to the nearest nanosecond.
func (f Fps) Period() Period {
	if f <= 0 {
		return 0
	}
	return Period(math.Round(float64(time.Second) / float64(f)))
}
