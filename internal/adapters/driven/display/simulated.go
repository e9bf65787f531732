// Package display provides a simulated hardware composer for a single
// display: a vsync pulse source that the schedule switches on and off.
package display

import (
	"context"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/vsync-cli/internal/core/domain"
	"github.com/custodia-labs/vsync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/vsync-cli/internal/logger"
)

// Verify interface compliance.
var _ driven.Display = (*Simulated)(nil)

// Config describes the simulated panel.
type Config struct {
	// RefreshRate is the panel refresh rate.
	RefreshRate domain.Fps

	// Jitter bounds the uniform timestamp noise added to each pulse.
	Jitter time.Duration

	// ReportPeriod makes pulses carry the panel period.
	ReportPeriod bool

	// Seed seeds the jitter source.
	Seed uint64
}

// Simulated is a driven.SchedulerCallback backed by a paced pulse loop.
//
// Pulses lie on a fixed grid of the panel period, anchored at creation,
// so the model sees a phase-stable signal regardless of scheduling delay.
type Simulated struct {
	id     domain.DisplayID
	clock  driven.Clock
	jitter time.Duration
	report bool
	origin int64
	log    logger.Component

	mu       sync.Mutex
	period   int64
	limiter  *rate.Limiter
	rng      *rand.Rand
	enabled  bool
	lastGrid int64

	wake chan struct{}

	enables  atomic.Int64
	disables atomic.Int64
	pulses   atomic.Int64
}

// NewSimulated creates a disabled display reading clock.
func NewSimulated(id domain.DisplayID, clock driven.Clock, cfg Config) *Simulated {
	if cfg.RefreshRate <= 0 {
		cfg.RefreshRate = domain.DefaultRefreshRate
	}

	return &Simulated{
		id:      id,
		clock:   clock,
		jitter:  cfg.Jitter,
		report:  cfg.ReportPeriod,
		origin:  clock.Now().Ns(),
		log:     logger.For(id.String()),
		period:  cfg.RefreshRate.Period().Ns(),
		limiter: rate.NewLimiter(rate.Limit(float64(cfg.RefreshRate)), 1),
		rng:     rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15)),
		wake:    make(chan struct{}, 1),
	}
}

// SetVsyncEnabled switches pulse generation. Calls for other displays
// are ignored. It never blocks and never calls back into the schedule.
func (s *Simulated) SetVsyncEnabled(id domain.DisplayID, enabled bool) {
	if id != s.id {
		s.log.Warn("ignoring vsync request for %s", id)
		return
	}

	s.mu.Lock()
	s.enabled = enabled
	s.mu.Unlock()

	if enabled {
		s.enables.Add(1)
	} else {
		s.disables.Add(1)
	}
	s.log.Debug("hardware vsync enabled=%t", enabled)

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// SetRefreshRate changes the panel refresh rate.
func (s *Simulated) SetRefreshRate(fps domain.Fps) {
	if fps <= 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.period = fps.Period().Ns()
	s.origin = s.lastGrid
	s.limiter.SetLimit(rate.Limit(float64(fps)))
}

// Period returns the panel period.
func (s *Simulated) Period() domain.Period {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.PeriodFromNs(s.period)
}

// Enabled reports whether pulses are being generated.
func (s *Simulated) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Enables returns the number of enable requests received.
func (s *Simulated) Enables() int64 { return s.enables.Load() }

// Disables returns the number of disable requests received.
func (s *Simulated) Disables() int64 { return s.disables.Load() }

// Pulses returns the number of pulses emitted.
func (s *Simulated) Pulses() int64 { return s.pulses.Load() }

// PresentFence returns a fence signalled at the latest panel vsync, as if
// a frame had just been presented.
func (s *Simulated) PresentFence() *domain.FenceTime {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.NewSignaledFence(domain.TimePointFromNs(s.gridFloorLocked(s.clock.Now().Ns())))
}

// Run emits pulses to pulse while enabled, until ctx is cancelled.
// pulse runs on the Run goroutine and may disable the display.
func (s *Simulated) Run(ctx context.Context, pulse driven.PulseFunc) error {
	for {
		if !s.Enabled() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-s.wake:
				continue
			}
		}

		if err := s.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}

		for {
			ts, hwcPeriod, wait, ok := s.nextPulse()
			if !ok {
				break
			}
			if wait <= 0 {
				s.pulses.Add(1)
				pulse(ts, hwcPeriod)
				break
			}
			// Paced ahead of the panel: hold until its next vsync.
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
	}
}

// nextPulse returns the newest grid vsync not yet emitted, with jitter.
// When that vsync was already emitted it returns the time until the next.
func (s *Simulated) nextPulse() (domain.TimePoint, *domain.Period, time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled {
		return 0, nil, 0, false
	}
	now := s.clock.Now().Ns()
	grid := s.gridFloorLocked(now)
	if grid <= s.lastGrid {
		return 0, nil, max(time.Duration(s.lastGrid+s.period-now), time.Microsecond), true
	}
	s.lastGrid = grid

	ts := grid
	if s.jitter > 0 {
		ts += s.rng.Int64N(2*s.jitter.Nanoseconds()+1) - s.jitter.Nanoseconds()
	}

	var hwcPeriod *domain.Period
	if s.report {
		p := domain.PeriodFromNs(s.period)
		hwcPeriod = &p
	}
	return domain.TimePointFromNs(ts), hwcPeriod, 0, true
}

func (s *Simulated) gridFloorLocked(now int64) int64 {
	if now < s.origin {
		return s.origin
	}
	return s.origin + (now-s.origin)/s.period*s.period
}
