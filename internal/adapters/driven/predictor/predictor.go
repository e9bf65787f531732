// Package predictor implements the vsync period and phase model.
//
// Observed hardware vsync timestamps are fitted with a least squares line
// of timestamp against vsync ordinal. The slope is the period estimate and
// the line's phase anchors predictions.
package predictor

import (
	"fmt"
	"io"
	"math"
	"slices"
	"sync"

	"github.com/custodia-labs/vsync-cli/internal/core/domain"
	"github.com/custodia-labs/vsync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/vsync-cli/internal/logger"
)

// Verify interface compliance.
var _ driven.VsyncTracker = (*Predictor)(nil)

const (
	// outlierTolerancePercent bounds the phase error of an accepted sample,
	// as a share of the ideal period.
	outlierTolerancePercent = 25

	// maxPeriodDeviationPercent bounds how far a fitted period may stray
	// from the ideal period before the fit is discarded.
	maxPeriodDeviationPercent = 20
)

// Predictor is a driven.VsyncTracker fed by hardware vsync timestamps.
type Predictor struct {
	name   string
	tuning domain.TrackerTuning
	log    logger.Component

	mu          sync.Mutex
	idealPeriod int64
	timestamps  []int64 // ascending, oldest first

	knownTimestamp int64
	hasKnown       bool

	fitted    bool
	origin    int64
	slope     float64
	intercept float64
}

// New creates a predictor named name, typically the display id.
func New(name string, tuning domain.TrackerTuning) *Predictor {
	return &Predictor{
		name:        name,
		tuning:      tuning,
		log:         logger.For(name).With("predictor"),
		idealPeriod: tuning.InitialPeriod.Ns(),
		timestamps:  make([]int64, 0, tuning.HistorySize),
	}
}

// AddVsyncTimestamp feeds one observed vsync. It returns false when the
// sample is rejected as a duplicate, out of phase or when the resulting fit
// is implausible.
func (p *Predictor) AddVsyncTimestamp(timestamp domain.TimePoint) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	ts := timestamp.Ns()
	if !p.validateLocked(ts) {
		p.rememberLocked(ts)
		if len(p.timestamps) < p.tuning.MinSamplesForPrediction {
			// The short history is no better than the new pulse.
			p.clearLocked()
		}
		p.log.Debug("%s rejected timestamp %d", p.name, ts)
		return false
	}

	p.timestamps = append(p.timestamps, ts)
	if len(p.timestamps) > p.tuning.HistorySize {
		p.timestamps = slices.Delete(p.timestamps, 0, len(p.timestamps)-p.tuning.HistorySize)
	}
	return p.fitLocked()
}

// NextAnticipatedVSyncTimeFrom returns the first predicted vsync at or after t.
func (p *Predictor) NextAnticipatedVSyncTimeFrom(t domain.TimePoint) domain.TimePoint {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := t.Ns()
	if !p.fitted {
		// Without any pulse the grid is anchored at the clock origin.
		var anchor int64
		switch {
		case len(p.timestamps) > 0:
			anchor = p.timestamps[len(p.timestamps)-1]
		case p.hasKnown:
			anchor = p.knownTimestamp
		}
		return domain.TimePointFromNs(anchor + ceilDiv(now-anchor, p.idealPeriod)*p.idealPeriod)
	}

	base := float64(p.origin) + p.intercept
	k := math.Floor((float64(now) - base) / p.slope)
	next := int64(math.Round(base + k*p.slope))
	if next < now {
		next = int64(math.Round(base + (k+1)*p.slope))
	}
	return domain.TimePointFromNs(next)
}

// CurrentPeriod returns the fitted period, or the ideal period without a fit.
func (p *Predictor) CurrentPeriod() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentPeriodLocked()
}

// SetPeriod replaces the ideal period and discards history.
func (p *Predictor) SetPeriod(period domain.Period) {
	if period <= 0 {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.log.Debug("%s ideal period %s -> %s", p.name, domain.Period(p.idealPeriod), period)
	p.idealPeriod = period.Ns()
	p.clearLocked()
}

// ResetModel discards history. The newest timestamp is kept as the phase
// anchor until fresh samples arrive.
func (p *Predictor) ResetModel() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clearLocked()
}

// NeedsMoreSamples reports whether the history is too short for a fit.
func (p *Predictor) NeedsMoreSamples() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.timestamps) < p.tuning.MinSamplesForPrediction
}

// Dump writes the model state.
func (p *Predictor) Dump(w io.Writer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, _ = fmt.Fprintf(w, "  VsyncPredictor %s:\n", p.name)
	_, _ = fmt.Fprintf(w, "    idealPeriod=%.2fms anticipatedPeriod=%.2fms\n",
		nsToMs(p.idealPeriod), nsToMs(p.currentPeriodLocked()))
	_, _ = fmt.Fprintf(w, "    samples=%d/%d fitted=%t\n", len(p.timestamps), p.tuning.HistorySize, p.fitted)
	if p.hasKnown {
		_, _ = fmt.Fprintf(w, "    knownTimestamp=%d\n", p.knownTimestamp)
	}
}

func (p *Predictor) currentPeriodLocked() int64 {
	if p.fitted {
		return int64(math.Round(p.slope))
	}
	return p.idealPeriod
}

// validateLocked rejects non-increasing samples, samples closer to the
// previous one than the tolerance, and samples badly out of phase.
func (p *Predictor) validateLocked(ts int64) bool {
	if len(p.timestamps) == 0 {
		return true
	}

	delta := ts - p.timestamps[len(p.timestamps)-1]
	if delta <= 0 || delta*100/p.idealPeriod < outlierTolerancePercent {
		return false
	}

	phase := (delta % p.idealPeriod) * 100 / p.idealPeriod
	return phase < outlierTolerancePercent || phase > 100-outlierTolerancePercent
}

func (p *Predictor) rememberLocked(ts int64) {
	if len(p.timestamps) > 0 {
		ts = max(ts, p.timestamps[len(p.timestamps)-1])
	}
	if !p.hasKnown || ts > p.knownTimestamp {
		p.knownTimestamp = ts
		p.hasKnown = true
	}
}

func (p *Predictor) clearLocked() {
	if len(p.timestamps) > 0 {
		p.rememberLocked(p.timestamps[len(p.timestamps)-1])
	}
	p.timestamps = p.timestamps[:0]
	p.fitted = false
}

func (p *Predictor) fitLocked() bool {
	n := len(p.timestamps)
	if n < p.tuning.MinSamplesForPrediction {
		p.fitted = false
		return true
	}

	origin := p.timestamps[0]
	ideal := float64(p.idealPeriod)
	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, ts := range p.timestamps {
		ys[i] = float64(ts - origin)
		xs[i] = math.Round(ys[i] / ideal)
	}

	slope, intercept, ok := leastSquares(xs, ys)
	if ok {
		if discard := n * p.tuning.DiscardOutlierPercent / 100; discard > 0 && n-discard >= 2 {
			xs, ys = dropWorst(xs, ys, slope, intercept, discard)
			slope, intercept, ok = leastSquares(xs, ys)
		}
	}

	if !ok || slope <= 0 || math.Abs(slope-ideal)*100/ideal > maxPeriodDeviationPercent {
		p.log.Warn("%s discarding implausible fit (slope %.0fns, ideal %dns)", p.name, slope, p.idealPeriod)
		p.clearLocked()
		return false
	}

	p.fitted = true
	p.origin = origin
	p.slope = slope
	p.intercept = intercept
	return true
}

// leastSquares fits y = slope*x + intercept.
func leastSquares(xs, ys []float64) (slope, intercept float64, ok bool) {
	n := float64(len(xs))
	var meanX, meanY float64
	for i := range xs {
		meanX += xs[i]
		meanY += ys[i]
	}
	meanX /= n
	meanY /= n

	var sxy, sxx float64
	for i := range xs {
		dx := xs[i] - meanX
		sxy += dx * (ys[i] - meanY)
		sxx += dx * dx
	}
	if sxx == 0 {
		return 0, 0, false
	}

	slope = sxy / sxx
	return slope, meanY - slope*meanX, true
}

// dropWorst removes the discard points with the largest residuals.
func dropWorst(xs, ys []float64, slope, intercept float64, discard int) ([]float64, []float64) {
	idx := make([]int, len(xs))
	for i := range idx {
		idx[i] = i
	}
	residual := func(i int) float64 {
		return math.Abs(ys[i] - (slope*xs[i] + intercept))
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		ra, rb := residual(a), residual(b)
		switch {
		case ra < rb:
			return -1
		case ra > rb:
			return 1
		default:
			return 0
		}
	})

	keep := idx[:len(idx)-discard]
	outX := make([]float64, 0, len(keep))
	outY := make([]float64, 0, len(keep))
	for _, i := range keep {
		outX = append(outX, xs[i])
		outY = append(outY, ys[i])
	}
	return outX, outY
}

// ceilDiv returns ceil(a/b) for b > 0.
func ceilDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && a > 0 {
		q++
	}
	return q
}

func nsToMs(ns int64) float64 {
	return float64(ns) / 1e6
}
