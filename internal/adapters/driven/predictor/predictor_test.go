package predictor

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vsync-cli/internal/core/domain"
)

const (
	idealPeriod = int64(16_666_667)
	truePeriod  = int64(16_600_000)
	start       = int64(1_000_000_000)
)

func newTestPredictor() *Predictor {
	return New("test", domain.DefaultTuning().Tracker)
}

func feed(t *testing.T, p *Predictor, n int, period int64) int64 {
	t.Helper()
	var last int64
	for i := 0; i < n; i++ {
		last = start + int64(i)*period
		require.True(t, p.AddVsyncTimestamp(domain.TimePointFromNs(last)), "sample %d", i)
	}
	return last
}

func TestPredictor_InitialState(t *testing.T) {
	p := newTestPredictor()

	assert.Equal(t, idealPeriod, p.CurrentPeriod())
	assert.True(t, p.NeedsMoreSamples())
}

func TestPredictor_NextWithoutSamples(t *testing.T) {
	p := newTestPredictor()

	// Multiples of the ideal period from the clock origin.
	assert.Equal(t, int64(60*idealPeriod), p.NextAnticipatedVSyncTimeFrom(domain.TimePointFromNs(start)).Ns())
	assert.Equal(t, int64(60*idealPeriod), p.NextAnticipatedVSyncTimeFrom(domain.TimePointFromNs(60*idealPeriod)).Ns())
}

func TestPredictor_ConvergesToTruePeriod(t *testing.T) {
	p := newTestPredictor()

	feed(t, p, 10, truePeriod)

	assert.False(t, p.NeedsMoreSamples())
	assert.InDelta(t, truePeriod, p.CurrentPeriod(), float64(truePeriod)*0.001)
}

func TestPredictor_NextAfterFit(t *testing.T) {
	p := newTestPredictor()
	last := feed(t, p, 10, truePeriod)

	next := p.NextAnticipatedVSyncTimeFrom(domain.TimePointFromNs(last + 1))
	assert.InDelta(t, last+truePeriod, next.Ns(), 2)

	onVsync := p.NextAnticipatedVSyncTimeFrom(domain.TimePointFromNs(start + 5*truePeriod))
	assert.InDelta(t, start+5*truePeriod, onVsync.Ns(), 2)
	assert.GreaterOrEqual(t, onVsync.Ns(), start+5*truePeriod-2)
}

func TestPredictor_PredictionsNeverPrecedeQuery(t *testing.T) {
	p := newTestPredictor()
	last := feed(t, p, 8, truePeriod)

	for q := last - 3*truePeriod; q < last+3*truePeriod; q += 997_331 {
		next := p.NextAnticipatedVSyncTimeFrom(domain.TimePointFromNs(q))
		assert.GreaterOrEqual(t, next.Ns(), q)
		assert.Less(t, next.Ns(), q+truePeriod+2)
	}
}

func TestPredictor_RejectsDuplicateAndOutOfPhase(t *testing.T) {
	p := newTestPredictor()
	last := feed(t, p, 8, truePeriod)

	assert.False(t, p.AddVsyncTimestamp(domain.TimePointFromNs(last)), "duplicate")
	assert.False(t, p.AddVsyncTimestamp(domain.TimePointFromNs(last+truePeriod/2)), "half period")
	assert.False(t, p.AddVsyncTimestamp(domain.TimePointFromNs(last-truePeriod)), "going backwards")

	// The model survives rejected samples.
	assert.False(t, p.NeedsMoreSamples())
	assert.InDelta(t, truePeriod, p.CurrentPeriod(), float64(truePeriod)*0.001)
}

func TestPredictor_RejectionWithShortHistoryRestarts(t *testing.T) {
	p := newTestPredictor()
	last := feed(t, p, 3, truePeriod)

	assert.False(t, p.AddVsyncTimestamp(domain.TimePointFromNs(last+truePeriod/2)))

	// History restarted: the next pulse is accepted unconditionally.
	assert.True(t, p.AddVsyncTimestamp(domain.TimePointFromNs(last+truePeriod/2+1)))
	assert.True(t, p.NeedsMoreSamples())
}

func TestPredictor_DiscardsOutliersFromFit(t *testing.T) {
	p := newTestPredictor()
	for i := 0; i < 10; i++ {
		ts := start + int64(i)*truePeriod
		if i == 5 {
			ts += 3_000_000
		}
		require.True(t, p.AddVsyncTimestamp(domain.TimePointFromNs(ts)), "sample %d", i)
	}

	assert.InDelta(t, truePeriod, p.CurrentPeriod(), float64(truePeriod)*0.001)
}

func TestPredictor_SkippedVsyncsKeepPeriod(t *testing.T) {
	p := newTestPredictor()

	// Every other vsync observed.
	feed(t, p, 8, 2*idealPeriod)

	assert.InDelta(t, idealPeriod, p.CurrentPeriod(), float64(idealPeriod)*0.001)
}

func TestPredictor_HistoryIsBounded(t *testing.T) {
	p := newTestPredictor()
	feed(t, p, 50, truePeriod)

	var buf bytes.Buffer
	p.Dump(&buf)
	assert.Contains(t, buf.String(), "samples=20/20")
}

func TestPredictor_ResetModel(t *testing.T) {
	p := newTestPredictor()
	last := feed(t, p, 10, truePeriod)

	p.ResetModel()

	assert.True(t, p.NeedsMoreSamples())
	assert.Equal(t, idealPeriod, p.CurrentPeriod())
	// Phase is anchored at the newest known pulse.
	next := p.NextAnticipatedVSyncTimeFrom(domain.TimePointFromNs(last + 1))
	assert.Equal(t, last+idealPeriod, next.Ns())
}

func TestPredictor_SetPeriod(t *testing.T) {
	p := newTestPredictor()
	feed(t, p, 10, truePeriod)

	p.SetPeriod(domain.Fps(90).Period())

	assert.Equal(t, int64(11_111_111), p.CurrentPeriod())
	assert.True(t, p.NeedsMoreSamples())

	p.SetPeriod(0)
	assert.Equal(t, int64(11_111_111), p.CurrentPeriod())
}

func TestPredictor_Dump(t *testing.T) {
	p := newTestPredictor()

	var buf bytes.Buffer
	p.Dump(&buf)

	out := buf.String()
	assert.Contains(t, out, "VsyncPredictor test:")
	assert.Contains(t, out, "idealPeriod=16.67ms")
	assert.Contains(t, out, "samples=0/20 fitted=false")
	assert.NotContains(t, out, "knownTimestamp")
}

func TestPredictor_ConcurrentUse(t *testing.T) {
	p := newTestPredictor()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			p.AddVsyncTimestamp(domain.TimePointFromNs(start + int64(i)*truePeriod))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			p.NextAnticipatedVSyncTimeFrom(domain.TimePointFromNs(start + int64(i)*truePeriod))
			_ = p.CurrentPeriod()
		}
	}()
	wg.Wait()

	assert.InDelta(t, truePeriod, p.CurrentPeriod(), float64(truePeriod)*0.001)
}
