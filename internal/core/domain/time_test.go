package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFps_Period(t *testing.T) {
	tests := []struct {
		fps      Fps
		expected Period
	}{
		{60, 16666667},
		{90, 11111111},
		{120, 8333333},
		{0, 0},
		{-1, 0},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, tt.fps.Period(), "fps %v", tt.fps)
	}
}

func TestPeriod_Fps(t *testing.T) {
	assert.InDelta(t, 60.0, float64(Fps(60).Period().Fps()), 0.001)
	assert.Equal(t, Fps(0), Period(0).Fps())
}

func TestTimePoint_Arithmetic(t *testing.T) {
	tp := TimePointFromNs(1000)

	assert.Equal(t, TimePoint(1500), tp.Add(500*time.Nanosecond))
	assert.Equal(t, 250*time.Nanosecond, TimePoint(1250).Sub(tp))
	assert.Equal(t, int64(1000), tp.Ns())
}

func TestParseDisplayID(t *testing.T) {
	id, err := ParseDisplayID("4619827259835644672")
	require.NoError(t, err)
	assert.Equal(t, DisplayID(4619827259835644672), id)
	assert.Equal(t, "PhysicalDisplayId{value=4619827259835644672}", id.String())

	_, err = ParseDisplayID("primary")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
