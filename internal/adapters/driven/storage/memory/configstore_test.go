package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("display.id", int64(3)))

	val, ok := store.Get("display.id")
	assert.True(t, ok)
	assert.Equal(t, int64(3), val)

	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()
	require.NoError(t, store.Set("display.refresh_hz", 90.0))
	require.NoError(t, store.Set("tracker.history_size", int64(20)))
	require.NoError(t, store.Set("features.present_fences", true))
	require.NoError(t, store.Set("display.name", "panel"))

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"float", store.GetFloat("display.refresh_hz"), 90.0},
		{"float from int", store.GetFloat("tracker.history_size"), 20.0},
		{"int", store.GetInt("tracker.history_size"), 20},
		{"int from float", store.GetInt("display.refresh_hz"), 90},
		{"bool", store.GetBool("features.present_fences"), true},
		{"wrong type int", store.GetInt("display.name"), 0},
		{"wrong type bool", store.GetBool("display.name"), false},
		{"missing float", store.GetFloat("missing"), 0.0},
		{"missing bool", store.GetBool("missing"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestConfigStore_NoOps(t *testing.T) {
	store := NewConfigStore()

	assert.NoError(t, store.Save())
	assert.NoError(t, store.Load())
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := NewConfigStore()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.Set("tracker.history_size", int64(n))
			_ = store.GetInt("tracker.history_size")
		}(i)
	}
	wg.Wait()

	assert.GreaterOrEqual(t, store.GetInt("tracker.history_size"), 0)
}
