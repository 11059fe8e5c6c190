package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildGrid_ContiguousWithinDay(t *testing.T) {
	slots := BuildGrid([]string{"MON", "TUE"}, 8*60, 10*60, 30)
	require.Len(t, slots, 8)

	for i, s := range slots {
		assert.Equal(t, i, s.Index)
		assert.Equal(t, 30, s.End-s.Start)
	}

	assert.True(t, Contiguous(slots, 0))
	assert.False(t, Contiguous(slots, 3)) // day boundary: MON ends, TUE begins
}

func TestBuildGrid_LastSlotNeverExceedsDayEnd(t *testing.T) {
	slots := BuildGrid([]string{"MON"}, 8*60, 9*60+40, 30)
	require.Len(t, slots, 3)
	assert.Equal(t, 9*60+30, slots[2].End)
}

func TestBuildGrid_InvalidInputs(t *testing.T) {
	assert.Nil(t, BuildGrid([]string{"MON"}, 8*60, 9*60, 0))
	assert.Nil(t, BuildGrid([]string{"MON"}, 9*60, 8*60, 30))
}

func TestSpan_RejectsCrossingDayBoundary(t *testing.T) {
	slots := BuildGrid([]string{"MON", "TUE"}, 8*60, 9*60, 30)
	require.Len(t, slots, 4)

	_, ok := Span(slots, 1, 2)
	assert.False(t, ok)

	window, ok := Span(slots, 0, 2)
	require.True(t, ok)
	assert.Equal(t, "MON", window[0].Day)
	assert.Equal(t, "MON", window[1].Day)
}
