package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterialize_DerivesDayStartEndFromGrid(t *testing.T) {
	slots := BuildGrid([]string{"MON"}, 8*60, 10*60, 30)
	sessions := []Session{{Index: 0, CourseID: "c1", GroupID: "g1", LecturerID: "l1", DurationMinutes: 60}}
	result := Result{
		Status:      StatusOptimal,
		Assignments: []Assignment{{SessionIdx: 0, RoomID: "r1", SlotIdx: 1}},
	}

	events := Materialize("v1", sessions, slots, result)
	require.Len(t, events, 1)
	e := events[0]
	assert.Equal(t, "v1", e.VersionID)
	assert.Equal(t, "MON", e.Day)
	assert.Equal(t, slots[1].Start, e.StartMinute)
	assert.Equal(t, slots[2].End, e.EndMinute)
	assert.Equal(t, 60, e.EndMinute-e.StartMinute)
}
