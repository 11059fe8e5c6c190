package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/university-timetable-api/internal/models"
)

func baseCfg() FeasibilityConfig {
	return FeasibilityConfig{SlotMinutes: 30, LunchStart: 12 * 60, LunchEnd: 13 * 60, FridayLabel: "FRI"}
}

func TestBuildFeasibilityIndex_LunchExclusion(t *testing.T) {
	slots := BuildGrid([]string{"MON"}, 11*60, 14*60, 30)
	sessions := []Session{{Index: 0, GroupID: "g1", LecturerID: "l1", DurationMinutes: 30}}
	groups := map[string]models.StudentGroup{"g1": {ID: "g1", Size: 10}}
	lecturers := map[string]models.Lecturer{"l1": {ID: "l1"}}
	rooms := []models.Room{{ID: "r1", Name: "R1", Capacity: 50}}

	idx := BuildFeasibilityIndex(slots, sessions, rooms, groups, lecturers, baseCfg())
	for _, vi := range idx.BySession[0] {
		v := idx.Variables[vi]
		start := slots[v.SlotIdx].Start
		assert.False(t, start >= 12*60 && start < 13*60)
	}
}

func TestBuildFeasibilityIndex_FridayYear5Excluded(t *testing.T) {
	slots := BuildGrid([]string{"THU", "FRI"}, 8*60, 10*60, 30)
	sessions := []Session{{Index: 0, GroupID: "g5", LecturerID: "l1", DurationMinutes: 30}}
	year5 := 5
	groups := map[string]models.StudentGroup{"g5": {ID: "g5", Size: 10, Year: &year5}}
	lecturers := map[string]models.Lecturer{"l1": {ID: "l1"}}
	rooms := []models.Room{{ID: "r1", Name: "R1", Capacity: 50}}

	idx := BuildFeasibilityIndex(slots, sessions, rooms, groups, lecturers, baseCfg())
	for _, vi := range idx.BySession[0] {
		v := idx.Variables[vi]
		assert.NotEqual(t, "FRI", slots[v.SlotIdx].Day)
	}
}

func TestBuildFeasibilityIndex_LabVenueSegregation(t *testing.T) {
	slots := BuildGrid([]string{"MON"}, 8*60, 10*60, 30)
	sessions := []Session{
		{Index: 0, GroupID: "g1", LecturerID: "l1", DurationMinutes: 30, IsLab: false},
		{Index: 1, GroupID: "g1", LecturerID: "l1", DurationMinutes: 30, IsLab: true},
	}
	groups := map[string]models.StudentGroup{"g1": {ID: "g1", Size: 10}}
	lecturers := map[string]models.Lecturer{"l1": {ID: "l1"}}
	rooms := []models.Room{
		{ID: "lab", Name: "LAB-G1", Capacity: 1000},
		{ID: "lecture", Name: "R1", Capacity: 50},
	}

	idx := BuildFeasibilityIndex(slots, sessions, rooms, groups, lecturers, baseCfg())
	for _, vi := range idx.BySession[0] {
		assert.Equal(t, "lecture", idx.Variables[vi].RoomID)
	}
	for _, vi := range idx.BySession[1] {
		assert.Equal(t, "lab", idx.Variables[vi].RoomID)
	}
}

func TestBuildFeasibilityIndex_CapacityFallbackOversubscribed(t *testing.T) {
	slots := BuildGrid([]string{"MON"}, 8*60, 9*60, 30)
	sessions := []Session{{Index: 0, GroupID: "g1", LecturerID: "l1", DurationMinutes: 30}}
	groups := map[string]models.StudentGroup{"g1": {ID: "g1", Size: 300}}
	lecturers := map[string]models.Lecturer{"l1": {ID: "l1"}}
	rooms := []models.Room{
		{ID: "small", Name: "R1", Capacity: 100},
		{ID: "big", Name: "R2", Capacity: 200},
	}

	idx := BuildFeasibilityIndex(slots, sessions, rooms, groups, lecturers, baseCfg())
	require.NotEmpty(t, idx.BySession[0])
	for _, vi := range idx.BySession[0] {
		assert.Equal(t, "big", idx.Variables[vi].RoomID)
	}
}

func TestBuildFeasibilityIndex_DurationNotMultipleOfSlotIsEmpty(t *testing.T) {
	slots := BuildGrid([]string{"MON"}, 8*60, 10*60, 30)
	sessions := []Session{{Index: 0, GroupID: "g1", LecturerID: "l1", DurationMinutes: 45}}
	groups := map[string]models.StudentGroup{"g1": {ID: "g1", Size: 10}}
	lecturers := map[string]models.Lecturer{"l1": {ID: "l1"}}
	rooms := []models.Room{{ID: "r1", Name: "R1", Capacity: 50}}

	idx := BuildFeasibilityIndex(slots, sessions, rooms, groups, lecturers, baseCfg())
	assert.Empty(t, idx.BySession[0])
}
