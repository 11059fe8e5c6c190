package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/university-timetable-api/internal/models"
)

func TestSolve_HappyPathSingleCourse(t *testing.T) {
	slots := BuildGrid([]string{"MON", "TUE", "WED"}, 8*60, 12*60, 60)
	entries := []CourseCatalogEntry{
		{
			Course:    models.Course{ID: "c1", Code: "CSE 3001", WeeklyHours: 3, SessionMinutes: 60},
			Groups:    []models.StudentGroup{{ID: "g1", Size: 40}},
			Lecturers: []models.Lecturer{{ID: "l1"}},
		},
	}
	rooms := []models.Room{{ID: "r50", Name: "R50", Capacity: 50}, {ID: "r100", Name: "R100", Capacity: 100}}
	groups := map[string]models.StudentGroup{"g1": {ID: "g1", Size: 40}}
	lecturers := map[string]models.Lecturer{"l1": {ID: "l1"}}

	expanded := ExpandCourses(entries, 60)
	require.Len(t, expanded.Sessions, 3)

	idx := BuildFeasibilityIndex(slots, expanded.Sessions, rooms, groups, lecturers, FeasibilityConfig{
		SlotMinutes: 60, LunchStart: 13 * 60, LunchEnd: 14 * 60, FridayLabel: "FRI",
	})

	out := Solve(context.Background(), expanded.Sessions, slots, idx, SolveConfig{MaxPairPenaltyVars: 1000})
	require.Equal(t, StatusOptimal, out.Status)
	assert.Len(t, out.Assignments, 3)
	assert.Equal(t, 0, out.Penalty)
}

func TestSolve_ImpossibleSessionIsInfeasible(t *testing.T) {
	slots := BuildGrid([]string{"MON"}, 8*60, 9*60, 30)
	sessions := []Session{{Index: 0, GroupID: "g1", LecturerID: "l1", DurationMinutes: 45}} // not a multiple of 30
	groups := map[string]models.StudentGroup{"g1": {ID: "g1", Size: 10}}
	lecturers := map[string]models.Lecturer{"l1": {ID: "l1"}}
	rooms := []models.Room{{ID: "r1", Name: "R1", Capacity: 50}}

	idx := BuildFeasibilityIndex(slots, sessions, rooms, groups, lecturers, FeasibilityConfig{
		SlotMinutes: 30, LunchStart: 12 * 60, LunchEnd: 13 * 60, FridayLabel: "FRI",
	})

	out := Solve(context.Background(), sessions, slots, idx, SolveConfig{MaxPairPenaltyVars: 100})
	assert.Equal(t, StatusInfeasible, out.Status)
	assert.Equal(t, []int{0}, out.UnplacedSessions)
}

func TestSolve_OutputSatisfiesSchedulingInvariants(t *testing.T) {
	// Two courses share the lecturer and one group, with a single lecture
	// room, so the mutex constraints actually bind.
	slots := BuildGrid([]string{"MON", "TUE"}, 8*60, 16*60, 60)
	entries := []CourseCatalogEntry{
		{
			Course:    models.Course{ID: "c1", Code: "CSE 3001", WeeklyHours: 2, SessionMinutes: 60},
			Groups:    []models.StudentGroup{{ID: "g1", Size: 30}},
			Lecturers: []models.Lecturer{{ID: "l1"}},
		},
		{
			Course:    models.Course{ID: "c2", Code: "CSE 3002", WeeklyHours: 2, SessionMinutes: 120},
			Groups:    []models.StudentGroup{{ID: "g1", Size: 30}},
			Lecturers: []models.Lecturer{{ID: "l1"}},
		},
	}
	rooms := []models.Room{{ID: "r1", Name: "R1", Capacity: 50}}
	groups := map[string]models.StudentGroup{"g1": {ID: "g1", Size: 30}}
	lecturers := map[string]models.Lecturer{"l1": {ID: "l1"}}
	cfg := FeasibilityConfig{SlotMinutes: 60, LunchStart: 12 * 60, LunchEnd: 13 * 60, FridayLabel: "FRI"}

	expanded := ExpandCourses(entries, 60)
	idx := BuildFeasibilityIndex(slots, expanded.Sessions, rooms, groups, lecturers, cfg)
	out := Solve(context.Background(), expanded.Sessions, slots, idx, SolveConfig{MaxPairPenaltyVars: 1000})
	require.NotEqual(t, StatusInfeasible, out.Status)

	events := Materialize("v1", expanded.Sessions, slots, out.Result)
	require.Len(t, events, len(expanded.Sessions))

	for i, e1 := range events {
		assert.Greater(t, e1.EndMinute, e1.StartMinute)
		assert.Zero(t, (e1.EndMinute-e1.StartMinute)%cfg.SlotMinutes)
		assert.False(t, e1.StartMinute >= cfg.LunchStart && e1.StartMinute < cfg.LunchEnd)

		for j, e2 := range events {
			if i == j || !e1.Overlaps(e2) {
				continue
			}
			assert.NotEqual(t, e1.RoomID, e2.RoomID, "room overlap: %+v vs %+v", e1, e2)
			assert.NotEqual(t, e1.GroupID, e2.GroupID, "group overlap: %+v vs %+v", e1, e2)
			if !e1.IsLab && !e2.IsLab {
				assert.NotEqual(t, e1.LecturerID, e2.LecturerID, "lecturer overlap: %+v vs %+v", e1, e2)
			}
		}
	}
}

func TestSolve_SameDayPenaltyIncludesLabs(t *testing.T) {
	// With a single day available, two lectures and a lab of the same
	// (course, group) all land on MON, so all three pairs are same-day
	// pairs: the lab counts toward the penalty like any other session.
	slots := BuildGrid([]string{"MON"}, 8*60, 12*60, 60)
	sessions := []Session{
		{Index: 0, CourseID: "c1", GroupID: "g1", LecturerID: "l1", DurationMinutes: 60, IsLab: false},
		{Index: 1, CourseID: "c1", GroupID: "g1", LecturerID: "l1", DurationMinutes: 60, IsLab: false},
		{Index: 2, CourseID: "c1", GroupID: "g1", LecturerID: "l1", DurationMinutes: 60, IsLab: true},
	}
	groups := map[string]models.StudentGroup{"g1": {ID: "g1", Size: 10}}
	lecturers := map[string]models.Lecturer{"l1": {ID: "l1"}}
	rooms := []models.Room{
		{ID: "lec", Name: "R1", Capacity: 50},
		{ID: "lab", Name: "LAB-G1", Capacity: 1000},
	}

	idx := BuildFeasibilityIndex(slots, sessions, rooms, groups, lecturers, FeasibilityConfig{
		SlotMinutes: 60, LunchStart: 13 * 60, LunchEnd: 14 * 60, FridayLabel: "FRI",
	})

	out := Solve(context.Background(), sessions, slots, idx, SolveConfig{MaxPairPenaltyVars: 1000})
	require.Equal(t, StatusFeasible, out.Status)
	assert.Equal(t, 3, out.Penalty)
}

func TestSolve_LocalSearchSpreadsLabAcrossDays(t *testing.T) {
	// Two days, a lecture and a lab of the same (course, group): the pair
	// is penalized when stacked on one day, so the solve must end with
	// them on distinct days and a zero penalty.
	slots := BuildGrid([]string{"MON", "TUE"}, 8*60, 12*60, 60)
	sessions := []Session{
		{Index: 0, CourseID: "c1", GroupID: "g1", LecturerID: "l1", DurationMinutes: 60, IsLab: false},
		{Index: 1, CourseID: "c1", GroupID: "g1", LecturerID: "l1", DurationMinutes: 60, IsLab: true},
	}
	groups := map[string]models.StudentGroup{"g1": {ID: "g1", Size: 10}}
	lecturers := map[string]models.Lecturer{"l1": {ID: "l1"}}
	rooms := []models.Room{
		{ID: "lec", Name: "R1", Capacity: 50},
		{ID: "lab", Name: "LAB-G1", Capacity: 1000},
	}

	idx := BuildFeasibilityIndex(slots, sessions, rooms, groups, lecturers, FeasibilityConfig{
		SlotMinutes: 60, LunchStart: 13 * 60, LunchEnd: 14 * 60, FridayLabel: "FRI",
	})

	out := Solve(context.Background(), sessions, slots, idx, SolveConfig{MaxPairPenaltyVars: 1000})
	require.Equal(t, StatusOptimal, out.Status)
	assert.Equal(t, 0, out.Penalty)
	require.Len(t, out.Assignments, 2)
	assert.NotEqual(t, slots[out.Assignments[0].SlotIdx].Day, slots[out.Assignments[1].SlotIdx].Day)
}
