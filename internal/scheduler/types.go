// Package scheduler implements the timetable solver pipeline: grid
// construction, session expansion, virtual lab room synthesis, feasibility
// filtering, and constraint discharge into a conflict-free weekly schedule.
package scheduler

import "github.com/noah-isme/university-timetable-api/internal/models"

// Slot is one atomic unit of the time grid.
type Slot struct {
	Day   string
	Index int
	Start int // minutes since midnight
	End   int
}

// Session is one atomic teaching occurrence produced by the expander: one
// lecture block or one lab block, bound to exactly one course, group and
// lecturer.
type Session struct {
	Index           int
	CourseID        string
	GroupID         string
	LecturerID      string
	DurationMinutes int
	IsLab           bool
	Requirements    models.Requirements
}

// SpanSlots returns how many base slots this session occupies given the
// grid's slot length.
func (s Session) SpanSlots(slotMinutes int) int {
	if slotMinutes <= 0 {
		return 0
	}
	return s.DurationMinutes / slotMinutes
}

// CourseCatalogEntry bundles a course with the groups and lecturers it is
// attached to, resolved from the catalog store.
type CourseCatalogEntry struct {
	Course    models.Course
	Groups    []models.StudentGroup
	Lecturers []models.Lecturer
}

// Variable is a decision variable x[s,r,t]: session s may be placed in room
// r starting at grid slot t. Cover lists the base-slot indices it occupies.
type Variable struct {
	SessionIdx int
	RoomID     string
	SlotIdx    int
	Cover      []int
}

// Status is the outcome of a solve attempt.
type Status string

const (
	StatusOptimal    Status = "OPTIMAL"
	StatusFeasible   Status = "FEASIBLE"
	StatusInfeasible Status = "INFEASIBLE"
)

// Assignment maps a session index to the variable chosen for it.
type Assignment struct {
	SessionIdx int
	RoomID     string
	SlotIdx    int
}

// Result is the outcome of discharging the constraint model.
type Result struct {
	Status           Status
	Assignments      []Assignment
	Penalty          int
	UnplacedSessions []int
}
