package models

import "time"

// Requirements is the furniture/equipment bundle a session needs from a
// room. A course carries one for its lecture sessions and, when it has a
// lab component, a second independent bundle for its lab sessions.
type Requirements struct {
	FurnitureType string    `json:"furniture_type,omitempty"`
	Equipment     StringSet `json:"equipment,omitempty"`
}

// Course is a catalog entry describing how many weekly lecture and lab
// sessions it expands into.
type Course struct {
	ID   string `db:"id" json:"id"`
	Code string `db:"code" json:"code"`

	WeeklyHours    float64 `db:"weekly_hours" json:"weekly_hours"`
	SessionMinutes int     `db:"session_minutes" json:"session_minutes"`

	FurnitureType string    `db:"furniture_type" json:"furniture_type"`
	Equipment     StringSet `db:"equipment" json:"equipment"`

	IsProject bool `db:"is_project" json:"is_project"`

	HasLab            bool      `db:"has_lab" json:"has_lab"`
	LabWeeklySessions int       `db:"lab_weekly_sessions" json:"lab_weekly_sessions"`
	LabSessionMinutes int       `db:"lab_session_minutes" json:"lab_session_minutes"`
	LabFurnitureType  string    `db:"lab_furniture_type" json:"lab_furniture_type"`
	LabEquipment      StringSet `db:"lab_equipment" json:"lab_equipment"`

	Department string `db:"department" json:"department"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	// Populated by the repository join, not stored as columns.
	GroupIDs    []string `db:"-" json:"group_ids,omitempty"`
	LecturerIDs []string `db:"-" json:"lecturer_ids,omitempty"`
}

// LectureRequirements returns the requirements bundle for the course's
// lecture sessions.
func (c Course) LectureRequirements() Requirements {
	return Requirements{FurnitureType: c.FurnitureType, Equipment: c.Equipment}
}

// LabRequirements returns the requirements bundle for the course's lab
// sessions. Meaningful only when HasLab is true.
func (c Course) LabRequirements() Requirements {
	return Requirements{FurnitureType: c.LabFurnitureType, Equipment: c.LabEquipment}
}
