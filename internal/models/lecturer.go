package models

// Lecturer teaches sessions and may have per-day availability windows.
type Lecturer struct {
	ID           string           `db:"id" json:"id"`
	Name         string           `db:"name" json:"name"`
	Department   string           `db:"department" json:"department"`
	Availability AvailabilityList `db:"availability" json:"availability,omitempty"`
}

// Contains reports whether [start,end) on day fits an availability window.
// A lecturer with no windows is treated as always available.
func (l Lecturer) Contains(day string, start, end int) bool {
	if len(l.Availability) == 0 {
		return true
	}
	for _, w := range l.Availability {
		if w.Day == day && start >= w.Start && end <= w.End {
			return true
		}
	}
	return false
}
