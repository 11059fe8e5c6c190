package scheduler

import "github.com/noah-isme/university-timetable-api/internal/models"

// Materialize reads the solver's chosen variables back into timetabled
// events tagged with versionID, deriving (day, start, end) from the grid
// and each session's span.
func Materialize(versionID string, sessions []Session, slots []Slot, result Result) []models.TimetableEvent {
	sessionByIdx := make(map[int]Session, len(sessions))
	for _, s := range sessions {
		sessionByIdx[s.Index] = s
	}

	events := make([]models.TimetableEvent, 0, len(result.Assignments))
	for _, a := range result.Assignments {
		s, ok := sessionByIdx[a.SessionIdx]
		if !ok || a.SlotIdx < 0 || a.SlotIdx >= len(slots) {
			continue
		}
		span := s.SpanSlots(slots[a.SlotIdx].End - slots[a.SlotIdx].Start)
		if span <= 0 {
			span = 1
		}
		start := slots[a.SlotIdx]
		endIdx := a.SlotIdx + span - 1
		if endIdx >= len(slots) {
			endIdx = len(slots) - 1
		}
		end := slots[endIdx]

		events = append(events, models.TimetableEvent{
			VersionID:   versionID,
			CourseID:    s.CourseID,
			RoomID:      a.RoomID,
			GroupID:     s.GroupID,
			LecturerID:  s.LecturerID,
			Day:         start.Day,
			StartMinute: start.Start,
			EndMinute:   end.End,
			IsLab:       s.IsLab,
		})
	}
	return events
}
