package scheduler

import (
	"fmt"

	"github.com/noah-isme/university-timetable-api/internal/models"
)

// defaultSyntheticCapacity is used when a group's size is unknown (zero).
const defaultSyntheticCapacity = 1000

// LabRoomName returns the synthetic lab room name for a group.
func LabRoomName(groupID string) string {
	return fmt.Sprintf("LAB-G%s", groupID)
}

// EnsureVirtualLabRooms returns the synthetic lab rooms that must exist for
// the given sessions but are not already present in existing. Each group
// with at least one lab session gets one always-open LAB room sized to fit
// the group (or a generous default when the group size is unknown).
func EnsureVirtualLabRooms(sessions []Session, groups map[string]models.StudentGroup, existing []models.Room) []models.Room {
	present := make(map[string]bool, len(existing))
	for _, r := range existing {
		present[r.Name] = true
	}

	needed := make(map[string]bool)
	var order []string
	for _, s := range sessions {
		if !s.IsLab {
			continue
		}
		name := LabRoomName(s.GroupID)
		if needed[name] || present[name] {
			continue
		}
		needed[name] = true
		order = append(order, s.GroupID)
	}

	var created []models.Room
	for _, groupID := range order {
		capacity := defaultSyntheticCapacity
		if g, ok := groups[groupID]; ok && g.Size > 0 {
			capacity = g.Size
		}
		created = append(created, models.Room{
			Name:          LabRoomName(groupID),
			Capacity:      capacity,
			FurnitureType: "LAB",
			IsSynthetic:   true,
		})
	}
	return created
}
