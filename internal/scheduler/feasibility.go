package scheduler

import (
	"strings"

	"github.com/noah-isme/university-timetable-api/internal/models"
)

// LabRoomPrefix marks a room as a lab venue.
const LabRoomPrefix = "LAB-"

// FeasibilityConfig carries the grid parameters the filter needs beyond the
// slots themselves.
type FeasibilityConfig struct {
	SlotMinutes int
	LunchStart  int
	LunchEnd    int
	FridayLabel string
}

// FeasibilityIndex is the memoized output of the filter: the full variable
// list plus inverted indices keyed by room and by base slot, consumed by
// the constraint model.
type FeasibilityIndex struct {
	Variables []Variable

	// BySession groups variable indices (into Variables) by session.
	BySession map[int][]int
	// ByRoomSlot groups variable indices by (roomID, base slot index).
	ByRoomSlot map[roomSlotKey][]int
}

type roomSlotKey struct {
	RoomID string
	Slot   int
}

// BuildFeasibilityIndex applies the eight filter steps to every
// (session, room, start-slot) candidate and memoizes the surviving
// variables plus the indices the constraint model needs.
func BuildFeasibilityIndex(
	slots []Slot,
	sessions []Session,
	rooms []models.Room,
	groups map[string]models.StudentGroup,
	lecturers map[string]models.Lecturer,
	cfg FeasibilityConfig,
) *FeasibilityIndex {
	idx := &FeasibilityIndex{
		BySession:  make(map[int][]int),
		ByRoomSlot: make(map[roomSlotKey][]int),
	}

	// Step 6 capacity fallback is computed once per (group, venue category)
	// pair, not per candidate.
	lectureAllowance := make(map[string]map[string]bool) // groupID -> roomID -> allowed
	labAllowance := make(map[string]map[string]bool)

	for _, s := range sessions {
		spanLen := s.SpanSlots(cfg.SlotMinutes)
		if spanLen <= 0 || s.DurationMinutes%cfg.SlotMinutes != 0 {
			// Step 1: unsatisfiable duration, no variables for this session.
			continue
		}

		group, hasGroup := groups[s.GroupID]
		if !hasGroup {
			continue
		}
		lecturer, hasLecturer := lecturers[s.LecturerID]

		allowance := lectureAllowance
		if s.IsLab {
			allowance = labAllowance
		}
		allowed, ok := allowance[s.GroupID]
		if !ok {
			allowed = capacityAllowance(rooms, group.Size, s.IsLab)
			allowance[s.GroupID] = allowed
		}

		for t := range slots {
			window, ok := Span(slots, t, spanLen) // Step 2
			if !ok {
				continue
			}
			day := window[0].Day
			start := window[0].Start
			end := window[len(window)-1].End

			if start >= cfg.LunchStart && start < cfg.LunchEnd { // Step 3
				continue
			}
			if group.Year != nil && *group.Year == 5 && day == cfg.FridayLabel { // Step 4
				continue
			}

			for _, room := range rooms {
				isLabRoom := strings.HasPrefix(room.Name, LabRoomPrefix)
				if s.IsLab != isLabRoom { // Step 5
					continue
				}
				if !allowed[room.ID] { // Step 6
					continue
				}
				if !s.IsLab && !requirementsMatch(s.Requirements, room) { // Step 7
					continue
				}
				if !room.Contains(day, start, end) { // Step 8 (room)
					continue
				}
				if !s.IsLab && hasLecturer && !lecturer.Contains(day, start, end) { // Step 8 (lecturer, lectures only)
					continue
				}

				cover := make([]int, len(window))
				for i, sl := range window {
					cover[i] = sl.Index
				}

				v := Variable{SessionIdx: s.Index, RoomID: room.ID, SlotIdx: t, Cover: cover}
				vi := len(idx.Variables)
				idx.Variables = append(idx.Variables, v)
				idx.BySession[s.Index] = append(idx.BySession[s.Index], vi)
				for _, b := range cover {
					key := roomSlotKey{RoomID: room.ID, Slot: b}
					idx.ByRoomSlot[key] = append(idx.ByRoomSlot[key], vi)
				}
			}
		}
	}

	return idx
}

// capacityAllowance implements the capacity fallback: if some room in the
// given venue category fits the group, all such rooms are allowed
// (capacity is never re-checked); otherwise only rooms tied for the
// category's maximum capacity are allowed.
func capacityAllowance(rooms []models.Room, groupSize int, isLab bool) map[string]bool {
	var category []models.Room
	for _, r := range rooms {
		if strings.HasPrefix(r.Name, LabRoomPrefix) == isLab {
			category = append(category, r)
		}
	}

	fits := false
	maxCap := -1
	for _, r := range category {
		if r.Capacity >= groupSize {
			fits = true
		}
		if r.Capacity > maxCap {
			maxCap = r.Capacity
		}
	}

	allowed := make(map[string]bool, len(category))
	for _, r := range category {
		if fits || r.Capacity == maxCap {
			allowed[r.ID] = true
		}
	}
	return allowed
}

func requirementsMatch(req models.Requirements, room models.Room) bool {
	if req.FurnitureType != "" && !strings.EqualFold(req.FurnitureType, room.FurnitureType) {
		return false
	}
	return req.Equipment.Subset(room.Equipment)
}
