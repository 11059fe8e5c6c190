package scheduler

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"
)

// SolveConfig tunes the constraint discharge.
type SolveConfig struct {
	// MaxPairPenaltyVars caps how many same-day soft-penalty pairs are
	// enumerated per (course, group); beyond the cap, remaining pairs for
	// that group are skipped and a warning is recorded rather than silently
	// dropped.
	MaxPairPenaltyVars int
}

// SolveOutput extends Result with any non-fatal warnings raised while
// discharging the model (e.g. a penalty-pair cap was hit).
type SolveOutput struct {
	Result
	Warnings []string
}

type placement struct {
	variableIdx int
	roomID      string
	day         string
	start       int
	cover       []int
}

// coursePairKey identifies a (course, group) pair, the scope of both the
// same-day soft penalty and the day-spreading preference tryPlace applies
// while placing.
type coursePairKey struct{ courseID, groupID string }

// coursePairKeyFor returns the pair key for s. Every session of the pair
// participates, labs included: stacked lab blocks on one day are penalized
// the same way stacked lectures are.
func coursePairKeyFor(s Session) coursePairKey {
	return coursePairKey{courseID: s.CourseID, groupID: s.GroupID}
}

// Local search bounds for the penalty-minimizing pass.
const (
	annealInitialTemp = 4.0
	annealCoolingRate = 0.995
	annealMaxIters    = 20000
)

// Solve discharges the constraint model described by idx: exactly-one
// placement per session, room/group/lecturer mutual exclusion over base
// slots, and a soft same-day penalty for session pairs sharing a course and
// group. Placement is greedy in ascending domain-size order with bounded
// repair; once every session is placed, a randomized local search pass
// tries to lower the same-day penalty within the remaining deadline. It
// returns OPTIMAL when a zero-penalty assignment is found, FEASIBLE when
// every session is placed with penalty greater than zero, and INFEASIBLE
// when a session has no candidate or the context is done before every
// session is placed.
func Solve(ctx context.Context, sessions []Session, slots []Slot, idx *FeasibilityIndex, cfg SolveConfig) SolveOutput {
	out := SolveOutput{}

	// Exactly-one: a session with an empty variable set is an unsatisfiable
	// clause: report infeasible immediately, no partial commit.
	var unplaced []int
	for _, s := range sessions {
		if len(idx.BySession[s.Index]) == 0 {
			unplaced = append(unplaced, s.Index)
		}
	}
	if len(unplaced) > 0 {
		out.Status = StatusInfeasible
		out.UnplacedSessions = unplaced
		return out
	}

	order := make([]int, len(sessions))
	for i, s := range sessions {
		order[i] = s.Index
	}
	sort.Slice(order, func(i, j int) bool {
		return len(idx.BySession[order[i]]) < len(idx.BySession[order[j]])
	})

	roomBusy := make(map[string]map[int]int)     // roomID -> baseSlot -> sessionIdx
	groupBusy := make(map[string]map[int]int)    // groupID -> baseSlot -> sessionIdx
	lecturerBusy := make(map[string]map[int]int) // lecturerID -> baseSlot -> sessionIdx
	placed := make(map[int]placement)

	sessionByIdx := make(map[int]Session, len(sessions))
	for _, s := range sessions {
		sessionByIdx[s.Index] = s
	}

	// pairDayCount tracks, per (course,group) pair and day, how many
	// already-placed sessions of that pair land on that day. It lets
	// placement prefer an unused day for the same pair before falling back
	// to a day that already has one of its siblings, which is what spreads
	// a course's sessions across the week instead of stacking them on the
	// first day with room.
	pairDayCount := make(map[coursePairKey]map[string]int)

	place := func(sIdx int, vi int) {
		v := idx.Variables[vi]
		slot := slots[v.SlotIdx]
		s := sessionByIdx[sIdx]
		if roomBusy[v.RoomID] == nil {
			roomBusy[v.RoomID] = make(map[int]int)
		}
		if groupBusy[s.GroupID] == nil {
			groupBusy[s.GroupID] = make(map[int]int)
		}
		if s.LecturerID != "" && lecturerBusy[s.LecturerID] == nil {
			lecturerBusy[s.LecturerID] = make(map[int]int)
		}
		for _, b := range v.Cover {
			roomBusy[v.RoomID][b] = sIdx
			groupBusy[s.GroupID][b] = sIdx
			if !s.IsLab && s.LecturerID != "" {
				lecturerBusy[s.LecturerID][b] = sIdx
			}
		}
		k := coursePairKeyFor(s)
		if pairDayCount[k] == nil {
			pairDayCount[k] = make(map[string]int)
		}
		pairDayCount[k][slot.Day]++
		placed[sIdx] = placement{variableIdx: vi, roomID: v.RoomID, day: slot.Day, start: slot.Start, cover: v.Cover}
	}

	unplace := func(sIdx int) {
		p, ok := placed[sIdx]
		if !ok {
			return
		}
		s := sessionByIdx[sIdx]
		for _, b := range p.cover {
			delete(roomBusy[p.roomID], b)
			delete(groupBusy[s.GroupID], b)
			if !s.IsLab && s.LecturerID != "" {
				delete(lecturerBusy[s.LecturerID], b)
			}
		}
		k := coursePairKeyFor(s)
		if pairDayCount[k] != nil {
			pairDayCount[k][p.day]--
			if pairDayCount[k][p.day] <= 0 {
				delete(pairDayCount[k], p.day)
			}
		}
		delete(placed, sIdx)
	}

	conflictsFor := func(sIdx int, v Variable) []int {
		s := sessionByIdx[sIdx]
		var conflicting []int
		seen := make(map[int]bool)
		for _, b := range v.Cover {
			if occ, ok := roomBusy[v.RoomID][b]; ok && occ != sIdx && !seen[occ] {
				conflicting = append(conflicting, occ)
				seen[occ] = true
			}
			if occ, ok := groupBusy[s.GroupID][b]; ok && occ != sIdx && !seen[occ] {
				conflicting = append(conflicting, occ)
				seen[occ] = true
			}
			if !s.IsLab && s.LecturerID != "" {
				if occ, ok := lecturerBusy[s.LecturerID][b]; ok && occ != sIdx && !seen[occ] {
					conflicting = append(conflicting, occ)
					seen[occ] = true
				}
			}
		}
		return conflicting
	}

	// tryPlace walks a session's candidates day-aware: it first looks for a
	// conflict-free candidate on a day no sibling session (same course and
	// group) already occupies, only falling back to a day a sibling already
	// uses when no such candidate exists. This is what spreads a course's
	// sessions across the week instead of stacking them on the first day
	// with room, per the same-day soft penalty's objective.
	tryPlace := func(sIdx int) bool {
		s := sessionByIdx[sIdx]
		k := coursePairKeyFor(s)
		for _, vi := range idx.BySession[sIdx] {
			v := idx.Variables[vi]
			if pairDayCount[k][slots[v.SlotIdx].Day] > 0 {
				continue
			}
			if len(conflictsFor(sIdx, v)) == 0 {
				place(sIdx, vi)
				return true
			}
		}
		for _, vi := range idx.BySession[sIdx] {
			v := idx.Variables[vi]
			if len(conflictsFor(sIdx, v)) == 0 {
				place(sIdx, vi)
				return true
			}
		}
		return false
	}

	// Bounded repair: when a session can't be placed directly, pick one of
	// its candidates with at most maxRepairAttemptsPerSession conflicting
	// sessions, unplace those and re-place each through tryPlace (which may
	// land it back on the same candidate), then retry.
	const maxRepairAttemptsPerSession = 8
	repairAndPlace := func(sIdx int) bool {
		if tryPlace(sIdx) {
			return true
		}
		for _, vi := range idx.BySession[sIdx] {
			v := idx.Variables[vi]
			conflicting := conflictsFor(sIdx, v)
			if len(conflicting) == 0 || len(conflicting) > maxRepairAttemptsPerSession {
				continue
			}
			moved := make([]int, 0, len(conflicting))
			ok := true
			for _, other := range conflicting {
				unplace(other)
				if tryPlace(other) {
					moved = append(moved, other)
					continue
				}
				ok = false
				break
			}
			if ok && len(conflictsFor(sIdx, v)) == 0 {
				place(sIdx, vi)
				return true
			}
			// Repair failed: unplace the sessions moved so far, re-place every
			// displaced session through tryPlace (not necessarily on the
			// candidate it held before) and try the next candidate for sIdx.
			for _, other := range moved {
				unplace(other)
			}
			for _, other := range conflicting {
				if _, ok := placed[other]; !ok {
					if !tryPlace(other) {
						// best effort; leave unplaced, will surface below
						continue
					}
				}
			}
		}
		return tryPlace(sIdx)
	}

	var unplacedAfterSolve []int
	for _, sIdx := range order {
		select {
		case <-ctx.Done():
			unplacedAfterSolve = append(unplacedAfterSolve, sIdx)
			continue
		default:
		}
		if !repairAndPlace(sIdx) {
			unplacedAfterSolve = append(unplacedAfterSolve, sIdx)
		}
	}
	// A session displaced by a failed repair and never re-placed is missing
	// from placed even though its own turn succeeded; report it as well.
	unplacedAfterSolve = unplacedAfterSolve[:0]
	for _, sIdx := range order {
		if _, ok := placed[sIdx]; !ok {
			unplacedAfterSolve = append(unplacedAfterSolve, sIdx)
		}
	}

	if len(unplacedAfterSolve) > 0 {
		out.Status = StatusInfeasible
		out.UnplacedSessions = unplacedAfterSolve
		return out
	}

	groupsByPair := pairGroups(sessionByIdx)
	penalty, _ := countSameDayPenalty(groupsByPair, placed, cfg.MaxPairPenaltyVars)

	// Randomized local search over the feasible assignment: move a single
	// session to another of its candidates, keep hard constraints via
	// conflictsFor, accept worse moves with the Metropolis rule while the
	// temperature cools, and keep the best assignment seen. Bounded by the
	// iteration cap and the caller's deadline.
	if penalty > 0 {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
		snapshot := func() map[int]int {
			m := make(map[int]int, len(placed))
			for sIdx, p := range placed {
				m[sIdx] = p.variableIdx
			}
			return m
		}
		best := snapshot()
		bestPenalty := penalty
		current := penalty
		temperature := annealInitialTemp

		for i := 0; i < annealMaxIters && bestPenalty > 0; i++ {
			if ctx.Err() != nil {
				break
			}
			sIdx := order[rnd.Intn(len(order))]
			candidates := idx.BySession[sIdx]
			vi := candidates[rnd.Intn(len(candidates))]
			prev := placed[sIdx].variableIdx
			if vi == prev {
				continue
			}
			unplace(sIdx)
			if len(conflictsFor(sIdx, idx.Variables[vi])) != 0 {
				place(sIdx, prev)
				continue
			}
			place(sIdx, vi)
			moved, _ := countSameDayPenalty(groupsByPair, placed, cfg.MaxPairPenaltyVars)
			delta := float64(moved - current)
			if delta <= 0 || rnd.Float64() < math.Exp(-delta/temperature) {
				current = moved
				if current < bestPenalty {
					bestPenalty = current
					best = snapshot()
				}
			} else {
				unplace(sIdx)
				place(sIdx, prev)
			}
			temperature *= annealCoolingRate
		}

		// Restore the best assignment seen. Unplace every drifted session
		// first so no transient overlap corrupts the busy maps.
		var dirty []int
		for sIdx, vi := range best {
			if placed[sIdx].variableIdx != vi {
				dirty = append(dirty, sIdx)
			}
		}
		for _, sIdx := range dirty {
			unplace(sIdx)
		}
		for _, sIdx := range dirty {
			place(sIdx, best[sIdx])
		}
	}

	penalty, warnings := countSameDayPenalty(groupsByPair, placed, cfg.MaxPairPenaltyVars)
	out.Warnings = warnings

	assignments := make([]Assignment, 0, len(placed))
	for sIdx, p := range placed {
		assignments = append(assignments, Assignment{SessionIdx: sIdx, RoomID: p.roomID, SlotIdx: idx.Variables[p.variableIdx].SlotIdx})
	}
	sort.Slice(assignments, func(i, j int) bool { return assignments[i].SessionIdx < assignments[j].SessionIdx })

	out.Assignments = assignments
	out.Penalty = penalty
	if penalty == 0 {
		out.Status = StatusOptimal
	} else {
		out.Status = StatusFeasible
	}
	return out
}

// pairGroups indexes session indices by their (course, group) pair.
func pairGroups(sessionByIdx map[int]Session) map[coursePairKey][]int {
	groups := make(map[coursePairKey][]int)
	for sIdx, s := range sessionByIdx {
		k := coursePairKeyFor(s)
		groups[k] = append(groups[k], sIdx)
	}
	for k := range groups {
		sort.Ints(groups[k])
	}
	return groups
}

// countSameDayPenalty counts, per (course, group) pair, how many placed
// session pairs land on the same day. Enumeration is capped at maxPairVars
// per (course, group); when the cap is hit the remainder is skipped and
// reported as a warning rather than silently dropped.
func countSameDayPenalty(groups map[coursePairKey][]int, placed map[int]placement, maxPairVars int) (int, []string) {
	var warnings []string
	penalty := 0
	for k, sessionIdxs := range groups {
		enumerated := 0
		capped := false
		for i := 0; i < len(sessionIdxs) && !capped; i++ {
			for j := i + 1; j < len(sessionIdxs); j++ {
				if maxPairVars > 0 && enumerated >= maxPairVars {
					capped = true
					break
				}
				enumerated++
				a, okA := placed[sessionIdxs[i]]
				b, okB := placed[sessionIdxs[j]]
				if okA && okB && a.day == b.day {
					penalty++
				}
			}
		}
		if capped {
			warnings = append(warnings, fmt.Sprintf(
				"course %s group %s: same-day penalty pairs exceeded cap of %d, remaining pairs skipped",
				k.courseID, k.groupID, maxPairVars))
		}
	}
	return penalty, warnings
}
