package scheduler

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/noah-isme/university-timetable-api/internal/models"
)

// yearHintPattern extracts a leading year digit from a course code such as
// "CSE-2031" or "AEN 5001".
var yearHintPattern = regexp.MustCompile(`^[A-Z]{2,}\s*-?\s*(\d{4})$`)

// defaultLabSessionMinutesMultiplier times the base slot length is the lab
// session duration used when a course declares a lab component but leaves
// lab_session_minutes unset.
const defaultLabSessionMinutesMultiplier = 3

// ExpandResult is the output of expanding a course catalog into sessions.
type ExpandResult struct {
	Sessions []Session
	Warnings []string
}

// ExpandCourses converts each schedulable course into a multiset of atomic
// sessions, one set of lecture sessions per attached (year-compatible) group
// and, when the course has a lab component, one set of lab sessions per
// group as well.
func ExpandCourses(entries []CourseCatalogEntry, baseSlotMinutes int) ExpandResult {
	var result ExpandResult

	for _, entry := range entries {
		c := entry.Course

		if c.IsProject {
			continue
		}
		if len(entry.Groups) == 0 || len(entry.Lecturers) == 0 {
			continue
		}

		lecturer := entry.Lecturers[0]
		groups := filterGroupsByYearHint(c.Code, entry.Groups)
		if len(groups) == 0 {
			continue
		}

		labMinutes := c.LabSessionMinutes
		if c.HasLab && labMinutes <= 0 {
			labMinutes = baseSlotMinutes * defaultLabSessionMinutesMultiplier
		}

		for _, g := range groups {
			if c.WeeklyHours > 0 && c.SessionMinutes > 0 {
				numSessions := int(math.Ceil(c.WeeklyHours * 60 / float64(c.SessionMinutes)))
				if requested := c.WeeklyHours * 60; float64(numSessions*c.SessionMinutes) > requested {
					result.Warnings = append(result.Warnings, fmt.Sprintf(
						"course %s: weekly_hours*60=%.0f not a multiple of session_minutes=%d, rounded up to %d sessions",
						c.Code, requested, c.SessionMinutes, numSessions))
				}
				for i := 0; i < numSessions; i++ {
					result.Sessions = append(result.Sessions, Session{
						CourseID:        c.ID,
						GroupID:         g.ID,
						LecturerID:      lecturer.ID,
						DurationMinutes: c.SessionMinutes,
						IsLab:           false,
						Requirements:    c.LectureRequirements(),
					})
				}
			}

			if c.HasLab && c.LabWeeklySessions > 0 {
				for i := 0; i < c.LabWeeklySessions; i++ {
					result.Sessions = append(result.Sessions, Session{
						CourseID:        c.ID,
						GroupID:         g.ID,
						LecturerID:      lecturer.ID,
						DurationMinutes: labMinutes,
						IsLab:           true,
						Requirements:    c.LabRequirements(),
					})
				}
			}
		}
	}

	for i := range result.Sessions {
		result.Sessions[i].Index = i
	}

	return result
}

// filterGroupsByYearHint drops groups whose declared year disagrees with a
// year hint parsed from the course code. Groups without a declared year are
// always kept. Only a leading digit of 1-5 is treated as a year hint; any
// other leading digit (e.g. a department code that happens to start with a
// 4-digit number outside that range) yields no hint, so no group is dropped.
func filterGroupsByYearHint(code string, groups []models.StudentGroup) []models.StudentGroup {
	m := yearHintPattern.FindStringSubmatch(strings.ToUpper(strings.TrimSpace(code)))
	if m == nil {
		return groups
	}
	hint, err := strconv.Atoi(string(m[1][0]))
	if err != nil || hint < 1 || hint > 5 {
		return groups
	}

	kept := make([]models.StudentGroup, 0, len(groups))
	for _, g := range groups {
		if g.Year != nil && *g.Year != hint {
			continue
		}
		kept = append(kept, g)
	}
	return kept
}
