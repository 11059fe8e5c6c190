package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/university-timetable-api/internal/models"
)

// CourseRepository provides database access for the course catalog,
// including its group and lecturer attachments.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository creates a new CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

const courseColumns = `id, code, weekly_hours, session_minutes, furniture_type, equipment, is_project,
	has_lab, lab_weekly_sessions, lab_session_minutes, lab_furniture_type, lab_equipment, department, created_at, updated_at`

// ListSchedulable returns every course with its attached group and lecturer
// ids populated in catalog (ordinal) order. Project courses are filtered at
// session expansion time, not here.
func (r *CourseRepository) ListSchedulable(ctx context.Context) ([]models.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses ORDER BY code`, courseColumns)
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}

	for i := range courses {
		groupIDs, err := r.groupIDs(ctx, courses[i].ID)
		if err != nil {
			return nil, err
		}
		lecturerIDs, err := r.lecturerIDs(ctx, courses[i].ID)
		if err != nil {
			return nil, err
		}
		courses[i].GroupIDs = groupIDs
		courses[i].LecturerIDs = lecturerIDs
	}

	return courses, nil
}

func (r *CourseRepository) groupIDs(ctx context.Context, courseID string) ([]string, error) {
	const query = `SELECT group_id FROM course_groups WHERE course_id = $1 ORDER BY ordinal`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, courseID); err != nil {
		return nil, fmt.Errorf("list course groups: %w", err)
	}
	return ids, nil
}

func (r *CourseRepository) lecturerIDs(ctx context.Context, courseID string) ([]string, error) {
	const query = `SELECT lecturer_id FROM course_lecturers WHERE course_id = $1 ORDER BY ordinal`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, courseID); err != nil {
		return nil, fmt.Errorf("list course lecturers: %w", err)
	}
	return ids, nil
}
