package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/university-timetable-api/internal/models"
)

// StudentGroupRepository provides database access for student groups.
type StudentGroupRepository struct {
	db *sqlx.DB
}

// NewStudentGroupRepository creates a new StudentGroupRepository.
func NewStudentGroupRepository(db *sqlx.DB) *StudentGroupRepository {
	return &StudentGroupRepository{db: db}
}

// ListAll returns every student group.
func (r *StudentGroupRepository) ListAll(ctx context.Context) ([]models.StudentGroup, error) {
	const query = `SELECT id, name, size, year, department, track, lecture_group FROM student_groups ORDER BY name`
	var groups []models.StudentGroup
	if err := r.db.SelectContext(ctx, &groups, query); err != nil {
		return nil, fmt.Errorf("list student groups: %w", err)
	}
	return groups, nil
}
