package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/university-timetable-api/internal/models"
)

// LecturerRepository provides database access for lecturers.
type LecturerRepository struct {
	db *sqlx.DB
}

// NewLecturerRepository creates a new LecturerRepository.
func NewLecturerRepository(db *sqlx.DB) *LecturerRepository {
	return &LecturerRepository{db: db}
}

// ListAll returns every lecturer.
func (r *LecturerRepository) ListAll(ctx context.Context) ([]models.Lecturer, error) {
	const query = `SELECT id, name, department, availability FROM lecturers ORDER BY name`
	var lecturers []models.Lecturer
	if err := r.db.SelectContext(ctx, &lecturers, query); err != nil {
		return nil, fmt.Errorf("list lecturers: %w", err)
	}
	return lecturers, nil
}
