package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/university-timetable-api/internal/models"
)

// VersionRepository provides database access for timetable versions.
type VersionRepository struct {
	db *sqlx.DB
}

// NewVersionRepository creates a new VersionRepository.
func NewVersionRepository(db *sqlx.DB) *VersionRepository {
	return &VersionRepository{db: db}
}

// CreateWithTx inserts a new version inside the caller's transaction. A
// version is minted at the start of every solve, before any event exists.
func (r *VersionRepository) CreateWithTx(ctx context.Context, tx *sqlx.Tx, version *models.Version) error {
	if version.ID == "" {
		version.ID = uuid.NewString()
	}
	if version.CreatedAt.IsZero() {
		version.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO versions (id, name, created_at) VALUES (:id, :name, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, version); err != nil {
		return fmt.Errorf("create version: %w", err)
	}
	return nil
}

// List returns versions, most recent first.
func (r *VersionRepository) List(ctx context.Context) ([]models.Version, error) {
	const query = `SELECT id, name, created_at FROM versions ORDER BY created_at DESC`
	var versions []models.Version
	if err := r.db.SelectContext(ctx, &versions, query); err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	return versions, nil
}

// FindByID returns a version by id, or sql.ErrNoRows.
func (r *VersionRepository) FindByID(ctx context.Context, id string) (*models.Version, error) {
	const query = `SELECT id, name, created_at FROM versions WHERE id = $1 LIMIT 1`
	var v models.Version
	if err := r.db.GetContext(ctx, &v, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find version: %w", err)
	}
	return &v, nil
}
