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

// RoomRepository provides database access for catalog rooms, including the
// synthetic lab rooms the solver creates.
type RoomRepository struct {
	db *sqlx.DB
}

// NewRoomRepository creates a new RoomRepository.
func NewRoomRepository(db *sqlx.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

const roomColumns = `id, name, capacity, furniture_type, equipment, availability, is_synthetic, created_at, updated_at`

// ListAll returns every room in the catalog.
func (r *RoomRepository) ListAll(ctx context.Context) ([]models.Room, error) {
	query := fmt.Sprintf(`SELECT %s FROM rooms ORDER BY name`, roomColumns)
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// FindByName returns a room by its unique name, or sql.ErrNoRows.
func (r *RoomRepository) FindByName(ctx context.Context, name string) (*models.Room, error) {
	query := fmt.Sprintf(`SELECT %s FROM rooms WHERE name = $1 LIMIT 1`, roomColumns)
	var room models.Room
	if err := r.db.GetContext(ctx, &room, query, name); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find room by name: %w", err)
	}
	return &room, nil
}

// Create inserts a room, upserting by name so repeated lab-room synthesis
// across solves is idempotent.
func (r *RoomRepository) Create(ctx context.Context, exec sqlx.ExtContext, room *models.Room) error {
	if room.ID == "" {
		room.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if room.CreatedAt.IsZero() {
		room.CreatedAt = now
	}
	room.UpdatedAt = now

	const query = `
		INSERT INTO rooms (id, name, capacity, furniture_type, equipment, availability, is_synthetic, created_at, updated_at)
		VALUES (:id, :name, :capacity, :furniture_type, :equipment, :availability, :is_synthetic, :created_at, :updated_at)
		ON CONFLICT (name) DO UPDATE SET capacity = EXCLUDED.capacity
		RETURNING id`

	rows, err := sqlx.NamedQueryContext(ctx, exec, query, room)
	if err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		_ = rows.Scan(&room.ID)
	}
	return nil
}
