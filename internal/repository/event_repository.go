package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	appErrors "github.com/noah-isme/university-timetable-api/pkg/errors"

	"github.com/noah-isme/university-timetable-api/internal/models"
)

const pqUniqueViolation = "23505"

// EventRepository provides database access for committed timetable events.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// BulkCreateWithTx inserts every event inside the caller's transaction, one
// statement per row so a unique-index collision from a concurrent
// interactive write aborts the whole commit. Collisions are translated to
// appErrors.ErrConflict, per the recovery policy of re-solving.
func (r *EventRepository) BulkCreateWithTx(ctx context.Context, tx *sqlx.Tx, events []models.TimetableEvent) error {
	const query = `
		INSERT INTO timetable_events (id, version_id, course_id, room_id, group_id, lecturer_id, day, start_minute, end_minute, is_lab)
		VALUES (:id, :version_id, :course_id, :room_id, :group_id, :lecturer_id, :day, :start_minute, :end_minute, :is_lab)`

	for i := range events {
		if events[i].ID == "" {
			events[i].ID = uuid.NewString()
		}
		if _, err := tx.NamedExecContext(ctx, query, events[i]); err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
				return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status,
					"event conflicts with a concurrently committed event")
			}
			return fmt.Errorf("insert event: %w", err)
		}
	}
	return nil
}

// ListByVersion returns every event committed under a version.
func (r *EventRepository) ListByVersion(ctx context.Context, versionID string) ([]models.TimetableEvent, error) {
	const query = `
		SELECT id, version_id, course_id, room_id, group_id, lecturer_id, day, start_minute, end_minute, is_lab
		FROM timetable_events WHERE version_id = $1 ORDER BY day, start_minute`
	var events []models.TimetableEvent
	if err := r.db.SelectContext(ctx, &events, query, versionID); err != nil {
		return nil, fmt.Errorf("list events by version: %w", err)
	}
	return events, nil
}
