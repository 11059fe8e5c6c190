package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/university-timetable-api/internal/models"
)

func TestRoomListAll(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "capacity", "furniture_type", "equipment", "availability", "is_synthetic", "created_at", "updated_at"}).
		AddRow("r1", "R1", 50, "TABLES", []byte(`["PROJECTOR"]`), []byte(`[]`), false, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, capacity, furniture_type, equipment, availability, is_synthetic, created_at, updated_at FROM rooms ORDER BY name")).
		WillReturnRows(rows)

	rooms, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, 50, rooms[0].Capacity)
	assert.True(t, rooms[0].Equipment.Has("PROJECTOR"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoomCreate_UpsertsByNameAndKeepsID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewRoomRepository(db)

	mock.ExpectQuery("INSERT INTO rooms").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("existing-id"))

	room := &models.Room{Name: "LAB-Gg1", Capacity: 30, FurnitureType: "LAB", IsSynthetic: true}
	require.NoError(t, repo.Create(context.Background(), db, room))
	// Re-synthesizing a lab room that already exists adopts the stored id.
	assert.Equal(t, "existing-id", room.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
