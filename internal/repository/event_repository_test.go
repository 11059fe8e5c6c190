package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/university-timetable-api/internal/models"
	appErrors "github.com/noah-isme/university-timetable-api/pkg/errors"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func TestBulkCreateWithTx_AssignsIDs(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO timetable_events").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO timetable_events").WillReturnResult(sqlmock.NewResult(1, 1))

	tx, err := db.Beginx()
	require.NoError(t, err)

	events := []models.TimetableEvent{
		{VersionID: "v1", CourseID: "c1", RoomID: "r1", GroupID: "g1", LecturerID: "l1", Day: "MON", StartMinute: 480, EndMinute: 540},
		{VersionID: "v1", CourseID: "c1", RoomID: "r1", GroupID: "g1", LecturerID: "l1", Day: "TUE", StartMinute: 480, EndMinute: 540},
	}
	require.NoError(t, repo.BulkCreateWithTx(context.Background(), tx, events))
	assert.NotEmpty(t, events[0].ID)
	assert.NotEmpty(t, events[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkCreateWithTx_UniqueViolationMapsToConflict(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO timetable_events").WillReturnError(&pq.Error{Code: pqUniqueViolation})

	tx, err := db.Beginx()
	require.NoError(t, err)

	events := []models.TimetableEvent{
		{VersionID: "v1", CourseID: "c1", RoomID: "r1", GroupID: "g1", LecturerID: "l1", Day: "MON", StartMinute: 480, EndMinute: 540},
	}
	err = repo.BulkCreateWithTx(context.Background(), tx, events)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByVersion(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	rows := sqlmock.NewRows([]string{"id", "version_id", "course_id", "room_id", "group_id", "lecturer_id", "day", "start_minute", "end_minute", "is_lab"}).
		AddRow("e1", "v1", "c1", "r1", "g1", "l1", "MON", 480, 540, false)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, version_id, course_id, room_id, group_id, lecturer_id, day, start_minute, end_minute, is_lab")).
		WithArgs("v1").
		WillReturnRows(rows)

	events, err := repo.ListByVersion(context.Background(), "v1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "MON", events[0].Day)
	assert.NoError(t, mock.ExpectationsWereMet())
}
