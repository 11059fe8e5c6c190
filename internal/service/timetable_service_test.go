package service

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/university-timetable-api/internal/dto"
	"github.com/noah-isme/university-timetable-api/internal/models"
	"github.com/noah-isme/university-timetable-api/pkg/config"
)

type roomRepoStub struct {
	rooms   []models.Room
	created []models.Room
}

func (r *roomRepoStub) ListAll(ctx context.Context) ([]models.Room, error) { return r.rooms, nil }
func (r *roomRepoStub) Create(ctx context.Context, exec sqlx.ExtContext, room *models.Room) error {
	if room.ID == "" {
		room.ID = "synthetic-" + room.Name
	}
	r.created = append(r.created, *room)
	r.rooms = append(r.rooms, *room)
	return nil
}

type courseRepoStub struct{ courses []models.Course }

func (c *courseRepoStub) ListSchedulable(ctx context.Context) ([]models.Course, error) {
	return c.courses, nil
}

type groupRepoStub struct{ groups []models.StudentGroup }

func (g *groupRepoStub) ListAll(ctx context.Context) ([]models.StudentGroup, error) {
	return g.groups, nil
}

type lecturerRepoStub struct{ lecturers []models.Lecturer }

func (l *lecturerRepoStub) ListAll(ctx context.Context) ([]models.Lecturer, error) {
	return l.lecturers, nil
}

type versionRepoStub struct{ created []models.Version }

func (v *versionRepoStub) CreateWithTx(ctx context.Context, tx *sqlx.Tx, version *models.Version) error {
	if version.ID == "" {
		version.ID = "v1"
	}
	v.created = append(v.created, *version)
	return nil
}
func (v *versionRepoStub) List(ctx context.Context) ([]models.Version, error) { return v.created, nil }
func (v *versionRepoStub) FindByID(ctx context.Context, id string) (*models.Version, error) {
	for _, ver := range v.created {
		if ver.ID == id {
			return &ver, nil
		}
	}
	return nil, nil
}

type eventRepoStub struct{ events []models.TimetableEvent }

func (e *eventRepoStub) BulkCreateWithTx(ctx context.Context, tx *sqlx.Tx, events []models.TimetableEvent) error {
	e.events = append(e.events, events...)
	return nil
}
func (e *eventRepoStub) ListByVersion(ctx context.Context, versionID string) ([]models.TimetableEvent, error) {
	return e.events, nil
}

func hours(h int) time.Duration   { return time.Duration(h) * time.Hour }
func seconds(s int) time.Duration { return time.Duration(s) * time.Second }

func newSchedulerFixture(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return sqlx.NewDb(db, "postgres"), mock
}

func TestTimetableService_Generate_HappyPathSingleCourse(t *testing.T) {
	sqlxDB, mock := newSchedulerFixture(t)
	defer sqlxDB.Close()

	rooms := &roomRepoStub{rooms: []models.Room{
		{ID: "r50", Name: "R50", Capacity: 50},
		{ID: "r100", Name: "R100", Capacity: 100},
	}}
	courses := &courseRepoStub{courses: []models.Course{
		{ID: "c1", Code: "CSE 3001", WeeklyHours: 3, SessionMinutes: 60, GroupIDs: []string{"g1"}, LecturerIDs: []string{"l1"}},
	}}
	groups := &groupRepoStub{groups: []models.StudentGroup{{ID: "g1", Size: 40}}}
	lecturers := &lecturerRepoStub{lecturers: []models.Lecturer{{ID: "l1"}}}
	versions := &versionRepoStub{}
	events := &eventRepoStub{}

	// The repositories are in-memory stubs, so the transaction itself is the
	// only traffic the mock sees.
	mock.ExpectBegin()
	mock.ExpectCommit()

	svc := NewTimetableService(sqlxDB, rooms, courses, groups, lecturers, versions, events, config.SchedulerConfig{
		WeekDays: []string{"MON", "TUE", "WED"}, DayStart: hours(8), DayEnd: hours(12),
		SlotMinutes: 60, LunchStart: hours(13), LunchEnd: hours(14),
		SolveTimeout: seconds(5), MaxPairPenaltyVars: 1000,
	}, nil, nil, zap.NewNop())

	resp, err := svc.Generate(context.Background(), "fall-2026")
	require.NoError(t, err)
	assert.Len(t, resp.Events, 3)
	assert.NotEqual(t, "INFEASIBLE", resp.Status)
	assert.Equal(t, 0, resp.Penalty)

	days := map[string]bool{}
	for _, e := range resp.Events {
		days[e.Day] = true
	}
	assert.Len(t, days, 3, "sessions should spread across distinct days when room exists")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableService_Generate_LabSegregation(t *testing.T) {
	sqlxDB, mock := newSchedulerFixture(t)
	defer sqlxDB.Close()

	rooms := &roomRepoStub{rooms: []models.Room{{ID: "r1", Name: "R1", Capacity: 50}}}
	courses := &courseRepoStub{courses: []models.Course{
		{
			ID: "c1", Code: "CSE 2010", WeeklyHours: 2, SessionMinutes: 60,
			HasLab: true, LabWeeklySessions: 1, LabSessionMinutes: 120,
			GroupIDs: []string{"g1"}, LecturerIDs: []string{"l1"},
		},
	}}
	groups := &groupRepoStub{groups: []models.StudentGroup{{ID: "g1", Size: 30}}}
	lecturers := &lecturerRepoStub{lecturers: []models.Lecturer{{ID: "l1"}}}

	mock.ExpectBegin()
	mock.ExpectCommit()

	svc := NewTimetableService(sqlxDB, rooms, courses, groups, lecturers, &versionRepoStub{}, &eventRepoStub{}, config.SchedulerConfig{
		WeekDays: []string{"MON", "TUE", "WED"}, DayStart: hours(8), DayEnd: hours(14),
		SlotMinutes: 60, LunchStart: hours(12), LunchEnd: hours(13),
		SolveTimeout: seconds(5), MaxPairPenaltyVars: 1000,
	}, nil, nil, zap.NewNop())

	resp, err := svc.Generate(context.Background(), "fall-2026")
	require.NoError(t, err)

	require.Len(t, rooms.created, 1)
	assert.Equal(t, "LAB-Gg1", rooms.created[0].Name)
	assert.True(t, rooms.created[0].IsSynthetic)

	var labEvents, lectureEvents int
	for _, e := range resp.Events {
		if e.IsLab {
			labEvents++
			assert.Equal(t, rooms.created[0].ID, e.RoomID)
		} else {
			lectureEvents++
			assert.Equal(t, "r1", e.RoomID)
		}
	}
	assert.Equal(t, 1, labEvents)
	assert.Equal(t, 2, lectureEvents)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableService_Generate_InfeasibleRollsBack(t *testing.T) {
	sqlxDB, mock := newSchedulerFixture(t)
	defer sqlxDB.Close()

	rooms := &roomRepoStub{rooms: []models.Room{{ID: "r1", Name: "R1", Capacity: 50}}}
	// session_minutes=45 with a 60-minute base slot is not a whole multiple,
	// so the session's candidate set is empty -> infeasible.
	courses := &courseRepoStub{courses: []models.Course{
		{ID: "c1", Code: "CSE 3001", WeeklyHours: 1, SessionMinutes: 45, GroupIDs: []string{"g1"}, LecturerIDs: []string{"l1"}},
	}}
	groups := &groupRepoStub{groups: []models.StudentGroup{{ID: "g1", Size: 10}}}
	lecturers := &lecturerRepoStub{lecturers: []models.Lecturer{{ID: "l1"}}}

	mock.ExpectBegin()
	mock.ExpectRollback()

	svc := NewTimetableService(sqlxDB, rooms, courses, groups, lecturers, &versionRepoStub{}, &eventRepoStub{}, config.SchedulerConfig{
		WeekDays: []string{"MON"}, DayStart: hours(8), DayEnd: hours(12),
		SlotMinutes: 60, LunchStart: hours(13), LunchEnd: hours(14),
		SolveTimeout: seconds(5), MaxPairPenaltyVars: 1000,
	}, nil, nil, zap.NewNop())

	_, err := svc.Generate(context.Background(), "fall-2026")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableService_ValidateEvent_IsIdempotent(t *testing.T) {
	rooms := &roomRepoStub{rooms: []models.Room{{ID: "r1", Name: "LAB-Gg1", Capacity: 1000}}}
	groups := &groupRepoStub{groups: []models.StudentGroup{{ID: "g1", Size: 10}}}

	svc := NewTimetableService(nil, rooms, &courseRepoStub{}, groups, &lecturerRepoStub{}, &versionRepoStub{}, &eventRepoStub{},
		config.SchedulerConfig{WeekDays: []string{"MON"}, SlotMinutes: 60, LunchStart: hours(13), LunchEnd: hours(14)}, nil, nil, zap.NewNop())

	input := dto.EventInput{
		CourseID: "c1", RoomID: "r1", GroupID: "g1", LecturerID: "l1",
		Day: "MON", StartMinute: 8 * 60, EndMinute: 9 * 60, IsLab: false,
	}

	first, err := svc.ValidateEvent(context.Background(), input)
	require.NoError(t, err)
	second, err := svc.ValidateEvent(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Contains(t, first, "lab sessions must use a synthetic LAB- room and lectures must not")
}
