package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/university-timetable-api/internal/dto"
	"github.com/noah-isme/university-timetable-api/internal/models"
	"github.com/noah-isme/university-timetable-api/internal/scheduler"
	"github.com/noah-isme/university-timetable-api/pkg/config"
	appErrors "github.com/noah-isme/university-timetable-api/pkg/errors"
)

type roomRepository interface {
	ListAll(ctx context.Context) ([]models.Room, error)
	Create(ctx context.Context, exec sqlx.ExtContext, room *models.Room) error
}

type courseRepository interface {
	ListSchedulable(ctx context.Context) ([]models.Course, error)
}

type studentGroupRepository interface {
	ListAll(ctx context.Context) ([]models.StudentGroup, error)
}

type lecturerRepository interface {
	ListAll(ctx context.Context) ([]models.Lecturer, error)
}

type versionRepository interface {
	CreateWithTx(ctx context.Context, tx *sqlx.Tx, version *models.Version) error
	List(ctx context.Context) ([]models.Version, error)
	FindByID(ctx context.Context, id string) (*models.Version, error)
}

type eventRepository interface {
	BulkCreateWithTx(ctx context.Context, tx *sqlx.Tx, events []models.TimetableEvent) error
	ListByVersion(ctx context.Context, versionID string) ([]models.TimetableEvent, error)
}

// TimetableService orchestrates the solver pipeline against the catalog
// store: it mints a version, expands sessions, synthesizes lab rooms,
// filters and discharges the constraint model, and commits the result
// inside a single transaction, per the single-writer foreground model.
type TimetableService struct {
	db *sqlx.DB

	rooms     roomRepository
	courses   courseRepository
	groups    studentGroupRepository
	lecturers lecturerRepository
	versions  versionRepository
	events    eventRepository

	cfg     config.SchedulerConfig
	metrics *MetricsService
	cache   *CacheService
	logger  *zap.Logger
}

// NewTimetableService constructs a TimetableService. cache may be nil, in
// which case reads always fall through to the repositories.
func NewTimetableService(
	db *sqlx.DB,
	rooms roomRepository,
	courses courseRepository,
	groups studentGroupRepository,
	lecturers lecturerRepository,
	versions versionRepository,
	events eventRepository,
	cfg config.SchedulerConfig,
	metrics *MetricsService,
	cache *CacheService,
	logger *zap.Logger,
) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{
		db: db, rooms: rooms, courses: courses, groups: groups, lecturers: lecturers,
		versions: versions, events: events, cfg: cfg, metrics: metrics, cache: cache, logger: logger,
	}
}

const (
	versionsListCacheKey  = "timetable:versions:list"
	eventsByVersionPrefix = "timetable:events:"
)

// Generate creates a new version, runs a solve against the current catalog
// snapshot, and commits events atomically with the version. On any
// infeasible outcome no events are committed.
func (s *TimetableService) Generate(ctx context.Context, versionName string) (*dto.GenerateResponse, error) {
	if versionName == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "version_name is required")
	}

	solveCtx, cancel := context.WithTimeout(ctx, s.cfg.SolveTimeout)
	defer cancel()

	start := time.Now()

	// Snapshot reads: the whole catalog is read once, before any variable
	// creation, and is not revalidated while solving.
	rooms, err := s.rooms.ListAll(solveCtx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load rooms")
	}
	courses, err := s.courses.ListSchedulable(solveCtx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
	}
	groupList, err := s.groups.ListAll(solveCtx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student groups")
	}
	lecturerList, err := s.lecturers.ListAll(solveCtx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lecturers")
	}

	groupsByID := indexGroups(groupList)
	lecturersByID := indexLecturers(lecturerList)

	entries := buildCatalogEntries(courses, groupsByID, lecturersByID)

	slotMinutes := s.cfg.SlotMinutes
	if slotMinutes <= 0 {
		slotMinutes = 30
	}
	expanded := scheduler.ExpandCourses(entries, slotMinutes)
	for _, w := range expanded.Warnings {
		s.logger.Warn("session expansion warning", zap.String("warning", w))
	}

	newRooms := scheduler.EnsureVirtualLabRooms(expanded.Sessions, groupsByID, rooms)

	tx, err := s.db.BeginTxx(solveCtx, nil)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	// Synthetic lab rooms are the only writes that may precede variable
	// creation, and must be committed (within this same transaction) before
	// room enumeration proceeds.
	for i := range newRooms {
		if err := s.rooms.Create(solveCtx, tx, &newRooms[i]); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist synthetic lab room")
		}
	}
	allRooms := append(append([]models.Room{}, rooms...), newRooms...)

	days := s.cfg.WeekDays
	if len(days) == 0 {
		days = []string{"MON", "TUE", "WED", "THU", "FRI"}
	}
	grid := scheduler.BuildGrid(days, minutesOf(s.cfg.DayStart), minutesOf(s.cfg.DayEnd), slotMinutes)

	feasibilityCfg := scheduler.FeasibilityConfig{
		SlotMinutes: slotMinutes,
		LunchStart:  minutesOf(s.cfg.LunchStart),
		LunchEnd:    minutesOf(s.cfg.LunchEnd),
		FridayLabel: fridayLabel(days),
	}
	index := scheduler.BuildFeasibilityIndex(grid, expanded.Sessions, allRooms, groupsByID, lecturersByID, feasibilityCfg)

	result := scheduler.Solve(solveCtx, expanded.Sessions, grid, index, scheduler.SolveConfig{
		MaxPairPenaltyVars: s.cfg.MaxPairPenaltyVars,
	})
	for _, w := range result.Warnings {
		s.logger.Warn("solve warning", zap.String("warning", w))
	}

	if s.metrics != nil {
		s.metrics.ObserveSolve(strings.ToLower(string(result.Status)), time.Since(start))
	}

	if result.Status == scheduler.StatusInfeasible {
		s.logger.Warn("solve reported infeasible",
			zap.String("version_name", versionName),
			zap.Ints("unplaced_sessions", result.UnplacedSessions))
		return nil, appErrors.Clone(appErrors.ErrInfeasible, "no feasible timetable found for the current catalog")
	}

	version := &models.Version{Name: versionName}
	if err := s.versions.CreateWithTx(solveCtx, tx, version); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create version")
	}

	events := scheduler.Materialize(version.ID, expanded.Sessions, grid, result.Result)
	if err := s.events.BulkCreateWithTx(solveCtx, tx, events); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit solve")
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, versionsListCacheKey); err != nil {
			s.logger.Warn("failed to invalidate versions cache", zap.Error(err))
		}
	}

	return &dto.GenerateResponse{
		Version:  *version,
		Events:   events,
		Status:   string(result.Status),
		Penalty:  result.Penalty,
		Warnings: append(expanded.Warnings, result.Warnings...),
	}, nil
}

// ListVersions returns every committed version, most recent first. Reads are
// served from cache when available, since the list only changes on Generate.
func (s *TimetableService) ListVersions(ctx context.Context) (dto.VersionListResponse, error) {
	var cached dto.VersionListResponse
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, versionsListCacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	versions, err := s.versions.List(ctx)
	if err != nil {
		return dto.VersionListResponse{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list versions")
	}
	res := dto.VersionListResponse{Versions: versions}
	if s.cache != nil {
		_ = s.cache.Set(ctx, versionsListCacheKey, res, 30*time.Second)
	}
	return res, nil
}

// ListEvents returns every event committed under a version. A committed
// version's events never change, so hits may be cached indefinitely (bounded
// by the cache's default TTL).
func (s *TimetableService) ListEvents(ctx context.Context, versionID string) (dto.EventListResponse, error) {
	cacheKey := eventsByVersionPrefix + versionID
	var cached dto.EventListResponse
	if s.cache != nil {
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	if _, err := s.versions.FindByID(ctx, versionID); err != nil {
		return dto.EventListResponse{}, appErrors.Clone(appErrors.ErrNotFound, "version not found")
	}
	events, err := s.events.ListByVersion(ctx, versionID)
	if err != nil {
		return dto.EventListResponse{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	res := dto.EventListResponse{Events: events}
	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, res, 0)
	}
	return res, nil
}

// ValidateEvent is a pure predicate reused by the (out of scope) interactive
// edit path: it never errors on invalid input and always returns a sorted,
// de-duplicated violation list. When input.VersionID is set, the candidate is
// also checked for room/group/lecturer overlap against that version's
// already-committed events, the same invariants a solve must satisfy.
func (s *TimetableService) ValidateEvent(ctx context.Context, input dto.EventInput) ([]string, error) {
	violations := map[string]bool{}

	if input.EndMinute <= input.StartMinute {
		violations["event end must be after start"] = true
	}
	slotMinutes := s.cfg.SlotMinutes
	if slotMinutes <= 0 {
		slotMinutes = 30
	}
	if (input.EndMinute-input.StartMinute)%slotMinutes != 0 {
		violations["event duration must be a multiple of the base slot length"] = true
	}

	lunchStart, lunchEnd := minutesOf(s.cfg.LunchStart), minutesOf(s.cfg.LunchEnd)
	if input.StartMinute >= lunchStart && input.StartMinute < lunchEnd {
		violations["event must not start during the lunch window"] = true
	}

	groupList, err := s.groups.ListAll(ctx)
	if err != nil {
		violations["could not verify group constraints"] = true
	} else {
		groupsByID := indexGroups(groupList)
		if g, ok := groupsByID[input.GroupID]; ok {
			if g.Year != nil && *g.Year == 5 && input.Day == fridayLabel(s.cfg.WeekDays) {
				violations["year-5 groups may not be scheduled on Friday"] = true
			}
		}
	}

	rooms, err := s.rooms.ListAll(ctx)
	if err == nil {
		for _, r := range rooms {
			if r.ID != input.RoomID {
				continue
			}
			isLabRoom := len(r.Name) >= len(scheduler.LabRoomPrefix) && r.Name[:len(scheduler.LabRoomPrefix)] == scheduler.LabRoomPrefix
			if input.IsLab != isLabRoom {
				violations["lab sessions must use a synthetic LAB- room and lectures must not"] = true
			}
			if !r.Contains(input.Day, input.StartMinute, input.EndMinute) {
				violations["event is outside the room's availability window"] = true
			}
			break
		}
	}

	if !input.IsLab {
		lecturerList, err := s.lecturers.ListAll(ctx)
		if err == nil {
			lecturersByID := indexLecturers(lecturerList)
			if l, ok := lecturersByID[input.LecturerID]; ok {
				if !l.Contains(input.Day, input.StartMinute, input.EndMinute) {
					violations["event is outside the lecturer's availability window"] = true
				}
			}
		}
	}

	if input.VersionID != "" {
		candidate := models.TimetableEvent{
			RoomID: input.RoomID, GroupID: input.GroupID, LecturerID: input.LecturerID,
			Day: input.Day, StartMinute: input.StartMinute, EndMinute: input.EndMinute, IsLab: input.IsLab,
		}
		committed, err := s.events.ListByVersion(ctx, input.VersionID)
		if err != nil {
			violations["could not verify overlap against committed events"] = true
		} else {
			for _, e := range committed {
				if !candidate.Overlaps(e) {
					continue
				}
				if e.RoomID == candidate.RoomID {
					violations["event overlaps another event in the same room"] = true
				}
				if e.GroupID == candidate.GroupID {
					violations["event overlaps another event for the same group"] = true
				}
				if !candidate.IsLab && !e.IsLab && e.LecturerID == candidate.LecturerID {
					violations["event overlaps another event for the same lecturer"] = true
				}
			}
		}
	}

	if len(violations) == 0 {
		return []string{}, nil
	}

	out := make([]string, 0, len(violations))
	for v := range violations {
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

func indexGroups(groups []models.StudentGroup) map[string]models.StudentGroup {
	m := make(map[string]models.StudentGroup, len(groups))
	for _, g := range groups {
		m[g.ID] = g
	}
	return m
}

func indexLecturers(lecturers []models.Lecturer) map[string]models.Lecturer {
	m := make(map[string]models.Lecturer, len(lecturers))
	for _, l := range lecturers {
		m[l.ID] = l
	}
	return m
}

func buildCatalogEntries(courses []models.Course, groups map[string]models.StudentGroup, lecturers map[string]models.Lecturer) []scheduler.CourseCatalogEntry {
	entries := make([]scheduler.CourseCatalogEntry, 0, len(courses))
	for _, c := range courses {
		entry := scheduler.CourseCatalogEntry{Course: c}
		for _, gid := range c.GroupIDs {
			if g, ok := groups[gid]; ok {
				entry.Groups = append(entry.Groups, g)
			}
		}
		for _, lid := range c.LecturerIDs {
			if l, ok := lecturers[lid]; ok {
				entry.Lecturers = append(entry.Lecturers, l)
			}
		}
		entries = append(entries, entry)
	}
	return entries
}

func minutesOf(d time.Duration) int {
	return int(d / time.Minute)
}

func fridayLabel(days []string) string {
	for _, d := range days {
		if d == "FRI" || d == "Fri" || d == "FRIDAY" {
			return d
		}
	}
	return "FRI"
}
