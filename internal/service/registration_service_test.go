package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hyowon-dev/sugang-api/internal/models"
	"github.com/hyowon-dev/sugang-api/internal/repository"
	appErrors "github.com/hyowon-dev/sugang-api/pkg/errors"
)

type mockRegistrationRepo struct {
	current     []models.RegistrationDetail
	occupied    map[string]int
	registerErr error
	registered  []string
	deleteErr   error
	deleted     []string
	listCalls   int
	countCalls  int
}

func (m *mockRegistrationRepo) ListActiveByStudent(ctx context.Context, studentID string) ([]models.RegistrationDetail, error) {
	m.listCalls++
	return m.current, nil
}

func (m *mockRegistrationRepo) CountByLecture(ctx context.Context, lectureID string) (int, error) {
	m.countCalls++
	return m.occupied[lectureID], nil
}

func (m *mockRegistrationRepo) Register(ctx context.Context, studentID, lectureID string, maxCredits int) (*models.Registration, error) {
	if m.registerErr != nil {
		return nil, m.registerErr
	}
	m.registered = append(m.registered, lectureID)
	return &models.Registration{ID: "reg-new", StudentID: studentID, LectureID: lectureID, CreatedAt: time.Now()}, nil
}

func (m *mockRegistrationRepo) Delete(ctx context.Context, studentID, lectureID string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, lectureID)
	return nil
}

type mockLectureReader struct {
	lectures map[string]*models.Lecture
}

func (m *mockLectureReader) FindByID(ctx context.Context, id string) (*models.Lecture, error) {
	if l, ok := m.lectures[id]; ok {
		return l, nil
	}
	return nil, sql.ErrNoRows
}

var testWindow = RegistrationWindow{
	Opens:  time.Date(2021, 9, 1, 8, 0, 0, 0, time.UTC),
	Closes: time.Date(2021, 9, 5, 23, 59, 59, 0, time.UTC),
}

func insideWindow() time.Time  { return time.Date(2021, 9, 3, 12, 0, 0, 0, time.UTC) }
func outsideWindow() time.Time { return time.Date(2021, 8, 31, 12, 0, 0, 0, time.UTC) }

func registrationOf(lectureID, name string, day models.Weekday, start, end, credit int) models.RegistrationDetail {
	return models.RegistrationDetail{
		Registration: models.Registration{ID: "reg-" + lectureID, StudentID: "stu-1", LectureID: lectureID},
		LectureName:  name,
		Day:          day,
		StartPeriod:  start,
		EndPeriod:    end,
		Credit:       credit,
	}
}

func newTestService(repo *mockRegistrationRepo, lectures *mockLectureReader, now func() time.Time) *RegistrationService {
	return NewRegistrationService(repo, lectures, testWindow, 21, validator.New(), zap.NewNop(), nil).WithClock(now)
}

func TestRegisterAdmits(t *testing.T) {
	repo := &mockRegistrationRepo{occupied: map[string]int{"lec-1": 5}}
	lectures := &mockLectureReader{lectures: map[string]*models.Lecture{
		"lec-1": {ID: "lec-1", Name: "Algorithms", Day: models.WeekdayMonday, StartPeriod: 3, EndPeriod: 4, Credit: 3, Capacity: 40},
	}}
	svc := newTestService(repo, lectures, insideWindow)

	summary, err := svc.Register(context.Background(), "stu-1", RegisterRequest{LectureID: "lec-1"})
	require.NoError(t, err)
	assert.NotNil(t, summary)
	assert.Equal(t, []string{"lec-1"}, repo.registered)
}

func TestRegisterWindowClosedTouchesNoStore(t *testing.T) {
	repo := &mockRegistrationRepo{}
	lectures := &mockLectureReader{}
	svc := newTestService(repo, lectures, outsideWindow)

	_, err := svc.Register(context.Background(), "stu-1", RegisterRequest{LectureID: "lec-1"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrWindowClosed))
	assert.Zero(t, repo.listCalls)
	assert.Zero(t, repo.countCalls)
	assert.Empty(t, repo.registered)
}

func TestRegisterUnknownLecture(t *testing.T) {
	repo := &mockRegistrationRepo{}
	svc := newTestService(repo, &mockLectureReader{}, insideWindow)

	_, err := svc.Register(context.Background(), "stu-1", RegisterRequest{LectureID: "lec-404"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestRegisterDuplicate(t *testing.T) {
	repo := &mockRegistrationRepo{current: []models.RegistrationDetail{
		registrationOf("lec-1", "Algorithms", models.WeekdayMonday, 3, 4, 3),
	}}
	lectures := &mockLectureReader{lectures: map[string]*models.Lecture{
		"lec-1": {ID: "lec-1", Name: "Algorithms", Day: models.WeekdayMonday, StartPeriod: 3, EndPeriod: 4, Credit: 3, Capacity: 40},
	}}
	svc := newTestService(repo, lectures, insideWindow)

	_, err := svc.Register(context.Background(), "stu-1", RegisterRequest{LectureID: "lec-1"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrAlreadyRegistered))
	assert.Empty(t, repo.registered)
}

func TestRegisterTimeConflictNamesCollidingLecture(t *testing.T) {
	repo := &mockRegistrationRepo{current: []models.RegistrationDetail{
		registrationOf("lec-m", "Linear Algebra", models.WeekdayMonday, 1, 2, 3),
	}}
	lectures := &mockLectureReader{lectures: map[string]*models.Lecture{
		"lec-n": {ID: "lec-n", Name: "Statistics", Day: models.WeekdayMonday, StartPeriod: 2, EndPeriod: 3, Credit: 3, Capacity: 40},
	}}
	svc := newTestService(repo, lectures, insideWindow)

	_, err := svc.Register(context.Background(), "stu-1", RegisterRequest{LectureID: "lec-n"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrTimeConflict))
	assert.Contains(t, err.Error(), "Linear Algebra")
	assert.Contains(t, err.Error(), "lec-m")
}

func TestRegisterConflictIsOrderIndependent(t *testing.T) {
	a := &models.Lecture{ID: "lec-a", Name: "A", Day: models.WeekdayMonday, StartPeriod: 3, EndPeriod: 4, Credit: 3, Capacity: 40}
	b := &models.Lecture{ID: "lec-b", Name: "B", Day: models.WeekdayMonday, StartPeriod: 4, EndPeriod: 5, Credit: 3, Capacity: 40}

	// Holding A, requesting B.
	repo := &mockRegistrationRepo{current: []models.RegistrationDetail{
		registrationOf(a.ID, a.Name, a.Day, a.StartPeriod, a.EndPeriod, a.Credit),
	}}
	svc := newTestService(repo, &mockLectureReader{lectures: map[string]*models.Lecture{b.ID: b}}, insideWindow)
	_, err := svc.Register(context.Background(), "stu-1", RegisterRequest{LectureID: b.ID})
	assert.True(t, appErrors.Is(err, appErrors.ErrTimeConflict))

	// Holding B, requesting A.
	repo = &mockRegistrationRepo{current: []models.RegistrationDetail{
		registrationOf(b.ID, b.Name, b.Day, b.StartPeriod, b.EndPeriod, b.Credit),
	}}
	svc = newTestService(repo, &mockLectureReader{lectures: map[string]*models.Lecture{a.ID: a}}, insideWindow)
	_, err = svc.Register(context.Background(), "stu-1", RegisterRequest{LectureID: a.ID})
	assert.True(t, appErrors.Is(err, appErrors.ErrTimeConflict))
}

func TestRegisterCreditCap(t *testing.T) {
	// 19 credits held, 3 more requested: 22 > 21.
	repo := &mockRegistrationRepo{current: []models.RegistrationDetail{
		registrationOf("lec-1", "A", models.WeekdayMonday, 1, 2, 9),
		registrationOf("lec-2", "B", models.WeekdayTuesday, 1, 2, 10),
	}}
	lectures := &mockLectureReader{lectures: map[string]*models.Lecture{
		"lec-3": {ID: "lec-3", Name: "C", Day: models.WeekdayFriday, StartPeriod: 1, EndPeriod: 2, Credit: 3, Capacity: 40},
	}}
	svc := newTestService(repo, lectures, insideWindow)

	_, err := svc.Register(context.Background(), "stu-1", RegisterRequest{LectureID: "lec-3"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrCreditCapExceeded))
	assert.Empty(t, repo.registered)
}

func TestRegisterExactlyAtCreditCapAdmits(t *testing.T) {
	// 18 credits held, 3 more requested: 21 == cap.
	repo := &mockRegistrationRepo{
		current: []models.RegistrationDetail{
			registrationOf("lec-1", "A", models.WeekdayMonday, 1, 2, 9),
			registrationOf("lec-2", "B", models.WeekdayTuesday, 1, 2, 9),
		},
		occupied: map[string]int{"lec-3": 0},
	}
	lectures := &mockLectureReader{lectures: map[string]*models.Lecture{
		"lec-3": {ID: "lec-3", Name: "C", Day: models.WeekdayFriday, StartPeriod: 1, EndPeriod: 2, Credit: 3, Capacity: 40},
	}}
	svc := newTestService(repo, lectures, insideWindow)

	_, err := svc.Register(context.Background(), "stu-1", RegisterRequest{LectureID: "lec-3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"lec-3"}, repo.registered)
}

func TestRegisterLectureFull(t *testing.T) {
	repo := &mockRegistrationRepo{occupied: map[string]int{"lec-1": 1}}
	lectures := &mockLectureReader{lectures: map[string]*models.Lecture{
		"lec-1": {ID: "lec-1", Name: "A", Day: models.WeekdayMonday, StartPeriod: 3, EndPeriod: 4, Credit: 3, Capacity: 1},
	}}
	svc := newTestService(repo, lectures, insideWindow)

	_, err := svc.Register(context.Background(), "stu-1", RegisterRequest{LectureID: "lec-1"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrLectureFull))
	assert.Empty(t, repo.registered)
}

func TestRegisterLostCapacityRaceReportsLectureFull(t *testing.T) {
	// The advisory count sees a free seat but a concurrent commit takes
	// it before ours lands.
	repo := &mockRegistrationRepo{
		occupied:    map[string]int{"lec-1": 0},
		registerErr: repository.ErrCapacityExceeded,
	}
	lectures := &mockLectureReader{lectures: map[string]*models.Lecture{
		"lec-1": {ID: "lec-1", Name: "A", Day: models.WeekdayMonday, StartPeriod: 3, EndPeriod: 4, Credit: 3, Capacity: 1},
	}}
	svc := newTestService(repo, lectures, insideWindow)

	_, err := svc.Register(context.Background(), "stu-1", RegisterRequest{LectureID: "lec-1"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrLectureFull))
}

func TestRegisterLostConflictRaceReportsTimeConflict(t *testing.T) {
	// The advisory conflict check saw an empty load, but a concurrent
	// add by the same student committed an overlapping lecture first.
	repo := &mockRegistrationRepo{
		occupied:    map[string]int{"lec-1": 0},
		registerErr: repository.ErrTimeConflict,
	}
	lectures := &mockLectureReader{lectures: map[string]*models.Lecture{
		"lec-1": {ID: "lec-1", Name: "A", Day: models.WeekdayMonday, StartPeriod: 3, EndPeriod: 4, Credit: 3, Capacity: 40},
	}}
	svc := newTestService(repo, lectures, insideWindow)

	_, err := svc.Register(context.Background(), "stu-1", RegisterRequest{LectureID: "lec-1"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrTimeConflict))
}

func TestRegisterMissingLectureID(t *testing.T) {
	svc := newTestService(&mockRegistrationRepo{}, &mockLectureReader{}, insideWindow)

	_, err := svc.Register(context.Background(), "stu-1", RegisterRequest{})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestDrop(t *testing.T) {
	repo := &mockRegistrationRepo{}
	svc := newTestService(repo, &mockLectureReader{}, insideWindow)

	summary, err := svc.Drop(context.Background(), "stu-1", "lec-1")
	require.NoError(t, err)
	assert.NotNil(t, summary)
	assert.Equal(t, []string{"lec-1"}, repo.deleted)
}

func TestDropNotRegistered(t *testing.T) {
	repo := &mockRegistrationRepo{deleteErr: sql.ErrNoRows}
	svc := newTestService(repo, &mockLectureReader{}, insideWindow)

	_, err := svc.Drop(context.Background(), "stu-1", "lec-9")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotRegistered))
}

func TestDropOutsideWindow(t *testing.T) {
	repo := &mockRegistrationRepo{}
	svc := newTestService(repo, &mockLectureReader{}, outsideWindow)

	_, err := svc.Drop(context.Background(), "stu-1", "lec-1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrWindowClosed))
	assert.Empty(t, repo.deleted)
}

func TestExportTimetableCSV(t *testing.T) {
	repo := &mockRegistrationRepo{current: []models.RegistrationDetail{
		registrationOf("lec-1", "Algorithms", models.WeekdayMonday, 1, 2, 3),
	}}
	svc := newTestService(repo, &mockLectureReader{}, insideWindow)

	data, contentType, err := svc.ExportTimetable(context.Background(), "stu-1", "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)
	assert.Contains(t, string(data), "Algorithms")
}

func TestExportTimetableUnknownFormat(t *testing.T) {
	svc := newTestService(&mockRegistrationRepo{}, &mockLectureReader{}, insideWindow)

	_, _, err := svc.ExportTimetable(context.Background(), "stu-1", "xlsx")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestRegistrationWindowContains(t *testing.T) {
	assert.True(t, testWindow.Contains(testWindow.Opens))
	assert.True(t, testWindow.Contains(testWindow.Closes))
	assert.False(t, testWindow.Contains(testWindow.Opens.Add(-time.Second)))
	assert.False(t, testWindow.Contains(testWindow.Closes.Add(time.Second)))
}
