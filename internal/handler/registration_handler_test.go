package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyowon-dev/sugang-api/internal/middleware"
	"github.com/hyowon-dev/sugang-api/internal/models"
	"github.com/hyowon-dev/sugang-api/internal/service"
)

type stubRegistrationRepo struct {
	current []models.RegistrationDetail
}

func (s *stubRegistrationRepo) ListActiveByStudent(ctx context.Context, studentID string) ([]models.RegistrationDetail, error) {
	return s.current, nil
}

func (s *stubRegistrationRepo) CountByLecture(ctx context.Context, lectureID string) (int, error) {
	return 0, nil
}

func (s *stubRegistrationRepo) Register(ctx context.Context, studentID, lectureID string, maxCredits int) (*models.Registration, error) {
	reg := models.Registration{ID: "reg-1", StudentID: studentID, LectureID: lectureID, CreatedAt: time.Now()}
	s.current = append(s.current, models.RegistrationDetail{Registration: reg, LectureName: "Algorithms", Day: models.WeekdayMonday, StartPeriod: 1, EndPeriod: 2, Credit: 3})
	return &reg, nil
}

func (s *stubRegistrationRepo) Delete(ctx context.Context, studentID, lectureID string) error {
	for i, reg := range s.current {
		if reg.LectureID == lectureID {
			s.current = append(s.current[:i], s.current[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

type stubLectureReader struct {
	lectures map[string]*models.Lecture
}

func (s *stubLectureReader) FindByID(ctx context.Context, id string) (*models.Lecture, error) {
	if l, ok := s.lectures[id]; ok {
		return l, nil
	}
	return nil, sql.ErrNoRows
}

func testClaims() *models.SessionClaims {
	return &models.SessionClaims{StudentID: "stu-1", StudentNo: "20211234", FullName: "Kim Minji"}
}

func newRegistrationRouter(t *testing.T, repo *stubRegistrationRepo, authenticated bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	lectures := &stubLectureReader{lectures: map[string]*models.Lecture{
		"lec-1": {ID: "lec-1", Name: "Algorithms", Day: models.WeekdayMonday, StartPeriod: 1, EndPeriod: 2, Credit: 3, Capacity: 40},
	}}
	window := service.RegistrationWindow{
		Opens:  time.Now().Add(-time.Hour),
		Closes: time.Now().Add(time.Hour),
	}
	svc := service.NewRegistrationService(repo, lectures, window, 21, nil, nil, nil)
	h := NewRegistrationHandler(svc)

	router := gin.New()
	if authenticated {
		router.Use(func(c *gin.Context) {
			c.Set(middleware.ContextStudentKey, testClaims())
		})
	}
	router.GET("/registrations", h.List)
	router.POST("/registrations", h.Create)
	router.DELETE("/registrations/:lectureId", h.Delete)
	router.GET("/registrations/export", h.Export)
	return router
}

func TestCreateRegistration(t *testing.T) {
	repo := &stubRegistrationRepo{}
	router := newRegistrationRouter(t, repo, true)

	body, _ := json.Marshal(map[string]string{"lecture_id": "lec-1"})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/registrations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var envelope struct {
		Data models.RegistrationSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, 3, envelope.Data.TotalCredits)
	require.Len(t, envelope.Data.Registrations, 1)
	assert.Equal(t, "lec-1", envelope.Data.Registrations[0].LectureID)
}

func TestCreateRegistrationUnknownLecture(t *testing.T) {
	router := newRegistrationRouter(t, &stubRegistrationRepo{}, true)

	body, _ := json.Marshal(map[string]string{"lecture_id": "lec-404"})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/registrations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_FOUND")
}

func TestCreateRegistrationDuplicateConflict(t *testing.T) {
	repo := &stubRegistrationRepo{current: []models.RegistrationDetail{{
		Registration: models.Registration{ID: "reg-1", StudentID: "stu-1", LectureID: "lec-1"},
		LectureName:  "Algorithms",
		Day:          models.WeekdayMonday,
		StartPeriod:  1,
		EndPeriod:    2,
		Credit:       3,
	}}}
	router := newRegistrationRouter(t, repo, true)

	body, _ := json.Marshal(map[string]string{"lecture_id": "lec-1"})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/registrations", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "ALREADY_REGISTERED")
}

func TestListRegistrationsRequiresSession(t *testing.T) {
	router := newRegistrationRouter(t, &stubRegistrationRepo{}, false)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/registrations", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDeleteRegistrationNotRegistered(t *testing.T) {
	router := newRegistrationRouter(t, &stubRegistrationRepo{}, true)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/registrations/lec-9", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_REGISTERED")
}

func TestExportTimetableCSVDownload(t *testing.T) {
	repo := &stubRegistrationRepo{current: []models.RegistrationDetail{{
		Registration: models.Registration{ID: "reg-1", StudentID: "stu-1", LectureID: "lec-1"},
		LectureName:  "Algorithms",
		Day:          models.WeekdayMonday,
		StartPeriod:  1,
		EndPeriod:    2,
		Credit:       3,
	}}}
	router := newRegistrationRouter(t, repo, true)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/registrations/export?format=csv", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rec.Body.String(), "Algorithms")
}
