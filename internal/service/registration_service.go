package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hyowon-dev/sugang-api/internal/models"
	"github.com/hyowon-dev/sugang-api/internal/repository"
	"github.com/hyowon-dev/sugang-api/internal/timetable"
	appErrors "github.com/hyowon-dev/sugang-api/pkg/errors"
	"github.com/hyowon-dev/sugang-api/pkg/export"
)

type registrationRepository interface {
	ListActiveByStudent(ctx context.Context, studentID string) ([]models.RegistrationDetail, error)
	CountByLecture(ctx context.Context, lectureID string) (int, error)
	Register(ctx context.Context, studentID, lectureID string, maxCredits int) (*models.Registration, error)
	Delete(ctx context.Context, studentID, lectureID string) error
}

type lectureReader interface {
	FindByID(ctx context.Context, id string) (*models.Lecture, error)
}

// RegistrationWindow bounds the term's add/drop period.
type RegistrationWindow struct {
	Opens  time.Time
	Closes time.Time
}

// Contains reports whether t falls inside the window, endpoints included.
func (w RegistrationWindow) Contains(t time.Time) bool {
	return !t.Before(w.Opens) && !t.After(w.Closes)
}

// RegisterRequest is the payload for a registration attempt.
type RegisterRequest struct {
	LectureID string `json:"lecture_id" validate:"required"`
}

// RegistrationService is the admission engine. Register runs the
// precondition gates in order (window, existence, duplicate, time
// conflict, credit cap, capacity) and commits through the repository's
// transaction, which re-verifies the race-sensitive checks.
type RegistrationService struct {
	registrations registrationRepository
	lectures      lectureReader
	window        RegistrationWindow
	maxCredits    int
	validator     *validator.Validate
	logger        *zap.Logger
	metrics       *MetricsService
	now           func() time.Time
}

// NewRegistrationService constructs RegistrationService.
func NewRegistrationService(registrations registrationRepository, lectures lectureReader, window RegistrationWindow, maxCredits int, validate *validator.Validate, logger *zap.Logger, metrics *MetricsService) *RegistrationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxCredits <= 0 {
		maxCredits = 21
	}
	return &RegistrationService{
		registrations: registrations,
		lectures:      lectures,
		window:        window,
		maxCredits:    maxCredits,
		validator:     validate,
		logger:        logger,
		metrics:       metrics,
		now:           time.Now,
	}
}

// WithClock overrides the service clock. Used by tests to pin the
// registration window.
func (s *RegistrationService) WithClock(now func() time.Time) *RegistrationService {
	if now != nil {
		s.now = now
	}
	return s
}

// ListMine returns the student's current registrations with total credits.
func (s *RegistrationService) ListMine(ctx context.Context, studentID string) (*models.RegistrationSummary, error) {
	current, err := s.registrations.ListActiveByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registrations")
	}
	return summaryOf(current), nil
}

// Register attempts to admit the student into the lecture. The first
// failing gate wins. The gates here are advisory reads; the duplicate,
// conflict, credit, and capacity gates are all re-verified inside the
// commit transaction because both the lecture's occupancy and the
// student's own load can change between decision and commit.
func (s *RegistrationService) Register(ctx context.Context, studentID string, req RegisterRequest) (*models.RegistrationSummary, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid registration payload")
	}

	if !s.window.Contains(s.now()) {
		return nil, s.deny(appErrors.ErrWindowClosed, "")
	}

	lecture, err := s.lectures.FindByID(ctx, req.LectureID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.deny(appErrors.ErrNotFound, "lecture not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lecture")
	}

	current, err := s.registrations.ListActiveByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registrations")
	}
	entries := entriesOf(current)

	if timetable.Contains(entries, lecture.ID) {
		return nil, s.deny(appErrors.ErrAlreadyRegistered, "")
	}

	if conflict, found := timetable.FindConflict(lecture.Slot(), entries); found {
		return nil, s.deny(appErrors.ErrTimeConflict,
			fmt.Sprintf("time conflict with %s (%s)", conflict.LectureName, conflict.LectureID))
	}

	if timetable.TotalCredits(entries)+lecture.Credit > s.maxCredits {
		return nil, s.deny(appErrors.ErrCreditCapExceeded,
			fmt.Sprintf("registering would exceed the %d credit cap", s.maxCredits))
	}

	occupied, err := s.registrations.CountByLecture(ctx, lecture.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count occupied seats")
	}
	if occupied >= lecture.Capacity {
		return nil, s.deny(appErrors.ErrLectureFull, "")
	}

	registration, err := s.registrations.Register(ctx, studentID, lecture.ID, s.maxCredits)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, s.deny(appErrors.ErrAlreadyRegistered, "")
		case errors.Is(err, repository.ErrCapacityExceeded):
			// A concurrent commit took the seat between decision and
			// commit. Reported identically to the early rejection.
			return nil, s.deny(appErrors.ErrLectureFull, "")
		case errors.Is(err, repository.ErrTimeConflict):
			return nil, s.deny(appErrors.ErrTimeConflict, "")
		case errors.Is(err, repository.ErrCreditExceeded):
			return nil, s.deny(appErrors.ErrCreditCapExceeded,
				fmt.Sprintf("registering would exceed the %d credit cap", s.maxCredits))
		case errors.Is(err, sql.ErrNoRows):
			return nil, s.deny(appErrors.ErrNotFound, "lecture not found")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit registration")
		}
	}

	s.metrics.RecordDecision("admitted")
	s.logger.Info("registration admitted",
		zap.String("student_id", studentID),
		zap.String("lecture_id", lecture.ID),
		zap.String("registration_id", registration.ID))

	return s.ListMine(ctx, studentID)
}

// Drop removes the student's registration for the lecture. Dropping an
// unheld lecture yields NOT_REGISTERED, so a repeated drop is a typed
// outcome rather than an error. Drops are gated by the same window as
// adds.
func (s *RegistrationService) Drop(ctx context.Context, studentID, lectureID string) (*models.RegistrationSummary, error) {
	if lectureID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "lecture id is required")
	}

	if !s.window.Contains(s.now()) {
		return nil, s.deny(appErrors.ErrWindowClosed, "")
	}

	if err := s.registrations.Delete(ctx, studentID, lectureID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.deny(appErrors.ErrNotRegistered, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete registration")
	}

	s.metrics.RecordDecision("dropped")
	s.logger.Info("registration dropped",
		zap.String("student_id", studentID),
		zap.String("lecture_id", lectureID))

	return s.ListMine(ctx, studentID)
}

// ExportTimetable renders the student's weekly load as a downloadable
// table. Supported formats: "pdf" (default) and "csv".
func (s *RegistrationService) ExportTimetable(ctx context.Context, studentID, format string) ([]byte, string, error) {
	current, err := s.registrations.ListActiveByStudent(ctx, studentID)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load registrations")
	}

	table := export.Table{
		Headers: []string{"Day", "Periods", "Lecture", "Professor", "Department", "Credits"},
	}
	for _, reg := range current {
		table.Rows = append(table.Rows, []string{
			string(reg.Day),
			fmt.Sprintf("%d-%d", reg.StartPeriod, reg.EndPeriod),
			reg.LectureName,
			reg.ProfessorName,
			reg.DepartmentName,
			fmt.Sprintf("%d", reg.Credit),
		})
	}

	switch format {
	case "csv":
		data, err := export.CSV(table)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return data, "text/csv", nil
	case "", "pdf":
		data, err := export.PDF(table, "Class Timetable")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return data, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "format must be pdf or csv")
	}
}

func (s *RegistrationService) deny(reason *appErrors.Error, detail string) error {
	s.metrics.RecordDecision(reason.Code)
	return appErrors.Clone(reason, detail)
}

func entriesOf(current []models.RegistrationDetail) []timetable.Entry {
	entries := make([]timetable.Entry, 0, len(current))
	for _, reg := range current {
		entries = append(entries, timetable.Entry{
			LectureID:   reg.LectureID,
			LectureName: reg.LectureName,
			Slot:        reg.Slot(),
			Credit:      reg.Credit,
		})
	}
	return entries
}

func summaryOf(current []models.RegistrationDetail) *models.RegistrationSummary {
	if current == nil {
		current = []models.RegistrationDetail{}
	}
	return &models.RegistrationSummary{
		TotalCredits:  timetable.TotalCredits(entriesOf(current)),
		Registrations: current,
	}
}
