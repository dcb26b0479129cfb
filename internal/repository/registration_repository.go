package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/hyowon-dev/sugang-api/internal/models"
	"github.com/hyowon-dev/sugang-api/internal/timetable"
)

// Domain outcomes of the commit transaction. The service layer maps these
// to the API's typed denial errors.
var (
	// ErrDuplicate means a registration for the (student, lecture) pair
	// already exists.
	ErrDuplicate = errors.New("registration already exists")
	// ErrCapacityExceeded means the lecture had no free seat at commit time.
	ErrCapacityExceeded = errors.New("lecture capacity exceeded")
	// ErrCreditExceeded means the insert would overrun the student's
	// credit cap.
	ErrCreditExceeded = errors.New("credit cap exceeded")
	// ErrTimeConflict means a lecture committed since the caller's
	// advisory check overlaps the candidate's slot.
	ErrTimeConflict = errors.New("lecture time conflict")
)

// RegistrationRepository handles persistence of registrations.
type RegistrationRepository struct {
	db *sqlx.DB
}

// NewRegistrationRepository constructs the repository.
func NewRegistrationRepository(db *sqlx.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

// ListActiveByStudent returns the student's registrations joined with
// lecture schedule data.
func (r *RegistrationRepository) ListActiveByStudent(ctx context.Context, studentID string) ([]models.RegistrationDetail, error) {
	const query = `SELECT r.id, r.student_id, r.lecture_id, r.created_at,
        l.name AS lecture_name, d.name AS department_name, p.name AS professor_name,
        l.day, l.start_period, l.end_period, l.credit
        FROM registrations r
        JOIN lectures l ON l.id = r.lecture_id
        JOIN departments d ON d.code = l.department_code
        JOIN professors p ON p.id = l.professor_id
        WHERE r.student_id = $1
        ORDER BY l.day, l.start_period`
	var registrations []models.RegistrationDetail
	if err := r.db.SelectContext(ctx, &registrations, query, studentID); err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return registrations, nil
}

// CountByLecture returns the lecture's occupied seat count.
func (r *RegistrationRepository) CountByLecture(ctx context.Context, lectureID string) (int, error) {
	const query = `SELECT COUNT(*) FROM registrations WHERE lecture_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, lectureID); err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return count, nil
}

// Register claims a seat for the student inside a single transaction.
//
// Two concurrent attempts for the last seat of a lecture must not both
// succeed, so the transaction takes row locks before re-reading state:
// the account row serializes a student's own concurrent adds (conflict
// and credit re-checks), the lecture row serializes all adds for one
// lecture (capacity re-check). Lock order is always account then
// lecture. The held slots, occupied count, and credit sum are
// recomputed from the registrations table under those locks, never
// taken from the caller's earlier reads.
func (r *RegistrationRepository) Register(ctx context.Context, studentID, lectureID string, maxCredits int) (*models.Registration, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin registration tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var accountID string
	err = tx.GetContext(ctx, &accountID, `SELECT id FROM accounts WHERE id = $1 FOR UPDATE`, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("lock account row: %w", err)
	}

	var lecture struct {
		Day         string `db:"day"`
		StartPeriod int    `db:"start_period"`
		EndPeriod   int    `db:"end_period"`
		Credit      int    `db:"credit"`
		Capacity    int    `db:"capacity"`
	}
	err = tx.GetContext(ctx, &lecture, `SELECT day, start_period, end_period, credit, capacity FROM lectures WHERE id = $1 FOR UPDATE`, lectureID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("lock lecture row: %w", err)
	}

	var duplicate bool
	err = tx.GetContext(ctx, &duplicate,
		`SELECT EXISTS (SELECT 1 FROM registrations WHERE student_id = $1 AND lecture_id = $2)`,
		studentID, lectureID)
	if err != nil {
		return nil, fmt.Errorf("check duplicate registration: %w", err)
	}
	if duplicate {
		err = ErrDuplicate
		return nil, err
	}

	// A concurrent add by the same student may have committed an
	// overlapping lecture after the caller's advisory check; the held
	// slots are re-read under the account lock.
	var held []struct {
		Day         string `db:"day"`
		StartPeriod int    `db:"start_period"`
		EndPeriod   int    `db:"end_period"`
	}
	err = tx.SelectContext(ctx, &held,
		`SELECT l.day, l.start_period, l.end_period FROM registrations r JOIN lectures l ON l.id = r.lecture_id WHERE r.student_id = $1`,
		studentID)
	if err != nil {
		return nil, fmt.Errorf("read held slots: %w", err)
	}
	candidate := timetable.Slot{Day: lecture.Day, Start: lecture.StartPeriod, End: lecture.EndPeriod}
	for _, slot := range held {
		if candidate.Overlaps(timetable.Slot{Day: slot.Day, Start: slot.StartPeriod, End: slot.EndPeriod}) {
			err = ErrTimeConflict
			return nil, err
		}
	}

	var occupied int
	err = tx.GetContext(ctx, &occupied, `SELECT COUNT(*) FROM registrations WHERE lecture_id = $1`, lectureID)
	if err != nil {
		return nil, fmt.Errorf("count occupied seats: %w", err)
	}
	if occupied >= lecture.Capacity {
		err = ErrCapacityExceeded
		return nil, err
	}

	var currentCredits int
	err = tx.GetContext(ctx, &currentCredits,
		`SELECT COALESCE(SUM(l.credit), 0) FROM registrations r JOIN lectures l ON l.id = r.lecture_id WHERE r.student_id = $1`,
		studentID)
	if err != nil {
		return nil, fmt.Errorf("sum registered credits: %w", err)
	}
	if currentCredits+lecture.Credit > maxCredits {
		err = ErrCreditExceeded
		return nil, err
	}

	registration := &models.Registration{
		ID:        uuid.NewString(),
		StudentID: studentID,
		LectureID: lectureID,
		CreatedAt: time.Now().UTC(),
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO registrations (id, student_id, lecture_id, created_at) VALUES ($1, $2, $3, $4)`,
		registration.ID, registration.StudentID, registration.LectureID, registration.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert registration: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit registration: %w", err)
	}
	return registration, nil
}

// Delete removes the registration for the pair. Returns sql.ErrNoRows
// when no registration exists, making repeated drops idempotent for the
// caller.
func (r *RegistrationRepository) Delete(ctx context.Context, studentID, lectureID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM registrations WHERE student_id = $1 AND lecture_id = $2`,
		studentID, lectureID)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete registration result: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
