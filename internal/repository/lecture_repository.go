package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/hyowon-dev/sugang-api/internal/models"
)

// LectureRepository handles read access to the lecture catalog.
type LectureRepository struct {
	db *sqlx.DB
}

// NewLectureRepository constructs the repository.
func NewLectureRepository(db *sqlx.DB) *LectureRepository {
	return &LectureRepository{db: db}
}

const lectureDetailSelect = `SELECT l.id, l.name, l.department_code, l.professor_id, l.day,
        l.start_period, l.end_period, l.credit, l.capacity, l.academic_year, l.term,
        d.name AS department_name, p.name AS professor_name,
        COUNT(r.id) AS occupied
        FROM lectures l
        JOIN departments d ON d.code = l.department_code
        JOIN professors p ON p.id = l.professor_id
        LEFT JOIN registrations r ON r.lecture_id = l.id`

const lectureDetailGroupBy = ` GROUP BY l.id, l.name, l.department_code, l.professor_id, l.day,
        l.start_period, l.end_period, l.credit, l.capacity, l.academic_year, l.term, d.name, p.name`

// FindByID returns a lecture by its ID.
func (r *LectureRepository) FindByID(ctx context.Context, id string) (*models.Lecture, error) {
	const query = `SELECT id, name, department_code, professor_id, day, start_period, end_period,
        credit, capacity, academic_year, term FROM lectures WHERE id = $1`
	var lecture models.Lecture
	if err := r.db.GetContext(ctx, &lecture, query, id); err != nil {
		return nil, err
	}
	return &lecture, nil
}

// FindDetailByID returns a lecture with lookup names and its current
// occupied seat count. The count is derived from registrations, never
// cached.
func (r *LectureRepository) FindDetailByID(ctx context.Context, id string) (*models.LectureDetail, error) {
	query := lectureDetailSelect + " WHERE l.id = $1" + lectureDetailGroupBy
	var detail models.LectureDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	detail.Full = detail.Occupied >= detail.Capacity
	return &detail, nil
}

// List returns catalog entries matching the filter.
func (r *LectureRepository) List(ctx context.Context, filter models.LectureFilter) ([]models.LectureDetail, error) {
	var conditions []string
	var args []interface{}

	if filter.DepartmentCode != "" {
		conditions = append(conditions, fmt.Sprintf("l.department_code = $%d", len(args)+1))
		args = append(args, filter.DepartmentCode)
	}
	if filter.ProfessorName != "" {
		conditions = append(conditions, fmt.Sprintf("p.name ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.ProfessorName+"%")
	}
	if filter.Name != "" {
		conditions = append(conditions, fmt.Sprintf("l.name ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Name+"%")
	}
	if filter.AcademicYear != "" {
		conditions = append(conditions, fmt.Sprintf("l.academic_year = $%d", len(args)+1))
		args = append(args, filter.AcademicYear)
	}
	if filter.Term != "" {
		conditions = append(conditions, fmt.Sprintf("l.term = $%d", len(args)+1))
		args = append(args, filter.Term)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := lectureDetailSelect + clause + lectureDetailGroupBy + " ORDER BY l.id"

	var lectures []models.LectureDetail
	if err := r.db.SelectContext(ctx, &lectures, query, args...); err != nil {
		return nil, fmt.Errorf("list lectures: %w", err)
	}
	for i := range lectures {
		lectures[i].Full = lectures[i].Occupied >= lectures[i].Capacity
	}
	return lectures, nil
}
