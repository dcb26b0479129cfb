package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/hyowon-dev/sugang-api/internal/models"
)

// ProfessorRepository handles professor lookup rows.
type ProfessorRepository struct {
	db *sqlx.DB
}

// NewProfessorRepository constructs the repository.
func NewProfessorRepository(db *sqlx.DB) *ProfessorRepository {
	return &ProfessorRepository{db: db}
}

// List returns professors, optionally scoped to one department.
func (r *ProfessorRepository) List(ctx context.Context, departmentCode string) ([]models.Professor, error) {
	query := `SELECT id, name, department_code FROM professors`
	var args []interface{}
	if departmentCode != "" {
		query += ` WHERE department_code = $1`
		args = append(args, departmentCode)
	}
	query += ` ORDER BY name`

	var professors []models.Professor
	if err := r.db.SelectContext(ctx, &professors, query, args...); err != nil {
		return nil, fmt.Errorf("list professors: %w", err)
	}
	return professors, nil
}
