package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hyowon-dev/sugang-api/internal/models"
)

// AccountRepository handles student account rows.
type AccountRepository struct {
	db *sqlx.DB
}

// NewAccountRepository constructs the repository.
func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// FindByStudentNo returns the account holding the given student number.
func (r *AccountRepository) FindByStudentNo(ctx context.Context, studentNo string) (*models.Account, error) {
	const query = `SELECT id, student_no, full_name, password_hash, last_login_at, created_at
        FROM accounts WHERE student_no = $1`
	var account models.Account
	if err := r.db.GetContext(ctx, &account, query, studentNo); err != nil {
		return nil, err
	}
	return &account, nil
}

// FindByID returns an account by its ID.
func (r *AccountRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	const query = `SELECT id, student_no, full_name, password_hash, last_login_at, created_at
        FROM accounts WHERE id = $1`
	var account models.Account
	if err := r.db.GetContext(ctx, &account, query, id); err != nil {
		return nil, err
	}
	return &account, nil
}

// UpdateLastLogin stamps the account's last successful login.
func (r *AccountRepository) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	const query = `UPDATE accounts SET last_login_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, ts); err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}
