package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Account is a student login account.
type Account struct {
	ID           string     `db:"id" json:"id"`
	StudentNo    string     `db:"student_no" json:"student_no"`
	FullName     string     `db:"full_name" json:"full_name"`
	PasswordHash string     `db:"password_hash" json:"-"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// SessionClaims is the payload carried by issued session tokens.
type SessionClaims struct {
	StudentID string `json:"student_id"`
	StudentNo string `json:"student_no"`
	FullName  string `json:"full_name"`
	jwt.RegisteredClaims
}

// LoginRequest is the login payload.
type LoginRequest struct {
	StudentNo string `json:"student_no" validate:"required"`
	Password  string `json:"password" validate:"required"`
}

// LoginResponse carries the issued session token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresIn int64     `json:"expires_in"`
	IssuedAt  time.Time `json:"issued_at"`
	Student   Student   `json:"student"`
}

// Student is the public identity slice of an account.
type Student struct {
	ID        string `json:"id"`
	StudentNo string `json:"student_no"`
	FullName  string `json:"full_name"`
}
