package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Role is the whole authorization unit: fixed at account creation.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleStudent Role = "STUDENT"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleStudent:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Home is the landing page of a role after login.
func (r Role) Home() string {
	if r == RoleAdmin {
		return "/admin/dashboard"
	}
	return "/student/jobs"
}

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:191;not null" json:"email"`
	PasswordHash string    `gorm:"size:100;not null" json:"-"`
	Role         Role      `gorm:"size:16;not null;default:'STUDENT'" json:"role"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (User) TableName() string { return "users" }

type Student struct {
	ID             uint   `gorm:"primaryKey" json:"id"`
	UserID         uint   `gorm:"uniqueIndex;not null" json:"userId"`
	Promotion      string `gorm:"size:64;not null" json:"promotion"`
	Specialization string `gorm:"size:128;not null" json:"specialization"`
}

func (Student) TableName() string { return "students" }

// SessionUser is the snapshot of the logged-in user kept in the session.
type SessionUser struct {
	ID    uint
	Email string
	Role  Role
}

func (u *User) Snapshot() SessionUser {
	return SessionUser{ID: u.ID, Email: u.Email, Role: u.Role}
}

// StudentProfile is a student joined with its user row.
type StudentProfile struct {
	UserID         uint      `json:"id"`
	Email          string    `json:"email"`
	CreatedAt      time.Time `json:"created_at"`
	Promotion      string    `json:"promotion"`
	Specialization string    `json:"specialization"`
}

type UserRepository interface {
	// CreateStudent writes the user and its student row as one unit.
	CreateStudent(ctx context.Context, u *User, s *Student) error
	Create(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	FindStudent(ctx context.Context, userID uint) (*StudentProfile, error)
	ListStudents(ctx context.Context, limit int) ([]StudentProfile, error)
	CountStudents(ctx context.Context) (int64, error)
}
