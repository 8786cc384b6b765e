package repo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"job-portal/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

var _ domain.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isDupKey(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// CreateStudent inserts the user and its student row in one transaction;
// a failure on either leaves nothing behind.
func (r *UserRepo) CreateStudent(ctx context.Context, u *domain.User, s *domain.Student) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(u).Error; err != nil {
			return err
		}
		s.UserID = u.ID
		return tx.Create(s).Error
	})
	if err != nil {
		u.ID, s.ID, s.UserID = 0, 0, 0
		if isDupKey(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var u domain.User
	err := r.db.WithContext(ctx).First(&u, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &u, err
}

func (r *UserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Where("email = ?", email).Count(&n).Error
	return n > 0, err
}

func (r *UserRepo) profiles(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("students AS s").
		Select("u.id AS user_id, u.email, u.created_at, s.promotion, s.specialization").
		Joins("JOIN users u ON u.id = s.user_id")
}

func (r *UserRepo) FindStudent(ctx context.Context, userID uint) (*domain.StudentProfile, error) {
	var rows []domain.StudentProfile
	if err := r.profiles(ctx).Where("s.user_id = ?", userID).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (r *UserRepo) ListStudents(ctx context.Context, limit int) ([]domain.StudentProfile, error) {
	var rows []domain.StudentProfile
	q := r.profiles(ctx).Order("u.created_at DESC, u.id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Scan(&rows).Error
	return rows, err
}

func (r *UserRepo) CountStudents(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Student{}).Count(&n).Error
	return n, err
}
