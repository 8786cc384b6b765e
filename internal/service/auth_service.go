package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"job-portal/internal/core/auth"
	"job-portal/internal/domain"
)

type RegisterInput struct {
	Email           string `form:"email" validate:"required,email"`
	Password        string `form:"password" validate:"required"`
	PasswordConfirm string `form:"password_confirm" validate:"required,eqfield=Password"`
	Promotion       string `form:"promotion" validate:"required"`
	Specialization  string `form:"specialization" validate:"required"`
}

// Any role field in a login form is ignored: it never reaches this struct.
type LoginInput struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=6"`
}

type adminInput struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

type AuthService struct {
	users  domain.UserRepository
	hasher auth.Hasher
	// missHash is checked against when the email is unknown, so both
	// failures cost one bcrypt compare.
	missHash string
	log      *zap.Logger
}

func NewAuthService(users domain.UserRepository, hasher auth.Hasher, log *zap.Logger) *AuthService {
	missHash, err := hasher.Hash("no-such-user-Pa55word")
	if err != nil {
		log.Warn("login miss hash not built", zap.Error(err))
	}
	return &AuthService{users: users, hasher: hasher, missHash: missHash, log: log}
}

// checkCredentials runs the shape rules and, when a password was given, the
// password policy, collecting every message.
func checkCredentials(in any, password string) error {
	msgs := auth.Validate(in)
	if password != "" {
		msgs = append(msgs, auth.ValidatePassword(password)...)
	}
	if len(msgs) > 0 {
		return domain.NewValidationError(msgs...)
	}
	return nil
}

func (s *AuthService) ensureEmailFree(ctx context.Context, email string) error {
	taken, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if taken {
		return domain.ErrEmailTaken
	}
	return nil
}

// Register creates a STUDENT account with its student record.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Promotion = strings.TrimSpace(in.Promotion)
	in.Specialization = strings.TrimSpace(in.Specialization)
	if err := checkCredentials(in, in.Password); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, in.Email); err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &domain.User{Email: in.Email, PasswordHash: hash, Role: domain.RoleStudent}
	st := &domain.Student{Promotion: in.Promotion, Specialization: in.Specialization}
	if err := s.users.CreateStudent(ctx, u, st); err != nil {
		return nil, err
	}
	registrationsTotal.Inc()
	s.log.Info("student registered", zap.Uint("user_id", u.ID))
	return u, nil
}

// Login never tells an unknown email apart from a wrong password.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*domain.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	if msgs := auth.Validate(in); len(msgs) > 0 {
		return nil, domain.NewValidationError(msgs...)
	}
	u, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if u == nil {
		s.hasher.Verify(in.Password, s.missHash)
		loginsTotal.WithLabelValues("failure").Inc()
		return nil, domain.ErrInvalidCredentials
	}
	if !s.hasher.Verify(in.Password, u.PasswordHash) {
		loginsTotal.WithLabelValues("failure").Inc()
		return nil, domain.ErrInvalidCredentials
	}
	role, err := domain.ParseRole(string(u.Role))
	if err != nil {
		loginsTotal.WithLabelValues("failure").Inc()
		s.log.Warn("login refused: unknown role", zap.Uint("user_id", u.ID), zap.String("role", string(u.Role)))
		return nil, domain.ErrInvalidCredentials
	}
	u.Role = role
	loginsTotal.WithLabelValues("success").Inc()
	s.log.Info("login", zap.Uint("user_id", u.ID), zap.String("role", string(u.Role)))
	return u, nil
}

// CreateAdmin is the operator path for ADMIN accounts; there is none in the web app.
func (s *AuthService) CreateAdmin(ctx context.Context, email, password string) (*domain.User, error) {
	in := adminInput{Email: strings.TrimSpace(email), Password: password}
	if err := checkCredentials(in, in.Password); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, in.Email); err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &domain.User{Email: in.Email, PasswordHash: hash, Role: domain.RoleAdmin}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info("admin created", zap.Uint("user_id", u.ID))
	return u, nil
}
