package service

import (
	"context"
	"errors"

	"github.com/classpoint/engage-backend/internal/model"
	"github.com/classpoint/engage-backend/internal/repository"
	"github.com/jackc/pgx/v5"
)

// TeacherService handles teacher account management.
type TeacherService struct {
	teacherRepo *repository.TeacherRepository
	auth        *AuthService
}

// NewTeacherService creates a new TeacherService.
func NewTeacherService(teacherRepo *repository.TeacherRepository, auth *AuthService) *TeacherService {
	return &TeacherService{teacherRepo: teacherRepo, auth: auth}
}

// Create registers a teacher account with a hashed password.
func (s *TeacherService) Create(ctx context.Context, name, email, password string) (*model.Teacher, error) {
	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	teacher := &model.Teacher{Name: name, Email: email, PasswordHash: hash}
	if err := s.teacherRepo.Create(ctx, teacher); err != nil {
		return nil, err
	}
	return teacher, nil
}

// Authenticate verifies a teacher's credentials.
func (s *TeacherService) Authenticate(ctx context.Context, email, password string) (*model.Teacher, error) {
	teacher, err := s.teacherRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.auth.CheckPassword(teacher.PasswordHash, password); err != nil {
		return nil, err
	}
	return teacher, nil
}

// GetByID retrieves a teacher by ID.
func (s *TeacherService) GetByID(ctx context.Context, id int) (*model.Teacher, error) {
	return s.teacherRepo.GetByID(ctx, id)
}
