package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/classpoint/engage-backend/internal/model"
	"github.com/classpoint/engage-backend/internal/repository"
	"github.com/jackc/pgx/v5"
)

// Common enrollment errors.
var ErrClassNotFound = errors.New("invalid or inactive class code")

// JoinResult describes the outcome of a join-class request.
type JoinResult struct {
	Student         *model.Student
	Class           *model.Class
	Enrollment      *model.Enrollment
	AlreadyEnrolled bool
}

// StudentService handles student registration, class joining and login.
type StudentService struct {
	studentRepo    *repository.StudentRepository
	enrollmentRepo *repository.EnrollmentRepository
	classRepo      *repository.ClassRepository
}

// NewStudentService creates a new StudentService.
func NewStudentService(studentRepo *repository.StudentRepository, enrollmentRepo *repository.EnrollmentRepository, classRepo *repository.ClassRepository) *StudentService {
	return &StudentService{
		studentRepo:    studentRepo,
		enrollmentRepo: enrollmentRepo,
		classRepo:      classRepo,
	}
}

// JoinClass enrolls a student into the class behind the code. The student
// record is created on first join; this is the one entry point that creates
// students implicitly (voting deliberately does not). Joining a class twice
// reports the existing enrollment instead of failing.
func (s *StudentService) JoinClass(ctx context.Context, fullName, email, classCode string) (*JoinResult, error) {
	class, err := s.classRepo.GetActiveByCode(ctx, classCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("resolve class: %w", err)
	}

	student, err := s.studentRepo.GetOrCreate(ctx, fullName, email)
	if err != nil {
		return nil, fmt.Errorf("get or create student: %w", err)
	}

	enrollment := &model.Enrollment{StudentID: student.ID, ClassID: class.ID}
	err = s.enrollmentRepo.Create(ctx, enrollment)
	if err != nil {
		if !errors.Is(err, repository.ErrAlreadyEnrolled) {
			return nil, fmt.Errorf("create enrollment: %w", err)
		}
		existing, err := s.enrollmentRepo.GetByStudentAndClass(ctx, student.ID, class.ID)
		if err != nil {
			return nil, fmt.Errorf("load enrollment: %w", err)
		}
		return &JoinResult{Student: student, Class: class, Enrollment: existing, AlreadyEnrolled: true}, nil
	}

	return &JoinResult{Student: student, Class: class, Enrollment: enrollment}, nil
}

// Login authenticates a pre-registered student by identity. Unlike JoinClass
// it never creates a record.
func (s *StudentService) Login(ctx context.Context, fullName, email string) (*model.Student, error) {
	student, err := s.studentRepo.GetByIdentity(ctx, fullName, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	return student, nil
}

// GetByID retrieves a student by ID.
func (s *StudentService) GetByID(ctx context.Context, id int) (*model.Student, error) {
	return s.studentRepo.GetByID(ctx, id)
}

// List retrieves all registered students.
func (s *StudentService) List(ctx context.Context) ([]model.Student, error) {
	return s.studentRepo.List(ctx)
}

// ListEnrollments retrieves a student's enrollments, newest first.
func (s *StudentService) ListEnrollments(ctx context.Context, studentID int) ([]model.Enrollment, error) {
	return s.enrollmentRepo.ListByStudent(ctx, studentID)
}
