package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/classpoint/engage-backend/internal/model"
	"github.com/classpoint/engage-backend/internal/repository"
)

// classCodeAlphabet omits easily confused characters (0/O, 1/I/L).
const classCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const classCodeLength = 6

// ClassService handles class management.
type ClassService struct {
	classRepo *repository.ClassRepository
}

// NewClassService creates a new ClassService.
func NewClassService(classRepo *repository.ClassRepository) *ClassService {
	return &ClassService{classRepo: classRepo}
}

// Create creates a class with a generated join code. Collisions on the
// unique code column trigger a regeneration.
func (s *ClassService) Create(ctx context.Context, name string, teacherID int) (*model.Class, error) {
	class := &model.Class{Name: name, TeacherID: &teacherID}

	for attempt := 0; attempt < codeRetryLimit; attempt++ {
		class.Code = randomClassCode()
		err := s.classRepo.Create(ctx, class)
		if err == nil {
			return class, nil
		}
		if errors.Is(err, repository.ErrClassCodeTaken) {
			continue
		}
		return nil, fmt.Errorf("create class: %w", err)
	}
	return nil, errors.New("class code space exhausted")
}

// GetByID retrieves a class by ID.
func (s *ClassService) GetByID(ctx context.Context, id int) (*model.Class, error) {
	return s.classRepo.GetByID(ctx, id)
}

// ListByTeacher retrieves all classes of a teacher.
func (s *ClassService) ListByTeacher(ctx context.Context, teacherID int) ([]model.Class, error) {
	return s.classRepo.ListByTeacher(ctx, teacherID)
}

// Update renames a class and/or toggles its active flag.
func (s *ClassService) Update(ctx context.Context, class *model.Class) error {
	return s.classRepo.Update(ctx, class)
}

func randomClassCode() string {
	b := make([]byte, classCodeLength)
	for i := range b {
		b[i] = classCodeAlphabet[rand.Intn(len(classCodeAlphabet))]
	}
	return string(b)
}
