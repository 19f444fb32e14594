// Package service contains business logic for the application.
package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/roguepikachu/roster/internal/domain"
	"github.com/roguepikachu/roster/internal/repository"
)

// Service provides student-related business logic over a StudentRepository.
type Service struct {
	repo repository.StudentRepository
	// mu serializes read-modify-write sequences so an update never
	// resurrects a student deleted between its lookup and its save.
	mu sync.Mutex
}

// NewService creates a new Service with the given StudentRepository.
func NewService(repo repository.StudentRepository) *Service {
	return &Service{repo: repo}
}

// ListStudents returns every student in insertion order.
func (s *Service) ListStudents(ctx context.Context) ([]domain.Student, error) {
	items, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return items, nil
}

// GetStudent resolves id. Absence is reported by the lookup, not the error.
func (s *Service) GetStudent(ctx context.Context, id int) (domain.Lookup, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Lookup{}, fmt.Errorf("get student %d: %w", id, err)
	}
	return l, nil
}

// CreateStudent validates st and saves it under a newly assigned ID.
// Any ID supplied by the caller is discarded.
func (s *Service) CreateStudent(ctx context.Context, st domain.Student) (domain.Student, error) {
	st.ID = domain.UnassignedID
	if st.Languages == nil {
		st.Languages = []string{}
	}
	if err := st.Validate(); err != nil {
		return domain.Student{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	saved, err := s.repo.Save(ctx, st)
	if err != nil {
		return domain.Student{}, fmt.Errorf("create student: %w", err)
	}
	return saved, nil
}

// UpdateStudent merges patch into the stored student with id and saves it.
// A not-found lookup is returned when id is absent; the merged result must
// still pass validation.
func (s *Service) UpdateStudent(ctx context.Context, id int, patch domain.StudentPatch) (domain.Lookup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Lookup{}, fmt.Errorf("get student %d: %w", id, err)
	}
	current, ok := l.Student()
	if !ok {
		return l, nil
	}
	merged := patch.Apply(current)
	if err := merged.Validate(); err != nil {
		return domain.Lookup{}, err
	}
	saved, err := s.repo.Save(ctx, merged)
	if err != nil {
		return domain.Lookup{}, fmt.Errorf("update student %d: %w", id, err)
	}
	return domain.Found(saved), nil
}

// DeleteStudent removes the student with id. Deleting an absent id yields a
// not-found lookup every time, so repeated deletes report the same outcome.
func (s *Service) DeleteStudent(ctx context.Context, id int) (domain.Lookup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return domain.Lookup{}, fmt.Errorf("delete student %d: %w", id, err)
	}
	return l, nil
}
