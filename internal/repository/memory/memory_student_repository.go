// Package memory provides the in-memory student repository.
package memory

import (
	"context"
	"sync"

	"github.com/roguepikachu/roster/internal/domain"
	"github.com/roguepikachu/roster/internal/repository"
)

// StudentRepository keeps students in an ordered slice guarded by a RWMutex.
// Mutations take the write lock; reads share the read lock, so readers never
// see a half-applied save or delete.
type StudentRepository struct {
	mu     sync.RWMutex
	items  []domain.Student
	index  map[int]int // id -> position in items
	nextID int
}

// Option configures the repository.
type Option func(*StudentRepository)

// WithItems seeds the repository with the provided students, in order.
// Students without an ID are assigned one.
func WithItems(items ...domain.Student) Option {
	return func(r *StudentRepository) {
		for _, s := range items {
			r.save(s)
		}
	}
}

// NewStudentRepository creates an empty repository whose first assigned ID is 0.
func NewStudentRepository(opts ...Option) *StudentRepository {
	r := &StudentRepository{index: make(map[int]int)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *StudentRepository) ListAll(_ context.Context) ([]domain.Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Student, 0, len(r.items))
	for _, s := range r.items {
		out = append(out, s.Clone())
	}
	return out, nil
}

func (r *StudentRepository) GetByID(_ context.Context, id int) (domain.Lookup, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pos, ok := r.index[id]
	if !ok {
		return domain.NotFound(id), nil
	}
	return domain.Found(r.items[pos].Clone()), nil
}

func (r *StudentRepository) Save(_ context.Context, s domain.Student) (domain.Student, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save(s), nil
}

func (r *StudentRepository) save(s domain.Student) domain.Student {
	stored := s.Clone()
	if !stored.HasID() {
		stored.ID = r.nextID
	}
	if pos, ok := r.index[stored.ID]; ok {
		r.items[pos] = stored
		return stored.Clone()
	}
	r.index[stored.ID] = len(r.items)
	r.items = append(r.items, stored)
	if stored.ID >= r.nextID {
		r.nextID = stored.ID + 1
	}
	return stored.Clone()
}

func (r *StudentRepository) DeleteByID(_ context.Context, id int) (domain.Lookup, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pos, ok := r.index[id]
	if !ok {
		return domain.NotFound(id), nil
	}
	removed := r.items[pos]
	r.items = append(r.items[:pos], r.items[pos+1:]...)
	delete(r.index, id)
	for i := pos; i < len(r.items); i++ {
		r.index[r.items[i].ID] = i
	}
	return domain.Found(removed), nil
}

// Len returns the number of stored students.
func (r *StudentRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

var _ repository.StudentRepository = (*StudentRepository)(nil)
