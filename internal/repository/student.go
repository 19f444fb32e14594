// Package repository defines the student storage contract shared by all backends.
package repository

import (
	"context"

	"github.com/roguepikachu/roster/internal/domain"
)

// StudentRepository stores students in insertion order.
//
// Absence is reported through domain.Lookup, never through the error value;
// a non-nil error always means the backend itself failed.
type StudentRepository interface {
	// ListAll returns every student in insertion order.
	ListAll(ctx context.Context) ([]domain.Student, error)
	// GetByID resolves id to a student.
	GetByID(ctx context.Context, id int) (domain.Lookup, error)
	// Save assigns the next ID to an unsaved student and appends it, or
	// replaces the stored student with the same ID in place.
	Save(ctx context.Context, s domain.Student) (domain.Student, error)
	// DeleteByID removes the student with id. The lookup carries the removed
	// student, or is not-found when nothing was stored under id.
	DeleteByID(ctx context.Context, id int) (domain.Lookup, error)
}
