// Package domain contains domain models for the application.
package domain

import (
	"fmt"
	"strings"
)

// UnassignedID marks a student that has not been saved yet.
// Valid identifiers start at zero.
const UnassignedID = -1

// Address is the nested postal address of a student.
type Address struct {
	Street string `json:"street" yaml:"street"`
	City   string `json:"city" yaml:"city"`
}

// Student is the resource managed by the service.
type Student struct {
	ID        int      `json:"id" yaml:"id"`
	FirstName string   `json:"firstName" yaml:"firstName"`
	LastName  string   `json:"lastName" yaml:"lastName"`
	Email     string   `json:"email,omitempty" yaml:"email"`
	Active    bool     `json:"active" yaml:"active"`
	Address   *Address `json:"address" yaml:"address"`
	Languages []string `json:"languages" yaml:"languages"`
}

// NewStudent returns an unsaved student with the given names.
func NewStudent(firstName, lastName string) Student {
	return Student{ID: UnassignedID, FirstName: firstName, LastName: lastName, Languages: []string{}}
}

// HasID reports whether the student has been assigned an identifier.
func (s Student) HasID() bool { return s.ID >= 0 }

// Clone returns a deep copy so stored students never share the address or languages.
func (s Student) Clone() Student {
	c := s
	if s.Address != nil {
		a := *s.Address
		c.Address = &a
	}
	if s.Languages != nil {
		c.Languages = append([]string(nil), s.Languages...)
	} else {
		c.Languages = []string{}
	}
	return c
}

// Validate checks the structural requirements of a student.
func (s Student) Validate() error {
	if strings.TrimSpace(s.FirstName) == "" {
		return NewValidationError("firstName", "is required")
	}
	if strings.TrimSpace(s.LastName) == "" {
		return NewValidationError("lastName", "is required")
	}
	if s.Email != "" && !strings.Contains(s.Email, "@") {
		return NewValidationError("email", "must be a valid email address")
	}
	for i, l := range s.Languages {
		if strings.TrimSpace(l) == "" {
			return NewValidationError("languages", fmt.Sprintf("entry %d is empty", i))
		}
	}
	return nil
}
