package domain

// AddressDTO is the request form of Address.
type AddressDTO struct {
	Street string `json:"street" binding:"max=256"`
	City   string `json:"city" binding:"max=128"`
}

// CreateStudentRequestDTO represents the expected request body for creating a student.
// Unknown properties are ignored.
type CreateStudentRequestDTO struct {
	FirstName string      `json:"firstName" binding:"required,max=128"`
	LastName  string      `json:"lastName" binding:"required,max=128"`
	Email     string      `json:"email" binding:"omitempty,email"`
	Active    bool        `json:"active"`
	Address   *AddressDTO `json:"address"`
	Languages []string    `json:"languages" binding:"omitempty,dive,required"`
}

// ToStudent converts the request into an unsaved Student.
func (r CreateStudentRequestDTO) ToStudent() Student {
	s := NewStudent(r.FirstName, r.LastName)
	s.Email = r.Email
	s.Active = r.Active
	if r.Address != nil {
		s.Address = &Address{Street: r.Address.Street, City: r.Address.City}
	}
	if r.Languages != nil {
		s.Languages = append([]string{}, r.Languages...)
	}
	return s
}

// UpdateStudentRequestDTO represents the expected request body for updating a student.
// Only the fields present in the payload are merged into the stored student.
type UpdateStudentRequestDTO struct {
	FirstName *string     `json:"firstName" binding:"omitempty,min=1,max=128"`
	LastName  *string     `json:"lastName" binding:"omitempty,min=1,max=128"`
	Email     *string     `json:"email" binding:"omitempty,email"`
	Active    *bool       `json:"active"`
	Address   *AddressDTO `json:"address"`
	Languages *[]string   `json:"languages"`
}

// StudentPatch is the set of field changes applied by an update.
type StudentPatch struct {
	FirstName *string
	LastName  *string
	Email     *string
	Active    *bool
	Address   *Address
	Languages *[]string
}

// ToPatch converts the request into a StudentPatch.
func (r UpdateStudentRequestDTO) ToPatch() StudentPatch {
	p := StudentPatch{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Active:    r.Active,
		Languages: r.Languages,
	}
	if r.Address != nil {
		p.Address = &Address{Street: r.Address.Street, City: r.Address.City}
	}
	return p
}

// Apply merges the patch into s and returns the result. The ID is never changed.
func (p StudentPatch) Apply(s Student) Student {
	out := s.Clone()
	if p.FirstName != nil {
		out.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		out.LastName = *p.LastName
	}
	if p.Email != nil {
		out.Email = *p.Email
	}
	if p.Active != nil {
		out.Active = *p.Active
	}
	if p.Address != nil {
		a := *p.Address
		out.Address = &a
	}
	if p.Languages != nil {
		out.Languages = append([]string{}, (*p.Languages)...)
	}
	return out
}
