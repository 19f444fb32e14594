package domain

// Lookup is the outcome of resolving a student identifier.
// It is either found, carrying the student, or not found, carrying the requested ID.
type Lookup struct {
	student Student
	id      int
	found   bool
}

// Found returns a found outcome for s.
func Found(s Student) Lookup { return Lookup{student: s, id: s.ID, found: true} }

// NotFound returns a not-found outcome for id.
func NotFound(id int) Lookup { return Lookup{id: id} }

// IsFound reports whether the lookup resolved to a student.
func (l Lookup) IsFound() bool { return l.found }

// Student returns the resolved student and whether it was found.
func (l Lookup) Student() (Student, bool) { return l.student, l.found }

// ID returns the identifier that was looked up.
func (l Lookup) ID() int { return l.id }
