// Package seed loads the initial student roster from a YAML file.
package seed

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/roguepikachu/roster/internal/domain"
	"github.com/roguepikachu/roster/internal/repository"
	"github.com/roguepikachu/roster/pkg/logger"
	"gopkg.in/yaml.v3"
)

// file is the wrapped YAML layout. A bare top-level list is accepted too:
//
//	- firstName: Poornima
//	  lastName: Patel
//	  languages: [Hindi, English]
type file struct {
	Students []domain.Student `yaml:"students"`
}

// Parse decodes students from r, either a top-level list or a list under
// "students". IDs in the file are ignored so that the repository assigns
// them in file order.
func Parse(r io.Reader) ([]domain.Student, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	var root yaml.Node
	if err := yaml.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	var students []domain.Student
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	switch root.Content[0].Kind {
	case yaml.SequenceNode:
		err = dec.Decode(&students)
	case yaml.MappingNode:
		var f file
		err = dec.Decode(&f)
		students = f.Students
	default:
		return nil, fmt.Errorf("decode seed: expected a list of students")
	}
	if err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	out := make([]domain.Student, 0, len(students))
	for i, s := range students {
		s.ID = domain.UnassignedID
		if s.Languages == nil {
			s.Languages = []string{}
		}
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("seed student %d: %w", i, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// LoadFile parses path and saves every student into repo, in order.
// An empty path is a no-op, and a repository that already holds students
// is left untouched so restarts against durable storage do not duplicate rows.
func LoadFile(ctx context.Context, path string, repo repository.StudentRepository) (int, error) {
	if path == "" {
		return 0, nil
	}
	existing, err := repo.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("check existing students: %w", err)
	}
	if len(existing) > 0 {
		logger.With(ctx, map[string]any{"path": path, "existing": len(existing)}).Info("seed skipped, repository not empty")
		return 0, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	students, err := Parse(f)
	if err != nil {
		return 0, err
	}
	for _, s := range students {
		if _, err := repo.Save(ctx, s); err != nil {
			return 0, fmt.Errorf("save seed student: %w", err)
		}
	}
	logger.With(ctx, map[string]any{"path": path, "count": len(students)}).Info("seed data loaded")
	return len(students), nil
}
