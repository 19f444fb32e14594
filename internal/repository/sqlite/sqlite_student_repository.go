// Package sqlite provides a SQLite-backed implementation of the student repository.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roguepikachu/roster/internal/domain"
	"github.com/roguepikachu/roster/internal/repository"
	"github.com/roguepikachu/roster/pkg/logger"
)

const columns = "id, first_name, last_name, email, active, address, languages"

// StudentRepository implements repository.StudentRepository on database/sql.
// IDs come from the id_sequences table so they are never reused after a delete.
type StudentRepository struct {
	db *sql.DB
}

// NewStudentRepository wraps an open SQLite handle.
func NewStudentRepository(db *sql.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// EnsureSchema creates required tables if they don't exist.
func (r *StudentRepository) EnsureSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS students (
    id INTEGER PRIMARY KEY,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    email TEXT NOT NULL DEFAULT '',
    active INTEGER NOT NULL DEFAULT 0,
    address TEXT NULL,
    languages TEXT NOT NULL DEFAULT '[]'
);
CREATE TABLE IF NOT EXISTS id_sequences (
    name TEXT PRIMARY KEY,
    next_id INTEGER NOT NULL
);
INSERT OR IGNORE INTO id_sequences (name, next_id) VALUES ('students', 0);
`
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	logger.Info(ctx, "sqlite schema ensured")
	return nil
}

func (r *StudentRepository) ListAll(ctx context.Context) ([]domain.Student, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+columns+" FROM students ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	defer rows.Close()
	res := make([]domain.Student, 0)
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func (r *StudentRepository) GetByID(ctx context.Context, id int) (domain.Lookup, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+columns+" FROM students WHERE id = ?", id)
	s, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound(id), nil
		}
		return domain.Lookup{}, fmt.Errorf("query student: %w", err)
	}
	return domain.Found(s), nil
}

func (r *StudentRepository) Save(ctx context.Context, s domain.Student) (domain.Student, error) {
	addr, langs, err := encodeNested(s)
	if err != nil {
		return domain.Student{}, err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Student{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if !s.HasID() {
		const next = `UPDATE id_sequences SET next_id = next_id + 1 WHERE name = 'students' RETURNING next_id - 1`
		if err := tx.QueryRowContext(ctx, next).Scan(&s.ID); err != nil {
			return domain.Student{}, fmt.Errorf("next id: %w", err)
		}
	}

	const upsert = `
INSERT INTO students (id, first_name, last_name, email, active, address, languages)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    first_name = excluded.first_name,
    last_name = excluded.last_name,
    email = excluded.email,
    active = excluded.active,
    address = excluded.address,
    languages = excluded.languages
`
	if _, err := tx.ExecContext(ctx, upsert, s.ID, s.FirstName, s.LastName, s.Email, s.Active, addr, langs); err != nil {
		return domain.Student{}, fmt.Errorf("save student: %w", err)
	}
	const bump = `UPDATE id_sequences SET next_id = MAX(next_id, ?) WHERE name = 'students'`
	if _, err := tx.ExecContext(ctx, bump, s.ID+1); err != nil {
		return domain.Student{}, fmt.Errorf("advance sequence: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Student{}, fmt.Errorf("commit: %w", err)
	}
	if s.Languages == nil {
		s.Languages = []string{}
	}
	return s, nil
}

func (r *StudentRepository) DeleteByID(ctx context.Context, id int) (domain.Lookup, error) {
	row := r.db.QueryRowContext(ctx, "DELETE FROM students WHERE id = ? RETURNING "+columns, id)
	s, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NotFound(id), nil
		}
		return domain.Lookup{}, fmt.Errorf("delete student: %w", err)
	}
	return domain.Found(s), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStudent(row scanner) (domain.Student, error) {
	var (
		s     domain.Student
		addr  sql.NullString
		langs string
	)
	if err := row.Scan(&s.ID, &s.FirstName, &s.LastName, &s.Email, &s.Active, &addr, &langs); err != nil {
		return domain.Student{}, err
	}
	if addr.Valid && addr.String != "" {
		s.Address = &domain.Address{}
		if err := json.Unmarshal([]byte(addr.String), s.Address); err != nil {
			return domain.Student{}, fmt.Errorf("unmarshal address: %w", err)
		}
	}
	s.Languages = []string{}
	if langs != "" {
		if err := json.Unmarshal([]byte(langs), &s.Languages); err != nil {
			return domain.Student{}, fmt.Errorf("unmarshal languages: %w", err)
		}
	}
	return s, nil
}

// encodeNested returns the address column value (nil for NULL) and the languages JSON.
func encodeNested(s domain.Student) (any, string, error) {
	var addr any
	if s.Address != nil {
		b, err := json.Marshal(s.Address)
		if err != nil {
			return nil, "", fmt.Errorf("marshal address: %w", err)
		}
		addr = string(b)
	}
	langs := s.Languages
	if langs == nil {
		langs = []string{}
	}
	b, err := json.Marshal(langs)
	if err != nil {
		return nil, "", fmt.Errorf("marshal languages: %w", err)
	}
	return addr, string(b), nil
}

var _ repository.StudentRepository = (*StudentRepository)(nil)
