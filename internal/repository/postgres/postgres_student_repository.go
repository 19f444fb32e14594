// Package postgres provides a Postgres-backed implementation of the student repository.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/roguepikachu/roster/internal/domain"
	"github.com/roguepikachu/roster/internal/repository"
	"github.com/roguepikachu/roster/pkg/logger"
)

const columns = "id, first_name, last_name, email, active, address, languages"

// StudentRepository implements repository.StudentRepository using Postgres.
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new Postgres-backed student repository.
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// schema keeps id as BIGINT so any path id a Go int can hold binds cleanly
// and resolves to a row or to not-found. The ALTER widens tables created
// with an INTEGER id; it is a no-op once the column is BIGINT.
const schema = `
CREATE TABLE IF NOT EXISTS students (
    id BIGINT PRIMARY KEY GENERATED BY DEFAULT AS IDENTITY (MINVALUE 0 START WITH 0),
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    email TEXT NOT NULL DEFAULT '',
    active BOOLEAN NOT NULL DEFAULT FALSE,
    address JSONB NULL,
    languages JSONB NOT NULL DEFAULT '[]'::jsonb
);
ALTER TABLE students ALTER COLUMN id SET DATA TYPE BIGINT;
`

// EnsureSchema creates required tables if they don't exist.
func (r *StudentRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return err
	}
	logger.Info(ctx, "postgres schema ensured")
	return nil
}

// ListAll returns all students ordered by id, which follows insertion order.
func (r *StudentRepository) ListAll(ctx context.Context) ([]domain.Student, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+columns+" FROM students ORDER BY id")
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
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return res, nil
}

// GetByID retrieves a student by its ID.
func (r *StudentRepository) GetByID(ctx context.Context, id int) (domain.Lookup, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+columns+" FROM students WHERE id = $1", id)
	s, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NotFound(id), nil
		}
		return domain.Lookup{}, fmt.Errorf("query student: %w", err)
	}
	return domain.Found(s), nil
}

// Save inserts an unsaved student using the identity column, or upserts by ID.
func (r *StudentRepository) Save(ctx context.Context, s domain.Student) (domain.Student, error) {
	addr, langs, err := encodeNested(s)
	if err != nil {
		return domain.Student{}, err
	}
	if !s.HasID() {
		const q = `
INSERT INTO students (first_name, last_name, email, active, address, languages)
VALUES ($1, $2, $3, $4, $5::jsonb, $6::jsonb)
RETURNING id
`
		if err := r.pool.QueryRow(ctx, q, s.FirstName, s.LastName, s.Email, s.Active, addr, langs).Scan(&s.ID); err != nil {
			return domain.Student{}, fmt.Errorf("insert student: %w", err)
		}
		return s, nil
	}

	const upsert = `
INSERT INTO students (id, first_name, last_name, email, active, address, languages)
VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7::jsonb)
ON CONFLICT (id) DO UPDATE SET
    first_name = EXCLUDED.first_name,
    last_name = EXCLUDED.last_name,
    email = EXCLUDED.email,
    active = EXCLUDED.active,
    address = EXCLUDED.address,
    languages = EXCLUDED.languages
RETURNING (xmax = 0) AS inserted
`
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.Student{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var inserted bool
	if err := tx.QueryRow(ctx, upsert, s.ID, s.FirstName, s.LastName, s.Email, s.Active, addr, langs).Scan(&inserted); err != nil {
		return domain.Student{}, fmt.Errorf("upsert student: %w", err)
	}
	if inserted {
		// keep the identity ahead of explicitly inserted ids
		const bump = `SELECT setval(pg_get_serial_sequence('students', 'id'), (SELECT MAX(id) FROM students))`
		if _, err := tx.Exec(ctx, bump); err != nil {
			return domain.Student{}, fmt.Errorf("advance identity: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Student{}, fmt.Errorf("commit: %w", err)
	}
	return s, nil
}

// DeleteByID removes a student and returns it, or a not-found lookup.
func (r *StudentRepository) DeleteByID(ctx context.Context, id int) (domain.Lookup, error) {
	row := r.pool.QueryRow(ctx, "DELETE FROM students WHERE id = $1 RETURNING "+columns, id)
	s, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NotFound(id), nil
		}
		return domain.Lookup{}, fmt.Errorf("delete student: %w", err)
	}
	return domain.Found(s), nil
}

func scanStudent(row pgx.Row) (domain.Student, error) {
	var (
		s        domain.Student
		addrRaw  []byte
		langsRaw []byte
	)
	if err := row.Scan(&s.ID, &s.FirstName, &s.LastName, &s.Email, &s.Active, &addrRaw, &langsRaw); err != nil {
		return domain.Student{}, err
	}
	if len(addrRaw) > 0 && string(addrRaw) != "null" {
		s.Address = &domain.Address{}
		if err := json.Unmarshal(addrRaw, s.Address); err != nil {
			return domain.Student{}, fmt.Errorf("unmarshal address: %w", err)
		}
	}
	s.Languages = []string{}
	if len(langsRaw) > 0 {
		if err := json.Unmarshal(langsRaw, &s.Languages); err != nil {
			return domain.Student{}, fmt.Errorf("unmarshal languages: %w", err)
		}
	}
	return s, nil
}

// encodeNested marshals the JSONB columns. A nil address is stored as SQL NULL.
func encodeNested(s domain.Student) (*string, string, error) {
	var addr *string
	if s.Address != nil {
		b, err := json.Marshal(s.Address)
		if err != nil {
			return nil, "", fmt.Errorf("marshal address: %w", err)
		}
		v := string(b)
		addr = &v
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
