//go:build integration

package postgres

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/roguepikachu/roster/internal/domain"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

// startPostgres spins up a Postgres container using testcontainers.
func startPostgres(ctx context.Context, t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()
	pg, err := tcpostgres.RunContainer(ctx,
		tcpostgres.WithUsername("roster"),
		tcpostgres.WithPassword("secret"),
		tcpostgres.WithDatabase("roster"),
	)
	if err != nil {
		t.Skipf("skipping: cannot start postgres container (is Docker running?): %v", err)
		return nil, func() {}
	}
	host, _ := pg.Host(ctx)
	port, _ := pg.MappedPort(ctx, "5432")
	dsn := fmt.Sprintf("postgres://roster:secret@%s:%s/roster?sslmode=disable", host, port.Port())
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	waitCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	for {
		if err := pool.Ping(waitCtx); err == nil {
			break
		}
		select {
		case <-waitCtx.Done():
			t.Fatalf("timeout waiting for db ready: %v", waitCtx.Err())
		case <-time.After(250 * time.Millisecond):
		}
	}
	return pool, func() {
		pool.Close()
		_ = pg.Terminate(context.Background())
	}
}

func TestPostgresRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := startPostgres(ctx, t)
	defer cleanup()

	repo := NewStudentRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	first := domain.NewStudent("Poornima", "Patel")
	first.Address = &domain.Address{Street: "1 Main", City: "Pune"}
	first.Languages = []string{"Hindi", "English"}
	a, err := repo.Save(ctx, first)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	b, err := repo.Save(ctx, domain.NewStudent("Mario", "Rossi"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if a.ID != 0 || b.ID != 1 {
		t.Fatalf("want ids 0,1 got %d,%d", a.ID, b.ID)
	}

	l, err := repo.GetByID(ctx, 0)
	if err != nil || !l.IsFound() {
		t.Fatalf("get: %+v %v", l, err)
	}
	got, _ := l.Student()
	if got.Address == nil || got.Address.City != "Pune" || len(got.Languages) != 2 {
		t.Fatalf("nested fields lost: %+v", got)
	}

	b.LastName = "Bianchi"
	if _, err := repo.Save(ctx, b); err != nil {
		t.Fatalf("update: %v", err)
	}

	del, err := repo.DeleteByID(ctx, 0)
	if err != nil || !del.IsFound() {
		t.Fatalf("delete: %+v %v", del, err)
	}
	del, err = repo.DeleteByID(ctx, 0)
	if err != nil || del.IsFound() {
		t.Fatalf("second delete should be not found: %+v %v", del, err)
	}

	all, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 || all[0].ID != 1 || all[0].LastName != "Bianchi" {
		t.Fatalf("unexpected list: %+v", all)
	}

	// explicit id insert must not collide with the next generated id
	if _, err := repo.Save(ctx, domain.Student{ID: 10, FirstName: "Mary", LastName: "Smith"}); err != nil {
		t.Fatalf("explicit save: %v", err)
	}
	c, err := repo.Save(ctx, domain.NewStudent("Ada", "Lovelace"))
	if err != nil {
		t.Fatalf("save after explicit id: %v", err)
	}
	if c.ID != 11 {
		t.Fatalf("want id 11, got %d", c.ID)
	}
}

func TestPostgresRepository_OutOfInt4RangeIsNotFound(t *testing.T) {
	ctx := context.Background()
	pool, cleanup := startPostgres(ctx, t)
	defer cleanup()

	repo := NewStudentRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	for _, id := range []int{3000000000, math.MaxInt64, math.MinInt64} {
		l, err := repo.GetByID(ctx, id)
		if err != nil || l.IsFound() || l.ID() != id {
			t.Fatalf("get %d: want not found, got %+v %v", id, l, err)
		}
		l, err = repo.DeleteByID(ctx, id)
		if err != nil || l.IsFound() {
			t.Fatalf("delete %d: want not found, got %+v %v", id, l, err)
		}
	}
}
