package redis

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/roguepikachu/roster/internal/domain"
)

func newTestRepo(t *testing.T) (*StudentRepository, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	return NewStudentRepository(redis.NewClient(&redis.Options{Addr: mr.Addr()})), mr
}

func TestRedisRepo_SaveAndList(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	a, err := repo.Save(ctx, domain.NewStudent("Poornima", "Patel"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	b, _ := repo.Save(ctx, domain.NewStudent("Mario", "Rossi"))
	c, _ := repo.Save(ctx, domain.NewStudent("Mary", "Smith"))
	if a.ID != 0 || b.ID != 1 || c.ID != 2 {
		t.Fatalf("unexpected ids %d %d %d", a.ID, b.ID, c.ID)
	}

	b.Active = true
	if _, err := repo.Save(ctx, b); err != nil {
		t.Fatalf("update: %v", err)
	}

	all, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[1].ID != 1 || !all[1].Active {
		t.Fatalf("unexpected list %+v", all)
	}
}

func TestRedisRepo_GetAndDelete(t *testing.T) {
	ctx := context.Background()
	repo, mr := newTestRepo(t)

	s, _ := repo.Save(ctx, domain.NewStudent("Mario", "Rossi"))
	l, err := repo.GetByID(ctx, s.ID)
	if err != nil || !l.IsFound() {
		t.Fatalf("get: %+v %v", l, err)
	}

	l, err = repo.GetByID(ctx, 42)
	if err != nil || l.IsFound() {
		t.Fatalf("want not found, got %+v %v", l, err)
	}

	l, err = repo.DeleteByID(ctx, s.ID)
	if err != nil || !l.IsFound() {
		t.Fatalf("delete: %+v %v", l, err)
	}
	l, err = repo.DeleteByID(ctx, s.ID)
	if err != nil || l.IsFound() {
		t.Fatalf("second delete should be not found: %+v %v", l, err)
	}
	if items, _ := mr.List(keyOrder); len(items) != 0 {
		t.Fatalf("order list not cleaned: %v", items)
	}
}

func TestRedisRepo_ExplicitIDAdvancesCounter(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	if _, err := repo.Save(ctx, domain.Student{ID: 7, FirstName: "Ada", LastName: "Lovelace"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	s, err := repo.Save(ctx, domain.NewStudent("Alan", "Turing"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if s.ID != 8 {
		t.Fatalf("want id 8, got %d", s.ID)
	}
}

func TestRedisRepo_BackendDown(t *testing.T) {
	ctx := context.Background()
	repo, mr := newTestRepo(t)
	mr.Close()

	if _, err := repo.GetByID(ctx, 0); err == nil {
		t.Fatalf("expected error when redis is unavailable")
	}
}

// orderMatchesKeys checks that every stored student is listed exactly once and
// every listed id has a stored value.
func orderMatchesKeys(t *testing.T, mr *miniredis.Miniredis) {
	t.Helper()
	order, _ := mr.List(keyOrder) // a missing list means nothing is listed
	listed := map[string]bool{}
	for _, id := range order {
		if listed[id] {
			t.Fatalf("id %s listed twice: %v", id, order)
		}
		listed[id] = true
		if !mr.Exists("student:" + id) {
			t.Fatalf("id %s listed without a value", id)
		}
	}
	for _, k := range mr.Keys() {
		if strings.HasPrefix(k, "student:") && !listed[strings.TrimPrefix(k, "student:")] {
			t.Fatalf("%s stored but not listed", k)
		}
	}
}

func TestRedisRepo_WritesKeepOrderAndValuesTogether(t *testing.T) {
	ctx := context.Background()
	repo, mr := newTestRepo(t)

	for i := 0; i < 3; i++ {
		if _, err := repo.Save(ctx, domain.NewStudent("S", "T")); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	if _, err := repo.Save(ctx, domain.Student{ID: 1, FirstName: "Re", LastName: "Saved"}); err != nil {
		t.Fatalf("resave: %v", err)
	}
	if _, err := repo.DeleteByID(ctx, 0); err != nil {
		t.Fatalf("delete: %v", err)
	}
	orderMatchesKeys(t, mr)
	if order, _ := mr.List(keyOrder); len(order) != 2 {
		t.Fatalf("want 2 listed, got %v", order)
	}
}

func TestRedisRepo_ConcurrentClientsStayConsistent(t *testing.T) {
	ctx := context.Background()
	_, mr := newTestRepo(t)

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			// separate clients, no in-process lock: only Redis transactions order the writes
			repo := NewStudentRepository(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
			for i := 0; i < 10; i++ {
				s, err := repo.Save(ctx, domain.NewStudent("W", strconv.Itoa(w)))
				if err != nil {
					t.Errorf("save: %v", err)
					return
				}
				if _, err := repo.Save(ctx, domain.Student{ID: s.ID, FirstName: "W", LastName: "again"}); err != nil {
					t.Errorf("resave: %v", err)
					return
				}
				if i%2 == 0 {
					if _, err := repo.DeleteByID(ctx, s.ID); err != nil {
						t.Errorf("delete: %v", err)
						return
					}
				}
			}
		}(w)
	}
	wg.Wait()

	orderMatchesKeys(t, mr)
	if order, _ := mr.List(keyOrder); len(order) != 20 {
		t.Fatalf("want 20 listed, got %d", len(order))
	}
}
