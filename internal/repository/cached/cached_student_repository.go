// Package cached provides a caching wrapper over a primary repository using Redis.
package cached

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/roguepikachu/roster/internal/domain"
	"github.com/roguepikachu/roster/internal/repository"
	"github.com/roguepikachu/roster/pkg/logger"
)

// key helpers
const keyList = "cache:students"

func keyStudent(id int) string { return "cache:student:" + strconv.Itoa(id) }

// StudentRepository is a cache-aside repository combining Redis with a primary store.
// Cache failures never fail a request; the primary stays the source of truth.
type StudentRepository struct {
	primary repository.StudentRepository
	redis   *redis.Client
	ttl     time.Duration
}

// NewStudentRepository creates a new cached repository.
func NewStudentRepository(primary repository.StudentRepository, redis *redis.Client, ttl time.Duration) *StudentRepository {
	return &StudentRepository{primary: primary, redis: redis, ttl: ttl}
}

// ListAll serves the cached listing or fills it from primary.
func (r *StudentRepository) ListAll(ctx context.Context) ([]domain.Student, error) {
	if val, err := r.redis.Get(ctx, keyList).Result(); err == nil && val != "" {
		var items []domain.Student
		if jsonErr := json.Unmarshal([]byte(val), &items); jsonErr == nil {
			return items, nil
		}
	}
	items, err := r.primary.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	r.put(ctx, keyList, items)
	return items, nil
}

// GetByID attempts Redis then falls back to primary. Misses are not cached.
func (r *StudentRepository) GetByID(ctx context.Context, id int) (domain.Lookup, error) {
	if val, err := r.redis.Get(ctx, keyStudent(id)).Result(); err == nil && val != "" {
		var s domain.Student
		if jsonErr := json.Unmarshal([]byte(val), &s); jsonErr == nil {
			return domain.Found(s), nil
		}
	}
	l, err := r.primary.GetByID(ctx, id)
	if err != nil {
		return domain.Lookup{}, err
	}
	if s, ok := l.Student(); ok {
		r.put(ctx, keyStudent(id), s)
	}
	return l, nil
}

// Save writes through to primary, refreshes the entry and drops the listing.
func (r *StudentRepository) Save(ctx context.Context, s domain.Student) (domain.Student, error) {
	saved, err := r.primary.Save(ctx, s)
	if err != nil {
		return domain.Student{}, err
	}
	r.invalidate(ctx, keyStudent(saved.ID), keyList)
	r.put(ctx, keyStudent(saved.ID), saved)
	return saved, nil
}

// DeleteByID deletes from primary and evicts both the entry and the listing.
func (r *StudentRepository) DeleteByID(ctx context.Context, id int) (domain.Lookup, error) {
	l, err := r.primary.DeleteByID(ctx, id)
	if err != nil {
		return domain.Lookup{}, err
	}
	r.invalidate(ctx, keyStudent(id), keyList)
	return l, nil
}

func (r *StudentRepository) put(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := r.redis.Set(ctx, key, data, r.ttl).Err(); err != nil {
		logger.Warn(ctx, "cache set %s failed: %v", key, err)
	}
}

func (r *StudentRepository) invalidate(ctx context.Context, keys ...string) {
	if err := r.redis.Del(ctx, keys...).Err(); err != nil {
		logger.Warn(ctx, "cache invalidate %v failed: %v", keys, err)
	}
}

var _ repository.StudentRepository = (*StudentRepository)(nil)
