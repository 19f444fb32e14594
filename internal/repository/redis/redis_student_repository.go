// Package redis provides a Redis-backed implementation of the student repository.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-redis/redis/v8"
	"github.com/roguepikachu/roster/internal/domain"
	"github.com/roguepikachu/roster/internal/repository"
)

const (
	keyOrder = "students:order"
	keySeq   = "students:seq"
)

func keyStudent(id int) string { return "student:" + strconv.Itoa(id) }

// StudentRepository implements repository.StudentRepository using Redis as backend.
// Each student is a JSON string; a list keeps insertion order and a counter hands out IDs.
type StudentRepository struct {
	client *redis.Client
}

// NewStudentRepository creates a new Redis-backed student repository.
func NewStudentRepository(client *redis.Client) *StudentRepository {
	return &StudentRepository{client: client}
}

// ListAll returns the students in the order their IDs were appended.
func (r *StudentRepository) ListAll(ctx context.Context) ([]domain.Student, error) {
	ids, err := r.client.LRange(ctx, keyOrder, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lrange: %w", err)
	}
	res := make([]domain.Student, 0, len(ids))
	if len(ids) == 0 {
		return res, nil
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, "student:"+id)
	}
	vals, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}
	for i, v := range vals {
		str, ok := v.(string)
		if !ok {
			// order entry without a value; skip rather than fail the listing
			continue
		}
		s, err := decode(str)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", keys[i], err)
		}
		res = append(res, s)
	}
	return res, nil
}

// GetByID retrieves a student by its ID from Redis.
func (r *StudentRepository) GetByID(ctx context.Context, id int) (domain.Lookup, error) {
	val, err := r.client.Get(ctx, keyStudent(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.NotFound(id), nil
		}
		return domain.Lookup{}, fmt.Errorf("redis get: %w", err)
	}
	s, err := decode(val)
	if err != nil {
		return domain.Lookup{}, err
	}
	return domain.Found(s), nil
}

// Save stores the student, assigning an ID from the counter when it has none.
func (r *StudentRepository) Save(ctx context.Context, s domain.Student) (domain.Student, error) {
	if s.Languages == nil {
		s.Languages = []string{}
	}
	if !s.HasID() {
		next, err := r.client.Incr(ctx, keySeq).Result()
		if err != nil {
			return domain.Student{}, fmt.Errorf("redis incr: %w", err)
		}
		s.ID = int(next - 1)
	}
	data, err := json.Marshal(s)
	if err != nil {
		return domain.Student{}, fmt.Errorf("marshal: %w", err)
	}

	if err := r.store(ctx, s.ID, data); err != nil {
		return domain.Student{}, err
	}
	return s, nil
}

// maxTxRetries bounds optimistic retries when a watched key changes underneath.
const maxTxRetries = 10

// watched runs fn under WATCH on keys, retrying when another client wins the race.
func (r *StudentRepository) watched(ctx context.Context, fn func(*redis.Tx) error, keys ...string) error {
	for i := 0; i < maxTxRetries; i++ {
		err := r.client.Watch(ctx, fn, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("redis: too much contention on %v", keys)
}

// store writes the student value, its order entry and the counter in one
// MULTI/EXEC, so a student is never stored without being listed.
func (r *StudentRepository) store(ctx context.Context, id int, data []byte) error {
	key := keyStudent(id)
	keys := []string{key}
	// the counter only grows, so it needs watching only while it may need a bump
	if seq, err := r.client.Get(ctx, keySeq).Int(); err != nil || seq <= id {
		keys = append(keys, keySeq)
	}
	return r.watched(ctx, func(tx *redis.Tx) error {
		exists, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("redis exists: %w", err)
		}
		seq, err := tx.Get(ctx, keySeq).Int()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("redis get seq: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, data, 0)
			if exists == 0 {
				p.RPush(ctx, keyOrder, id)
				// keep the counter ahead of explicitly stored ids
				if seq <= id {
					p.Set(ctx, keySeq, id+1, 0)
				}
			}
			return nil
		})
		return err
	}, keys...)
}

// DeleteByID removes the student and its order entry together.
func (r *StudentRepository) DeleteByID(ctx context.Context, id int) (domain.Lookup, error) {
	key := keyStudent(id)
	var val string
	found := false
	err := r.watched(ctx, func(tx *redis.Tx) error {
		v, err := tx.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			found = false
			return nil
		}
		if err != nil {
			return fmt.Errorf("redis get: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Del(ctx, key)
			p.LRem(ctx, keyOrder, 0, strconv.Itoa(id))
			return nil
		})
		if err != nil {
			return err
		}
		val, found = v, true
		return nil
	}, key)
	if err != nil {
		return domain.Lookup{}, fmt.Errorf("redis delete: %w", err)
	}
	if !found {
		return domain.NotFound(id), nil
	}
	s, err := decode(val)
	if err != nil {
		return domain.Lookup{}, err
	}
	return domain.Found(s), nil
}

func decode(val string) (domain.Student, error) {
	var s domain.Student
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		return domain.Student{}, fmt.Errorf("unmarshal: %w", err)
	}
	if s.Languages == nil {
		s.Languages = []string{}
	}
	return s, nil
}

var _ repository.StudentRepository = (*StudentRepository)(nil)
