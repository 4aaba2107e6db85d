package progress

import (
	"context"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// jobTTL bounds how long finished job state lingers in redis.
const jobTTL = 24 * time.Hour

// RedisStore persists job progress in a redis hash per job, so multiple
// service instances can share a job tracker. Counters use HINCRBY, keeping
// increments atomic without client-side locking.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func jobKey(id string) string {
	return "mailsift:job:" + id
}

func (s *RedisStore) Create(ctx context.Context, id string) error {
	key := jobKey(id)
	if err := s.client.HSet(ctx, key,
		"done", 0,
		"total", 0,
		"status", StatusRunning,
		"error", "",
	).Err(); err != nil {
		return err
	}
	return s.client.Expire(ctx, key, jobTTL).Err()
}

func (s *RedisStore) SetTotal(ctx context.Context, id string, total int) error {
	return s.client.HSet(ctx, jobKey(id), "total", total).Err()
}

func (s *RedisStore) Increment(ctx context.Context, id string) error {
	return s.client.HIncrBy(ctx, jobKey(id), "done", 1).Err()
}

func (s *RedisStore) Finish(ctx context.Context, id string) error {
	return s.client.HSet(ctx, jobKey(id), "status", StatusDone).Err()
}

func (s *RedisStore) Fail(ctx context.Context, id string, msg string) error {
	return s.client.HSet(ctx, jobKey(id), "status", StatusError, "error", msg).Err()
}

func (s *RedisStore) Get(ctx context.Context, id string) (Job, error) {
	fields, err := s.client.HGetAll(ctx, jobKey(id)).Result()
	if err != nil {
		return Job{}, err
	}
	if len(fields) == 0 {
		return Job{}, ErrNotFound
	}

	done, _ := strconv.Atoi(fields["done"])
	total, _ := strconv.Atoi(fields["total"])
	return Job{
		ID:     id,
		Done:   done,
		Total:  total,
		Status: fields["status"],
		Error:  fields["error"],
	}, nil
}
