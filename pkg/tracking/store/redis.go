package store

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/mlfoundry/modeltrack/pkg/errors"
)

// Redis key layout.
const (
	redisRunPrefix = "mtrack:run:"
	redisRunIndex  = "mtrack:runs"
)

// RedisConfig configures the Redis-backed store.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisStore implements Store on Redis for multi-instance deployments.
// Run records are stored as JSON values under mtrack:run:<id>, with an index
// set mtrack:runs holding all run IDs.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "connect to redis at %s", cfg.Addr)
	}
	return &RedisStore{client: client}, nil
}

// CreateRun persists a new run record.
func (s *RedisStore) CreateRun(ctx context.Context, run *Run) error {
	if err := errors.ValidateRunID(run.ID); err != nil {
		return err
	}
	if err := s.write(ctx, run); err != nil {
		return err
	}
	if err := s.client.SAdd(ctx, redisRunIndex, run.ID).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "index run %s", run.ID)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *RedisStore) GetRun(ctx context.Context, id string) (*Run, error) {
	data, err := s.client.Get(ctx, redisRunPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, errors.New(errors.ErrCodeRunNotFound, "run %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "read run %s", id)
	}

	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "decode run %s", id)
	}
	return &run, nil
}

// UpdateRun replaces an existing run record.
func (s *RedisStore) UpdateRun(ctx context.Context, run *Run) error {
	if _, err := s.GetRun(ctx, run.ID); err != nil {
		return err
	}
	return s.write(ctx, run)
}

// ListRuns returns all runs, most recently started first.
func (s *RedisStore) ListRuns(ctx context.Context) ([]*Run, error) {
	ids, err := s.client.SMembers(ctx, redisRunIndex).Result()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "list run index")
	}

	runs := make([]*Run, 0, len(ids))
	for _, id := range ids {
		run, err := s.GetRun(ctx, id)
		if err != nil {
			// Index entry whose record expired or was removed
			if errors.Is(err, errors.ErrCodeRunNotFound) {
				continue
			}
			return nil, err
		}
		runs = append(runs, run)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartTime.After(runs[j].StartTime)
	})
	return runs, nil
}

// Close releases the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) write(ctx context.Context, run *Run) error {
	data, err := json.Marshal(run)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "encode run %s", run.ID)
	}
	if err := s.client.Set(ctx, redisRunPrefix+run.ID, data, 0).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "write run %s", run.ID)
	}
	return nil
}

// Ensure RedisStore implements Store.
var _ Store = (*RedisStore)(nil)
