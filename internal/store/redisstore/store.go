package redisstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const lessonContextTTL = 5 * time.Minute

// Store caches assembled lesson context blobs. All methods are safe on a nil
// receiver so the service runs without redis in tests and dev.
type Store struct {
	rdb *redis.Client
}

func New(addr, password string, db int) *Store {
	return &Store{rdb: redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})}
}

func (s *Store) Ping(ctx context.Context) error {
	if s == nil {
		return nil
	}
	return s.rdb.Ping(ctx).Err()
}

func lessonContextKey(lessonID string) string {
	return "lesson_ctx:" + lessonID
}

// GetLessonContext returns the cached payload, or "" on miss or any error.
func (s *Store) GetLessonContext(ctx context.Context, lessonID string) string {
	if s == nil {
		return ""
	}
	v, err := s.rdb.Get(ctx, lessonContextKey(lessonID)).Result()
	if err != nil {
		return ""
	}
	return v
}

func (s *Store) SetLessonContext(ctx context.Context, lessonID, payload string) {
	if s == nil {
		return
	}
	_ = s.rdb.Set(ctx, lessonContextKey(lessonID), payload, lessonContextTTL).Err()
}

// InvalidateLessonContext drops the cached context after a transcript or
// notes change.
func (s *Store) InvalidateLessonContext(ctx context.Context, lessonID string) {
	if s == nil {
		return
	}
	_ = s.rdb.Del(ctx, lessonContextKey(lessonID)).Err()
}
