package study

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "studymate:session:"

// RedisSessionStore persists sessions as JSON values in Redis. Mutations are
// load-modify-store; callers must serialize writes per session, which holds
// under the one-session-per-user model the HTTP layer enforces.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore creates a Redis-backed store. A zero ttl means
// sessions never expire.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (r *RedisSessionStore) Create(ctx context.Context) (*Session, error) {
	s := newSession()
	if err := r.save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *RedisSessionStore) Get(ctx context.Context, id string) (*Session, error) {
	return r.load(ctx, id)
}

func (r *RedisSessionStore) CompleteRun(ctx context.Context, id string, req Request, res Result) (*Session, error) {
	s, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}
	s.applyRun(req, res)
	if err := r.save(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (r *RedisSessionStore) SelectAnswer(ctx context.Context, id string, number int, letter string) error {
	return r.mutate(ctx, id, func(s *Session) error {
		return s.Quiz.SelectAnswer(number, letter)
	})
}

func (r *RedisSessionStore) SubmitQuiz(ctx context.Context, id string) (float64, error) {
	var score float64
	err := r.mutate(ctx, id, func(s *Session) error {
		var err error
		score, err = s.Quiz.Submit()
		return err
	})
	return score, err
}

func (r *RedisSessionStore) RetakeQuiz(ctx context.Context, id string) error {
	return r.mutate(ctx, id, func(s *Session) error {
		return s.Quiz.Retake()
	})
}

func (r *RedisSessionStore) SetRoadmap(ctx context.Context, id, roadmap string) error {
	return r.mutate(ctx, id, func(s *Session) error {
		s.Roadmap = roadmap
		return nil
	})
}

func (r *RedisSessionStore) mutate(ctx context.Context, id string, fn func(*Session) error) error {
	s, err := r.load(ctx, id)
	if err != nil {
		return err
	}
	if err := fn(s); err != nil {
		return err
	}
	return r.save(ctx, s)
}

func (r *RedisSessionStore) load(ctx context.Context, id string) (*Session, error) {
	data, err := r.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	if s.Quiz.Answers == nil {
		s.Quiz.Answers = make(map[int]string)
	}
	return &s, nil
}

func (r *RedisSessionStore) save(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKeyPrefix+s.ID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
