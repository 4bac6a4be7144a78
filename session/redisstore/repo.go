// Package redisstore keeps browser session values in a Redis hash per session
// so that several web client replicas can share them.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/jrsteele09/careergap-web/internal/errors"
	"github.com/jrsteele09/careergap-web/session"
	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "careergap:session:"

// Repo implements session.Repo backed by Redis (standalone or Sentinel).
type Repo struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

var _ session.Repo = (*Repo)(nil)

// New creates a Redis-backed repo. Every read or write extends the session TTL.
func New(client redis.Cmdable, prefix string, ttl time.Duration) *Repo {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Repo{client: client, prefix: prefix, ttl: ttl}
}

func (r *Repo) Store(sessionID string) session.Store {
	return &store{repo: r, sessionID: sessionID}
}

func (r *Repo) key(id string) string {
	return r.prefix + id
}

type store struct {
	repo      *Repo
	sessionID string
}

func (s *store) Get(ctx context.Context, key session.Key) (string, error) {
	if s.sessionID == "" {
		return "", apperrors.ErrSessionIDRequired
	}
	k := s.repo.key(s.sessionID)

	var get *redis.StringCmd
	_, err := s.repo.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		get = p.HGet(ctx, k, string(key))
		s.repo.touch(ctx, p, k)
		return nil
	})
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get session value: %w", err)
	}
	return get.Val(), nil
}

func (s *store) Set(ctx context.Context, key session.Key, value string) error {
	if s.sessionID == "" {
		return apperrors.ErrSessionIDRequired
	}
	k := s.repo.key(s.sessionID)

	_, err := s.repo.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, k, string(key), value)
		s.repo.touch(ctx, p, k)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set session value: %w", err)
	}
	return nil
}

func (s *store) Clear(ctx context.Context, keys ...session.Key) error {
	if s.sessionID == "" {
		return apperrors.ErrSessionIDRequired
	}
	k := s.repo.key(s.sessionID)

	if len(keys) == 0 {
		if err := s.repo.client.Del(ctx, k).Err(); err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
		return nil
	}

	fields := make([]string, len(keys))
	for i, key := range keys {
		fields[i] = string(key)
	}
	if err := s.repo.client.HDel(ctx, k, fields...).Err(); err != nil {
		return fmt.Errorf("failed to clear session values: %w", err)
	}
	return nil
}

// touch extends the TTL (sliding expiration).
func (r *Repo) touch(ctx context.Context, p redis.Pipeliner, key string) {
	if r.ttl > 0 {
		p.Expire(ctx, key, r.ttl)
	}
}
