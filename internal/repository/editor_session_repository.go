package repository

import (
	"cbt_cms/internal/model"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrSessionMissing is returned for unknown or expired editor sessions.
var ErrSessionMissing = errors.New("editor session not found")

const editorSessionPrefix = "cbt_cms:editor:"

// EditorSessionRepository keeps question editor drafts in Redis. Every save
// refreshes the TTL.
type EditorSessionRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewEditorSessionRepository(rdb *redis.Client, ttl time.Duration) *EditorSessionRepository {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &EditorSessionRepository{rdb: rdb, ttl: ttl}
}

func (r *EditorSessionRepository) key(id string) string {
	return editorSessionPrefix + id
}

func (r *EditorSessionRepository) Save(ctx context.Context, session *model.EditorSession) error {
	session.UpdatedAt = time.Now()
	b, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, r.key(session.ID), b, r.ttl).Err()
}

func (r *EditorSessionRepository) Find(ctx context.Context, id string) (*model.EditorSession, error) {
	b, err := r.rdb.Get(ctx, r.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionMissing
	}
	if err != nil {
		return nil, err
	}

	var session model.EditorSession
	if err := json.Unmarshal(b, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *EditorSessionRepository) Delete(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, r.key(id)).Err()
}
