package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Shiro-Bankai7/electricians/pkg/database"
	apperrors "github.com/Shiro-Bankai7/electricians/pkg/errors"
	"github.com/Shiro-Bankai7/electricians/services/chat/internal/domain"
)

const keyPrefix = "chat:session:"

// SessionRepository implements repository.SessionRepository using Redis.
// Each session is one JSON value whose TTL is refreshed on every save.
type SessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionRepository creates a new Redis-backed session repository.
func NewSessionRepository(client *redis.Client, ttl time.Duration) *SessionRepository {
	return &SessionRepository{
		client: client,
		ttl:    ttl,
	}
}

func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) (err error) {
	ctx, end := database.Trace(ctx, "redis", "CreateSession", "SET NX "+keyPrefix+"{id}")
	defer func() { end(err) }()

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ok, err := r.client.SetNX(ctx, keyPrefix+session.ID, data, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("redis setnx session: %w", err)
	}
	if !ok {
		return apperrors.Conflict("session " + session.ID + " already exists")
	}
	return nil
}

// Get retrieves a session by ID from Redis.
func (r *SessionRepository) Get(ctx context.Context, id string) (_ *domain.Session, err error) {
	ctx, end := database.Trace(ctx, "redis", "GetSession", "GET "+keyPrefix+"{id}")
	defer func() { end(err) }()

	data, err := r.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("session", id)
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	if session.Messages == nil {
		session.Messages = []domain.Message{}
	}
	return &session, nil
}

// Save persists a session to Redis with the configured TTL.
func (r *SessionRepository) Save(ctx context.Context, session *domain.Session) (err error) {
	ctx, end := database.Trace(ctx, "redis", "SaveSession", "SET "+keyPrefix+"{id}")
	defer func() { end(err) }()

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := r.client.Set(ctx, keyPrefix+session.ID, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

// Delete removes a session from Redis by ID.
func (r *SessionRepository) Delete(ctx context.Context, id string) (err error) {
	ctx, end := database.Trace(ctx, "redis", "DeleteSession", "DEL "+keyPrefix+"{id}")
	defer func() { end(err) }()

	if err := r.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("redis del session: %w", err)
	}
	return nil
}
