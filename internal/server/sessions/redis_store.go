package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/quickbyte/quickbyte-auth/internal/common"
	"github.com/quickbyte/quickbyte-auth/internal/shared"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// sessionIDBytes is the entropy of a session id; the hex id is twice as long.
const sessionIDBytes = 32

type RedisStore struct {
	client   *redis.Client
	validity time.Duration
}

func NewRedisStore(client *redis.Client, validity time.Duration) *RedisStore {
	return &RedisStore{client: client, validity: validity}
}

func (s *RedisStore) Start(ctx context.Context, userID string) (string, error) {
	sessionID, err := shared.MakeRandHexString(sessionIDBytes)
	if err != nil {
		return "", fmt.Errorf("session id generation error: %w", err)
	}

	// NX guards against the (astronomically unlikely) id collision; a
	// collision surfaces as an error instead of silently rebinding.
	ok, err := s.client.SetNX(ctx, keyPrefix+sessionID, userID, s.validity).Result()
	if err != nil {
		return "", fmt.Errorf("session store error: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("session id collision")
	}

	return sessionID, nil
}

func (s *RedisStore) GetUserID(ctx context.Context, sessionID string) (string, error) {
	userID, err := s.client.Get(ctx, keyPrefix+sessionID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("session store error: %w", err)
	}

	return userID, nil
}

func (s *RedisStore) End(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, keyPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("session store error: %w", err)
	}

	return nil
}
