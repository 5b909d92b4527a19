package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"migratio/internal/assessment/models"
	id "migratio/pkg/domain"
	"migratio/pkg/platform/sentinel"
)

const (
	sessionKeyPrefix = "assessment_session:"
	activeKeyPrefix  = "assessment_active:"
	defaultTTL       = 30 * 24 * time.Hour
)

// RedisStore keeps each session as a JSON document plus a per-user pointer
// to the in-progress session. Writes use WATCH so concurrent updates fail
// with sentinel.ErrConflict instead of overwriting each other.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a store whose keys expire ttl after their last write.
func NewRedis(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func sessionKey(sessionID id.SessionID) string { return sessionKeyPrefix + sessionID.String() }
func activeKey(userID id.UserID) string        { return activeKeyPrefix + userID.String() }

func (s *RedisStore) Create(ctx context.Context, session *models.Session) error {
	userKey := activeKey(session.UserID)
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		existing, err := tx.Get(ctx, userKey).Result()
		switch {
		case err == nil:
			if _, err := s.loadActive(ctx, tx, existing); err == nil {
				return sentinel.ErrConflict
			} else if !errors.Is(err, sentinel.ErrNotFound) {
				return err
			}
		case !errors.Is(err, redis.Nil):
			return fmt.Errorf("read active session: %w", err)
		}

		session.Version = 1
		payload, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("encode session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, sessionKey(session.ID), payload, s.ttl)
			if session.IsInProgress() {
				pipe.Set(ctx, userKey, session.ID.String(), s.ttl)
			}
			return nil
		})
		return err
	}, userKey)
	return mapTxError(err)
}

func (s *RedisStore) FindActiveByUser(ctx context.Context, userID id.UserID) (*models.Session, error) {
	sessionID, err := s.client.Get(ctx, activeKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("read active session: %w", err)
	}
	return s.loadActive(ctx, s.client, sessionID)
}

func (s *RedisStore) FindByIDForUser(ctx context.Context, sessionID id.SessionID, userID id.UserID) (*models.Session, error) {
	session, err := s.loadActive(ctx, s.client, sessionID.String())
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, sentinel.ErrNotFound
	}
	return session, nil
}

func (s *RedisStore) Save(ctx context.Context, session *models.Session) error {
	key := sessionKey(session.ID)
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := s.load(ctx, tx, key)
		if err != nil {
			return err
		}
		if current.Version != session.Version {
			return sentinel.ErrConflict
		}

		next := session.Clone()
		next.Version++
		payload, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, s.ttl)
			if next.IsInProgress() {
				pipe.Expire(ctx, activeKey(next.UserID), s.ttl)
			} else {
				pipe.Del(ctx, activeKey(next.UserID))
			}
			return nil
		})
		if err != nil {
			return err
		}
		session.Version = next.Version
		return nil
	}, key)
	return mapTxError(err)
}

func (s *RedisStore) loadActive(ctx context.Context, cmd redis.Cmdable, sessionID string) (*models.Session, error) {
	session, err := s.load(ctx, cmd, sessionKeyPrefix+sessionID)
	if err != nil {
		return nil, err
	}
	if !session.IsInProgress() {
		return nil, sentinel.ErrNotFound
	}
	return session, nil
}

func (s *RedisStore) load(ctx context.Context, cmd redis.Cmdable, key string) (*models.Session, error) {
	data, err := cmd.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

func mapTxError(err error) error {
	if errors.Is(err, redis.TxFailedErr) {
		return sentinel.ErrConflict
	}
	return err
}
