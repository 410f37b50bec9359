package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/avanth/docuquery/internal/config"
	"github.com/avanth/docuquery/internal/data/redisStore"
	"github.com/avanth/docuquery/internal/domain/jobModel"
	"github.com/avanth/docuquery/pkg/logger_i"
)

// sessionSentinel keeps a freshly initialized session key alive in Redis
// before the first message arrives. History reads skip it.
const sessionSentinel = "{}"

// historyLimit bounds how many past messages the ask path sees.
const historyLimit = 5

type RedisMessageStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisMessageStore(ctx context.Context) *RedisMessageStore {
	redis := redisStore.GetRedisStore(ctx, config.RedisMessageStore)
	if redis == nil {
		return nil
	}
	return &RedisMessageStore{
		store:  redis,
		logger: logger_i.NewLogger("MessageStore"),
	}
}

func TestMessageStore(store *redisStore.Store) *RedisMessageStore {
	return &RedisMessageStore{
		store:  store,
		logger: logger_i.NewLogger("test message store"),
	}
}

func (s *RedisMessageStore) ValidateSessionId(ctx context.Context, id string) bool {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "session Id", id)
	log.Debug("validating sessionId")
	isFound, err := s.store.Exists(ctx, id)
	if err != nil {
		log.Error("Failed to check if sessionId exists", "err", err)
		return false
	}
	return isFound
}

func (s *RedisMessageStore) InitNewSession(ctx context.Context, id string) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "session Id", id)
	log.Debug("Initializing new session")
	if err := s.store.Del(ctx, id); err != nil {
		log.Error("Error clearing previous session", "error", err)
	}
	if err := s.store.ListPush(ctx, id, sessionSentinel); err != nil {
		return err
	}
	return s.store.Expire(ctx, id, config.RedisMessageStoreTTL)
}

func (s *RedisMessageStore) AppendMessage(ctx context.Context, sessionId string, msg jobModel.ChatMessage) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "session Id", sessionId)
	if !s.ValidateSessionId(ctx, sessionId) {
		err := errors.New("invalid session id")
		log.Error("Failed validation before saving", "err", err)
		return err
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := s.store.ListPush(ctx, sessionId, data); err != nil {
		log.Error("error saving message", "error", err)
		return err
	}
	log.Debug("Saved message successfully")
	return s.store.Expire(ctx, sessionId, config.RedisMessageStoreTTL)
}

// GetMessageHistory returns the most recent messages in chronological order.
func (s *RedisMessageStore) GetMessageHistory(ctx context.Context, sessionId string) ([]string, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "session Id", sessionId)
	log.Debug("Getting message history")

	res, err := s.store.ListGetRecent(ctx, sessionId, historyLimit+1)
	if err != nil {
		log.Error("Error getting history", "error", err)
		return nil, err
	}

	messages := make([]string, 0, len(res))
	for _, entry := range res {
		if entry == sessionSentinel || entry == "" {
			continue
		}
		messages = append(messages, entry)
	}
	if len(messages) > historyLimit {
		messages = messages[len(messages)-historyLimit:]
	}
	return messages, nil
}
