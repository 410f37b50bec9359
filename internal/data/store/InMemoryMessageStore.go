package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/avanth/docuquery/internal/domain/jobModel"
)

// InMemoryMessageStore is the fallback chat sink when Redis is offline.
type InMemoryMessageStore struct {
	chatLock *sync.RWMutex
	chatMap  map[string][]jobModel.ChatMessage
}

func InitMessageStore() *InMemoryMessageStore {
	return &InMemoryMessageStore{
		chatLock: new(sync.RWMutex),
		chatMap:  make(map[string][]jobModel.ChatMessage),
	}
}

func (store *InMemoryMessageStore) ValidateSessionId(ctx context.Context, id string) bool {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()
	_, ok := store.chatMap[id]
	return ok
}

func (store *InMemoryMessageStore) InitNewSession(ctx context.Context, id string) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	store.chatMap[id] = make([]jobModel.ChatMessage, 0)
	return nil
}

func (store *InMemoryMessageStore) AppendMessage(ctx context.Context, sessionId string, msg jobModel.ChatMessage) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	if _, ok := store.chatMap[sessionId]; !ok {
		return errors.New("invalid session id")
	}
	store.chatMap[sessionId] = append(store.chatMap[sessionId], msg)
	return nil
}

func (store *InMemoryMessageStore) GetMessageHistory(ctx context.Context, sessionId string) ([]string, error) {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()

	msgs := store.chatMap[sessionId]
	if len(msgs) > historyLimit {
		msgs = msgs[len(msgs)-historyLimit:]
	}

	history := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		data, err := json.Marshal(msg)
		if err != nil {
			return nil, err
		}
		history = append(history, string(data))
	}
	return history, nil
}
