package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"storefront/cart/internal/domain"

	"github.com/redis/go-redis/v9"
)

// SessionState is what survives between CLI runs: the client-only saved
// list and the backend session cookie.
type SessionState struct {
	SessionCookie string            `json:"session_cookie,omitempty"`
	Saved         []domain.CartItem `json:"saved"`
}

type StateManager interface {
	Load(ctx context.Context, session string) (*SessionState, error)
	Save(ctx context.Context, session string, st *SessionState) error
	Delete(ctx context.Context, session string) error
}

type redisStateManager struct {
	redisClient *redis.Client
	keyPrefix   string
}

func NewRedisStateManager(redisClient *redis.Client, keyPrefix string) StateManager {
	return &redisStateManager{
		redisClient: redisClient,
		keyPrefix:   keyPrefix,
	}
}

func (s *redisStateManager) Load(ctx context.Context, session string) (*SessionState, error) {
	val, err := s.redisClient.Get(ctx, s.keyPrefix+session).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return &SessionState{Saved: []domain.CartItem{}}, nil // Nothing saved yet
		}
		return nil, fmt.Errorf("failed to load session %s: %w", session, err)
	}

	var st SessionState
	if err := json.Unmarshal(val, &st); err != nil {
		return nil, fmt.Errorf("failed to decode session %s: %w", session, err)
	}
	if st.Saved == nil {
		st.Saved = []domain.CartItem{}
	}
	return &st, nil
}

func (s *redisStateManager) Save(ctx context.Context, session string, st *SessionState) error {
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", session, err)
	}

	if err := s.redisClient.Set(ctx, s.keyPrefix+session, data, 0).Err(); err != nil { // No expiration
		return fmt.Errorf("failed to save session %s: %w", session, err)
	}
	return nil
}

func (s *redisStateManager) Delete(ctx context.Context, session string) error {
	if err := s.redisClient.Del(ctx, s.keyPrefix+session).Err(); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", session, err)
	}
	return nil
}

// memoryStateManager keeps state for the lifetime of the process, used when
// redis is disabled.
type memoryStateManager struct {
	mu       sync.Mutex
	sessions map[string]SessionState
}

func NewMemoryStateManager() StateManager {
	return &memoryStateManager{sessions: make(map[string]SessionState)}
}

func (m *memoryStateManager) Load(_ context.Context, session string) (*SessionState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.sessions[session]
	if !ok {
		return &SessionState{Saved: []domain.CartItem{}}, nil
	}
	st.Saved = append([]domain.CartItem{}, st.Saved...)
	return &st, nil
}

func (m *memoryStateManager) Save(_ context.Context, session string, st *SessionState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[session] = SessionState{
		SessionCookie: st.SessionCookie,
		Saved:         append([]domain.CartItem{}, st.Saved...),
	}
	return nil
}

func (m *memoryStateManager) Delete(_ context.Context, session string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, session)
	return nil
}
