package cache

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"

	"github.com/m04kA/SMC-RentalService/internal/domain"
)

type sessionValue struct {
	ActorID int64  `json:"actor_id"`
	Role    string `json:"role"`
}

// SessionStore сессии операторов. В Redis хранится только хэш токена.
type SessionStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewSessionStore создает хранилище сессий
func NewSessionStore(client redis.UniversalClient, prefix string, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, prefix: prefix, ttl: ttl}
}

// TokenHash BLAKE2b-256 токена в hex
func TokenHash(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (s *SessionStore) key(token string) string {
	return s.prefix + "session:" + TokenHash(token)
}

// Create выпускает токен для оператора
func (s *SessionStore) Create(ctx context.Context, actor domain.Actor) (string, error) {
	token := uuid.NewString()
	payload, err := json.Marshal(sessionValue{ActorID: actor.ID, Role: string(actor.Role)})
	if err != nil {
		return "", fmt.Errorf("%w: Create - marshal: %v", ErrCacheUnavailable, err)
	}
	if err := s.client.Set(ctx, s.key(token), payload, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("%w: Create - set: %v", ErrCacheUnavailable, err)
	}
	return token, nil
}

// Lookup оператор по токену
func (s *SessionStore) Lookup(ctx context.Context, token string) (*domain.Actor, error) {
	data, err := s.client.Get(ctx, s.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("%w: Lookup - get: %v", ErrCacheUnavailable, err)
	}

	var v sessionValue
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: Lookup - unmarshal: %v", ErrCacheUnavailable, err)
	}
	role, err := domain.ParseRole(v.Role)
	if err != nil {
		return nil, fmt.Errorf("%w: Lookup - role: %v", ErrSessionNotFound, err)
	}
	return &domain.Actor{ID: v.ActorID, Role: role}, nil
}

// Revoke удаляет сессию
func (s *SessionStore) Revoke(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, s.key(token)).Err(); err != nil {
		return fmt.Errorf("%w: Revoke - del: %v", ErrCacheUnavailable, err)
	}
	return nil
}
