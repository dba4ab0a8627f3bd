package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-RentalService/internal/abuseguard"
)

// BanStore баны в Redis; срок бана задается TTL ключа
type BanStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewBanStore создает хранилище банов
func NewBanStore(client redis.UniversalClient, prefix string) *BanStore {
	return &BanStore{client: client, prefix: prefix, now: time.Now}
}

func (s *BanStore) key(subject string) string {
	return s.prefix + "ban:" + subject
}

// Get активный бан или nil
func (s *BanStore) Get(ctx context.Context, subject string) (*abuseguard.Ban, error) {
	data, err := s.client.Get(ctx, s.key(subject)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: Get - get: %v", ErrCacheUnavailable, err)
	}

	var ban abuseguard.Ban
	if err := json.Unmarshal(data, &ban); err != nil {
		return nil, fmt.Errorf("%w: Get - unmarshal: %v", ErrCacheUnavailable, err)
	}
	if !ban.Active(s.now()) {
		return nil, nil
	}
	return &ban, nil
}

// Put сохраняет бан; бессрочный бан хранится без TTL
func (s *BanStore) Put(ctx context.Context, ban abuseguard.Ban) error {
	payload, err := json.Marshal(ban)
	if err != nil {
		return fmt.Errorf("%w: Put - marshal: %v", ErrCacheUnavailable, err)
	}

	var ttl time.Duration
	if ban.Until != nil {
		ttl = ban.Until.Sub(s.now())
		if ttl <= 0 {
			return nil
		}
	}
	if err := s.client.Set(ctx, s.key(ban.Subject), payload, ttl).Err(); err != nil {
		return fmt.Errorf("%w: Put - set: %v", ErrCacheUnavailable, err)
	}
	return nil
}

// Delete снимает бан
func (s *BanStore) Delete(ctx context.Context, subject string) error {
	if err := s.client.Del(ctx, s.key(subject)).Err(); err != nil {
		return fmt.Errorf("%w: Delete - del: %v", ErrCacheUnavailable, err)
	}
	return nil
}
