package abuseguard

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int64
	expires time.Time
}

// MemoryCounter оконный счетчик в памяти процесса
type MemoryCounter struct {
	mu      sync.Mutex
	now     func() time.Time
	windows map[string]*window
	events  map[string][]time.Time
}

// NewMemoryCounter создает счетчик; now == nil означает time.Now
func NewMemoryCounter(now func() time.Time) *MemoryCounter {
	if now == nil {
		now = time.Now
	}
	return &MemoryCounter{now: now, windows: make(map[string]*window), events: make(map[string][]time.Time)}
}

// Incr увеличивает счетчик key
func (c *MemoryCounter) Incr(_ context.Context, key string, d time.Duration) (int64, time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	w, ok := c.windows[key]
	if !ok || !now.Before(w.expires) {
		w = &window{expires: now.Add(d)}
		c.windows[key] = w
	}
	w.count++
	return w.count, w.expires.Sub(now), nil
}

// Slide отмечает событие key и считает события за последние d
func (c *MemoryCounter) Slide(_ context.Context, key string, d time.Duration, at time.Time) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := at.Add(-d)
	kept := c.events[key][:0]
	for _, t := range c.events[key] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	kept = append(kept, at)
	c.events[key] = kept
	return int64(len(kept)), nil
}

// MemoryBanStore баны в памяти процесса
type MemoryBanStore struct {
	mu   sync.RWMutex
	now  func() time.Time
	bans map[string]Ban
}

// NewMemoryBanStore создает хранилище; now == nil означает time.Now
func NewMemoryBanStore(now func() time.Time) *MemoryBanStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryBanStore{now: now, bans: make(map[string]Ban)}
}

// Get активный бан или nil
func (s *MemoryBanStore) Get(_ context.Context, subject string) (*Ban, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ban, ok := s.bans[subject]
	if !ok || !ban.Active(s.now()) {
		return nil, nil
	}
	return &ban, nil
}

// Put сохраняет бан, заменяя предыдущий
func (s *MemoryBanStore) Put(_ context.Context, ban Ban) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bans[ban.Subject] = ban
	return nil
}

// Delete удаляет бан
func (s *MemoryBanStore) Delete(_ context.Context, subject string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.bans, subject)
	return nil
}
