// Package abuseguard защищает анонимное создание бронирований от спама.
//
// Каждая заявка проходит CHECK_BAN -> CHECK_RATE_LIMIT -> CHECK_SUSPICIOUS_PAYLOAD,
// затем выполняется сама операция и записывается ее результат.
package abuseguard

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Guard защита операции создания
type Guard struct {
	cfg          Config
	counter      Counter
	bans         BanStore
	metrics      Metrics
	timeProvider TimeProvider
	logger       Logger
}

// NewGuard создает guard; metrics может быть nil
func NewGuard(cfg Config, counter Counter, bans BanStore, metrics Metrics, logger Logger) *Guard {
	return &Guard{
		cfg:          cfg,
		counter:      counter,
		bans:         bans,
		metrics:      metrics,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет часы (для тестов)
func (g *Guard) WithTimeProvider(tp TimeProvider) *Guard {
	g.timeProvider = tp
	return g
}

// Protect выполняет fn, если клиент прошел все проверки.
// Ошибки хранилища счетчиков не блокируют заявку: бронирование важнее учета.
func (g *Guard) Protect(ctx context.Context, req Request, fn func(ctx context.Context) (Outcome, error)) error {
	if req.Verified {
		g.observe("bypassed")
		_, err := fn(ctx)
		return err
	}

	key := req.Meta.Key()

	// 1. CHECK_BAN
	if err := g.checkBan(ctx, req.Meta); err != nil {
		g.observe("banned")
		return err
	}

	// 2. CHECK_RATE_LIMIT
	count, ttl, err := g.counter.Incr(ctx, "rate:"+key, g.cfg.RateWindow)
	if err != nil {
		g.logger.Warn("AbuseGuard: rate counter unavailable for key=%s: %v", key, err)
	} else if count > g.cfg.RateLimit {
		g.logger.Warn("AbuseGuard: rate limit exceeded for key=%s: %d > %d", key, count, g.cfg.RateLimit)
		g.observe("rate_limited")
		return &RateLimitedError{RetryAfter: ttl}
	}

	// 3. CHECK_SUSPICIOUS_PAYLOAD
	hash := Hash(req.Payload)
	dups, err := g.counter.Slide(ctx, "dup:"+key+":"+hash, g.cfg.DuplicateWindow, g.timeProvider.Now())
	if err != nil {
		g.logger.Warn("AbuseGuard: duplicate counter unavailable for key=%s: %v", key, err)
	} else if dups > g.cfg.DuplicateLimit {
		g.logger.Warn("AbuseGuard: %d identical submissions from key=%s, banning", dups, key)
		g.observe("duplicate")
		return g.ban(ctx, req.Meta, ReasonDuplicatePayload, g.cfg.DuplicateBan)
	}

	// 4. DELEGATE
	outcome, fnErr := fn(ctx)
	if fnErr != nil && outcome == "" {
		outcome = OutcomeError
	}
	if outcome == "" {
		outcome = OutcomeSuccess
	}

	// 5. RECORD_OUTCOME
	g.observe(string(outcome))
	if outcome != OutcomeSuccess {
		g.recordFailure(ctx, req.Meta)
	}
	return fnErr
}

func (g *Guard) checkBan(ctx context.Context, meta ClientMeta) error {
	now := g.timeProvider.Now()
	for _, subject := range meta.Subjects() {
		ban, err := g.bans.Get(ctx, subject)
		if err != nil {
			g.logger.Warn("AbuseGuard: ban lookup failed for %s: %v", subject, err)
			continue
		}
		if ban != nil && ban.Active(now) {
			return &BannedError{Reason: ban.Reason, Until: ban.Until}
		}
	}
	return nil
}

func (g *Guard) recordFailure(ctx context.Context, meta ClientMeta) {
	key := meta.Key()
	failures, _, err := g.counter.Incr(ctx, "fail:"+key, g.cfg.FailureWindow)
	if err != nil {
		g.logger.Warn("AbuseGuard: failure counter unavailable for key=%s: %v", key, err)
		return
	}
	if failures >= g.cfg.FailureLimit {
		g.logger.Warn("AbuseGuard: %d failed submissions from key=%s, banning", failures, key)
		_ = g.ban(ctx, meta, ReasonRepeatedFailures, g.cfg.FailureBan)
	}
}

// ban ставит бан на все субъекты клиента и возвращает BannedError
func (g *Guard) ban(ctx context.Context, meta ClientMeta, reason string, d time.Duration) error {
	now := g.timeProvider.Now()
	until := now.Add(d)
	for _, subject := range meta.Subjects() {
		if err := g.bans.Put(ctx, Ban{Subject: subject, Reason: reason, Until: &until, CreatedAt: now}); err != nil {
			g.logger.Error("AbuseGuard: failed to ban %s: %v", subject, err)
		}
	}
	return &BannedError{Reason: reason, Until: &until}
}

// BanManually ручной бан оператором; d == 0 означает бессрочный
func (g *Guard) BanManually(ctx context.Context, subject, reason string, d time.Duration) (*Ban, error) {
	if subject == "" {
		return nil, fmt.Errorf("%w: empty subject", ErrInvalidSubject)
	}
	now := g.timeProvider.Now()
	ban := Ban{Subject: subject, Reason: reason, CreatedAt: now}
	if d > 0 {
		until := now.Add(d)
		ban.Until = &until
	}
	if err := g.bans.Put(ctx, ban); err != nil {
		return nil, fmt.Errorf("BanManually - put: %w", err)
	}
	g.logger.Info("AbuseGuard: %s banned manually: %s", subject, reason)
	return &ban, nil
}

// Unban снимает бан
func (g *Guard) Unban(ctx context.Context, subject string) error {
	if subject == "" {
		return fmt.Errorf("%w: empty subject", ErrInvalidSubject)
	}
	if err := g.bans.Delete(ctx, subject); err != nil {
		return fmt.Errorf("Unban - delete: %w", err)
	}
	g.logger.Info("AbuseGuard: %s unbanned", subject)
	return nil
}

// Lookup активный бан субъекта или nil
func (g *Guard) Lookup(ctx context.Context, subject string) (*Ban, error) {
	ban, err := g.bans.Get(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("Lookup - get: %w", err)
	}
	if ban == nil || !ban.Active(g.timeProvider.Now()) {
		return nil, nil
	}
	return ban, nil
}

// IsRejection ошибка guard, а не защищенной операции
func IsRejection(err error) bool {
	return errors.Is(err, ErrBanned) || errors.Is(err, ErrRateLimited)
}

func (g *Guard) observe(verdict string) {
	if g.metrics != nil {
		g.metrics.ObserveAbuseVerdict(verdict)
	}
}
