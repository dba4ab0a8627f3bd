// Package linkage записывает ссылки конфликтов и чинит их, если запись не удалась.
package linkage

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/SMC-RentalService/internal/engine/links"
)

// Config параметры повторов и фоновой сверки
type Config struct {
	MaxAttempts int
	Backoff     time.Duration
	Interval    time.Duration
	BatchSize   int
}

// DefaultConfig параметры по умолчанию
func DefaultConfig() Config {
	return Config{
		MaxAttempts: 3,
		Backoff:     10 * time.Millisecond,
		Interval:    time.Minute,
		BatchSize:   50,
	}
}

// Reconciler запись ссылок с повторами и фоновая сверка
type Reconciler struct {
	repo      Repository
	txManager TransactionManager
	metrics   Metrics
	cfg       Config
	logger    Logger
}

// NewReconciler создает reconciler; metrics может быть nil
func NewReconciler(repo Repository, txManager TransactionManager, metrics Metrics, cfg Config, logger Logger) *Reconciler {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	return &Reconciler{repo: repo, txManager: txManager, metrics: metrics, cfg: cfg, logger: logger}
}

// Apply пишет ссылки, повторяя запись до MaxAttempts раз с линейной задержкой.
// Если все попытки неудачны, затронутые автомобили ставятся в очередь сверки,
// а основная запись не откатывается. Возвращает false, если ссылки не записаны.
func (r *Reconciler) Apply(ctx context.Context, intents []links.Intent, resourceIDs ...int64) bool {
	if len(intents) == 0 {
		return true
	}

	var err error
retry:
	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		if err = r.repo.ApplyLinks(ctx, intents); err == nil {
			r.observe("applied")
			return true
		}
		r.logger.Warn("Linkage: attempt %d/%d to write %d link intents failed: %v",
			attempt, r.cfg.MaxAttempts, len(intents), err)

		if attempt < r.cfg.MaxAttempts {
			select {
			case <-ctx.Done():
				break retry
			case <-time.After(time.Duration(attempt) * r.cfg.Backoff):
			}
		}
	}

	r.logger.Error("Linkage: giving up on %d link intents for resources %v: %v", len(intents), resourceIDs, err)
	r.observe("deferred")
	for _, id := range resourceIDs {
		if markErr := r.repo.MarkDirty(ctx, id, err.Error()); markErr != nil {
			r.logger.Error("Linkage: failed to mark resource id=%d dirty: %v", id, markErr)
		}
	}
	return false
}

// ReconcileResource пересчитывает ссылки всех бронирований автомобиля с нуля.
// Возвращает количество примененных намерений.
func (r *Reconciler) ReconcileResource(ctx context.Context, resourceID int64) (int, error) {
	var applied int
	err := r.txManager.DoSerializable(ctx, func(ctx context.Context) error {
		list, err := r.repo.ListByResource(ctx, resourceID)
		if err != nil {
			return fmt.Errorf("%w: list reservations: %v", ErrReconcile, err)
		}

		intents := links.Rebuild(list)
		if err := r.repo.ApplyLinks(ctx, intents); err != nil {
			return fmt.Errorf("%w: apply links: %v", ErrReconcile, err)
		}
		if err := r.repo.ClearDirty(ctx, resourceID); err != nil {
			return fmt.Errorf("%w: clear dirty: %v", ErrReconcile, err)
		}
		applied = len(intents)
		return nil
	})
	if err != nil {
		r.observe("failed")
		r.logger.Error("Linkage: reconcile resource id=%d failed: %v", resourceID, err)
		return 0, err
	}

	r.observe("reconciled")
	if applied > 0 {
		r.logger.Info("Linkage: resource id=%d reconciled, %d link intents applied", resourceID, applied)
	}
	return applied, nil
}

// RunOnce сверяет одну пачку автомобилей из очереди
func (r *Reconciler) RunOnce(ctx context.Context) (int, error) {
	ids, err := r.repo.ListDirty(ctx, r.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("%w: list dirty: %v", ErrReconcile, err)
	}

	done := 0
	for _, id := range ids {
		if _, err := r.ReconcileResource(ctx, id); err != nil {
			continue
		}
		done++
	}
	return done, nil
}

// Run фоновая сверка до отмены ctx
func (r *Reconciler) Run(ctx context.Context) {
	interval := r.cfg.Interval
	if interval <= 0 {
		interval = DefaultConfig().Interval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.logger.Info("Linkage: reconcile worker started, interval=%s", interval)
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Linkage: reconcile worker stopped")
			return
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil {
				r.logger.Error("Linkage: reconcile pass failed: %v", err)
			}
		}
	}
}

func (r *Reconciler) observe(result string) {
	if r.metrics != nil {
		r.metrics.ObserveLinkReconcile(result)
	}
}
