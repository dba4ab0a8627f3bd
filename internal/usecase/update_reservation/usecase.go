package update_reservation

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/internal/engine/access"
	"github.com/m04kA/SMC-RentalService/internal/engine/confirmation"
	"github.com/m04kA/SMC-RentalService/internal/engine/links"
	"github.com/m04kA/SMC-RentalService/internal/engine/notify"
	"github.com/m04kA/SMC-RentalService/internal/engine/overlap"
	"github.com/m04kA/SMC-RentalService/internal/infra/storage/audit"
	reservationRepo "github.com/m04kA/SMC-RentalService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-RentalService/internal/integrations/pricing"
)

// UseCase use case для изменения бронирования
type UseCase struct {
	reservationRepo ReservationRepository
	buffer          BufferProvider
	pricingClient   PricingClient
	linkWriter      LinkWriter
	auditSink       AuditSink
	notifier        Notifier
	locker          Locker
	metrics         Metrics
	txManager       TransactionManager
	calendar        *domain.Calendar
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	buffer BufferProvider,
	pricingClient PricingClient,
	linkWriter LinkWriter,
	auditSink AuditSink,
	notifier Notifier,
	locker Locker,
	metrics Metrics,
	txManager TransactionManager,
	calendar *domain.Calendar,
	logger Logger,
) *UseCase {
	return &UseCase{
		reservationRepo: reservationRepo,
		buffer:          buffer,
		pricingClient:   pricingClient,
		linkWriter:      linkWriter,
		auditSink:       auditSink,
		notifier:        notifier,
		locker:          locker,
		metrics:         metrics,
		txManager:       txManager,
		calendar:        calendar,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет часы (для тестов)
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute применяет патч к бронированию.
// Права проверяются по полям до любой записи, пересчет цены требует EditPrice.
// Пересечение подтвержденного
// бронирования с подтвержденным соседом (с учетом буфера) ничего не записывает.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("UpdateReservation: id=%d, actor=%d (%s)", req.ID, req.Actor.ID, req.Actor.Role)
	now := uc.timeProvider.Now()

	// 1. Текущее состояние
	current, err := uc.reservationRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, uc.mapGetError(req.ID, err)
	}
	if req.Version != nil && *req.Version != current.Version {
		uc.logger.Warn("UpdateReservation: id=%d stale version %d, current %d", req.ID, *req.Version, current.Version)
		return nil, ErrVersionConflict
	}

	// 2. Новое состояние и изменившиеся поля
	candidate := applyPatch(*current, req.Patch, uc.calendar)
	fields := changedFields(*current, candidate)
	if len(fields) == 0 {
		uc.logger.Info("UpdateReservation: id=%d nothing to change", req.ID)
		return &Response{Status: StatusOK, Reservation: current, ConflictIDs: []int64{}}, nil
	}

	// 3. Права на каждое поле
	accessCtx := access.ContextFor(req.Actor, *current, uc.calendar, now)
	caps := access.Evaluate(accessCtx)
	if denied := access.CheckPatch(caps, fields); len(denied) > 0 {
		uc.logger.Warn("UpdateReservation: actor=%d may not change %v of id=%d", req.Actor.ID, denied, req.ID)
		return nil, &domain.PermissionError{Operation: "update", Fields: access.Strings(denied)}
	}

	// 4. Валидация
	if vErr := domain.ValidateReservation(candidate, uc.calendar); vErr != nil {
		uc.logger.Warn("UpdateReservation: validation failed: %v", vErr)
		return nil, vErr
	}

	// 5. Пересчет цены, если она не задана явно. Без EditPrice цена остается прежней.
	if req.Patch.Price == nil && needsQuote(fields) {
		if caps.EditPrice {
			if err := uc.quote(ctx, &candidate); err != nil {
				return nil, err
			}
		} else {
			uc.logger.Info("UpdateReservation: id=%d price kept, actor=%d may not change it", req.ID, req.Actor.ID)
		}
	}

	// 6. Решение и запись под блокировкой автомобиля
	unlock := uc.locker.Lock(resourceKey(current.ResourceID))
	defer unlock()

	var resp *Response
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 6.1. Повторное чтение с блокировкой строки
		locked, err := uc.reservationRepo.GetByID(txCtx, req.ID)
		if err != nil {
			return uc.mapGetError(req.ID, err)
		}
		if locked.Version != current.Version || locked.ResourceID != current.ResourceID {
			return ErrVersionConflict
		}
		next := candidate.Clone()
		next.ConflictLinks = locked.ConflictLinks.Clone()

		// 6.2. Соседи по автомобилю (FOR UPDATE)
		peers, err := uc.reservationRepo.ListByResource(txCtx, next.ResourceID)
		if err != nil {
			uc.logger.Error("UpdateReservation: failed to list reservations: %v", err)
			return fmt.Errorf("%w: failed to list reservations: %v", ErrInternal, err)
		}

		// 6.3. Проверка пересечений при смене интервала
		status := StatusOK
		conflictIDs := []int64{}
		if intervalChanged(*locked, next) {
			if next.Confirmed {
				buffer, err := uc.buffer.Buffer(txCtx)
				if err != nil {
					uc.logger.Error("UpdateReservation: failed to load buffer: %v", err)
					return fmt.Errorf("%w: failed to load buffer: %v", ErrInternal, err)
				}
				decision := confirmation.Evaluate(next, peers, buffer)
				if !decision.CanConfirm {
					uc.logger.Warn("UpdateReservation: id=%d blocked: %s", req.ID, decision.Message)
					resp = &Response{
						Status:      StatusConflictBlock,
						Reservation: locked,
						ConflictIDs: decision.BlockingConfirmed,
						Message:     decision.Message,
					}
					return nil
				}
			}
			conflictIDs = overlap.IDs(overlap.Conflicts(next, peers))
			if len(conflictIDs) > 0 {
				status = StatusConflictWarning
			}
		}

		// 6.4. Запись (check-and-set по версии)
		if err := uc.reservationRepo.Update(txCtx, &next); err != nil {
			if errors.Is(err, reservationRepo.ErrVersionConflict) {
				return ErrVersionConflict
			}
			uc.logger.Error("UpdateReservation: failed to update id=%d: %v", req.ID, err)
			return fmt.Errorf("%w: failed to update reservation: %v", ErrInternal, err)
		}

		// 6.5. Ссылки конфликтов
		plan := links.Relink(next, peers)
		uc.linkWriter.Apply(txCtx, plan.Intents, next.ResourceID)
		next.ConflictLinks = plan.Links

		// 6.6. Аудит
		before := access.Take(accessCtx)
		after := access.Take(access.ContextFor(req.Actor, next, uc.calendar, now))
		entry := audit.NewEntry(req.Actor, string(notify.ActionUpdated), next.ID, &before, &after)
		entry.Details["fields"] = access.Strings(fields)
		if len(conflictIDs) > 0 {
			entry.Details["conflicts"] = conflictIDs
		}
		if err := uc.auditSink.Append(txCtx, entry); err != nil {
			uc.logger.Error("UpdateReservation: failed to append audit entry: %v", err)
			return fmt.Errorf("%w: failed to append audit entry: %v", ErrInternal, err)
		}

		resp = &Response{Status: status, Reservation: &next, ConflictIDs: conflictIDs}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.ObserveConflict("update", string(resp.Status))

	ev := notify.Event{
		Action:      notify.ActionUpdated,
		Actor:       req.Actor,
		Reservation: *resp.Reservation,
		Conflict:    resp.Status != StatusOK,
		ConflictIDs: resp.ConflictIDs,
		Bucket:      accessCtx.Bucket,
	}
	if resp.Status == StatusConflictBlock {
		ev.Action = notify.ActionConflictBlocked
	}
	uc.publish(ctx, ev)

	uc.logger.Info("UpdateReservation: id=%d done, status=%s", req.ID, resp.Status)
	return resp, nil
}

func (uc *UseCase) quote(ctx context.Context, r *domain.Reservation) error {
	quote, err := uc.pricingClient.Quote(ctx, pricing.NewQuoteRequest(*r))
	if err != nil {
		if errors.Is(err, pricing.ErrRejected) {
			uc.logger.Warn("UpdateReservation: pricing rejected request: %v", err)
			return fmt.Errorf("%w: %v", ErrPriceRejected, err)
		}
		uc.logger.Error("UpdateReservation: pricing failed: %v", err)
		return fmt.Errorf("%w: %v", ErrPricingUnavailable, err)
	}
	r.Price = quote.Price
	if quote.Days > 0 {
		r.Days = quote.Days
	}
	return nil
}

func (uc *UseCase) mapGetError(id int64, err error) error {
	if errors.Is(err, reservationRepo.ErrReservationNotFound) {
		uc.logger.Warn("UpdateReservation: reservation id=%d not found", id)
		return ErrReservationNotFound
	}
	uc.logger.Error("UpdateReservation: failed to get reservation id=%d: %v", id, err)
	return fmt.Errorf("%w: failed to get reservation: %v", ErrInternal, err)
}

// publish ошибки доставки не влияют на результат операции
func (uc *UseCase) publish(ctx context.Context, ev notify.Event) {
	if err := uc.notifier.Publish(ctx, notify.Plan(ev)); err != nil {
		uc.logger.Warn("UpdateReservation: failed to publish notifications for id=%d: %v", ev.Reservation.ID, err)
	}
}

func resourceKey(id int64) string {
	return "resource:" + strconv.FormatInt(id, 10)
}
