package confirm_reservation

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/internal/engine/access"
	"github.com/m04kA/SMC-RentalService/internal/engine/confirmation"
	"github.com/m04kA/SMC-RentalService/internal/engine/notify"
	"github.com/m04kA/SMC-RentalService/internal/infra/storage/audit"
	reservationRepo "github.com/m04kA/SMC-RentalService/internal/infra/storage/reservation"
)

// UseCase use case подтверждения и снятия подтверждения
type UseCase struct {
	reservationRepo ReservationRepository
	buffer          BufferProvider
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

// Confirm подтверждает бронирование. Пересечение с подтвержденным соседом
// с учетом буфера блокирует подтверждение; пересечение с неподтвержденными
// только предупреждает.
func (uc *UseCase) Confirm(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("ConfirmReservation: id=%d, actor=%d (%s)", req.ID, req.Actor.ID, req.Actor.Role)

	var resp *Response
	var event *notify.Event
	err := uc.withReservation(ctx, req.ID, func(txCtx context.Context, r *domain.Reservation) error {
		accessCtx := access.ContextFor(req.Actor, *r, uc.calendar, uc.timeProvider.Now())
		if !access.CanConfirm(accessCtx) {
			uc.logger.Warn("ConfirmReservation: actor=%d may not confirm id=%d", req.Actor.ID, req.ID)
			return &domain.PermissionError{Operation: "confirm"}
		}

		// 1. Уже подтверждено
		if r.Confirmed {
			resp = &Response{Status: StatusConfirmed, Level: confirmation.LevelNone, Blocking: []int64{}, Affected: []int64{}, Reservation: r}
			return nil
		}

		// 2. Решение по соседям
		peers, err := uc.reservationRepo.ListByResource(txCtx, r.ResourceID)
		if err != nil {
			uc.logger.Error("ConfirmReservation: failed to list reservations: %v", err)
			return fmt.Errorf("%w: failed to list reservations: %v", ErrInternal, err)
		}
		buffer, err := uc.buffer.Buffer(txCtx)
		if err != nil {
			uc.logger.Error("ConfirmReservation: failed to load buffer: %v", err)
			return fmt.Errorf("%w: failed to load buffer: %v", ErrInternal, err)
		}
		decision := confirmation.Evaluate(*r, peers, buffer)

		resp = &Response{
			Level:    decision.Level,
			Message:  decision.Message,
			Blocking: decision.BlockingConfirmed,
			Affected: decision.AffectedPending,
		}
		if !decision.CanConfirm {
			uc.logger.Warn("ConfirmReservation: id=%d blocked: %s", req.ID, decision.Message)
			resp.Status = StatusBlocked
			resp.Reservation = r
			event = &notify.Event{
				Action:      notify.ActionConflictBlocked,
				Actor:       req.Actor,
				Reservation: *r,
				Conflict:    true,
				ConflictIDs: decision.BlockingConfirmed,
				Bucket:      accessCtx.Bucket,
			}
			return nil
		}

		// 3. Запись
		next := r.Clone()
		next.Confirmed = true
		if err := uc.save(txCtx, req.Actor, accessCtx, &next, notify.ActionConfirmed); err != nil {
			return err
		}

		resp.Status = StatusConfirmed
		resp.Reservation = &next
		event = &notify.Event{
			Action:      notify.ActionConfirmed,
			Actor:       req.Actor,
			Reservation: next,
			Conflict:    len(decision.AffectedPending) > 0,
			ConflictIDs: decision.AffectedPending,
			Bucket:      accessCtx.Bucket,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	level := string(resp.Level)
	if level == "" {
		level = "none"
	}
	uc.metrics.ObserveConflict("confirm", level)
	uc.publish(ctx, event)

	uc.logger.Info("ConfirmReservation: id=%d status=%s", req.ID, resp.Status)
	return resp, nil
}

// Unconfirm снимает подтверждение
func (uc *UseCase) Unconfirm(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("UnconfirmReservation: id=%d, actor=%d (%s)", req.ID, req.Actor.ID, req.Actor.Role)

	var resp *Response
	var event *notify.Event
	err := uc.withReservation(ctx, req.ID, func(txCtx context.Context, r *domain.Reservation) error {
		accessCtx := access.ContextFor(req.Actor, *r, uc.calendar, uc.timeProvider.Now())
		if !access.CanUnconfirm(accessCtx) {
			uc.logger.Warn("UnconfirmReservation: actor=%d may not unconfirm id=%d", req.Actor.ID, req.ID)
			return &domain.PermissionError{Operation: "unconfirm"}
		}

		resp = &Response{Status: StatusUnconfirmed, Level: confirmation.LevelNone, Blocking: []int64{}, Affected: []int64{}, Reservation: r}
		if !r.Confirmed {
			return nil
		}

		next := r.Clone()
		next.Confirmed = false
		if err := uc.save(txCtx, req.Actor, accessCtx, &next, notify.ActionUnconfirmed); err != nil {
			return err
		}

		resp.Reservation = &next
		event = &notify.Event{
			Action:      notify.ActionUnconfirmed,
			Actor:       req.Actor,
			Reservation: next,
			Bucket:      accessCtx.Bucket,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.publish(ctx, event)
	uc.logger.Info("UnconfirmReservation: id=%d status=%s", req.ID, resp.Status)
	return resp, nil
}

// withReservation блокирует автомобиль бронирования и выполняет fn в
// сериализуемой транзакции над перечитанным с блокировкой бронированием
func (uc *UseCase) withReservation(ctx context.Context, id int64, fn func(txCtx context.Context, r *domain.Reservation) error) error {
	current, err := uc.reservationRepo.GetByID(ctx, id)
	if err != nil {
		return uc.mapGetError(id, err)
	}

	unlock := uc.locker.Lock(resourceKey(current.ResourceID))
	defer unlock()

	return uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		locked, err := uc.reservationRepo.GetByID(txCtx, id)
		if err != nil {
			return uc.mapGetError(id, err)
		}
		if locked.ResourceID != current.ResourceID {
			return ErrVersionConflict
		}
		return fn(txCtx, locked)
	})
}

func (uc *UseCase) save(ctx context.Context, actor domain.Actor, beforeCtx access.Context, next *domain.Reservation, action notify.Action) error {
	if err := uc.reservationRepo.Update(ctx, next); err != nil {
		if errors.Is(err, reservationRepo.ErrVersionConflict) {
			return ErrVersionConflict
		}
		uc.logger.Error("ConfirmReservation: failed to update id=%d: %v", next.ID, err)
		return fmt.Errorf("%w: failed to update reservation: %v", ErrInternal, err)
	}

	before := access.Take(beforeCtx)
	after := access.Take(access.ContextFor(actor, *next, uc.calendar, uc.timeProvider.Now()))
	if err := uc.auditSink.Append(ctx, audit.NewEntry(actor, string(action), next.ID, &before, &after)); err != nil {
		uc.logger.Error("ConfirmReservation: failed to append audit entry: %v", err)
		return fmt.Errorf("%w: failed to append audit entry: %v", ErrInternal, err)
	}
	return nil
}

func (uc *UseCase) mapGetError(id int64, err error) error {
	if errors.Is(err, reservationRepo.ErrReservationNotFound) {
		uc.logger.Warn("ConfirmReservation: reservation id=%d not found", id)
		return ErrReservationNotFound
	}
	uc.logger.Error("ConfirmReservation: failed to get reservation id=%d: %v", id, err)
	return fmt.Errorf("%w: failed to get reservation: %v", ErrInternal, err)
}

// publish ошибки доставки не влияют на результат операции
func (uc *UseCase) publish(ctx context.Context, ev *notify.Event) {
	if ev == nil {
		return
	}
	if err := uc.notifier.Publish(ctx, notify.Plan(*ev)); err != nil {
		uc.logger.Warn("ConfirmReservation: failed to publish notifications for id=%d: %v", ev.Reservation.ID, err)
	}
}

func resourceKey(id int64) string {
	return "resource:" + strconv.FormatInt(id, 10)
}
