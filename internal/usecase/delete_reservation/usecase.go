package delete_reservation

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/internal/engine/access"
	"github.com/m04kA/SMC-RentalService/internal/engine/links"
	"github.com/m04kA/SMC-RentalService/internal/engine/notify"
	"github.com/m04kA/SMC-RentalService/internal/infra/storage/audit"
	reservationRepo "github.com/m04kA/SMC-RentalService/internal/infra/storage/reservation"
)

// UseCase use case удаления бронирования
type UseCase struct {
	reservationRepo ReservationRepository
	linkWriter      LinkWriter
	auditSink       AuditSink
	notifier        Notifier
	locker          Locker
	txManager       TransactionManager
	calendar        *domain.Calendar
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	reservationRepo ReservationRepository,
	linkWriter LinkWriter,
	auditSink AuditSink,
	notifier Notifier,
	locker Locker,
	txManager TransactionManager,
	calendar *domain.Calendar,
	logger Logger,
) *UseCase {
	return &UseCase{
		reservationRepo: reservationRepo,
		linkWriter:      linkWriter,
		auditSink:       auditSink,
		notifier:        notifier,
		locker:          locker,
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

// Execute удаляет бронирование и ссылки на него у соседей
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("DeleteReservation: id=%d, actor=%d (%s)", req.ID, req.Actor.ID, req.Actor.Role)

	// 1. Текущее состояние
	current, err := uc.reservationRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, uc.mapGetError(req.ID, err)
	}

	unlock := uc.locker.Lock(resourceKey(current.ResourceID))
	defer unlock()

	now := uc.timeProvider.Now()
	var deleted domain.Reservation
	var accessCtx access.Context
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 2. Повторное чтение с блокировкой и проверка прав
		locked, err := uc.reservationRepo.GetByID(txCtx, req.ID)
		if err != nil {
			return uc.mapGetError(req.ID, err)
		}
		if locked.ResourceID != current.ResourceID {
			return ErrVersionConflict
		}

		accessCtx = access.ContextFor(req.Actor, *locked, uc.calendar, now)
		if !access.CanDelete(accessCtx) {
			uc.logger.Warn("DeleteReservation: actor=%d may not delete id=%d", req.Actor.ID, req.ID)
			return &domain.PermissionError{Operation: "delete"}
		}

		// 3. Ссылки соседей на удаляемое бронирование
		peers, err := uc.reservationRepo.ListByResource(txCtx, locked.ResourceID)
		if err != nil {
			uc.logger.Error("DeleteReservation: failed to list reservations: %v", err)
			return fmt.Errorf("%w: failed to list reservations: %v", ErrInternal, err)
		}
		uc.linkWriter.Apply(txCtx, links.Unlink(*locked, peers), locked.ResourceID)

		// 4. Удаление
		if err := uc.reservationRepo.Delete(txCtx, req.ID); err != nil {
			if errors.Is(err, reservationRepo.ErrReservationNotFound) {
				return ErrReservationNotFound
			}
			uc.logger.Error("DeleteReservation: failed to delete id=%d: %v", req.ID, err)
			return fmt.Errorf("%w: failed to delete reservation: %v", ErrInternal, err)
		}

		// 5. Аудит
		before := access.Take(accessCtx)
		entry := audit.NewEntry(req.Actor, string(notify.ActionDeleted), req.ID, &before, nil)
		entry.Details["resource_id"] = locked.ResourceID
		entry.Details["confirmed"] = locked.Confirmed
		if err := uc.auditSink.Append(txCtx, entry); err != nil {
			uc.logger.Error("DeleteReservation: failed to append audit entry: %v", err)
			return fmt.Errorf("%w: failed to append audit entry: %v", ErrInternal, err)
		}

		deleted = *locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	ev := notify.Event{
		Action:      notify.ActionDeleted,
		Actor:       req.Actor,
		Reservation: deleted,
		Bucket:      accessCtx.Bucket,
	}
	if err := uc.notifier.Publish(ctx, notify.Plan(ev)); err != nil {
		uc.logger.Warn("DeleteReservation: failed to publish notifications for id=%d: %v", req.ID, err)
	}

	uc.logger.Info("DeleteReservation: id=%d deleted", req.ID)
	return &Response{Deleted: deleted}, nil
}

func (uc *UseCase) mapGetError(id int64, err error) error {
	if errors.Is(err, reservationRepo.ErrReservationNotFound) {
		uc.logger.Warn("DeleteReservation: reservation id=%d not found", id)
		return ErrReservationNotFound
	}
	uc.logger.Error("DeleteReservation: failed to get reservation id=%d: %v", id, err)
	return fmt.Errorf("%w: failed to get reservation: %v", ErrInternal, err)
}

func resourceKey(id int64) string {
	return "resource:" + strconv.FormatInt(id, 10)
}
