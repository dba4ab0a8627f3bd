package move_reservation

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/internal/engine/access"
	"github.com/m04kA/SMC-RentalService/internal/engine/links"
	"github.com/m04kA/SMC-RentalService/internal/engine/notify"
	"github.com/m04kA/SMC-RentalService/internal/engine/overlap"
	"github.com/m04kA/SMC-RentalService/internal/infra/storage/audit"
	fleetRepo "github.com/m04kA/SMC-RentalService/internal/infra/storage/fleet"
	reservationRepo "github.com/m04kA/SMC-RentalService/internal/infra/storage/reservation"
)

// UseCase use case переноса бронирования на другой автомобиль
type UseCase struct {
	reservationRepo ReservationRepository
	vehicleRepo     VehicleRepository
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
	vehicleRepo VehicleRepository,
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
		vehicleRepo:     vehicleRepo,
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

// Execute переносит бронирование на автомобиль TargetResourceID.
// Меняются только автомобиль и госномер. Пересечение с подтвержденным
// бронированием целевого автомобиля ничего не меняет.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("MoveReservation: id=%d -> resource=%d, actor=%d (%s)",
		req.ID, req.TargetResourceID, req.Actor.ID, req.Actor.Role)

	if req.TargetResourceID <= 0 {
		return nil, fmt.Errorf("%w: target resource id must be positive", ErrInvalidInput)
	}

	// 1. Текущее состояние
	current, err := uc.reservationRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, uc.mapGetError(req.ID, err)
	}

	// 2. Уже на целевом автомобиле
	if current.ResourceID == req.TargetResourceID {
		uc.logger.Info("MoveReservation: id=%d already on resource=%d", req.ID, req.TargetResourceID)
		return &Response{Status: StatusOK, Reservation: current, ConflictIDs: []int64{}}, nil
	}

	// 3. Целевой автомобиль
	vehicle, err := uc.vehicleRepo.GetByID(ctx, req.TargetResourceID)
	if err != nil {
		if errors.Is(err, fleetRepo.ErrVehicleNotFound) {
			uc.logger.Warn("MoveReservation: vehicle id=%d not found", req.TargetResourceID)
			return nil, ErrVehicleNotFound
		}
		uc.logger.Error("MoveReservation: failed to get vehicle id=%d: %v", req.TargetResourceID, err)
		return nil, fmt.Errorf("%w: failed to get vehicle: %v", ErrInternal, err)
	}
	if !vehicle.Active {
		return nil, ErrVehicleInactive
	}

	// 4. Права
	now := uc.timeProvider.Now()
	accessCtx := access.ContextFor(req.Actor, *current, uc.calendar, now)
	if !access.CanEdit(accessCtx) {
		uc.logger.Warn("MoveReservation: actor=%d may not move id=%d", req.Actor.ID, req.ID)
		return nil, &domain.PermissionError{Operation: "move"}
	}

	// 5. Оба автомобиля блокируются в одном порядке
	unlock := uc.locker.Lock(resourceKey(current.ResourceID), resourceKey(req.TargetResourceID))
	defer unlock()

	var resp *Response
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 5.1. Повторное чтение с блокировкой
		locked, err := uc.reservationRepo.GetByID(txCtx, req.ID)
		if err != nil {
			return uc.mapGetError(req.ID, err)
		}
		if locked.ResourceID != current.ResourceID {
			return ErrVersionConflict
		}

		// 5.2. Бронирования обоих автомобилей (FOR UPDATE)
		sourcePeers, err := uc.reservationRepo.ListByResource(txCtx, locked.ResourceID)
		if err != nil {
			uc.logger.Error("MoveReservation: failed to list source reservations: %v", err)
			return fmt.Errorf("%w: failed to list reservations: %v", ErrInternal, err)
		}
		targetPeers, err := uc.reservationRepo.ListByResource(txCtx, req.TargetResourceID)
		if err != nil {
			uc.logger.Error("MoveReservation: failed to list target reservations: %v", err)
			return fmt.Errorf("%w: failed to list reservations: %v", ErrInternal, err)
		}

		moved := locked.Clone()
		moved.ResourceID = vehicle.ID
		moved.ResourcePlate = vehicle.Plate

		// 5.3. Пересечения на целевом автомобиле
		conflicts := overlap.Conflicts(moved, targetPeers)
		conflictIDs := overlap.IDs(conflicts)
		if overlap.HasConfirmed(conflicts) {
			uc.logger.Warn("MoveReservation: id=%d blocked by confirmed reservations %v", req.ID, conflictIDs)
			resp = &Response{Status: StatusConflictBlock, Reservation: locked, ConflictIDs: conflictIDs}
			return nil
		}

		// 5.4. Запись
		if err := uc.reservationRepo.Update(txCtx, &moved); err != nil {
			if errors.Is(err, reservationRepo.ErrVersionConflict) {
				return ErrVersionConflict
			}
			uc.logger.Error("MoveReservation: failed to update id=%d: %v", req.ID, err)
			return fmt.Errorf("%w: failed to update reservation: %v", ErrInternal, err)
		}

		// 5.5. Ссылки пересчитываются по обоим автомобилям
		plan := links.Relink(moved, append(sourcePeers, targetPeers...))
		uc.linkWriter.Apply(txCtx, plan.Intents, locked.ResourceID, moved.ResourceID)
		moved.ConflictLinks = plan.Links

		// 5.6. Аудит
		before := access.Take(accessCtx)
		after := access.Take(access.ContextFor(req.Actor, moved, uc.calendar, now))
		entry := audit.NewEntry(req.Actor, string(notify.ActionMoved), moved.ID, &before, &after)
		entry.Details["from_resource"] = locked.ResourceID
		entry.Details["to_resource"] = moved.ResourceID
		if err := uc.auditSink.Append(txCtx, entry); err != nil {
			uc.logger.Error("MoveReservation: failed to append audit entry: %v", err)
			return fmt.Errorf("%w: failed to append audit entry: %v", ErrInternal, err)
		}

		status := StatusOK
		if len(conflictIDs) > 0 {
			status = StatusConflictWarning
		}
		resp = &Response{Status: status, Reservation: &moved, ConflictIDs: conflictIDs}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.ObserveConflict("move", string(resp.Status))

	ev := notify.Event{
		Action:      notify.ActionMoved,
		Actor:       req.Actor,
		Reservation: *resp.Reservation,
		Conflict:    resp.Status != StatusOK,
		ConflictIDs: resp.ConflictIDs,
		Bucket:      accessCtx.Bucket,
	}
	if resp.Status == StatusConflictBlock {
		ev.Action = notify.ActionConflictBlocked
	}
	if err := uc.notifier.Publish(ctx, notify.Plan(ev)); err != nil {
		uc.logger.Warn("MoveReservation: failed to publish notifications for id=%d: %v", req.ID, err)
	}

	uc.logger.Info("MoveReservation: id=%d status=%s", req.ID, resp.Status)
	return resp, nil
}

func (uc *UseCase) mapGetError(id int64, err error) error {
	if errors.Is(err, reservationRepo.ErrReservationNotFound) {
		uc.logger.Warn("MoveReservation: reservation id=%d not found", id)
		return ErrReservationNotFound
	}
	uc.logger.Error("MoveReservation: failed to get reservation id=%d: %v", id, err)
	return fmt.Errorf("%w: failed to get reservation: %v", ErrInternal, err)
}

func resourceKey(id int64) string {
	return "resource:" + strconv.FormatInt(id, 10)
}
