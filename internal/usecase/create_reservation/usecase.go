package create_reservation

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/m04kA/SMC-RentalService/internal/abuseguard"
	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/internal/engine/access"
	"github.com/m04kA/SMC-RentalService/internal/engine/links"
	"github.com/m04kA/SMC-RentalService/internal/engine/notify"
	"github.com/m04kA/SMC-RentalService/internal/engine/overlap"
	"github.com/m04kA/SMC-RentalService/internal/infra/storage/audit"
	fleetRepo "github.com/m04kA/SMC-RentalService/internal/infra/storage/fleet"
	"github.com/m04kA/SMC-RentalService/internal/integrations/pricing"
)

// UseCase use case для создания бронирования
type UseCase struct {
	reservationRepo ReservationRepository
	vehicleRepo     VehicleRepository
	pricingClient   PricingClient
	linkWriter      LinkWriter
	auditSink       AuditSink
	notifier        Notifier
	guard           Guard
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
	pricingClient PricingClient,
	linkWriter LinkWriter,
	auditSink AuditSink,
	notifier Notifier,
	guard Guard,
	locker Locker,
	metrics Metrics,
	txManager TransactionManager,
	calendar *domain.Calendar,
	logger Logger,
) *UseCase {
	return &UseCase{
		reservationRepo: reservationRepo,
		vehicleRepo:     vehicleRepo,
		pricingClient:   pricingClient,
		linkWriter:      linkWriter,
		auditSink:       auditSink,
		notifier:        notifier,
		guard:           guard,
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

// Execute создает бронирование. Заявки без сессии оператора проходят через защиту от спама.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	guardReq := abuseguard.Request{
		Meta:     req.Meta,
		Payload:  guardPayload(req, uc.calendar),
		Verified: req.Actor != nil,
	}

	var resp *Response
	err := uc.guard.Protect(ctx, guardReq, func(ctx context.Context) (abuseguard.Outcome, error) {
		var err error
		resp, err = uc.create(ctx, req)
		switch {
		case err != nil:
			return abuseguard.OutcomeError, err
		case resp.Status == StatusRejectedConflict:
			return abuseguard.OutcomeConflict, nil
		default:
			return abuseguard.OutcomeSuccess, nil
		}
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (uc *UseCase) create(ctx context.Context, req *Request) (*Response, error) {
	clientSubmitted := req.Actor == nil
	uc.logger.Info("CreateReservation: resource=%d, %s..%s, client=%t",
		req.ResourceID, req.StartDate.Format(domain.DateFormat), req.EndDate.Format(domain.DateFormat), clientSubmitted)

	// 1. Собираем и валидируем бронирование
	candidate := buildReservation(req, uc.calendar)
	if vErr := domain.ValidateReservation(candidate, uc.calendar); vErr != nil {
		uc.logger.Warn("CreateReservation: validation failed: %v", vErr)
		return nil, vErr
	}

	// 2. Автомобиль должен существовать и быть в парке
	vehicle, err := uc.vehicleRepo.GetByID(ctx, req.ResourceID)
	if err != nil {
		if errors.Is(err, fleetRepo.ErrVehicleNotFound) {
			uc.logger.Warn("CreateReservation: vehicle id=%d not found", req.ResourceID)
			return nil, ErrVehicleNotFound
		}
		uc.logger.Error("CreateReservation: failed to get vehicle id=%d: %v", req.ResourceID, err)
		return nil, fmt.Errorf("%w: failed to get vehicle: %v", ErrInternal, err)
	}
	if !vehicle.Active {
		return nil, ErrVehicleInactive
	}
	candidate.ResourcePlate = vehicle.Plate

	// 3. Цена: явная от оператора или от функции цены
	if err := uc.price(ctx, req, &candidate); err != nil {
		return nil, err
	}

	// 4. Решение и запись под блокировкой автомобиля в сериализуемой транзакции
	unlock := uc.locker.Lock(resourceKey(req.ResourceID))
	defer unlock()

	var resp *Response
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 4.1. Все бронирования автомобиля (FOR UPDATE)
		peers, err := uc.reservationRepo.ListByResource(txCtx, req.ResourceID)
		if err != nil {
			uc.logger.Error("CreateReservation: failed to list reservations: %v", err)
			return fmt.Errorf("%w: failed to list reservations: %v", ErrInternal, err)
		}

		// 4.2. Пересечения
		conflicts := overlap.Conflicts(candidate, peers)
		conflictIDs := overlap.IDs(conflicts)
		if clientSubmitted && overlap.HasConfirmed(conflicts) {
			uc.logger.Warn("CreateReservation: client request overlaps confirmed reservations %v", conflictIDs)
			resp = &Response{Status: StatusRejectedConflict, ConflictIDs: conflictIDs}
			return nil
		}

		// 4.3. Создаем (всегда неподтвержденным)
		toCreate := candidate.Clone()
		created, err := uc.reservationRepo.Create(txCtx, &toCreate)
		if err != nil {
			uc.logger.Error("CreateReservation: failed to create reservation: %v", err)
			return fmt.Errorf("%w: failed to create reservation: %v", ErrInternal, err)
		}

		// 4.4. Ссылки конфликтов
		plan := links.Relink(*created, peers)
		uc.linkWriter.Apply(txCtx, plan.Intents, created.ResourceID)
		created.ConflictLinks = plan.Links

		// 4.5. Аудит
		after := access.Take(access.ContextFor(actorOf(req), *created, uc.calendar, uc.timeProvider.Now()))
		entry := audit.NewEntry(actorOf(req), string(notify.ActionCreated), created.ID, nil, &after)
		entry.Details["conflicts"] = conflictIDs
		if err := uc.auditSink.Append(txCtx, entry); err != nil {
			uc.logger.Error("CreateReservation: failed to append audit entry: %v", err)
			return fmt.Errorf("%w: failed to append audit entry: %v", ErrInternal, err)
		}

		status := StatusCreated
		if len(conflicts) > 0 {
			status = StatusPendingConflict
		}
		resp = &Response{Status: status, Reservation: created, ConflictIDs: conflictIDs}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.ObserveConflict("create", string(resp.Status))
	if resp.Reservation == nil {
		return resp, nil
	}

	uc.logger.Info("CreateReservation: created reservation id=%d, status=%s", resp.Reservation.ID, resp.Status)
	uc.publish(ctx, notify.Event{
		Action:      notify.ActionCreated,
		Actor:       actorOf(req),
		Reservation: *resp.Reservation,
		Conflict:    len(resp.ConflictIDs) > 0,
		ConflictIDs: resp.ConflictIDs,
		Bucket:      uc.calendar.Bucket(*resp.Reservation, uc.timeProvider.Now()),
	})
	return resp, nil
}

func (uc *UseCase) price(ctx context.Context, req *Request, r *domain.Reservation) error {
	if req.Price != nil && req.Actor != nil {
		r.Price = *req.Price
		return nil
	}

	quote, err := uc.pricingClient.Quote(ctx, pricing.NewQuoteRequest(*r))
	if err != nil {
		if errors.Is(err, pricing.ErrRejected) {
			uc.logger.Warn("CreateReservation: pricing rejected request: %v", err)
			return fmt.Errorf("%w: %v", ErrPriceRejected, err)
		}
		uc.logger.Error("CreateReservation: pricing failed: %v", err)
		return fmt.Errorf("%w: %v", ErrPricingUnavailable, err)
	}
	r.Price = quote.Price
	if quote.Days > 0 {
		r.Days = quote.Days
	}
	return nil
}

// publish ошибки доставки не влияют на результат операции
func (uc *UseCase) publish(ctx context.Context, ev notify.Event) {
	if err := uc.notifier.Publish(ctx, notify.Plan(ev)); err != nil {
		uc.logger.Warn("CreateReservation: failed to publish notifications for id=%d: %v", ev.Reservation.ID, err)
	}
}

func buildReservation(req *Request, cal *domain.Calendar) domain.Reservation {
	r := domain.Reservation{
		ResourceID:      req.ResourceID,
		StartDate:       cal.DateOf(req.StartDate),
		EndDate:         cal.DateOf(req.EndDate),
		PickupAt:        req.PickupAt,
		ReturnAt:        req.ReturnAt,
		Confirmed:       false,
		ClientSubmitted: req.Actor == nil,
		ConflictLinks:   domain.NewIDSet(),
		Extras:          req.Extras,
		PlaceIn:         req.PlaceIn,
		PlaceOut:        req.PlaceOut,
		Customer:        req.Customer,
		Notes:           req.Notes,
	}
	if r.Extras.Insurance == "" {
		r.Extras.Insurance = domain.InsuranceBasic
	}
	if req.StartDate.IsZero() {
		r.StartDate = req.StartDate
	}
	if req.EndDate.IsZero() {
		r.EndDate = req.EndDate
	}
	if req.Actor != nil {
		r.CreatorRole = req.Actor.Role
		r.CreatorID = req.Actor.ID
	}
	r.Days = cal.DaysBetween(r.StartDate, r.EndDate)
	return r.Clone()
}

func guardPayload(req *Request, cal *domain.Calendar) abuseguard.Payload {
	p := abuseguard.Payload{
		ResourceID:   req.ResourceID,
		StartDate:    cal.DateOf(req.StartDate).Format(domain.DateFormat),
		EndDate:      cal.DateOf(req.EndDate).Format(domain.DateFormat),
		CustomerName: req.Customer.Name,
		Phone:        req.Customer.Phone,
	}
	if req.PickupAt != nil {
		p.PickupTime = req.PickupAt.In(cal.Location()).Format(domain.TimeFormat)
	}
	if req.ReturnAt != nil {
		p.ReturnTime = req.ReturnAt.In(cal.Location()).Format(domain.TimeFormat)
	}
	return p
}

func actorOf(req *Request) domain.Actor {
	if req.Actor == nil {
		return domain.Actor{}
	}
	return *req.Actor
}

func resourceKey(id int64) string {
	return "resource:" + strconv.FormatInt(id, 10)
}
