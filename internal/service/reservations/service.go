// Package reservations чтение бронирований с учетом политики доступа.
package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/internal/engine/access"
	"github.com/m04kA/SMC-RentalService/internal/engine/confirmation"
	reservationRepo "github.com/m04kA/SMC-RentalService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-RentalService/internal/service/reservations/models"
)

// Service сервис чтения бронирований
type Service struct {
	repo         ReservationRepository
	buffer       BufferProvider
	calendar     *domain.Calendar
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(
	repo ReservationRepository,
	buffer BufferProvider,
	calendar *domain.Calendar,
	logger Logger,
) *Service {
	return &Service{
		repo:         repo,
		buffer:       buffer,
		calendar:     calendar,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет часы (для тестов)
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// Get бронирование по ID. Чтение не запрещается, контакты скрываются по политике.
func (s *Service) Get(ctx context.Context, actor domain.Actor, id int64) (*models.ReservationView, error) {
	res, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			return nil, ErrReservationNotFound
		}
		s.logger.Error("GetReservation: failed to get reservation id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: failed to get reservation: %v", ErrInternal, err)
	}

	peers, err := s.repo.ListByResource(ctx, res.ResourceID)
	if err != nil {
		s.logger.Error("GetReservation: failed to list resource id=%d: %v", res.ResourceID, err)
		return nil, fmt.Errorf("%w: failed to list peers: %v", ErrInternal, err)
	}

	buffer, err := s.buffer.Buffer(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load buffer: %v", ErrInternal, err)
	}

	view := s.toView(actor, *res, peers, buffer, s.timeProvider.Now())
	return &view, nil
}

// ListByResource бронирования автомобиля в диапазоне дат
func (s *Service) ListByResource(ctx context.Context, req *models.ListRequest) ([]models.ReservationView, error) {
	if req.ResourceID <= 0 {
		return nil, fmt.Errorf("%w: resource id must be positive", ErrInvalidInput)
	}
	if req.From != nil && req.To != nil && req.To.Before(*req.From) {
		return nil, fmt.Errorf("%w: 'to' is before 'from'", ErrInvalidInput)
	}

	peers, err := s.repo.ListByResource(ctx, req.ResourceID)
	if err != nil {
		s.logger.Error("ListReservations: failed to list resource id=%d: %v", req.ResourceID, err)
		return nil, fmt.Errorf("%w: failed to list reservations: %v", ErrInternal, err)
	}

	buffer, err := s.buffer.Buffer(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load buffer: %v", ErrInternal, err)
	}

	now := s.timeProvider.Now()
	views := make([]models.ReservationView, 0, len(peers))
	for _, res := range peers {
		if req.From != nil && res.EndDate.Before(*req.From) {
			continue
		}
		if req.To != nil && res.StartDate.After(*req.To) {
			continue
		}
		views = append(views, s.toView(req.Actor, res, peers, buffer, now))
	}
	return views, nil
}

func (s *Service) toView(actor domain.Actor, res domain.Reservation, peers []domain.Reservation, buffer time.Duration, now time.Time) models.ReservationView {
	ctx := access.ContextFor(actor, res, s.calendar, now)
	caps := access.Evaluate(ctx)

	view := models.ReservationView{
		ID:              res.ID,
		ResourceID:      res.ResourceID,
		ResourcePlate:   res.ResourcePlate,
		StartDate:       res.StartDate.In(s.calendar.Location()).Format(domain.DateFormat),
		EndDate:         res.EndDate.In(s.calendar.Location()).Format(domain.DateFormat),
		PickupAt:        res.PickupAt,
		ReturnAt:        res.ReturnAt,
		Confirmed:       res.Confirmed,
		ClientSubmitted: res.ClientSubmitted,
		Unconfirmable:   confirmation.Unconfirmable(res, peers, buffer),
		Bucket:          ctx.Bucket,
		ConflictLinks:   res.ConflictLinks.Sorted(),
		Price:           res.Price,
		Days:            res.Days,
		Extras: models.ExtrasView{
			Insurance:        string(res.Extras.Insurance),
			ChildSeats:       res.Extras.ChildSeats,
			AdditionalDriver: res.Extras.AdditionalDriver,
		},
		PlaceIn:      res.PlaceIn,
		PlaceOut:     res.PlaceOut,
		Notes:        res.Notes,
		Version:      res.Version,
		Capabilities: caps,
		CreatedAt:    res.CreatedAt,
		UpdatedAt:    res.UpdatedAt,
	}
	if caps.SeePII {
		view.Customer = models.CustomerView{
			Name:  res.Customer.Name,
			Phone: res.Customer.Phone,
			Email: res.Customer.Email,
		}
	}
	return view
}
