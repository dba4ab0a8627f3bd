package create_reservation

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-RentalService/internal/abuseguard"
	"github.com/m04kA/SMC-RentalService/internal/api/handlers"
	"github.com/m04kA/SMC-RentalService/internal/domain"
	createReservation "github.com/m04kA/SMC-RentalService/internal/usecase/create_reservation"
)

// CreateReservationRequest HTTP request model
type CreateReservationRequest struct {
	ResourceID       int64            `json:"resourceId"`
	StartDate        string           `json:"startDate"`            // "2025-10-15"
	EndDate          string           `json:"endDate"`              // "2025-10-18"
	PickupTime       *string          `json:"pickupTime,omitempty"` // "10:00"
	ReturnTime       *string          `json:"returnTime,omitempty"`
	Insurance        string           `json:"insurance,omitempty"`
	ChildSeats       int              `json:"childSeats"`
	AdditionalDriver bool             `json:"additionalDriver"`
	PlaceIn          string           `json:"placeIn,omitempty"`
	PlaceOut         string           `json:"placeOut,omitempty"`
	CustomerName     string           `json:"customerName"`
	CustomerPhone    string           `json:"customerPhone"`
	CustomerEmail    string           `json:"customerEmail,omitempty"`
	Notes            *string          `json:"notes,omitempty"`
	Price            *decimal.Decimal `json:"price,omitempty"`
}

// CreateReservationResponse HTTP response model
type CreateReservationResponse struct {
	Status      string                        `json:"status"`
	Reservation *handlers.ReservationResponse `json:"reservation,omitempty"`
	ConflictIDs []int64                       `json:"conflictIds,omitempty"`
}

// ClientReservationResponse ответ клиенту сайта: без внутренних деталей
type ClientReservationResponse struct {
	Status        string           `json:"status"`
	ReservationID int64            `json:"reservationId,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	Days          int              `json:"days,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateReservationRequest) ToUseCaseRequest(cal *domain.Calendar, actor *domain.Actor, meta abuseguard.ClientMeta) (*createReservation.Request, error) {
	vErr := &domain.ValidationError{}

	start := handlers.ParseDate(cal, "startDate", r.StartDate, vErr)
	end := handlers.ParseDate(cal, "endDate", r.EndDate, vErr)
	pickup := handlers.ParseClock(cal, "pickupTime", start, r.PickupTime, vErr)
	ret := handlers.ParseClock(cal, "returnTime", end, r.ReturnTime, vErr)

	if vErr.HasErrors() {
		return nil, vErr
	}

	return &createReservation.Request{
		Actor:      actor,
		Meta:       meta,
		ResourceID: r.ResourceID,
		StartDate:  start,
		EndDate:    end,
		PickupAt:   pickup,
		ReturnAt:   ret,
		Extras: domain.Extras{
			Insurance:        domain.InsuranceTier(strings.ToLower(strings.TrimSpace(r.Insurance))),
			ChildSeats:       r.ChildSeats,
			AdditionalDriver: r.AdditionalDriver,
		},
		PlaceIn:  r.PlaceIn,
		PlaceOut: r.PlaceOut,
		Customer: domain.Customer{
			Name:  r.CustomerName,
			Phone: r.CustomerPhone,
			Email: r.CustomerEmail,
		},
		Notes: r.Notes,
		Price: r.Price,
	}, nil
}

// FromUseCaseResponse ответ оператору
func FromUseCaseResponse(resp *createReservation.Response, cal *domain.Calendar) *CreateReservationResponse {
	return &CreateReservationResponse{
		Status:      string(resp.Status),
		Reservation: handlers.FromReservation(resp.Reservation, cal),
		ConflictIDs: resp.ConflictIDs,
	}
}

// FromUseCaseResponseForClient ответ клиенту сайта
func FromUseCaseResponseForClient(resp *createReservation.Response) *ClientReservationResponse {
	out := &ClientReservationResponse{Status: string(resp.Status)}
	if resp.Reservation != nil {
		price := resp.Reservation.Price
		out.ReservationID = resp.Reservation.ID
		out.Price = &price
		out.Days = resp.Reservation.Days
	}
	return out
}
