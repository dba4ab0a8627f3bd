package update_reservation

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-RentalService/internal/api/handlers"
	"github.com/m04kA/SMC-RentalService/internal/domain"
	updateReservation "github.com/m04kA/SMC-RentalService/internal/usecase/update_reservation"
)

// UpdateReservationRequest HTTP request model; отсутствующее поле не меняется
type UpdateReservationRequest struct {
	Version          *int64           `json:"version,omitempty"`
	StartDate        *string          `json:"startDate,omitempty"`
	EndDate          *string          `json:"endDate,omitempty"`
	PickupAt         *time.Time       `json:"pickupAt,omitempty"` // RFC3339
	ReturnAt         *time.Time       `json:"returnAt,omitempty"`
	PlaceIn          *string          `json:"placeIn,omitempty"`
	PlaceOut         *string          `json:"placeOut,omitempty"`
	Insurance        *string          `json:"insurance,omitempty"`
	ChildSeats       *int             `json:"childSeats,omitempty"`
	AdditionalDriver *bool            `json:"additionalDriver,omitempty"`
	Price            *decimal.Decimal `json:"price,omitempty"`
	CustomerName     *string          `json:"customerName,omitempty"`
	CustomerPhone    *string          `json:"customerPhone,omitempty"`
	CustomerEmail    *string          `json:"customerEmail,omitempty"`
	Notes            *string          `json:"notes,omitempty"`
}

// UpdateReservationResponse HTTP response model
type UpdateReservationResponse struct {
	Status      string                        `json:"status"`
	Message     string                        `json:"message,omitempty"`
	Reservation *handlers.ReservationResponse `json:"reservation,omitempty"`
	ConflictIDs []int64                       `json:"conflictIds,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *UpdateReservationRequest) ToUseCaseRequest(cal *domain.Calendar, actor domain.Actor, id int64) (*updateReservation.Request, error) {
	vErr := &domain.ValidationError{}
	patch := updateReservation.Patch{
		PickupAt:         r.PickupAt,
		ReturnAt:         r.ReturnAt,
		PlaceIn:          r.PlaceIn,
		PlaceOut:         r.PlaceOut,
		ChildSeats:       r.ChildSeats,
		AdditionalDriver: r.AdditionalDriver,
		Price:            r.Price,
		CustomerName:     r.CustomerName,
		CustomerPhone:    r.CustomerPhone,
		CustomerEmail:    r.CustomerEmail,
		Notes:            r.Notes,
	}

	if r.StartDate != nil {
		d := handlers.ParseDate(cal, "startDate", *r.StartDate, vErr)
		patch.StartDate = &d
	}
	if r.EndDate != nil {
		d := handlers.ParseDate(cal, "endDate", *r.EndDate, vErr)
		patch.EndDate = &d
	}
	if r.Insurance != nil {
		tier := domain.InsuranceTier(strings.ToLower(strings.TrimSpace(*r.Insurance)))
		patch.Insurance = &tier
	}

	if vErr.HasErrors() {
		return nil, vErr
	}

	return &updateReservation.Request{
		Actor:   actor,
		ID:      id,
		Version: r.Version,
		Patch:   patch,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *updateReservation.Response, cal *domain.Calendar) *UpdateReservationResponse {
	return &UpdateReservationResponse{
		Status:      string(resp.Status),
		Message:     resp.Message,
		Reservation: handlers.FromReservation(resp.Reservation, cal),
		ConflictIDs: resp.ConflictIDs,
	}
}
