package move_reservation

import (
	"github.com/m04kA/SMC-RentalService/internal/api/handlers"
	"github.com/m04kA/SMC-RentalService/internal/domain"
	moveReservation "github.com/m04kA/SMC-RentalService/internal/usecase/move_reservation"
)

// MoveReservationRequest HTTP request model
type MoveReservationRequest struct {
	TargetResourceID int64 `json:"targetResourceId"`
}

// MoveReservationResponse HTTP response model
type MoveReservationResponse struct {
	Status      string                        `json:"status"`
	Reservation *handlers.ReservationResponse `json:"reservation,omitempty"`
	ConflictIDs []int64                       `json:"conflictIds,omitempty"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *moveReservation.Response, cal *domain.Calendar) *MoveReservationResponse {
	return &MoveReservationResponse{
		Status:      string(resp.Status),
		Reservation: handlers.FromReservation(resp.Reservation, cal),
		ConflictIDs: resp.ConflictIDs,
	}
}
