package confirm_reservation

import (
	"github.com/m04kA/SMC-RentalService/internal/api/handlers"
	"github.com/m04kA/SMC-RentalService/internal/domain"
	confirmReservation "github.com/m04kA/SMC-RentalService/internal/usecase/confirm_reservation"
)

// ConfirmationResponse HTTP response model
type ConfirmationResponse struct {
	Status      string                        `json:"status"`
	Level       string                        `json:"level"`
	Message     string                        `json:"message,omitempty"`
	Blocking    []int64                       `json:"blocking,omitempty"`
	Affected    []int64                       `json:"affected,omitempty"`
	Reservation *handlers.ReservationResponse `json:"reservation,omitempty"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *confirmReservation.Response, cal *domain.Calendar) *ConfirmationResponse {
	return &ConfirmationResponse{
		Status:      string(resp.Status),
		Level:       string(resp.Level),
		Message:     resp.Message,
		Blocking:    resp.Blocking,
		Affected:    resp.Affected,
		Reservation: handlers.FromReservation(resp.Reservation, cal),
	}
}
