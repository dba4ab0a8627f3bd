package list_reservations

import (
	"github.com/m04kA/SMC-RentalService/internal/service/reservations/models"
)

// ReservationListResponse HTTP response model
type ReservationListResponse struct {
	ResourceID   int64                    `json:"resourceId"`
	Reservations []models.ReservationView `json:"reservations"`
	Total        int                      `json:"total"`
}
