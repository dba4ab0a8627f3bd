package update_reservation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-RentalService/internal/domain"
)

// Status результат изменения
type Status string

const (
	StatusOK              Status = "OK"
	StatusConflictBlock   Status = "CONFLICT_BLOCK"
	StatusConflictWarning Status = "CONFLICT_WARNING"
)

// Patch изменяемые поля; nil означает "не менять"
type Patch struct {
	StartDate        *time.Time
	EndDate          *time.Time
	PickupAt         *time.Time
	ReturnAt         *time.Time
	PlaceIn          *string
	PlaceOut         *string
	Insurance        *domain.InsuranceTier
	ChildSeats       *int
	AdditionalDriver *bool
	Price            *decimal.Decimal
	CustomerName     *string
	CustomerPhone    *string
	CustomerEmail    *string
	Notes            *string
}

// Request модель запроса на изменение бронирования
type Request struct {
	Actor   domain.Actor
	ID      int64
	Version *int64 // версия, которую видел оператор; nil без проверки
	Patch   Patch
}

// Response модель ответа
type Response struct {
	Status      Status
	Reservation *domain.Reservation // при CONFLICT_BLOCK состояние без изменений
	ConflictIDs []int64
	Message     string
}
