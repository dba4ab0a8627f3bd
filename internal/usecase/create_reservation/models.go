package create_reservation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-RentalService/internal/abuseguard"
	"github.com/m04kA/SMC-RentalService/internal/domain"
)

// Status результат создания
type Status string

const (
	StatusCreated          Status = "CREATED"
	StatusPendingConflict  Status = "PENDING_CONFLICT"
	StatusRejectedConflict Status = "REJECTED_CONFLICT"
)

// Request модель запроса на создание бронирования
type Request struct {
	Actor *domain.Actor         // nil для заявки клиента с сайта
	Meta  abuseguard.ClientMeta // данные клиента для защиты от спама

	ResourceID int64
	StartDate  time.Time
	EndDate    time.Time
	PickupAt   *time.Time
	ReturnAt   *time.Time
	Extras     domain.Extras
	PlaceIn    string
	PlaceOut   string
	Customer   domain.Customer
	Notes      *string

	// Price цена, заданная оператором; иначе считается функцией цены
	Price *decimal.Decimal
}

// Response модель ответа
type Response struct {
	Status      Status
	Reservation *domain.Reservation // nil при REJECTED_CONFLICT
	ConflictIDs []int64
}
