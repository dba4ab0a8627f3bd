package move_reservation

import "github.com/m04kA/SMC-RentalService/internal/domain"

// Status результат переноса
type Status string

const (
	StatusOK              Status = "OK"
	StatusConflictBlock   Status = "CONFLICT_BLOCK"
	StatusConflictWarning Status = "CONFLICT_WARNING"
)

// Request модель запроса на перенос бронирования на другой автомобиль
type Request struct {
	Actor            domain.Actor
	ID               int64
	TargetResourceID int64
}

// Response модель ответа
type Response struct {
	Status      Status
	Reservation *domain.Reservation
	ConflictIDs []int64
}
