package delete_reservation

import "github.com/m04kA/SMC-RentalService/internal/domain"

// Request модель запроса на удаление бронирования
type Request struct {
	Actor domain.Actor
	ID    int64
}

// Response модель ответа
type Response struct {
	Deleted domain.Reservation // состояние на момент удаления
}
