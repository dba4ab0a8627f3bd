package delete_reservation

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-RentalService/internal/domain"
)

var (
	// ErrReservationNotFound возвращается, когда бронирование не найдено
	ErrReservationNotFound = fmt.Errorf("delete_reservation: reservation not found: %w", domain.ErrNotFound)

	// ErrVersionConflict возвращается, когда бронирование изменено параллельно
	ErrVersionConflict = fmt.Errorf("delete_reservation: reservation was modified: %w", domain.ErrVersionConflict)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("delete_reservation: internal error")
)
