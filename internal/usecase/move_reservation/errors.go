package move_reservation

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-RentalService/internal/domain"
)

var (
	// ErrReservationNotFound возвращается, когда бронирование не найдено
	ErrReservationNotFound = fmt.Errorf("move_reservation: reservation not found: %w", domain.ErrNotFound)

	// ErrVehicleNotFound возвращается, когда целевой автомобиль не найден
	ErrVehicleNotFound = fmt.Errorf("move_reservation: vehicle not found: %w", domain.ErrNotFound)

	// ErrVehicleInactive возвращается, когда целевой автомобиль выведен из парка
	ErrVehicleInactive = fmt.Errorf("move_reservation: vehicle is not available: %w", domain.ErrInvalidInput)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("move_reservation: %w", domain.ErrInvalidInput)

	// ErrVersionConflict возвращается, когда бронирование изменено параллельно
	ErrVersionConflict = fmt.Errorf("move_reservation: reservation was modified: %w", domain.ErrVersionConflict)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("move_reservation: internal error")
)
