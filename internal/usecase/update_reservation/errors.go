package update_reservation

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-RentalService/internal/domain"
)

var (
	// ErrReservationNotFound возвращается, когда бронирование не найдено
	ErrReservationNotFound = fmt.Errorf("update_reservation: reservation not found: %w", domain.ErrNotFound)

	// ErrVersionConflict возвращается, когда бронирование изменено параллельно
	ErrVersionConflict = fmt.Errorf("update_reservation: reservation was modified: %w", domain.ErrVersionConflict)

	// ErrPriceRejected возвращается, когда функция цены отклонила параметры аренды
	ErrPriceRejected = fmt.Errorf("update_reservation: price rejected: %w", domain.ErrInvalidInput)

	// ErrPricingUnavailable возвращается, когда функция цены недоступна
	ErrPricingUnavailable = fmt.Errorf("update_reservation: pricing unavailable: %w", domain.ErrStoreUnavailable)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("update_reservation: internal error")
)
