package create_reservation

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-RentalService/internal/domain"
)

var (
	// ErrVehicleNotFound возвращается, когда автомобиль не найден
	ErrVehicleNotFound = fmt.Errorf("create_reservation: vehicle not found: %w", domain.ErrNotFound)

	// ErrVehicleInactive возвращается, когда автомобиль выведен из парка
	ErrVehicleInactive = fmt.Errorf("create_reservation: vehicle is not available: %w", domain.ErrInvalidInput)

	// ErrPriceRejected возвращается, когда функция цены отклонила параметры аренды
	ErrPriceRejected = fmt.Errorf("create_reservation: price rejected: %w", domain.ErrInvalidInput)

	// ErrPricingUnavailable возвращается, когда функция цены недоступна
	ErrPricingUnavailable = fmt.Errorf("create_reservation: pricing unavailable: %w", domain.ErrStoreUnavailable)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_reservation: internal error")
)
