package pricing

import "errors"

var (
	// ErrRejected функция цены отклонила параметры аренды
	ErrRejected = errors.New("pricing client: quote rejected")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("pricing client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("pricing client: invalid response")

	// ErrUnavailable сервис цен недоступен
	ErrUnavailable = errors.New("pricing client: service unavailable")
)
