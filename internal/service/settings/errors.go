package settings

import "errors"

var (
	// ErrAccessDenied возвращается, когда у оператора нет прав на изменение настроек
	ErrAccessDenied = errors.New("settings: access denied")

	// ErrInvalidBuffer возвращается при недопустимом значении буфера
	ErrInvalidBuffer = errors.New("settings: invalid buffer hours")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("settings: internal error")
)
