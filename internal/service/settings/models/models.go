package models

import (
	"time"

	"github.com/m04kA/SMC-RentalService/internal/domain"
)

// UpdateSettingsRequest запрос на изменение настроек.
// BufferHours == nil сбрасывает буфер к значению по умолчанию.
type UpdateSettingsRequest struct {
	Actor       domain.Actor
	BufferHours *int `json:"bufferHours"`
}

// SettingsResponse настройки аккаунта оператора
type SettingsResponse struct {
	AccountID          int64      `json:"accountId"`
	BufferHours        int        `json:"bufferHours"`        // действующее значение
	BufferHoursDefault bool       `json:"bufferHoursDefault"` // значение не задано явно
	UpdatedAt          *time.Time `json:"updatedAt,omitempty"`
}
