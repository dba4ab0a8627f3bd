package update_settings

import (
	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/internal/service/settings/models"
)

// UpdateSettingsRequest HTTP request model; bufferHours = null сбрасывает к значению по умолчанию
type UpdateSettingsRequest struct {
	BufferHours *int `json:"bufferHours"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *UpdateSettingsRequest) ToServiceRequest(actor domain.Actor) *models.UpdateSettingsRequest {
	return &models.UpdateSettingsRequest{
		Actor:       actor,
		BufferHours: r.BufferHours,
	}
}
