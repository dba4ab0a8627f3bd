package update_settings

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-RentalService/internal/api/handlers"
	"github.com/m04kA/SMC-RentalService/internal/api/middleware"
	"github.com/m04kA/SMC-RentalService/internal/service/settings"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingActor       = "требуется авторизация оператора"
	msgForbidden          = "изменять настройки может только суперадминистратор"
	msgInvalidBuffer      = "буфер должен быть от 0 до 72 часов"
)

type Handler struct {
	service SettingsService
	logger  Logger
}

func NewHandler(service SettingsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PUT /api/v1/settings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("PUT /settings - Missing actor")
		handlers.RespondUnauthorized(w, msgMissingActor)
		return
	}

	var req UpdateSettingsRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /settings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Update(r.Context(), req.ToServiceRequest(actor))
	if err != nil {
		switch {
		case errors.Is(err, settings.ErrAccessDenied):
			h.logger.Warn("PUT /settings - Access denied: actor_id=%d", actor.ID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, settings.ErrInvalidBuffer):
			h.logger.Warn("PUT /settings - Invalid buffer: %v", err)
			handlers.RespondBadRequest(w, msgInvalidBuffer)

		default:
			h.logger.Error("PUT /settings - Failed to update settings: actor_id=%d, error=%v", actor.ID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /settings - Settings updated: actor_id=%d, buffer_hours=%d", actor.ID, result.BufferHours)
	handlers.RespondJSON(w, http.StatusOK, result)
}
