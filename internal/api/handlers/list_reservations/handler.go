package list_reservations

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/SMC-RentalService/internal/api/handlers"
	"github.com/m04kA/SMC-RentalService/internal/api/middleware"
	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/internal/service/reservations"
	"github.com/m04kA/SMC-RentalService/internal/service/reservations/models"
)

const (
	msgInvalidResourceID = "некорректный ID автомобиля"
	msgInvalidRange      = "некорректный диапазон дат"
	msgMissingActor      = "требуется авторизация оператора"
)

type Handler struct {
	service  ReservationService
	calendar *domain.Calendar
	logger   Logger
}

func NewHandler(service ReservationService, calendar *domain.Calendar, logger Logger) *Handler {
	return &Handler{
		service:  service,
		calendar: calendar,
		logger:   logger,
	}
}

// Handle GET /api/v1/vehicles/{resourceId}/reservations?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	resourceID, ok := handlers.PathID(r, "resourceId")
	if !ok {
		h.logger.Warn("GET /vehicles/{id}/reservations - Invalid resource ID")
		handlers.RespondBadRequest(w, msgInvalidResourceID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("GET /vehicles/{id}/reservations - Missing actor")
		handlers.RespondUnauthorized(w, msgMissingActor)
		return
	}

	vErr := &domain.ValidationError{}
	req := &models.ListRequest{
		Actor:      actor,
		ResourceID: resourceID,
		From:       h.optionalDate(r, "from", vErr),
		To:         h.optionalDate(r, "to", vErr),
	}
	if vErr.HasErrors() {
		handlers.RespondDomainError(w, vErr)
		return
	}

	views, err := h.service.ListByResource(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, reservations.ErrInvalidInput):
			h.logger.Warn("GET /vehicles/{id}/reservations - Invalid range: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRange)
		default:
			h.logger.Error("GET /vehicles/{id}/reservations - Failed to list: resource_id=%d, error=%v", resourceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /vehicles/{id}/reservations - Retrieved %d reservations: resource_id=%d", len(views), resourceID)
	handlers.RespondJSON(w, http.StatusOK, &ReservationListResponse{
		ResourceID:   resourceID,
		Reservations: views,
		Total:        len(views),
	})
}

func (h *Handler) optionalDate(r *http.Request, name string, vErr *domain.ValidationError) *time.Time {
	value := r.URL.Query().Get(name)
	if value == "" {
		return nil
	}
	d := handlers.ParseDate(h.calendar, name, value, vErr)
	return &d
}
