package get_reservation_history

import (
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-RentalService/internal/api/handlers"
	"github.com/m04kA/SMC-RentalService/internal/api/middleware"
)

const (
	msgInvalidReservationID = "некорректный ID бронирования"
	msgInvalidLimit         = "limit должен быть от 1 до 500"
	msgMissingActor         = "требуется авторизация оператора"
	msgForbidden            = "журнал доступен только суперадминистратору"

	defaultLimit = 100
	maxLimit     = 500
)

type Handler struct {
	audit  AuditReader
	logger Logger
}

func NewHandler(audit AuditReader, logger Logger) *Handler {
	return &Handler{
		audit:  audit,
		logger: logger,
	}
}

// Handle GET /api/v1/reservations/{reservationId}/history?limit=100
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	id, ok := handlers.PathID(r, "reservationId")
	if !ok {
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingActor)
		return
	}
	if !actor.Role.IsPrivileged() {
		h.logger.Warn("GET /reservations/{id}/history - Access denied: actor_id=%d", actor.ID)
		handlers.RespondForbidden(w, msgForbidden)
		return
	}

	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxLimit {
			handlers.RespondBadRequest(w, msgInvalidLimit)
			return
		}
		limit = n
	}

	// Журнал хранится и после удаления бронирования
	entries, err := h.audit.ListByReservation(r.Context(), id, limit)
	if err != nil {
		h.logger.Error("GET /reservations/{id}/history - Failed: reservation_id=%d, error=%v", id, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /reservations/{id}/history - Retrieved %d entries: reservation_id=%d", len(entries), id)
	handlers.RespondJSON(w, http.StatusOK, FromEntries(id, entries))
}
