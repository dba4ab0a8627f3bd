package delete_reservation

import (
	"net/http"

	"github.com/m04kA/SMC-RentalService/internal/api/handlers"
	"github.com/m04kA/SMC-RentalService/internal/api/middleware"
	"github.com/m04kA/SMC-RentalService/internal/domain"
	deleteReservation "github.com/m04kA/SMC-RentalService/internal/usecase/delete_reservation"
)

const (
	msgInvalidReservationID = "некорректный ID бронирования"
	msgMissingActor         = "требуется авторизация оператора"
)

type Handler struct {
	useCase DeleteReservationUseCase
	logger  Logger
}

func NewHandler(useCase DeleteReservationUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle DELETE /api/v1/reservations/{reservationId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	id, ok := handlers.PathID(r, "reservationId")
	if !ok {
		h.logger.Warn("DELETE /reservations/{id} - Invalid reservation ID")
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("DELETE /reservations/{id} - Missing actor")
		handlers.RespondUnauthorized(w, msgMissingActor)
		return
	}

	if _, err := h.useCase.Execute(r.Context(), &deleteReservation.Request{Actor: actor, ID: id}); err != nil {
		status := handlers.RespondDomainError(w, err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("DELETE /reservations/{id} - Failed: reservation_id=%d, actor_id=%d, error=%v", id, actor.ID, err)
		} else {
			h.logger.Warn("DELETE /reservations/{id} - Rejected: reservation_id=%d, actor_id=%d, status=%d, kind=%s, error=%v", id, actor.ID, status, domain.ErrorKind(err), err)
		}
		return
	}

	h.logger.Info("DELETE /reservations/{id} - Reservation deleted: reservation_id=%d, actor_id=%d", id, actor.ID)
	w.WriteHeader(http.StatusNoContent)
}
