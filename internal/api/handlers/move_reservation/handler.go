package move_reservation

import (
	"net/http"

	"github.com/m04kA/SMC-RentalService/internal/api/handlers"
	"github.com/m04kA/SMC-RentalService/internal/api/middleware"
	"github.com/m04kA/SMC-RentalService/internal/domain"
	moveReservation "github.com/m04kA/SMC-RentalService/internal/usecase/move_reservation"
)

const (
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidReservationID = "некорректный ID бронирования"
	msgInvalidTarget        = "некорректный ID автомобиля"
	msgMissingActor         = "требуется авторизация оператора"
)

type Handler struct {
	useCase  MoveReservationUseCase
	calendar *domain.Calendar
	logger   Logger
}

func NewHandler(useCase MoveReservationUseCase, calendar *domain.Calendar, logger Logger) *Handler {
	return &Handler{
		useCase:  useCase,
		calendar: calendar,
		logger:   logger,
	}
}

// Handle POST /api/v1/reservations/{reservationId}/move
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	id, ok := handlers.PathID(r, "reservationId")
	if !ok {
		h.logger.Warn("POST /reservations/{id}/move - Invalid reservation ID")
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("POST /reservations/{id}/move - Missing actor")
		handlers.RespondUnauthorized(w, msgMissingActor)
		return
	}

	var req MoveReservationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /reservations/{id}/move - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if req.TargetResourceID <= 0 {
		handlers.RespondBadRequest(w, msgInvalidTarget)
		return
	}

	result, err := h.useCase.Execute(r.Context(), &moveReservation.Request{
		Actor:            actor,
		ID:               id,
		TargetResourceID: req.TargetResourceID,
	})
	if err != nil {
		status := handlers.RespondDomainError(w, err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("POST /reservations/{id}/move - Failed: reservation_id=%d, target=%d, error=%v", id, req.TargetResourceID, err)
		} else {
			h.logger.Warn("POST /reservations/{id}/move - Rejected: reservation_id=%d, target=%d, status=%d, kind=%s, error=%v", id, req.TargetResourceID, status, domain.ErrorKind(err), err)
		}
		return
	}

	status := http.StatusOK
	if result.Status == moveReservation.StatusConflictBlock {
		h.logger.Warn("POST /reservations/{id}/move - Blocked: reservation_id=%d, target=%d, conflicts=%v", id, req.TargetResourceID, result.ConflictIDs)
		status = http.StatusConflict
	} else {
		h.logger.Info("POST /reservations/{id}/move - Moved: reservation_id=%d, target=%d, status=%s", id, req.TargetResourceID, result.Status)
	}
	handlers.RespondJSON(w, status, FromUseCaseResponse(result, h.calendar))
}
