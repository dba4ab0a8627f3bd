package update_reservation

import (
	"net/http"

	"github.com/m04kA/SMC-RentalService/internal/api/handlers"
	"github.com/m04kA/SMC-RentalService/internal/api/middleware"
	"github.com/m04kA/SMC-RentalService/internal/domain"
	updateReservation "github.com/m04kA/SMC-RentalService/internal/usecase/update_reservation"
)

const (
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidReservationID = "некорректный ID бронирования"
	msgMissingActor         = "требуется авторизация оператора"
)

type Handler struct {
	useCase  UpdateReservationUseCase
	calendar *domain.Calendar
	logger   Logger
}

func NewHandler(useCase UpdateReservationUseCase, calendar *domain.Calendar, logger Logger) *Handler {
	return &Handler{
		useCase:  useCase,
		calendar: calendar,
		logger:   logger,
	}
}

// Handle PATCH /api/v1/reservations/{reservationId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	id, ok := handlers.PathID(r, "reservationId")
	if !ok {
		h.logger.Warn("PATCH /reservations/{id} - Invalid reservation ID")
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("PATCH /reservations/{id} - Missing actor")
		handlers.RespondUnauthorized(w, msgMissingActor)
		return
	}

	var req UpdateReservationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /reservations/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(h.calendar, actor, id)
	if err != nil {
		h.logger.Warn("PATCH /reservations/{id} - Failed to parse request: %v", err)
		handlers.RespondDomainError(w, err)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		status := handlers.RespondDomainError(w, err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("PATCH /reservations/{id} - Failed to update: reservation_id=%d, actor_id=%d, error=%v", id, actor.ID, err)
		} else {
			h.logger.Warn("PATCH /reservations/{id} - Rejected: reservation_id=%d, actor_id=%d, status=%d, kind=%s, error=%v", id, actor.ID, status, domain.ErrorKind(err), err)
		}
		return
	}

	status := http.StatusOK
	if result.Status == updateReservation.StatusConflictBlock {
		h.logger.Warn("PATCH /reservations/{id} - Blocked by confirmed reservations: reservation_id=%d, conflicts=%v", id, result.ConflictIDs)
		status = http.StatusConflict
	} else {
		h.logger.Info("PATCH /reservations/{id} - Reservation updated: reservation_id=%d, status=%s", id, result.Status)
	}
	handlers.RespondJSON(w, status, FromUseCaseResponse(result, h.calendar))
}
