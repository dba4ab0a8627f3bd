package confirm_reservation

import (
	"context"
	"net/http"

	"github.com/m04kA/SMC-RentalService/internal/api/handlers"
	"github.com/m04kA/SMC-RentalService/internal/api/middleware"
	"github.com/m04kA/SMC-RentalService/internal/domain"
	confirmReservation "github.com/m04kA/SMC-RentalService/internal/usecase/confirm_reservation"
)

const (
	msgInvalidReservationID = "некорректный ID бронирования"
	msgMissingActor         = "требуется авторизация оператора"
)

type Handler struct {
	useCase  ConfirmReservationUseCase
	calendar *domain.Calendar
	logger   Logger
}

func NewHandler(useCase ConfirmReservationUseCase, calendar *domain.Calendar, logger Logger) *Handler {
	return &Handler{
		useCase:  useCase,
		calendar: calendar,
		logger:   logger,
	}
}

// HandleConfirm POST /api/v1/reservations/{reservationId}/confirm
func (h *Handler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "POST /reservations/{id}/confirm", h.useCase.Confirm)
}

// HandleUnconfirm POST /api/v1/reservations/{reservationId}/unconfirm
func (h *Handler) HandleUnconfirm(w http.ResponseWriter, r *http.Request) {
	h.handle(w, r, "POST /reservations/{id}/unconfirm", h.useCase.Unconfirm)
}

type operation func(ctx context.Context, req *confirmReservation.Request) (*confirmReservation.Response, error)

func (h *Handler) handle(w http.ResponseWriter, r *http.Request, route string, op operation) {
	id, ok := handlers.PathID(r, "reservationId")
	if !ok {
		h.logger.Warn("%s - Invalid reservation ID", route)
		handlers.RespondBadRequest(w, msgInvalidReservationID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.logger.Warn("%s - Missing actor", route)
		handlers.RespondUnauthorized(w, msgMissingActor)
		return
	}

	result, err := op(r.Context(), &confirmReservation.Request{Actor: actor, ID: id})
	if err != nil {
		status := handlers.RespondDomainError(w, err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("%s - Failed: reservation_id=%d, actor_id=%d, error=%v", route, id, actor.ID, err)
		} else {
			h.logger.Warn("%s - Rejected: reservation_id=%d, actor_id=%d, status=%d, kind=%s, error=%v", route, id, actor.ID, status, domain.ErrorKind(err), err)
		}
		return
	}

	status := http.StatusOK
	if result.Status == confirmReservation.StatusBlocked {
		h.logger.Warn("%s - Blocked: reservation_id=%d, blocking=%v", route, id, result.Blocking)
		status = http.StatusConflict
	} else {
		h.logger.Info("%s - Done: reservation_id=%d, status=%s, level=%s", route, id, result.Status, result.Level)
	}
	handlers.RespondJSON(w, status, FromUseCaseResponse(result, h.calendar))
}
