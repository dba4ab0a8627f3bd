package create_reservation

import (
	"net/http"

	"github.com/m04kA/SMC-RentalService/internal/api/handlers"
	"github.com/m04kA/SMC-RentalService/internal/api/middleware"
	"github.com/m04kA/SMC-RentalService/internal/domain"
	createReservation "github.com/m04kA/SMC-RentalService/internal/usecase/create_reservation"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgRejectedConflict   = "автомобиль уже забронирован на выбранные даты"
)

type Handler struct {
	useCase  CreateReservationUseCase
	calendar *domain.Calendar
	logger   Logger
}

func NewHandler(useCase CreateReservationUseCase, calendar *domain.Calendar, logger Logger) *Handler {
	return &Handler{
		useCase:  useCase,
		calendar: calendar,
		logger:   logger,
	}
}

// Handle POST /api/v1/reservations (оператор) и POST /api/v1/public/reservations (клиент)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateReservationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /reservations - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Оператор определяется по сессии; без сессии это заявка клиента
	var actor *domain.Actor
	if a, ok := middleware.GetActor(r.Context()); ok {
		actor = &a
	}

	useCaseReq, err := req.ToUseCaseRequest(h.calendar, actor, middleware.GetClientMeta(r.Context()))
	if err != nil {
		h.logger.Warn("POST /reservations - Failed to parse request: %v", err)
		handlers.RespondDomainError(w, err)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		status := handlers.RespondDomainError(w, err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("POST /reservations - Failed to create reservation: resource_id=%d, error=%v", req.ResourceID, err)
		} else {
			h.logger.Warn("POST /reservations - Rejected: resource_id=%d, status=%d, kind=%s, error=%v", req.ResourceID, status, domain.ErrorKind(err), err)
		}
		return
	}

	if result.Status == createReservation.StatusRejectedConflict {
		h.logger.Warn("POST /reservations - Conflict with confirmed reservations: resource_id=%d, conflicts=%v",
			req.ResourceID, result.ConflictIDs)
		if actor == nil {
			handlers.RespondError(w, http.StatusConflict, msgRejectedConflict)
			return
		}
		handlers.RespondJSON(w, http.StatusConflict, FromUseCaseResponse(result, h.calendar))
		return
	}

	h.logger.Info("POST /reservations - Reservation created: reservation_id=%d, resource_id=%d, status=%s",
		result.Reservation.ID, req.ResourceID, result.Status)
	if actor == nil {
		handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponseForClient(result))
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result, h.calendar))
}
