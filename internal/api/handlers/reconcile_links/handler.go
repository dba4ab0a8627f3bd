package reconcile_links

import (
	"net/http"

	"github.com/m04kA/SMC-RentalService/internal/api/handlers"
	"github.com/m04kA/SMC-RentalService/internal/api/middleware"
)

const (
	msgInvalidResourceID = "некорректный ID автомобиля"
	msgMissingActor      = "требуется авторизация оператора"
	msgForbidden         = "доступ запрещен"
)

// ReconcileResponse HTTP response model
type ReconcileResponse struct {
	ResourceID int64 `json:"resourceId"`
	Changed    int   `json:"changed"`
}

type Handler struct {
	reconciler Reconciler
	logger     Logger
}

func NewHandler(reconciler Reconciler, logger Logger) *Handler {
	return &Handler{
		reconciler: reconciler,
		logger:     logger,
	}
}

// Handle POST /api/v1/vehicles/{resourceId}/links/reconcile
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	resourceID, ok := handlers.PathID(r, "resourceId")
	if !ok {
		handlers.RespondBadRequest(w, msgInvalidResourceID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingActor)
		return
	}
	if !actor.Role.IsPrivileged() {
		h.logger.Warn("POST /vehicles/{id}/links/reconcile - Access denied: actor_id=%d", actor.ID)
		handlers.RespondForbidden(w, msgForbidden)
		return
	}

	changed, err := h.reconciler.ReconcileResource(r.Context(), resourceID)
	if err != nil {
		h.logger.Error("POST /vehicles/{id}/links/reconcile - Failed: resource_id=%d, error=%v", resourceID, err)
		handlers.RespondDomainError(w, err)
		return
	}

	h.logger.Info("POST /vehicles/{id}/links/reconcile - Done: resource_id=%d, changed=%d", resourceID, changed)
	handlers.RespondJSON(w, http.StatusOK, &ReconcileResponse{ResourceID: resourceID, Changed: changed})
}
