package bans

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-RentalService/internal/abuseguard"
	"github.com/m04kA/SMC-RentalService/internal/api/handlers"
	"github.com/m04kA/SMC-RentalService/internal/api/middleware"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidSubject     = "субъект должен иметь вид ip:<адрес> или fp:<отпечаток>"
	msgInvalidDuration    = "длительность бана не может быть отрицательной"
	msgMissingActor       = "требуется авторизация оператора"
	msgForbidden          = "управлять банами может только суперадминистратор"
	msgNotBanned          = "активный бан не найден"
	msgDefaultReason      = "manual ban"
)

type Handler struct {
	bans   BanManager
	logger Logger
}

func NewHandler(bans BanManager, logger Logger) *Handler {
	return &Handler{
		bans:   bans,
		logger: logger,
	}
}

// HandleGet GET /api/v1/bans/{subject}
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	subject, ok := h.authorize(w, r, "GET /bans/{subject}")
	if !ok {
		return
	}

	ban, err := h.bans.Lookup(r.Context(), subject)
	if err != nil {
		h.logger.Error("GET /bans/{subject} - Failed to lookup: subject=%s, error=%v", subject, err)
		handlers.RespondInternalError(w)
		return
	}
	if ban == nil {
		handlers.RespondNotFound(w, msgNotBanned)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, FromBan(ban))
}

// HandlePut PUT /api/v1/bans/{subject}
func (h *Handler) HandlePut(w http.ResponseWriter, r *http.Request) {
	subject, ok := h.authorize(w, r, "PUT /bans/{subject}")
	if !ok {
		return
	}

	var req BanRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /bans/{subject} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	if req.DurationMinutes < 0 {
		handlers.RespondBadRequest(w, msgInvalidDuration)
		return
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = msgDefaultReason
	}

	ban, err := h.bans.BanManually(r.Context(), subject, reason, time.Duration(req.DurationMinutes)*time.Minute)
	if err != nil {
		if errors.Is(err, abuseguard.ErrInvalidSubject) {
			handlers.RespondBadRequest(w, msgInvalidSubject)
			return
		}
		h.logger.Error("PUT /bans/{subject} - Failed to ban: subject=%s, error=%v", subject, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("PUT /bans/{subject} - Banned: subject=%s, minutes=%d", subject, req.DurationMinutes)
	handlers.RespondJSON(w, http.StatusOK, FromBan(ban))
}

// HandleDelete DELETE /api/v1/bans/{subject}
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	subject, ok := h.authorize(w, r, "DELETE /bans/{subject}")
	if !ok {
		return
	}

	if err := h.bans.Unban(r.Context(), subject); err != nil {
		h.logger.Error("DELETE /bans/{subject} - Failed to unban: subject=%s, error=%v", subject, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("DELETE /bans/{subject} - Unbanned: subject=%s", subject)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, route string) (string, bool) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingActor)
		return "", false
	}
	if !actor.Role.IsPrivileged() {
		h.logger.Warn("%s - Access denied: actor_id=%d", route, actor.ID)
		handlers.RespondForbidden(w, msgForbidden)
		return "", false
	}

	subject := strings.TrimSpace(mux.Vars(r)["subject"])
	if !strings.HasPrefix(subject, "ip:") && !strings.HasPrefix(subject, "fp:") {
		handlers.RespondBadRequest(w, msgInvalidSubject)
		return "", false
	}
	return subject, true
}
