package get_reservation_history

import (
	"time"

	"github.com/m04kA/SMC-RentalService/internal/engine/access"
	"github.com/m04kA/SMC-RentalService/internal/infra/storage/audit"
)

// HistoryEntryResponse запись журнала аудита
type HistoryEntryResponse struct {
	ID        string                 `json:"id"`
	ActorID   int64                  `json:"actorId"`
	ActorRole string                 `json:"actorRole,omitempty"`
	Action    string                 `json:"action"`
	Before    *access.Snapshot       `json:"before,omitempty"`
	After     *access.Snapshot       `json:"after,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	CreatedAt string                 `json:"createdAt"`
}

// HistoryResponse HTTP response model
type HistoryResponse struct {
	ReservationID int64                  `json:"reservationId"`
	Entries       []HistoryEntryResponse `json:"entries"`
}

// FromEntries конвертирует записи аудита в HTTP response
func FromEntries(reservationID int64, entries []audit.Entry) *HistoryResponse {
	out := &HistoryResponse{
		ReservationID: reservationID,
		Entries:       make([]HistoryEntryResponse, 0, len(entries)),
	}
	for _, e := range entries {
		out.Entries = append(out.Entries, HistoryEntryResponse{
			ID:        e.ID.String(),
			ActorID:   e.Actor.ID,
			ActorRole: string(e.Actor.Role),
			Action:    e.Action,
			Before:    e.Before,
			After:     e.After,
			Details:   e.Details,
			CreatedAt: e.CreatedAt.Format(time.RFC3339),
		})
	}
	return out
}
