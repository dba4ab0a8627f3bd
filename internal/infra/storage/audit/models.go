package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/internal/engine/access"
)

// Entry запись журнала аудита. Before/After снимки доступа до и после действия;
// nil для создания (Before) и удаления (After).
type Entry struct {
	ID            uuid.UUID
	Actor         domain.Actor
	Action        string
	ReservationID int64
	Before        *access.Snapshot
	After         *access.Snapshot
	Details       map[string]interface{}
	CreatedAt     time.Time
}

// NewEntry запись с новым ID
func NewEntry(actor domain.Actor, action string, reservationID int64, before, after *access.Snapshot) Entry {
	return Entry{
		ID:            uuid.New(),
		Actor:         actor,
		Action:        action,
		ReservationID: reservationID,
		Before:        before,
		After:         after,
		Details:       map[string]interface{}{},
		CreatedAt:     time.Now().UTC(),
	}
}
