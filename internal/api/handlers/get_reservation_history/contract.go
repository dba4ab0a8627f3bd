package get_reservation_history

import (
	"context"

	"github.com/m04kA/SMC-RentalService/internal/infra/storage/audit"
)

type AuditReader interface {
	ListByReservation(ctx context.Context, reservationID int64, limit int) ([]audit.Entry, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
