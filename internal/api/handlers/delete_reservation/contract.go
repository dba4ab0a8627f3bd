package delete_reservation

import (
	"context"

	deleteReservation "github.com/m04kA/SMC-RentalService/internal/usecase/delete_reservation"
)

type DeleteReservationUseCase interface {
	Execute(ctx context.Context, req *deleteReservation.Request) (*deleteReservation.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
