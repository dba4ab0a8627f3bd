package confirm_reservation

import (
	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/internal/engine/confirmation"
)

// Status результат подтверждения или снятия подтверждения
type Status string

const (
	StatusConfirmed   Status = "CONFIRMED"
	StatusUnconfirmed Status = "UNCONFIRMED"
	StatusBlocked     Status = "BLOCKED"
)

// Request модель запроса
type Request struct {
	Actor domain.Actor
	ID    int64
}

// Response модель ответа
type Response struct {
	Status      Status
	Level       confirmation.Level
	Message     string
	Blocking    []int64 // подтвержденные соседи, мешающие подтверждению
	Affected    []int64 // неподтвержденные соседи, которые станут неподтверждаемыми
	Reservation *domain.Reservation
}
