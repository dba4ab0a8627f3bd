// Package access вычисляет возможности оператора над бронированием.
//
// Единственная точка принятия решений о доступе: роль, классификация
// (клиентское/внутреннее), подтверждение и временная корзина бронирования.
// Чтение никогда не запрещается, только фильтруется (SeePII).
package access

import (
	"time"

	"github.com/m04kA/SMC-RentalService/internal/domain"
)

// PolicyVersion версия таблицы доступа, пишется в аудит
const PolicyVersion = 2

// Context входные данные политики
type Context struct {
	Role              domain.Role       `json:"role"`
	ClientReservation bool              `json:"client_reservation"`
	Confirmed         bool              `json:"confirmed"`
	Bucket            domain.TimeBucket `json:"bucket"`
}

// Capabilities полный набор возможностей, все поля определены для любого контекста
type Capabilities struct {
	View             bool `json:"view"`
	Edit             bool `json:"edit"`
	Delete           bool `json:"delete"`
	EditDates        bool `json:"edit_dates"`
	EditReturn       bool `json:"edit_return"`
	EditInsurance    bool `json:"edit_insurance"`
	EditPrice        bool `json:"edit_price"`
	Confirm          bool `json:"confirm"`
	SeePII           bool `json:"see_pii"`
	NotifyPrivileged bool `json:"notify_privileged"`
}

// ContextFor строит контекст для оператора и бронирования на момент now
func ContextFor(actor domain.Actor, r domain.Reservation, cal *domain.Calendar, now time.Time) Context {
	return Context{
		Role:              actor.Role,
		ClientReservation: r.ClientSubmitted,
		Confirmed:         r.Confirmed,
		Bucket:            cal.Bucket(r, now),
	}
}

// Evaluate таблица доступа.
// SUPERADMIN получает все возможности; любая другая роль обрабатывается как ADMIN.
func Evaluate(ctx Context) Capabilities {
	if ctx.Role == domain.RoleSuperAdmin {
		return all()
	}

	caps := Capabilities{View: true}
	switch {
	case ctx.Bucket == domain.BucketPast:
		// контакты видны только у подтвержденных клиентских бронирований
		caps.SeePII = ctx.ClientReservation && ctx.Confirmed
	case ctx.ClientReservation && !ctx.Confirmed:
		caps.Delete = true
	case ctx.ClientReservation && ctx.Confirmed:
		caps.Edit = true
		caps.EditReturn = true
		caps.EditInsurance = true
		caps.SeePII = true
		caps.NotifyPrivileged = true
	default:
		caps.Edit = true
		caps.Delete = true
		caps.EditDates = true
		caps.EditReturn = true
		caps.EditInsurance = true
		caps.EditPrice = true
		caps.SeePII = true
	}
	return caps
}

func all() Capabilities {
	return Capabilities{
		View:             true,
		Edit:             true,
		Delete:           true,
		EditDates:        true,
		EditReturn:       true,
		EditInsurance:    true,
		EditPrice:        true,
		Confirm:          true,
		SeePII:           true,
		NotifyPrivileged: true,
	}
}

// Snapshot контекст и вычисленные возможности для аудита
type Snapshot struct {
	Version      int          `json:"version"`
	Context      Context      `json:"context"`
	Capabilities Capabilities `json:"capabilities"`
}

// Take снимок доступа
func Take(ctx Context) Snapshot {
	return Snapshot{Version: PolicyVersion, Context: ctx, Capabilities: Evaluate(ctx)}
}
