// Package notify решает, кому и что отправить при изменении бронирования.
//
// Доставкой пакет не занимается: Plan возвращает список уведомлений с уже
// очищенным от персональных данных содержимым.
package notify

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/internal/engine/access"
)

// Action событие жизненного цикла бронирования
type Action string

const (
	ActionCreated         Action = "created"
	ActionUpdated         Action = "updated"
	ActionMoved           Action = "moved"
	ActionConfirmed       Action = "confirmed"
	ActionUnconfirmed     Action = "unconfirmed"
	ActionDeleted         Action = "deleted"
	ActionConflictBlocked Action = "conflict_blocked"
)

// Target получатель
type Target string

const (
	TargetOperators  Target = "operators"
	TargetPrivileged Target = "privileged"
	TargetCustomer   Target = "customer"
)

// Channel канал доставки
type Channel string

const (
	ChannelChat  Channel = "chat"
	ChannelEmail Channel = "email"
)

// Priority приоритет уведомления
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Event что произошло с бронированием.
// Для удаления Reservation содержит состояние до удаления.
type Event struct {
	Action      Action
	Actor       domain.Actor // нулевое значение для анонимного клиента
	Reservation domain.Reservation
	Conflict    bool
	ConflictIDs []int64
	Bucket      domain.TimeBucket
}

// Payload очищенное содержимое уведомления
type Payload struct {
	Action          Action          `json:"action"`
	ReservationID   int64           `json:"reservation_id"`
	ResourceID      int64           `json:"resource_id,omitempty"`
	ResourcePlate   string          `json:"resource_plate,omitempty"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         time.Time       `json:"end_date"`
	PickupAt        *time.Time      `json:"pickup_at,omitempty"`
	ReturnAt        *time.Time      `json:"return_at,omitempty"`
	Confirmed       bool            `json:"confirmed"`
	ClientSubmitted bool            `json:"client_submitted"`
	Price           decimal.Decimal `json:"price"`
	ConflictIDs     []int64         `json:"conflict_ids,omitempty"`
	ActorID         int64           `json:"actor_id,omitempty"`
	CustomerName    string          `json:"customer_name,omitempty"`
	CustomerPhone   string          `json:"customer_phone,omitempty"`
	CustomerEmail   string          `json:"customer_email,omitempty"`
}

// Notification одно уведомление для канала доставки
type Notification struct {
	Target   Target
	Address  string // email клиента; для операторов пусто
	Channel  Channel
	Priority Priority
	Payload  Payload
}

// Plan список уведомлений для события
func Plan(ev Event) []Notification {
	r := ev.Reservation
	out := make([]Notification, 0, 2)

	switch ev.Action {
	case ActionCreated:
		if r.ClientSubmitted {
			priority := PriorityNormal
			if ev.Conflict {
				priority = PriorityHigh
			}
			out = append(out, operators(ev, priority))
		}

	case ActionUpdated, ActionMoved:
		if !r.ClientSubmitted || !r.Confirmed || ev.Actor.Role.IsPrivileged() {
			break
		}
		actorCaps := access.Evaluate(access.Context{
			Role:              ev.Actor.Role,
			ClientReservation: true,
			Confirmed:         true,
			Bucket:            ev.Bucket,
		})
		if actorCaps.NotifyPrivileged {
			out = append(out, Notification{
				Target:   TargetPrivileged,
				Channel:  ChannelChat,
				Priority: PriorityHigh,
				Payload:  operatorPayload(ev, domain.RoleSuperAdmin),
			})
		}

	case ActionConfirmed, ActionUnconfirmed, ActionDeleted:
		if !r.ClientSubmitted {
			break
		}
		if r.Customer.Email != "" {
			out = append(out, Notification{
				Target:   TargetCustomer,
				Address:  r.Customer.Email,
				Channel:  ChannelEmail,
				Priority: PriorityNormal,
				Payload:  customerPayload(ev),
			})
		}
		out = append(out, operators(ev, PriorityNormal))

	case ActionConflictBlocked:
		out = append(out, operators(ev, PriorityHigh))
	}

	return out
}

func operators(ev Event, priority Priority) Notification {
	return Notification{
		Target:   TargetOperators,
		Channel:  ChannelChat,
		Priority: priority,
		Payload:  operatorPayload(ev, domain.RoleAdmin),
	}
}

// operatorPayload содержимое для операторов с ролью role; контакты клиента
// остаются, только если роль их видит.
func operatorPayload(ev Event, role domain.Role) Payload {
	r := ev.Reservation
	p := basePayload(ev)
	p.ResourceID = r.ResourceID
	p.ClientSubmitted = r.ClientSubmitted
	p.ActorID = ev.Actor.ID
	if len(ev.ConflictIDs) > 0 {
		p.ConflictIDs = append([]int64(nil), ev.ConflictIDs...)
	}

	caps := access.Evaluate(access.Context{
		Role:              role,
		ClientReservation: r.ClientSubmitted,
		Confirmed:         r.Confirmed,
		Bucket:            ev.Bucket,
	})
	if caps.SeePII {
		p.CustomerName = r.Customer.Name
		p.CustomerPhone = r.Customer.Phone
		p.CustomerEmail = r.Customer.Email
	}
	return p
}

// customerPayload клиент получает свои контакты, но не внутренние поля
func customerPayload(ev Event) Payload {
	r := ev.Reservation
	p := basePayload(ev)
	p.ClientSubmitted = true
	p.CustomerName = r.Customer.Name
	p.CustomerPhone = r.Customer.Phone
	p.CustomerEmail = r.Customer.Email
	return p
}

func basePayload(ev Event) Payload {
	r := ev.Reservation.Clone()
	return Payload{
		Action:        ev.Action,
		ReservationID: r.ID,
		ResourcePlate: r.ResourcePlate,
		StartDate:     r.StartDate,
		EndDate:       r.EndDate,
		PickupAt:      r.PickupAt,
		ReturnAt:      r.ReturnAt,
		Confirmed:     r.Confirmed,
		Price:         r.Price,
	}
}
