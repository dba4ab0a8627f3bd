package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// InsuranceTier уровень страховки
type InsuranceTier string

const (
	InsuranceBasic    InsuranceTier = "basic"
	InsuranceStandard InsuranceTier = "standard"
	InsuranceFull     InsuranceTier = "full"
)

// Valid проверяет допустимость уровня страховки
func (t InsuranceTier) Valid() bool {
	switch t {
	case InsuranceBasic, InsuranceStandard, InsuranceFull:
		return true
	}
	return false
}

// Extras дополнительные опции аренды (влияют на цену, считаемую внешней функцией)
type Extras struct {
	Insurance        InsuranceTier
	ChildSeats       int
	AdditionalDriver bool
}

// Customer контактные данные клиента (персональные данные)
type Customer struct {
	Name  string
	Phone string
	Email string
}

// IsEmpty сообщает, что контакты не заполнены
func (c Customer) IsEmpty() bool {
	return c.Name == "" && c.Phone == "" && c.Email == ""
}

// Reservation бронирование автомобиля на диапазон дат
type Reservation struct {
	ID            int64
	ResourceID    int64  // ID автомобиля
	ResourcePlate string // госномер автомобиля на момент бронирования

	StartDate time.Time // полночь дня выдачи в бизнес-таймзоне
	EndDate   time.Time // полночь дня возврата в бизнес-таймзоне
	PickupAt  *time.Time
	ReturnAt  *time.Time

	Confirmed       bool
	ClientSubmitted bool
	CreatorRole     Role // пустая роль для анонимного клиента
	CreatorID       int64

	ConflictLinks IDSet

	Price  decimal.Decimal
	Days   int
	Extras Extras

	PlaceIn  string
	PlaceOut string
	Customer Customer
	Notes    *string

	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone возвращает независимую копию (ссылочные поля копируются)
func (r Reservation) Clone() Reservation {
	out := r
	out.ConflictLinks = r.ConflictLinks.Clone()
	if r.PickupAt != nil {
		t := *r.PickupAt
		out.PickupAt = &t
	}
	if r.ReturnAt != nil {
		t := *r.ReturnAt
		out.ReturnAt = &t
	}
	if r.Notes != nil {
		n := *r.Notes
		out.Notes = &n
	}
	return out
}

// IsInternal бронирование создано сотрудником
func (r Reservation) IsInternal() bool {
	return !r.ClientSubmitted
}

// IDSet множество ID бронирований
type IDSet map[int64]struct{}

// NewIDSet создает множество из перечисленных ID
func NewIDSet(ids ...int64) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has проверяет наличие ID
func (s IDSet) Has(id int64) bool {
	_, ok := s[id]
	return ok
}

// Clone копия множества (nil превращается в пустое множество)
func (s IDSet) Clone() IDSet {
	out := make(IDSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Sorted ID по возрастанию
func (s IDSet) Sorted() []int64 {
	out := make([]int64, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Equal сравнивает множества
func (s IDSet) Equal(other IDSet) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if !other.Has(id) {
			return false
		}
	}
	return true
}

// ReservationFilter фильтр выборки бронирований
type ReservationFilter struct {
	ResourceID *int64
	From       *time.Time // EndDate >= From
	To         *time.Time // StartDate <= To
	Confirmed  *bool
}
