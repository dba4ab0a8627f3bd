package update_reservation

import (
	"time"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/internal/engine/access"
	"github.com/m04kA/SMC-RentalService/internal/engine/overlap"
	"github.com/m04kA/SMC-RentalService/pkg/ptr"
)

// applyPatch новое состояние бронирования.
// Смена дня выдачи/возврата переносит время выдачи/возврата на новый день;
// время на другой день меняет и дату.
func applyPatch(current domain.Reservation, p Patch, cal *domain.Calendar) domain.Reservation {
	next := current.Clone()

	if p.StartDate != nil {
		next.StartDate = cal.DateOf(*p.StartDate)
	}
	if p.EndDate != nil {
		next.EndDate = cal.DateOf(*p.EndDate)
	}

	switch {
	case p.PickupAt != nil:
		t := p.PickupAt.In(cal.Location())
		next.PickupAt = &t
		if p.StartDate == nil {
			next.StartDate = cal.DateOf(t)
		}
	case next.PickupAt != nil && !cal.SameDay(*next.PickupAt, next.StartDate):
		next.PickupAt = shiftDay(*next.PickupAt, next.StartDate, cal)
	}

	switch {
	case p.ReturnAt != nil:
		t := p.ReturnAt.In(cal.Location())
		next.ReturnAt = &t
		if p.EndDate == nil {
			next.EndDate = cal.DateOf(t)
		}
	case next.ReturnAt != nil && !cal.SameDay(*next.ReturnAt, next.EndDate):
		next.ReturnAt = shiftDay(*next.ReturnAt, next.EndDate, cal)
	}

	if p.PlaceIn != nil {
		next.PlaceIn = *p.PlaceIn
	}
	if p.PlaceOut != nil {
		next.PlaceOut = *p.PlaceOut
	}
	if p.Insurance != nil {
		next.Extras.Insurance = *p.Insurance
	}
	if p.ChildSeats != nil {
		next.Extras.ChildSeats = *p.ChildSeats
	}
	if p.AdditionalDriver != nil {
		next.Extras.AdditionalDriver = *p.AdditionalDriver
	}
	if p.Price != nil {
		next.Price = *p.Price
	}
	if p.CustomerName != nil {
		next.Customer.Name = *p.CustomerName
	}
	if p.CustomerPhone != nil {
		next.Customer.Phone = *p.CustomerPhone
	}
	if p.CustomerEmail != nil {
		next.Customer.Email = *p.CustomerEmail
	}
	if p.Notes != nil {
		notes := *p.Notes
		next.Notes = &notes
	}

	next.Days = cal.DaysBetween(next.StartDate, next.EndDate)
	return next
}

func shiftDay(t, day time.Time, cal *domain.Calendar) *time.Time {
	local := t.In(cal.Location())
	y, m, d := day.In(cal.Location()).Date()
	shifted := time.Date(y, m, d, local.Hour(), local.Minute(), 0, 0, cal.Location())
	return &shifted
}

// changedFields поля, значение которых действительно меняется.
// Повторная отправка текущего значения прав не требует.
func changedFields(before, after domain.Reservation) []access.Field {
	fields := make([]access.Field, 0)
	add := func(changed bool, f access.Field) {
		if changed {
			fields = append(fields, f)
		}
	}

	add(!before.StartDate.Equal(after.StartDate), access.FieldStartDate)
	add(!before.EndDate.Equal(after.EndDate), access.FieldEndDate)
	add(!sameInstant(before.PickupAt, after.PickupAt), access.FieldPickupAt)
	add(!sameInstant(before.ReturnAt, after.ReturnAt), access.FieldReturnAt)
	add(before.PlaceIn != after.PlaceIn, access.FieldPlaceIn)
	add(before.PlaceOut != after.PlaceOut, access.FieldPlaceOut)
	add(before.Extras.Insurance != after.Extras.Insurance, access.FieldInsurance)
	add(before.Extras.ChildSeats != after.Extras.ChildSeats, access.FieldChildSeats)
	add(before.Extras.AdditionalDriver != after.Extras.AdditionalDriver, access.FieldAdditionalDriver)
	add(!before.Price.Equal(after.Price), access.FieldPrice)
	add(before.Customer.Name != after.Customer.Name, access.FieldCustomerName)
	add(before.Customer.Phone != after.Customer.Phone, access.FieldCustomerPhone)
	add(before.Customer.Email != after.Customer.Email, access.FieldCustomerEmail)
	add(ptr.Deref(before.Notes, "") != ptr.Deref(after.Notes, ""), access.FieldNotes)
	return fields
}

// needsQuote даты или опции изменились, цену нужно пересчитать
func needsQuote(fields []access.Field) bool {
	for _, f := range fields {
		switch f {
		case access.FieldStartDate, access.FieldEndDate, access.FieldPickupAt, access.FieldReturnAt,
			access.FieldInsurance, access.FieldChildSeats, access.FieldAdditionalDriver:
			return true
		}
	}
	return false
}

// intervalChanged сменился занимаемый интервал, нужна проверка пересечений
func intervalChanged(before, after domain.Reservation) bool {
	a, b := overlap.Of(before), overlap.Of(after)
	return !a.Start.Equal(b.Start) || !a.End.Equal(b.End)
}

func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
