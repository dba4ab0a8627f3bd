package domain

import (
	"strings"
	"unicode"
)

// ValidateReservation проверяет инварианты бронирования: даты строго по порядку,
// моменты выдачи/возврата внутри своих дней, разумные значения опций.
func ValidateReservation(r Reservation, cal *Calendar) *ValidationError {
	vErr := &ValidationError{}

	if r.ResourceID <= 0 {
		vErr.Add("resourceId", "must be positive")
	}

	switch {
	case r.StartDate.IsZero():
		vErr.Add("startDate", "is required")
	case r.EndDate.IsZero():
		vErr.Add("endDate", "is required")
	default:
		start, end := cal.DateOf(r.StartDate), cal.DateOf(r.EndDate)
		if !start.Before(end) {
			vErr.Add("endDate", "must be after startDate")
		} else if cal.DaysBetween(start, end) > MaxRentalDays {
			vErr.Add("endDate", "rental is too long")
		}
		if r.PickupAt != nil && !cal.SameDay(*r.PickupAt, start) {
			vErr.Add("pickupAt", "must fall on startDate")
		}
		if r.ReturnAt != nil && !cal.SameDay(*r.ReturnAt, end) {
			vErr.Add("returnAt", "must fall on endDate")
		}
	}

	if r.Extras.Insurance != "" && !r.Extras.Insurance.Valid() {
		vErr.Add("extras.insurance", "unknown tier")
	}
	if r.Extras.ChildSeats < 0 || r.Extras.ChildSeats > MaxChildSeats {
		vErr.Add("extras.childSeats", "out of range")
	}
	if r.Price.IsNegative() {
		vErr.Add("price", "must not be negative")
	}
	if len(r.PlaceIn) > MaxPlaceLength {
		vErr.Add("placeIn", "too long")
	}
	if len(r.PlaceOut) > MaxPlaceLength {
		vErr.Add("placeOut", "too long")
	}
	if r.Notes != nil && len(*r.Notes) > MaxNotesLength {
		vErr.Add("notes", "too long")
	}

	if r.ClientSubmitted {
		if strings.TrimSpace(r.Customer.Name) == "" {
			vErr.Add("customer.name", "is required")
		} else if len(r.Customer.Name) > MaxCustomerNameLen {
			vErr.Add("customer.name", "too long")
		}
		if n := len(DigitsOnly(r.Customer.Phone)); n < MinPhoneDigits || n > MaxPhoneDigits {
			vErr.Add("customer.phone", "invalid phone number")
		}
	}

	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

// DigitsOnly оставляет в строке только цифры
func DigitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
