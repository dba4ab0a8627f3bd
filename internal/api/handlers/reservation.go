package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-RentalService/internal/domain"
)

// ReservationResponse бронирование в ответах операций записи
type ReservationResponse struct {
	ID               int64           `json:"id"`
	ResourceID       int64           `json:"resourceId"`
	ResourcePlate    string          `json:"resourcePlate"`
	StartDate        string          `json:"startDate"`
	EndDate          string          `json:"endDate"`
	PickupTime       *string         `json:"pickupTime,omitempty"`
	ReturnTime       *string         `json:"returnTime,omitempty"`
	Confirmed        bool            `json:"confirmed"`
	ClientSubmitted  bool            `json:"clientSubmitted"`
	ConflictLinks    []int64         `json:"conflictLinks"`
	Price            decimal.Decimal `json:"price"`
	Days             int             `json:"days"`
	Insurance        string          `json:"insurance"`
	ChildSeats       int             `json:"childSeats"`
	AdditionalDriver bool            `json:"additionalDriver"`
	PlaceIn          string          `json:"placeIn,omitempty"`
	PlaceOut         string          `json:"placeOut,omitempty"`
	CustomerName     string          `json:"customerName,omitempty"`
	CustomerPhone    string          `json:"customerPhone,omitempty"`
	CustomerEmail    string          `json:"customerEmail,omitempty"`
	Notes            *string         `json:"notes,omitempty"`
	Version          int64           `json:"version"`
	CreatedAt        string          `json:"createdAt"`
	UpdatedAt        string          `json:"updatedAt"`
}

// FromReservation конвертирует бронирование в HTTP ответ; даты в бизнес-таймзоне
func FromReservation(r *domain.Reservation, cal *domain.Calendar) *ReservationResponse {
	if r == nil {
		return nil
	}
	loc := cal.Location()
	return &ReservationResponse{
		ID:               r.ID,
		ResourceID:       r.ResourceID,
		ResourcePlate:    r.ResourcePlate,
		StartDate:        r.StartDate.In(loc).Format(domain.DateFormat),
		EndDate:          r.EndDate.In(loc).Format(domain.DateFormat),
		PickupTime:       clock(r.PickupAt, loc),
		ReturnTime:       clock(r.ReturnAt, loc),
		Confirmed:        r.Confirmed,
		ClientSubmitted:  r.ClientSubmitted,
		ConflictLinks:    r.ConflictLinks.Sorted(),
		Price:            r.Price,
		Days:             r.Days,
		Insurance:        string(r.Extras.Insurance),
		ChildSeats:       r.Extras.ChildSeats,
		AdditionalDriver: r.Extras.AdditionalDriver,
		PlaceIn:          r.PlaceIn,
		PlaceOut:         r.PlaceOut,
		CustomerName:     r.Customer.Name,
		CustomerPhone:    r.Customer.Phone,
		CustomerEmail:    r.Customer.Email,
		Notes:            r.Notes,
		Version:          r.Version,
		CreatedAt:        r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        r.UpdatedAt.Format(time.RFC3339),
	}
}

func clock(t *time.Time, loc *time.Location) *string {
	if t == nil {
		return nil
	}
	s := t.In(loc).Format(domain.TimeFormat)
	return &s
}

// ParseDate разбирает дату YYYY-MM-DD, ошибка пишется в vErr под именем field
func ParseDate(cal *domain.Calendar, field, value string, vErr *domain.ValidationError) time.Time {
	d, err := cal.ParseDate(strings.TrimSpace(value))
	if err != nil {
		vErr.Add(field, "ожидается дата в формате YYYY-MM-DD")
		return time.Time{}
	}
	return d
}

// ParseClock время HH:MM в день day; пустая строка дает nil
func ParseClock(cal *domain.Calendar, field string, day time.Time, value *string, vErr *domain.ValidationError) *time.Time {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil
	}
	t, err := cal.Combine(day, strings.TrimSpace(*value))
	if err != nil {
		vErr.Add(field, "ожидается время в формате HH:MM")
		return nil
	}
	return &t
}

// PathID целочисленный параметр маршрута
func PathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
