package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/internal/engine/access"
)

// ListRequest бронирования автомобиля, пересекающие диапазон дат
type ListRequest struct {
	Actor      domain.Actor
	ResourceID int64
	From       *time.Time
	To         *time.Time
}

// CustomerView контакты клиента; пусто, если роль их не видит
type CustomerView struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

// ExtrasView дополнительные опции
type ExtrasView struct {
	Insurance        string `json:"insurance"`
	ChildSeats       int    `json:"childSeats"`
	AdditionalDriver bool   `json:"additionalDriver"`
}

// ReservationView бронирование глазами конкретного оператора
type ReservationView struct {
	ID              int64               `json:"id"`
	ResourceID      int64               `json:"resourceId"`
	ResourcePlate   string              `json:"resourcePlate"`
	StartDate       string              `json:"startDate"`
	EndDate         string              `json:"endDate"`
	PickupAt        *time.Time          `json:"pickupAt,omitempty"`
	ReturnAt        *time.Time          `json:"returnAt,omitempty"`
	Confirmed       bool                `json:"confirmed"`
	ClientSubmitted bool                `json:"clientSubmitted"`
	Unconfirmable   bool                `json:"unconfirmable"`
	Bucket          domain.TimeBucket   `json:"bucket"`
	ConflictLinks   []int64             `json:"conflictLinks"`
	Price           decimal.Decimal     `json:"price"`
	Days            int                 `json:"days"`
	Extras          ExtrasView          `json:"extras"`
	PlaceIn         string              `json:"placeIn,omitempty"`
	PlaceOut        string              `json:"placeOut,omitempty"`
	Customer        CustomerView        `json:"customer"`
	Notes           *string             `json:"notes,omitempty"`
	Version         int64               `json:"version"`
	Capabilities    access.Capabilities `json:"capabilities"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}
