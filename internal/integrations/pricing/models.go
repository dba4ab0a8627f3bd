package pricing

import (
	"time"

	"github.com/shopspring/decimal"
)

// QuoteRequest параметры аренды для расчета цены
type QuoteRequest struct {
	ResourceID       int64      `json:"resource_id"`
	StartDate        string     `json:"start_date"`
	EndDate          string     `json:"end_date"`
	PickupAt         *time.Time `json:"pickup_at,omitempty"`
	ReturnAt         *time.Time `json:"return_at,omitempty"`
	Insurance        string     `json:"insurance"`
	ChildSeats       int        `json:"child_seats"`
	AdditionalDriver bool       `json:"additional_driver"`
}

// Quote цена и количество дней аренды
type Quote struct {
	Price decimal.Decimal `json:"price"`
	Days  int             `json:"days"`
}

// ErrorResponse модель ошибки от сервиса цен
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
