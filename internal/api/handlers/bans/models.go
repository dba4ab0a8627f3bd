package bans

import (
	"time"

	"github.com/m04kA/SMC-RentalService/internal/abuseguard"
)

// BanRequest HTTP request model; durationMinutes = 0 означает бессрочный бан
type BanRequest struct {
	Reason          string `json:"reason"`
	DurationMinutes int    `json:"durationMinutes"`
}

// BanResponse HTTP response model
type BanResponse struct {
	Subject   string  `json:"subject"`
	Reason    string  `json:"reason"`
	Until     *string `json:"until,omitempty"`
	CreatedAt string  `json:"createdAt"`
}

// FromBan конвертирует бан в HTTP response
func FromBan(b *abuseguard.Ban) *BanResponse {
	resp := &BanResponse{
		Subject:   b.Subject,
		Reason:    b.Reason,
		CreatedAt: b.CreatedAt.Format(time.RFC3339),
	}
	if b.Until != nil {
		until := b.Until.Format(time.RFC3339)
		resp.Until = &until
	}
	return resp
}
