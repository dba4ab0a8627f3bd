package pricing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/pkg/logger"
)

func TestQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/internal/pricing/quote", r.URL.Path)
		var q QuoteRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&q))
		assert.Equal(t, "2026-01-10", q.StartDate)
		assert.Equal(t, "full", q.Insurance)
		_, _ = w.Write([]byte(`{"price":"4500.50","days":2}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second, logger.NewNop())
	r := domain.Reservation{
		ResourceID: 1,
		StartDate:  time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, time.January, 12, 0, 0, 0, 0, time.UTC),
		Extras:     domain.Extras{Insurance: domain.InsuranceFull},
	}

	quote, err := c.Quote(context.Background(), NewQuoteRequest(r))
	require.NoError(t, err)
	assert.True(t, quote.Price.Equal(decimal.RequireFromString("4500.5")))
	assert.Equal(t, 2, quote.Days)
}

func TestQuote_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"rejected", http.StatusUnprocessableEntity, `{"code":422,"message":"too long"}`, ErrRejected},
		{"unavailable", http.StatusServiceUnavailable, ``, ErrUnavailable},
		{"unexpected", http.StatusTeapot, `?`, ErrInvalidResponse},
		{"negative price", http.StatusOK, `{"price":"-1","days":2}`, ErrInvalidResponse},
		{"broken json", http.StatusOK, `{`, ErrInvalidResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, time.Second, logger.NewNop()).Quote(context.Background(), QuoteRequest{ResourceID: 1})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
