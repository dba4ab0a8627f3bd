package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RentalService/internal/abuseguard"
	"github.com/m04kA/SMC-RentalService/internal/domain"
)

func TestRespondDomainError(t *testing.T) {
	vErr := &domain.ValidationError{}
	vErr.Add("endDate", "must be after startDate")

	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", vErr, http.StatusBadRequest},
		{"forbidden fields", &domain.PermissionError{Operation: "update", Fields: []string{"price"}}, http.StatusForbidden},
		{"not found", fmt.Errorf("x: %w", domain.ErrNotFound), http.StatusNotFound},
		{"version", fmt.Errorf("x: %w", domain.ErrVersionConflict), http.StatusConflict},
		{"rate limited", &abuseguard.RateLimitedError{RetryAfter: 90 * time.Second}, http.StatusTooManyRequests},
		{"banned", &abuseguard.BannedError{Reason: abuseguard.ReasonDuplicatePayload}, http.StatusTooManyRequests},
		{"unavailable", fmt.Errorf("x: %w", domain.ErrStoreUnavailable), http.StatusServiceUnavailable},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			assert.Equal(t, tt.status, RespondDomainError(rec, tt.err))
			assert.Equal(t, tt.status, rec.Code)

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.status, body.Code)
		})
	}
}

func TestRespondDomainError_Details(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondDomainError(rec, &domain.PermissionError{Operation: "update", Fields: []string{"start_date"}})

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"start_date"}, body.Denied)

	rec = httptest.NewRecorder()
	RespondDomainError(rec, &abuseguard.RateLimitedError{RetryAfter: 1500 * time.Millisecond})
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		A int `json:"a"`
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1}`))
	require.NoError(t, DecodeJSON(r, &v))
	assert.Equal(t, 1, v.A)

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"b":1}`))
	assert.Error(t, DecodeJSON(r, &v))
}
