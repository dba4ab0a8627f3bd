package confirm_reservation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RentalService/internal/api/middleware"
	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/internal/engine/confirmation"
	confirmReservation "github.com/m04kA/SMC-RentalService/internal/usecase/confirm_reservation"
	"github.com/m04kA/SMC-RentalService/pkg/logger"
)

type mockUseCase struct {
	mock.Mock
}

func (m *mockUseCase) Confirm(ctx context.Context, req *confirmReservation.Request) (*confirmReservation.Response, error) {
	args := m.Called(ctx, req)
	if v, ok := args.Get(0).(*confirmReservation.Response); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUseCase) Unconfirm(ctx context.Context, req *confirmReservation.Request) (*confirmReservation.Response, error) {
	args := m.Called(ctx, req)
	if v, ok := args.Get(0).(*confirmReservation.Response); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

var superAdmin = domain.Actor{ID: 1, Role: domain.RoleSuperAdmin}

func request(id, action string, actor *domain.Actor) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/reservations/"+id+"/"+action, nil)
	req = mux.SetURLVars(req, map[string]string{"reservationId": id})
	if actor != nil {
		req = req.WithContext(middleware.WithActor(req.Context(), *actor))
	}
	return req
}

func setup(t *testing.T) (*Handler, *mockUseCase, *domain.Calendar) {
	t.Helper()
	cal, err := domain.NewCalendar("Europe/Moscow")
	require.NoError(t, err)
	uc := &mockUseCase{}
	return NewHandler(uc, cal, logger.NewNop()), uc, cal
}

func TestHandleConfirm_WarningLevel(t *testing.T) {
	h, uc, cal := setup(t)

	uc.On("Confirm", mock.Anything, &confirmReservation.Request{Actor: superAdmin, ID: 7}).Return(&confirmReservation.Response{
		Status:   confirmReservation.StatusConfirmed,
		Level:    confirmation.LevelWarning,
		Affected: []int64{8, 9},
		Reservation: &domain.Reservation{
			ID: 7, Confirmed: true,
			StartDate: cal.Date(2026, time.January, 10), EndDate: cal.Date(2026, time.January, 12),
		},
	}, nil)

	rec := httptest.NewRecorder()
	h.HandleConfirm(rec, request("7", "confirm", &superAdmin))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ConfirmationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "CONFIRMED", resp.Status)
	assert.Equal(t, "warning", resp.Level)
	assert.Equal(t, []int64{8, 9}, resp.Affected)
	require.NotNil(t, resp.Reservation)
	assert.Equal(t, "2026-01-10", resp.Reservation.StartDate)
	uc.AssertExpectations(t)
}

func TestHandleConfirm_BlockedIsConflict(t *testing.T) {
	h, uc, _ := setup(t)

	uc.On("Confirm", mock.Anything, mock.Anything).Return(&confirmReservation.Response{
		Status:   confirmReservation.StatusBlocked,
		Level:    confirmation.LevelBlock,
		Blocking: []int64{3},
	}, nil)

	rec := httptest.NewRecorder()
	h.HandleConfirm(rec, request("7", "confirm", &superAdmin))

	require.Equal(t, http.StatusConflict, rec.Code)
	var resp ConfirmationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "BLOCKED", resp.Status)
	assert.Equal(t, []int64{3}, resp.Blocking)
	assert.Nil(t, resp.Reservation)
}

func TestHandleUnconfirm_UsesUnconfirm(t *testing.T) {
	h, uc, _ := setup(t)

	uc.On("Unconfirm", mock.Anything, &confirmReservation.Request{Actor: superAdmin, ID: 7}).Return(&confirmReservation.Response{
		Status: confirmReservation.StatusUnconfirmed,
	}, nil)

	rec := httptest.NewRecorder()
	h.HandleUnconfirm(rec, request("7", "unconfirm", &superAdmin))

	assert.Equal(t, http.StatusOK, rec.Code)
	uc.AssertExpectations(t)
	uc.AssertNotCalled(t, "Confirm", mock.Anything, mock.Anything)
}

func TestHandleConfirm_Errors(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		actor  *domain.Actor
		err    error
		status int
	}{
		{name: "bad id", id: "abc", actor: &superAdmin, status: http.StatusBadRequest},
		{name: "no actor", id: "7", status: http.StatusUnauthorized},
		{name: "not found", id: "7", actor: &superAdmin, err: confirmReservation.ErrReservationNotFound, status: http.StatusNotFound},
		{name: "forbidden", id: "7", actor: &superAdmin, err: &domain.PermissionError{Operation: "confirm"}, status: http.StatusForbidden},
		{name: "version conflict", id: "7", actor: &superAdmin, err: confirmReservation.ErrVersionConflict, status: http.StatusConflict},
		{name: "store down", id: "7", actor: &superAdmin, err: fmt.Errorf("%w: db", domain.ErrStoreUnavailable), status: http.StatusServiceUnavailable},
		{name: "internal", id: "7", actor: &superAdmin, err: errors.New("boom"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, uc, _ := setup(t)
			if tt.err != nil {
				uc.On("Confirm", mock.Anything, mock.Anything).Return(nil, tt.err)
			}

			rec := httptest.NewRecorder()
			h.HandleConfirm(rec, request(tt.id, "confirm", tt.actor))

			assert.Equal(t, tt.status, rec.Code)
			if tt.err == nil {
				uc.AssertNotCalled(t, "Confirm", mock.Anything, mock.Anything)
			}
		})
	}
}
