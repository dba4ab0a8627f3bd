package update_reservation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RentalService/internal/api/middleware"
	"github.com/m04kA/SMC-RentalService/internal/domain"
	updateReservation "github.com/m04kA/SMC-RentalService/internal/usecase/update_reservation"
	"github.com/m04kA/SMC-RentalService/pkg/logger"
)

type mockUseCase struct {
	mock.Mock
}

func (m *mockUseCase) Execute(ctx context.Context, req *updateReservation.Request) (*updateReservation.Response, error) {
	args := m.Called(ctx, req)
	if v, ok := args.Get(0).(*updateReservation.Response); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func request(t *testing.T, id, body string, actor *domain.Actor) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/reservations/"+id, strings.NewReader(body))
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

func TestHandle_BuildsPatch(t *testing.T) {
	h, uc, cal := setup(t)
	admin := domain.Actor{ID: 3, Role: domain.RoleAdmin}

	uc.On("Execute", mock.Anything, mock.MatchedBy(func(req *updateReservation.Request) bool {
		p := req.Patch
		return req.ID == 10 && req.Actor == admin &&
			req.Version != nil && *req.Version == 4 &&
			p.EndDate != nil && p.EndDate.Equal(cal.Date(2025, time.October, 20)) &&
			p.Insurance != nil && *p.Insurance == domain.InsuranceFull &&
			p.StartDate == nil && p.Price == nil
	})).Return(&updateReservation.Response{
		Status:      updateReservation.StatusConflictWarning,
		Reservation: &domain.Reservation{ID: 10, StartDate: cal.Date(2025, time.October, 15), EndDate: cal.Date(2025, time.October, 20)},
		ConflictIDs: []int64{11},
	}, nil)

	rec := httptest.NewRecorder()
	h.Handle(rec, request(t, "10", `{"version": 4, "endDate": "2025-10-20", "insurance": "FULL"}`, &admin))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp UpdateReservationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "CONFLICT_WARNING", resp.Status)
	assert.Equal(t, []int64{11}, resp.ConflictIDs)
	assert.Equal(t, "2025-10-20", resp.Reservation.EndDate)
	uc.AssertExpectations(t)
}

func TestHandle_ConflictBlock(t *testing.T) {
	h, uc, _ := setup(t)
	uc.On("Execute", mock.Anything, mock.Anything).Return(&updateReservation.Response{
		Status:      updateReservation.StatusConflictBlock,
		ConflictIDs: []int64{2},
		Message:     "blocked",
	}, nil)

	rec := httptest.NewRecorder()
	h.Handle(rec, request(t, "10", `{"startDate": "2025-10-14"}`, &domain.Actor{ID: 1, Role: domain.RoleSuperAdmin}))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandle_Errors(t *testing.T) {
	superAdmin := &domain.Actor{ID: 1, Role: domain.RoleSuperAdmin}
	tests := []struct {
		name   string
		id     string
		body   string
		actor  *domain.Actor
		err    error
		status int
	}{
		{"bad id", "abc", `{}`, superAdmin, nil, http.StatusBadRequest},
		{"no actor", "10", `{}`, nil, nil, http.StatusUnauthorized},
		{"bad date", "10", `{"startDate": "tomorrow"}`, superAdmin, nil, http.StatusBadRequest},
		{"forbidden fields", "10", `{"price": "100"}`, superAdmin,
			&domain.PermissionError{Operation: "update", Fields: []string{"price"}}, http.StatusForbidden},
		{"stale version", "10", `{"version": 1}`, superAdmin, updateReservation.ErrVersionConflict, http.StatusConflict},
		{"not found", "10", `{}`, superAdmin, updateReservation.ErrReservationNotFound, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, uc, _ := setup(t)
			if tt.err != nil {
				uc.On("Execute", mock.Anything, mock.Anything).Return(nil, tt.err)
			}

			rec := httptest.NewRecorder()
			h.Handle(rec, request(t, tt.id, tt.body, tt.actor))
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
