package move_reservation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/internal/engine/links"
	"github.com/m04kA/SMC-RentalService/internal/engine/notify"
	"github.com/m04kA/SMC-RentalService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-RentalService/internal/service/linkage"
	"github.com/m04kA/SMC-RentalService/pkg/keylock"
	"github.com/m04kA/SMC-RentalService/pkg/logger"
)

type recordingNotifier struct {
	sent []notify.Notification
}

func (n *recordingNotifier) Publish(_ context.Context, ns []notify.Notification) error {
	n.sent = append(n.sent, ns...)
	return nil
}

type nopMetrics struct{}

func (nopMetrics) ObserveConflict(string, string) {}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var (
	cal   = domain.CalendarIn(time.UTC)
	now   = time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC)
	admin = domain.Actor{ID: 7, Role: domain.RoleAdmin}
)

type fixture struct {
	store    *memory.Store
	notifier *recordingNotifier
	uc       *UseCase
}

// Автомобиль 1: 1 (10-12, в конфликте с 2), 2 (11-13).
// Автомобиль 2: 10 (подтверждено, 10-12), 11 (20-22).
// Автомобиль 3: пусто.
func setup(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	store.AddVehicle(domain.Vehicle{ID: 1, Plate: "A001AA77", Active: true})
	store.AddVehicle(domain.Vehicle{ID: 2, Plate: "B002BB77", Active: true})
	store.AddVehicle(domain.Vehicle{ID: 3, Plate: "C003CC77", Active: true})
	store.Seed(domain.Reservation{ID: 1, ResourceID: 1, ResourcePlate: "A001AA77",
		StartDate: cal.Date(2026, 1, 20), EndDate: cal.Date(2026, 1, 22), ConflictLinks: domain.NewIDSet(2)})
	store.Seed(domain.Reservation{ID: 2, ResourceID: 1, ResourcePlate: "A001AA77",
		StartDate: cal.Date(2026, 1, 21), EndDate: cal.Date(2026, 1, 23), ConflictLinks: domain.NewIDSet(1)})
	store.Seed(domain.Reservation{ID: 10, ResourceID: 2, StartDate: cal.Date(2026, 1, 10), EndDate: cal.Date(2026, 1, 12), Confirmed: true})
	store.Seed(domain.Reservation{ID: 11, ResourceID: 2, StartDate: cal.Date(2026, 1, 21), EndDate: cal.Date(2026, 1, 22)})

	f := &fixture{store: store, notifier: &recordingNotifier{}}
	log := logger.NewNop()
	tx := memory.NewTxManager(store)
	cfg := linkage.DefaultConfig()
	cfg.Backoff = time.Millisecond

	f.uc = NewUseCase(store, store.Vehicles(), linkage.NewReconciler(store, tx, nil, cfg, log),
		store.Audit(), f.notifier, keylock.New(), nopMetrics{}, tx, cal, log).
		WithTimeProvider(fixedClock{now})
	return f
}

func TestExecute_MoveToFreeVehicle(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	resp, err := f.uc.Execute(ctx, &Request{Actor: admin, ID: 1, TargetResourceID: 3})
	require.NoError(t, err)

	assert.Equal(t, StatusOK, resp.Status)
	assert.Equal(t, int64(3), resp.Reservation.ResourceID)
	assert.Equal(t, "C003CC77", resp.Reservation.ResourcePlate)
	assert.Empty(t, resp.Reservation.ConflictLinks)

	stored, err := f.store.GetByID(ctx, 1)
	require.NoError(t, err)
	assert.True(t, stored.StartDate.Equal(cal.Date(2026, 1, 20)))
	assert.Empty(t, stored.ConflictLinks)

	old, err := f.store.GetByID(ctx, 2)
	require.NoError(t, err)
	assert.False(t, old.ConflictLinks.Has(1))

	all, err := f.store.List(ctx, domain.ReservationFilter{})
	require.NoError(t, err)
	assert.True(t, links.Symmetric(all))
}

func TestExecute_PendingOverlapOnTargetWarns(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	resp, err := f.uc.Execute(ctx, &Request{Actor: admin, ID: 1, TargetResourceID: 2})
	require.NoError(t, err)

	assert.Equal(t, StatusConflictWarning, resp.Status)
	assert.Equal(t, []int64{11}, resp.ConflictIDs)

	peer, err := f.store.GetByID(ctx, 11)
	require.NoError(t, err)
	assert.True(t, peer.ConflictLinks.Has(1))
}

func TestExecute_ConfirmedOverlapOnTargetBlocks(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.store.Seed(domain.Reservation{ID: 5, ResourceID: 1, StartDate: cal.Date(2026, 1, 11), EndDate: cal.Date(2026, 1, 13)})

	resp, err := f.uc.Execute(ctx, &Request{Actor: admin, ID: 5, TargetResourceID: 2})
	require.NoError(t, err)

	assert.Equal(t, StatusConflictBlock, resp.Status)
	assert.Equal(t, []int64{10}, resp.ConflictIDs)

	stored, err := f.store.GetByID(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.ResourceID)
	assert.Empty(t, f.store.Audit().Entries())
}

func TestExecute_Idempotent(t *testing.T) {
	f := setup(t)

	resp, err := f.uc.Execute(context.Background(), &Request{Actor: admin, ID: 1, TargetResourceID: 1})
	require.NoError(t, err)
	assert.Equal(t, StatusOK, resp.Status)
	assert.Equal(t, int64(1), resp.Reservation.Version)
	assert.Empty(t, f.notifier.sent)
}

func TestExecute_Errors(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.uc.Execute(ctx, &Request{Actor: admin, ID: 1, TargetResourceID: 99})
	assert.ErrorIs(t, err, ErrVehicleNotFound)

	_, err = f.uc.Execute(ctx, &Request{Actor: admin, ID: 99, TargetResourceID: 2})
	assert.ErrorIs(t, err, ErrReservationNotFound)

	f.store.Seed(domain.Reservation{ID: 20, ResourceID: 1, StartDate: cal.Date(2026, 2, 1), EndDate: cal.Date(2026, 2, 3),
		ClientSubmitted: true, Customer: domain.Customer{Name: "Ivan", Phone: "+79990001122"}})
	_, err = f.uc.Execute(ctx, &Request{Actor: admin, ID: 20, TargetResourceID: 3})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}
