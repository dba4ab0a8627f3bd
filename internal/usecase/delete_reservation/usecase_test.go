package delete_reservation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RentalService/internal/domain"
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

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var (
	cal   = domain.CalendarIn(time.UTC)
	now   = time.Date(2026, time.January, 15, 9, 0, 0, 0, time.UTC)
	admin = domain.Actor{ID: 7, Role: domain.RoleAdmin}
	super = domain.Actor{ID: 1, Role: domain.RoleSuperAdmin}
)

func setup(t *testing.T) (*memory.Store, *recordingNotifier, *UseCase) {
	t.Helper()
	customer := domain.Customer{Name: "Ivan", Phone: "+79990001122", Email: "ivan@example.com"}
	store := memory.NewStore()
	store.Seed(domain.Reservation{ID: 1, ResourceID: 1, StartDate: cal.Date(2026, 1, 20), EndDate: cal.Date(2026, 1, 22),
		ClientSubmitted: true, Customer: customer, ConflictLinks: domain.NewIDSet(2)})
	store.Seed(domain.Reservation{ID: 2, ResourceID: 1, StartDate: cal.Date(2026, 1, 21), EndDate: cal.Date(2026, 1, 23),
		Confirmed: true, ClientSubmitted: true, Customer: customer, ConflictLinks: domain.NewIDSet(1)})
	store.Seed(domain.Reservation{ID: 3, ResourceID: 1, StartDate: cal.Date(2026, 1, 1), EndDate: cal.Date(2026, 1, 3)})

	notifier := &recordingNotifier{}
	log := logger.NewNop()
	tx := memory.NewTxManager(store)
	cfg := linkage.DefaultConfig()
	cfg.Backoff = time.Millisecond

	uc := NewUseCase(store, linkage.NewReconciler(store, tx, nil, cfg, log), store.Audit(), notifier,
		keylock.New(), tx, cal, log).WithTimeProvider(fixedClock{now})
	return store, notifier, uc
}

func TestExecute_AdminDeletesPendingClientReservation(t *testing.T) {
	store, notifier, uc := setup(t)
	ctx := context.Background()
	// 4 ссылается на 1, а 1 на 4 нет
	store.Seed(domain.Reservation{ID: 4, ResourceID: 1, StartDate: cal.Date(2026, 1, 19), EndDate: cal.Date(2026, 1, 21),
		ConflictLinks: domain.NewIDSet(1)})

	resp, err := uc.Execute(ctx, &Request{Actor: admin, ID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.Deleted.ID)

	_, err = store.GetByID(ctx, 1)
	assert.Error(t, err)

	remaining, err := store.List(ctx, domain.ReservationFilter{})
	require.NoError(t, err)
	require.Len(t, remaining, 3)
	for _, r := range remaining {
		assert.False(t, r.ConflictLinks.Has(1), "id=%d still links to deleted reservation", r.ID)
	}

	entries := store.Audit().Entries()
	require.Len(t, entries, 1)
	assert.NotNil(t, entries[0].Before)
	assert.Nil(t, entries[0].After)

	require.NotEmpty(t, notifier.sent)
	for _, n := range notifier.sent {
		if n.Target == notify.TargetOperators {
			assert.Empty(t, n.Payload.CustomerPhone)
		}
	}
}

func TestExecute_Forbidden(t *testing.T) {
	store, _, uc := setup(t)
	ctx := context.Background()

	for _, id := range []int64{2, 3} {
		_, err := uc.Execute(ctx, &Request{Actor: admin, ID: id})
		var pErr *domain.PermissionError
		require.ErrorAs(t, err, &pErr, "id=%d", id)
		assert.Equal(t, "delete", pErr.Operation)

		_, err = store.GetByID(ctx, id)
		assert.NoError(t, err)
	}

	_, err := uc.Execute(ctx, &Request{Actor: super, ID: 3})
	assert.NoError(t, err)
}

func TestExecute_NotFound(t *testing.T) {
	_, _, uc := setup(t)

	_, err := uc.Execute(context.Background(), &Request{Actor: super, ID: 404})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
