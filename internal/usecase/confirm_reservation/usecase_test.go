package confirm_reservation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/internal/engine/confirmation"
	"github.com/m04kA/SMC-RentalService/internal/engine/notify"
	"github.com/m04kA/SMC-RentalService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-RentalService/pkg/keylock"
	"github.com/m04kA/SMC-RentalService/pkg/logger"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Notification
}

func (n *recordingNotifier) Publish(_ context.Context, ns []notify.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, ns...)
	return nil
}

type recordingMetrics struct {
	mu     sync.Mutex
	levels []string
}

func (m *recordingMetrics) ObserveConflict(_, level string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.levels = append(m.levels, level)
}

type fixedBuffer time.Duration

func (b fixedBuffer) Buffer(context.Context) (time.Duration, error) { return time.Duration(b), nil }

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

var (
	cal   = domain.CalendarIn(time.UTC)
	now   = time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC)
	admin = domain.Actor{ID: 7, Role: domain.RoleAdmin}
	super = domain.Actor{ID: 1, Role: domain.RoleSuperAdmin}
)

type fixture struct {
	store    *memory.Store
	notifier *recordingNotifier
	metrics  *recordingMetrics
	uc       *UseCase
}

func setup(t *testing.T, buffer time.Duration) *fixture {
	t.Helper()
	customer := domain.Customer{Name: "Ivan", Phone: "+79990001122", Email: "ivan@example.com"}
	store := memory.NewStore()
	store.Seed(domain.Reservation{ID: 1, ResourceID: 1, StartDate: cal.Date(2026, 1, 10), EndDate: cal.Date(2026, 1, 12),
		Confirmed: true, ClientSubmitted: true, Customer: customer})
	store.Seed(domain.Reservation{ID: 2, ResourceID: 1, StartDate: cal.Date(2026, 1, 11), EndDate: cal.Date(2026, 1, 13),
		ClientSubmitted: true, Customer: customer})
	store.Seed(domain.Reservation{ID: 3, ResourceID: 1, StartDate: cal.Date(2026, 1, 20), EndDate: cal.Date(2026, 1, 22)})
	store.Seed(domain.Reservation{ID: 4, ResourceID: 1, StartDate: cal.Date(2026, 1, 21), EndDate: cal.Date(2026, 1, 23)})
	store.Seed(domain.Reservation{ID: 5, ResourceID: 1, StartDate: cal.Date(2026, 1, 25), EndDate: cal.Date(2026, 1, 27), Confirmed: true})
	store.Seed(domain.Reservation{ID: 6, ResourceID: 1, StartDate: cal.Date(2026, 1, 27), EndDate: cal.Date(2026, 1, 28)})

	f := &fixture{store: store, notifier: &recordingNotifier{}, metrics: &recordingMetrics{}}
	f.uc = NewUseCase(store, fixedBuffer(buffer), store.Audit(), f.notifier, keylock.New(), f.metrics,
		memory.NewTxManager(store), cal, logger.NewNop()).
		WithTimeProvider(fixedClock{now})
	return f
}

func TestConfirm_OverlappingConfirmedBlocks(t *testing.T) {
	f := setup(t, 2*time.Hour)

	resp, err := f.uc.Confirm(context.Background(), &Request{Actor: super, ID: 2})
	require.NoError(t, err)

	assert.Equal(t, StatusBlocked, resp.Status)
	assert.Equal(t, confirmation.LevelBlock, resp.Level)
	assert.Equal(t, []int64{1}, resp.Blocking)

	stored, err := f.store.GetByID(context.Background(), 2)
	require.NoError(t, err)
	assert.False(t, stored.Confirmed)
	assert.Equal(t, []string{"block"}, f.metrics.levels)
}

func TestConfirm_TouchingDatesConfirmAtDefaultBuffer(t *testing.T) {
	f := setup(t, domain.DefaultBufferHours*time.Hour)

	resp, err := f.uc.Confirm(context.Background(), &Request{Actor: super, ID: 6})
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, resp.Status)
	assert.Equal(t, confirmation.LevelNone, resp.Level)
}

func TestConfirm_BufferBlocksCloseHandover(t *testing.T) {
	f := setup(t, domain.DefaultBufferHours*time.Hour)
	aReturn := time.Date(2026, time.February, 12, 14, 0, 0, 0, time.UTC)
	dPickup := time.Date(2026, time.February, 12, 15, 0, 0, 0, time.UTC)
	f.store.Seed(domain.Reservation{ID: 10, ResourceID: 1, StartDate: cal.Date(2026, 2, 10), EndDate: cal.Date(2026, 2, 12),
		ReturnAt: &aReturn, Confirmed: true})
	f.store.Seed(domain.Reservation{ID: 11, ResourceID: 1, StartDate: cal.Date(2026, 2, 12), EndDate: cal.Date(2026, 2, 14),
		PickupAt: &dPickup})

	resp, err := f.uc.Confirm(context.Background(), &Request{Actor: super, ID: 11})
	require.NoError(t, err)
	assert.Equal(t, StatusBlocked, resp.Status)
	assert.Equal(t, []int64{10}, resp.Blocking)
}

func TestConfirm_PendingOverlapWarns(t *testing.T) {
	f := setup(t, 2*time.Hour)

	resp, err := f.uc.Confirm(context.Background(), &Request{Actor: admin, ID: 3})
	require.NoError(t, err)

	assert.Equal(t, StatusConfirmed, resp.Status)
	assert.Equal(t, confirmation.LevelWarning, resp.Level)
	assert.Equal(t, []int64{4}, resp.Affected)
	assert.True(t, resp.Reservation.Confirmed)

	entries := f.store.Audit().Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, string(notify.ActionConfirmed), entries[0].Action)
	assert.False(t, entries[0].Before.Context.Confirmed)
	assert.True(t, entries[0].After.Context.Confirmed)
}

func TestConfirm_ConcurrentOverlappingConfirmsOneWins(t *testing.T) {
	for i := 0; i < 20; i++ {
		f := setup(t, domain.DefaultBufferHours*time.Hour)

		var (
			wg    sync.WaitGroup
			start = make(chan struct{})
			out   = make([]*Response, 2)
			errs  = make([]error, 2)
		)
		for n, id := range []int64{3, 4} {
			wg.Add(1)
			go func(n int, id int64) {
				defer wg.Done()
				<-start
				out[n], errs[n] = f.uc.Confirm(context.Background(), &Request{Actor: super, ID: id})
			}(n, id)
		}
		close(start)
		wg.Wait()

		require.NoError(t, errs[0])
		require.NoError(t, errs[1])
		statuses := []Status{out[0].Status, out[1].Status}
		assert.ElementsMatch(t, []Status{StatusConfirmed, StatusBlocked}, statuses)

		third, err := f.store.GetByID(context.Background(), 3)
		require.NoError(t, err)
		fourth, err := f.store.GetByID(context.Background(), 4)
		require.NoError(t, err)
		assert.NotEqual(t, third.Confirmed, fourth.Confirmed)
	}
}

func TestConfirm_AdminCannotConfirmClientReservation(t *testing.T) {
	f := setup(t, 0)

	_, err := f.uc.Confirm(context.Background(), &Request{Actor: admin, ID: 2})
	assert.ErrorIs(t, err, domain.ErrPermissionDenied)
}

func TestConfirm_AlreadyConfirmedIsNoop(t *testing.T) {
	f := setup(t, 0)

	resp, err := f.uc.Confirm(context.Background(), &Request{Actor: super, ID: 1})
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, resp.Status)
	assert.Equal(t, int64(1), resp.Reservation.Version)
	assert.Empty(t, f.notifier.sent)
}

func TestUnconfirm(t *testing.T) {
	t.Run("admin on internal", func(t *testing.T) {
		f := setup(t, 0)
		resp, err := f.uc.Unconfirm(context.Background(), &Request{Actor: admin, ID: 5})
		require.NoError(t, err)
		assert.Equal(t, StatusUnconfirmed, resp.Status)
		assert.False(t, resp.Reservation.Confirmed)
	})

	t.Run("admin on client is denied", func(t *testing.T) {
		f := setup(t, 0)
		_, err := f.uc.Unconfirm(context.Background(), &Request{Actor: admin, ID: 1})
		var pErr *domain.PermissionError
		require.ErrorAs(t, err, &pErr)
		assert.Equal(t, "unconfirm", pErr.Operation)
	})

	t.Run("superadmin on client notifies customer", func(t *testing.T) {
		f := setup(t, 0)
		_, err := f.uc.Unconfirm(context.Background(), &Request{Actor: super, ID: 1})
		require.NoError(t, err)

		targets := make([]notify.Target, 0, len(f.notifier.sent))
		for _, n := range f.notifier.sent {
			targets = append(targets, n.Target)
		}
		assert.ElementsMatch(t, []notify.Target{notify.TargetCustomer, notify.TargetOperators}, targets)
	})

	t.Run("not found", func(t *testing.T) {
		f := setup(t, 0)
		_, err := f.uc.Unconfirm(context.Background(), &Request{Actor: super, ID: 42})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
