package linkage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/internal/engine/links"
	"github.com/m04kA/SMC-RentalService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-RentalService/pkg/logger"
)

func day(d int) time.Time {
	return time.Date(2026, time.January, d, 0, 0, 0, 0, time.UTC)
}

func setup(t *testing.T) (*memory.Store, *Reconciler) {
	t.Helper()
	store := memory.NewStore()
	cfg := DefaultConfig()
	cfg.Backoff = time.Millisecond
	return store, NewReconciler(store, memory.NewTxManager(store), nil, cfg, logger.NewNop())
}

func TestApply_RetriesThenSucceeds(t *testing.T) {
	store, rec := setup(t)
	store.Seed(domain.Reservation{ID: 1, ResourceID: 1, StartDate: day(10), EndDate: day(12)})
	store.Seed(domain.Reservation{ID: 2, ResourceID: 1, StartDate: day(11), EndDate: day(13)})
	store.FailLinkWrites(2)

	ok := rec.Apply(context.Background(), []links.Intent{{Op: links.OpAdd, A: 1, B: 2}}, 1)
	assert.True(t, ok)

	r1, err := store.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, r1.ConflictLinks.Has(2))

	dirty, err := store.ListDirty(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, dirty)
}

func TestApply_GivesUpAndMarksDirty(t *testing.T) {
	store, rec := setup(t)
	store.Seed(domain.Reservation{ID: 1, ResourceID: 1, StartDate: day(10), EndDate: day(12)})
	store.Seed(domain.Reservation{ID: 2, ResourceID: 1, StartDate: day(11), EndDate: day(13)})
	store.FailLinkWrites(3)

	ok := rec.Apply(context.Background(), []links.Intent{{Op: links.OpAdd, A: 1, B: 2}}, 1, 7)
	assert.False(t, ok)

	dirty, err := store.ListDirty(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 7}, dirty)

	// основная запись на месте
	_, err = store.GetByID(context.Background(), 1)
	assert.NoError(t, err)

	// фоновая сверка чинит ссылки
	done, err := rec.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, done)

	r1, _ := store.GetByID(context.Background(), 1)
	r2, _ := store.GetByID(context.Background(), 2)
	assert.True(t, r1.ConflictLinks.Has(2))
	assert.True(t, r2.ConflictLinks.Has(1))

	dirty, _ = store.ListDirty(context.Background(), 10)
	assert.Empty(t, dirty)
}

func TestReconcileResource_RemovesStaleLinks(t *testing.T) {
	store, rec := setup(t)
	store.Seed(domain.Reservation{ID: 1, ResourceID: 1, StartDate: day(10), EndDate: day(12), ConflictLinks: domain.NewIDSet(2, 9)})
	store.Seed(domain.Reservation{ID: 2, ResourceID: 1, StartDate: day(12), EndDate: day(14), ConflictLinks: domain.NewIDSet(1)})

	applied, err := rec.ReconcileResource(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, applied)

	r1, _ := store.GetByID(context.Background(), 1)
	r2, _ := store.GetByID(context.Background(), 2)
	assert.Empty(t, r1.ConflictLinks)
	assert.Empty(t, r2.ConflictLinks)
}

func TestApply_Empty(t *testing.T) {
	_, rec := setup(t)
	assert.True(t, rec.Apply(context.Background(), nil, 1))
}
