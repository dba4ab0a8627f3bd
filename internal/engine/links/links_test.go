package links

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RentalService/internal/domain"
)

func day(d int) time.Time {
	return time.Date(2026, time.January, d, 0, 0, 0, 0, time.UTC)
}

func res(id, resource int64, from, to int, linked ...int64) domain.Reservation {
	return domain.Reservation{
		ID:            id,
		ResourceID:    resource,
		StartDate:     day(from),
		EndDate:       day(to),
		ConflictLinks: domain.NewIDSet(linked...),
	}
}

func find(t *testing.T, rs []domain.Reservation, id int64) domain.Reservation {
	t.Helper()
	for _, r := range rs {
		if r.ID == id {
			return r
		}
	}
	require.FailNow(t, "reservation not found", "id=%d", id)
	return domain.Reservation{}
}

func TestRelink_OnCreate(t *testing.T) {
	peers := []domain.Reservation{
		res(1, 1, 10, 12),
		res(2, 1, 12, 14),
		res(3, 1, 11, 13),
		res(4, 2, 10, 14),
	}
	subject := res(5, 1, 11, 12)

	plan := Relink(subject, peers)
	assert.Equal(t, []int64{1, 3}, plan.Links.Sorted())
	assert.Equal(t, []Intent{{OpAdd, 5, 1}, {OpAdd, 5, 3}}, plan.Intents)

	subject.ConflictLinks = plan.Links
	after := Apply(append(peers, subject), plan.Intents)
	assert.True(t, Symmetric(after))
	assert.True(t, find(t, after, 1).ConflictLinks.Has(5))
	assert.False(t, find(t, after, 2).ConflictLinks.Has(5))
}

func TestRelink_OnDateChange(t *testing.T) {
	peers := []domain.Reservation{
		res(1, 1, 10, 12, 3),
		res(2, 1, 12, 14),
	}
	// 3 сдвинуто с 11..13 на 13..15
	subject := res(3, 1, 13, 15, 1)

	plan := Relink(subject, peers)
	assert.Equal(t, []int64{2}, plan.Links.Sorted())
	assert.ElementsMatch(t, []Intent{{OpAdd, 3, 2}, {OpRemove, 3, 1}}, plan.Intents)

	subject.ConflictLinks = plan.Links
	after := Apply(append(peers, subject), plan.Intents)
	assert.True(t, Symmetric(after))
	assert.Empty(t, find(t, after, 1).ConflictLinks)
}

func TestRelink_RepairsOneSidedLink(t *testing.T) {
	peers := []domain.Reservation{res(1, 1, 10, 12)}
	subject := res(2, 1, 11, 13, 1)

	plan := Relink(subject, peers)
	assert.Equal(t, []Intent{{OpAdd, 2, 1}}, plan.Intents)
}

func TestRelink_AfterMoveDropsOldResourceLinks(t *testing.T) {
	oldPeer := res(1, 1, 10, 12, 3)
	newPeer := res(2, 2, 11, 14)
	moved := res(3, 2, 10, 12, 1)

	plan := Relink(moved, []domain.Reservation{oldPeer, newPeer})
	assert.Equal(t, []int64{2}, plan.Links.Sorted())
	assert.ElementsMatch(t, []Intent{{OpAdd, 3, 2}, {OpRemove, 3, 1}}, plan.Intents)
}

func TestUnlink(t *testing.T) {
	a := res(1, 1, 10, 12, 2, 3)
	peers := []domain.Reservation{
		res(2, 1, 11, 13, 1),
		res(3, 1, 11, 12, 1),
		res(4, 1, 9, 11, 1), // одностороння ссылка
	}

	intents := Unlink(a, peers)
	assert.Equal(t, []Intent{{OpRemove, 1, 2}, {OpRemove, 1, 3}, {OpRemove, 1, 4}}, intents)

	after := Apply(peers, intents)
	for _, p := range after {
		assert.False(t, p.ConflictLinks.Has(1), "peer %d keeps a dangling link", p.ID)
	}
}

func TestRebuild(t *testing.T) {
	rs := []domain.Reservation{
		res(1, 1, 10, 12, 4),
		res(2, 1, 11, 13),
		res(3, 1, 13, 15, 2),
		res(4, 1, 20, 22),
	}

	intents := Rebuild(rs)
	after := Apply(rs, intents)
	assert.True(t, Symmetric(after))
	assert.Equal(t, []int64{2}, find(t, after, 1).ConflictLinks.Sorted())
	assert.Equal(t, []int64{1}, find(t, after, 2).ConflictLinks.Sorted())
	assert.Empty(t, find(t, after, 3).ConflictLinks)
	assert.Empty(t, find(t, after, 4).ConflictLinks)

	assert.Empty(t, Rebuild(after))
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	rs := []domain.Reservation{res(1, 1, 10, 12), res(2, 1, 11, 13)}
	_ = Apply(rs, []Intent{{OpAdd, 1, 2}})
	assert.Empty(t, rs[0].ConflictLinks)
	assert.Empty(t, rs[1].ConflictLinks)
}
