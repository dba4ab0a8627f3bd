package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/internal/engine/access"
)

func TestSnapshotRoundTrip(t *testing.T) {
	snap := access.Take(access.Context{Role: domain.RoleAdmin, ClientReservation: true, Confirmed: true, Bucket: domain.BucketFuture})

	raw, err := marshalSnapshot(&snap)
	require.NoError(t, err)

	got, err := unmarshalSnapshot([]byte(raw.(string)))
	require.NoError(t, err)
	assert.Equal(t, snap, *got)

	null, err := marshalSnapshot(nil)
	require.NoError(t, err)
	assert.Nil(t, null)

	empty, err := unmarshalSnapshot(nil)
	require.NoError(t, err)
	assert.Nil(t, empty)
}

func TestNewEntry(t *testing.T) {
	e := NewEntry(domain.Actor{ID: 3, Role: domain.RoleAdmin}, "confirm", 42, nil, nil)
	assert.NotEqual(t, e.ID.String(), "00000000-0000-0000-0000-000000000000")
	assert.Equal(t, int64(42), e.ReservationID)
	assert.NotNil(t, e.Details)
	assert.Equal(t, domain.Role(""), roleOf(""))
	assert.Equal(t, domain.RoleSuperAdmin, roleOf("superadmin"))
}
