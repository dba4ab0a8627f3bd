package notify

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RentalService/internal/domain"
)

func clientReservation(confirmed bool) domain.Reservation {
	return domain.Reservation{
		ID:              42,
		ResourceID:      7,
		ResourcePlate:   "A123BC77",
		StartDate:       time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2026, time.January, 12, 0, 0, 0, 0, time.UTC),
		Confirmed:       confirmed,
		ClientSubmitted: true,
		Price:           decimal.RequireFromString("150.00"),
		Customer:        domain.Customer{Name: "Ivan", Phone: "+79990001122", Email: "ivan@example.com"},
		ConflictLinks:   domain.NewIDSet(3),
	}
}

var admin = domain.Actor{ID: 10, Role: domain.RoleAdmin}

func TestPlan_ClientCreatedGoesToOperatorsRedacted(t *testing.T) {
	got := Plan(Event{Action: ActionCreated, Reservation: clientReservation(false), Bucket: domain.BucketFuture})
	require.Len(t, got, 1)

	n := got[0]
	assert.Equal(t, TargetOperators, n.Target)
	assert.Equal(t, ChannelChat, n.Channel)
	assert.Equal(t, PriorityNormal, n.Priority)
	assert.Empty(t, n.Payload.CustomerName)
	assert.Empty(t, n.Payload.CustomerPhone)
	assert.Empty(t, n.Payload.CustomerEmail)
	assert.Equal(t, int64(42), n.Payload.ReservationID)
}

func TestPlan_ClientCreatedWithConflictIsHighPriority(t *testing.T) {
	got := Plan(Event{
		Action:      ActionCreated,
		Reservation: clientReservation(false),
		Conflict:    true,
		ConflictIDs: []int64{3},
		Bucket:      domain.BucketFuture,
	})
	require.Len(t, got, 1)
	assert.Equal(t, PriorityHigh, got[0].Priority)
	assert.Equal(t, []int64{3}, got[0].Payload.ConflictIDs)
}

func TestPlan_InternalCreatedIsSilent(t *testing.T) {
	r := clientReservation(false)
	r.ClientSubmitted = false
	assert.Empty(t, Plan(Event{Action: ActionCreated, Actor: admin, Reservation: r, Bucket: domain.BucketFuture}))
}

func TestPlan_EditOfConfirmedClientByAdminNotifiesPrivileged(t *testing.T) {
	for _, action := range []Action{ActionUpdated, ActionMoved} {
		got := Plan(Event{Action: action, Actor: admin, Reservation: clientReservation(true), Bucket: domain.BucketFuture})
		require.Len(t, got, 1, action)
		assert.Equal(t, TargetPrivileged, got[0].Target)
		assert.Equal(t, PriorityHigh, got[0].Priority)
		assert.Equal(t, "Ivan", got[0].Payload.CustomerName)
		assert.Equal(t, admin.ID, got[0].Payload.ActorID)
	}
}

func TestPlan_EditBySuperAdminIsSilent(t *testing.T) {
	super := domain.Actor{ID: 1, Role: domain.RoleSuperAdmin}
	assert.Empty(t, Plan(Event{Action: ActionUpdated, Actor: super, Reservation: clientReservation(true), Bucket: domain.BucketFuture}))
	assert.Empty(t, Plan(Event{Action: ActionUpdated, Actor: admin, Reservation: clientReservation(false), Bucket: domain.BucketFuture}))
}

func TestPlan_ConfirmNotifiesCustomerAndOperators(t *testing.T) {
	got := Plan(Event{Action: ActionConfirmed, Actor: admin, Reservation: clientReservation(true), Bucket: domain.BucketFuture})
	require.Len(t, got, 2)

	customer := got[0]
	assert.Equal(t, TargetCustomer, customer.Target)
	assert.Equal(t, ChannelEmail, customer.Channel)
	assert.Equal(t, "ivan@example.com", customer.Address)
	assert.Equal(t, "Ivan", customer.Payload.CustomerName)
	assert.Empty(t, customer.Payload.ConflictIDs)
	assert.Zero(t, customer.Payload.ResourceID)
	assert.Zero(t, customer.Payload.ActorID)

	assert.Equal(t, TargetOperators, got[1].Target)
	assert.Equal(t, "Ivan", got[1].Payload.CustomerName)
}

func TestPlan_DeletePendingRedactsOperatorsOnly(t *testing.T) {
	got := Plan(Event{Action: ActionDeleted, Actor: admin, Reservation: clientReservation(false), Bucket: domain.BucketCurrent})
	require.Len(t, got, 2)
	assert.Equal(t, "Ivan", got[0].Payload.CustomerName)
	assert.Empty(t, got[1].Payload.CustomerName)
}

func TestPlan_CustomerWithoutEmailSkipped(t *testing.T) {
	r := clientReservation(true)
	r.Customer.Email = ""
	got := Plan(Event{Action: ActionUnconfirmed, Actor: admin, Reservation: r, Bucket: domain.BucketFuture})
	require.Len(t, got, 1)
	assert.Equal(t, TargetOperators, got[0].Target)
}

func TestPlan_ConflictBlockedGoesToOperators(t *testing.T) {
	r := clientReservation(false)
	r.ClientSubmitted = false
	got := Plan(Event{Action: ActionConflictBlocked, Actor: admin, Reservation: r, ConflictIDs: []int64{1}, Bucket: domain.BucketFuture})
	require.Len(t, got, 1)
	assert.Equal(t, PriorityHigh, got[0].Priority)
	assert.Equal(t, []int64{1}, got[0].Payload.ConflictIDs)
}
