package access

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RentalService/internal/domain"
)

var (
	roles   = []domain.Role{domain.RoleAdmin, domain.RoleSuperAdmin}
	buckets = []domain.TimeBucket{domain.BucketPast, domain.BucketCurrent, domain.BucketFuture}
)

func allContexts() []Context {
	out := make([]Context, 0, 24)
	for _, role := range roles {
		for _, client := range []bool{false, true} {
			for _, confirmed := range []bool{false, true} {
				for _, bucket := range buckets {
					out = append(out, Context{Role: role, ClientReservation: client, Confirmed: confirmed, Bucket: bucket})
				}
			}
		}
	}
	return out
}

func TestEvaluate_TotalAndDeterministic(t *testing.T) {
	contexts := allContexts()
	require.Len(t, contexts, 24)

	for _, ctx := range contexts {
		first := Evaluate(ctx)
		assert.Equal(t, first, Evaluate(ctx))
		assert.True(t, first.View, "view must be granted for %+v", ctx)

		// все десять полей присутствуют в сериализованном виде
		raw, err := json.Marshal(first)
		require.NoError(t, err)
		var fields map[string]bool
		require.NoError(t, json.Unmarshal(raw, &fields))
		assert.Len(t, fields, 10)
	}
}

func TestEvaluate_SuperAdminGetsEverything(t *testing.T) {
	for _, ctx := range allContexts() {
		if ctx.Role != domain.RoleSuperAdmin {
			continue
		}
		assert.Equal(t, all(), Evaluate(ctx), "%+v", ctx)
	}
}

func TestEvaluate_AdminTable(t *testing.T) {
	tests := []struct {
		name string
		ctx  Context
		want Capabilities
	}{
		{
			name: "past internal",
			ctx:  Context{Role: domain.RoleAdmin, Bucket: domain.BucketPast, Confirmed: true},
			want: Capabilities{View: true},
		},
		{
			name: "past client pending",
			ctx:  Context{Role: domain.RoleAdmin, Bucket: domain.BucketPast, ClientReservation: true},
			want: Capabilities{View: true},
		},
		{
			name: "past client confirmed",
			ctx:  Context{Role: domain.RoleAdmin, Bucket: domain.BucketPast, ClientReservation: true, Confirmed: true},
			want: Capabilities{View: true, SeePII: true},
		},
		{
			name: "client pending current",
			ctx:  Context{Role: domain.RoleAdmin, Bucket: domain.BucketCurrent, ClientReservation: true},
			want: Capabilities{View: true, Delete: true},
		},
		{
			name: "client confirmed future",
			ctx:  Context{Role: domain.RoleAdmin, Bucket: domain.BucketFuture, ClientReservation: true, Confirmed: true},
			want: Capabilities{View: true, Edit: true, EditReturn: true, EditInsurance: true, SeePII: true, NotifyPrivileged: true},
		},
		{
			name: "internal pending future",
			ctx:  Context{Role: domain.RoleAdmin, Bucket: domain.BucketFuture},
			want: Capabilities{View: true, Edit: true, Delete: true, EditDates: true, EditReturn: true,
				EditInsurance: true, EditPrice: true, SeePII: true},
		},
		{
			name: "internal confirmed current",
			ctx:  Context{Role: domain.RoleAdmin, Bucket: domain.BucketCurrent, Confirmed: true},
			want: Capabilities{View: true, Edit: true, Delete: true, EditDates: true, EditReturn: true,
				EditInsurance: true, EditPrice: true, SeePII: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.ctx))
		})
	}
}

func TestEvaluate_AdminNeverChangesClientDatesOrPrice(t *testing.T) {
	for _, ctx := range allContexts() {
		if ctx.Role != domain.RoleAdmin || !ctx.ClientReservation {
			continue
		}
		caps := Evaluate(ctx)
		assert.False(t, caps.EditDates, "%+v", ctx)
		assert.False(t, caps.EditPrice, "%+v", ctx)
		assert.False(t, caps.Confirm, "%+v", ctx)
	}
}

func TestCheckPatch(t *testing.T) {
	clientConfirmed := Evaluate(Context{Role: domain.RoleAdmin, Bucket: domain.BucketFuture, ClientReservation: true, Confirmed: true})

	denied := CheckPatch(clientConfirmed, []Field{FieldReturnAt, FieldInsurance, FieldStartDate, FieldPrice, FieldPlaceIn, FieldStartDate})
	assert.Equal(t, []Field{FieldStartDate, FieldPrice}, denied)

	assert.Empty(t, CheckPatch(all(), []Field{FieldStartDate, FieldPrice, FieldCustomerPhone}))
	assert.Equal(t, []Field{FieldNotes}, CheckPatch(Capabilities{View: true, EditReturn: true}, []Field{FieldPlaceOut, FieldNotes}))
}

func TestCompat(t *testing.T) {
	internal := Context{Role: domain.RoleAdmin, Bucket: domain.BucketFuture}
	client := Context{Role: domain.RoleAdmin, Bucket: domain.BucketFuture, ClientReservation: true, Confirmed: true}
	pastInternal := Context{Role: domain.RoleAdmin, Bucket: domain.BucketPast, Confirmed: true}

	assert.True(t, CanConfirm(internal))
	assert.False(t, CanConfirm(client))
	assert.False(t, CanConfirm(pastInternal))
	assert.True(t, CanUnconfirm(pastInternal))
	assert.False(t, CanUnconfirm(client))

	client.Role = domain.RoleSuperAdmin
	assert.True(t, CanConfirm(client))
	assert.True(t, CanUnconfirm(client))

	assert.True(t, CanEdit(internal))
	assert.True(t, CanDelete(internal))
	assert.False(t, CanSeeContact(Context{Role: domain.RoleAdmin, Bucket: domain.BucketCurrent, ClientReservation: true}))
}

func TestContextFor(t *testing.T) {
	cal := domain.CalendarIn(time.UTC)
	now := time.Date(2026, time.January, 11, 9, 0, 0, 0, time.UTC)
	r := domain.Reservation{
		StartDate:       cal.Date(2026, time.January, 10),
		EndDate:         cal.Date(2026, time.January, 12),
		ClientSubmitted: true,
		Confirmed:       true,
	}

	ctx := ContextFor(domain.Actor{ID: 5, Role: domain.RoleAdmin}, r, cal, now)
	assert.Equal(t, Context{Role: domain.RoleAdmin, ClientReservation: true, Confirmed: true, Bucket: domain.BucketCurrent}, ctx)

	snap := Take(ctx)
	assert.Equal(t, PolicyVersion, snap.Version)
	assert.True(t, snap.Capabilities.Edit)
}
