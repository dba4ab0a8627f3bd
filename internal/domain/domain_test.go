package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCalendar(t *testing.T) *Calendar {
	t.Helper()
	cal, err := NewCalendar(DefaultTimezone)
	require.NoError(t, err)
	return cal
}

func TestCalendar_Bucket(t *testing.T) {
	cal := testCalendar(t)
	r := Reservation{
		StartDate: cal.Date(2026, time.January, 10),
		EndDate:   cal.Date(2026, time.January, 12),
	}

	tests := []struct {
		name string
		now  time.Time
		want TimeBucket
	}{
		{"day before pickup", cal.At(2026, time.January, 9, 23, 59), BucketFuture},
		{"pickup day", cal.At(2026, time.January, 10, 0, 1), BucketCurrent},
		{"return day", cal.At(2026, time.January, 12, 20, 0), BucketCurrent},
		{"day after return", cal.At(2026, time.January, 13, 0, 0), BucketPast},
		// 22:30 UTC 12 января = 01:30 МСК 13 января
		{"utc instant mapped to business date", time.Date(2026, time.January, 12, 22, 30, 0, 0, time.UTC), BucketPast},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cal.Bucket(r, tt.now))
		})
	}
}

func TestCalendar_Combine(t *testing.T) {
	cal := testCalendar(t)
	at, err := cal.Combine(cal.Date(2026, time.January, 12), "14:30")
	require.NoError(t, err)
	assert.True(t, at.Equal(cal.At(2026, time.January, 12, 14, 30)))

	_, err = cal.Combine(cal.Date(2026, time.January, 12), "25:00")
	assert.Error(t, err)
}

func TestNewCalendar_UnknownZone(t *testing.T) {
	_, err := NewCalendar("Mars/Olympus")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole(" superadmin ")
	require.NoError(t, err)
	assert.Equal(t, RoleSuperAdmin, r)
	assert.True(t, r.IsPrivileged())

	r, err = ParseRole("ADMIN")
	require.NoError(t, err)
	assert.False(t, r.IsPrivileged())

	_, err = ParseRole("manager")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestOperatorSettings_Buffer(t *testing.T) {
	var missing *OperatorSettings
	assert.Equal(t, 2*time.Hour, missing.Buffer(DefaultBufferHours))
	assert.Equal(t, 2*time.Hour, (&OperatorSettings{}).Buffer(DefaultBufferHours))

	zero := 0
	assert.Equal(t, time.Duration(0), (&OperatorSettings{BufferHours: &zero}).Buffer(DefaultBufferHours))

	five := 5
	assert.Equal(t, 5*time.Hour, (&OperatorSettings{BufferHours: &five}).Buffer(DefaultBufferHours))
}

func TestValidateReservation(t *testing.T) {
	cal := testCalendar(t)
	valid := func() Reservation {
		pickup := cal.At(2026, time.January, 10, 10, 0)
		ret := cal.At(2026, time.January, 12, 14, 0)
		return Reservation{
			ResourceID:      1,
			StartDate:       cal.Date(2026, time.January, 10),
			EndDate:         cal.Date(2026, time.January, 12),
			PickupAt:        &pickup,
			ReturnAt:        &ret,
			ClientSubmitted: true,
			Customer:        Customer{Name: "Ivan", Phone: "+7 (900) 123-45-67"},
			Price:           decimal.NewFromInt(100),
		}
	}

	require.Nil(t, ValidateReservation(valid(), cal))

	tests := []struct {
		name   string
		mutate func(r *Reservation)
		field  string
	}{
		{"same day range", func(r *Reservation) { r.EndDate = r.StartDate; r.ReturnAt = nil }, "endDate"},
		{"reversed range", func(r *Reservation) { r.EndDate = cal.Date(2026, time.January, 9); r.ReturnAt = nil }, "endDate"},
		{"pickup on other day", func(r *Reservation) { p := cal.At(2026, time.January, 11, 9, 0); r.PickupAt = &p }, "pickupAt"},
		{"return on other day", func(r *Reservation) { p := cal.At(2026, time.January, 11, 9, 0); r.ReturnAt = &p }, "returnAt"},
		{"missing resource", func(r *Reservation) { r.ResourceID = 0 }, "resourceId"},
		{"unknown insurance", func(r *Reservation) { r.Extras.Insurance = "platinum" }, "extras.insurance"},
		{"negative price", func(r *Reservation) { r.Price = decimal.NewFromInt(-1) }, "price"},
		{"client without name", func(r *Reservation) { r.Customer.Name = "  " }, "customer.name"},
		{"client with short phone", func(r *Reservation) { r.Customer.Phone = "12-34" }, "customer.phone"},
		{"too long rental", func(r *Reservation) { r.EndDate = r.StartDate.AddDate(0, 0, MaxRentalDays+1); r.ReturnAt = nil }, "endDate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid()
			tt.mutate(&r)
			vErr := ValidateReservation(r, cal)
			require.NotNil(t, vErr)
			assert.Contains(t, vErr.FieldErrors, tt.field)
			assert.True(t, errors.Is(vErr, ErrInvalidInput))
		})
	}
}

func TestValidateReservation_InternalNeedsNoCustomer(t *testing.T) {
	cal := testCalendar(t)
	r := Reservation{
		ResourceID: 1,
		StartDate:  cal.Date(2026, time.January, 10),
		EndDate:    cal.Date(2026, time.January, 11),
	}
	assert.Nil(t, ValidateReservation(r, cal))
}

func TestReservation_CloneIsIndependent(t *testing.T) {
	pickup := time.Date(2026, 1, 10, 10, 0, 0, 0, time.UTC)
	r := Reservation{ID: 1, ConflictLinks: NewIDSet(2, 3), PickupAt: &pickup}

	c := r.Clone()
	c.ConflictLinks[4] = struct{}{}
	*c.PickupAt = pickup.Add(time.Hour)

	assert.Equal(t, []int64{2, 3}, r.ConflictLinks.Sorted())
	assert.True(t, r.PickupAt.Equal(pickup))
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, "", ErrorKind(nil))
	assert.Equal(t, "validation", ErrorKind(&ValidationError{}))
	assert.Equal(t, "permission_denied", ErrorKind(&PermissionError{Operation: "delete"}))
	assert.Equal(t, "not_found", ErrorKind(ErrNotFound))
	assert.Equal(t, "store_unavailable", ErrorKind(ErrStoreUnavailable))
	assert.Equal(t, "unexpected", ErrorKind(errors.New("boom")))
}

func TestPermissionError_Message(t *testing.T) {
	err := &PermissionError{Operation: "update", Fields: []string{"price", "startDate"}}
	assert.Equal(t, "permission denied: update: fields price, startDate", err.Error())
	assert.ErrorIs(t, err, ErrPermissionDenied)
}
