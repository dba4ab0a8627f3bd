package overlap

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-RentalService/internal/domain"
)

var base = time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)

func at(hours int) time.Time {
	return base.Add(time.Duration(hours) * time.Hour)
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name    string
		a, b    Interval
		want    bool
		overlap Interval
	}{
		{"disjoint", Interval{at(0), at(10)}, Interval{at(20), at(30)}, false, Interval{}},
		{"touching end to start", Interval{at(0), at(10)}, Interval{at(10), at(20)}, false, Interval{}},
		{"touching start to end", Interval{at(10), at(20)}, Interval{at(0), at(10)}, false, Interval{}},
		{"partial overlap", Interval{at(0), at(10)}, Interval{at(5), at(15)}, true, Interval{at(5), at(10)}},
		{"containment", Interval{at(0), at(30)}, Interval{at(5), at(15)}, true, Interval{at(5), at(15)}},
		{"identical", Interval{at(0), at(10)}, Interval{at(0), at(10)}, true, Interval{at(0), at(10)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Detect(tt.a, tt.b)
			assert.Equal(t, tt.want, ok)
			if tt.want {
				assert.True(t, got.Start.Equal(tt.overlap.Start))
				assert.True(t, got.End.Equal(tt.overlap.End))
			}
		})
	}
}

func TestDetect_IsSymmetric(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < 5000; i++ {
		s1 := rnd.Intn(100)
		s2 := rnd.Intn(100)
		a := Interval{at(s1), at(s1 + 1 + rnd.Intn(48))}
		b := Interval{at(s2), at(s2 + 1 + rnd.Intn(48))}

		ab, okAB := Detect(a, b)
		ba, okBA := Detect(b, a)
		require.Equal(t, okAB, okBA, "a=%v b=%v", a, b)
		if okAB {
			require.True(t, ab.Start.Equal(ba.Start) && ab.End.Equal(ba.End))
			require.False(t, ab.Empty())
		}
	}
}

func TestDetect_TouchingNeverConflicts(t *testing.T) {
	for t0 := 0; t0 < 50; t0++ {
		for d := 1; d < 10; d++ {
			t1 := t0 + d
			assert.False(t, Overlaps(Interval{at(t0), at(t1)}, Interval{at(t1), at(t1 + d)}))
		}
	}
}

func TestOf_UsesInstantsWhenPresent(t *testing.T) {
	pickup := at(10)
	r := domain.Reservation{StartDate: at(0), EndDate: at(48)}
	iv := Of(r)
	assert.True(t, iv.Start.Equal(at(0)))
	assert.True(t, iv.End.Equal(at(48)))

	ret := at(62)
	r.PickupAt, r.ReturnAt = &pickup, &ret
	iv = Of(r)
	assert.True(t, iv.Start.Equal(at(10)))
	assert.True(t, iv.End.Equal(at(62)))
}

func TestBuffered_ExpandsOnlyInstants(t *testing.T) {
	r := domain.Reservation{StartDate: at(0), EndDate: at(48)}
	iv := Buffered(r, 2*time.Hour)
	assert.True(t, iv.Start.Equal(at(0)))
	assert.True(t, iv.End.Equal(at(48)))

	ret := at(38)
	r.ReturnAt = &ret
	iv = Buffered(r, 2*time.Hour)
	assert.True(t, iv.Start.Equal(at(0)))
	assert.True(t, iv.End.Equal(at(40)))

	pickup := at(10)
	r.PickupAt = &pickup
	iv = Buffered(r, 2*time.Hour)
	assert.True(t, iv.Start.Equal(at(8)))
	assert.True(t, iv.End.Equal(at(40)))
}

func TestConflicts_SkipsSelfAndOtherResources(t *testing.T) {
	subject := domain.Reservation{ID: 1, ResourceID: 7, StartDate: at(0), EndDate: at(48)}
	peers := []domain.Reservation{
		subject,
		{ID: 2, ResourceID: 7, StartDate: at(24), EndDate: at(72), Confirmed: true},
		{ID: 3, ResourceID: 8, StartDate: at(0), EndDate: at(48)},
		{ID: 4, ResourceID: 7, StartDate: at(48), EndDate: at(72)},
	}

	got := Conflicts(subject, peers)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].PeerID)
	assert.True(t, HasConfirmed(got))
	assert.Equal(t, []int64{2}, IDs(got))
}
