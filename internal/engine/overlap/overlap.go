// Package overlap определяет пересечение интервалов аренды одного автомобиля.
//
// Интервалы полуоткрытые [Start, End): касание (возврат одного бронирования
// ровно в момент выдачи следующего) конфликтом не считается.
package overlap

import (
	"time"

	"github.com/m04kA/SMC-RentalService/internal/domain"
)

// Interval полуоткрытый интервал [Start, End)
type Interval struct {
	Start time.Time
	End   time.Time
}

// Of интервал бронирования: моменты выдачи/возврата, если они заданы,
// иначе полночь дней выдачи и возврата.
func Of(r domain.Reservation) Interval {
	iv := Interval{Start: r.StartDate, End: r.EndDate}
	if r.PickupAt != nil {
		iv.Start = *r.PickupAt
	}
	if r.ReturnAt != nil {
		iv.End = *r.ReturnAt
	}
	return iv
}

// Buffered интервал бронирования, расширенный на d только с тех сторон, где
// задан точный момент выдачи или возврата. Граница, заданная одной датой,
// уже означает передачу на стыке суток и буфером не сдвигается.
func Buffered(r domain.Reservation, d time.Duration) Interval {
	iv := Of(r)
	if r.PickupAt != nil {
		iv.Start = iv.Start.Add(-d)
	}
	if r.ReturnAt != nil {
		iv.End = iv.End.Add(d)
	}
	return iv
}

// Empty интервал нулевой или отрицательной длины
func (iv Interval) Empty() bool {
	return !iv.Start.Before(iv.End)
}

// Detect возвращает пересечение a и b и признак конфликта.
// Конфликт тогда и только тогда, когда a.Start < b.End && b.Start < a.End.
func Detect(a, b Interval) (Interval, bool) {
	if !(a.Start.Before(b.End) && b.Start.Before(a.End)) {
		return Interval{}, false
	}
	shared := Interval{Start: a.Start, End: a.End}
	if b.Start.After(shared.Start) {
		shared.Start = b.Start
	}
	if b.End.Before(shared.End) {
		shared.End = b.End
	}
	return shared, true
}

// Overlaps краткая форма Detect
func Overlaps(a, b Interval) bool {
	_, ok := Detect(a, b)
	return ok
}

// Conflict пересечение с другим бронированием
type Conflict struct {
	PeerID    int64
	Confirmed bool
	Overlap   Interval
}

// Conflicts пересечения subject с бронированиями того же автомобиля.
// Само бронирование и бронирования других автомобилей пропускаются.
func Conflicts(subject domain.Reservation, peers []domain.Reservation) []Conflict {
	iv := Of(subject)
	out := make([]Conflict, 0)
	for _, p := range peers {
		if p.ResourceID != subject.ResourceID {
			continue
		}
		if subject.ID != 0 && p.ID == subject.ID {
			continue
		}
		if shared, ok := Detect(iv, Of(p)); ok {
			out = append(out, Conflict{PeerID: p.ID, Confirmed: p.Confirmed, Overlap: shared})
		}
	}
	return out
}

// HasConfirmed есть ли среди конфликтов подтвержденные бронирования
func HasConfirmed(conflicts []Conflict) bool {
	for _, c := range conflicts {
		if c.Confirmed {
			return true
		}
	}
	return false
}

// IDs ID бронирований из списка конфликтов
func IDs(conflicts []Conflict) []int64 {
	out := make([]int64, 0, len(conflicts))
	for _, c := range conflicts {
		out = append(out, c.PeerID)
	}
	return out
}
