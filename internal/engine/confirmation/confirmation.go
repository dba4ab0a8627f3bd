// Package confirmation решает, можно ли подтвердить бронирование.
//
// Подтвержденные соседи проверяются с буфером (время на передачу и мойку
// автомобиля) вокруг их точных моментов выдачи и возврата, неподтвержденные
// без буфера.
package confirmation

import (
	"fmt"
	"sort"
	"time"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/internal/engine/overlap"
)

// Level уровень конфликта при подтверждении
type Level string

const (
	LevelNone    Level = ""
	LevelWarning Level = "warning"
	LevelBlock   Level = "block"
)

// Decision результат проверки подтверждения
type Decision struct {
	CanConfirm        bool
	Level             Level
	Message           string
	BlockingConfirmed []int64
	AffectedPending   []int64
}

// Evaluate проверяет подтверждение candidate относительно peers.
// peers могут содержать бронирования других автомобилей и сам candidate, они пропускаются.
func Evaluate(candidate domain.Reservation, peers []domain.Reservation, buffer time.Duration) Decision {
	if buffer < 0 {
		buffer = 0
	}
	subject := overlap.Of(candidate)

	blocking := make([]int64, 0)
	pending := make([]domain.Reservation, 0, len(peers))
	for _, p := range peers {
		if p.ResourceID != candidate.ResourceID || (candidate.ID != 0 && p.ID == candidate.ID) {
			continue
		}
		if !p.Confirmed {
			pending = append(pending, p)
			continue
		}
		if overlap.Overlaps(subject, overlap.Buffered(p, buffer)) {
			blocking = append(blocking, p.ID)
		}
	}

	if len(blocking) > 0 {
		sort.Slice(blocking, func(i, j int) bool { return blocking[i] < blocking[j] })
		return Decision{
			CanConfirm:        false,
			Level:             LevelBlock,
			Message:           fmt.Sprintf("overlaps confirmed reservations %v (buffer %s)", blocking, buffer),
			BlockingConfirmed: blocking,
			AffectedPending:   []int64{},
		}
	}

	affected := make([]int64, 0)
	for _, p := range pending {
		if overlap.Overlaps(subject, overlap.Of(p)) {
			affected = append(affected, p.ID)
		}
	}
	if len(affected) > 0 {
		sort.Slice(affected, func(i, j int) bool { return affected[i] < affected[j] })
		return Decision{
			CanConfirm:        true,
			Level:             LevelWarning,
			Message:           fmt.Sprintf("pending reservations %v become unconfirmable", affected),
			BlockingConfirmed: []int64{},
			AffectedPending:   affected,
		}
	}

	return Decision{
		CanConfirm:        true,
		Level:             LevelNone,
		BlockingConfirmed: []int64{},
		AffectedPending:   []int64{},
	}
}

// Unconfirmable неподтвержденное бронирование пересекается с подтвержденным соседом
// и не может быть подтверждено, пока его не перенесут или сосед не снимет подтверждение.
func Unconfirmable(r domain.Reservation, peers []domain.Reservation, buffer time.Duration) bool {
	if r.Confirmed {
		return false
	}
	return !Evaluate(r, peers, buffer).CanConfirm
}
