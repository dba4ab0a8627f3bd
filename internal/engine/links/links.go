// Package links поддерживает симметричные ссылки конфликтов между бронированиями.
//
// Функции пакета ничего не мутируют: они возвращают новое множество ссылок и
// список намерений (Intent), которые применяет адаптер хранилища.
package links

import (
	"sort"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/internal/engine/overlap"
)

// Op операция над парой ссылок
type Op string

const (
	OpAdd    Op = "add"
	OpRemove Op = "remove"
)

// Intent добавить или удалить ссылку A<->B в обе стороны
type Intent struct {
	Op Op
	A  int64
	B  int64
}

// Plan результат пересчета ссылок одного бронирования
type Plan struct {
	Links   domain.IDSet
	Intents []Intent
}

// Relink пересчитывает ссылки subject после создания, смены дат или автомобиля.
// peers должны включать бронирования всех затронутых автомобилей; ссылки на
// бронирования вне peers удаляются, если они есть у subject.
func Relink(subject domain.Reservation, peers []domain.Reservation) Plan {
	next := domain.NewIDSet()
	for _, c := range overlap.Conflicts(subject, peers) {
		next[c.PeerID] = struct{}{}
	}

	linkedBack := domain.NewIDSet()
	for _, p := range peers {
		if p.ID != subject.ID && p.ConflictLinks.Has(subject.ID) {
			linkedBack[p.ID] = struct{}{}
		}
	}

	intents := make([]Intent, 0)
	for _, id := range next.Sorted() {
		if !subject.ConflictLinks.Has(id) || !linkedBack.Has(id) {
			intents = append(intents, Intent{Op: OpAdd, A: subject.ID, B: id})
		}
	}

	stale := subject.ConflictLinks.Clone()
	for id := range linkedBack {
		stale[id] = struct{}{}
	}
	for _, id := range stale.Sorted() {
		if !next.Has(id) {
			intents = append(intents, Intent{Op: OpRemove, A: subject.ID, B: id})
		}
	}

	return Plan{Links: next, Intents: intents}
}

// Unlink намерения удалить ссылки на удаляемое бронирование у всех соседей
func Unlink(deleted domain.Reservation, peers []domain.Reservation) []Intent {
	ids := deleted.ConflictLinks.Clone()
	for _, p := range peers {
		if p.ID != deleted.ID && p.ConflictLinks.Has(deleted.ID) {
			ids[p.ID] = struct{}{}
		}
	}

	intents := make([]Intent, 0, len(ids))
	for _, id := range ids.Sorted() {
		intents = append(intents, Intent{Op: OpRemove, A: deleted.ID, B: id})
	}
	return intents
}

// Rebuild пересчитывает ссылки всех бронирований одного автомобиля с нуля.
// Используется фоновой сверкой, когда запись ссылок не удалась.
func Rebuild(reservations []domain.Reservation) []Intent {
	sorted := make([]domain.Reservation, len(reservations))
	copy(sorted, reservations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	want := make(map[[2]int64]struct{})
	for i := range sorted {
		for j := i + 1; j < len(sorted); j++ {
			a, b := sorted[i], sorted[j]
			if a.ResourceID != b.ResourceID {
				continue
			}
			if overlap.Overlaps(overlap.Of(a), overlap.Of(b)) {
				want[[2]int64{a.ID, b.ID}] = struct{}{}
			}
		}
	}

	byID := make(map[int64]domain.Reservation, len(sorted))
	for _, r := range sorted {
		byID[r.ID] = r
	}

	intents := make([]Intent, 0)
	seen := make(map[[2]int64]struct{})
	for _, r := range sorted {
		for _, id := range r.ConflictLinks.Sorted() {
			pair := ordered(r.ID, id)
			if _, ok := seen[pair]; ok {
				continue
			}
			seen[pair] = struct{}{}
			if _, ok := want[pair]; !ok {
				intents = append(intents, Intent{Op: OpRemove, A: pair[0], B: pair[1]})
			}
		}
	}
	for _, a := range sorted {
		for _, b := range sorted {
			pair := [2]int64{a.ID, b.ID}
			if _, ok := want[pair]; !ok {
				continue
			}
			if !a.ConflictLinks.Has(b.ID) || !byID[b.ID].ConflictLinks.Has(a.ID) {
				intents = append(intents, Intent{Op: OpAdd, A: a.ID, B: b.ID})
			}
		}
	}
	return intents
}

func ordered(a, b int64) [2]int64 {
	if a > b {
		return [2]int64{b, a}
	}
	return [2]int64{a, b}
}

// Apply применяет намерения к копиям бронирований; бронирования вне списка пропускаются
func Apply(reservations []domain.Reservation, intents []Intent) []domain.Reservation {
	out := make([]domain.Reservation, len(reservations))
	index := make(map[int64]int, len(reservations))
	for i, r := range reservations {
		out[i] = r.Clone()
		index[r.ID] = i
	}

	set := func(owner, peer int64, op Op) {
		i, ok := index[owner]
		if !ok {
			return
		}
		if op == OpAdd {
			out[i].ConflictLinks[peer] = struct{}{}
			return
		}
		delete(out[i].ConflictLinks, peer)
	}

	for _, in := range intents {
		set(in.A, in.B, in.Op)
		set(in.B, in.A, in.Op)
	}
	return out
}

// Symmetric проверяет, что каждая ссылка имеет обратную
func Symmetric(reservations []domain.Reservation) bool {
	byID := make(map[int64]domain.Reservation, len(reservations))
	for _, r := range reservations {
		byID[r.ID] = r
	}
	for _, r := range reservations {
		for id := range r.ConflictLinks {
			peer, ok := byID[id]
			if !ok || !peer.ConflictLinks.Has(r.ID) {
				return false
			}
		}
	}
	return true
}
