// Package memory хранилище в памяти процесса с тем же контрактом, что и
// PostgreSQL-репозитории. Используется в тестах и для локального запуска.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/internal/engine/links"
	"github.com/m04kA/SMC-RentalService/internal/infra/storage/audit"
	"github.com/m04kA/SMC-RentalService/internal/infra/storage/fleet"
	"github.com/m04kA/SMC-RentalService/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-RentalService/internal/infra/storage/settings"
)

// ErrInjected ошибка, подставленная тестом
var ErrInjected = errors.New("memory: injected failure")

type state struct {
	reservations map[int64]domain.Reservation
	vehicles     map[int64]domain.Vehicle
	settings     map[int64]domain.OperatorSettings
	dirty        map[int64]string
	audit        []audit.Entry
	nextID       int64
}

func (s *state) clone() *state {
	out := &state{
		reservations: make(map[int64]domain.Reservation, len(s.reservations)),
		vehicles:     make(map[int64]domain.Vehicle, len(s.vehicles)),
		settings:     make(map[int64]domain.OperatorSettings, len(s.settings)),
		dirty:        make(map[int64]string, len(s.dirty)),
		audit:        append([]audit.Entry(nil), s.audit...),
		nextID:       s.nextID,
	}
	for id, r := range s.reservations {
		out.reservations[id] = r.Clone()
	}
	for id, v := range s.vehicles {
		out.vehicles[id] = v
	}
	for id, st := range s.settings {
		out.settings[id] = st
	}
	for id, reason := range s.dirty {
		out.dirty[id] = reason
	}
	return out
}

// Store бронирования, автомобили, настройки и аудит в памяти
type Store struct {
	mu    sync.Mutex
	txMu  sync.Mutex
	state *state

	failLinkWrites int
	now            func() time.Time
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{
		state: &state{
			reservations: make(map[int64]domain.Reservation),
			vehicles:     make(map[int64]domain.Vehicle),
			settings:     make(map[int64]domain.OperatorSettings),
			dirty:        make(map[int64]string),
		},
		now: time.Now,
	}
}

// FailLinkWrites следующие n вызовов ApplyLinks завершатся ошибкой
func (s *Store) FailLinkWrites(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failLinkWrites = n
}

// AddVehicle добавляет автомобиль в парк
func (s *Store) AddVehicle(v domain.Vehicle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.vehicles[v.ID] = v
}

// Seed сохраняет бронирование как есть, включая ID и ссылки
func (s *Store) Seed(r domain.Reservation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r = r.Clone()
	if r.Version == 0 {
		r.Version = 1
	}
	s.state.reservations[r.ID] = r
	if r.ID > s.state.nextID {
		s.state.nextID = r.ID
	}
}

// Create сохраняет бронирование с новым ID; ссылки пишутся через ApplyLinks
func (s *Store) Create(_ context.Context, r *domain.Reservation) (*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.nextID++
	now := s.now()
	r.ID = s.state.nextID
	r.Version = 1
	r.CreatedAt = now
	r.UpdatedAt = now

	stored := r.Clone()
	stored.ConflictLinks = domain.NewIDSet()
	s.state.reservations[r.ID] = stored

	if r.ConflictLinks == nil {
		r.ConflictLinks = domain.NewIDSet()
	}
	return r, nil
}

// GetByID бронирование по ID
func (s *Store) GetByID(_ context.Context, id int64) (*domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.state.reservations[id]
	if !ok {
		return nil, reservation.ErrReservationNotFound
	}
	out := r.Clone()
	return &out, nil
}

// ListByResource бронирования автомобиля
func (s *Store) ListByResource(ctx context.Context, resourceID int64) ([]domain.Reservation, error) {
	return s.List(ctx, domain.ReservationFilter{ResourceID: &resourceID})
}

// List бронирования по фильтру
func (s *Store) List(_ context.Context, filter domain.ReservationFilter) ([]domain.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Reservation, 0)
	for _, r := range s.state.reservations {
		if filter.ResourceID != nil && r.ResourceID != *filter.ResourceID {
			continue
		}
		if filter.From != nil && r.EndDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && r.StartDate.After(*filter.To) {
			continue
		}
		if filter.Confirmed != nil && r.Confirmed != *filter.Confirmed {
			continue
		}
		out = append(out, r.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.Before(out[j].StartDate)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Update check-and-set по версии; ссылки не трогает
func (s *Store) Update(_ context.Context, r *domain.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.state.reservations[r.ID]
	if !ok {
		return reservation.ErrReservationNotFound
	}
	if current.Version != r.Version {
		return fmt.Errorf("%w: Update - id=%d version=%d", reservation.ErrVersionConflict, r.ID, r.Version)
	}

	r.Version++
	r.UpdatedAt = s.now()
	stored := r.Clone()
	stored.ConflictLinks = current.ConflictLinks
	stored.CreatedAt = current.CreatedAt
	s.state.reservations[r.ID] = stored
	return nil
}

// Delete удаляет бронирование и ссылки на него (как ON DELETE CASCADE)
func (s *Store) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.reservations[id]; !ok {
		return reservation.ErrReservationNotFound
	}
	delete(s.state.reservations, id)
	for _, r := range s.state.reservations {
		delete(r.ConflictLinks, id)
	}
	return nil
}

// ApplyLinks применяет намерения в обе стороны атомарно
func (s *Store) ApplyLinks(_ context.Context, intents []links.Intent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(intents) == 0 {
		return nil
	}
	if s.failLinkWrites > 0 {
		s.failLinkWrites--
		return fmt.Errorf("%w: ApplyLinks - %v", reservation.ErrLinks, ErrInjected)
	}

	set := func(owner, peer int64, op links.Op) {
		r, ok := s.state.reservations[owner]
		if !ok {
			return
		}
		if r.ConflictLinks == nil {
			r.ConflictLinks = domain.NewIDSet()
		}
		if op == links.OpAdd {
			r.ConflictLinks[peer] = struct{}{}
		} else {
			delete(r.ConflictLinks, peer)
		}
		s.state.reservations[owner] = r
	}
	for _, in := range intents {
		if in.A == in.B {
			continue
		}
		set(in.A, in.B, in.Op)
		set(in.B, in.A, in.Op)
	}
	return nil
}

// MarkDirty ставит автомобиль в очередь пересчета ссылок
func (s *Store) MarkDirty(_ context.Context, resourceID int64, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.dirty[resourceID] = reason
	return nil
}

// ListDirty автомобили в очереди пересчета
func (s *Store) ListDirty(_ context.Context, limit int) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]int64, 0, len(s.state.dirty))
	for id := range s.state.dirty {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

// ClearDirty убирает автомобиль из очереди
func (s *Store) ClearDirty(_ context.Context, resourceID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.state.dirty, resourceID)
	return nil
}

// Vehicles репозиторий автомобилей поверх хранилища
func (s *Store) Vehicles() *Vehicles {
	return &Vehicles{s: s}
}

// Settings репозиторий настроек поверх хранилища
func (s *Store) Settings() *Settings {
	return &Settings{s: s}
}

// Audit журнал аудита поверх хранилища
func (s *Store) Audit() *Audit {
	return &Audit{s: s}
}

// Vehicles автомобили в памяти
type Vehicles struct {
	s *Store
}

// GetByID автомобиль по ID
func (v *Vehicles) GetByID(_ context.Context, id int64) (*domain.Vehicle, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	vehicle, ok := v.s.state.vehicles[id]
	if !ok {
		return nil, fleet.ErrVehicleNotFound
	}
	return &vehicle, nil
}

// ListActive активные автомобили
func (v *Vehicles) ListActive(_ context.Context) ([]domain.Vehicle, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()

	out := make([]domain.Vehicle, 0, len(v.s.state.vehicles))
	for _, vehicle := range v.s.state.vehicles {
		if vehicle.Active {
			out = append(out, vehicle)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Settings настройки аккаунтов в памяти
type Settings struct {
	s *Store
}

// Get настройки аккаунта
func (st *Settings) Get(_ context.Context, accountID int64) (*domain.OperatorSettings, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	v, ok := st.s.state.settings[accountID]
	if !ok {
		return nil, settings.ErrSettingsNotFound
	}
	return &v, nil
}

// Upsert создает или обновляет настройки
func (st *Settings) Upsert(_ context.Context, v *domain.OperatorSettings) (*domain.OperatorSettings, error) {
	st.s.mu.Lock()
	defer st.s.mu.Unlock()

	v.UpdatedAt = st.s.now()
	st.s.state.settings[v.AccountID] = *v
	return v, nil
}

// Audit журнал аудита в памяти
type Audit struct {
	s *Store
}

// Append добавляет запись
func (a *Audit) Append(_ context.Context, e audit.Entry) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	a.s.state.audit = append(a.s.state.audit, e)
	return nil
}

// Entries копия всех записей
func (a *Audit) Entries() []audit.Entry {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	return append([]audit.Entry(nil), a.s.state.audit...)
}

// ListByReservation записи по бронированию, новые первыми
func (a *Audit) ListByReservation(_ context.Context, reservationID int64, limit int) ([]audit.Entry, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	out := make([]audit.Entry, 0)
	for i := len(a.s.state.audit) - 1; i >= 0; i-- {
		if a.s.state.audit[i].ReservationID != reservationID {
			continue
		}
		out = append(out, a.s.state.audit[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
