package create_reservation

import (
	"context"
	"time"

	"github.com/m04kA/SMC-RentalService/internal/abuseguard"
	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/internal/engine/links"
	"github.com/m04kA/SMC-RentalService/internal/engine/notify"
	"github.com/m04kA/SMC-RentalService/internal/infra/storage/audit"
	"github.com/m04kA/SMC-RentalService/internal/integrations/pricing"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	Create(ctx context.Context, r *domain.Reservation) (*domain.Reservation, error)
	ListByResource(ctx context.Context, resourceID int64) ([]domain.Reservation, error)
}

// VehicleRepository интерфейс справочника автомобилей
type VehicleRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Vehicle, error)
}

// PricingClient интерфейс функции расчета цены
type PricingClient interface {
	Quote(ctx context.Context, q pricing.QuoteRequest) (*pricing.Quote, error)
}

// LinkWriter запись ссылок конфликтов с повторами
type LinkWriter interface {
	Apply(ctx context.Context, intents []links.Intent, resourceIDs ...int64) bool
}

// AuditSink журнал аудита
type AuditSink interface {
	Append(ctx context.Context, e audit.Entry) error
}

// Notifier канал уведомлений
type Notifier interface {
	Publish(ctx context.Context, notifications []notify.Notification) error
}

// Guard защита анонимного создания от спама
type Guard interface {
	Protect(ctx context.Context, req abuseguard.Request, fn func(ctx context.Context) (abuseguard.Outcome, error)) error
}

// Locker блокировка автомобилей внутри процесса
type Locker interface {
	Lock(keys ...string) func()
}

// Metrics счетчик решений о конфликтах
type Metrics interface {
	ObserveConflict(operation, level string)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
