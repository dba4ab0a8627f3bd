package confirm_reservation

import (
	"context"
	"time"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/internal/engine/notify"
	"github.com/m04kA/SMC-RentalService/internal/infra/storage/audit"
)

// ReservationRepository интерфейс репозитория бронирований
type ReservationRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	ListByResource(ctx context.Context, resourceID int64) ([]domain.Reservation, error)
	Update(ctx context.Context, r *domain.Reservation) error
}

// BufferProvider действующий буфер аккаунта
type BufferProvider interface {
	Buffer(ctx context.Context) (time.Duration, error)
}

// AuditSink журнал аудита
type AuditSink interface {
	Append(ctx context.Context, e audit.Entry) error
}

// Notifier канал уведомлений
type Notifier interface {
	Publish(ctx context.Context, notifications []notify.Notification) error
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
