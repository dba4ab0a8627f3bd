package linkage

import (
	"context"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/internal/engine/links"
)

// Repository хранилище бронирований и очереди пересчета ссылок
type Repository interface {
	ListByResource(ctx context.Context, resourceID int64) ([]domain.Reservation, error)
	ApplyLinks(ctx context.Context, intents []links.Intent) error
	MarkDirty(ctx context.Context, resourceID int64, reason string) error
	ListDirty(ctx context.Context, limit int) ([]int64, error)
	ClearDirty(ctx context.Context, resourceID int64) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Metrics счетчик результатов записи ссылок
type Metrics interface {
	ObserveLinkReconcile(result string)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
