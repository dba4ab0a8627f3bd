package settings

import (
	"context"

	"github.com/m04kA/SMC-RentalService/internal/domain"
)

// SettingsRepository интерфейс репозитория настроек аккаунта
type SettingsRepository interface {
	Get(ctx context.Context, accountID int64) (*domain.OperatorSettings, error)
	Upsert(ctx context.Context, s *domain.OperatorSettings) (*domain.OperatorSettings, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
