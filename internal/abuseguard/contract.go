package abuseguard

import (
	"context"
	"time"
)

// Counter оконные счетчики.
//
// Incr фиксированное окно: атомарно увеличивает значение и при первом
// увеличении выставляет время жизни window; возвращает новое значение и
// оставшееся время жизни окна.
//
// Slide скользящее окно: отмечает событие в момент at и возвращает число
// событий key за интервал (at-window, at].
type Counter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	Slide(ctx context.Context, key string, window time.Duration, at time.Time) (int64, error)
}

// BanStore хранилище банов по субъекту (ip:..., fp:..., ua:...)
type BanStore interface {
	Get(ctx context.Context, subject string) (*Ban, error)
	Put(ctx context.Context, ban Ban) error
	Delete(ctx context.Context, subject string) error
}

// Metrics счетчик решений guard
type Metrics interface {
	ObserveAbuseVerdict(verdict string)
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
