package events

import (
	"context"

	"github.com/segmentio/kafka-go"
)

// LogWriter пишет сообщения в лог вместо Kafka (локальный запуск без брокера)
type LogWriter struct {
	logger Logger
}

// NewLogWriter создает writer
func NewLogWriter(logger Logger) *LogWriter {
	return &LogWriter{logger: logger}
}

// WriteMessages логирует каждое сообщение
func (w *LogWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		w.logger.Info("Events: key=%s %s", m.Key, m.Value)
	}
	return nil
}

// Close ничего не делает
func (w *LogWriter) Close() error {
	return nil
}
