// Package events публикует уведомления о бронированиях в Kafka.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/m04kA/SMC-RentalService/internal/engine/notify"
)

// ErrPublish уведомление не удалось отправить
var ErrPublish = errors.New("events: publish failed")

// MessageWriter часть *kafka.Writer, которой пользуется Producer
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Metrics счетчик отправленных уведомлений
type Metrics interface {
	ObserveNotification(channel string, err error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Envelope сообщение в топике уведомлений
type Envelope struct {
	EventID   string         `json:"event_id"`
	Target    string         `json:"target"`
	Address   string         `json:"address,omitempty"`
	Channel   string         `json:"channel"`
	Priority  string         `json:"priority"`
	Payload   notify.Payload `json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
}

// Producer отправляет уведомления в канал доставки
type Producer struct {
	writer  MessageWriter
	metrics Metrics
	logger  Logger
}

// NewWriter kafka-писатель для топика уведомлений
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
}

// NewProducer создает producer; metrics может быть nil
func NewProducer(writer MessageWriter, metrics Metrics, logger Logger) *Producer {
	return &Producer{writer: writer, metrics: metrics, logger: logger}
}

// Publish отправляет уведомления одним батчем.
// Ключ сообщения ID бронирования: события одного бронирования идут в одну партицию по порядку.
func (p *Producer) Publish(ctx context.Context, notifications []notify.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	now := time.Now().UTC()
	messages := make([]kafka.Message, 0, len(notifications))
	for _, n := range notifications {
		env := Envelope{
			EventID:   uuid.NewString(),
			Target:    string(n.Target),
			Address:   n.Address,
			Channel:   string(n.Channel),
			Priority:  string(n.Priority),
			Payload:   n.Payload,
			CreatedAt: now,
		}
		data, err := json.Marshal(env)
		if err != nil {
			return fmt.Errorf("%w: Publish - marshal: %v", ErrPublish, err)
		}
		messages = append(messages, kafka.Message{
			Key:   []byte(strconv.FormatInt(n.Payload.ReservationID, 10)),
			Value: data,
			Headers: []kafka.Header{
				{Key: "channel", Value: []byte(n.Channel)},
				{Key: "priority", Value: []byte(n.Priority)},
			},
			Time: now,
		})
	}

	err := p.writer.WriteMessages(ctx, messages...)
	if p.metrics != nil {
		for _, n := range notifications {
			p.metrics.ObserveNotification(string(n.Channel), err)
		}
	}
	if err != nil {
		p.logger.Error("Events: failed to publish %d notifications: %v", len(messages), err)
		return fmt.Errorf("%w: Publish - write: %v", ErrPublish, err)
	}

	p.logger.Info("Events: published %d notifications for reservation id=%d",
		len(messages), notifications[0].Payload.ReservationID)
	return nil
}

// Close закрывает writer
func (p *Producer) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
