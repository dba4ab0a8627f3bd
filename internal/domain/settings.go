package domain

import "time"

// OperatorSettings настройки аккаунта оператора проката
type OperatorSettings struct {
	AccountID   int64
	BufferHours *int // nil = не задано, используется DefaultBufferHours
	UpdatedAt   time.Time
}

// Buffer буфер между подтвержденными бронированиями (передача/мойка автомобиля).
// Явный 0 сохраняется как 0, отсутствие значения дает defaultHours.
func (s *OperatorSettings) Buffer(defaultHours int) time.Duration {
	if s == nil || s.BufferHours == nil {
		return time.Duration(defaultHours) * time.Hour
	}
	return time.Duration(*s.BufferHours) * time.Hour
}
