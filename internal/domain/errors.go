package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrInvalidInput некорректные входные данные
	ErrInvalidInput = errors.New("domain: invalid input")

	// ErrNotFound бронирование или автомобиль не найдены
	ErrNotFound = errors.New("domain: not found")

	// ErrPermissionDenied политика доступа запрещает операцию
	ErrPermissionDenied = errors.New("domain: permission denied")

	// ErrStoreUnavailable хранилище временно недоступно, вызывающий может повторить
	ErrStoreUnavailable = errors.New("domain: store unavailable")

	// ErrVersionConflict запись изменена параллельно (check-and-set по версии не прошел)
	ErrVersionConflict = errors.New("domain: version conflict")
)

// ValidationError ошибки валидации по полям
type ValidationError struct {
	FieldErrors map[string]string
}

// Error реализует интерфейс error
func (v *ValidationError) Error() string {
	if v == nil || len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for f := range v.FieldErrors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+v.FieldErrors[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (v *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// HasErrors есть ли ошибки
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// Add добавляет ошибку поля
func (v *ValidationError) Add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// PermissionError операция или поля запрещены политикой доступа
type PermissionError struct {
	Operation string
	Fields    []string // запрещенные поля патча; пусто, если запрещена операция целиком
}

func (e *PermissionError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("permission denied: %s", e.Operation)
	}
	return fmt.Sprintf("permission denied: %s: fields %s", e.Operation, strings.Join(e.Fields, ", "))
}

func (e *PermissionError) Unwrap() error {
	return ErrPermissionDenied
}

// ErrorKind стабильная метка ошибки для логов и метрик
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	var (
		vErr *ValidationError
		pErr *PermissionError
	)
	switch {
	case errors.As(err, &vErr):
		return "validation"
	case errors.As(err, &pErr):
		return "permission_denied"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrVersionConflict):
		return "version_conflict"
	case errors.Is(err, ErrStoreUnavailable):
		return "store_unavailable"
	case errors.Is(err, ErrPermissionDenied):
		return "permission_denied"
	case errors.Is(err, ErrInvalidInput):
		return "validation"
	}
	return "unexpected"
}
