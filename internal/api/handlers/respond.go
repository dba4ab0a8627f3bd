// Package handlers общие функции ответа для HTTP обработчиков.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/m04kA/SMC-RentalService/internal/abuseguard"
	"github.com/m04kA/SMC-RentalService/internal/domain"
)

const (
	msgInternalError      = "внутренняя ошибка сервера"
	msgValidationFailed   = "некорректные данные"
	msgForbidden          = "доступ запрещен"
	msgForbiddenFields    = "нет прав на изменение полей"
	msgNotFound           = "не найдено"
	msgVersionConflict    = "бронирование было изменено, обновите данные"
	msgRateLimited        = "слишком много запросов, попробуйте позже"
	msgBanned             = "отправка заявок временно заблокирована"
	msgServiceUnavailable = "сервис временно недоступен, попробуйте позже"
)

// maxBodyBytes ограничение размера тела запроса
const maxBodyBytes = 1 << 20

// ErrorResponse тело ответа с ошибкой
type ErrorResponse struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Denied  []string          `json:"denied,omitempty"`
}

// RespondJSON пишет JSON ответ
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	if payload == nil || status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// RespondError пишет ошибку с кодом status
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{Code: status, Message: message})
}

// RespondBadRequest 400
func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, message)
}

// RespondUnauthorized 401
func RespondUnauthorized(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusUnauthorized, message)
}

// RespondForbidden 403
func RespondForbidden(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusForbidden, message)
}

// RespondNotFound 404
func RespondNotFound(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusNotFound, message)
}

// RespondConflict 409
func RespondConflict(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusConflict, message)
}

// RespondInternalError 500
func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, msgInternalError)
}

// RespondServiceUnavailable 503
func RespondServiceUnavailable(w http.ResponseWriter) {
	RespondError(w, http.StatusServiceUnavailable, msgServiceUnavailable)
}

// RespondTooManyRequests 429 с заголовком Retry-After
func RespondTooManyRequests(w http.ResponseWriter, retryAfter time.Duration, message string) {
	if retryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
	}
	RespondError(w, http.StatusTooManyRequests, message)
}

// RespondDomainError переводит ошибку в HTTP ответ по таксономии ошибок домена.
// Возвращает HTTP код для логирования.
func RespondDomainError(w http.ResponseWriter, err error) int {
	var (
		vErr *domain.ValidationError
		pErr *domain.PermissionError
		rErr *abuseguard.RateLimitedError
		bErr *abuseguard.BannedError
	)

	switch {
	case errors.As(err, &vErr):
		RespondJSON(w, http.StatusBadRequest, ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: msgValidationFailed,
			Fields:  vErr.FieldErrors,
		})
		return http.StatusBadRequest

	case errors.As(err, &pErr):
		message := msgForbidden
		if len(pErr.Fields) > 0 {
			message = msgForbiddenFields
		}
		RespondJSON(w, http.StatusForbidden, ErrorResponse{
			Code:    http.StatusForbidden,
			Message: message,
			Denied:  pErr.Fields,
		})
		return http.StatusForbidden

	case errors.As(err, &rErr):
		RespondTooManyRequests(w, rErr.RetryAfter, msgRateLimited)
		return http.StatusTooManyRequests

	case errors.As(err, &bErr):
		var retryAfter time.Duration
		if bErr.Until != nil {
			retryAfter = time.Until(*bErr.Until)
		}
		RespondTooManyRequests(w, retryAfter, msgBanned)
		return http.StatusTooManyRequests

	case errors.Is(err, domain.ErrNotFound):
		RespondNotFound(w, msgNotFound)
		return http.StatusNotFound

	case errors.Is(err, domain.ErrVersionConflict):
		RespondConflict(w, msgVersionConflict)
		return http.StatusConflict

	case errors.Is(err, domain.ErrPermissionDenied):
		RespondForbidden(w, msgForbidden)
		return http.StatusForbidden

	case errors.Is(err, domain.ErrInvalidInput):
		RespondBadRequest(w, msgValidationFailed)
		return http.StatusBadRequest

	case errors.Is(err, domain.ErrStoreUnavailable):
		RespondServiceUnavailable(w)
		return http.StatusServiceUnavailable
	}

	RespondInternalError(w)
	return http.StatusInternalServerError
}

// DecodeJSON читает JSON тело запроса; неизвестные поля отклоняются
func DecodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}
