// Package middleware HTTP middleware сервиса: аутентификация операторов,
// идентификация клиентов, метрики запросов.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/m04kA/SMC-RentalService/internal/api/handlers"
	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/internal/infra/cache"
)

const (
	msgMissingToken    = "требуется авторизация"
	msgInvalidSession  = "сессия недействительна, войдите заново"
	msgSessionCheckErr = "ошибка проверки сессии"
)

type ctxKey int

const (
	actorKey ctxKey = iota
	clientMetaKey
)

// SessionStore проверка токена оператора
type SessionStore interface {
	Lookup(ctx context.Context, token string) (*domain.Actor, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Auth требует действующую сессию оператора
func Auth(sessions SessionStore, log Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				handlers.RespondUnauthorized(w, msgMissingToken)
				return
			}

			actor, err := sessions.Lookup(r.Context(), token)
			if err != nil {
				if errors.Is(err, cache.ErrSessionNotFound) {
					log.Warn("%s %s - invalid session", r.Method, r.URL.Path)
					handlers.RespondUnauthorized(w, msgInvalidSession)
					return
				}
				log.Error("%s %s - session lookup failed: %v", r.Method, r.URL.Path, err)
				handlers.RespondError(w, http.StatusServiceUnavailable, msgSessionCheckErr)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), *actor)))
		})
	}
}

// OptionalAuth кладет оператора в контекст, если передан действующий токен.
// Запрос без токена проходит как анонимный; недействительный токен отклоняется.
func OptionalAuth(sessions SessionStore, log Logger) func(http.Handler) http.Handler {
	required := Auth(sessions, log)
	return func(next http.Handler) http.Handler {
		withSession := required(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if bearerToken(r) == "" {
				next.ServeHTTP(w, r)
				return
			}
			withSession.ServeHTTP(w, r)
		})
	}
}

// WithActor кладет оператора в контекст
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// GetActor оператор из контекста
func GetActor(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(domain.Actor)
	return actor, ok
}

func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}
