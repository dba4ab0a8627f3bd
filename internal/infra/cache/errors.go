package cache

import "errors"

var (
	// ErrSessionNotFound сессия не найдена или истекла
	ErrSessionNotFound = errors.New("cache: session not found")

	// ErrCacheUnavailable ошибка обращения к Redis
	ErrCacheUnavailable = errors.New("cache: redis unavailable")
)
