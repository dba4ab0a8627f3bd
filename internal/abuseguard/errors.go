package abuseguard

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrBanned клиент заблокирован
	ErrBanned = errors.New("abuseguard: banned")

	// ErrRateLimited превышен лимит запросов
	ErrRateLimited = errors.New("abuseguard: rate limited")

	// ErrInvalidSubject пустой или некорректный субъект бана
	ErrInvalidSubject = errors.New("abuseguard: invalid subject")
)

// BannedError активный бан; Until == nil означает бессрочный
type BannedError struct {
	Reason string
	Until  *time.Time
}

func (e *BannedError) Error() string {
	if e.Until == nil {
		return fmt.Sprintf("banned: %s", e.Reason)
	}
	return fmt.Sprintf("banned until %s: %s", e.Until.UTC().Format(time.RFC3339), e.Reason)
}

func (e *BannedError) Unwrap() error {
	return ErrBanned
}

// RateLimitedError лимит исчерпан, повторить через RetryAfter
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

func (e *RateLimitedError) Unwrap() error {
	return ErrRateLimited
}
