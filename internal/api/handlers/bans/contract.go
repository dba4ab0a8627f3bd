package bans

import (
	"context"
	"time"

	"github.com/m04kA/SMC-RentalService/internal/abuseguard"
)

type BanManager interface {
	BanManually(ctx context.Context, subject, reason string, d time.Duration) (*abuseguard.Ban, error)
	Unban(ctx context.Context, subject string) error
	Lookup(ctx context.Context, subject string) (*abuseguard.Ban, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
