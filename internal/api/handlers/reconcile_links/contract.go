package reconcile_links

import "context"

type Reconciler interface {
	ReconcileResource(ctx context.Context, resourceID int64) (int, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
