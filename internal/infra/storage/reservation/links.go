package reservation

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-RentalService/internal/engine/links"
	"github.com/m04kA/SMC-RentalService/pkg/dbmetrics"
	"github.com/m04kA/SMC-RentalService/pkg/psqlbuilder"
)

const (
	linksTable = "reservation_links"
	dirtyTable = "link_reconcile_queue"
	savepoint  = "conflict_links"
)

// ApplyLinks применяет намерения в обе стороны.
// Внутри транзакции запись защищена SAVEPOINT: при ошибке откатываются только
// ссылки, основная запись остается в транзакции.
func (r *Repository) ApplyLinks(ctx context.Context, intents []links.Intent) (err error) {
	if len(intents) == 0 {
		return nil
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	inTx := dbmetrics.IsInTransaction(ctx)
	if inTx {
		if _, err := executor.ExecContext(ctx, "SAVEPOINT "+savepoint); err != nil {
			return fmt.Errorf("%w: ApplyLinks - savepoint: %v", ErrLinks, err)
		}
		defer func() {
			if err != nil {
				_, _ = executor.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+savepoint)
				return
			}
			if _, relErr := executor.ExecContext(ctx, "RELEASE SAVEPOINT "+savepoint); relErr != nil {
				err = fmt.Errorf("%w: ApplyLinks - release savepoint: %v", ErrLinks, relErr)
			}
		}()
	}

	for _, in := range intents {
		if in.A == in.B {
			continue
		}
		switch in.Op {
		case links.OpAdd:
			query, args, buildErr := psqlbuilder.Insert(linksTable).
				Columns("reservation_id", "peer_id").
				Values(in.A, in.B).
				Values(in.B, in.A).
				Suffix("ON CONFLICT DO NOTHING").
				ToSql()
			if buildErr != nil {
				return fmt.Errorf("%w: ApplyLinks - build insert query: %v", ErrBuildQuery, buildErr)
			}
			if _, execErr := executor.ExecContext(ctx, query, args...); execErr != nil {
				return fmt.Errorf("%w: ApplyLinks - add %d<->%d: %v", ErrLinks, in.A, in.B, execErr)
			}
		case links.OpRemove:
			query, args, buildErr := psqlbuilder.Delete(linksTable).
				Where(squirrel.Or{
					squirrel.Eq{"reservation_id": in.A, "peer_id": in.B},
					squirrel.Eq{"reservation_id": in.B, "peer_id": in.A},
				}).
				ToSql()
			if buildErr != nil {
				return fmt.Errorf("%w: ApplyLinks - build delete query: %v", ErrBuildQuery, buildErr)
			}
			if _, execErr := executor.ExecContext(ctx, query, args...); execErr != nil {
				return fmt.Errorf("%w: ApplyLinks - remove %d<->%d: %v", ErrLinks, in.A, in.B, execErr)
			}
		}
	}
	return nil
}

// MarkDirty ставит автомобиль в очередь на пересчет ссылок
func (r *Repository) MarkDirty(ctx context.Context, resourceID int64, reason string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(dirtyTable).
		Columns("resource_id", "reason", "marked_at").
		Values(resourceID, reason, time.Now().UTC()).
		Suffix("ON CONFLICT (resource_id) DO UPDATE SET reason = EXCLUDED.reason, marked_at = EXCLUDED.marked_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: MarkDirty - build insert query: %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: MarkDirty - execute insert: %v", ErrExecQuery, err)
	}
	return nil
}

// ListDirty автомобили, ожидающие пересчета ссылок
func (r *Repository) ListDirty(ctx context.Context, limit int) ([]int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("resource_id").
		From(dirtyTable).
		OrderBy("marked_at").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListDirty - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListDirty - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: ListDirty - scan: %v", ErrScanRow, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListDirty - rows iteration: %v", ErrScanRow, err)
	}
	return ids, nil
}

// ClearDirty убирает автомобиль из очереди пересчета
func (r *Repository) ClearDirty(ctx context.Context, resourceID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(dirtyTable).
		Where(squirrel.Eq{"resource_id": resourceID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: ClearDirty - build delete query: %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: ClearDirty - execute delete: %v", ErrExecQuery, err)
	}
	return nil
}
