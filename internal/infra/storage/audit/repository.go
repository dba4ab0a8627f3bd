package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/internal/engine/access"
	"github.com/m04kA/SMC-RentalService/pkg/dbmetrics"
	"github.com/m04kA/SMC-RentalService/pkg/psqlbuilder"
)

const table = "audit_log"

// Repository журнал аудита, только добавление
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр журнала аудита
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Append добавляет запись. В транзакции пишется вместе с основным изменением.
func (r *Repository) Append(ctx context.Context, e Entry) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	before, err := marshalSnapshot(e.Before)
	if err != nil {
		return fmt.Errorf("%w: Append - marshal before: %v", ErrBuildQuery, err)
	}
	after, err := marshalSnapshot(e.After)
	if err != nil {
		return fmt.Errorf("%w: Append - marshal after: %v", ErrBuildQuery, err)
	}
	details, err := json.Marshal(e.Details)
	if err != nil {
		return fmt.Errorf("%w: Append - marshal details: %v", ErrBuildQuery, err)
	}

	query, args, err := psqlbuilder.Insert(table).
		Columns("id", "actor_id", "actor_role", "action", "reservation_id", "before_access", "after_access", "details", "created_at").
		Values(e.ID.String(), e.Actor.ID, string(e.Actor.Role), e.Action, e.ReservationID, before, after, string(details), e.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Append - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Append - execute insert: %v", ErrExecQuery, err)
	}
	return nil
}

// ListByReservation записи по бронированию, новые первыми
func (r *Repository) ListByReservation(ctx context.Context, reservationID int64, limit int) ([]Entry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "actor_id", "actor_role", "action", "reservation_id",
		"before_access", "after_access", "details", "created_at").
		From(table).
		Where(squirrel.Eq{"reservation_id": reservationID}).
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByReservation - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByReservation - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var (
			e                      Entry
			id, role               string
			before, after, details []byte
		)
		if err := rows.Scan(&id, &e.Actor.ID, &role, &e.Action, &e.ReservationID, &before, &after, &details, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: ListByReservation - scan entry: %v", ErrScanRow, err)
		}
		if e.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("%w: ListByReservation - parse id: %v", ErrScanRow, err)
		}
		e.Actor.Role = roleOf(role)
		if e.Before, err = unmarshalSnapshot(before); err != nil {
			return nil, fmt.Errorf("%w: ListByReservation - before: %v", ErrScanRow, err)
		}
		if e.After, err = unmarshalSnapshot(after); err != nil {
			return nil, fmt.Errorf("%w: ListByReservation - after: %v", ErrScanRow, err)
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &e.Details); err != nil {
				return nil, fmt.Errorf("%w: ListByReservation - details: %v", ErrScanRow, err)
			}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListByReservation - rows iteration: %v", ErrScanRow, err)
	}
	return entries, nil
}

// marshalSnapshot nil сохраняется как SQL NULL
func marshalSnapshot(s *access.Snapshot) (interface{}, error) {
	if s == nil {
		return nil, nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func unmarshalSnapshot(data []byte) (*access.Snapshot, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var s access.Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// roleOf роль из журнала; пустая строка у анонимного клиента
func roleOf(s string) domain.Role {
	if s == "" {
		return ""
	}
	role, err := domain.ParseRole(s)
	if err != nil {
		return domain.Role(s)
	}
	return role
}
