package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/pkg/dbmetrics"
	"github.com/m04kA/SMC-RentalService/pkg/psqlbuilder"
)

const table = "operator_settings"

// Repository репозиторий настроек аккаунта оператора
type Repository struct {
	db dbmetrics.DBExecutor
}

// NewRepository создает новый экземпляр репозитория настроек
func NewRepository(db dbmetrics.DBExecutor) *Repository {
	return &Repository{db: db}
}

// Get настройки аккаунта
func (r *Repository) Get(ctx context.Context, accountID int64) (*domain.OperatorSettings, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("account_id", "buffer_hours", "updated_at").
		From(table).
		Where(squirrel.Eq{"account_id": accountID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Get - build select query: %v", ErrBuildQuery, err)
	}

	var (
		s           domain.OperatorSettings
		bufferHours sql.NullInt64
	)
	err = executor.QueryRowContext(ctx, query, args...).Scan(&s.AccountID, &bufferHours, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSettingsNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Get - scan settings: %v", ErrScanRow, err)
	}

	if bufferHours.Valid {
		h := int(bufferHours.Int64)
		s.BufferHours = &h
	}
	return &s, nil
}

// Upsert создает или обновляет настройки аккаунта.
// BufferHours == nil сохраняется как NULL (используется значение по умолчанию).
func (r *Repository) Upsert(ctx context.Context, s *domain.OperatorSettings) (*domain.OperatorSettings, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(table).
		Columns("account_id", "buffer_hours").
		Values(s.AccountID, s.BufferHours).
		Suffix("ON CONFLICT (account_id) DO UPDATE SET buffer_hours = EXCLUDED.buffer_hours, updated_at = NOW() RETURNING updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&s.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute insert: %v", ErrExecQuery, err)
	}
	return s, nil
}
