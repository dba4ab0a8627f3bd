package reservation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-RentalService/internal/domain"
	"github.com/m04kA/SMC-RentalService/pkg/dbmetrics"
	"github.com/m04kA/SMC-RentalService/pkg/psqlbuilder"
)

const table = "reservations"

var columns = []string{
	"id",
	"resource_id",
	"resource_plate",
	"start_date",
	"end_date",
	"pickup_at",
	"return_at",
	"confirmed",
	"client_submitted",
	"creator_role",
	"creator_id",
	"price",
	"days",
	"insurance",
	"child_seats",
	"additional_driver",
	"place_in",
	"place_out",
	"customer_name",
	"customer_phone",
	"customer_email",
	"notes",
	"version",
	"created_at",
	"updated_at",
}

// Repository репозиторий бронирований.
// Даты хранятся как DATE и восстанавливаются в полночь бизнес-таймзоны loc.
type Repository struct {
	db  DBExecutor
	loc *time.Location
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor, loc *time.Location) *Repository {
	if loc == nil {
		loc = time.UTC
	}
	return &Repository{db: db, loc: loc}
}

func (r *Repository) dateValue(t time.Time) string {
	return t.In(r.loc).Format(domain.DateFormat)
}

func (r *Repository) dateFrom(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, r.loc)
}

// Create создает бронирование. Ссылки конфликтов пишутся отдельно через ApplyLinks.
func (r *Repository) Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(table).
		Columns(
			"resource_id",
			"resource_plate",
			"start_date",
			"end_date",
			"pickup_at",
			"return_at",
			"confirmed",
			"client_submitted",
			"creator_role",
			"creator_id",
			"price",
			"days",
			"insurance",
			"child_seats",
			"additional_driver",
			"place_in",
			"place_out",
			"customer_name",
			"customer_phone",
			"customer_email",
			"notes",
			"version",
		).
		Values(
			res.ResourceID,
			res.ResourcePlate,
			r.dateValue(res.StartDate),
			r.dateValue(res.EndDate),
			res.PickupAt,
			res.ReturnAt,
			res.Confirmed,
			res.ClientSubmitted,
			string(res.CreatorRole),
			res.CreatorID,
			res.Price,
			res.Days,
			string(res.Extras.Insurance),
			res.Extras.ChildSeats,
			res.Extras.AdditionalDriver,
			res.PlaceIn,
			res.PlaceOut,
			res.Customer.Name,
			res.Customer.Phone,
			res.Customer.Email,
			res.Notes,
			1,
		).
		Suffix("RETURNING id, version, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&res.ID,
		&res.Version,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	if res.ConflictLinks == nil {
		res.ConflictLinks = domain.NewIDSet()
	}
	return res, nil
}

// GetByID получает бронирование по ID вместе со ссылками конфликтов.
// Внутри транзакции строка блокируется (FOR UPDATE).
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	selectBuilder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id})
	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	list, err := r.query(ctx, "GetByID", selectBuilder)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrReservationNotFound
	}
	return &list[0], nil
}

// ListByResource все бронирования автомобиля.
// Внутри транзакции строки блокируются, чтобы параллельные решения о конфликтах
// по одному автомобилю выполнялись последовательно.
func (r *Repository) ListByResource(ctx context.Context, resourceID int64) ([]domain.Reservation, error) {
	selectBuilder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"resource_id": resourceID}).
		OrderBy("start_date", "id")
	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}
	return r.query(ctx, "ListByResource", selectBuilder)
}

// List бронирования по фильтру
func (r *Repository) List(ctx context.Context, filter domain.ReservationFilter) ([]domain.Reservation, error) {
	selectBuilder := psqlbuilder.Select(columns...).
		From(table).
		OrderBy("start_date", "id")

	if filter.ResourceID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"resource_id": *filter.ResourceID})
	}
	if filter.From != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"end_date": r.dateValue(*filter.From)})
	}
	if filter.To != nil {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"start_date": r.dateValue(*filter.To)})
	}
	if filter.Confirmed != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"confirmed": *filter.Confirmed})
	}
	return r.query(ctx, "List", selectBuilder)
}

// Update сохраняет бронирование с проверкой версии (check-and-set).
// При успехе res.Version увеличивается.
func (r *Repository) Update(ctx context.Context, res *domain.Reservation) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(table).
		Set("resource_id", res.ResourceID).
		Set("resource_plate", res.ResourcePlate).
		Set("start_date", r.dateValue(res.StartDate)).
		Set("end_date", r.dateValue(res.EndDate)).
		Set("pickup_at", res.PickupAt).
		Set("return_at", res.ReturnAt).
		Set("confirmed", res.Confirmed).
		Set("price", res.Price).
		Set("days", res.Days).
		Set("insurance", string(res.Extras.Insurance)).
		Set("child_seats", res.Extras.ChildSeats).
		Set("additional_driver", res.Extras.AdditionalDriver).
		Set("place_in", res.PlaceIn).
		Set("place_out", res.PlaceOut).
		Set("customer_name", res.Customer.Name).
		Set("customer_phone", res.Customer.Phone).
		Set("customer_email", res.Customer.Email).
		Set("notes", res.Notes).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": res.ID, "version": res.Version}).
		Suffix("RETURNING version, updated_at").
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	var (
		version   int64
		updatedAt time.Time
	)
	err = executor.QueryRowContext(ctx, query, args...).Scan(&version, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		if _, getErr := r.GetByID(ctx, res.ID); errors.Is(getErr, ErrReservationNotFound) {
			return ErrReservationNotFound
		}
		return fmt.Errorf("%w: Update - id=%d version=%d", ErrVersionConflict, res.ID, res.Version)
	}
	if err != nil {
		return fmt.Errorf("%w: Update - execute update: %v", ErrExecQuery, err)
	}

	res.Version = version
	res.UpdatedAt = updatedAt
	return nil
}

// Delete удаляет бронирование. Ссылки удаляются каскадом.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete(table).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %v", ErrExecQuery, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - rows affected: %v", ErrExecQuery, err)
	}
	if affected == 0 {
		return ErrReservationNotFound
	}
	return nil
}

func (r *Repository) query(ctx context.Context, op string, selectBuilder squirrel.SelectBuilder) ([]domain.Reservation, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s - execute select: %v", ErrExecQuery, op, err)
	}
	defer rows.Close()

	list := make([]domain.Reservation, 0)
	for rows.Next() {
		res, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %s - scan reservation: %v", ErrScanRow, op, err)
		}
		list = append(list, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s - rows iteration: %v", ErrScanRow, op, err)
	}

	if err := r.loadLinks(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *Repository) scan(rows *sql.Rows) (domain.Reservation, error) {
	var (
		res                domain.Reservation
		role, insurance    string
		startDate, endDate time.Time
		pickupAt, returnAt sql.NullTime
		notes              sql.NullString
	)
	err := rows.Scan(
		&res.ID,
		&res.ResourceID,
		&res.ResourcePlate,
		&startDate,
		&endDate,
		&pickupAt,
		&returnAt,
		&res.Confirmed,
		&res.ClientSubmitted,
		&role,
		&res.CreatorID,
		&res.Price,
		&res.Days,
		&insurance,
		&res.Extras.ChildSeats,
		&res.Extras.AdditionalDriver,
		&res.PlaceIn,
		&res.PlaceOut,
		&res.Customer.Name,
		&res.Customer.Phone,
		&res.Customer.Email,
		&notes,
		&res.Version,
		&res.CreatedAt,
		&res.UpdatedAt,
	)
	if err != nil {
		return domain.Reservation{}, err
	}

	res.StartDate = r.dateFrom(startDate)
	res.EndDate = r.dateFrom(endDate)
	if pickupAt.Valid {
		t := pickupAt.Time.In(r.loc)
		res.PickupAt = &t
	}
	if returnAt.Valid {
		t := returnAt.Time.In(r.loc)
		res.ReturnAt = &t
	}
	if notes.Valid {
		res.Notes = &notes.String
	}
	res.CreatorRole = domain.Role(role)
	res.Extras.Insurance = domain.InsuranceTier(insurance)
	res.ConflictLinks = domain.NewIDSet()
	return res, nil
}

// loadLinks подгружает ссылки конфликтов одним запросом
func (r *Repository) loadLinks(ctx context.Context, list []domain.Reservation) error {
	if len(list) == 0 {
		return nil
	}
	executor := dbmetrics.GetExecutor(ctx, r.db)

	ids := make([]int64, 0, len(list))
	index := make(map[int64]int, len(list))
	for i, res := range list {
		ids = append(ids, res.ID)
		index[res.ID] = i
	}

	query, args, err := psqlbuilder.Select("reservation_id", "peer_id").
		From(linksTable).
		Where("reservation_id = ANY(?)", pq.Array(ids)).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: loadLinks - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: loadLinks - execute select: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var owner, peer int64
		if err := rows.Scan(&owner, &peer); err != nil {
			return fmt.Errorf("%w: loadLinks - scan link: %v", ErrScanRow, err)
		}
		if i, ok := index[owner]; ok {
			list[i].ConflictLinks[peer] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: loadLinks - rows iteration: %v", ErrScanRow, err)
	}
	return nil
}
