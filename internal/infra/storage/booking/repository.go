package booking

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/HPS-BookingService/internal/domain"
	"github.com/m04kA/HPS-BookingService/pkg/dbmetrics"
	"github.com/m04kA/HPS-BookingService/pkg/psqlbuilder"
	"github.com/m04kA/HPS-BookingService/pkg/types"
)

var selectColumns = []string{
	"id",
	"patient_user_id",
	"health_post_id",
	"service_id",
	"city_id",
	"booking_date",
	"booking_time",
	"patient_count",
	"status",
	"qr_code",
	"admin_comment",
	"created_at",
	"updated_at",
}

// TimeSum агрегат: суммарное количество подтверждённых пациентов на время
type TimeSum struct {
	Time          types.TimeString
	TotalPatients int
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование.
// Если в контексте передана активная транзакция, использует её - путь
// создания через контроль допуска всегда идёт внутри сериализуемой
// транзакции вместе с проверкой вместимости слота.
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns(
			"id",
			"patient_user_id",
			"health_post_id",
			"service_id",
			"city_id",
			"booking_date",
			"booking_time",
			"patient_count",
			"status",
			"qr_code",
		).
		Values(
			booking.ID,
			booking.PatientUserID,
			booking.HealthPostID,
			booking.ServiceID,
			booking.CityID,
			booking.Date,
			booking.Time,
			booking.PatientCount,
			booking.Status,
			booking.QRCode,
		).
		Suffix("RETURNING created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt)
	if err != nil {
		// Ошибка драйвера остаётся в цепочке: txmanager по коду SQLSTATE
		// распознаёт конфликт сериализации и повторяет транзакцию
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return booking, nil
}

// GetByID получает бронирование по ID
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(selectColumns...).
		From("bookings").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := r.scanBooking(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %v", ErrScanRow, err)
	}

	return booking, nil
}

// GetByUserID получает историю бронирований пользователя, новые первыми.
// Опционально фильтрует по статусу.
func (r *Repository) GetByUserID(ctx context.Context, userID string, status *domain.BookingStatus) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(selectColumns...).
		From("bookings").
		Where(squirrel.Eq{"patient_user_id": userID}).
		OrderBy("created_at DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// GetByCityPaginated получает постраничный список бронирований города
// для ревью персоналом. Возвращает страницу и общее число записей.
func (r *Repository) GetByCityPaginated(ctx context.Context, filter domain.CityBookingsFilter) ([]*domain.Booking, int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	countBuilder := psqlbuilder.Select("COUNT(*)").
		From("bookings").
		Where(squirrel.Eq{"city_id": filter.CityID})
	if filter.Status != nil {
		countBuilder = countBuilder.Where(squirrel.Eq{"status": *filter.Status})
	}

	query, args, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: GetByCityPaginated - build count query: %v", ErrBuildQuery, err)
	}

	var total int
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%w: GetByCityPaginated - scan count: %v", ErrScanRow, err)
	}

	selectBuilder := psqlbuilder.Select(selectColumns...).
		From("bookings").
		Where(squirrel.Eq{"city_id": filter.CityID}).
		OrderBy("created_at DESC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64(filter.Offset()))
	if filter.Status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": *filter.Status})
	}

	query, args, err = selectBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: GetByCityPaginated - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: GetByCityPaginated - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	bookings, err := r.scanBookings(rows)
	if err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}

// SumConfirmedByTime возвращает суммы подтверждённых пациентов по каждому
// времени на дату, сгруппированные по booking_time. Считаются только
// бронирования со статусом confirmed: отменённые освобождают места,
// завершённые места не освобождают, но в confirmed уже не входят.
func (r *Repository) SumConfirmedByTime(ctx context.Context, healthPostID, serviceID string, date time.Time) ([]TimeSum, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("booking_time", "SUM(patient_count)").
		From("bookings").
		Where(squirrel.Eq{
			"health_post_id": healthPostID,
			"service_id":     serviceID,
			"booking_date":   date,
			"status":         domain.StatusConfirmed,
		}).
		GroupBy("booking_time").
		OrderBy("booking_time ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: SumConfirmedByTime - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: SumConfirmedByTime - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	sums := make([]TimeSum, 0)
	for rows.Next() {
		var ts TimeSum
		if err := rows.Scan(&ts.Time, &ts.TotalPatients); err != nil {
			return nil, fmt.Errorf("%w: SumConfirmedByTime - scan row: %v", ErrScanRow, err)
		}
		sums = append(sums, ts)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: SumConfirmedByTime - rows error: %v", ErrScanRow, err)
	}

	return sums, nil
}

// GetConfirmedForSlot получает подтверждённые бронирования на конкретный
// слот (пост, услуга, дата, время). Внутри транзакции блокирует строки
// FOR UPDATE - это путь проверки вместимости в контроле допуска.
func (r *Repository) GetConfirmedForSlot(ctx context.Context, healthPostID, serviceID string, date time.Time, slotTime types.TimeString) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(selectColumns...).
		From("bookings").
		Where(squirrel.Eq{
			"health_post_id": healthPostID,
			"service_id":     serviceID,
			"booking_date":   date,
			"booking_time":   slotTime,
			"status":         domain.StatusConfirmed,
		}).
		OrderBy("created_at ASC")

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetConfirmedForSlot - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetConfirmedForSlot - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return r.scanBookings(rows)
}

// UpdateStatus обновляет статус бронирования, опционально с комментарием
// персонала
func (r *Repository) UpdateStatus(ctx context.Context, id string, status domain.BookingStatus, adminComment *string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	updateBuilder := psqlbuilder.Update("bookings").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id})

	if adminComment != nil {
		updateBuilder = updateBuilder.Set("admin_comment", *adminComment)
	}

	query, args, err := updateBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// UpdateComment обновляет комментарий персонала, не трогая статус
func (r *Repository) UpdateComment(ctx context.Context, id string, adminComment string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("admin_comment", adminComment).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateComment - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateComment - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateComment - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// Cancel отменяет бронирование. Переводит confirmed → cancelled, отмена
// освобождает вместимость слота. Возвращает ErrBookingNotFound, если
// бронирование не найдено или уже не в статусе confirmed.
func (r *Repository) Cancel(ctx context.Context, id string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("bookings").
		Set("status", domain.StatusCancelled).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{
			"id":     id,
			"status": domain.StatusConfirmed,
		}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Cancel - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Cancel - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrBookingNotFound
	}

	return nil
}

// rowScanner общий интерфейс для *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *Repository) scanBooking(row rowScanner) (*domain.Booking, error) {
	var booking domain.Booking
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&booking.ID,
		&booking.PatientUserID,
		&booking.HealthPostID,
		&booking.ServiceID,
		&booking.CityID,
		&booking.Date,
		&booking.Time,
		&booking.PatientCount,
		&booking.Status,
		&booking.QRCode,
		&booking.AdminComment,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	booking.CreatedAt = createdAt.Time
	booking.UpdatedAt = updatedAt.Time

	return &booking, nil
}

// scanBookings сканирует результаты запроса в слайс бронирований
func (r *Repository) scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)

	for rows.Next() {
		booking, err := r.scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanBookings - scan row: %w", ErrScanRow, err)
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanBookings - rows error: %w", ErrScanRow, err)
	}

	return bookings, nil
}
