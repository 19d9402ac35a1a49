package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/HPS-BookingService/internal/domain"
	"github.com/m04kA/HPS-BookingService/pkg/dbmetrics"
	"github.com/m04kA/HPS-BookingService/pkg/ptr"
	"github.com/m04kA/HPS-BookingService/pkg/types"
)

func mustTime(t *testing.T, value string) types.TimeString {
	t.Helper()
	ts, err := types.NewTimeStringFromString(value)
	require.NoError(t, err)
	return ts
}

func bookingRows(bookings ...*domain.Booking) *sqlmock.Rows {
	rows := sqlmock.NewRows(selectColumns)
	for _, b := range bookings {
		var comment interface{}
		if b.AdminComment != nil {
			comment = *b.AdminComment
		}
		rows.AddRow(
			b.ID,
			b.PatientUserID,
			b.HealthPostID,
			b.ServiceID,
			b.CityID,
			b.Date,
			b.Time.String(),
			b.PatientCount,
			string(b.Status),
			b.QRCode,
			comment,
			b.CreatedAt,
			b.UpdatedAt,
		)
	}
	return rows
}

func sampleBooking(t *testing.T) *domain.Booking {
	t.Helper()
	return &domain.Booking{
		ID:            "BK-11111111-aaaa-bbbb-cccc-000000000001",
		PatientUserID: "user-1",
		HealthPostID:  "hp-1",
		ServiceID:     "svc-1",
		CityID:        "city-1",
		Date:          time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		Time:          mustTime(t, "09:00"),
		PatientCount:  2,
		Status:        domain.StatusConfirmed,
		QRCode:        "QR-11111111-aaaa-bbbb-cccc-000000000001",
		CreatedAt:     time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
		UpdatedAt:     time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
	}
}

func TestRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	booking := sampleBooking(t)
	now := time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO bookings .+ RETURNING created_at, updated_at`).
		WithArgs(
			booking.ID,
			booking.PatientUserID,
			booking.HealthPostID,
			booking.ServiceID,
			booking.CityID,
			booking.Date,
			booking.Time,
			booking.PatientCount,
			string(booking.Status),
			booking.QRCode,
		).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	created, err := repo.Create(context.Background(), booking)
	require.NoError(t, err)
	assert.Equal(t, now, created.CreatedAt)
	assert.Equal(t, now, created.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Create_ExecError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectQuery(`INSERT INTO bookings`).
		WillReturnError(errors.New("connection reset"))

	_, err = repo.Create(context.Background(), sampleBooking(t))
	assert.ErrorIs(t, err, ErrExecQuery)
}

func TestRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	booking := sampleBooking(t)

	mock.ExpectQuery(`SELECT .+ FROM bookings WHERE id = \$1`).
		WithArgs(booking.ID).
		WillReturnRows(bookingRows(booking))

	got, err := repo.GetByID(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.ID, got.ID)
	assert.Equal(t, booking.PatientUserID, got.PatientUserID)
	assert.Equal(t, "09:00:00", got.Time.String())
	assert.Equal(t, domain.StatusConfirmed, got.Status)
	assert.Nil(t, got.AdminComment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM bookings WHERE id = \$1`).
		WithArgs("BK-missing").
		WillReturnRows(bookingRows())

	_, err = repo.GetByID(context.Background(), "BK-missing")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestRepository_GetByUserID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	first := sampleBooking(t)
	second := sampleBooking(t)
	second.ID = "BK-11111111-aaaa-bbbb-cccc-000000000002"
	second.Status = domain.StatusCancelled

	mock.ExpectQuery(`SELECT .+ FROM bookings WHERE patient_user_id = \$1 ORDER BY created_at DESC`).
		WithArgs("user-1").
		WillReturnRows(bookingRows(first, second))

	got, err := repo.GetByUserID(context.Background(), "user-1", nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, first.ID, got[0].ID)
	assert.Equal(t, second.ID, got[1].ID)
}

func TestRepository_GetByUserID_StatusFilter(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	booking := sampleBooking(t)

	mock.ExpectQuery(`SELECT .+ FROM bookings WHERE patient_user_id = \$1 AND status = \$2 ORDER BY created_at DESC`).
		WithArgs("user-1", string(domain.StatusConfirmed)).
		WillReturnRows(bookingRows(booking))

	status := domain.StatusConfirmed
	got, err := repo.GetByUserID(context.Background(), "user-1", &status)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByCityPaginated(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	booking := sampleBooking(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE city_id = \$1`).
		WithArgs("city-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(21))

	mock.ExpectQuery(`SELECT .+ FROM bookings WHERE city_id = \$1 ORDER BY created_at DESC LIMIT 10 OFFSET 10`).
		WithArgs("city-1").
		WillReturnRows(bookingRows(booking))

	got, total, err := repo.GetByCityPaginated(context.Background(), domain.CityBookingsFilter{
		CityID:   "city-1",
		Page:     2,
		PageSize: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 21, total)
	require.Len(t, got, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByCityPaginated_StatusFilter(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE city_id = \$1 AND status = \$2`).
		WithArgs("city-1", string(domain.StatusCancelled)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	mock.ExpectQuery(`SELECT .+ FROM bookings WHERE city_id = \$1 AND status = \$2 ORDER BY created_at DESC`).
		WithArgs("city-1", string(domain.StatusCancelled)).
		WillReturnRows(bookingRows())

	got, total, err := repo.GetByCityPaginated(context.Background(), domain.CityBookingsFilter{
		CityID:   "city-1",
		Page:     1,
		PageSize: 10,
		Status:   ptr.Ptr(domain.StatusCancelled),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	assert.Empty(t, got)
}

func TestRepository_SumConfirmedByTime(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	date := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"booking_time", "sum"}).
		AddRow("09:00:00", 5).
		AddRow("10:30:00", 2)

	mock.ExpectQuery(`SELECT booking_time, SUM\(patient_count\) FROM bookings .+ GROUP BY booking_time ORDER BY booking_time ASC`).
		WillReturnRows(rows)

	sums, err := repo.SumConfirmedByTime(context.Background(), "hp-1", "svc-1", date)
	require.NoError(t, err)
	require.Len(t, sums, 2)
	assert.Equal(t, "09:00:00", sums[0].Time.String())
	assert.Equal(t, 5, sums[0].TotalPatients)
	assert.Equal(t, "10:30:00", sums[1].Time.String())
	assert.Equal(t, 2, sums[1].TotalPatients)
}

func TestRepository_SumConfirmedByTime_Empty(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectQuery(`SELECT booking_time, SUM\(patient_count\) FROM bookings`).
		WillReturnRows(sqlmock.NewRows([]string{"booking_time", "sum"}))

	sums, err := repo.SumConfirmedByTime(context.Background(), "hp-1", "svc-1", time.Now())
	require.NoError(t, err)
	assert.Empty(t, sums)
}

func TestRepository_GetConfirmedForSlot(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	booking := sampleBooking(t)

	// Вне транзакции строки не блокируются
	mock.ExpectQuery(`SELECT .+ FROM bookings .+ ORDER BY created_at ASC$`).
		WillReturnRows(bookingRows(booking))

	got, err := repo.GetConfirmedForSlot(
		context.Background(),
		"hp-1", "svc-1",
		booking.Date,
		mustTime(t, "09:00"),
	)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, booking.ID, got[0].ID)
}

func TestRepository_GetConfirmedForSlot_LocksInsideTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	booking := sampleBooking(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM bookings .+ ORDER BY created_at ASC FOR UPDATE`).
		WillReturnRows(bookingRows(booking))
	mock.ExpectRollback()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	defer tx.Rollback()

	ctx := dbmetrics.WithTx(context.Background(), tx)
	got, err := repo.GetConfirmedForSlot(ctx, "hp-1", "svc-1", booking.Date, mustTime(t, "09:00"))
	require.NoError(t, err)
	require.Len(t, got, 1)

	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetConfirmedForSlot_KeepsDriverErrorInChain(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	// Конфликт сериализации должен оставаться доступным через errors.As:
	// по нему txmanager решает, повторять ли транзакцию
	mock.ExpectQuery(`SELECT .+ FROM bookings`).
		WillReturnError(&pq.Error{Code: "40001"})

	_, err = repo.GetConfirmedForSlot(
		context.Background(),
		"hp-1", "svc-1",
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		mustTime(t, "09:00"),
	)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExecQuery)

	var pqErr *pq.Error
	require.True(t, errors.As(err, &pqErr))
	assert.Equal(t, pq.ErrorCode("40001"), pqErr.Code)
}

func TestRepository_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectExec(`UPDATE bookings SET status = \$1, updated_at = NOW\(\) WHERE id = \$2`).
		WithArgs(string(domain.StatusCompleted), "BK-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.UpdateStatus(context.Background(), "BK-1", domain.StatusCompleted, nil)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateStatus_WithComment(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectExec(`UPDATE bookings SET status = \$1, updated_at = NOW\(\), admin_comment = \$2 WHERE id = \$3`).
		WithArgs(string(domain.StatusCompleted), "пациент пришёл", "BK-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.UpdateStatus(context.Background(), "BK-1", domain.StatusCompleted, ptr.Ptr("пациент пришёл"))
	assert.NoError(t, err)
}

func TestRepository_UpdateStatus_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectExec(`UPDATE bookings SET status = \$1, updated_at = NOW\(\) WHERE id = \$2`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.UpdateStatus(context.Background(), "BK-missing", domain.StatusCompleted, nil)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestRepository_UpdateComment(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectExec(`UPDATE bookings SET admin_comment = \$1, updated_at = NOW\(\) WHERE id = \$2`).
		WithArgs("принести полис", "BK-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.UpdateComment(context.Background(), "BK-1", "принести полис")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateComment_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectExec(`UPDATE bookings SET admin_comment = \$1, updated_at = NOW\(\) WHERE id = \$2`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.UpdateComment(context.Background(), "BK-missing", "комментарий")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}

func TestRepository_Cancel(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectExec(`UPDATE bookings SET status = \$1, updated_at = NOW\(\) WHERE id = \$2 AND status = \$3`).
		WithArgs(string(domain.StatusCancelled), "BK-1", string(domain.StatusConfirmed)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Cancel(context.Background(), "BK-1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Cancel_AlreadyCancelled(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	// Уже отменённое бронирование не проходит фильтр по статусу confirmed
	mock.ExpectExec(`UPDATE bookings SET status = \$1, updated_at = NOW\(\)`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.Cancel(context.Background(), "BK-1")
	assert.ErrorIs(t, err, ErrBookingNotFound)
}
