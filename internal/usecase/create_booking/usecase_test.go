package create_booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/HPS-BookingService/internal/domain"
	bookingStore "github.com/m04kA/HPS-BookingService/internal/infra/storage/booking"
	healthpostStore "github.com/m04kA/HPS-BookingService/internal/infra/storage/healthpost"
	templateStore "github.com/m04kA/HPS-BookingService/internal/infra/storage/template"
	"github.com/m04kA/HPS-BookingService/pkg/dbmetrics"
	"github.com/m04kA/HPS-BookingService/pkg/txmanager"
	"github.com/m04kA/HPS-BookingService/pkg/types"
)

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fixedTimeProvider struct {
	now time.Time
}

func (p *fixedTimeProvider) Now() time.Time {
	return p.now
}

// fakeTemplateRepo отдаёт заранее заданный набор шаблонов
type fakeTemplateRepo struct {
	templates []templateStore.ActiveTemplate
	err       error
	calls     int
}

func (f *fakeTemplateRepo) GetActiveForDate(ctx context.Context, healthPostID, serviceID string, date time.Time) ([]templateStore.ActiveTemplate, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.templates, nil
}

// fakeBookingRepo хранит бронирования в памяти, чтобы проверять сценарии
// с последовательными записями
type fakeBookingRepo struct {
	bookings   []*domain.Booking
	createErr  error
	fetchErr   error
	fetchCalls int
}

func (f *fakeBookingRepo) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	stored := *booking
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	f.bookings = append(f.bookings, &stored)
	return &stored, nil
}

func (f *fakeBookingRepo) GetConfirmedForSlot(ctx context.Context, healthPostID, serviceID string, date time.Time, slotTime types.TimeString) ([]*domain.Booking, error) {
	f.fetchCalls++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	var out []*domain.Booking
	for _, b := range f.bookings {
		if b.HealthPostID == healthPostID && b.ServiceID == serviceID &&
			domain.DateOnly(b.Date).Equal(domain.DateOnly(date)) &&
			b.Time.Equal(slotTime) && b.Status == domain.StatusConfirmed {
			out = append(out, b)
		}
	}
	return out, nil
}

// fakeHealthPostRepo справочник пост -> город
type fakeHealthPostRepo struct {
	cities map[string]string
	calls  int
}

func (f *fakeHealthPostRepo) GetCityID(ctx context.Context, healthPostID string) (string, error) {
	f.calls++
	cityID, ok := f.cities[healthPostID]
	if !ok {
		return "", healthpostStore.ErrHealthPostNotFound
	}
	return cityID, nil
}

// fakeTxManager выполняет fn без настоящей транзакции; failWith
// подменяет результат для проверки обработки конфликтов
type fakeTxManager struct {
	failWith error
	calls    int
}

func (f *fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	if f.failWith != nil {
		return f.failWith
	}
	return fn(ctx)
}

func mustTimeString(t *testing.T, s string) types.TimeString {
	t.Helper()
	ts, err := types.NewTimeStringFromString(s)
	require.NoError(t, err)
	return ts
}

func tuesdayTemplate(t *testing.T, capacity int) templateStore.ActiveTemplate {
	t.Helper()

	set, err := domain.NewWeekdaySet(2)
	require.NoError(t, err)

	return templateStore.ActiveTemplate{
		Template: &domain.ScheduleTemplate{
			ID:           "tpl-1",
			Name:         "Вакцинация",
			HealthPostID: "hp-1",
			ServiceID:    "svc-1",
			CityID:       "city-1",
			DaysOfWeek:   set,
			TimeSlot:     mustTimeString(t, "09:00"),
			SlotsPerTime: capacity,
			StartDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			IsActive:     true,
		},
		ServiceDescription: "Принести паспорт",
	}
}

type testEnv struct {
	uc             *UseCase
	templateRepo   *fakeTemplateRepo
	bookingRepo    *fakeBookingRepo
	healthPostRepo *fakeHealthPostRepo
	txManager      *fakeTxManager
}

func newTestEnv(t *testing.T, capacity int) *testEnv {
	t.Helper()

	env := &testEnv{
		templateRepo:   &fakeTemplateRepo{templates: []templateStore.ActiveTemplate{tuesdayTemplate(t, capacity)}},
		bookingRepo:    &fakeBookingRepo{},
		healthPostRepo: &fakeHealthPostRepo{cities: map[string]string{"hp-1": "city-1"}},
		txManager:      &fakeTxManager{},
	}

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	env.uc = NewUseCase(env.templateRepo, env.bookingRepo, env.healthPostRepo, env.txManager, &fixedTimeProvider{now: now}, nopLogger{})

	return env
}

// 2024-06-04 - вторник
func tuesday() time.Time {
	return time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC)
}

func validRequest() *Request {
	return &Request{
		RequesterID:   "user-1",
		RequesterRole: domain.RoleUser,
		PatientUserID: "user-1",
		CityID:        "city-1",
		HealthPostID:  "hp-1",
		ServiceID:     "svc-1",
		Date:          tuesday(),
		Time:          "09:00",
		PatientCount:  1,
	}
}

func TestExecute_CreatesConfirmedBooking(t *testing.T) {
	env := newTestEnv(t, 5)

	resp, err := env.uc.Execute(context.Background(), validRequest())

	require.NoError(t, err)
	require.NotNil(t, resp.Booking)

	b := resp.Booking
	assert.True(t, strings.HasPrefix(b.ID, "BK-"))
	assert.True(t, strings.HasPrefix(b.QRCode, "QR-"))
	assert.Equal(t, domain.StatusConfirmed, b.Status)
	assert.Equal(t, "user-1", b.PatientUserID)
	assert.Equal(t, "city-1", b.CityID)
	assert.Equal(t, 1, b.PatientCount)
	assert.True(t, b.Time.Equal(mustTimeString(t, "09:00")))
	assert.Equal(t, 1, env.txManager.calls)
}

func TestExecute_NormalizesRequestedTime(t *testing.T) {
	env := newTestEnv(t, 5)

	req := validRequest()
	req.Time = "09:00:00" // с секундами, шаблон хранит 09:00

	resp, err := env.uc.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.True(t, resp.Booking.Time.Equal(mustTimeString(t, "09:00")))
}

func TestExecute_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(req *Request)
		wantErr error
	}{
		{
			name:    "missing patient",
			mutate:  func(req *Request) { req.PatientUserID = "" },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "missing city",
			mutate:  func(req *Request) { req.CityID = "" },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "missing health post",
			mutate:  func(req *Request) { req.HealthPostID = "" },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "missing service",
			mutate:  func(req *Request) { req.ServiceID = "" },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "zero date",
			mutate:  func(req *Request) { req.Date = time.Time{} },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "date beyond horizon",
			mutate:  func(req *Request) { req.Date = time.Date(2026, 6, 4, 0, 0, 0, 0, time.UTC) },
			wantErr: ErrDateTooFarInFuture,
		},
		{
			name:    "zero patient count",
			mutate:  func(req *Request) { req.PatientCount = 0 },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "negative patient count",
			mutate:  func(req *Request) { req.PatientCount = -3 },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "patient count above limit",
			mutate:  func(req *Request) { req.PatientCount = domain.MaxPatientCount + 1 },
			wantErr: ErrInvalidInput,
		},
		{
			name:    "unparseable time",
			mutate:  func(req *Request) { req.Time = "9 утра" },
			wantErr: ErrInvalidTime,
		},
		{
			name:    "out of range time",
			mutate:  func(req *Request) { req.Time = "25:00" },
			wantErr: ErrInvalidTime,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, 5)

			req := validRequest()
			tt.mutate(req)

			_, err := env.uc.Execute(context.Background(), req)

			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			// Отказ на валидации не трогает журнал бронирований
			assert.Empty(t, env.bookingRepo.bookings)
			assert.Equal(t, 0, env.txManager.calls)
		})
	}
}

func TestExecute_ForbiddenForAnotherPatient(t *testing.T) {
	env := newTestEnv(t, 5)

	req := validRequest()
	req.PatientUserID = "user-2"

	_, err := env.uc.Execute(context.Background(), req)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, 0, env.healthPostRepo.calls)
}

func TestExecute_StaffBooksOnBehalfOfPatient(t *testing.T) {
	env := newTestEnv(t, 5)

	req := validRequest()
	req.RequesterID = "admin-1"
	req.RequesterRole = domain.RoleAdmin
	req.PatientUserID = "user-2"

	resp, err := env.uc.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "user-2", resp.Booking.PatientUserID)
}

func TestExecute_CityMismatch(t *testing.T) {
	env := newTestEnv(t, 5)

	req := validRequest()
	req.CityID = "city-2"

	_, err := env.uc.Execute(context.Background(), req)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCityMismatch)

	// До журнала бронирований запрос не дошёл
	assert.Equal(t, 0, env.templateRepo.calls)
	assert.Empty(t, env.bookingRepo.bookings)
}

func TestExecute_HealthPostNotFound(t *testing.T) {
	env := newTestEnv(t, 5)

	req := validRequest()
	req.HealthPostID = "hp-unknown"

	_, err := env.uc.Execute(context.Background(), req)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHealthPostNotFound)
}

func TestExecute_NoSuchSlot_WrongTime(t *testing.T) {
	env := newTestEnv(t, 5)

	req := validRequest()
	req.Time = "10:00"

	_, err := env.uc.Execute(context.Background(), req)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoSuchSlot)
	assert.Empty(t, env.bookingRepo.bookings)
}

func TestExecute_NoSuchSlot_WrongWeekday(t *testing.T) {
	env := newTestEnv(t, 5)

	req := validRequest()
	// 2024-06-05 - среда, шаблон только на вторник
	req.Date = time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)

	_, err := env.uc.Execute(context.Background(), req)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoSuchSlot)
}

func TestExecute_NoSuchSlot_DistinctFromCapacity(t *testing.T) {
	// Слот существует, но заполнен: это InsufficientCapacity, не NoSuchSlot
	env := newTestEnv(t, 1)

	first := validRequest()
	_, err := env.uc.Execute(context.Background(), first)
	require.NoError(t, err)

	second := validRequest()
	_, err = env.uc.Execute(context.Background(), second)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientCapacity)
	assert.NotErrorIs(t, err, ErrNoSuchSlot)
}

func TestExecute_InsufficientCapacity_AllOrNothing(t *testing.T) {
	env := newTestEnv(t, 3)

	first := validRequest()
	first.PatientCount = 2
	_, err := env.uc.Execute(context.Background(), first)
	require.NoError(t, err)

	// Осталось 1 место, запрошено 2: частичный допуск не выполняется
	second := validRequest()
	second.PatientCount = 2
	_, err = env.uc.Execute(context.Background(), second)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientCapacity)
	require.Len(t, env.bookingRepo.bookings, 1)
}

func TestExecute_CapacityTwoScenario(t *testing.T) {
	// Шаблон вторника с вместимостью 2: запись на 2 пациентов проходит,
	// следующая на 1 отклоняется
	env := newTestEnv(t, 2)

	first := validRequest()
	first.PatientCount = 2
	resp, err := env.uc.Execute(context.Background(), first)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Booking.PatientCount)

	second := validRequest()
	second.PatientCount = 1
	_, err = env.uc.Execute(context.Background(), second)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientCapacity)
}

func TestExecute_CancelledBookingFreesCapacity(t *testing.T) {
	env := newTestEnv(t, 1)

	first := validRequest()
	resp, err := env.uc.Execute(context.Background(), first)
	require.NoError(t, err)

	// Отмена освобождает места
	resp.Booking.Status = domain.StatusCancelled
	env.bookingRepo.bookings[0].Status = domain.StatusCancelled

	second := validRequest()
	_, err = env.uc.Execute(context.Background(), second)

	assert.NoError(t, err)
}

func TestExecute_SerializationConflictMapsToConcurrencyError(t *testing.T) {
	env := newTestEnv(t, 5)
	env.txManager.failWith = fmt.Errorf("%w: could not serialize access", txmanager.ErrSerializationFailure)

	_, err := env.uc.Execute(context.Background(), validRequest())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConcurrencyConflict)
}

// fakeTx и fakeTxBeginner поднимают настоящий txmanager над фейковым
// источником транзакций для сценариев с конфликтами на уровне запроса
type fakeTx struct{}

func (fakeTx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, nil
}

func (fakeTx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return nil
}

func (fakeTx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}

func (fakeTx) Commit() error   { return nil }
func (fakeTx) Rollback() error { return nil }

type fakeTxBeginner struct{}

func (fakeTxBeginner) BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error) {
	return fakeTx{}, nil
}

func TestExecute_StatementConflictRetriedAndMapped(t *testing.T) {
	// Конфликт сериализации, поднятый запросом внутри транзакции и
	// обёрнутый сентинелом репозитория, проходит повтор и после него
	// отдаётся клиенту как конфликт конкуренции, а не внутренняя ошибка
	env := newTestEnv(t, 5)
	env.bookingRepo.fetchErr = fmt.Errorf("%w: GetConfirmedForSlot - execute query: %w",
		bookingStore.ErrExecQuery, &pq.Error{Code: "40001"})

	mgr := txmanager.NewTransactionManager(fakeTxBeginner{})
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	uc := NewUseCase(env.templateRepo, env.bookingRepo, env.healthPostRepo, mgr, &fixedTimeProvider{now: now}, nopLogger{})

	_, err := uc.Execute(context.Background(), validRequest())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConcurrencyConflict)
	assert.NotErrorIs(t, err, ErrInternal)
	assert.Equal(t, 2, env.bookingRepo.fetchCalls)
	assert.Empty(t, env.bookingRepo.bookings)
}

func TestExecute_TemplateRepoErrorIsInternal(t *testing.T) {
	env := newTestEnv(t, 5)
	env.templateRepo.err = errors.New("connection refused")

	_, err := env.uc.Execute(context.Background(), validRequest())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInternal)
}

func TestExecute_ConfirmedFetchErrorIsInternal(t *testing.T) {
	env := newTestEnv(t, 5)
	env.bookingRepo.fetchErr = errors.New("connection refused")

	_, err := env.uc.Execute(context.Background(), validRequest())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInternal)
}

func TestExecute_InsertErrorIsInternal(t *testing.T) {
	env := newTestEnv(t, 5)
	env.bookingRepo.createErr = errors.New("connection refused")

	_, err := env.uc.Execute(context.Background(), validRequest())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInternal)
}
