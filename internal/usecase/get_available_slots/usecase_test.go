package get_available_slots

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	bookingStore "github.com/m04kA/HPS-BookingService/internal/infra/storage/booking"
	templateStore "github.com/m04kA/HPS-BookingService/internal/infra/storage/template"
)

type mockTemplateRepo struct {
	mock.Mock
}

func (m *mockTemplateRepo) GetActiveForDate(ctx context.Context, healthPostID, serviceID string, date time.Time) ([]templateStore.ActiveTemplate, error) {
	args := m.Called(ctx, healthPostID, serviceID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]templateStore.ActiveTemplate), args.Error(1)
}

type mockBookingRepo struct {
	mock.Mock
}

func (m *mockBookingRepo) SumConfirmedByTime(ctx context.Context, healthPostID, serviceID string, date time.Time) ([]bookingStore.TimeSum, error) {
	args := m.Called(ctx, healthPostID, serviceID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]bookingStore.TimeSum), args.Error(1)
}

type fixedTimeProvider struct {
	now time.Time
}

func (p *fixedTimeProvider) Now() time.Time {
	return p.now
}

func newTestUseCase(templateRepo *mockTemplateRepo, bookingRepo *mockBookingRepo, now time.Time) *UseCase {
	return NewUseCase(templateRepo, bookingRepo, &fixedTimeProvider{now: now}, nopLogger{})
}

func TestExecute_ReturnsSlotsSortedByTime(t *testing.T) {
	// 2024-06-03 - понедельник
	monday := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	templateRepo := &mockTemplateRepo{}
	bookingRepo := &mockBookingRepo{}

	templateRepo.On("GetActiveForDate", mock.Anything, "hp-1", "svc-1", monday).Return([]templateStore.ActiveTemplate{
		activeTemplate(t, "tpl-late", "14:00", 10, 1),
		activeTemplate(t, "tpl-early", "09:00", 5, 1),
	}, nil)
	bookingRepo.On("SumConfirmedByTime", mock.Anything, "hp-1", "svc-1", monday).Return([]bookingStore.TimeSum{
		{Time: mustTimeString(t, "09:00:00"), TotalPatients: 2},
	}, nil)

	uc := newTestUseCase(templateRepo, bookingRepo, now)

	resp, err := uc.Execute(context.Background(), &Request{
		HealthPostID: "hp-1",
		ServiceID:    "svc-1",
		Date:         monday,
	})

	require.NoError(t, err)
	require.Len(t, resp.Slots, 2)

	assert.Equal(t, "tpl-early", resp.Slots[0].TemplateID)
	assert.Equal(t, 5, resp.Slots[0].TotalSlots)
	assert.Equal(t, 3, resp.Slots[0].AvailableSlots)
	assert.True(t, resp.Slots[0].Available)

	assert.Equal(t, "tpl-late", resp.Slots[1].TemplateID)
	assert.Equal(t, 10, resp.Slots[1].AvailableSlots)

	templateRepo.AssertExpectations(t)
	bookingRepo.AssertExpectations(t)
}

func TestExecute_EmptyWhenNoTemplates(t *testing.T) {
	monday := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	templateRepo := &mockTemplateRepo{}
	bookingRepo := &mockBookingRepo{}

	templateRepo.On("GetActiveForDate", mock.Anything, "hp-1", "svc-1", monday).Return([]templateStore.ActiveTemplate{}, nil)

	uc := newTestUseCase(templateRepo, bookingRepo, now)

	resp, err := uc.Execute(context.Background(), &Request{
		HealthPostID: "hp-1",
		ServiceID:    "svc-1",
		Date:         monday,
	})

	// Пустой список - нормальный результат, не ошибка
	require.NoError(t, err)
	assert.NotNil(t, resp.Slots)
	assert.Empty(t, resp.Slots)

	// Суммы не запрашиваются, если кандидатов нет
	bookingRepo.AssertNotCalled(t, "SumConfirmedByTime")
}

func TestExecute_EmptyWhenWeekdayDoesNotMatch(t *testing.T) {
	// 2024-06-04 - вторник, шаблон только на понедельник
	tuesday := time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	templateRepo := &mockTemplateRepo{}
	bookingRepo := &mockBookingRepo{}

	templateRepo.On("GetActiveForDate", mock.Anything, "hp-1", "svc-1", tuesday).Return([]templateStore.ActiveTemplate{
		activeTemplate(t, "tpl-mon", "09:00", 5, 1),
	}, nil)

	uc := newTestUseCase(templateRepo, bookingRepo, now)

	resp, err := uc.Execute(context.Background(), &Request{
		HealthPostID: "hp-1",
		ServiceID:    "svc-1",
		Date:         tuesday,
	})

	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
	bookingRepo.AssertNotCalled(t, "SumConfirmedByTime")
}

func TestExecute_ValidationErrors(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	monday := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		req  *Request
	}{
		{
			name: "missing health post",
			req:  &Request{ServiceID: "svc-1", Date: monday},
		},
		{
			name: "missing service",
			req:  &Request{HealthPostID: "hp-1", Date: monday},
		},
		{
			name: "missing date",
			req:  &Request{HealthPostID: "hp-1", ServiceID: "svc-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := newTestUseCase(&mockTemplateRepo{}, &mockBookingRepo{}, now)

			_, err := uc.Execute(context.Background(), tt.req)

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestExecute_DateBeyondHorizon(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	farFuture := now.AddDate(0, 0, 366)

	uc := newTestUseCase(&mockTemplateRepo{}, &mockBookingRepo{}, now)

	_, err := uc.Execute(context.Background(), &Request{
		HealthPostID: "hp-1",
		ServiceID:    "svc-1",
		Date:         farFuture,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDateTooFarInFuture)
}

func TestExecute_DateAtHorizonBoundary(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	boundary := now.AddDate(0, 0, 365)

	templateRepo := &mockTemplateRepo{}
	templateRepo.On("GetActiveForDate", mock.Anything, "hp-1", "svc-1", mock.Anything).Return([]templateStore.ActiveTemplate{}, nil)

	uc := newTestUseCase(templateRepo, &mockBookingRepo{}, now)

	_, err := uc.Execute(context.Background(), &Request{
		HealthPostID: "hp-1",
		ServiceID:    "svc-1",
		Date:         boundary,
	})

	assert.NoError(t, err)
}

func TestExecute_TemplateRepoError(t *testing.T) {
	monday := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	templateRepo := &mockTemplateRepo{}
	templateRepo.On("GetActiveForDate", mock.Anything, "hp-1", "svc-1", monday).Return(nil, errors.New("connection refused"))

	uc := newTestUseCase(templateRepo, &mockBookingRepo{}, now)

	_, err := uc.Execute(context.Background(), &Request{
		HealthPostID: "hp-1",
		ServiceID:    "svc-1",
		Date:         monday,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInternal)
}

func TestExecute_BookingRepoError(t *testing.T) {
	monday := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	templateRepo := &mockTemplateRepo{}
	bookingRepo := &mockBookingRepo{}

	templateRepo.On("GetActiveForDate", mock.Anything, "hp-1", "svc-1", monday).Return([]templateStore.ActiveTemplate{
		activeTemplate(t, "tpl-1", "09:00", 5, 1),
	}, nil)
	bookingRepo.On("SumConfirmedByTime", mock.Anything, "hp-1", "svc-1", monday).Return(nil, errors.New("connection refused"))

	uc := newTestUseCase(templateRepo, bookingRepo, now)

	_, err := uc.Execute(context.Background(), &Request{
		HealthPostID: "hp-1",
		ServiceID:    "svc-1",
		Date:         monday,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInternal)
}

func TestExecute_ReadIsIdempotent(t *testing.T) {
	monday := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	templateRepo := &mockTemplateRepo{}
	bookingRepo := &mockBookingRepo{}

	templateRepo.On("GetActiveForDate", mock.Anything, "hp-1", "svc-1", monday).Return([]templateStore.ActiveTemplate{
		activeTemplate(t, "tpl-1", "09:00", 5, 1),
	}, nil)
	bookingRepo.On("SumConfirmedByTime", mock.Anything, "hp-1", "svc-1", monday).Return([]bookingStore.TimeSum{
		{Time: mustTimeString(t, "09:00"), TotalPatients: 2},
	}, nil)

	uc := newTestUseCase(templateRepo, bookingRepo, now)

	req := &Request{HealthPostID: "hp-1", ServiceID: "svc-1", Date: monday}

	first, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)
	second, err := uc.Execute(context.Background(), req)
	require.NoError(t, err)

	// Чтение не меняет состояние: повторный запрос даёт тот же результат
	assert.Equal(t, first, second)
}
