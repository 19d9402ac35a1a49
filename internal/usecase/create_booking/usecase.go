package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/HPS-BookingService/internal/domain"
	healthpostStore "github.com/m04kA/HPS-BookingService/internal/infra/storage/healthpost"
	templateStore "github.com/m04kA/HPS-BookingService/internal/infra/storage/template"
	"github.com/m04kA/HPS-BookingService/pkg/txmanager"
	"github.com/m04kA/HPS-BookingService/pkg/types"
)

const (
	bookingIDPrefix = "BK-"
	qrCodePrefix    = "QR-"
)

// UseCase создаёт бронирование с контролем вместимости слота
type UseCase struct {
	templateRepo   TemplateRepository
	bookingRepo    BookingRepository
	healthPostRepo HealthPostRepository
	txManager      TxManager
	timeProvider   TimeProvider
	logger         Logger
}

func NewUseCase(
	templateRepo TemplateRepository,
	bookingRepo BookingRepository,
	healthPostRepo HealthPostRepository,
	txManager TxManager,
	timeProvider TimeProvider,
	logger Logger,
) *UseCase {
	return &UseCase{
		templateRepo:   templateRepo,
		bookingRepo:    bookingRepo,
		healthPostRepo: healthPostRepo,
		txManager:      txManager,
		timeProvider:   timeProvider,
		logger:         logger,
	}
}

// Execute проводит запрос через контроль допуска: валидация, проверка
// вместимости в SERIALIZABLE транзакции, вставка подтверждённого
// бронирования. Либо все запрошенные места выделяются, либо ни одного.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных (до обращения к журналу бронирований)
	slotTime, err := validateRequest(req, uc.timeProvider.Now())
	if err != nil {
		return nil, err
	}

	if err := validateIdentity(req); err != nil {
		return nil, err
	}

	// 2. Сверка города: пост здоровья должен принадлежать заявленному городу
	cityID, err := uc.healthPostRepo.GetCityID(ctx, req.HealthPostID)
	if err != nil {
		if errors.Is(err, healthpostStore.ErrHealthPostNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrHealthPostNotFound, req.HealthPostID)
		}
		uc.logger.Error("Execute - failed to resolve health post city: healthPostID=%s: %v", req.HealthPostID, err)
		return nil, fmt.Errorf("%w: Execute - resolve health post city: %v", ErrInternal, err)
	}
	if cityID != req.CityID {
		return nil, fmt.Errorf("%w: healthPostID=%s, cityID=%s", ErrCityMismatch, req.HealthPostID, req.CityID)
	}

	date := domain.DateOnly(req.Date)

	// 3. Проверка вместимости и вставка в одной SERIALIZABLE транзакции
	var created *domain.Booking
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		candidate, err := uc.findSlotCandidate(txCtx, req, date, slotTime)
		if err != nil {
			return err
		}

		remaining, err := uc.remainingCapacity(txCtx, req, date, candidate)
		if err != nil {
			return err
		}

		// Частичный допуск не выполняется: либо все места, либо отказ
		if req.PatientCount > remaining {
			return fmt.Errorf("%w: requested=%d, remaining=%d", ErrInsufficientCapacity, req.PatientCount, remaining)
		}

		booking := &domain.Booking{
			ID:            bookingIDPrefix + uuid.NewString(),
			PatientUserID: req.PatientUserID,
			HealthPostID:  req.HealthPostID,
			ServiceID:     req.ServiceID,
			CityID:        cityID,
			Date:          date,
			Time:          candidate.Template.TimeSlot,
			PatientCount:  req.PatientCount,
			Status:        domain.StatusConfirmed,
			QRCode:        qrCodePrefix + uuid.NewString(),
		}

		created, err = uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			uc.logger.Error("Execute - failed to insert booking: healthPostID=%s, date=%s, time=%s: %v",
				req.HealthPostID, date.Format(domain.DateFormat), candidate.Template.TimeSlot, err)
			// Ошибка драйвера остаётся в цепочке: конфликт сериализации
			// внутри транзакции должен дойти до повтора в txmanager
			return fmt.Errorf("%w: Execute - insert booking: %w", ErrInternal, err)
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, txmanager.ErrSerializationFailure) {
			uc.logger.Warn("Execute - serialization conflict persisted after retry: healthPostID=%s, date=%s, time=%s",
				req.HealthPostID, date.Format(domain.DateFormat), slotTime)
			return nil, fmt.Errorf("%w: %v", ErrConcurrencyConflict, err)
		}
		if errors.Is(err, txmanager.ErrBeginTx) || errors.Is(err, txmanager.ErrCommitTx) {
			return nil, fmt.Errorf("%w: Execute - transaction: %v", ErrInternal, err)
		}
		return nil, err
	}

	uc.logger.Info("Execute - booking admitted: id=%s, healthPostID=%s, date=%s, time=%s, patients=%d",
		created.ID, created.HealthPostID, date.Format(domain.DateFormat), created.Time, created.PatientCount)

	return &Response{Booking: created}, nil
}

// findSlotCandidate ищет активный шаблон поста/услуги на дату, чьё время
// совпадает с запрошенным после нормализации. Два шаблона на одно время -
// независимые пулы; берётся первый в порядке выдачи репозитория.
func (uc *UseCase) findSlotCandidate(ctx context.Context, req *Request, date time.Time, slotTime types.TimeString) (*templateStore.ActiveTemplate, error) {
	templates, err := uc.templateRepo.GetActiveForDate(ctx, req.HealthPostID, req.ServiceID, date)
	if err != nil {
		uc.logger.Error("findSlotCandidate - failed to fetch templates: healthPostID=%s, serviceID=%s: %v", req.HealthPostID, req.ServiceID, err)
		return nil, fmt.Errorf("%w: findSlotCandidate - fetch templates: %w", ErrInternal, err)
	}

	for i := range templates {
		if !templates[i].Template.IsActiveOn(date) {
			continue
		}
		if templates[i].Template.TimeSlot.Equal(slotTime) {
			return &templates[i], nil
		}
	}

	return nil, fmt.Errorf("%w: date=%s, time=%s", ErrNoSuchSlot, date.Format(domain.DateFormat), slotTime)
}

// remainingCapacity считает свободные места слота по подтверждённым
// бронированиям, прочитанным с блокировкой строк
func (uc *UseCase) remainingCapacity(ctx context.Context, req *Request, date time.Time, candidate *templateStore.ActiveTemplate) (int, error) {
	bookings, err := uc.bookingRepo.GetConfirmedForSlot(ctx, req.HealthPostID, req.ServiceID, date, candidate.Template.TimeSlot)
	if err != nil {
		uc.logger.Error("remainingCapacity - failed to fetch confirmed bookings: healthPostID=%s, date=%s: %v",
			req.HealthPostID, date.Format(domain.DateFormat), err)
		return 0, fmt.Errorf("%w: remainingCapacity - fetch confirmed bookings: %w", ErrInternal, err)
	}

	confirmed := 0
	for _, b := range bookings {
		if b.CountsAgainstCapacity() {
			confirmed += b.PatientCount
		}
	}

	remaining := candidate.Template.SlotsPerTime - confirmed
	if remaining < 0 {
		// Подтверждено больше вместимости: такого не должно быть после
		// корректного контроля допуска
		uc.logger.Error("remainingCapacity: negative remaining capacity, template=%s time=%s capacity=%d confirmed=%d",
			candidate.Template.ID, candidate.Template.TimeSlot, candidate.Template.SlotsPerTime, confirmed)
		remaining = 0
	}

	return remaining, nil
}
