package get_available_slots

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/HPS-BookingService/internal/domain"
)

// UseCase возвращает доступные слоты на дату для пункта здоровья и услуги
type UseCase struct {
	templateRepo TemplateRepository
	bookingRepo  BookingRepository
	timeProvider TimeProvider
	logger       Logger
}

func NewUseCase(
	templateRepo TemplateRepository,
	bookingRepo BookingRepository,
	timeProvider TimeProvider,
	logger Logger,
) *UseCase {
	return &UseCase{
		templateRepo: templateRepo,
		bookingRepo:  bookingRepo,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Execute возвращает список слотов на дату, отсортированный по времени.
// Пустой список - нормальный результат: на дату нет активных шаблонов.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	if err := validateHorizon(req.Date, uc.timeProvider.Now()); err != nil {
		return nil, err
	}

	date := domain.DateOnly(req.Date)

	// 2. Получение шаблонов, активных на дату (без учёта дня недели)
	templates, err := uc.templateRepo.GetActiveForDate(ctx, req.HealthPostID, req.ServiceID, date)
	if err != nil {
		uc.logger.Error("Execute - failed to fetch templates: healthPostID=%s, serviceID=%s: %v", req.HealthPostID, req.ServiceID, err)
		return nil, fmt.Errorf("%w: Execute - fetch templates: %v", ErrInternal, err)
	}

	// 3. Фильтрация по дню недели и сортировка по времени
	candidates := resolveCandidates(templates, date)
	if len(candidates) == 0 {
		return emptyResponse(req, date), nil
	}

	// 4. Суммы подтверждённых записей по временам
	sums, err := uc.bookingRepo.SumConfirmedByTime(ctx, req.HealthPostID, req.ServiceID, date)
	if err != nil {
		uc.logger.Error("Execute - failed to sum confirmed bookings: healthPostID=%s, serviceID=%s: %v", req.HealthPostID, req.ServiceID, err)
		return nil, fmt.Errorf("%w: Execute - sum confirmed bookings: %v", ErrInternal, err)
	}

	// 5. Расчёт остаточной ёмкости по каждому слоту
	resolved := computeAvailability(candidates, sums, uc.logger)

	slots := make([]Slot, 0, len(resolved))
	for _, rs := range resolved {
		slots = append(slots, Slot{
			TemplateID:         rs.TemplateID,
			Time:               rs.Time,
			Available:          rs.Available(),
			TotalSlots:         rs.Capacity,
			AvailableSlots:     rs.Remaining,
			ServiceDescription: rs.ServiceDescription,
		})
	}

	return &Response{
		Date:         date,
		HealthPostID: req.HealthPostID,
		ServiceID:    req.ServiceID,
		Slots:        slots,
	}, nil
}

func emptyResponse(req *Request, date time.Time) *Response {
	return &Response{
		Date:         date,
		HealthPostID: req.HealthPostID,
		ServiceID:    req.ServiceID,
		Slots:        []Slot{},
	}
}
