package get_available_slots

import (
	"fmt"
	"time"

	"github.com/m04kA/HPS-BookingService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.HealthPostID == "" {
		return fmt.Errorf("%w: healthPostID is required", ErrInvalidInput)
	}

	if req.ServiceID == "" {
		return fmt.Errorf("%w: serviceID is required", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	return nil
}

// validateHorizon проверяет, что дата не дальше горизонта разрешения.
// Шаблон с открытой датой окончания действует бессрочно, поэтому окно
// запросов ограничивается фиксированным горизонтом.
func validateHorizon(date time.Time, now time.Time) error {
	maxDate := domain.DateOnly(now).AddDate(0, 0, domain.MaxAdvanceBookingDays)
	if domain.DateOnly(date).After(maxDate) {
		return fmt.Errorf("%w: horizon is %d days", ErrDateTooFarInFuture, domain.MaxAdvanceBookingDays)
	}
	return nil
}
