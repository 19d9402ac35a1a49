package create_booking

import (
	"fmt"
	"time"

	"github.com/m04kA/HPS-BookingService/internal/domain"
	"github.com/m04kA/HPS-BookingService/pkg/types"
)

// validateRequest валидирует входные данные запроса. Возвращает
// нормализованное время слота при успехе.
func validateRequest(req *Request, now time.Time) (types.TimeString, error) {
	var zero types.TimeString

	if req.PatientUserID == "" {
		return zero, fmt.Errorf("%w: patientUserId is required", ErrInvalidInput)
	}

	if req.CityID == "" {
		return zero, fmt.Errorf("%w: cityId is required", ErrInvalidInput)
	}

	if req.HealthPostID == "" {
		return zero, fmt.Errorf("%w: healthPostId is required", ErrInvalidInput)
	}

	if req.ServiceID == "" {
		return zero, fmt.Errorf("%w: serviceId is required", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return zero, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	maxDate := domain.DateOnly(now).AddDate(0, 0, domain.MaxAdvanceBookingDays)
	if domain.DateOnly(req.Date).After(maxDate) {
		return zero, fmt.Errorf("%w: horizon is %d days", ErrDateTooFarInFuture, domain.MaxAdvanceBookingDays)
	}

	if req.PatientCount < domain.MinPatientCount {
		return zero, fmt.Errorf("%w: patientCount must be at least %d", ErrInvalidInput, domain.MinPatientCount)
	}

	if req.PatientCount > domain.MaxPatientCount {
		return zero, fmt.Errorf("%w: patientCount must be at most %d", ErrInvalidInput, domain.MaxPatientCount)
	}

	slotTime, err := types.NewTimeStringFromString(req.Time)
	if err != nil {
		return zero, fmt.Errorf("%w: %q", ErrInvalidTime, req.Time)
	}

	return slotTime, nil
}

// validateIdentity проверяет, что запись оформляется на себя либо
// запрашивающий имеет административную роль
func validateIdentity(req *Request) error {
	if req.RequesterRole.IsStaff() {
		return nil
	}

	if req.RequesterID != req.PatientUserID {
		return ErrForbidden
	}

	return nil
}
