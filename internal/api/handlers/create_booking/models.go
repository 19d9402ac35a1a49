package create_booking

import (
	"fmt"
	"time"

	"github.com/m04kA/HPS-BookingService/internal/domain"
	createBooking "github.com/m04kA/HPS-BookingService/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP запрос на создание бронирования
type CreateBookingRequest struct {
	PatientUserID string `json:"patientUserId"`
	CityID        string `json:"cityId"`
	HealthPostID  string `json:"healthPostId"`
	ServiceID     string `json:"serviceId"`
	Date          string `json:"date"` // "2025-10-15"
	Time          string `json:"time"` // "09:00"
	PatientCount  int    `json:"patientCount"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case.
// Идентификация запрашивающего добавляется из контекста аутентификации
func (r *CreateBookingRequest) ToUseCaseRequest(requesterID string, requesterRole domain.UserRole) (*createBooking.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, fmt.Errorf("parse date %q: %w", r.Date, err)
	}

	return &createBooking.Request{
		RequesterID:   requesterID,
		RequesterRole: requesterRole,
		PatientUserID: r.PatientUserID,
		CityID:        r.CityID,
		HealthPostID:  r.HealthPostID,
		ServiceID:     r.ServiceID,
		Date:          date,
		Time:          r.Time,
		PatientCount:  r.PatientCount,
	}, nil
}

// CreateBookingResponse HTTP ответ с созданным бронированием
type CreateBookingResponse struct {
	ID            string    `json:"id"`
	PatientUserID string    `json:"patientUserId"`
	HealthPostID  string    `json:"healthPostId"`
	ServiceID     string    `json:"serviceId"`
	CityID        string    `json:"cityId"`
	BookingDate   string    `json:"bookingDate"`
	BookingTime   string    `json:"bookingTime"`
	PatientCount  int       `json:"patientCount"`
	Status        string    `json:"status"`
	QRCode        string    `json:"qrCode"`
	CreatedAt     time.Time `json:"createdAt"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP DTO
func FromUseCaseResponse(resp *createBooking.Response) *CreateBookingResponse {
	b := resp.Booking

	return &CreateBookingResponse{
		ID:            b.ID,
		PatientUserID: b.PatientUserID,
		HealthPostID:  b.HealthPostID,
		ServiceID:     b.ServiceID,
		CityID:        b.CityID,
		BookingDate:   b.Date.Format(domain.DateFormat),
		BookingTime:   b.Time.Short(),
		PatientCount:  b.PatientCount,
		Status:        string(b.Status),
		QRCode:        b.QRCode,
		CreatedAt:     b.CreatedAt,
	}
}
