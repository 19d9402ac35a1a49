package models

import (
	"errors"
	"time"

	"github.com/m04kA/HPS-BookingService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid booking status")
)

// Request модели

// GetUserBookingsRequest запрос на получение бронирований пользователя
type GetUserBookingsRequest struct {
	RequesterID   string          `json:"-"`
	RequesterRole domain.UserRole `json:"-"`
	UserID        string          `json:"userId"`
	Status        *string         `json:"status,omitempty"` // Фильтр по статусу (опционально)
}

// GetCityBookingsRequest запрос на постраничный список бронирований города
type GetCityBookingsRequest struct {
	RequesterRole domain.UserRole `json:"-"`
	CityID        string          `json:"cityId"`
	Page          int             `json:"page"`
	PageSize      int             `json:"pageSize"`
	Status        *string         `json:"status,omitempty"`
}

// ToDomainFilter конвертирует request в domain фильтр с нормализацией
// пагинации
func (r *GetCityBookingsRequest) ToDomainFilter() (domain.CityBookingsFilter, error) {
	filter := domain.CityBookingsFilter{
		CityID:   r.CityID,
		Page:     r.Page,
		PageSize: r.PageSize,
	}

	if filter.Page < 1 {
		filter.Page = domain.DefaultPage
	}
	if filter.PageSize < 1 {
		filter.PageSize = domain.DefaultPageSize
	}
	if filter.PageSize > domain.MaxPageSize {
		filter.PageSize = domain.MaxPageSize
	}

	if r.Status != nil {
		status, err := ToDomainBookingStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	RequesterID   string          `json:"-"`
	RequesterRole domain.UserRole `json:"-"`
}

// UpdateStatusRequest запрос на обновление статуса бронирования
type UpdateStatusRequest struct {
	RequesterRole domain.UserRole `json:"-"`
	Status        string          `json:"status"`
	AdminComment  *string         `json:"adminComment,omitempty"`
}

// UpdateCommentRequest запрос на обновление комментария персонала
// без смены статуса
type UpdateCommentRequest struct {
	RequesterRole domain.UserRole `json:"-"`
	Comment       string          `json:"comment"`
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID            string `json:"id"`
	PatientUserID string `json:"patientUserId"`
	HealthPostID  string `json:"healthPostId"`
	ServiceID     string `json:"serviceId"`
	CityID        string `json:"cityId"`
	BookingDate   string `json:"bookingDate"` // "2025-10-15"
	BookingTime   string `json:"bookingTime"` // "09:00"
	PatientCount  int    `json:"patientCount"`
	Status        string `json:"status"`
	QRCode        string `json:"qrCode"`

	AdminComment *string `json:"adminComment,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// PaginatedBookingsResponse постраничный список бронирований города
type PaginatedBookingsResponse struct {
	Bookings   []BookingResponse `json:"bookings"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalPages int               `json:"totalPages"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	return &BookingResponse{
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
		AdminComment:  b.AdminComment,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}

// ToDomainBookingStatus конвертирует строку в domain.BookingStatus с валидацией
func ToDomainBookingStatus(status string) (domain.BookingStatus, error) {
	s := domain.BookingStatus(status)

	if !domain.IsValidStatus(s) {
		return "", ErrInvalidStatus
	}

	return s, nil
}
