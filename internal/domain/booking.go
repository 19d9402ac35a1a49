package domain

import (
	"time"

	"github.com/m04kA/HPS-BookingService/pkg/types"
)

// BookingStatus represents the lifecycle status of a booking
type BookingStatus string

const (
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

// Booking represents a citizen appointment at a health post
type Booking struct {
	ID            string
	PatientUserID string
	HealthPostID  string
	ServiceID     string
	CityID        string
	Date          time.Time
	Time          types.TimeString
	PatientCount  int
	Status        BookingStatus
	QRCode        string

	AdminComment *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CountsAgainstCapacity returns true if the booking consumes slot capacity.
// Only confirmed bookings do: cancellation frees the seats, completion keeps
// them consumed (the appointment happened).
func (b *Booking) CountsAgainstCapacity() bool {
	return b.Status == StatusConfirmed
}

// CanBeCancelled returns true if the booking can still be cancelled
func (b *Booking) CanBeCancelled() bool {
	return b.Status == StatusConfirmed
}

// IsOwnedBy returns true if the booking belongs to the given user
func (b *Booking) IsOwnedBy(userID string) bool {
	return b.PatientUserID == userID
}

// CityBookingsFilter фильтр для постраничного списка бронирований города
type CityBookingsFilter struct {
	CityID   string
	Page     int // Номер страницы, начиная с 1
	PageSize int
	Status   *BookingStatus // Фильтр по статусу (опционально)
}

// Offset возвращает смещение для пагинации
func (f CityBookingsFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}
