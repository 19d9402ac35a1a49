package bookings

import (
	"context"

	"github.com/m04kA/HPS-BookingService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	GetByUserID(ctx context.Context, userID string, status *domain.BookingStatus) ([]*domain.Booking, error)
	GetByCityPaginated(ctx context.Context, filter domain.CityBookingsFilter) ([]*domain.Booking, int, error)
	UpdateStatus(ctx context.Context, id string, status domain.BookingStatus, adminComment *string) error
	UpdateComment(ctx context.Context, id string, adminComment string) error
	Cancel(ctx context.Context, id string) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
