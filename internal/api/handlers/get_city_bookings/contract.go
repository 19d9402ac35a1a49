package get_city_bookings

import (
	"context"

	"github.com/m04kA/HPS-BookingService/internal/service/bookings/models"
)

type BookingService interface {
	GetCityBookings(ctx context.Context, req *models.GetCityBookingsRequest) (*models.PaginatedBookingsResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
