package get_booking

import (
	"context"

	"github.com/m04kA/HPS-BookingService/internal/domain"
	"github.com/m04kA/HPS-BookingService/internal/service/bookings/models"
)

type BookingService interface {
	GetByID(ctx context.Context, id string, requesterID string, requesterRole domain.UserRole) (*models.BookingResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
