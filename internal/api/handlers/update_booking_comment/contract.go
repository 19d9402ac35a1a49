package update_booking_comment

import (
	"context"

	"github.com/m04kA/HPS-BookingService/internal/service/bookings/models"
)

type BookingService interface {
	UpdateComment(ctx context.Context, bookingID string, req *models.UpdateCommentRequest) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
