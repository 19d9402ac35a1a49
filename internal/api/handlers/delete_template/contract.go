package delete_template

import (
	"context"

	"github.com/m04kA/HPS-BookingService/internal/domain"
)

type TemplateService interface {
	Delete(ctx context.Context, id string, requesterRole domain.UserRole) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
