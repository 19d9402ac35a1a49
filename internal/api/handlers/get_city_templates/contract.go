package get_city_templates

import (
	"context"

	"github.com/m04kA/HPS-BookingService/internal/domain"
	"github.com/m04kA/HPS-BookingService/internal/service/templates/models"
)

type TemplateService interface {
	GetByCity(ctx context.Context, cityID string, requesterRole domain.UserRole) (*models.TemplateListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
