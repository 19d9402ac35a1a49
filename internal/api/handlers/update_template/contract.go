package update_template

import (
	"context"

	"github.com/m04kA/HPS-BookingService/internal/service/templates/models"
)

type TemplateService interface {
	Update(ctx context.Context, id string, req *models.UpdateTemplateRequest) (*models.TemplateResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
