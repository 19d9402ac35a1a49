package templates

import (
	"context"

	"github.com/m04kA/HPS-BookingService/internal/domain"
)

// TemplateRepository интерфейс репозитория шаблонов расписания
type TemplateRepository interface {
	Create(ctx context.Context, tpl *domain.ScheduleTemplate) (*domain.ScheduleTemplate, error)
	GetByID(ctx context.Context, id string) (*domain.ScheduleTemplate, error)
	GetByCity(ctx context.Context, cityID string) ([]*domain.ScheduleTemplate, error)
	Update(ctx context.Context, tpl *domain.ScheduleTemplate) (*domain.ScheduleTemplate, error)
	Delete(ctx context.Context, id string) error
}

// HealthPostRepository интерфейс справочника постов здоровья
type HealthPostRepository interface {
	GetCityID(ctx context.Context, healthPostID string) (string, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
