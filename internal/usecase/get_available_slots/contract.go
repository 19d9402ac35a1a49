package get_available_slots

import (
	"context"
	"time"

	bookingStore "github.com/m04kA/HPS-BookingService/internal/infra/storage/booking"
	templateStore "github.com/m04kA/HPS-BookingService/internal/infra/storage/template"
)

// TemplateRepository интерфейс репозитория шаблонов расписания
type TemplateRepository interface {
	// GetActiveForDate получает активные шаблоны поста/услуги на дату
	// (фильтр по дню недели применяется на стороне вызывающего)
	GetActiveForDate(ctx context.Context, healthPostID, serviceID string, date time.Time) ([]templateStore.ActiveTemplate, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	// SumConfirmedByTime получает суммы подтверждённых пациентов по временам
	SumConfirmedByTime(ctx context.Context, healthPostID, serviceID string, date time.Time) ([]bookingStore.TimeSum, error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
