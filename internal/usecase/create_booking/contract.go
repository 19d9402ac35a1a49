package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/HPS-BookingService/internal/domain"
	templateStore "github.com/m04kA/HPS-BookingService/internal/infra/storage/template"
	"github.com/m04kA/HPS-BookingService/pkg/types"
)

// TemplateRepository интерфейс репозитория шаблонов расписания
type TemplateRepository interface {
	// GetActiveForDate получает активные шаблоны поста/услуги на дату
	GetActiveForDate(ctx context.Context, healthPostID, serviceID string, date time.Time) ([]templateStore.ActiveTemplate, error)
}

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	// Create создаёт бронирование
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	// GetConfirmedForSlot получает подтверждённые бронирования слота
	// (внутри транзакции строки блокируются FOR UPDATE)
	GetConfirmedForSlot(ctx context.Context, healthPostID, serviceID string, date time.Time, slotTime types.TimeString) ([]*domain.Booking, error)
}

// HealthPostRepository интерфейс справочника постов здоровья
type HealthPostRepository interface {
	// GetCityID возвращает город, к которому привязан пост
	GetCityID(ctx context.Context, healthPostID string) (string, error)
}

// TxManager интерфейс менеджера транзакций
type TxManager interface {
	// DoSerializable выполняет функцию в SERIALIZABLE транзакции
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
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
