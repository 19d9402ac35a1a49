package get_available_slots

import (
	"time"

	"github.com/m04kA/HPS-BookingService/pkg/types"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	HealthPostID string    // ID поста здоровья
	ServiceID    string    // ID услуги
	Date         time.Time // Дата, на которую запрашиваются слоты (без времени)
}

// Response модель ответа со списком слотов
type Response struct {
	Date         time.Time
	HealthPostID string
	ServiceID    string
	Slots        []Slot // Отсортированы по времени по возрастанию
}

// Slot доступность одного слота на дату
type Slot struct {
	TemplateID         string           // Шаблон, породивший слот
	Time               types.TimeString // Время слота
	Available          bool             // Осталось хотя бы одно место
	TotalSlots         int              // Вместимость слота
	AvailableSlots     int              // Свободные места
	ServiceDescription string           // Требования/описание услуги
}
