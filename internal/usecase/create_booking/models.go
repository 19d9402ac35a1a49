package create_booking

import (
	"time"

	"github.com/m04kA/HPS-BookingService/internal/domain"
)

// Request модель запроса на создание бронирования
type Request struct {
	RequesterID   string          // Идентификатор запрашивающего (из контекста аутентификации)
	RequesterRole domain.UserRole // Роль запрашивающего

	PatientUserID string    // Пациент, на которого оформляется запись
	CityID        string    // Заявленный город
	HealthPostID  string    // Пост здоровья
	ServiceID     string    // Услуга
	Date          time.Time // Дата записи
	Time          string    // Время записи, "HH:MM" или "HH:MM:SS"
	PatientCount  int       // Количество пациентов, >= 1
}

// Response созданное бронирование
type Response struct {
	Booking *domain.Booking
}
