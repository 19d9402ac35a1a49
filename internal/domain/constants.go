package domain

// Business validation constants
const (
	MinPatientCount = 1
	MaxPatientCount = 20 // Верхняя граница на запись нескольких пациентов за раз

	MinSlotsPerTime = 0
	MaxSlotsPerTime = 500

	MaxTemplateNameLength = 200
	MaxAdminCommentLength = 500

	// MaxAdvanceBookingDays ограничивает горизонт запросов доступности:
	// шаблон без даты окончания действует бессрочно, но даты дальше
	// горизонта отклоняются, чтобы окно разрешения было конечным
	MaxAdvanceBookingDays = 365
)

// Pagination defaults for staff review lists
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Time format constants
const (
	TimeFormat     = "15:04"      // HH:MM
	TimeFormatFull = "15:04:05"   // HH:MM:SS
	DateFormat     = "2006-01-02" // YYYY-MM-DD
)

// ValidStatuses список допустимых статусов бронирования
var ValidStatuses = []BookingStatus{
	StatusConfirmed,
	StatusCancelled,
	StatusCompleted,
}

// IsValidStatus проверяет, что статус входит в список допустимых
func IsValidStatus(s BookingStatus) bool {
	for _, v := range ValidStatuses {
		if v == s {
			return true
		}
	}
	return false
}
