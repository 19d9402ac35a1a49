package domain

// UserRole роль запрашивающего, приходит из шлюза аутентификации
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// IsStaff возвращает true, если роль даёт доступ к административным
// операциям: запись от имени другого пациента, просмотр чужих бронирований,
// управление шаблонами и статусами
func (r UserRole) IsStaff() bool {
	return r == RoleAdmin
}
