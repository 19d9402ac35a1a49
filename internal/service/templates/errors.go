package templates

import "errors"

var (
	// ErrTemplateNotFound возвращается, когда шаблон не найден
	ErrTemplateNotFound = errors.New("schedule template not found")

	// ErrHealthPostNotFound возвращается, когда пост здоровья не найден
	ErrHealthPostNotFound = errors.New("health post not found")

	// ErrCityMismatch возвращается, когда пост здоровья не принадлежит
	// заявленному городу
	ErrCityMismatch = errors.New("health post does not belong to the city")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
