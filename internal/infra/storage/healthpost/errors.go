package healthpost

import "errors"

var (
	// ErrHealthPostNotFound возвращается, когда пост здоровья не найден
	ErrHealthPostNotFound = errors.New("healthpost.repository: health post not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("healthpost.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("healthpost.repository: failed to execute query")
)
