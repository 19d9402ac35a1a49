package create_booking

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInvalidTime возвращается при нераспознанном формате времени
	ErrInvalidTime = errors.New("create_booking: invalid time format")

	// ErrDateTooFarInFuture возвращается, когда дата за пределами горизонта
	// разрешения слотов
	ErrDateTooFarInFuture = errors.New("create_booking: date is too far in the future")

	// ErrCityMismatch возвращается, когда пост здоровья не принадлежит
	// заявленному городу
	ErrCityMismatch = errors.New("create_booking: health post does not belong to the city")

	// ErrHealthPostNotFound возвращается, когда пост здоровья не найден
	ErrHealthPostNotFound = errors.New("create_booking: health post not found")

	// ErrForbidden возвращается при попытке записать другого пациента без
	// административной роли
	ErrForbidden = errors.New("create_booking: booking on behalf of another patient is not allowed")

	// ErrNoSuchSlot возвращается, когда на запрошенные дату и время нет
	// активного слота
	ErrNoSuchSlot = errors.New("create_booking: no slot at the requested date and time")

	// ErrInsufficientCapacity возвращается, когда свободных мест меньше,
	// чем запрошено пациентов
	ErrInsufficientCapacity = errors.New("create_booking: not enough free seats in the slot")

	// ErrConcurrencyConflict возвращается, когда конкурентные записи не
	// удалось упорядочить после повтора транзакции
	ErrConcurrencyConflict = errors.New("create_booking: concurrent booking conflict, try again")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
