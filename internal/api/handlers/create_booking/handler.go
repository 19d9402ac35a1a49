package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/HPS-BookingService/internal/api/handlers"
	"github.com/m04kA/HPS-BookingService/internal/api/middleware"
	createBooking "github.com/m04kA/HPS-BookingService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody    = "некорректное тело запроса"
	msgInvalidDate           = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidTime           = "некорректный формат времени, ожидается HH:MM"
	msgMissingUserID         = "отсутствует ID пользователя"
	msgForbidden             = "запись другого пациента доступна только администратору"
	msgHealthPostNotFound    = "пост здоровья не найден"
	msgCityMismatch          = "пост здоровья не относится к указанному городу"
	msgNoSuchSlot            = "на выбранные дату и время нет приёма"
	msgInsufficientCapacity  = "недостаточно свободных мест в выбранном слоте"
	msgConcurrencyConflict   = "слот бронируется другим пользователем, повторите попытку"
	msgDateTooFar            = "дата записи слишком далеко в будущем"
	msgInvalidBookingRequest = "некорректные данные записи"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	requesterID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}
	requesterRole, _ := middleware.GetUserRole(r.Context())

	useCaseReq, err := req.ToUseCaseRequest(requesterID, requesterRole)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrInvalidTime):
			h.logger.Warn("POST /bookings - Invalid time: user_id=%s, time=%s", requesterID, req.Time)
			handlers.RespondBadRequest(w, msgInvalidTime)

		case errors.Is(err, createBooking.ErrDateTooFarInFuture):
			h.logger.Warn("POST /bookings - Date too far in future: user_id=%s, date=%s", requesterID, req.Date)
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: user_id=%s, error=%v", requesterID, err)
			handlers.RespondBadRequest(w, msgInvalidBookingRequest)

		case errors.Is(err, createBooking.ErrForbidden):
			h.logger.Warn("POST /bookings - Forbidden: user_id=%s, patient_user_id=%s", requesterID, req.PatientUserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, createBooking.ErrHealthPostNotFound):
			h.logger.Warn("POST /bookings - Health post not found: health_post_id=%s", req.HealthPostID)
			handlers.RespondNotFound(w, msgHealthPostNotFound)

		case errors.Is(err, createBooking.ErrCityMismatch):
			h.logger.Warn("POST /bookings - City mismatch: health_post_id=%s, city_id=%s", req.HealthPostID, req.CityID)
			handlers.RespondBadRequest(w, msgCityMismatch)

		case errors.Is(err, createBooking.ErrNoSuchSlot):
			h.logger.Warn("POST /bookings - No such slot: health_post_id=%s, date=%s, time=%s",
				req.HealthPostID, req.Date, req.Time)
			handlers.RespondNotFound(w, msgNoSuchSlot)

		case errors.Is(err, createBooking.ErrInsufficientCapacity):
			h.logger.Warn("POST /bookings - Insufficient capacity: health_post_id=%s, date=%s, time=%s, patients=%d",
				req.HealthPostID, req.Date, req.Time, req.PatientCount)
			handlers.RespondError(w, http.StatusConflict, msgInsufficientCapacity)

		case errors.Is(err, createBooking.ErrConcurrencyConflict):
			h.logger.Warn("POST /bookings - Concurrency conflict: health_post_id=%s, date=%s, time=%s",
				req.HealthPostID, req.Date, req.Time)
			handlers.RespondError(w, http.StatusConflict, msgConcurrencyConflict)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: user_id=%s, health_post_id=%s, error=%v",
				requesterID, req.HealthPostID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created successfully: booking_id=%s, user_id=%s, health_post_id=%s",
		result.Booking.ID, requesterID, req.HealthPostID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
