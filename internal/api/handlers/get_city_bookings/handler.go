package get_city_bookings

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/HPS-BookingService/internal/api/handlers"
	"github.com/m04kA/HPS-BookingService/internal/api/middleware"
	"github.com/m04kA/HPS-BookingService/internal/service/bookings"
	"github.com/m04kA/HPS-BookingService/internal/service/bookings/models"
)

const (
	msgMissingUserID  = "отсутствует ID пользователя"
	msgForbidden      = "список бронирований города доступен только администратору"
	msgInvalidPaging  = "некорректные параметры пагинации"
	msgInvalidStatus  = "некорректный статус бронирования"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/cities/{cityId}/bookings?page=&pageSize=&status=
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	cityID := vars["cityId"]

	if _, ok := middleware.GetUserID(r.Context()); !ok {
		h.logger.Warn("GET /cities/{id}/bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}
	role, _ := middleware.GetUserRole(r.Context())

	req := &models.GetCityBookingsRequest{
		RequesterRole: role,
		CityID:        cityID,
	}

	query := r.URL.Query()
	if pageStr := query.Get("page"); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			h.logger.Warn("GET /cities/{id}/bookings - Invalid page %q", pageStr)
			handlers.RespondBadRequest(w, msgInvalidPaging)
			return
		}
		req.Page = page
	}
	if sizeStr := query.Get("pageSize"); sizeStr != "" {
		size, err := strconv.Atoi(sizeStr)
		if err != nil || size < 1 {
			h.logger.Warn("GET /cities/{id}/bookings - Invalid pageSize %q", sizeStr)
			handlers.RespondBadRequest(w, msgInvalidPaging)
			return
		}
		req.PageSize = size
	}
	if status := query.Get("status"); status != "" {
		req.Status = &status
	}

	result, err := h.service.GetCityBookings(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("GET /cities/{id}/bookings - Access denied: city_id=%s", cityID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("GET /cities/{id}/bookings - Invalid filter: city_id=%s", cityID)
			handlers.RespondBadRequest(w, msgInvalidStatus)

		default:
			h.logger.Error("GET /cities/{id}/bookings - Failed to get bookings: city_id=%s, error=%v", cityID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /cities/{id}/bookings - Returned %d of %d bookings: city_id=%s",
		len(result.Bookings), result.Total, cityID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
