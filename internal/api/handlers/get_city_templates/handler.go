package get_city_templates

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/HPS-BookingService/internal/api/handlers"
	"github.com/m04kA/HPS-BookingService/internal/api/middleware"
	"github.com/m04kA/HPS-BookingService/internal/service/templates"
)

const (
	msgMissingUserID = "отсутствует ID пользователя"
	msgForbidden     = "список шаблонов доступен только администратору"
)

type Handler struct {
	service TemplateService
	logger  Logger
}

func NewHandler(service TemplateService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/cities/{cityId}/templates
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	cityID := vars["cityId"]

	if _, ok := middleware.GetUserID(r.Context()); !ok {
		h.logger.Warn("GET /cities/{id}/templates - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}
	role, _ := middleware.GetUserRole(r.Context())

	result, err := h.service.GetByCity(r.Context(), cityID, role)
	if err != nil {
		switch {
		case errors.Is(err, templates.ErrAccessDenied):
			h.logger.Warn("GET /cities/{id}/templates - Access denied: city_id=%s", cityID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("GET /cities/{id}/templates - Failed to get templates: city_id=%s, error=%v", cityID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /cities/{id}/templates - Returned %d templates: city_id=%s", len(result.Templates), cityID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
