package update_template

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/HPS-BookingService/internal/api/handlers"
	"github.com/m04kA/HPS-BookingService/internal/api/middleware"
	"github.com/m04kA/HPS-BookingService/internal/service/templates"
	"github.com/m04kA/HPS-BookingService/internal/service/templates/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgForbidden          = "управление шаблонами доступно только администратору"
	msgNotFound           = "шаблон расписания не найден"
	msgInvalidTemplate    = "некорректные данные шаблона"
	msgHealthPostNotFound = "пост здоровья не найден"
	msgCityMismatch       = "пост здоровья не относится к указанному городу"
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

// Handle PUT /api/v1/templates/{templateId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	templateID := vars["templateId"]

	if _, ok := middleware.GetUserID(r.Context()); !ok {
		h.logger.Warn("PUT /templates/{id} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}
	role, _ := middleware.GetUserRole(r.Context())

	var req models.UpdateTemplateRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /templates/{id} - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.RequesterRole = role

	result, err := h.service.Update(r.Context(), templateID, &req)
	if err != nil {
		switch {
		case errors.Is(err, templates.ErrAccessDenied):
			h.logger.Warn("PUT /templates/{id} - Access denied: template_id=%s", templateID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, templates.ErrTemplateNotFound):
			h.logger.Warn("PUT /templates/{id} - Template not found: template_id=%s", templateID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, templates.ErrHealthPostNotFound):
			h.logger.Warn("PUT /templates/{id} - Health post not found: health_post_id=%s", req.HealthPostID)
			handlers.RespondNotFound(w, msgHealthPostNotFound)

		case errors.Is(err, templates.ErrCityMismatch):
			h.logger.Warn("PUT /templates/{id} - City mismatch: health_post_id=%s, city_id=%s", req.HealthPostID, req.CityID)
			handlers.RespondBadRequest(w, msgCityMismatch)

		case errors.Is(err, templates.ErrInvalidInput):
			h.logger.Warn("PUT /templates/{id} - Invalid template: template_id=%s, error=%v", templateID, err)
			handlers.RespondBadRequest(w, msgInvalidTemplate)

		default:
			h.logger.Error("PUT /templates/{id} - Failed to update template: template_id=%s, error=%v", templateID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /templates/{id} - Template updated: template_id=%s", templateID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
