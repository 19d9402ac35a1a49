package create_template

import (
	"errors"
	"net/http"

	"github.com/m04kA/HPS-BookingService/internal/api/handlers"
	"github.com/m04kA/HPS-BookingService/internal/api/middleware"
	"github.com/m04kA/HPS-BookingService/internal/service/templates"
	"github.com/m04kA/HPS-BookingService/internal/service/templates/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgForbidden          = "управление шаблонами доступно только администратору"
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

// Handle POST /api/v1/templates
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserID(r.Context()); !ok {
		h.logger.Warn("POST /templates - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}
	role, _ := middleware.GetUserRole(r.Context())

	var req models.CreateTemplateRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /templates - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.RequesterRole = role

	result, err := h.service.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, templates.ErrAccessDenied):
			h.logger.Warn("POST /templates - Access denied: name=%s", req.Name)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, templates.ErrHealthPostNotFound):
			h.logger.Warn("POST /templates - Health post not found: health_post_id=%s", req.HealthPostID)
			handlers.RespondNotFound(w, msgHealthPostNotFound)

		case errors.Is(err, templates.ErrCityMismatch):
			h.logger.Warn("POST /templates - City mismatch: health_post_id=%s, city_id=%s", req.HealthPostID, req.CityID)
			handlers.RespondBadRequest(w, msgCityMismatch)

		case errors.Is(err, templates.ErrInvalidInput):
			h.logger.Warn("POST /templates - Invalid template: %v", err)
			handlers.RespondBadRequest(w, msgInvalidTemplate)

		default:
			h.logger.Error("POST /templates - Failed to create template: name=%s, error=%v", req.Name, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /templates - Template created: template_id=%s", result.ID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}
