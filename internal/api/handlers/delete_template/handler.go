package delete_template

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
	msgForbidden     = "управление шаблонами доступно только администратору"
	msgNotFound      = "шаблон расписания не найден"
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

// Handle DELETE /api/v1/templates/{templateId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	templateID := vars["templateId"]

	if _, ok := middleware.GetUserID(r.Context()); !ok {
		h.logger.Warn("DELETE /templates/{id} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}
	role, _ := middleware.GetUserRole(r.Context())

	if err := h.service.Delete(r.Context(), templateID, role); err != nil {
		switch {
		case errors.Is(err, templates.ErrAccessDenied):
			h.logger.Warn("DELETE /templates/{id} - Access denied: template_id=%s", templateID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, templates.ErrTemplateNotFound):
			h.logger.Warn("DELETE /templates/{id} - Template not found: template_id=%s", templateID)
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("DELETE /templates/{id} - Failed to delete template: template_id=%s, error=%v", templateID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /templates/{id} - Template deleted: template_id=%s", templateID)
	handlers.RespondJSON(w, http.StatusNoContent, nil)
}
