package templates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/HPS-BookingService/internal/domain"
	healthpostRepo "github.com/m04kA/HPS-BookingService/internal/infra/storage/healthpost"
	templateRepo "github.com/m04kA/HPS-BookingService/internal/infra/storage/template"
	"github.com/m04kA/HPS-BookingService/internal/service/templates/models"
	"github.com/m04kA/HPS-BookingService/pkg/types"
)

const templateIDPrefix = "TPL-"

// Service сервис управления шаблонами расписания
type Service struct {
	templateRepo   TemplateRepository
	healthPostRepo HealthPostRepository
	logger         Logger
}

// NewService создает новый экземпляр сервиса шаблонов
func NewService(templateRepo TemplateRepository, healthPostRepo HealthPostRepository, logger Logger) *Service {
	return &Service{
		templateRepo:   templateRepo,
		healthPostRepo: healthPostRepo,
		logger:         logger,
	}
}

// Create создает шаблон расписания. Доступно только административной роли.
// Время слота усекается до минуты
func (s *Service) Create(ctx context.Context, req *models.CreateTemplateRequest) (*models.TemplateResponse, error) {
	s.logger.Info("Create: creating template name=%s, healthPostID=%s", req.Name, req.HealthPostID)

	if !req.RequesterRole.IsStaff() {
		s.logger.Warn("Create: access denied for template name=%s", req.Name)
		return nil, ErrAccessDenied
	}

	tpl, err := s.buildTemplate(ctx, req.Name, req.HealthPostID, req.ServiceID, req.CityID,
		req.DaysOfWeek, req.TimeSlot, req.SlotsPerTime, req.StartDate, req.EndDate, req.IsActive)
	if err != nil {
		return nil, err
	}
	tpl.ID = templateIDPrefix + uuid.NewString()

	created, err := s.templateRepo.Create(ctx, tpl)
	if err != nil {
		s.logger.Error("Create: repository error for template name=%s: %v", req.Name, err)
		return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Create: successfully created template id=%s", created.ID)
	return models.FromDomainTemplate(created), nil
}

// Update обновляет шаблон расписания целиком. Доступно только
// административной роли
func (s *Service) Update(ctx context.Context, id string, req *models.UpdateTemplateRequest) (*models.TemplateResponse, error) {
	s.logger.Info("Update: updating template id=%s", id)

	if !req.RequesterRole.IsStaff() {
		s.logger.Warn("Update: access denied for template id=%s", id)
		return nil, ErrAccessDenied
	}

	if _, err := s.templateRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, templateRepo.ErrTemplateNotFound) {
			s.logger.Warn("Update: template id=%s not found", id)
			return nil, ErrTemplateNotFound
		}
		s.logger.Error("Update: repository error for template id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
	}

	tpl, err := s.buildTemplate(ctx, req.Name, req.HealthPostID, req.ServiceID, req.CityID,
		req.DaysOfWeek, req.TimeSlot, req.SlotsPerTime, req.StartDate, req.EndDate, req.IsActive)
	if err != nil {
		return nil, err
	}
	tpl.ID = id

	updated, err := s.templateRepo.Update(ctx, tpl)
	if err != nil {
		if errors.Is(err, templateRepo.ErrTemplateNotFound) {
			return nil, ErrTemplateNotFound
		}
		s.logger.Error("Update: repository error for template id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Update: successfully updated template id=%s", id)
	return models.FromDomainTemplate(updated), nil
}

// Delete удаляет шаблон расписания. Уже созданные бронирования остаются в
// журнале. Доступно только административной роли
func (s *Service) Delete(ctx context.Context, id string, requesterRole domain.UserRole) error {
	s.logger.Info("Delete: deleting template id=%s", id)

	if !requesterRole.IsStaff() {
		s.logger.Warn("Delete: access denied for template id=%s", id)
		return ErrAccessDenied
	}

	if err := s.templateRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, templateRepo.ErrTemplateNotFound) {
			s.logger.Warn("Delete: template id=%s not found", id)
			return ErrTemplateNotFound
		}
		s.logger.Error("Delete: repository error for template id=%s: %v", id, err)
		return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Delete: successfully deleted template id=%s", id)
	return nil
}

// GetByCity получает шаблоны города. Доступно только административной роли
func (s *Service) GetByCity(ctx context.Context, cityID string, requesterRole domain.UserRole) (*models.TemplateListResponse, error) {
	s.logger.Info("GetByCity: fetching templates for city=%s", cityID)

	if !requesterRole.IsStaff() {
		s.logger.Warn("GetByCity: access denied for city=%s", cityID)
		return nil, ErrAccessDenied
	}

	templates, err := s.templateRepo.GetByCity(ctx, cityID)
	if err != nil {
		s.logger.Error("GetByCity: repository error for city=%s: %v", cityID, err)
		return nil, fmt.Errorf("%w: GetByCity - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetByCity: fetched %d templates for city=%s", len(templates), cityID)
	return models.FromDomainTemplateList(templates), nil
}

// buildTemplate валидирует поля запроса и собирает domain модель
func (s *Service) buildTemplate(
	ctx context.Context,
	name, healthPostID, serviceID, cityID string,
	daysOfWeek []int,
	timeSlot string,
	slotsPerTime int,
	startDate string,
	endDate *string,
	isActive *bool,
) (*domain.ScheduleTemplate, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if len(name) > domain.MaxTemplateNameLength {
		return nil, fmt.Errorf("%w: name is too long", ErrInvalidInput)
	}
	if healthPostID == "" {
		return nil, fmt.Errorf("%w: healthPostId is required", ErrInvalidInput)
	}
	if serviceID == "" {
		return nil, fmt.Errorf("%w: serviceId is required", ErrInvalidInput)
	}
	if cityID == "" {
		return nil, fmt.Errorf("%w: cityId is required", ErrInvalidInput)
	}

	if slotsPerTime < domain.MinSlotsPerTime || slotsPerTime > domain.MaxSlotsPerTime {
		return nil, fmt.Errorf("%w: slotsPerTime must be between %d and %d", ErrInvalidInput, domain.MinSlotsPerTime, domain.MaxSlotsPerTime)
	}

	days, err := domain.NewWeekdaySet(daysOfWeek...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	slot, err := types.NewTimeStringFromString(timeSlot)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid timeSlot %q", ErrInvalidInput, timeSlot)
	}

	start, err := time.Parse(domain.DateFormat, startDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid startDate %q", ErrInvalidInput, startDate)
	}

	var end *time.Time
	if endDate != nil {
		parsed, err := time.Parse(domain.DateFormat, *endDate)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid endDate %q", ErrInvalidInput, *endDate)
		}
		if parsed.Before(start) {
			return nil, fmt.Errorf("%w: endDate is before startDate", ErrInvalidInput)
		}
		end = &parsed
	}

	// Сверяем принадлежность поста городу
	postCityID, err := s.healthPostRepo.GetCityID(ctx, healthPostID)
	if err != nil {
		if errors.Is(err, healthpostRepo.ErrHealthPostNotFound) {
			s.logger.Warn("buildTemplate: health post id=%s not found", healthPostID)
			return nil, ErrHealthPostNotFound
		}
		s.logger.Error("buildTemplate: failed to resolve health post city: healthPostID=%s: %v", healthPostID, err)
		return nil, fmt.Errorf("%w: buildTemplate - resolve health post city: %v", ErrInternal, err)
	}
	if postCityID != cityID {
		return nil, fmt.Errorf("%w: healthPostID=%s, cityID=%s", ErrCityMismatch, healthPostID, cityID)
	}

	active := true
	if isActive != nil {
		active = *isActive
	}

	return &domain.ScheduleTemplate{
		Name:         name,
		HealthPostID: healthPostID,
		ServiceID:    serviceID,
		CityID:       cityID,
		DaysOfWeek:   days,
		TimeSlot:     slot.TruncateToMinute(),
		SlotsPerTime: slotsPerTime,
		StartDate:    start,
		EndDate:      end,
		IsActive:     active,
	}, nil
}
