package models

import (
	"time"

	"github.com/m04kA/HPS-BookingService/internal/domain"
)

// Request модели

// CreateTemplateRequest запрос на создание шаблона расписания
type CreateTemplateRequest struct {
	RequesterRole domain.UserRole `json:"-"`

	Name         string  `json:"name"`
	HealthPostID string  `json:"healthPostId"`
	ServiceID    string  `json:"serviceId"`
	CityID       string  `json:"cityId"`
	DaysOfWeek   []int   `json:"daysOfWeek"` // 0=воскресенье ... 6=суббота
	TimeSlot     string  `json:"timeSlot"`   // "HH:MM"
	SlotsPerTime int     `json:"slotsPerTime"`
	StartDate    string  `json:"startDate"`         // "2006-01-02"
	EndDate      *string `json:"endDate,omitempty"` // nil = бессрочно
	IsActive     *bool   `json:"isActive,omitempty"`
}

// UpdateTemplateRequest запрос на обновление шаблона расписания
type UpdateTemplateRequest struct {
	RequesterRole domain.UserRole `json:"-"`

	Name         string  `json:"name"`
	HealthPostID string  `json:"healthPostId"`
	ServiceID    string  `json:"serviceId"`
	CityID       string  `json:"cityId"`
	DaysOfWeek   []int   `json:"daysOfWeek"`
	TimeSlot     string  `json:"timeSlot"`
	SlotsPerTime int     `json:"slotsPerTime"`
	StartDate    string  `json:"startDate"`
	EndDate      *string `json:"endDate,omitempty"`
	IsActive     *bool   `json:"isActive,omitempty"`
}

// Response модели

// TemplateResponse ответ с данными шаблона расписания
type TemplateResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	HealthPostID string  `json:"healthPostId"`
	ServiceID    string  `json:"serviceId"`
	CityID       string  `json:"cityId"`
	DaysOfWeek   []int   `json:"daysOfWeek"`
	TimeSlot     string  `json:"timeSlot"`
	SlotsPerTime int     `json:"slotsPerTime"`
	StartDate    string  `json:"startDate"`
	EndDate      *string `json:"endDate,omitempty"`
	IsActive     bool    `json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TemplateListResponse ответ со списком шаблонов
type TemplateListResponse struct {
	Templates []TemplateResponse `json:"templates"`
}

// Методы конвертации

// FromDomainTemplate конвертирует domain модель в DTO
func FromDomainTemplate(t *domain.ScheduleTemplate) *TemplateResponse {
	if t == nil {
		return nil
	}

	days := make([]int, 0, len(t.DaysOfWeek))
	for _, d := range t.DaysOfWeek {
		days = append(days, int(d))
	}

	resp := &TemplateResponse{
		ID:           t.ID,
		Name:         t.Name,
		HealthPostID: t.HealthPostID,
		ServiceID:    t.ServiceID,
		CityID:       t.CityID,
		DaysOfWeek:   days,
		TimeSlot:     t.TimeSlot.Short(),
		SlotsPerTime: t.SlotsPerTime,
		StartDate:    t.StartDate.Format(domain.DateFormat),
		IsActive:     t.IsActive,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}

	if t.EndDate != nil {
		endStr := t.EndDate.Format(domain.DateFormat)
		resp.EndDate = &endStr
	}

	return resp
}

// FromDomainTemplateList конвертирует список domain моделей в DTO
func FromDomainTemplateList(templates []*domain.ScheduleTemplate) *TemplateListResponse {
	resp := &TemplateListResponse{
		Templates: make([]TemplateResponse, 0, len(templates)),
	}

	for _, t := range templates {
		if tplResp := FromDomainTemplate(t); tplResp != nil {
			resp.Templates = append(resp.Templates, *tplResp)
		}
	}

	return resp
}
