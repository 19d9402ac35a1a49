package get_available_slots

import (
	"github.com/m04kA/HPS-BookingService/internal/domain"
	getAvailableSlots "github.com/m04kA/HPS-BookingService/internal/usecase/get_available_slots"
)

// SlotResponse доступность одного слота
type SlotResponse struct {
	TemplateID         string `json:"templateId"`
	Time               string `json:"time"` // "09:00"
	Available          bool   `json:"available"`
	TotalSlots         int    `json:"totalSlots"`
	AvailableSlots     int    `json:"availableSlots"`
	ServiceDescription string `json:"serviceDescription,omitempty"`
}

// GetAvailableSlotsResponse ответ со списком слотов на дату
type GetAvailableSlotsResponse struct {
	Date         string         `json:"date"` // "2025-10-15"
	HealthPostID string         `json:"healthPostId"`
	ServiceID    string         `json:"serviceId"`
	Slots        []SlotResponse `json:"slots"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP DTO
func FromUseCaseResponse(resp *getAvailableSlots.Response) *GetAvailableSlotsResponse {
	slots := make([]SlotResponse, 0, len(resp.Slots))
	for _, s := range resp.Slots {
		slots = append(slots, SlotResponse{
			TemplateID:         s.TemplateID,
			Time:               s.Time.Short(),
			Available:          s.Available,
			TotalSlots:         s.TotalSlots,
			AvailableSlots:     s.AvailableSlots,
			ServiceDescription: s.ServiceDescription,
		})
	}

	return &GetAvailableSlotsResponse{
		Date:         resp.Date.Format(domain.DateFormat),
		HealthPostID: resp.HealthPostID,
		ServiceID:    resp.ServiceID,
		Slots:        slots,
	}
}
