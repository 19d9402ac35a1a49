package get_available_slots

import (
	"sort"
	"time"

	"github.com/m04kA/HPS-BookingService/internal/domain"
	bookingStore "github.com/m04kA/HPS-BookingService/internal/infra/storage/booking"
	templateStore "github.com/m04kA/HPS-BookingService/internal/infra/storage/template"
)

// resolveCandidates разворачивает шаблоны в кандидатов-слотов на дату.
// Репозиторий уже отфильтровал is_active и диапазон дат; здесь применяется
// членство дня недели. Каждый подходящий шаблон даёт ровно одного кандидата.
// Два шаблона с одинаковым временем - независимые пулы вместимости, каждый
// остаётся отдельным кандидатом со своим template id.
func resolveCandidates(templates []templateStore.ActiveTemplate, date time.Time) []templateStore.ActiveTemplate {
	candidates := make([]templateStore.ActiveTemplate, 0, len(templates))
	for _, at := range templates {
		if at.Template.IsActiveOn(date) {
			candidates = append(candidates, at)
		}
	}

	// Репозиторий отдает по возрастанию времени, но контракт выдачи
	// не должен зависеть от порядка в хранилище
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Template.TimeSlot.IsBefore(candidates[j].Template.TimeSlot)
	})

	return candidates
}

// computeAvailability вычисляет свободные места для каждого кандидата.
// Суммы подтверждённых пациентов сматчены по времени, нормализованному до
// секунд с полуночи: время бронирования может содержать секунды, время
// шаблона усечено до минуты при создании.
func computeAvailability(
	candidates []templateStore.ActiveTemplate,
	sums []bookingStore.TimeSum,
	logger Logger,
) []domain.ResolvedSlot {
	confirmedByTime := make(map[int]int, len(sums))
	for _, s := range sums {
		confirmedByTime[s.Time.SecondsSinceMidnight()] += s.TotalPatients
	}

	slots := make([]domain.ResolvedSlot, 0, len(candidates))
	for _, at := range candidates {
		tpl := at.Template
		confirmed := confirmedByTime[tpl.TimeSlot.SecondsSinceMidnight()]
		remaining := tpl.SlotsPerTime - confirmed

		if remaining < 0 {
			// Подтверждено больше, чем вместимость шаблона: нарушение
			// инварианта допуска, такого не должно быть после корректного
			// контроля вместимости
			logger.Error("computeAvailability: negative remaining capacity, template=%s time=%s capacity=%d confirmed=%d",
				tpl.ID, tpl.TimeSlot, tpl.SlotsPerTime, confirmed)
			remaining = 0
		}

		slots = append(slots, domain.ResolvedSlot{
			TemplateID:         tpl.ID,
			Time:               tpl.TimeSlot,
			Capacity:           tpl.SlotsPerTime,
			ConfirmedCount:     confirmed,
			Remaining:          remaining,
			ServiceDescription: at.ServiceDescription,
		})
	}

	return slots
}
