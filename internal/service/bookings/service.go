package bookings

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/HPS-BookingService/internal/domain"
	bookingRepo "github.com/m04kA/HPS-BookingService/internal/infra/storage/booking"
	"github.com/m04kA/HPS-BookingService/internal/service/bookings/models"
)

// Service сервис для работы с бронированиями
type Service struct {
	bookingRepo BookingRepository
	logger      Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(bookingRepo BookingRepository, logger Logger) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		logger:      logger,
	}
}

// GetByID получает бронирование по ID
// Пользователь может видеть только своё бронирование, административная
// роль - любое
func (s *Service) GetByID(ctx context.Context, id string, requesterID string, requesterRole domain.UserRole) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%s for user=%s", id, requesterID)

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%s not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%s: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	// Проверяем права доступа
	if !booking.IsOwnedBy(requesterID) && !requesterRole.IsStaff() {
		s.logger.Warn("GetByID: access denied for user=%s to booking id=%s", requesterID, id)
		return nil, ErrAccessDenied
	}

	return models.FromDomainBooking(booking), nil
}

// GetUserBookings получает историю бронирований пользователя, новые первыми.
// Опционально фильтрует по статусу
func (s *Service) GetUserBookings(ctx context.Context, req *models.GetUserBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetUserBookings: fetching bookings for user=%s, status=%v", req.UserID, req.Status)

	// Историю может смотреть сам пользователь либо административная роль
	if req.RequesterID != req.UserID && !req.RequesterRole.IsStaff() {
		s.logger.Warn("GetUserBookings: access denied for user=%s to history of user=%s", req.RequesterID, req.UserID)
		return nil, ErrAccessDenied
	}

	var domainStatus *domain.BookingStatus
	if req.Status != nil {
		status, err := models.ToDomainBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetUserBookings: invalid status=%s for user=%s", *req.Status, req.UserID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	bookings, err := s.bookingRepo.GetByUserID(ctx, req.UserID, domainStatus)
	if err != nil {
		s.logger.Error("GetUserBookings: repository error for user=%s: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetUserBookings: fetched %d bookings for user=%s", len(bookings), req.UserID)
	return models.FromDomainBookingList(bookings), nil
}

// GetCityBookings получает постраничный список бронирований города.
// Доступно только административной роли
func (s *Service) GetCityBookings(ctx context.Context, req *models.GetCityBookingsRequest) (*models.PaginatedBookingsResponse, error) {
	s.logger.Info("GetCityBookings: fetching bookings for city=%s, page=%d, pageSize=%d", req.CityID, req.Page, req.PageSize)

	if !req.RequesterRole.IsStaff() {
		s.logger.Warn("GetCityBookings: access denied for city=%s", req.CityID)
		return nil, ErrAccessDenied
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetCityBookings: invalid filter for city=%s: %v", req.CityID, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	bookings, total, err := s.bookingRepo.GetByCityPaginated(ctx, filter)
	if err != nil {
		s.logger.Error("GetCityBookings: repository error for city=%s: %v", req.CityID, err)
		return nil, fmt.Errorf("%w: GetCityBookings - repository error: %v", ErrInternal, err)
	}

	totalPages := total / filter.PageSize
	if total%filter.PageSize > 0 {
		totalPages++
	}

	list := models.FromDomainBookingList(bookings)

	s.logger.Info("GetCityBookings: fetched %d of %d bookings for city=%s", len(bookings), total, req.CityID)
	return &models.PaginatedBookingsResponse{
		Bookings:   list.Bookings,
		Total:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: totalPages,
	}, nil
}

// Cancel отменяет бронирование
// Пользователь может отменить только своё подтверждённое бронирование,
// административная роль - любое подтверждённое
func (s *Service) Cancel(ctx context.Context, bookingID string, req *models.CancelBookingRequest) error {
	s.logger.Info("Cancel: cancelling booking id=%s by user=%s", bookingID, req.RequesterID)

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("Cancel: booking id=%s not found", bookingID)
			return ErrBookingNotFound
		}
		s.logger.Error("Cancel: repository error for booking id=%s: %v", bookingID, err)
		return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	if !booking.IsOwnedBy(req.RequesterID) && !req.RequesterRole.IsStaff() {
		s.logger.Warn("Cancel: access denied for user=%s to booking id=%s", req.RequesterID, bookingID)
		return ErrAccessDenied
	}

	// Отменить можно только подтверждённое бронирование
	if !booking.CanBeCancelled() {
		s.logger.Warn("Cancel: booking id=%s cannot be cancelled, status=%s", bookingID, booking.Status)
		return ErrCannotCancel
	}

	if err := s.bookingRepo.Cancel(ctx, bookingID); err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			// Статус изменился между чтением и отменой
			s.logger.Warn("Cancel: booking id=%s not found during cancellation", bookingID)
			return ErrCannotCancel
		}
		s.logger.Error("Cancel: repository error for booking id=%s: %v", bookingID, err)
		return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Cancel: successfully cancelled booking id=%s", bookingID)
	return nil
}

// UpdateStatus обновляет статус бронирования с опциональным комментарием.
// Доступно только административной роли
func (s *Service) UpdateStatus(ctx context.Context, bookingID string, req *models.UpdateStatusRequest) error {
	s.logger.Info("UpdateStatus: updating booking id=%s to status=%s", bookingID, req.Status)

	if !req.RequesterRole.IsStaff() {
		s.logger.Warn("UpdateStatus: access denied for booking id=%s", bookingID)
		return ErrAccessDenied
	}

	newStatus, err := models.ToDomainBookingStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s for booking id=%s", req.Status, bookingID)
		return fmt.Errorf("%w: %s", ErrInvalidStatus, req.Status)
	}

	if req.AdminComment != nil && len(*req.AdminComment) > domain.MaxAdminCommentLength {
		return fmt.Errorf("%w: adminComment is too long", ErrInvalidInput)
	}

	if err := s.bookingRepo.UpdateStatus(ctx, bookingID, newStatus, req.AdminComment); err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("UpdateStatus: booking id=%s not found", bookingID)
			return ErrBookingNotFound
		}
		s.logger.Error("UpdateStatus: repository error for booking id=%s: %v", bookingID, err)
		return fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpdateStatus: successfully updated booking id=%s to status=%s", bookingID, newStatus)
	return nil
}

// UpdateComment обновляет комментарий персонала к бронированию, статус
// не меняется. Доступно только административной роли
func (s *Service) UpdateComment(ctx context.Context, bookingID string, req *models.UpdateCommentRequest) error {
	s.logger.Info("UpdateComment: updating comment for booking id=%s", bookingID)

	if !req.RequesterRole.IsStaff() {
		s.logger.Warn("UpdateComment: access denied for booking id=%s", bookingID)
		return ErrAccessDenied
	}

	if len(req.Comment) > domain.MaxAdminCommentLength {
		return fmt.Errorf("%w: comment is too long", ErrInvalidInput)
	}

	if err := s.bookingRepo.UpdateComment(ctx, bookingID, req.Comment); err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("UpdateComment: booking id=%s not found", bookingID)
			return ErrBookingNotFound
		}
		s.logger.Error("UpdateComment: repository error for booking id=%s: %v", bookingID, err)
		return fmt.Errorf("%w: UpdateComment - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpdateComment: successfully updated comment for booking id=%s", bookingID)
	return nil
}
