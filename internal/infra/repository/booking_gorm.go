package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	domain "github.com/consultahub/consulta-scheduler/internal/domain/booking"
	"github.com/consultahub/consulta-scheduler/internal/httperr"
	"github.com/consultahub/consulta-scheduler/internal/models"
)

type BookingGormRepository struct {
	db *gorm.DB
}

func NewBookingGormRepository(db *gorm.DB) *BookingGormRepository {
	return &BookingGormRepository{db: db}
}

// --------------------------------------------------
// Users
// --------------------------------------------------

func (r *BookingGormRepository) GetProviderByID(
	ctx context.Context,
	id uint,
) (*models.User, error) {

	var user models.User
	if err := r.db.WithContext(ctx).
		Where("id = ? AND role = ?", id, models.RoleProvider).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// --------------------------------------------------
// Availability
// --------------------------------------------------

func (r *BookingGormRepository) ListRules(
	ctx context.Context,
	providerID uint,
) ([]models.AvailabilityRule, error) {

	var rules []models.AvailabilityRule
	if err := r.db.WithContext(ctx).
		Where("provider_id = ?", providerID).
		Order("id ASC").
		Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *BookingGormRepository) ListCustomSlots(
	ctx context.Context,
	providerID uint,
	fromDate string,
	toDate string,
) ([]models.CustomSlot, error) {

	var slots []models.CustomSlot
	if err := r.db.WithContext(ctx).
		Where(
			"provider_id = ? AND date >= ? AND date < ?",
			providerID, fromDate, toDate,
		).
		Order("date ASC, time ASC").
		Find(&slots).Error; err != nil {
		return nil, err
	}
	return slots, nil
}

// --------------------------------------------------
// Booking (create / read)
// --------------------------------------------------

func (r *BookingGormRepository) CreateBooking(
	ctx context.Context,
	b *models.Booking,
) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BookingGormRepository) GetBookingByID(
	ctx context.Context,
	id uint,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, httperr.ErrBusiness(httperr.CodeBookingNotFound)
		}
		return nil, err
	}
	return &b, nil
}

func (r *BookingGormRepository) GetBookingForClient(
	ctx context.Context,
	bookingID uint,
	clientID uint,
) (*models.Booking, error) {

	var b models.Booking
	if err := r.db.WithContext(ctx).
		Where("id = ? AND client_id = ?", bookingID, clientID).
		First(&b).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, httperr.ErrBusiness(httperr.CodeBookingNotFound)
		}
		return nil, err
	}
	return &b, nil
}

// --------------------------------------------------
// Booking (state change)
// --------------------------------------------------

func (r *BookingGormRepository) UpdateBookingIfStatus(
	ctx context.Context,
	b *models.Booking,
	fromStatus string,
) (bool, error) {

	res := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND status = ?", b.ID, fromStatus).
		Updates(map[string]any{
			"date":            b.Date,
			"time":            b.Time,
			"status":          b.Status,
			"postpone_reason": b.PostponeReason,
			"cancelled_at":    b.CancelledAt,
			"confirmed_at":    b.ConfirmedAt,
		})

	if res.Error != nil {
		return false, res.Error
	}

	return res.RowsAffected > 0, nil
}

func (r *BookingGormRepository) DeleteBooking(
	ctx context.Context,
	id uint,
) error {
	return r.db.WithContext(ctx).Delete(&models.Booking{}, id).Error
}

// --------------------------------------------------
// Listing / sweeping
// --------------------------------------------------

func (r *BookingGormRepository) ListBookingsForParticipant(
	ctx context.Context,
	userID uint,
	role string,
) ([]models.Booking, error) {

	q := r.db.WithContext(ctx).
		Preload("Provider").
		Preload("Client")

	if role == models.RoleProvider {
		q = q.Where("provider_id = ?", userID)
	} else {
		q = q.Where("client_id = ?", userID)
	}

	var bookings []models.Booking
	if err := q.
		Order("date ASC, time ASC").
		Find(&bookings).Error; err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *BookingGormRepository) ListPendingOlderThan(
	ctx context.Context,
	cutoff time.Time,
) ([]models.Booking, error) {

	var bookings []models.Booking
	if err := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", "pending_payment", cutoff).
		Find(&bookings).Error; err != nil {
		return nil, err
	}

	return bookings, nil
}

// Compile-time check
var _ domain.Repository = (*BookingGormRepository)(nil)
